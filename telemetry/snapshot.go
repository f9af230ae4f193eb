package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/gaze/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds one frame's attention state for offline inspection.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	RNGSeed int64  `json:"rng_seed"`

	Frame uint64 `json:"frame"`

	WeightMode string        `json:"weight_mode"`
	Weights    [5]float64    `json:"weights"` // motion, angular, proximity, color, luminance
	Spreads    [5]float64    `json:"spreads"`
	TargetID   uint64        `json:"target_id"`
	HasTarget  bool          `json:"has_target"`
	Score      float64       `json:"score"`
	Objects    []ObjectState `json:"objects"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ObjectState holds one object's state in a snapshot.
type ObjectState struct {
	ID       uint64     `json:"id"`
	Position [3]float64 `json:"position"`
	Cues     [5]float64 `json:"cues"` // same order as weights
	Eligible bool       `json:"eligible"`
	Score    float64    `json:"score"`
	Best     bool       `json:"best"`

	// Lifetime stats
	Lifetime *LifetimeStatsJSON `json:"lifetime,omitempty"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	SpawnFrame     uint64  `json:"spawn_frame"`
	Frames         int     `json:"frames"`
	FramesEligible int     `json:"frames_eligible"`
	FramesTargeted int     `json:"frames_targeted"`
	Fixations      int     `json:"fixations"`
	PeakScore      float64 `json:"peak_score"`
	PeakMotion     float64 `json:"peak_motion"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		SpawnFrame:     ls.SpawnFrame,
		Frames:         ls.Frames,
		FramesEligible: ls.FramesEligible,
		FramesTargeted: ls.FramesTargeted,
		Fixations:      ls.Fixations,
		PeakScore:      ls.PeakScore,
		PeakMotion:     ls.PeakMotion,
	}
}

// NewSnapshot captures a frame report. lifetimes may be nil.
func NewSnapshot(runID string, seed int64, mode systems.WeightMode, report *systems.FrameReport, lifetimes *LifetimeTracker) *Snapshot {
	w, s := report.Weights, report.Spreads
	snap := &Snapshot{
		Version:    SnapshotVersion,
		RunID:      runID,
		RNGSeed:    seed,
		Frame:      report.Frame,
		WeightMode: mode.String(),
		Weights:    [5]float64{w.Motion, w.Angular, w.Proximity, w.Color, w.Luminance},
		Spreads:    [5]float64{s.Motion, s.Angular, s.Proximity, s.Color, s.Luminance},
		TargetID:   uint64(report.Result.ID),
		HasTarget:  report.Result.Found,
		Score:      report.Result.Score,
		Objects:    make([]ObjectState, 0, len(report.Rows)),
	}

	for _, r := range report.Rows {
		st := ObjectState{
			ID:       uint64(r.ID),
			Position: [3]float64{r.Position.X, r.Position.Y, r.Position.Z},
			Cues: [5]float64{
				r.Cues.Motion, r.Cues.AngularVelocity, r.Cues.Proximity,
				r.Cues.ColorContrast, r.Cues.LuminanceContrast,
			},
			Eligible: r.Eligible,
			Score:    r.Score,
			Best:     r.Best,
		}
		if lifetimes != nil {
			st.Lifetime = lifetimes.Get(r.ID).ToJSON()
		}
		snap.Objects = append(snap.Objects, st)
	}

	return snap
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
