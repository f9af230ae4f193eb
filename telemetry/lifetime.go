package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/gaze/components"
	"github.com/pthm-cable/gaze/systems"
)

// LifetimeStats tracks per-object attention statistics over its lifetime.
type LifetimeStats struct {
	SpawnFrame uint64
	Frames     int

	// Attention
	FramesEligible int
	FramesTargeted int
	Fixations      int // times gaze landed on this object
	PeakScore      float64
	PeakMotion     float64

	targetedLast bool
}

// LifetimeTracker manages per-object lifetime statistics.
type LifetimeTracker struct {
	stats map[components.ObjectID]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[components.ObjectID]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new object.
func (lt *LifetimeTracker) Register(id components.ObjectID, spawnFrame uint64) {
	lt.stats[id] = &LifetimeStats{SpawnFrame: spawnFrame}
}

// Get returns the lifetime stats for an object, or nil if not found.
func (lt *LifetimeTracker) Get(id components.ObjectID) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an object's stats and returns them (for snapshot/logging).
func (lt *LifetimeTracker) Remove(id components.ObjectID) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordFrame updates every reported object's counters.
func (lt *LifetimeTracker) RecordFrame(report *systems.FrameReport) {
	for _, row := range report.Rows {
		s := lt.stats[row.ID]
		if s == nil {
			continue
		}
		s.Frames++
		if row.Eligible {
			s.FramesEligible++
			if row.Score > s.PeakScore {
				s.PeakScore = row.Score
			}
		}
		if row.Cues.Motion > s.PeakMotion {
			s.PeakMotion = row.Cues.Motion
		}
		if row.Best {
			s.FramesTargeted++
			if !s.targetedLast {
				s.Fixations++
			}
		}
		s.targetedLast = row.Best
	}
}

// All returns all tracked stats (for snapshots).
func (lt *LifetimeTracker) All() map[components.ObjectID]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked objects.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// LogRetired logs a despawned object's lifetime summary.
func (s *LifetimeStats) LogRetired(id components.ObjectID, frame uint64) {
	if s == nil {
		return
	}
	slog.Debug("object_retired",
		"object_id", uint64(id),
		"frame", frame,
		"lived_frames", s.Frames,
		"frames_eligible", s.FramesEligible,
		"frames_targeted", s.FramesTargeted,
		"fixations", s.Fixations,
		"peak_score", s.PeakScore,
	)
}
