package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/gaze/components"
)

// HallEntry records one object that held the gaze.
type HallEntry struct {
	ID             components.ObjectID
	Fitness        float64
	SpawnFrame     uint64
	Frames         int
	FramesTargeted int
	Fixations      int
	PeakScore      float64
}

// HallOfFame keeps the most-attended objects of a run, ranked by fitness.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall with the given capacity.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider evaluates an object's lifetime for entry. Objects that were never
// targeted do not qualify. An object already in the hall is replaced.
// Returns true if the object is in the hall afterwards.
func (hof *HallOfFame) Consider(id components.ObjectID, stats *LifetimeStats) bool {
	if stats == nil || stats.FramesTargeted == 0 {
		return false
	}

	hof.remove(id)
	entry := HallEntry{
		ID:             id,
		Fitness:        fitness(stats),
		SpawnFrame:     stats.SpawnFrame,
		Frames:         stats.Frames,
		FramesTargeted: stats.FramesTargeted,
		Fixations:      stats.Fixations,
		PeakScore:      stats.PeakScore,
	}
	hof.entries = hof.insertEntry(hof.entries, entry)

	for _, e := range hof.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// fitness ranks by frames held; peak score separates equal holds.
func fitness(stats *LifetimeStats) float64 {
	return float64(stats.FramesTargeted) + stats.PeakScore
}

func (hof *HallOfFame) remove(id components.ObjectID) {
	for i, e := range hof.entries {
		if e.ID == id {
			hof.entries = append(hof.entries[:i], hof.entries[i+1:]...)
			return
		}
	}
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}

	return hall
}

// Clone returns an independent copy of the hall.
func (hof *HallOfFame) Clone() *HallOfFame {
	c := NewHallOfFame(hof.maxSize)
	c.entries = append(c.entries, hof.entries...)
	return c
}

// Entries returns the hall in descending fitness order.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.entries
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// TopFitness returns the highest fitness in the hall, or 0 if empty.
func (hof *HallOfFame) TopFitness() float64 {
	if len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Fitness
}

// hallEntryJSON is the JSON-serializable representation of a hall entry.
type hallEntryJSON struct {
	ID             uint64  `json:"object_id"`
	Fitness        float64 `json:"fitness"`
	SpawnFrame     uint64  `json:"spawn_frame"`
	Frames         int     `json:"frames"`
	FramesTargeted int     `json:"frames_targeted"`
	Fixations      int     `json:"fixations"`
	PeakScore      float64 `json:"peak_score"`
}

// MarshalJSON serializes the hall as a ranked list.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make([]hallEntryJSON, len(hof.entries))
	for i, e := range hof.entries {
		export[i] = hallEntryJSON{
			ID:             uint64(e.ID),
			Fitness:        e.Fitness,
			SpawnFrame:     e.SpawnFrame,
			Frames:         e.Frames,
			FramesTargeted: e.FramesTargeted,
			Fixations:      e.Fixations,
			PeakScore:      e.PeakScore,
		}
	}
	return json.MarshalIndent(export, "", "  ")
}

// SaveHallOfFame writes the hall to path as JSON.
func SaveHallOfFame(hof *HallOfFame, path string) error {
	data, err := json.Marshal(hof)
	if err != nil {
		return fmt.Errorf("marshal hall of fame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write hall of fame: %w", err)
	}
	return nil
}
