// Package telemetry provides gaze statistics, saliency streams, bookmarking, and snapshots.
package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/gaze/components"
	"github.com/pthm-cable/gaze/systems"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventTargetAcquired EventType = iota
	EventTargetSwitched
	EventTargetLost
	EventSpawn
	EventDespawn
)

// String returns the event name used in logs.
func (t EventType) String() string {
	switch t {
	case EventTargetAcquired:
		return "target_acquired"
	case EventTargetSwitched:
		return "target_switched"
	case EventTargetLost:
		return "target_lost"
	case EventSpawn:
		return "spawn"
	case EventDespawn:
		return "despawn"
	default:
		return "unknown"
	}
}

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Frame    uint64
	ObjectID components.ObjectID

	// Optional fields depending on event type
	PrevID components.ObjectID // previous target for switch/lost events
	Score  float64             // winning score for acquire/switch events
}

// NewTargetAcquiredEvent creates an event for gaze landing on an object from none.
func NewTargetAcquiredEvent(frame uint64, id components.ObjectID, score float64) Event {
	return Event{Type: EventTargetAcquired, Frame: frame, ObjectID: id, Score: score}
}

// NewTargetSwitchedEvent creates an event for gaze moving between objects.
func NewTargetSwitchedEvent(frame uint64, prev, id components.ObjectID, score float64) Event {
	return Event{Type: EventTargetSwitched, Frame: frame, ObjectID: id, PrevID: prev, Score: score}
}

// NewTargetLostEvent creates an event for gaze falling back to none.
func NewTargetLostEvent(frame uint64, prev components.ObjectID) Event {
	return Event{Type: EventTargetLost, Frame: frame, PrevID: prev}
}

// NewSpawnEvent creates an object spawn event.
func NewSpawnEvent(frame uint64, id components.ObjectID) Event {
	return Event{Type: EventSpawn, Frame: frame, ObjectID: id}
}

// NewDespawnEvent creates an object despawn event.
func NewDespawnEvent(frame uint64, id components.ObjectID) Event {
	return Event{Type: EventDespawn, Frame: frame, ObjectID: id}
}

// GazeTransition returns the event, if any, between two consecutive results.
// Targets are compared by object ID, so a despawned target followed by a new
// winner counts as a switch.
func GazeTransition(prev, next systems.Result) (Event, bool) {
	switch {
	case !prev.Found && next.Found:
		return NewTargetAcquiredEvent(next.Frame, next.ID, next.Score), true
	case prev.Found && !next.Found:
		return NewTargetLostEvent(next.Frame, prev.ID), true
	case prev.Found && next.Found && prev.ID != next.ID:
		return NewTargetSwitchedEvent(next.Frame, prev.ID, next.ID, next.Score), true
	default:
		return Event{}, false
	}
}

// LogEvent logs the event at debug level.
func (e Event) LogEvent() {
	slog.Debug("gaze_event",
		"type", e.Type.String(),
		"frame", e.Frame,
		"object_id", uint64(e.ObjectID),
		"prev_id", uint64(e.PrevID),
		"score", e.Score,
	)
}
