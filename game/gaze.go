package game

import (
	"github.com/pthm-cable/gaze/camera"
	"github.com/pthm-cable/gaze/systems"
)

// GazeActuator consumes the published attention target once per frame.
type GazeActuator interface {
	Apply(target systems.Target, dt float64)
}

// HeadTracker turns an eye toward the current target at a bounded rate.
// With no target it holds its heading.
type HeadTracker struct {
	eye       *camera.Eye
	turnRate  float64 // radians per second
	remaining float64 // angle left to the target after the last Apply
	targetID  uint64
	tracking  bool
}

// NewHeadTracker creates a head tracker driving eye.
func NewHeadTracker(eye *camera.Eye, turnRate float64) *HeadTracker {
	return &HeadTracker{eye: eye, turnRate: turnRate}
}

// Apply implements GazeActuator.
func (h *HeadTracker) Apply(target systems.Target, dt float64) {
	if !target.Found || h.eye == nil {
		h.tracking = false
		h.remaining = 0
		return
	}
	h.tracking = true
	h.targetID = uint64(target.ID)
	h.remaining = h.eye.TurnToward(target.Position, h.turnRate*dt)
}

// Tracking reports whether the last Apply had a target, and which.
func (h *HeadTracker) Tracking() (uint64, bool) {
	return h.targetID, h.tracking
}

// Remaining returns the angle in radians still to turn after the last Apply.
func (h *HeadTracker) Remaining() float64 {
	return h.remaining
}
