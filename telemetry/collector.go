package telemetry

import "github.com/pthm-cable/gaze/systems"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	runID                string
	windowDurationSec    float64
	windowDurationFrames uint64
	dt                   float64

	// Current window tracking
	windowStartFrame uint64

	// Counters for current window
	frames         int
	framesWithGaze int
	framesNone     int
	acquired       int
	switches       int
	lost           int
	spawned        int
	despawned      int
	eligibleSum    int

	scores    []float64
	weightSum systems.Weights
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per frame (used for frame-to-time conversion)
func NewCollector(runID string, windowDurationSec, dt float64) *Collector {
	framesPerWindow := uint64(1)
	if dt > 0 && windowDurationSec/dt >= 1 {
		framesPerWindow = uint64(windowDurationSec / dt)
	}

	return &Collector{
		runID:                runID,
		windowDurationSec:    windowDurationSec,
		windowDurationFrames: framesPerWindow,
		dt:                   dt,
	}
}

// Record counts a gaze or population event.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventTargetAcquired:
		c.acquired++
	case EventTargetSwitched:
		c.switches++
	case EventTargetLost:
		c.lost++
	case EventSpawn:
		c.spawned++
	case EventDespawn:
		c.despawned++
	}
}

// RecordFrame folds one attention pass into the window.
func (c *Collector) RecordFrame(report *systems.FrameReport) {
	c.frames++
	c.eligibleSum += report.Eligible
	if report.Result.Found {
		c.framesWithGaze++
		c.scores = append(c.scores, report.Result.Score)
	} else {
		c.framesNone++
	}

	w := report.Weights
	c.weightSum.Motion += w.Motion
	c.weightSum.Angular += w.Angular
	c.weightSum.Proximity += w.Proximity
	c.weightSum.Color += w.Color
	c.weightSum.Luminance += w.Luminance
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame uint64) bool {
	return frame-c.windowStartFrame >= c.windowDurationFrames
}

// Flush produces a WindowStats and resets counters for the next window.
// objects is the live population at window end.
func (c *Collector) Flush(frame uint64, objects int) WindowStats {
	scoreMean, p10, p50, p90 := ComputeScoreStats(c.scores)

	stats := WindowStats{
		RunID:            c.runID,
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		SimTimeSec:       float64(frame) * c.dt,

		Objects: objects,

		Frames:         c.frames,
		FramesWithGaze: c.framesWithGaze,
		FramesNone:     c.framesNone,
		TargetSwitches: c.switches,
		TargetsLost:    c.lost,
		Spawned:        c.spawned,
		Despawned:      c.despawned,

		ScoreMean: scoreMean,
		ScoreP10:  p10,
		ScoreP50:  p50,
		ScoreP90:  p90,
	}

	if c.frames > 0 {
		n := float64(c.frames)
		stats.EligibleMean = float64(c.eligibleSum) / n
		stats.WeightMotion = c.weightSum.Motion / n
		stats.WeightAngular = c.weightSum.Angular / n
		stats.WeightProximity = c.weightSum.Proximity / n
		stats.WeightColor = c.weightSum.Color / n
		stats.WeightLuminance = c.weightSum.Luminance / n
	}

	// A fixation starts on every acquire or switch; a fixation carried in from
	// the previous window counts once.
	fixations := c.acquired + c.switches
	if fixations == 0 && c.framesWithGaze > 0 {
		fixations = 1
	}
	if fixations > 0 {
		stats.DwellMeanFrames = float64(c.framesWithGaze) / float64(fixations)
	}

	// Reset for next window
	c.windowStartFrame = frame
	c.frames = 0
	c.framesWithGaze = 0
	c.framesNone = 0
	c.acquired = 0
	c.switches = 0
	c.lost = 0
	c.spawned = 0
	c.despawned = 0
	c.eligibleSum = 0
	c.scores = c.scores[:0]
	c.weightSum = systems.Weights{}

	return stats
}

// WindowDurationFrames returns the number of frames per window.
func (c *Collector) WindowDurationFrames() uint64 {
	return c.windowDurationFrames
}
