package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseScene           = "scene"
	PhaseVisibilityIndex = "visibility_index"
	PhaseAttention       = "attention"
	PhaseGaze            = "gaze"
	PhaseTelemetry       = "telemetry"
)

// Phases lists every phase in tick order.
var Phases = []string{
	PhaseScene, PhaseVisibilityIndex, PhaseAttention, PhaseGaze, PhaseTelemetry,
}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks tick and phase timings over a rolling window.
type PerfCollector struct {
	now func() time.Time

	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
// A non-positive size falls back to 60.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		now:           time.Now,
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick closes the running phase and records the tick sample.
func (p *PerfCollector) EndTick() {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records the interval since the previous rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Per phase, over the ticks that ran the phase. PhasePct is the share of
	// the average tick.
	PhaseAvg map[string]time.Duration
	PhaseMin map[string]time.Duration
	PhaseMax map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Graphics mode only.
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhaseMin:      make(map[string]time.Duration),
		PhaseMax:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		stats.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.sampleCount == 0 {
		return stats
	}

	var totalTick time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration
		if i == 0 || s.TickDuration < stats.MinTickDuration {
			stats.MinTickDuration = s.TickDuration
		}
		if s.TickDuration > stats.MaxTickDuration {
			stats.MaxTickDuration = s.TickDuration
		}

		for phase, dur := range s.Phases {
			if lo, ok := stats.PhaseMin[phase]; !ok || dur < lo {
				stats.PhaseMin[phase] = dur
			}
			if dur > stats.PhaseMax[phase] {
				stats.PhaseMax[phase] = dur
			}
			phaseSum[phase] += dur
		}
	}

	n := time.Duration(p.sampleCount)
	stats.AvgTickDuration = totalTick / n
	for phase, sum := range phaseSum {
		stats.PhaseAvg[phase] = sum / n
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[phase] = float64(stats.PhaseAvg[phase]) / float64(stats.AvgTickDuration) * 100
		}
	}
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}
	return stats
}

// LogStats logs the tick summary and every phase above 0.1% of the tick.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// Row names in perf.csv besides the phases.
const (
	PerfRowTick  = "tick"
	PerfRowFrame = "frame"
)

// PerfRecord is one row of perf.csv. Each window writes a tick row, one row
// per entry of Phases and, in graphics mode, a frame row.
type PerfRecord struct {
	WindowEnd uint64  `csv:"window_end"`
	Name      string  `csv:"name"`
	AvgUS     int64   `csv:"avg_us"`
	MinUS     int64   `csv:"min_us"`
	MaxUS     int64   `csv:"max_us"`
	Pct       float64 `csv:"pct"`
	PerSecond float64 `csv:"per_sec"`
}

// Records flattens the stats into perf.csv rows for the window ending at
// windowEnd. Phases that did not run in the window report zeros.
func (s PerfStats) Records(windowEnd uint64) []PerfRecord {
	out := make([]PerfRecord, 0, len(Phases)+2)
	tick := PerfRecord{
		WindowEnd: windowEnd,
		Name:      PerfRowTick,
		AvgUS:     s.AvgTickDuration.Microseconds(),
		MinUS:     s.MinTickDuration.Microseconds(),
		MaxUS:     s.MaxTickDuration.Microseconds(),
		PerSecond: s.TicksPerSecond,
	}
	if s.AvgTickDuration > 0 {
		tick.Pct = 100
	}
	out = append(out, tick)

	for _, phase := range Phases {
		out = append(out, PerfRecord{
			WindowEnd: windowEnd,
			Name:      phase,
			AvgUS:     s.PhaseAvg[phase].Microseconds(),
			MinUS:     s.PhaseMin[phase].Microseconds(),
			MaxUS:     s.PhaseMax[phase].Microseconds(),
			Pct:       s.PhasePct[phase],
		})
	}

	if s.FPS > 0 {
		us := s.FrameDuration.Microseconds()
		out = append(out, PerfRecord{
			WindowEnd: windowEnd,
			Name:      PerfRowFrame,
			AvgUS:     us,
			MinUS:     us,
			MaxUS:     us,
			PerSecond: s.FPS,
		})
	}
	return out
}
