package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated gaze statistics for a time window.
type WindowStats struct {
	RunID            string  `csv:"run_id"`
	WindowStartFrame uint64  `csv:"-"`
	WindowEndFrame   uint64  `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Population at window end
	Objects int `csv:"objects"`

	// Frame counts over the window
	Frames          int     `csv:"frames"`
	FramesWithGaze  int     `csv:"frames_with_target"`
	FramesNone      int     `csv:"frames_none"`
	TargetSwitches  int     `csv:"target_switches"`
	TargetsLost     int     `csv:"targets_lost"`
	Spawned         int     `csv:"spawned"`
	Despawned       int     `csv:"despawned"`
	EligibleMean    float64 `csv:"eligible_mean"`
	DwellMeanFrames float64 `csv:"dwell_mean_frames"`

	// Winning score distribution (frames with a target only)
	ScoreMean float64 `csv:"score_mean"`
	ScoreP10  float64 `csv:"score_p10"`
	ScoreP50  float64 `csv:"score_p50"`
	ScoreP90  float64 `csv:"score_p90"`

	// Mean weight vector over the window
	WeightMotion    float64 `csv:"weight_motion"`
	WeightAngular   float64 `csv:"weight_angular"`
	WeightProximity float64 `csv:"weight_proximity"`
	WeightColor     float64 `csv:"weight_color"`
	WeightLuminance float64 `csv:"weight_luminance"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeScoreStats calculates mean and percentiles from winning scores.
func ComputeScoreStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// TargetRate returns the fraction of frames that had a gaze target.
func (s WindowStats) TargetRate() float64 {
	if s.Frames == 0 {
		return 0
	}
	return float64(s.FramesWithGaze) / float64(s.Frames)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Uint64("window_start", s.WindowStartFrame),
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("objects", s.Objects),
		slog.Int("frames", s.Frames),
		slog.Int("frames_with_target", s.FramesWithGaze),
		slog.Int("frames_none", s.FramesNone),
		slog.Int("target_switches", s.TargetSwitches),
		slog.Int("targets_lost", s.TargetsLost),
		slog.Int("spawned", s.Spawned),
		slog.Int("despawned", s.Despawned),
		slog.Float64("eligible_mean", s.EligibleMean),
		slog.Float64("dwell_mean_frames", s.DwellMeanFrames),
		slog.Float64("score_mean", s.ScoreMean),
		slog.Float64("score_p10", s.ScoreP10),
		slog.Float64("score_p50", s.ScoreP50),
		slog.Float64("score_p90", s.ScoreP90),
		slog.Float64("weight_motion", s.WeightMotion),
		slog.Float64("weight_angular", s.WeightAngular),
		slog.Float64("weight_proximity", s.WeightProximity),
		slog.Float64("weight_color", s.WeightColor),
		slog.Float64("weight_luminance", s.WeightLuminance),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"run_id", s.RunID,
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"objects", s.Objects,
		"frames_with_target", s.FramesWithGaze,
		"frames_none", s.FramesNone,
		"target_switches", s.TargetSwitches,
		"targets_lost", s.TargetsLost,
		"eligible_mean", s.EligibleMean,
		"dwell_mean_frames", s.DwellMeanFrames,
		"score_mean", s.ScoreMean,
		"score_p50", s.ScoreP50,
		"weight_motion", s.WeightMotion,
		"weight_angular", s.WeightAngular,
		"weight_proximity", s.WeightProximity,
		"weight_color", s.WeightColor,
		"weight_luminance", s.WeightLuminance,
	)
}
