package game

import (
	"log/slog"

	"github.com/pthm-cable/gaze/systems"
	"github.com/pthm-cable/gaze/telemetry"
)

// recordFrame feeds one attention pass to the collectors and the saliency streams.
// Sink failures are logged and the frame continues.
func (g *Game) recordFrame(report *systems.FrameReport) {
	if ev, ok := telemetry.GazeTransition(g.lastResult, report.Result); ok {
		g.collector.Record(ev)
		ev.LogEvent()
	}
	g.lastResult = report.Result

	g.collector.RecordFrame(report)
	g.lifetimeTracker.RecordFrame(report)

	if err := g.outputManager.WriteObjects(report); err != nil {
		slog.Error("failed to write objects", "frame", report.Frame, "error", err)
	}
	if err := g.outputManager.WriteWeights(report); err != nil {
		slog.Error("failed to write weights", "frame", report.Frame, "error", err)
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.population.Len())
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	// Check for bookmarks
	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		g.saveSnapshot(&bm)
	}
}

// Snapshot captures the last frame report with per-object lifetime stats.
// Returns nil before the first step.
func (g *Game) Snapshot() *telemetry.Snapshot {
	if g.lastReport == nil {
		return nil
	}
	return telemetry.NewSnapshot(g.runID, g.seed, g.attention.Policy().Mode(), g.lastReport, g.lifetimeTracker)
}

// saveSnapshot writes a snapshot to the snapshot directory, or under the
// output directory when none is set.
func (g *Game) saveSnapshot(bm *telemetry.Bookmark) {
	snap := g.Snapshot()
	if snap == nil {
		return
	}
	snap.Bookmark = bm

	var (
		path string
		err  error
	)
	switch {
	case g.snapshotDir != "":
		path, err = telemetry.SaveSnapshot(snap, g.snapshotDir)
	case g.outputManager != nil:
		path, err = g.outputManager.WriteSnapshot(snap)
	default:
		return
	}
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", snap.Frame)
}

// SaveSnapshotNow writes an unbookmarked snapshot of the current frame.
func (g *Game) SaveSnapshotNow() {
	g.saveSnapshot(nil)
}
