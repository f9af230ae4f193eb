package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSaccadeBurst  BookmarkType = "saccade_burst"
	BookmarkGazeStarved   BookmarkType = "gaze_starved"
	BookmarkLongFixation  BookmarkType = "long_fixation"
	BookmarkDominantShift BookmarkType = "dominant_cue_shift"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       uint64       `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the gaze record.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	fixationWindows int    // consecutive windows with one uninterrupted target
	starved         bool   // currently inside a starved stretch
	lastDominant    string // dominant cue of the previous window
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Saccade burst: switches > 2x rolling average
		if b := bd.checkSaccadeBurst(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Dominant cue changed since the last window
		if b := bd.checkDominantShift(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Gaze starved: most frames without a target
	if b := bd.checkGazeStarved(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Long fixation: same target for several whole windows
	if b := bd.checkLongFixation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	bd.lastDominant = dominantCue(stats)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkSaccadeBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.TargetSwitches
	}
	avg := float64(total) / float64(len(history))

	if stats.TargetSwitches >= 5 && float64(stats.TargetSwitches) > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkSaccadeBurst,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("%d target switches vs rolling average %.1f", stats.TargetSwitches, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkGazeStarved(stats WindowStats) *Bookmark {
	if stats.Frames == 0 {
		return nil
	}
	noneRate := float64(stats.FramesNone) / float64(stats.Frames)
	if noneRate <= 0.5 {
		bd.starved = false
		return nil
	}
	if bd.starved {
		return nil
	}
	bd.starved = true

	return &Bookmark{
		Type:        BookmarkGazeStarved,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("No eligible target in %.0f%% of frames (mean eligible %.1f)", noneRate*100, stats.EligibleMean),
	}
}

func (bd *BookmarkDetector) checkLongFixation(stats WindowStats) *Bookmark {
	if stats.Frames > 0 && stats.FramesWithGaze == stats.Frames && stats.TargetSwitches == 0 && stats.TargetsLost == 0 {
		bd.fixationWindows++
	} else {
		bd.fixationWindows = 0
	}

	if bd.fixationWindows == 3 { // trigger exactly once per stretch
		return &Bookmark{
			Type:        BookmarkLongFixation,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Single target held for %d windows", bd.fixationWindows),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkDominantShift(stats WindowStats) *Bookmark {
	current := dominantCue(stats)
	if bd.lastDominant == "" || current == "" || current == bd.lastDominant {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkDominantShift,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("Dominant cue changed from %s to %s", bd.lastDominant, current),
	}
}

// dominantCue returns the cue with the largest mean weight, or "" when no
// cue clearly leads (ties within 0.05 of the runner-up).
func dominantCue(stats WindowStats) string {
	weights := []struct {
		name string
		w    float64
	}{
		{"motion", stats.WeightMotion},
		{"angular", stats.WeightAngular},
		{"proximity", stats.WeightProximity},
		{"color", stats.WeightColor},
		{"luminance", stats.WeightLuminance},
	}

	best, second := -1, -1
	for i := range weights {
		if best < 0 || weights[i].w > weights[best].w {
			second = best
			best = i
		} else if second < 0 || weights[i].w > weights[second].w {
			second = i
		}
	}
	if weights[best].w-weights[second].w < 0.05 {
		return ""
	}
	return weights[best].name
}
