package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_SaccadeBurst(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Add some history with few switches
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndFrame: uint64(i * 300),
			Frames:         300,
			FramesWithGaze: 300,
			TargetSwitches: 2,
		})
	}

	burst := WindowStats{
		WindowEndFrame: 1500,
		Frames:         300,
		FramesWithGaze: 300,
		TargetSwitches: 9,
	}
	if !hasBookmark(bd.Check(burst), BookmarkSaccadeBurst) {
		t.Error("expected saccade_burst bookmark")
	}
}

func TestBookmarkDetector_GazeStarvedOncePerStretch(t *testing.T) {
	bd := NewBookmarkDetector(10)
	starved := WindowStats{Frames: 100, FramesNone: 80, FramesWithGaze: 20}

	if !hasBookmark(bd.Check(starved), BookmarkGazeStarved) {
		t.Fatal("expected gaze_starved bookmark")
	}
	if hasBookmark(bd.Check(starved), BookmarkGazeStarved) {
		t.Error("gaze_starved should not repeat while still starved")
	}

	bd.Check(WindowStats{Frames: 100, FramesWithGaze: 100})
	if !hasBookmark(bd.Check(starved), BookmarkGazeStarved) {
		t.Error("expected gaze_starved again after recovery")
	}
}

func TestBookmarkDetector_LongFixation(t *testing.T) {
	bd := NewBookmarkDetector(10)
	held := WindowStats{Frames: 100, FramesWithGaze: 100}

	var triggered int
	for i := 0; i < 6; i++ {
		if hasBookmark(bd.Check(held), BookmarkLongFixation) {
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("long_fixation triggered %d times, want 1", triggered)
	}
}

func TestBookmarkDetector_DominantShift(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{Frames: 10, WeightMotion: 0.7, WeightColor: 0.3})
	if hasBookmark(bd.Check(WindowStats{Frames: 10, WeightMotion: 0.7, WeightColor: 0.3}), BookmarkDominantShift) {
		t.Error("no shift expected while motion dominates")
	}
	if !hasBookmark(bd.Check(WindowStats{Frames: 10, WeightMotion: 0.2, WeightColor: 0.8}), BookmarkDominantShift) {
		t.Error("expected dominant_cue_shift bookmark")
	}
}

func TestDominantCue(t *testing.T) {
	tests := []struct {
		name  string
		stats WindowStats
		want  string
	}{
		{"motion leads", WindowStats{WeightMotion: 0.6, WeightProximity: 0.4}, "motion"},
		{"luminance leads", WindowStats{WeightLuminance: 0.5, WeightAngular: 0.2}, "luminance"},
		{"equal weights", WindowStats{WeightMotion: 0.25, WeightProximity: 0.25, WeightColor: 0.25, WeightLuminance: 0.25}, ""},
		{"near tie", WindowStats{WeightMotion: 0.41, WeightColor: 0.39}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dominantCue(tt.stats); got != tt.want {
				t.Errorf("dominantCue = %q, want %q", got, tt.want)
			}
		})
	}
}
