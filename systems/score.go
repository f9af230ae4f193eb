package systems

import "github.com/pthm-cable/gaze/components"

// ComputeScore folds cues and weights into one saliency score in [0,1].
// The score is the plain weighted sum, clamped; it is not divided by the cue
// count. An inactive angular cue contributes nothing because its weight is 0.
func ComputeScore(c components.Cues, w Weights) float64 {
	sum := w.Motion*c.Motion +
		w.Angular*c.AngularVelocity +
		w.Proximity*c.Proximity +
		w.Color*c.ColorContrast +
		w.Luminance*c.LuminanceContrast
	return clamp01(sum)
}
