package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
	"github.com/pthm-cable/gaze/components"
)

// MinElapsed floors the per-object frame interval so a zero or negative
// elapsed time never divides by zero.
const MinElapsed = 1e-6

// maxColorDistance is the largest Euclidean distance between two RGB colors.
var maxColorDistance = math.Sqrt(3)

// ProximityPolicy selects how apparent size/closeness is measured.
type ProximityPolicy uint8

const (
	ProximityInverseDistance  ProximityPolicy = iota // 1 - clamp01(d / maxDistance)
	ProximitySizeOverDistance                        // size / (size + d)
)

// String returns the config name of the policy.
func (p ProximityPolicy) String() string {
	switch p {
	case ProximityInverseDistance:
		return "inverse_distance"
	case ProximitySizeOverDistance:
		return "size_over_distance"
	default:
		return "unknown"
	}
}

// ParseProximityPolicy maps a config value to a ProximityPolicy.
func ParseProximityPolicy(s string) (ProximityPolicy, error) {
	switch s {
	case "inverse_distance":
		return ProximityInverseDistance, nil
	case "size_over_distance":
		return ProximitySizeOverDistance, nil
	default:
		return 0, fmt.Errorf("unknown proximity policy %q", s)
	}
}

// CueParams holds the tuning constants for cue extraction.
type CueParams struct {
	MotionSigma  float64 // speed at which motion reaches 0.5
	AngularSigma float64 // angular speed at which angular velocity reaches 0.5
	MaxDistance  float64 // normaliser for ProximityInverseDistance
	Proximity    ProximityPolicy
	Angular      bool // compute the angular velocity cue
	Background   components.RGB
}

// CueExtractor derives the five normalised cues from per-frame pose deltas.
type CueExtractor struct {
	params CueParams
}

// NewCueExtractor creates a cue extractor with the given parameters.
func NewCueExtractor(params CueParams) *CueExtractor {
	return &CueExtractor{params: params}
}

// Params returns the extractor's parameters.
func (x *CueExtractor) Params() CueParams {
	return x.params
}

// Extract computes one object's cues for this frame and advances its history.
// A nil bounds, appearance or eye degrades the dependent cue to 0.
func (x *CueExtractor) Extract(
	tr *components.Transform,
	bounds *components.Bounds,
	app *components.Appearance,
	hist *components.History,
	eye *camera.Eye,
	now float64,
) components.Cues {
	var cues components.Cues

	dt := math.Max(now-hist.LastTime, MinElapsed)

	speed := r3.Norm(r3.Sub(tr.Position, hist.LastPosition)) / dt
	cues.Motion = Saturate(speed, x.params.MotionSigma)

	if x.params.Angular {
		angularSpeed := rotationAngle(hist.LastRotation, tr.Rotation) / dt
		cues.AngularVelocity = Saturate(angularSpeed, x.params.AngularSigma)
	}

	if eye != nil {
		var size float64
		if bounds != nil {
			size = bounds.Size()
		}
		cues.Proximity = x.proximity(eye.Distance(tr.Position), size)
	}

	if app != nil {
		surface := app.Surface()
		cues.ColorContrast = ColorContrast(surface, x.params.Background)
		cues.LuminanceContrast = LuminanceContrast(surface, x.params.Background)
	}

	hist.LastPosition = tr.Position
	hist.LastRotation = tr.Rotation
	hist.LastTime = now

	return cues
}

// ProximityAt evaluates the proximity cue for a distance and object size.
func (x *CueExtractor) ProximityAt(distance, size float64) float64 {
	return x.proximity(distance, size)
}

// proximity applies the configured proximity policy.
func (x *CueExtractor) proximity(distance, size float64) float64 {
	switch x.params.Proximity {
	case ProximitySizeOverDistance:
		if size <= 0 {
			return 0
		}
		return clamp01(size / (size + distance))
	default:
		if x.params.MaxDistance <= 0 {
			return 0
		}
		return 1 - clamp01(distance/x.params.MaxDistance)
	}
}

// ColorContrast returns the RGB distance between surface and background,
// normalised by the largest possible distance.
func ColorContrast(surface, background components.RGB) float64 {
	return clamp01(surface.Distance(background) / maxColorDistance)
}

// LuminanceContrast returns the absolute relative-luminance difference.
func LuminanceContrast(surface, background components.RGB) float64 {
	return clamp01(math.Abs(surface.Luminance() - background.Luminance()))
}
