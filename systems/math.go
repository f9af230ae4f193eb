package systems

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Clamp functions for common value ranges

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a value to the [0, 1] range. NaN maps to 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Saturate is the divisive-normalisation response x/(x+sigma), in [0,1).
// Half-saturation at x == sigma. A non-positive sigma disables the cue.
func Saturate(x, sigma float64) float64 {
	if sigma <= 0 || x <= 0 || math.IsNaN(x) {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}
	return clamp01(x / (x + sigma))
}

// Rotation helpers

// normalizeQuat returns q scaled to unit length; a zero quaternion becomes identity.
func normalizeQuat(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < 1e-12 || math.IsNaN(n) {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// rotationAngle returns the angle of the rotation taking from onto to, in [0, pi].
func rotationAngle(from, to quat.Number) float64 {
	delta := normalizeQuat(quat.Mul(normalizeQuat(to), quat.Inv(normalizeQuat(from))))
	// q and -q encode the same rotation; take the short way round.
	w := clampFloat(math.Abs(delta.Real), 0, 1)
	return 2 * math.Acos(w)
}
