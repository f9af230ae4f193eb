// Package renderer draws the attention scene with raylib and provides a
// raylib-backed visibility oracle.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
	"github.com/pthm-cable/gaze/components"
)

func toVector3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

func toBoundingBox(b r3.Box) rl.BoundingBox {
	return rl.NewBoundingBox(toVector3(b.Min), toVector3(b.Max))
}

// Camera3D converts an eye into a raylib perspective camera.
func Camera3D(eye *camera.Eye) rl.Camera3D {
	return rl.Camera3D{
		Position:   toVector3(eye.Position),
		Target:     toVector3(eye.Target()),
		Up:         toVector3(eye.Up),
		Fovy:       float32(eye.FovY * 180 / math.Pi),
		Projection: rl.CameraPerspective,
	}
}

// ToColor converts a linear [0,1] color to an 8-bit raylib color.
func ToColor(c components.RGB, alpha uint8) rl.Color {
	return rl.Color{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: alpha,
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
