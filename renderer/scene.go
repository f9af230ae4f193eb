package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
	"github.com/pthm-cable/gaze/components"
	"github.com/pthm-cable/gaze/systems"
)

// Scene is the read-only view of the simulation the renderer draws.
type Scene interface {
	Objects() []ecs.Entity
	ObjectState(e ecs.Entity) (components.Transform, components.Bounds, components.RGB, bool)
	Occluders() []r3.Box
	Report() *systems.FrameReport
	Eye() *camera.Eye
}

var (
	occluderColor = rl.Color{R: 70, G: 70, B: 80, A: 255}
	eligibleColor = rl.Color{R: 220, G: 220, B: 220, A: 255}
	hiddenColor   = rl.Color{R: 90, G: 90, B: 90, A: 255}
	targetColor   = rl.Gold
	eyeColor      = rl.SkyBlue
)

// SceneRenderer draws objects, occluders, the NPC eye and its gaze.
type SceneRenderer struct {
	ShowFrustum  bool
	ShowEligible bool

	rowIndex map[ecs.Entity]int
}

// NewSceneRenderer creates a scene renderer.
func NewSceneRenderer() *SceneRenderer {
	return &SceneRenderer{
		ShowEligible: true,
		rowIndex:     make(map[ecs.Entity]int),
	}
}

// Draw renders the scene as seen from view. Must be called between BeginDrawing and EndDrawing.
func (r *SceneRenderer) Draw(s Scene, view *camera.Eye) {
	report := s.Report()
	clear(r.rowIndex)
	if report != nil {
		for i, row := range report.Rows {
			r.rowIndex[row.Entity] = i
		}
	}

	rl.BeginMode3D(Camera3D(view))
	rl.DrawGrid(60, 1)

	for _, b := range s.Occluders() {
		center := toVector3(b.Center())
		size := toVector3(b.Size())
		rl.DrawCubeV(center, size, occluderColor)
	}

	for _, e := range s.Objects() {
		tr, bounds, color, ok := s.ObjectState(e)
		if !ok {
			continue
		}
		box := bounds.Box(tr.Position)
		rl.DrawCubeV(toVector3(tr.Position), toVector3(r3.Scale(2, bounds.Half)), ToColor(color, 255))

		if report == nil {
			continue
		}
		i, ok := r.rowIndex[e]
		if !ok {
			continue
		}
		row := report.Rows[i]
		switch {
		case row.Best:
			rl.DrawBoundingBox(toBoundingBox(grow(box, 0.15)), targetColor)
		case r.ShowEligible && row.Eligible:
			rl.DrawBoundingBox(toBoundingBox(box), eligibleColor)
		case r.ShowEligible:
			rl.DrawBoundingBox(toBoundingBox(box), hiddenColor)
		}
	}

	if eye := s.Eye(); eye != nil && eye != view {
		r.drawEye(eye, report)
	}

	rl.EndMode3D()
}

// drawEye draws the NPC eye, a gaze line to the current target and optionally its frustum.
func (r *SceneRenderer) drawEye(eye *camera.Eye, report *systems.FrameReport) {
	pos := toVector3(eye.Position)
	rl.DrawSphere(pos, 0.3, eyeColor)
	rl.DrawLine3D(pos, toVector3(r3.Add(eye.Position, r3.Scale(2, eye.Forward))), eyeColor)

	if report != nil && report.Result.Found {
		rl.DrawLine3D(pos, toVector3(report.Result.Position), targetColor)
	}

	if r.ShowFrustum {
		drawFrustum(eye)
	}
}

// drawFrustum draws the four edges of the eye's view volume from the eye to
// a fixed preview depth.
func drawFrustum(eye *camera.Eye) {
	const depth = 12.0
	corners := eye.FarCorners(depth)
	pos := toVector3(eye.Position)
	for i := range corners {
		c := toVector3(corners[i])
		next := toVector3(corners[(i+1)%len(corners)])
		rl.DrawLine3D(pos, c, eyeColor)
		rl.DrawLine3D(c, next, eyeColor)
	}
}

func grow(b r3.Box, by float64) r3.Box {
	d := r3.Vec{X: by, Y: by, Z: by}
	return r3.Box{Min: r3.Sub(b.Min, d), Max: r3.Add(b.Max, d)}
}
