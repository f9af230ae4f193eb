package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
	"github.com/pthm-cable/gaze/components"
	"github.com/pthm-cable/gaze/config"
	"github.com/pthm-cable/gaze/renderer"
	"github.com/pthm-cable/gaze/systems"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	g := v.game

	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.TogglePause()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.SetStepsPerUpdate(g.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.StepsPerUpdate() < maxSpeed {
		g.SetStepsPerUpdate(g.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyTab) && g.Eye() != nil {
		v.viewFromEye = !v.viewFromEye
	}

	if rl.IsKeyPressed(rl.KeyM) {
		policy := g.Attention().Policy()
		if policy.Mode() == systems.WeightsFixed {
			policy.SetMode(systems.WeightsAdaptive)
		} else {
			policy.SetMode(systems.WeightsFixed)
		}
	}

	if rl.IsKeyPressed(rl.KeyS) {
		g.SaveSnapshotNow()
	}

	v.overlays.HandleKeyPress()

	if !v.viewFromEye {
		v.handleCameraInput()
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		if e, ok := renderer.Pick(g, v.view(), rl.GetMousePosition()); ok {
			v.selected = e
			v.hasSelected = true
		}
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		v.hasSelected = false
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == v.width && h == v.height {
		return
	}
	v.width = w
	v.height = h

	v.oracle.Resize(w, h)
	v.background.Resize(w, h)
	if h > 0 {
		aspect := float64(w) / float64(h)
		v.game.Camera().Aspect = aspect
		if eye := v.game.Eye(); eye != nil {
			eye.Aspect = aspect
		}
	}
}

// handleCameraInput orbits the render camera around its pivot.
func (v *Viewer) handleCameraInput() {
	cam := v.game.Camera()
	dt := float64(rl.GetFrameTime())

	offset := r3.Sub(cam.Position, v.pivot)

	var yaw float64
	if rl.IsKeyDown(rl.KeyLeft) {
		yaw -= orbitSpeed * dt
	}
	if rl.IsKeyDown(rl.KeyRight) {
		yaw += orbitSpeed * dt
	}
	if yaw != 0 {
		offset = r3.NewRotation(yaw, camera.WorldUp).Rotate(offset)
	}

	zoom := 1.0
	if rl.IsKeyDown(rl.KeyUp) {
		zoom -= zoomSpeed * dt
	}
	if rl.IsKeyDown(rl.KeyDown) {
		zoom += zoomSpeed * dt
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		zoom *= 1 - 0.1*float64(wheel)
	}
	if zoom != 1 && r3.Norm(offset)*zoom >= minOrbitDist {
		offset = r3.Scale(zoom, offset)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		cfg := v.game.Config()
		offset = r3.Sub(vec(cfg.Camera.Position), v.pivot)
	}

	cam.Position = r3.Add(v.pivot, offset)
	cam.LookAt(v.pivot)
}

func vec(v config.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func rgb(v config.Vec3) components.RGB {
	return components.RGB{R: v[0], G: v[1], B: v[2]}
}
