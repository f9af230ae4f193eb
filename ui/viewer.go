package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
	"github.com/pthm-cable/gaze/game"
	"github.com/pthm-cable/gaze/renderer"
)

const (
	panelWidth   = 260
	orbitSpeed   = 1.2 // radians per second
	zoomSpeed    = 0.8 // fraction of distance per second
	minOrbitDist = 5.0
	maxSpeed     = 10
)

const controlsLegend = "[Space] pause  [,/.] speed  [Tab] view  [M] weight mode  [S] snapshot  [Arrows] orbit  [Click] inspect"

// Viewer is the graphical front end: it draws the scene and panels, and
// routes keyboard and mouse input to the game.
type Viewer struct {
	game *game.Game

	oracle     *renderer.RaylibOracle
	scene      *renderer.SceneRenderer
	background *renderer.BackgroundRenderer

	overlays  *OverlayRegistry
	hud       *HUD
	controls  *ControlsPanel
	weights   *WeightPanel
	inspector *Inspector
	perf      *PerfPanel

	width, height int32
	viewFromEye   bool
	pivot         r3.Vec

	selected    ecs.Entity
	hasSelected bool
}

// NewViewer creates a viewer for g and installs a raylib-backed visibility
// oracle. Must be called after the raylib window is created.
func NewViewer(g *game.Game, width, height int32) *Viewer {
	cfg := g.Config()
	bg := cfg.Attention.Background

	v := &Viewer{
		game:       g,
		oracle:     renderer.NewRaylibOracle(width, height, g.Occluders()),
		scene:      renderer.NewSceneRenderer(),
		background: renderer.NewBackgroundRenderer(width, height, renderer.ToColor(rgb(bg), 255)),
		overlays:   NewOverlayRegistry(),
		hud:        NewHUD(),
		controls:   NewControlsPanel(width-panelWidth-10, 10, panelWidth),
		weights:    NewWeightPanel(width-panelWidth-10, 10, panelWidth),
		inspector:  NewInspector(10, 120, panelWidth),
		perf:       NewPerfPanel(10, height-140),
		width:      width,
		height:     height,
		pivot:      r3.Vec{X: cfg.Camera.Target[0], Y: cfg.Camera.Target[1], Z: cfg.Camera.Target[2]},
	}
	g.SetVisibilityOracle(v.oracle)
	return v
}

// Update handles input and advances the simulation.
func (v *Viewer) Update() {
	v.handleInput()
	v.game.Update()
}

// view returns the eye the scene is drawn from.
func (v *Viewer) view() *camera.Eye {
	if v.viewFromEye && v.game.Eye() != nil {
		return v.game.Eye()
	}
	return v.game.Camera()
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	g := v.game
	report := g.Report()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	v.background.Draw()

	v.scene.ShowEligible = v.overlays.IsEnabled(OverlayEligible)
	v.scene.ShowFrustum = v.overlays.IsEnabled(OverlayFrustum)
	v.scene.Draw(g, v.view())

	data := HUDData{
		Title:      "Gaze",
		Objects:    len(g.Objects()),
		Tick:       g.Tick(),
		Speed:      g.StepsPerUpdate(),
		FPS:        rl.GetFPS(),
		Paused:     g.Paused(),
		View:       "camera",
		WeightMode: g.Attention().Policy().Mode().String(),
	}
	if v.viewFromEye && g.Eye() != nil {
		data.View = "npc eye"
	}
	if report != nil {
		data.Eligible = report.Eligible
	}
	if t := g.Attention().GetCurrentTarget(); t.Found {
		data.HasTarget = true
		data.TargetID = uint64(t.ID)
		data.Score = t.Score
	}
	v.hud.Draw(data)
	v.hud.DrawControls(v.height, controlsLegend)

	y := int32(10)
	if v.overlays.IsEnabled(OverlayWeights) {
		v.weights.SetPosition(v.width-panelWidth-10, y)
		y = v.weights.Draw(g.Attention().Policy(), report) + 10
	}
	v.controls.SetPosition(v.width-panelWidth-10, y)
	v.controls.Draw(v.overlays)

	if v.overlays.IsEnabled(OverlayInspector) {
		if ins, ok := v.inspectorData(); ok {
			v.inspector.Draw(ins)
		}
	}
	if v.overlays.IsEnabled(OverlayPerf) {
		v.perf.SetPosition(10, v.height-140)
		v.perf.Draw(g.PerfStats())
	}

	rl.EndDrawing()
}

// inspectorData gathers the selected object's state. A despawned selection is dropped.
func (v *Viewer) inspectorData() (*InspectorData, bool) {
	if !v.hasSelected {
		return nil, false
	}
	g := v.game
	tr, b, color, ok := g.ObjectState(v.selected)
	if !ok {
		v.hasSelected = false
		return nil, false
	}
	id, cues, _ := g.ObjectCues(v.selected)

	data := &InspectorData{
		ID:       id,
		Position: tr.Position,
		Size:     b.Size(),
		Color:    color,
		Cues:     cues,
		Score:    -1,
		Lifetime: g.Lifetime(id),
	}
	if report := g.Report(); report != nil {
		data.Angular = report.Angular
		for _, row := range report.Rows {
			if row.Entity == v.selected {
				data.Eligible = row.Eligible
				data.Score = row.Score
				data.Best = row.Best
				break
			}
		}
	}
	return data, true
}
