// Cue response preview tool - interactive plots of the saliency cue curves
// with sliders.
//
// Usage: go run ./cmd/cuepreview [-config config.yaml]
package main

import (
	"flag"
	"fmt"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gaze/components"
	"github.com/pthm-cable/gaze/config"
	"github.com/pthm-cable/gaze/renderer"
	"github.com/pthm-cable/gaze/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	plotWidth    = 560
	plotHeight   = 150
	panelWidth   = windowWidth - plotWidth - 40
	samples      = 200
)

// CueParams holds the tunable cue constants.
type CueParams struct {
	MotionSigma  float32
	AngularSigma float32
	MaxDistance  float32
	Range        float32
	Size         float32
	Surface      [3]float32
	Background   [3]float32
}

func paramsFromConfig(cfg *config.Config) CueParams {
	a := cfg.Attention
	return CueParams{
		MotionSigma:  float32(a.MotionSigma),
		AngularSigma: float32(a.AngularSigma),
		MaxDistance:  float32(a.MaxDistance),
		Range:        float32(a.Range),
		Size:         2,
		Surface:      [3]float32{0.9, 0.2, 0.1},
		Background:   [3]float32{float32(a.Background[0]), float32(a.Background[1]), float32(a.Background[2])},
	}
}

func rgb(c [3]float32) components.RGB {
	return components.RGB{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Cue Response Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := paramsFromConfig(cfg)
	params := defaults

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Plots
		x, y := int32(10), int32(10)
		speedMax := 4 * params.MotionSigma
		drawCurve(x, y, "Motion vs speed", 0, speedMax, func(v float64) float64 {
			return systems.Saturate(v, float64(params.MotionSigma))
		}, rl.Red)
		y += plotHeight + 30

		angMax := 4 * params.AngularSigma
		drawCurve(x, y, "Angular velocity vs angular speed (rad/s)", 0, angMax, func(v float64) float64 {
			return systems.Saturate(v, float64(params.AngularSigma))
		}, rl.Orange)
		y += plotHeight + 30

		inverse := systems.NewCueExtractor(systems.CueParams{
			MaxDistance: float64(params.MaxDistance),
			Proximity:   systems.ProximityInverseDistance,
		})
		sized := systems.NewCueExtractor(systems.CueParams{
			Proximity: systems.ProximitySizeOverDistance,
		})
		drawCurve(x, y, "Proximity vs distance (red: inverse, blue: size/distance)", 0, params.Range, func(v float64) float64 {
			return inverse.ProximityAt(v, float64(params.Size))
		}, rl.Red)
		drawCurve(x, y, "", 0, params.Range, func(v float64) float64 {
			return sized.ProximityAt(v, float64(params.Size))
		}, rl.Blue)
		y += plotHeight + 30

		// Contrast swatches
		surface, background := rgb(params.Surface), rgb(params.Background)
		rl.DrawRectangle(x, y, 80, 60, renderer.ToColor(background, 255))
		rl.DrawRectangle(x+20, y+15, 40, 30, renderer.ToColor(surface, 255))
		rl.DrawRectangleLines(x, y, 80, 60, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Color contrast:     %.3f", systems.ColorContrast(surface, background)), x+100, y+10, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Luminance contrast: %.3f", systems.LuminanceContrast(surface, background)), x+100, y+32, 16, rl.DarkGray)

		// Control panel
		panelX := float32(plotWidth + 30)
		panelY := float32(10)

		rl.DrawText("Cue Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		params.MotionSigma = slider(panelX, &panelY, "Motion sigma (half-saturation speed)", params.MotionSigma, 0.1, 20, "%.2f")
		params.AngularSigma = slider(panelX, &panelY, "Angular sigma (rad/s)", params.AngularSigma, 0.1, 10, "%.2f")
		params.MaxDistance = slider(panelX, &panelY, "Max distance (inverse proximity)", params.MaxDistance, 1, 200, "%.1f")
		params.Range = slider(panelX, &panelY, "Attention range", params.Range, 1, 200, "%.1f")
		params.Size = slider(panelX, &panelY, "Object size", params.Size, 0.1, 10, "%.2f")

		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		for i, ch := range []string{"R", "G", "B"} {
			params.Surface[i] = slider(panelX, &panelY, "Surface "+ch, params.Surface[i], 0, 1, "%.2f")
		}

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
		}
		panelY += 45

		// Output YAML
		yaml := fmt.Sprintf(`attention:
  motion_sigma: %.2f
  angular_sigma: %.2f
  max_distance: %.1f
  range: %.1f`,
			params.MotionSigma, params.AngularSigma, params.MaxDistance, params.Range)

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		rl.DrawText(yaml, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider and advances y.
func slider(x float32, y *float32, label string, value, lo, hi float32, format string) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, v), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return v
}

// drawCurve plots f over [lo, hi] into a framed box with a [0,1] y axis.
func drawCurve(x, y int32, title string, lo, hi float32, f func(float64) float64, color rl.Color) {
	if title != "" {
		rl.DrawRectangleLines(x, y, plotWidth, plotHeight, rl.DarkGray)
		rl.DrawLine(x, y+plotHeight/2, x+plotWidth, y+plotHeight/2, rl.LightGray)
		rl.DrawText(title, x, y+plotHeight+4, 14, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("%.1f", hi), x+plotWidth-40, y+plotHeight+4, 12, rl.Gray)
	}

	prev := rl.Vector2{}
	for i := 0; i <= samples; i++ {
		t := float32(i) / samples
		v := float32(f(float64(lo + t*(hi-lo))))
		p := rl.Vector2{
			X: float32(x) + t*plotWidth,
			Y: float32(y) + (1-v)*plotHeight,
		}
		if i > 0 {
			rl.DrawLineV(prev, p, color)
		}
		prev = p
	}
}
