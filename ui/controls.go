package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gaze/systems"
)

// ControlsPanel lists the overlay toggles and their keys.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the controls panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(totalItems)*lineHeight + padding*2 + lineHeight + 4*int32(len(categories))

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}

	return c.y + panelHeight
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "scene":
		return "Scene"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}

// cueLabels names the weight vector entries in display order.
var cueLabels = [5]string{"Motion", "Angular", "Proximity", "Color", "Luminance"}

func weightArray(w systems.Weights) [5]float64 {
	return [5]float64{w.Motion, w.Angular, w.Proximity, w.Color, w.Luminance}
}

func weightsFromArray(a [5]float64) systems.Weights {
	return systems.Weights{Motion: a[0], Angular: a[1], Proximity: a[2], Color: a[3], Luminance: a[4]}
}

// WeightPanel shows the frame's cue weights and spreads. In fixed mode the
// weights are edited with sliders; a button switches the weight mode.
type WeightPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewWeightPanel creates a new weight panel.
func NewWeightPanel(x, y, width int32) *WeightPanel {
	return &WeightPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *WeightPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel and applies any edits to policy.
// report may be nil before the first frame.
func (p *WeightPanel) Draw(policy *systems.WeightPolicy, report *systems.FrameReport) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	contentWidth := p.width - padding*2

	rows := int32(len(cueLabels))
	panelHeight := padding*2 + lineHeight + 30 + rows*(lineHeight+8) + lineHeight*2
	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	x := p.x + padding
	y := p.y + padding
	rl.DrawText("Cue Weights", x, y, 16, rl.White)
	y += lineHeight + 4

	mode := policy.Mode()
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(contentWidth), Height: 22}, "Mode: "+mode.String()) {
		if mode == systems.WeightsFixed {
			policy.SetMode(systems.WeightsAdaptive)
		} else {
			policy.SetMode(systems.WeightsFixed)
		}
		mode = policy.Mode()
	}
	y += 30

	var current, spreads [5]float64
	if report != nil {
		current = weightArray(report.Weights)
		spreads = weightArray(systems.Weights(report.Spreads))
	}

	if mode == systems.WeightsFixed {
		fixed := weightArray(policy.Fixed())
		changed := false
		for i, label := range cueLabels {
			if i == 1 && !policy.Angular() {
				continue
			}
			rl.DrawText(label, x, y+4, r.Theme.FontSize, r.Theme.LabelColor)
			v := gui.SliderBar(
				rl.Rectangle{X: float32(x + r.Theme.LabelWidth), Y: float32(y), Width: float32(contentWidth - r.Theme.LabelWidth - 40), Height: 18},
				"", fmt.Sprintf("%.2f", fixed[i]),
				float32(fixed[i]), 0, 1,
			)
			if float64(v) != fixed[i] {
				fixed[i] = float64(v)
				changed = true
			}
			y += lineHeight + 8
		}
		if changed {
			policy.SetFixed(weightsFromArray(fixed))
		}
	} else {
		for i, label := range cueLabels {
			if i == 1 && !policy.Angular() {
				continue
			}
			y = r.DrawBar(x, y, label, float32(current[i]), contentWidth)
			rl.DrawText(fmt.Sprintf("spread %.3f", spreads[i]), x+r.Theme.LabelWidth, y, 10, rl.Gray)
			y += 8
		}
	}

	if report != nil {
		rl.DrawText(fmt.Sprintf("Eligible: %d / %d", report.Eligible, len(report.Rows)), x, y+4, r.Theme.FontSize, r.Theme.ValueColor)
	}

	return p.y + panelHeight
}
