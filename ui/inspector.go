package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/components"
	"github.com/pthm-cable/gaze/renderer"
	"github.com/pthm-cable/gaze/systems"
	"github.com/pthm-cable/gaze/telemetry"
)

// InspectorData holds everything the inspector shows about one object.
type InspectorData struct {
	ID       components.ObjectID
	Position r3.Vec
	Size     float64
	Color    components.RGB
	Cues     components.Cues
	Eligible bool
	Score    float64
	Best     bool
	Angular  bool
	Lifetime *telemetry.LifetimeStats
}

func inspected(data any) *InspectorData {
	return data.(*InspectorData)
}

func cueBar(id, label string, get func(c components.Cues) float64) FieldDescriptor {
	return FieldDescriptor{
		ID:     id,
		Label:  label,
		Widget: WidgetBar,
		Getter: func(d any) float32 { return float32(get(inspected(d).Cues)) },
	}
}

// inspectorSections describes the inspector layout.
var inspectorSections = []SectionDescriptor{
	{
		ID:    "identity",
		Title: "Object",
		Fields: []FieldDescriptor{
			{ID: "id", Label: "ID", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("#%d", inspected(d).ID)
			}},
			{ID: "position", Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
				p := inspected(d).Position
				return fmt.Sprintf("%.1f, %.1f, %.1f", p.X, p.Y, p.Z)
			}},
			{ID: "size", Label: "Size", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 {
				return float32(inspected(d).Size)
			}},
			{ID: "color", Label: "Surface", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color {
				return renderer.ToColor(inspected(d).Color, 255)
			}},
		},
	},
	{
		ID:    "cues",
		Title: "Cues",
		Fields: []FieldDescriptor{
			cueBar("motion", "Motion", func(c components.Cues) float64 { return c.Motion }),
			func() FieldDescriptor {
				fd := cueBar("angular", "Angular", func(c components.Cues) float64 { return c.AngularVelocity })
				fd.Visible = func(d any) bool { return inspected(d).Angular }
				return fd
			}(),
			cueBar("proximity", "Proximity", func(c components.Cues) float64 { return c.Proximity }),
			cueBar("color_contrast", "Color", func(c components.Cues) float64 { return c.ColorContrast }),
			cueBar("luminance_contrast", "Luminance", func(c components.Cues) float64 { return c.LuminanceContrast }),
		},
	},
	{
		ID:    "attention",
		Title: "Attention",
		Fields: []FieldDescriptor{
			{ID: "eligible", Label: "Eligible", Widget: WidgetText, TextGetter: func(d any) string {
				return yesNo(inspected(d).Eligible)
			}},
			{ID: "score", Label: "Score", Widget: WidgetBar, Color: DefaultTheme().BarFillTarget,
				Visible: func(d any) bool { return inspected(d).Score != systems.NoScore },
				Getter:  func(d any) float32 { return float32(inspected(d).Score) }},
			{ID: "best", Label: "Target", Widget: WidgetText, TextGetter: func(d any) string {
				return yesNo(inspected(d).Best)
			}},
		},
	},
	{
		ID:      "lifetime",
		Title:   "Lifetime",
		Visible: func(d any) bool { return inspected(d).Lifetime != nil },
		Fields: []FieldDescriptor{
			{ID: "frames", Label: "Frames", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", inspected(d).Lifetime.Frames)
			}},
			{ID: "frames_eligible", Label: "Eligible", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", inspected(d).Lifetime.FramesEligible)
			}},
			{ID: "frames_targeted", Label: "Targeted", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", inspected(d).Lifetime.FramesTargeted)
			}},
			{ID: "fixations", Label: "Fixations", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", inspected(d).Lifetime.Fixations)
			}},
			{ID: "peak_score", Label: "Peak score", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%.3f", inspected(d).Lifetime.PeakScore)
			}},
		},
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Inspector renders the object inspection panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given data and returns the Y below it.
func (ins *Inspector) Draw(data *InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2

	// Lines: section headers plus visible fields.
	lines := int32(0)
	for _, sd := range inspectorSections {
		if sd.Visible != nil && !sd.Visible(data) {
			continue
		}
		lines++
		for _, fd := range sd.Fields {
			if fd.Visible == nil || fd.Visible(data) {
				lines++
			}
		}
	}
	panelHeight := lines*(r.Theme.LineHeight+2) + int32(len(inspectorSections))*4 + padding*2
	r.DrawPanel(ins.x, ins.y, ins.width, panelHeight)

	y := ins.y + padding
	for _, sd := range inspectorSections {
		y = r.DrawSection(ins.x+padding, y, sd, data, contentWidth)
	}
	return ins.y + panelHeight
}
