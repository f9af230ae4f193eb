package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// BackgroundRenderer fills the screen with a vertical gradient around the
// configured background color, which the contrast cues measure against.
type BackgroundRenderer struct {
	screenW, screenH int32
	top, bottom      rl.Color
}

// NewBackgroundRenderer creates a background renderer for the given base color.
func NewBackgroundRenderer(screenW, screenH int32, base rl.Color) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: screenW,
		screenH: screenH,
		top:     shade(base, 1.15),
		bottom:  shade(base, 0.85),
	}
}

// Resize updates the screen size.
func (b *BackgroundRenderer) Resize(screenW, screenH int32) {
	b.screenW = screenW
	b.screenH = screenH
}

// Draw renders the gradient.
func (b *BackgroundRenderer) Draw() {
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, b.top, b.bottom)
}

func shade(c rl.Color, f float32) rl.Color {
	scale := func(v uint8) uint8 {
		x := float32(v) * f
		if x > 255 {
			return 255
		}
		return uint8(x)
	}
	return rl.Color{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: 255}
}
