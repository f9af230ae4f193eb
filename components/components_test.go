package components

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBoundsBoxAndSize(t *testing.T) {
	b := Bounds{Half: r3.Vec{X: 1, Y: 2, Z: 0.5}}
	box := b.Box(r3.Vec{X: 10, Y: 0, Z: -1})

	if box.Min != (r3.Vec{X: 9, Y: -2, Z: -1.5}) {
		t.Errorf("box min = %v", box.Min)
	}
	if box.Max != (r3.Vec{X: 11, Y: 2, Z: -0.5}) {
		t.Errorf("box max = %v", box.Max)
	}
	if b.Size() != 4 {
		t.Errorf("Size() = %v, want 4", b.Size())
	}
}

func TestLuminanceWeights(t *testing.T) {
	tests := []struct {
		name string
		c    RGB
		want float64
	}{
		{"black", RGB{}, 0},
		{"white", RGB{1, 1, 1}, 1},
		{"red", RGB{R: 1}, 0.2126},
		{"green", RGB{G: 1}, 0.7152},
		{"blue", RGB{B: 1}, 0.0722},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Luminance(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Luminance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorDistanceMax(t *testing.T) {
	d := RGB{}.Distance(RGB{1, 1, 1})
	if math.Abs(d-math.Sqrt(3)) > 1e-9 {
		t.Errorf("black-white distance = %v, want sqrt(3)", d)
	}
}

func TestAppearanceSurfaceFromSource(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})

	app := &Appearance{Base: RGB{G: 1}, Source: img}
	got := app.Surface()

	if math.Abs(got.R-0.5) > 1e-6 || math.Abs(got.G) > 1e-6 || math.Abs(got.B-0.5) > 1e-6 {
		t.Errorf("Surface() = %+v, want {0.5 0 0.5}", got)
	}
}

func TestAppearanceSurfaceFallsBackToBase(t *testing.T) {
	app := &Appearance{Base: RGB{R: 0.3, G: 0.4, B: 0.5}}
	if got := app.Surface(); got != app.Base {
		t.Errorf("Surface() = %+v, want base %+v", got, app.Base)
	}

	empty := &Appearance{Base: RGB{R: 1}, Source: image.NewRGBA(image.Rect(0, 0, 0, 0))}
	if got := empty.Surface(); got != empty.Base {
		t.Errorf("empty source Surface() = %+v, want base", got)
	}
}
