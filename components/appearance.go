package components

import (
	"image"
	"math"
)

// RGB is a linear color with channels in [0,1].
type RGB struct {
	R, G, B float64
}

// Luminance returns relative luminance using the Rec. 709 weights.
func (c RGB) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// Distance returns the Euclidean distance between two colors in RGB space.
func (c RGB) Distance(o RGB) float64 {
	dr := c.R - o.R
	dg := c.G - o.G
	db := c.B - o.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Appearance describes an object's surface for the contrast cues.
// Source, when set, takes precedence over Base.
type Appearance struct {
	Base   RGB
	Source image.Image

	avg      RGB
	avgReady bool
}

// Surface returns the average surface color. The source image average is
// computed on first use and cached.
func (a *Appearance) Surface() RGB {
	if a.Source == nil {
		return a.Base
	}
	if !a.avgReady {
		if avg, ok := AverageColor(a.Source); ok {
			a.avg = avg
		} else {
			a.avg = a.Base
		}
		a.avgReady = true
	}
	return a.avg
}

// AverageColor returns the mean color of all pixels in img.
// Returns false for an empty image.
func AverageColor(img image.Image) (RGB, bool) {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n <= 0 {
		return RGB{}, false
	}

	var sr, sg, sb float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			sr += float64(r)
			sg += float64(g)
			sb += float64(bl)
		}
	}

	scale := 1.0 / (float64(n) * 0xffff)
	return RGB{R: sr * scale, G: sg * scale, B: sb * scale}, true
}
