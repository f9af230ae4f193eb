package game

import (
	"image"
	"image/color"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/components"
)

// texturedFraction is the share of objects that carry a surface image.
const texturedFraction = 0.3

// textureSize is the edge length of generated surface images.
const textureSize = 16

// spawnObject creates a salient object with a random pose, motion, size and
// surface inside the scene bounds.
func (g *Game) spawnObject() ecs.Entity {
	sc := g.cfg.Scene
	bounds := g.physics.Bounds()

	size := sc.MinSize + g.rng.Float64()*(sc.MaxSize-sc.MinSize)
	half := r3.Vec{
		X: size / 2 * (0.6 + 0.4*g.rng.Float64()),
		Y: size / 2 * (0.6 + 0.4*g.rng.Float64()),
		Z: size / 2 * (0.6 + 0.4*g.rng.Float64()),
	}

	pos := r3.Vec{
		X: g.uniform(bounds.Min.X+half.X, bounds.Max.X-half.X),
		Y: g.uniform(bounds.Min.Y+half.Y, bounds.Max.Y-half.Y),
		Z: g.uniform(bounds.Min.Z+half.Z, bounds.Max.Z-half.Z),
	}

	var kin components.Kinematics
	if g.rng.Float64() >= sc.StillFraction {
		speed := sc.MaxSpeed * (0.2 + 0.8*g.rng.Float64())
		kin.Velocity = r3.Scale(speed, g.randomDirection())
		kin.Spin = r3.Scale(sc.MaxSpin*g.rng.Float64(), g.randomDirection())
	}

	id := g.nextID
	g.nextID++

	salient := components.Salient{ID: id}
	tr := components.Transform{
		Position: pos,
		Rotation: g.randomRotation(),
	}
	b := components.Bounds{Half: half}
	app := g.randomAppearance()
	hist := components.NewHistory(tr, g.now())
	cues := components.Cues{}

	entity := g.objectMapper.NewEntity(&salient, &tr, &kin, &b, &app, &hist, &cues)
	g.population.Add(entity)
	return entity
}

// uniform returns a random value in [lo, hi], or the midpoint if the range is empty.
func (g *Game) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return (lo + hi) / 2
	}
	return lo + g.rng.Float64()*(hi-lo)
}

// randomDirection returns a uniformly distributed unit vector.
func (g *Game) randomDirection() r3.Vec {
	z := 2*g.rng.Float64() - 1
	phi := 2 * math.Pi * g.rng.Float64()
	r := math.Sqrt(1 - z*z)
	return r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}

// randomRotation returns a random unit quaternion from an axis and angle.
func (g *Game) randomRotation() quat.Number {
	axis := g.randomDirection()
	angle := 2 * math.Pi * g.rng.Float64()
	s := math.Sin(angle / 2)
	return quat.Number{
		Real: math.Cos(angle / 2),
		Imag: s * axis.X,
		Jmag: s * axis.Y,
		Kmag: s * axis.Z,
	}
}

// randomAppearance returns a flat color, or a two-tone checker image for some objects.
func (g *Game) randomAppearance() components.Appearance {
	base := components.RGB{R: g.rng.Float64(), G: g.rng.Float64(), B: g.rng.Float64()}
	if g.rng.Float64() >= texturedFraction {
		return components.Appearance{Base: base}
	}
	alt := components.RGB{R: g.rng.Float64(), G: g.rng.Float64(), B: g.rng.Float64()}
	return components.Appearance{Base: base, Source: checker(base, alt, textureSize)}
}

// checker builds a size x size image alternating between two colors per pixel.
func checker(a, b components.RGB, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	ca, cb := toRGBA(a), toRGBA(b)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, ca)
			} else {
				img.SetRGBA(x, y, cb)
			}
		}
	}
	return img
}

func toRGBA(c components.RGB) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(c.R * 255)),
		G: uint8(math.Round(c.G * 255)),
		B: uint8(math.Round(c.B * 255)),
		A: 255,
	}
}
