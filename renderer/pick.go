package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gaze/camera"
)

// Pick returns the object under a screen position, nearest first.
func Pick(s Scene, view *camera.Eye, screen rl.Vector2) (ecs.Entity, bool) {
	ray := rl.GetScreenToWorldRay(screen, Camera3D(view))

	var (
		closest ecs.Entity
		best    float32
		found   bool
	)
	for _, e := range s.Objects() {
		tr, b, _, ok := s.ObjectState(e)
		if !ok {
			continue
		}
		hit := rl.GetRayCollisionBox(ray, toBoundingBox(b.Box(tr.Position)))
		if !hit.Hit {
			continue
		}
		if !found || hit.Distance < best {
			closest = e
			best = hit.Distance
			found = true
		}
	}
	return closest, found
}
