package game

import (
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gaze/telemetry"
)

// Population keeps the live salient objects in spawn order.
// Selection ties resolve by this order.
type Population struct {
	entities []ecs.Entity
}

// NewPopulation creates an empty population.
func NewPopulation() *Population {
	return &Population{}
}

// Add appends an object.
func (p *Population) Add(e ecs.Entity) {
	p.entities = append(p.entities, e)
}

// Remove drops an object, keeping the order of the rest.
func (p *Population) Remove(e ecs.Entity) bool {
	i := slices.Index(p.entities, e)
	if i < 0 {
		return false
	}
	p.entities = slices.Delete(p.entities, i, i+1)
	return true
}

// Objects implements systems.PopulationSource.
func (p *Population) Objects() []ecs.Entity {
	return p.entities
}

// Len returns the number of objects.
func (p *Population) Len() int {
	return len(p.entities)
}

// Oldest returns the earliest spawned live object.
func (p *Population) Oldest() (ecs.Entity, bool) {
	if len(p.entities) == 0 {
		return ecs.Entity{}, false
	}
	return p.entities[0], true
}

// now returns the simulation time of the current tick in seconds.
func (g *Game) now() float64 {
	return float64(g.tick) * g.cfg.Physics.DT
}

// spawnInitialPopulation creates the starting objects.
func (g *Game) spawnInitialPopulation() {
	for i := 0; i < g.cfg.Scene.InitialObjects; i++ {
		g.Spawn()
	}
}

// Spawn creates a new random object and registers it with telemetry.
func (g *Game) Spawn() ecs.Entity {
	e := g.spawnObject()
	id := g.salientMap.Get(e).ID

	g.lifetimeTracker.Register(id, g.tick)
	ev := telemetry.NewSpawnEvent(g.tick, id)
	g.collector.Record(ev)
	ev.LogEvent()

	return e
}

// Despawn removes an object from the world. Handles to it become stale.
func (g *Game) Despawn(e ecs.Entity) bool {
	if !g.world.Alive(e) || !g.salientMap.Has(e) {
		return false
	}
	id := g.salientMap.Get(e).ID

	g.population.Remove(e)
	g.world.RemoveEntity(e)

	stats := g.lifetimeTracker.Remove(id)
	stats.LogRetired(id, g.tick)
	g.hallOfFame.Consider(id, stats)
	ev := telemetry.NewDespawnEvent(g.tick, id)
	g.collector.Record(ev)
	ev.LogEvent()

	return true
}

// churn replaces the oldest object with a new one every churn interval.
func (g *Game) churn(dt float64) {
	interval := g.cfg.Scene.ChurnInterval
	if interval <= 0 {
		return
	}
	g.churnTimer += dt
	for g.churnTimer >= interval {
		g.churnTimer -= interval
		if e, ok := g.population.Oldest(); ok {
			g.Despawn(e)
		}
		g.Spawn()
	}
}
