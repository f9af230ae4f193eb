package game

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
	"github.com/pthm-cable/gaze/components"
	"github.com/pthm-cable/gaze/config"
	"github.com/pthm-cable/gaze/systems"
	"github.com/pthm-cable/gaze/telemetry"
)

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Scene.InitialObjects = 6
	cfg.Scene.ChurnInterval = 0
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	if opts.Config == nil {
		opts.Config = testConfig(t, nil)
	}
	g, err := NewGameWithOptions(opts)
	require.NoError(t, err)
	t.Cleanup(g.Unload)
	return g
}

// pin stops an object and moves it to pos.
func pin(g *Game, e ecs.Entity, pos r3.Vec) {
	kin := ecs.NewMap[components.Kinematics](g.world)
	*kin.Get(e) = components.Kinematics{}
	g.transformMap.Get(e).Position = pos
}

func TestNewGameSpawnsInitialPopulation(t *testing.T) {
	g := newTestGame(t, Options{Seed: 1})

	objs := g.Objects()
	require.Len(t, objs, 6)
	for i, e := range objs {
		id, _, ok := g.ObjectCues(e)
		require.True(t, ok)
		assert.Equal(t, components.ObjectID(i+1), id, "ids follow spawn order")

		tr, b, _, ok := g.ObjectState(e)
		require.True(t, ok)
		bounds := g.physics.Bounds()
		assert.GreaterOrEqual(t, tr.Position.X-b.Half.X, bounds.Min.X-1e-9)
		assert.LessOrEqual(t, tr.Position.X+b.Half.X, bounds.Max.X+1e-9)
	}
	assert.Equal(t, 6, g.lifetimeTracker.Count())
}

func TestNewGameRejectsUnknownPolicy(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Attention.Visibility = "xray" })
	_, err := NewGameWithOptions(Options{Config: cfg})
	assert.Error(t, err)
}

func TestStepProducesReport(t *testing.T) {
	g := newTestGame(t, Options{Seed: 3})
	assert.Nil(t, g.Report())

	g.UpdateHeadless()

	rep := g.Report()
	require.NotNil(t, rep)
	assert.Equal(t, uint64(1), rep.Frame)
	assert.Len(t, rep.Rows, 6)
	assert.True(t, rep.Angular)

	best := 0
	for _, row := range rep.Rows {
		for _, v := range []float64{row.Cues.Motion, row.Cues.AngularVelocity, row.Cues.Proximity, row.Cues.ColorContrast, row.Cues.LuminanceContrast} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		if !row.Eligible {
			assert.Equal(t, systems.NoScore, row.Score)
		}
		if row.Best {
			best++
			assert.Equal(t, rep.Result.ID, row.ID)
		}
	}
	if rep.Result.Found {
		assert.Equal(t, 1, best)
	} else {
		assert.Equal(t, 0, best)
		assert.Equal(t, systems.NoScore, rep.Result.Score)
	}
}

func TestStepsPerUpdate(t *testing.T) {
	g := newTestGame(t, Options{Seed: 3, StepsPerUpdate: 4})
	g.UpdateHeadless()
	assert.Equal(t, uint64(4), g.Tick())

	g.SetStepsPerUpdate(0)
	assert.Equal(t, 1, g.StepsPerUpdate())
}

func TestPauseStopsUpdate(t *testing.T) {
	g := newTestGame(t, Options{Seed: 3})
	g.TogglePause()
	g.Update()
	assert.Equal(t, uint64(0), g.Tick())

	g.TogglePause()
	g.Update()
	assert.Equal(t, uint64(1), g.Tick())
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []systems.Result {
		g := newTestGame(t, Options{Seed: 42})
		var out []systems.Result
		for i := 0; i < 60; i++ {
			g.UpdateHeadless()
			r := g.Report().Result
			r.Entity = ecs.Entity{}
			out = append(out, r)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestChurnReplacesOldest(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Physics.DT = 0.25
		c.Scene.ChurnInterval = 1.0
	})
	g := newTestGame(t, Options{Seed: 5, Config: cfg})

	first := g.Objects()[0]
	for i := 0; i < 4; i++ {
		g.UpdateHeadless()
	}

	assert.False(t, g.world.Alive(first))
	objs := g.Objects()
	require.Len(t, objs, 6)

	id, _, ok := g.ObjectCues(objs[0])
	require.True(t, ok)
	assert.Equal(t, components.ObjectID(2), id)
	id, _, ok = g.ObjectCues(objs[5])
	require.True(t, ok)
	assert.Equal(t, components.ObjectID(7), id, "ids are never reused")

	assert.Nil(t, g.lifetimeTracker.Get(1))
}

func TestDespawnedTargetResolvesToNone(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Scene.InitialObjects = 1 })
	g := newTestGame(t, Options{Seed: 9, Config: cfg})

	e := g.Objects()[0]
	pin(g, e, r3.Vec{X: 0, Y: 2, Z: 0})
	g.UpdateHeadless()

	target := g.Attention().GetCurrentTarget()
	require.True(t, target.Found)
	assert.Equal(t, components.ObjectID(1), target.ID)

	require.True(t, g.Despawn(e))
	assert.False(t, g.Despawn(e), "second despawn is a no-op")

	hof := g.HallOfFame().Entries()
	require.Len(t, hof, 1)
	assert.Equal(t, components.ObjectID(1), hof[0].ID)
	assert.Equal(t, 1, hof[0].FramesTargeted)

	target = g.Attention().GetCurrentTarget()
	assert.False(t, target.Found)
	assert.Equal(t, systems.NoScore, target.Score)

	g.UpdateHeadless()
	rep := g.Report()
	assert.Empty(t, rep.Rows)
	assert.False(t, rep.Result.Found)
}

func TestVisibilityOracleSwap(t *testing.T) {
	g := newTestGame(t, Options{Seed: 11})
	o := &blindOracle{}
	g.SetVisibilityOracle(o)

	g.UpdateHeadless()

	assert.Equal(t, 6, o.indexed)
	rep := g.Report()
	assert.Equal(t, 0, rep.Eligible)
	assert.False(t, rep.Result.Found)
}

func TestCameraFallbackViewpoint(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Eye.Enabled = false })
	g := newTestGame(t, Options{Seed: 1, Config: cfg})

	assert.Nil(t, g.Eye())
	assert.Same(t, g.Camera(), g.Viewpoint())
}

func TestGazeTurnsEyeTowardTarget(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Scene.InitialObjects = 1 })
	g := newTestGame(t, Options{Seed: 9, Config: cfg})

	e := g.Objects()[0]
	pin(g, e, r3.Vec{X: 10, Y: 2, Z: 0})
	before := g.Eye().Forward

	g.UpdateHeadless()
	require.True(t, g.Report().Result.Found)

	after := g.Eye().Forward
	assert.NotEqual(t, before, after)
	assert.Greater(t, after.X, 0.0, "eye turned toward +X")
}

func TestTelemetryOutput(t *testing.T) {
	dir := t.TempDir()
	snapDir := t.TempDir()
	var windows []telemetry.WindowStats

	cfg := testConfig(t, func(c *config.Config) { c.Physics.DT = 0.25 })
	g := newTestGame(t, Options{
		Seed:           4,
		Config:         cfg,
		OutputDir:      dir,
		SnapshotDir:    snapDir,
		StatsWindowSec: 1.5, // 6 frames
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	for i := 0; i < 12; i++ {
		g.UpdateHeadless()
	}
	g.SaveSnapshotNow()

	require.Len(t, windows, 2)
	assert.Equal(t, uint64(6), windows[0].WindowEndFrame)
	assert.Equal(t, 6, windows[0].Frames)
	assert.Equal(t, g.RunID(), windows[1].RunID)

	for _, name := range []string{telemetry.DefaultObjectsFile, telemetry.DefaultWeightsFile, telemetry.StatsFile, telemetry.PerfFile, "config.yaml"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.FileExists(t, filepath.Join(snapDir, "snapshot_12.json"))

	snap, err := telemetry.LoadSnapshot(filepath.Join(snapDir, "snapshot_12.json"))
	require.NoError(t, err)
	assert.Len(t, snap.Objects, 6)
	assert.Equal(t, "adaptive", snap.WeightMode)

	g.Unload()
	assert.FileExists(t, filepath.Join(dir, telemetry.HallOfFameFile))
}

func TestNoOutputDir(t *testing.T) {
	g := newTestGame(t, Options{Seed: 4})
	assert.Nil(t, g.outputManager)

	g.UpdateHeadless()
	g.SaveSnapshotNow()
	assert.NotNil(t, g.Snapshot())
}

func TestHeadTracker(t *testing.T) {
	eye := camera.New(r3.Vec{}, r3.Vec{Z: 1}, math.Pi/2, 1, 0.1, 100)
	h := NewHeadTracker(eye, math.Pi/2)

	h.Apply(systems.Target{}, 0.5)
	_, tracking := h.Tracking()
	assert.False(t, tracking)
	assert.Equal(t, r3.Vec{Z: 1}, eye.Forward, "no target holds heading")

	h.Apply(systems.Target{ID: 3, Position: r3.Vec{X: 10}, Found: true}, 0.5)
	id, tracking := h.Tracking()
	assert.True(t, tracking)
	assert.Equal(t, uint64(3), id)
	assert.InDelta(t, math.Pi/4, h.Remaining(), 1e-9)
	assert.InDelta(t, math.Sqrt2/2, eye.Forward.X, 1e-9)
	assert.InDelta(t, math.Sqrt2/2, eye.Forward.Z, 1e-9)

	h.Apply(systems.Target{ID: 3, Position: r3.Vec{X: 10}, Found: true}, 0.5)
	assert.InDelta(t, 0, h.Remaining(), 1e-9)
	assert.InDelta(t, 1, eye.Forward.X, 1e-9)
}

func TestPopulationRemoveKeepsOrder(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Salient](w)
	p := NewPopulation()

	var es []ecs.Entity
	for i := 1; i <= 4; i++ {
		e := mapper.NewEntity(&components.Salient{ID: components.ObjectID(i)})
		es = append(es, e)
		p.Add(e)
	}

	assert.True(t, p.Remove(es[1]))
	assert.False(t, p.Remove(es[1]))
	assert.Equal(t, []ecs.Entity{es[0], es[2], es[3]}, p.Objects())

	oldest, ok := p.Oldest()
	assert.True(t, ok)
	assert.Equal(t, es[0], oldest)
	assert.Equal(t, 3, p.Len())
}

func TestCheckerAverage(t *testing.T) {
	img := checker(components.RGB{R: 1}, components.RGB{B: 1}, 4)
	avg, ok := components.AverageColor(img)
	require.True(t, ok)
	assert.InDelta(t, 0.5, avg.R, 1e-9)
	assert.InDelta(t, 0.0, avg.G, 1e-9)
	assert.InDelta(t, 0.5, avg.B, 1e-9)
}

type blindOracle struct {
	indexed int
}

func (o *blindOracle) Reset()                                   { o.indexed = 0 }
func (o *blindOracle) Index(ecs.Entity, r3.Box)                 { o.indexed++ }
func (o *blindOracle) IsVisible(ecs.Entity, *camera.Eye) bool   { return false }
func (o *blindOracle) FrustumContains(*camera.Eye, r3.Box) bool { return false }
