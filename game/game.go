// Package game drives the attention simulation: the demo scene, the attention
// pipeline, the gaze actuator and telemetry, on a fixed timestep.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gaze/camera"
	"github.com/pthm-cable/gaze/components"
	"github.com/pthm-cable/gaze/config"
	"github.com/pthm-cable/gaze/systems"
	"github.com/pthm-cable/gaze/telemetry"
)

// hallOfFameSize is the number of most-attended objects kept per run.
const hallOfFameSize = 10

// Options configures game behavior.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// Config overrides the global config (tests).
	Config *config.Config
	// StatsCallback is invoked with every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64
	runID string

	// Entity mapper for spawning salient objects
	objectMapper *ecs.Map7[
		components.Salient,
		components.Transform,
		components.Kinematics,
		components.Bounds,
		components.Appearance,
		components.History,
		components.Cues,
	]

	// Individual component maps for lookups
	salientMap    *ecs.Map[components.Salient]
	transformMap  *ecs.Map[components.Transform]
	boundsMap     *ecs.Map[components.Bounds]
	appearanceMap *ecs.Map[components.Appearance]
	cuesMap       *ecs.Map[components.Cues]

	// Ordered live population (spawn order)
	population *Population
	nextID     components.ObjectID

	// Systems
	physics   *systems.PhysicsSystem
	oracle    systems.IndexedOracle
	attention *systems.AttentionSystem
	actuator  GazeActuator

	// Viewpoints
	camera *camera.Eye
	eye    *camera.Eye // nil when the NPC eye is disabled

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	lifetimeTracker  *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	hallOfFame       *telemetry.HallOfFame
	outputManager    *telemetry.OutputManager
	lastResult       systems.Result
	lastReport       *systems.FrameReport

	// State
	tick       uint64
	paused     bool
	churnTimer float64

	// Mode
	headless       bool
	logStats       bool
	snapshotDir    string
	stepsPerUpdate int
	statsCallback  func(telemetry.WindowStats)
}

// NewGameWithOptions creates a new game instance. Startup configuration errors
// (unknown policies, unwritable output directory) are returned.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world := ecs.NewWorld()

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		seed:  opts.Seed,
		runID: uuid.NewString(),

		objectMapper: ecs.NewMap7[
			components.Salient,
			components.Transform,
			components.Kinematics,
			components.Bounds,
			components.Appearance,
			components.History,
			components.Cues,
		](world),
		salientMap:    ecs.NewMap[components.Salient](world),
		transformMap:  ecs.NewMap[components.Transform](world),
		boundsMap:     ecs.NewMap[components.Bounds](world),
		appearanceMap: ecs.NewMap[components.Appearance](world),
		cuesMap:       ecs.NewMap[components.Cues](world),

		population: NewPopulation(),
		nextID:     1,

		headless:       opts.Headless,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		stepsPerUpdate: stepsPerUpdate,
		statsCallback:  opts.StatsCallback,
	}

	if err := g.initPipeline(); err != nil {
		return nil, err
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(g.runID, statsWindow, cfg.Physics.DT)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.lifetimeTracker = telemetry.NewLifetimeTracker()
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)
	g.hallOfFame = telemetry.NewHallOfFame(hallOfFameSize)
	g.lastResult = systems.NoneResult(0)

	om, err := telemetry.NewOutputManager(opts.OutputDir, telemetry.OutputOptions{
		ObjectsFile: cfg.Telemetry.ObjectsFile,
		WeightsFile: cfg.Telemetry.WeightsFile,
		LogWeights:  cfg.Telemetry.LogWeights,
	})
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.spawnInitialPopulation()
	g.logStartup()

	return g, nil
}

// initPipeline builds the viewpoints, scene systems and the attention pipeline from config.
func (g *Game) initPipeline() error {
	cfg := g.cfg
	ac := cfg.Attention

	mode, err := systems.ParseWeightMode(ac.WeightMode)
	if err != nil {
		return err
	}
	visibility, err := systems.ParseVisibilityPolicy(ac.Visibility)
	if err != nil {
		return err
	}
	proximity, err := systems.ParseProximityPolicy(ac.Proximity)
	if err != nil {
		return err
	}

	g.camera = camera.New(vec(cfg.Camera.Position), vec(cfg.Camera.Target),
		cfg.Derived.FovYRad, cfg.Derived.Aspect, cfg.Camera.Near, cfg.Camera.Far)
	if cfg.Eye.Enabled {
		g.eye = camera.New(vec(cfg.Eye.Position), vec(cfg.Eye.Target),
			cfg.Derived.EyeFovY, cfg.Derived.Aspect, cfg.Eye.Near, cfg.Eye.Far)
		g.actuator = NewHeadTracker(g.eye, cfg.Derived.TurnRate)
	}

	occluders := make([]r3.Box, 0, len(cfg.Scene.Occluders))
	for _, b := range cfg.Scene.Occluders {
		occluders = append(occluders, box(b))
	}
	g.oracle = systems.NewSceneOracle(occluders)
	g.physics = systems.NewPhysicsSystem(g.world, box(cfg.Scene.Bounds))

	extractor := systems.NewCueExtractor(systems.CueParams{
		MotionSigma:  ac.MotionSigma,
		AngularSigma: ac.AngularSigma,
		MaxDistance:  ac.MaxDistance,
		Proximity:    proximity,
		Angular:      ac.AngularCue,
		Background:   rgb(ac.Background),
	})
	gate := systems.NewVisibilityGate(visibility, ac.Range, g.oracle)
	fw := ac.FixedWeights
	policy := systems.NewWeightPolicy(mode, systems.Weights{
		Motion:    fw.Motion,
		Angular:   fw.Angular,
		Proximity: fw.Proximity,
		Color:     fw.Color,
		Luminance: fw.Luminance,
	}, ac.AngularCue, ac.SpreadEpsilon)

	g.attention = systems.NewAttentionSystem(g.world, g.population, extractor, gate, policy)
	return nil
}

// SetVisibilityOracle replaces the scene oracle, e.g. with a renderer-backed one.
func (g *Game) SetVisibilityOracle(o systems.IndexedOracle) {
	g.oracle = o
	g.attention.Gate().SetOracle(o)
}

// SetGazeActuator replaces the gaze actuator. nil disables gaze output.
func (g *Game) SetGazeActuator(a GazeActuator) {
	g.actuator = a
}

// Update runs one frame of simulation (graphical mode).
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// UpdateHeadless runs simulation steps without any rendering.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// step advances the simulation by one fixed tick.
func (g *Game) step() {
	g.perfCollector.StartTick()
	g.tick++
	frame := g.tick
	dt := g.cfg.Physics.DT
	now := float64(frame) * dt

	g.perfCollector.StartPhase(telemetry.PhaseScene)
	g.physics.Update(dt)
	g.churn(dt)

	g.perfCollector.StartPhase(telemetry.PhaseVisibilityIndex)
	g.indexVisibility()

	g.perfCollector.StartPhase(telemetry.PhaseAttention)
	report := g.attention.Update(frame, now, g.Viewpoint())
	g.lastReport = report

	g.perfCollector.StartPhase(telemetry.PhaseGaze)
	if g.actuator != nil {
		g.actuator.Apply(g.attention.GetCurrentTarget(), dt)
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.recordFrame(report)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// indexVisibility feeds every live object's box to the oracle.
func (g *Game) indexVisibility() {
	g.oracle.Reset()
	for _, e := range g.population.Objects() {
		if !g.world.Alive(e) || !g.transformMap.Has(e) {
			continue
		}
		p := g.transformMap.Get(e).Position
		b := r3.Box{Min: p, Max: p}
		if g.boundsMap.Has(e) {
			b = g.boundsMap.Get(e).Box(p)
		}
		g.oracle.Index(e, b)
	}
}

// Viewpoint returns the attention viewpoint: the NPC eye when enabled,
// otherwise the primary camera.
func (g *Game) Viewpoint() *camera.Eye {
	if g.eye != nil {
		return g.eye
	}
	return g.camera
}

// Unload writes the hall of fame and releases resources.
func (g *Game) Unload() {
	if g.outputManager != nil {
		if err := g.outputManager.WriteHallOfFame(g.HallOfFame()); err != nil {
			slog.Error("failed to write hall of fame", "error", err)
		}
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() uint64 {
	return g.tick
}

// RunID returns the unique id of this run.
func (g *Game) RunID() string {
	return g.runID
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// TogglePause pauses or resumes the simulation.
func (g *Game) TogglePause() {
	g.paused = !g.paused
}

// SetStepsPerUpdate sets the simulation speed multiplier (at least 1).
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = max(n, 1)
}

// StepsPerUpdate returns the simulation speed multiplier.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// World returns the ECS world.
func (g *Game) World() *ecs.World {
	return g.world
}

// Config returns the active configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Camera returns the primary render camera.
func (g *Game) Camera() *camera.Eye {
	return g.camera
}

// Eye returns the NPC eye, or nil when disabled.
func (g *Game) Eye() *camera.Eye {
	return g.eye
}

// Attention returns the attention system.
func (g *Game) Attention() *systems.AttentionSystem {
	return g.attention
}

// Report returns the last frame report, or nil before the first step.
func (g *Game) Report() *systems.FrameReport {
	return g.lastReport
}

// Objects returns the live objects in spawn order.
func (g *Game) Objects() []ecs.Entity {
	return g.population.Objects()
}

// ObjectState returns the pose, bounds and surface color of a live object.
func (g *Game) ObjectState(e ecs.Entity) (components.Transform, components.Bounds, components.RGB, bool) {
	if !g.world.Alive(e) || !g.transformMap.Has(e) {
		return components.Transform{}, components.Bounds{}, components.RGB{}, false
	}
	tr := *g.transformMap.Get(e)
	var b components.Bounds
	if g.boundsMap.Has(e) {
		b = *g.boundsMap.Get(e)
	}
	var c components.RGB
	if g.appearanceMap.Has(e) {
		c = g.appearanceMap.Get(e).Surface()
	}
	return tr, b, c, true
}

// ObjectCues returns the last computed cues and identity of a live object.
func (g *Game) ObjectCues(e ecs.Entity) (components.ObjectID, components.Cues, bool) {
	if !g.world.Alive(e) || !g.salientMap.Has(e) || !g.cuesMap.Has(e) {
		return 0, components.Cues{}, false
	}
	return g.salientMap.Get(e).ID, *g.cuesMap.Get(e), true
}

// Lifetime returns an object's lifetime stats, or nil once it has despawned.
func (g *Game) Lifetime(id components.ObjectID) *telemetry.LifetimeStats {
	return g.lifetimeTracker.Get(id)
}

// HallOfFame returns the most-attended objects of the run, live objects included.
func (g *Game) HallOfFame() *telemetry.HallOfFame {
	hof := g.hallOfFame.Clone()
	for id, s := range g.lifetimeTracker.All() {
		hof.Consider(id, s)
	}
	return hof
}

// Occluders returns the static occluder boxes from config.
func (g *Game) Occluders() []r3.Box {
	out := make([]r3.Box, 0, len(g.cfg.Scene.Occluders))
	for _, b := range g.cfg.Scene.Occluders {
		out = append(out, box(b))
	}
	return out
}

// PerfStats returns the rolling performance statistics.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

func vec(v config.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func box(b config.BoxConfig) r3.Box {
	return r3.Box{Min: vec(b.Min), Max: vec(b.Max)}
}

func rgb(v config.Vec3) components.RGB {
	return components.RGB{R: v[0], G: v[1], B: v[2]}
}
