// Package config provides configuration loading and access for the attention simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Scene     SceneConfig     `yaml:"scene"`
	Camera    EyeConfig       `yaml:"camera"`
	Eye       EyeConfig       `yaml:"eye"`
	Attention AttentionConfig `yaml:"attention"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds the fixed timestep.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// Vec3 is a YAML-friendly three-component vector ([x, y, z]).
type Vec3 [3]float64

// BoxConfig is an axis-aligned box given by opposite corners.
type BoxConfig struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// SceneConfig holds the demo scene that feeds the attention pipeline.
type SceneConfig struct {
	Bounds         BoxConfig   `yaml:"bounds"`
	InitialObjects int         `yaml:"initial_objects"`
	MaxSpeed       float64     `yaml:"max_speed"`      // world units per second
	MaxSpin        float64     `yaml:"max_spin"`       // radians per second
	StillFraction  float64     `yaml:"still_fraction"` // share of objects spawned motionless
	MinSize        float64     `yaml:"min_size"`
	MaxSize        float64     `yaml:"max_size"`
	ChurnInterval  float64     `yaml:"churn_interval"` // seconds between despawn/spawn (0 = off)
	Occluders      []BoxConfig `yaml:"occluders"`
}

// EyeConfig describes a viewpoint. The NPC eye is optional; the camera is the fallback.
type EyeConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Position Vec3    `yaml:"position"`
	Target   Vec3    `yaml:"target"`
	FovY     float64 `yaml:"fov_y"` // degrees
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
	TurnRate float64 `yaml:"turn_rate"` // radians per second for the gaze actuator
}

// WeightsConfig holds the five fixed cue weights, each in [0,1].
type WeightsConfig struct {
	Motion    float64 `yaml:"motion"`
	Angular   float64 `yaml:"angular"`
	Proximity float64 `yaml:"proximity"`
	Color     float64 `yaml:"color"`
	Luminance float64 `yaml:"luminance"`
}

// AttentionConfig holds saliency pipeline parameters.
type AttentionConfig struct {
	Range         float64       `yaml:"range"`          // max eye-to-object distance for eligibility
	WeightMode    string        `yaml:"weight_mode"`    // fixed | adaptive
	Visibility    string        `yaml:"visibility"`     // frustum | raycast
	Proximity     string        `yaml:"proximity"`      // inverse_distance | size_over_distance
	MaxDistance   float64       `yaml:"max_distance"`   // normaliser for inverse_distance
	MotionSigma   float64       `yaml:"motion_sigma"`   // half-saturation speed
	AngularSigma  float64       `yaml:"angular_sigma"`  // half-saturation angular speed
	AngularCue    bool          `yaml:"angular_cue"`    // include angular velocity in the cue set
	SpreadEpsilon float64       `yaml:"spread_epsilon"` // equal-weight fallback threshold
	Background    Vec3          `yaml:"background"`     // reference background RGB in [0,1]
	FixedWeights  WeightsConfig `yaml:"fixed_weights"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	ObjectsFile         string  `yaml:"objects_file"`
	WeightsFile         string  `yaml:"weights_file"`
	LogWeights          bool    `yaml:"log_weights"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32     float32 // Physics.DT as float32
	FovYRad  float64 // Camera.FovY in radians
	EyeFovY  float64 // Eye.FovY in radians
	Aspect   float64 // Screen.Width / Screen.Height
	NumCues  int     // 5 with the angular cue, 4 without
	TurnRate float64 // Eye.TurnRate, defaulted
}

// Known enumerated values, validated on load.
var (
	WeightModes        = []string{"fixed", "adaptive"}
	VisibilityPolicies = []string{"frustum", "raycast"}
	ProximityPolicies  = []string{"inverse_distance", "size_over_distance"}
)

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the pipeline cannot run with.
func (c *Config) validate() error {
	if err := oneOf("attention.weight_mode", c.Attention.WeightMode, WeightModes); err != nil {
		return err
	}
	if err := oneOf("attention.visibility", c.Attention.Visibility, VisibilityPolicies); err != nil {
		return err
	}
	if err := oneOf("attention.proximity", c.Attention.Proximity, ProximityPolicies); err != nil {
		return err
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Attention.Range < 0 {
		return fmt.Errorf("attention.range must not be negative, got %v", c.Attention.Range)
	}
	return nil
}

func oneOf(key, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unknown value %q (want one of %v)", key, value, allowed)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.FovYRad = c.Camera.FovY * math.Pi / 180
	c.Derived.EyeFovY = c.Eye.FovY * math.Pi / 180
	if c.Derived.EyeFovY <= 0 {
		c.Derived.EyeFovY = c.Derived.FovYRad
	}

	c.Derived.Aspect = 1
	if c.Screen.Height > 0 {
		c.Derived.Aspect = float64(c.Screen.Width) / float64(c.Screen.Height)
	}

	c.Derived.NumCues = 4
	if c.Attention.AngularCue {
		c.Derived.NumCues = 5
	}

	c.Derived.TurnRate = c.Eye.TurnRate
	if c.Derived.TurnRate <= 0 {
		c.Derived.TurnRate = math.Pi
	}

	if c.Attention.SpreadEpsilon <= 0 {
		c.Attention.SpreadEpsilon = 1e-6
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
