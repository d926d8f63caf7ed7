// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Tile       TileConfig       `yaml:"tile"`
	Noise      NoiseConfig      `yaml:"noise"`
	Turbulence TurbulenceConfig `yaml:"turbulence"`
	Scene      SceneConfig      `yaml:"scene"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the solver grid.
type GridConfig struct {
	SizeX         int     `yaml:"size_x"`
	SizeY         int     `yaml:"size_y"`
	SizeZ         int     `yaml:"size_z"` // ignored in 2-D
	Dim           int     `yaml:"dim"`    // 2 or 3
	DT            float64 `yaml:"dt"`
	BoundaryWidth int     `yaml:"boundary_width"` // obstacle walls around the domain
}

// TileConfig holds noise tile persistence settings.
type TileConfig struct {
	Path          string `yaml:"path"`           // empty disables load and save
	LoadFromFile  bool   `yaml:"load_from_file"` // reuse the file when present
	SaveGenerated bool   `yaml:"save_generated"` // write generated tiles even without load_from_file
	Seed          int64  `yaml:"seed"`           // negative draws an automatic seed
}

// NoiseConfig holds the noise field tunables.
type NoiseConfig struct {
	PosScale  [3]float64 `yaml:"pos_scale"`
	PosOffset [3]float64 `yaml:"pos_offset"`
	ValOffset float64    `yaml:"val_offset"`
	ValScale  float64    `yaml:"val_scale"`
	Clamp     bool       `yaml:"clamp"`
	ClampMin  float64    `yaml:"clamp_min"`
	ClampMax  float64    `yaml:"clamp_max"`
	TimeAnim  float64    `yaml:"time_anim"` // animation speed along the tile diagonal
}

// TurbulenceConfig holds particle synthesis parameters.
type TurbulenceConfig struct {
	Particles            int        `yaml:"particles"`
	Seed                 int64      `yaml:"seed"` // particle placement
	Octaves              int        `yaml:"octaves"`
	SwitchLength         float64    `yaml:"switch_length"`
	L0                   float64    `yaml:"l0"`
	Scale                float64    `yaml:"scale"`
	InflowBias           [3]float64 `yaml:"inflow_bias"`
	KMin                 float64    `yaml:"k_min"`
	EnableCrossfadeBlend bool       `yaml:"enable_crossfade_blend"`
	WaveletEnergy        bool       `yaml:"wavelet_energy"` // decompose energy before synthesis
	DeleteInObstacle     bool       `yaml:"delete_in_obstacle"`
}

// ShapeConfig describes a box or sphere in grid coordinates.
type ShapeConfig struct {
	Kind   string     `yaml:"kind"` // "box" or "sphere"
	Center [3]float64 `yaml:"center"`
	Half   [3]float64 `yaml:"half"`   // box half extents
	Radius float64    `yaml:"radius"` // sphere radius
}

// SceneConfig describes the headless scene driving the synthesizer.
type SceneConfig struct {
	Steps         int         `yaml:"steps"`
	Source        ShapeConfig `yaml:"source"`   // particle seeding and density inflow region
	Obstacle      ShapeConfig `yaml:"obstacle"` // kind "" disables
	Velocity      [3]float64  `yaml:"velocity"` // base flow
	VelocityNoise float64     `yaml:"velocity_noise"`
	InflowDensity float64     `yaml:"inflow_density"`
}

// TelemetryConfig holds output and logging settings.
type TelemetryConfig struct {
	OutputDir           string `yaml:"output_dir"` // empty disables CSV output
	LogEvery            int    `yaml:"log_every"`
	PerfCollectorWindow int    `yaml:"perf_collector_window"`
	SnapshotEvery       int    `yaml:"snapshot_every"` // particle dumps, 0 disables
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	DT32 float32 // Grid.DT as float32
	Is3D bool
	Size [3]int // effective grid size, z forced to 1 in 2-D
}

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
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
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
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Grid.Dim != 2 && c.Grid.Dim != 3 {
		errs = append(errs, fmt.Errorf("grid.dim must be 2 or 3, got %d", c.Grid.Dim))
	}
	if c.Grid.SizeX < 1 || c.Grid.SizeY < 1 || (c.Grid.Dim == 3 && c.Grid.SizeZ < 1) {
		errs = append(errs, fmt.Errorf("grid size must be positive, got %dx%dx%d", c.Grid.SizeX, c.Grid.SizeY, c.Grid.SizeZ))
	}
	if c.Grid.DT <= 0 {
		errs = append(errs, fmt.Errorf("grid.dt must be positive, got %v", c.Grid.DT))
	}
	if c.Turbulence.Octaves < 0 {
		errs = append(errs, fmt.Errorf("turbulence.octaves must not be negative, got %d", c.Turbulence.Octaves))
	}
	if c.Turbulence.L0 <= 0 {
		errs = append(errs, fmt.Errorf("turbulence.l0 must be positive, got %v", c.Turbulence.L0))
	}
	for _, s := range []struct {
		name string
		cfg  ShapeConfig
	}{{"scene.source", c.Scene.Source}, {"scene.obstacle", c.Scene.Obstacle}} {
		switch s.cfg.Kind {
		case "box", "sphere":
		case "":
			if s.name == "scene.source" {
				errs = append(errs, errors.New("scene.source.kind is required"))
			}
		default:
			errs = append(errs, fmt.Errorf("%s.kind must be box or sphere, got %q", s.name, s.cfg.Kind))
		}
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Grid.DT)
	c.Derived.Is3D = c.Grid.Dim == 3
	c.Derived.Size = [3]int{c.Grid.SizeX, c.Grid.SizeY, c.Grid.SizeZ}
	if !c.Derived.Is3D {
		c.Derived.Size[2] = 1
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
