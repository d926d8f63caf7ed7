// Package scene wires the grids, noise field and turbulence particles into a
// headless simulation that can be stepped and observed.
package scene

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wturb/config"
	"github.com/pthm-cable/wturb/grid"
	"github.com/pthm-cable/wturb/noise"
	"github.com/pthm-cable/wturb/systems"
	"github.com/pthm-cable/wturb/telemetry"
)

// energyExtrapolation is how many cell layers energy is extended into obstacles.
const energyExtrapolation = 2

// Options configures a Simulation beyond its Config.
type Options struct {
	LogStats      bool                              // log window and perf stats via slog
	OutputDir     string                            // overrides telemetry.output_dir when set
	StatsCallback func(stats telemetry.WindowStats) // called on every window flush
}

// Simulation holds the complete scene state.
type Simulation struct {
	cfg *config.Config

	solver  *grid.Solver
	flags   *grid.FlagGrid
	vel     *grid.VecGrid
	density *grid.RealGrid
	energy  *grid.RealGrid

	tiles *noise.TileRegistry
	field *noise.Field

	world     *ecs.World
	particles *systems.TurbulenceParticles
	params    systems.SynthesisParams
	source    systems.Shape
	obstacle  systems.Shape // nil when the scene has none
	baseVel   mgl32.Vec3

	systemRegistry *systems.SystemRegistry
	perfCollector  *telemetry.PerfCollector
	collector      *telemetry.Collector
	outputManager  *telemetry.OutputManager

	logStats      bool
	statsCallback func(stats telemetry.WindowStats)

	step int
}

// New builds a simulation from cfg: allocates the grids, marks the obstacle,
// acquires the noise tile and seeds the particles inside the source shape.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	size := cfg.Derived.Size
	solver := grid.NewSolver(size[0], size[1], size[2], cfg.Grid.Dim, cfg.Derived.DT32)

	s := &Simulation{
		cfg:      cfg,
		solver:   solver,
		flags:    grid.NewFlagGrid(solver),
		vel:      grid.New[mgl32.Vec3](solver),
		density:  grid.New[float32](solver),
		energy:   grid.New[float32](solver),
		source:   buildShape(cfg.Scene.Source, solver.Is3D()),
		obstacle: buildShape(cfg.Scene.Obstacle, solver.Is3D()),
		baseVel:  vec3(cfg.Scene.Velocity),

		systemRegistry: systems.NewSystemRegistry(),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:      telemetry.NewCollector(cfg.Telemetry.LogEvery),

		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	s.flags.InitDomain(cfg.Grid.BoundaryWidth)
	if s.obstacle != nil {
		markObstacle(s.flags, s.obstacle)
	}

	s.tiles = noise.NewTileRegistry(noise.RegistryOptions{
		Path:          cfg.Tile.Path,
		SaveGenerated: cfg.Tile.SaveGenerated,
	})
	field, err := noise.NewField(s.tiles, solver, cfg.Tile.Seed, cfg.Tile.LoadFromFile)
	if err != nil {
		return nil, fmt.Errorf("creating noise field: %w", err)
	}
	applyNoiseConfig(field, cfg.Noise)
	s.field = field

	outputDir := cfg.Telemetry.OutputDir
	if opts.OutputDir != "" {
		outputDir = opts.OutputDir
	}
	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		field.Close()
		return nil, err
	}
	s.outputManager = om

	s.params = systems.SynthesisParams{
		Octaves:              cfg.Turbulence.Octaves,
		SwitchLength:         float32(cfg.Turbulence.SwitchLength),
		L0:                   float32(cfg.Turbulence.L0),
		Scale:                float32(cfg.Turbulence.Scale),
		InflowBias:           vec3(cfg.Turbulence.InflowBias),
		KMin:                 float32(cfg.Turbulence.KMin),
		EnableCrossfadeBlend: cfg.Turbulence.EnableCrossfadeBlend,
	}

	s.world = ecs.NewWorld()
	s.particles = systems.NewTurbulenceParticles(s.world, solver, field, cfg.Turbulence.Seed)
	placed := s.particles.Seed(s.source, cfg.Turbulence.Particles)

	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}
	if err := om.WriteTileStats(noise.ComputeTileStats(field.Tile())); err != nil {
		slog.Error("failed to write tile stats", "error", err)
	}

	slog.Info("scene ready",
		"size", size,
		"dim", cfg.Grid.Dim,
		"tile_seed", field.Seed(),
		"particles", placed,
		"systems", s.systemRegistry.IDs(),
		"output_dir", om.Dir(),
	)
	return s, nil
}

// Run steps the simulation n times or until ctx is cancelled.
func (s *Simulation) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
	}
	return nil
}

// Close releases the noise tile and closes output files.
func (s *Simulation) Close() error {
	s.field.Close()
	return s.outputManager.Close()
}

// StepCount returns the number of completed steps.
func (s *Simulation) StepCount() int { return s.step }

// Solver returns the solver description.
func (s *Simulation) Solver() *grid.Solver { return s.solver }

// Flags returns the cell flags.
func (s *Simulation) Flags() *grid.FlagGrid { return s.flags }

// Velocity returns the velocity grid.
func (s *Simulation) Velocity() *grid.VecGrid { return s.vel }

// Density returns the density grid fed by the inflow.
func (s *Simulation) Density() *grid.RealGrid { return s.density }

// Energy returns the energy grid the synthesis samples.
func (s *Simulation) Energy() *grid.RealGrid { return s.energy }

// Field returns the noise field.
func (s *Simulation) Field() *noise.Field { return s.field }

// Tiles returns the tile registry.
func (s *Simulation) Tiles() *noise.TileRegistry { return s.tiles }

// Particles returns the turbulence particle system.
func (s *Simulation) Particles() *systems.TurbulenceParticles { return s.particles }

// Perf returns the current performance statistics.
func (s *Simulation) Perf() telemetry.PerfStats { return s.perfCollector.Stats() }

func applyNoiseConfig(f *noise.Field, c config.NoiseConfig) {
	f.PosScale = vec3(c.PosScale)
	f.PosOffset = vec3(c.PosOffset)
	f.ValOffset = float32(c.ValOffset)
	f.ValScale = float32(c.ValScale)
	f.Clamp = c.Clamp
	f.ClampMin = float32(c.ClampMin)
	f.ClampMax = float32(c.ClampMax)
	f.TimeAnim = float32(c.TimeAnim)
}

func vec3(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
