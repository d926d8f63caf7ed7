package systems

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wturb/components"
	"github.com/pthm-cable/wturb/grid"
	"github.com/pthm-cable/wturb/noise"
)

// persistence is the amplitude falloff between synthesis octaves.
const persistence = 0.56123

// maxSeedAttempts bounds rejection sampling per particle so a shape with no
// volume cannot hang seeding.
const maxSeedAttempts = 10000

// hueRange is the fraction of the colour wheel spanned by seed colours.
const hueRange = 5.0 / 6

// SynthesisParams controls one Synthesize call.
type SynthesisParams struct {
	Octaves      int
	SwitchLength float32 // period of the tex0/tex1 cross-fade
	L0           float32 // largest turbulence length scale
	Scale        float32
	InflowBias   mgl32.Vec3
	KMin         float32 // energy below this produces no turbulence

	// EnableCrossfadeBlend blends the two texture coordinate sets by the hat
	// function. When false only tex0 contributes, although both sets are
	// still reset and advected.
	EnableCrossfadeBlend bool
}

// SynthesisReport summarises one Synthesize call.
type SynthesisReport struct {
	Time      float32
	Alpha     float32
	ResetTex0 bool
	ResetTex1 bool
	Particles int
	InBounds  int
	MeanSpeed float32
	MaxSpeed  float32
}

// Particle is a read-only copy of one particle.
type Particle struct {
	Entity ecs.Entity
	Pos    mgl32.Vec3
	Vel    mgl32.Vec3
	Tex0   mgl32.Vec3
	Tex1   mgl32.Vec3
	Color  mgl32.Vec3
	Flags  uint32
}

type pendingParticle struct {
	pos   mgl32.Vec3
	color mgl32.Vec3
}

// particleSnapshot captures the state the parallel kernel reads.
type particleSnapshot struct {
	entity ecs.Entity
	pos    mgl32.Vec3
	tex0   mgl32.Vec3
	tex1   mgl32.Vec3
}

// particleIntent is the kernel output applied after the parallel phase.
type particleIntent struct {
	vel      mgl32.Vec3
	inBounds bool
}

// TurbulenceParticles advects marker particles with multi-octave curl noise
// whose amplitude follows the local turbulence energy. Particles live in the
// ECS world; the synthesis clock and inflow offset belong to the instance.
type TurbulenceParticles struct {
	solver *grid.Solver
	field  *noise.Field
	rng    *noise.RandomStream

	world  *ecs.World
	mapper *ecs.Map5[
		components.Position,
		components.Velocity,
		components.TexCoords,
		components.Color,
		components.ParticleFlags,
	]
	filter *ecs.Filter5[
		components.Position,
		components.Velocity,
		components.TexCoords,
		components.Color,
		components.ParticleFlags,
	]
	posMap *ecs.Map1[components.Position]
	velMap *ecs.Map1[components.Velocity]
	texMap *ecs.Map1[components.TexCoords]
	flgMap *ecs.Map1[components.ParticleFlags]

	pending []pendingParticle
	count   int

	ctime      float32
	inflow     mgl32.Vec3
	halfPeriod int

	snapshots []particleSnapshot
	intents   []particleIntent
}

// NewTurbulenceParticles creates an empty particle system in w that samples
// field. seed drives particle placement.
func NewTurbulenceParticles(w *ecs.World, solver *grid.Solver, field *noise.Field, seed int64) *TurbulenceParticles {
	return &TurbulenceParticles{
		solver: solver,
		field:  field,
		rng:    noise.NewRandomStream(seed),
		world:  w,
		mapper: ecs.NewMap5[
			components.Position,
			components.Velocity,
			components.TexCoords,
			components.Color,
			components.ParticleFlags,
		](w),
		filter: ecs.NewFilter5[
			components.Position,
			components.Velocity,
			components.TexCoords,
			components.Color,
			components.ParticleFlags,
		](w),
		posMap: ecs.NewMap1[components.Position](w),
		velMap: ecs.NewMap1[components.Velocity](w),
		texMap: ecs.NewMap1[components.TexCoords](w),
		flgMap: ecs.NewMap1[components.ParticleFlags](w),
	}
}

// Seed places count particles uniformly inside shape by rejection sampling
// its bounding box. Colours ramp through hue with normalised height. The new
// particles are committed before Seed returns; the number placed is returned.
func (tp *TurbulenceParticles) Seed(shape Shape, count int) int {
	lo, hi := shape.Bounds()
	ext := hi.Sub(lo)

	placed := 0
	for n := 0; n < count; n++ {
		p, ok := tp.sampleInside(shape, lo, ext)
		if !ok {
			slog.Warn("particle seeding gave up, shape has no volume",
				"requested", count,
				"placed", placed,
			)
			break
		}
		tp.Add(p, heightColor(p[2], lo[2], ext[2]))
		placed++
	}
	tp.Compress()
	return placed
}

// heightColor maps z within [lo, lo+ext] to a hue ramp from red to magenta.
// The ramp stops short of a full turn so the top and bottom stay distinct.
func heightColor(z, lo, ext float32) mgl32.Vec3 {
	var hue float32
	if ext > 0 {
		hue = (z - lo) / ext * hueRange
	}
	r, g, b := hsvToRGB(hue, 0.75, 1)
	return mgl32.Vec3{r, g, b}
}

func (tp *TurbulenceParticles) sampleInside(shape Shape, lo, ext mgl32.Vec3) (mgl32.Vec3, bool) {
	for attempt := 0; attempt < maxSeedAttempts; attempt++ {
		r := tp.rng.Vec3()
		p := mgl32.Vec3{lo[0] + r[0]*ext[0], lo[1] + r[1]*ext[1], lo[2] + r[2]*ext[2]}
		if shape.IsInside(p) {
			return p, true
		}
	}
	return mgl32.Vec3{}, false
}

// Add buffers a particle with tex0 = tex1 = pos. It becomes visible after the
// next Compress.
func (tp *TurbulenceParticles) Add(pos, color mgl32.Vec3) {
	tp.pending = append(tp.pending, pendingParticle{pos: pos, color: color})
}

// Kill marks a particle for removal on the next Compress.
func (tp *TurbulenceParticles) Kill(e ecs.Entity) {
	if !tp.world.Alive(e) {
		return
	}
	tp.flgMap.Get(e).Set(components.FlagDelete)
}

// Compress removes particles marked for deletion and commits buffered adds.
// It returns the number of particles removed.
func (tp *TurbulenceParticles) Compress() int {
	// First pass: collect marked entities (must complete before modifying)
	var toRemove []ecs.Entity
	query := tp.filter.Query()
	for query.Next() {
		_, _, _, _, flags := query.Get()
		if flags.Has(components.FlagDelete) {
			toRemove = append(toRemove, query.Entity())
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, e := range toRemove {
		tp.world.RemoveEntity(e)
	}
	tp.count -= len(toRemove)

	for _, p := range tp.pending {
		pos := components.Position{Vec: p.pos}
		vel := components.Velocity{}
		tex := components.TexCoords{Tex0: p.pos, Tex1: p.pos}
		col := components.Color{RGB: p.color}
		flg := components.ParticleFlags{}
		tp.mapper.NewEntity(&pos, &vel, &tex, &col, &flg)
	}
	tp.count += len(tp.pending)
	tp.pending = tp.pending[:0]

	return len(toRemove)
}

// Size returns the number of committed particles.
func (tp *TurbulenceParticles) Size() int { return tp.count }

// Particles returns a copy of every committed particle.
func (tp *TurbulenceParticles) Particles() []Particle {
	out := make([]Particle, 0, tp.count)
	query := tp.filter.Query()
	for query.Next() {
		pos, vel, tex, col, flags := query.Get()
		out = append(out, Particle{
			Entity: query.Entity(),
			Pos:    pos.Vec,
			Vel:    vel.Vec,
			Tex0:   tex.Tex0,
			Tex1:   tex.Tex1,
			Color:  col.RGB,
			Flags:  flags.Bits,
		})
	}
	return out
}

// Time returns the accumulated synthesis time.
func (tp *TurbulenceParticles) Time() float32 { return tp.ctime }

// Inflow returns the accumulated inflow offset.
func (tp *TurbulenceParticles) Inflow() mgl32.Vec3 { return tp.inflow }

// ResetTexCoords sets texture coordinate set num (0 or 1) of every particle
// to pos - inflow.
func (tp *TurbulenceParticles) ResetTexCoords(num int, inflow mgl32.Vec3) {
	query := tp.filter.Query()
	for query.Next() {
		pos, _, tex, _, _ := query.Get()
		if num == 0 {
			tex.Tex0 = pos.Vec.Sub(inflow)
		} else {
			tex.Tex1 = pos.Vec.Sub(inflow)
		}
	}
}

// crossfade advances the hat function to the current time and returns the
// blend weight of tex0. A texture set is reset when its weight reaches zero:
// tex0 when a rising half period starts, tex1 when a falling one starts.
func (tp *TurbulenceParticles) crossfade(switchLength float32) (alpha float32, reset0, reset1 bool) {
	if switchLength <= 0 {
		return 1, false, false
	}
	phase := tp.ctime / switchLength
	alpha = 2 * frac(phase)
	if alpha > 1 {
		alpha = 2 - alpha
	}

	hp := int(math.Floor(float64(2 * phase)))
	if hp != tp.halfPeriod {
		tp.halfPeriod = hp
		if hp%2 == 0 {
			reset0 = true
		} else {
			reset1 = true
		}
	}
	return alpha, reset0, reset1
}

// Synthesize advances every particle by one solver timestep of turbulence.
//
// For particles inside the grid the amplitude is sqrt(max(0, k-KMin)) with k
// the interpolated energy at the particle. Each octave adds the curl noise at
// the two texture coordinate sets, blended by the cross-fade weight, then
// scales amplitude by the persistence and doubles the frequency. Position and
// both texture coordinates move by the resulting velocity.
func (tp *TurbulenceParticles) Synthesize(flags *grid.FlagGrid, energy *grid.RealGrid, p SynthesisParams) SynthesisReport {
	dt := tp.solver.Dt
	tp.ctime += dt
	tp.inflow = tp.inflow.Add(p.InflowBias.Mul(dt))

	alpha, reset0, reset1 := tp.crossfade(p.SwitchLength)
	if reset0 {
		tp.ResetTexCoords(0, tp.inflow)
	}
	if reset1 {
		tp.ResetTexCoords(1, tp.inflow)
	}
	if !p.EnableCrossfadeBlend {
		alpha = 1
	}

	report := SynthesisReport{
		Time:      tp.ctime,
		Alpha:     alpha,
		ResetTex0: reset0,
		ResetTex1: reset1,
	}

	// Phase A: snapshot (single-threaded)
	tp.snapshots = tp.snapshots[:0]
	query := tp.filter.Query()
	for query.Next() {
		pos, _, tex, _, _ := query.Get()
		tp.snapshots = append(tp.snapshots, particleSnapshot{
			entity: query.Entity(),
			pos:    pos.Vec,
			tex0:   tex.Tex0,
			tex1:   tex.Tex1,
		})
	}
	n := len(tp.snapshots)
	report.Particles = n
	if n == 0 {
		return report
	}
	if cap(tp.intents) < n {
		tp.intents = make([]particleIntent, n)
	}
	tp.intents = tp.intents[:n]

	invL0 := float32(1)
	if p.L0 > 0 {
		invL0 = 1 / p.L0
	}

	// Phase B: compute per particle
	grid.ParallelFor(n, func(i int) {
		s := &tp.snapshots[i]
		out := &tp.intents[i]
		*out = particleIntent{}
		if !flags.IsInBounds(s.pos, 0) {
			return
		}
		out.inBounds = true

		k := grid.Interpolate(energy, s.pos) - p.KMin
		var ks float32
		if k > 0 {
			ks = sqrtf(k)
		}
		amp := p.Scale * ks
		freq := invL0

		var vel mgl32.Vec3
		for o := 0; o < p.Octaves; o++ {
			n0 := tp.field.EvaluateCurl(s.tex0.Mul(freq)).Mul(amp)
			n1 := tp.field.EvaluateCurl(s.tex1.Mul(freq)).Mul(amp)
			vel = vel.Add(n0.Mul(alpha)).Add(n1.Mul(1 - alpha))
			amp *= persistence
			freq *= 2
		}
		out.vel = vel
	})

	// Phase C: apply (single-threaded)
	var speedSum float64
	for i := range tp.snapshots {
		s := &tp.snapshots[i]
		in := &tp.intents[i]
		if !in.inBounds {
			continue
		}
		d := in.vel.Mul(dt)
		tp.posMap.Get(s.entity).Vec = s.pos.Add(d)
		tex := tp.texMap.Get(s.entity)
		tex.Tex0 = s.tex0.Add(d)
		tex.Tex1 = s.tex1.Add(d)
		tp.velMap.Get(s.entity).Vec = in.vel

		speed := in.vel.Len()
		speedSum += float64(speed)
		if speed > report.MaxSpeed {
			report.MaxSpeed = speed
		}
		report.InBounds++
	}
	if report.InBounds > 0 {
		report.MeanSpeed = float32(speedSum / float64(report.InBounds))
	}
	return report
}

// DeleteInObstacle removes every particle whose cell is an obstacle and
// returns how many were removed. Particles outside the grid are kept.
func (tp *TurbulenceParticles) DeleteInObstacle(flags *grid.FlagGrid) int {
	query := tp.filter.Query()
	for query.Next() {
		pos, _, _, _, f := query.Get()
		if flags.IsObstacleAt(pos.Vec) {
			f.Set(components.FlagDelete)
		}
	}
	return tp.Compress()
}

// LogValue implements slog.LogValuer for structured logging.
func (r SynthesisReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("time", float64(r.Time)),
		slog.Float64("alpha", float64(r.Alpha)),
		slog.Bool("reset_tex0", r.ResetTex0),
		slog.Bool("reset_tex1", r.ResetTex1),
		slog.Int("particles", r.Particles),
		slog.Int("in_bounds", r.InBounds),
		slog.Float64("mean_speed", float64(r.MeanSpeed)),
		slog.Float64("max_speed", float64(r.MaxSpeed)),
	)
}
