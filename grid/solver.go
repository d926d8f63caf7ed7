package grid

// Solver carries the simulation-wide quantities the noise and turbulence code
// reads from its owning fluid solver: grid resolution, dimensionality, the
// timestep and the accumulated simulation time.
type Solver struct {
	Size [3]int
	Dim  int
	Dt   float32
	Time float32
}

// NewSolver creates a solver description. For dim == 2 the z size is forced to 1.
func NewSolver(sx, sy, sz, dim int, dt float32) *Solver {
	if dim != 3 {
		dim = 2
		sz = 1
	}
	return &Solver{Size: [3]int{sx, sy, sz}, Dim: dim, Dt: dt}
}

// Is3D reports whether the solver runs in three dimensions.
func (s *Solver) Is3D() bool { return s.Dim == 3 }

// MaxSize returns the largest grid extent.
func (s *Solver) MaxSize() int {
	m := s.Size[0]
	if s.Size[1] > m {
		m = s.Size[1]
	}
	if s.Is3D() && s.Size[2] > m {
		m = s.Size[2]
	}
	return m
}

// Dx returns the cell size in normalised domain units (1/MaxSize).
func (s *Solver) Dx() float32 {
	return 1 / float32(s.MaxSize())
}

// Advance moves simulation time forward by one timestep.
func (s *Solver) Advance() {
	s.Time += s.Dt
}
