// Package fdtd is a staggered-grid finite-difference time-domain solver for
// the linear acoustic equations in two dimensions.
//
// A Field owns pressure and two velocity components. Static geometry
// (reflecting boundaries, material inclusions, fixed probes) is registered
// first and frozen with Seal; anything registered later is transient and is
// dropped by ClearTransient. Reset returns the state arrays, the step counter
// and every probe recording to the post-setup zero state, so one Field can be
// replayed any number of times.
//
// Domain edges are periodic. Scenarios that must not wrap add boundaries.
package fdtd

import (
	"fmt"
	"runtime"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog"
)

// Backend selects the stepping implementation.
type Backend int

const (
	BackendCPU Backend = iota
	BackendOpenCL
)

func (b Backend) String() string {
	switch b {
	case BackendCPU:
		return "cpu"
	case BackendOpenCL:
		return "opencl"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// CellKind classifies a cell for display.
type CellKind uint8

const (
	KindAmbient CellKind = iota
	KindMaterial
	KindBoundary
	KindSource
	KindOutput
)

// View is the read and step surface used by animators.
type View interface {
	Config() Config
	Size() (nx, ny int)
	Pressure() []float64
	CellKinds() []CellKind
	StepIndex() int
	Done() bool
	Step() error
}

// stepper advances a field by n steps.
type stepper interface {
	advance(f *Field, n int) error
	reset()
	close()
}

// Option configures a Field.
type Option func(*options)

type options struct {
	log     zerolog.Logger
	workers int
	backend Backend
}

// WithLogger sets the logger used for allocation and backend events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithWorkers sets the number of row bands stepped in parallel on the CPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithBackend selects the stepping backend.
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// Field is the mutable simulation state plus its static registrations.
type Field struct {
	cfg    Config
	nx, ny int
	log    zerolog.Logger

	pressure []float64
	vx, vy   []float64
	div      []float64
	step     int

	// per-cell medium
	density   []float64
	modulus   []float64
	viscosity []float64
	material  []bool
	maxSpeed  float64

	// derived update coefficients, rebuilt when the medium changes
	coef       coefficients
	coefDirty  bool
	viscous    bool
	workers    int
	backend    stepper
	backendTag Backend

	boundaries []Boundary
	outputs    []*Output
	gen        int // bumped on every registration change
	sealed     bool
	staticB    int
	staticO    int
}

type coefficients struct {
	ax, ay []float64 // Δt/(ρ̄·Δ) at staggered velocity points
	nx, ny []float64 // Δt·ν̄/(ρ̄·Δ) viscous correction
	kp     []float64 // Δt·ρc² at pressure points
}

// New allocates a field for cfg filled with the ambient material.
func New(cfg Config, opts ...Option) (*Field, error) {
	o := options{log: zerolog.Nop(), workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if o.workers < 1 {
		o.workers = 1
	}
	size := cfg.X.Samples * cfg.Y.Samples
	f := &Field{
		cfg:        cfg,
		nx:         cfg.X.Samples,
		ny:         cfg.Y.Samples,
		log:        o.log,
		pressure:   make([]float64, size),
		vx:         make([]float64, size),
		vy:         make([]float64, size),
		div:        make([]float64, size),
		density:    make([]float64, size),
		modulus:    make([]float64, size),
		viscosity:  make([]float64, size),
		material:   make([]bool, size),
		maxSpeed:   cfg.Material.SoundVelocity,
		coefDirty:  true,
		workers:    o.workers,
		backendTag: o.backend,
	}
	rho, k, nu := cfg.Material.Density, cfg.Material.bulkModulus(), cfg.Material.viscosity()
	for i := 0; i < size; i++ {
		f.density[i] = rho
		f.modulus[i] = k
		f.viscosity[i] = nu
	}
	switch o.backend {
	case BackendCPU:
		f.backend = cpuStepper{}
	case BackendOpenCL:
		s, err := newOpenCLStepper(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		f.backend = s
	default:
		return nil, fmt.Errorf("%w: unknown backend %v", ErrInvalidConfig, o.backend)
	}
	f.log.Debug().
		Int("nx", f.nx).
		Int("ny", f.ny).
		Int("nt", cfg.TimeSamples).
		Str("backend", o.backend.String()).
		Int("workers", f.workers).
		Msg("field allocated")
	return f, nil
}

// Config returns the field's discretization.
func (f *Field) Config() Config { return f.cfg }

// Size returns the grid dimensions.
func (f *Field) Size() (int, int) { return f.nx, f.ny }

// StepIndex is the number of steps taken since the last Reset.
func (f *Field) StepIndex() int { return f.step }

// Done reports whether all configured time steps have run.
func (f *Field) Done() bool { return f.step >= f.cfg.TimeSamples }

// Pressure exposes the pressure array, indexed y*nx+x. Callers must not
// retain it across steps.
func (f *Field) Pressure() []float64 { return f.pressure }

// VelocityX exposes the x velocity array.
func (f *Field) VelocityX() []float64 { return f.vx }

// VelocityY exposes the y velocity array.
func (f *Field) VelocityY() []float64 { return f.vy }

func (f *Field) index(c Cell) int { return c.Y*f.nx + c.X }

func (f *Field) checkRegion(r Region) error {
	if r.Len() == 0 {
		return fmt.Errorf("%w: empty region", ErrInvalidConfig)
	}
	for _, c := range r.cells {
		if c.X < 0 || c.X >= f.nx || c.Y < 0 || c.Y >= f.ny {
			return fmt.Errorf("%w: cell (%d, %d)", ErrOutOfBounds, c.X, c.Y)
		}
	}
	return nil
}

// PointRegion snaps (x, y) to a single cell.
func (f *Field) PointRegion(x, y float64) (Region, error) { return f.cfg.PointRegion(x, y) }

// LineRegion rasterizes a segment.
func (f *Field) LineRegion(x0, y0, x1, y1 float64) (Region, error) {
	return f.cfg.LineRegion(x0, y0, x1, y1)
}

// PolylineRegion rasterizes a polyline.
func (f *Field) PolylineRegion(ls geom.LineString) (Region, error) { return f.cfg.PolylineRegion(ls) }

// PolygonRegion rasterizes the interior of a polygon.
func (f *Field) PolygonRegion(p geom.Polygon) (Region, error) { return f.cfg.PolygonRegion(p) }

// TriangleRegion rasterizes the interior of a triangle.
func (f *Field) TriangleRegion(p geom.Polygon) (Region, error) { return f.cfg.TriangleRegion(p) }

// AddBoundary registers a pressure boundary on r.
func (f *Field) AddBoundary(r Region, opts ...BoundaryOption) error {
	if err := f.checkRegion(r); err != nil {
		return err
	}
	b := NewBoundary(r, opts...)
	if b.Value != nil && len(b.Value) != f.cfg.TimeSamples {
		return fmt.Errorf("%w: boundary series has %d samples, field has %d",
			ErrInvalidConfig, len(b.Value), f.cfg.TimeSamples)
	}
	f.boundaries = append(f.boundaries, b)
	f.gen++
	return nil
}

// Boundaries returns the registered boundaries in order.
func (f *Field) Boundaries() []Boundary {
	out := make([]Boundary, len(f.boundaries))
	copy(out, f.boundaries)
	return out
}

// AddMaterial overrides the medium on r. Materials are static: they may not
// be added after Seal.
func (f *Field) AddMaterial(r Region, m Material) error {
	if f.sealed {
		return fmt.Errorf("%w: materials cannot change after Seal", ErrInvalidConfig)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := f.cfg.checkStable(m); err != nil {
		return err
	}
	if err := f.checkRegion(r); err != nil {
		return err
	}
	rho, k, nu := m.Density, m.bulkModulus(), m.viscosity()
	for _, c := range r.cells {
		i := f.index(c)
		f.density[i] = rho
		f.modulus[i] = k
		f.viscosity[i] = nu
		f.material[i] = true
	}
	if m.SoundVelocity > f.maxSpeed {
		f.maxSpeed = m.SoundVelocity
	}
	f.coefDirty = true
	f.gen++
	return nil
}

// AddOutput registers a probe on r.
func (f *Field) AddOutput(r Region) (*Output, error) {
	if err := f.checkRegion(r); err != nil {
		return nil, err
	}
	o := NewOutput(r, f.cfg.TimeSamples)
	f.outputs = append(f.outputs, o)
	f.gen++
	return o, nil
}

// Outputs returns the registered probes, static ones first.
func (f *Field) Outputs() []*Output {
	out := make([]*Output, len(f.outputs))
	copy(out, f.outputs)
	return out
}

// Seal freezes the current registrations as static.
func (f *Field) Seal() {
	f.sealed = true
	f.staticB = len(f.boundaries)
	f.staticO = len(f.outputs)
}

// ClearTransient drops boundaries and outputs registered after Seal.
func (f *Field) ClearTransient() {
	if !f.sealed {
		return
	}
	for i := f.staticB; i < len(f.boundaries); i++ {
		f.boundaries[i] = Boundary{}
	}
	f.boundaries = f.boundaries[:f.staticB]
	for i := f.staticO; i < len(f.outputs); i++ {
		f.outputs[i] = nil
	}
	f.outputs = f.outputs[:f.staticO]
	f.gen++
}

// Reset zeroes pressure, both velocity components, the step counter and all
// probe recordings.
func (f *Field) Reset() {
	clear(f.pressure)
	clear(f.vx)
	clear(f.vy)
	clear(f.div)
	f.step = 0
	for _, o := range f.outputs {
		o.reset()
	}
	f.backend.reset()
}

// Step advances the field by one time step.
func (f *Field) Step() error {
	if f.Done() {
		return nil
	}
	return f.backend.advance(f, 1)
}

// Simulate runs the remaining time steps.
func (f *Field) Simulate() error {
	remaining := f.cfg.TimeSamples - f.step
	if remaining <= 0 {
		return nil
	}
	return f.backend.advance(f, remaining)
}

// Close releases backend resources.
func (f *Field) Close() {
	f.backend.close()
}

// CellKinds classifies every cell for display. Later registrations win.
func (f *Field) CellKinds() []CellKind {
	kinds := make([]CellKind, f.nx*f.ny)
	for i, m := range f.material {
		if m {
			kinds[i] = KindMaterial
		}
	}
	for _, b := range f.boundaries {
		kind := KindBoundary
		if b.Value != nil {
			kind = KindSource
		}
		for _, c := range b.Region.cells {
			kinds[f.index(c)] = kind
		}
	}
	for _, o := range f.outputs {
		for _, c := range o.region.cells {
			kinds[f.index(c)] = KindOutput
		}
	}
	return kinds
}

// prepare rebuilds update coefficients after the medium changed.
func (f *Field) prepare() {
	if !f.coefDirty {
		return
	}
	size := f.nx * f.ny
	dt, dx, dy := f.cfg.TimeDelta, f.cfg.X.Delta, f.cfg.Y.Delta
	c := coefficients{
		ax: make([]float64, size),
		ay: make([]float64, size),
		nx: make([]float64, size),
		ny: make([]float64, size),
		kp: make([]float64, size),
	}
	f.viscous = false
	for y := 0; y < f.ny; y++ {
		up := ((y + 1) % f.ny) * f.nx
		for x := 0; x < f.nx; x++ {
			i := y*f.nx + x
			right := y*f.nx + (x+1)%f.nx
			top := up + x

			rhoX := (f.density[i] + f.density[right]) / 2
			rhoY := (f.density[i] + f.density[top]) / 2
			nuX := (f.viscosity[i] + f.viscosity[right]) / 2
			nuY := (f.viscosity[i] + f.viscosity[top]) / 2
			c.ax[i] = dt / (rhoX * dx)
			c.ay[i] = dt / (rhoY * dy)
			c.nx[i] = dt * nuX / (rhoX * dx)
			c.ny[i] = dt * nuY / (rhoY * dy)
			c.kp[i] = dt * f.modulus[i]
			if nuX != 0 || nuY != 0 {
				f.viscous = true
			}
		}
	}
	f.coef = c
	f.coefDirty = false
}

// applyBoundaries forces pressure on boundary cells for step n, in
// registration order.
func (f *Field) applyBoundaries(n int) {
	for _, b := range f.boundaries {
		switch {
		case b.Value == nil:
			for _, c := range b.Region.cells {
				f.pressure[f.index(c)] = 0
			}
		case b.Additive:
			v := b.Value[n]
			for _, c := range b.Region.cells {
				f.pressure[f.index(c)] += v
			}
		default:
			v := b.Value[n]
			for _, c := range b.Region.cells {
				f.pressure[f.index(c)] = v
			}
		}
	}
}

// recordOutputs samples every probe at step n.
func (f *Field) recordOutputs(n int) {
	for _, o := range f.outputs {
		o.Record(n, func(c Cell) float64 { return f.pressure[f.index(c)] })
	}
}
