// Package sonar builds the shallow-water sonar experiments and pings them.
//
// A Scenario owns one field engine for its whole life. Build registers the
// static geometry of the chosen variant once; every Ping resets the field
// and adds only that request's transducers, so repeated pings with the same
// request produce the same signals.
package sonar

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"shallows/fdtd"
)

// Option configures Build.
type Option func(*settings)

type settings struct {
	log      zerolog.Logger
	rng      *rand.Rand
	target   *geom.XY
	step     StepGeometry
	factory  EngineFactory
	animator Animator
	meter    metric.Meter
}

// StepGeometry places the seafloor step of Seafloor2024.
type StepGeometry struct {
	Height   float64 // m, above the base depth
	Position float64 // m, x of the step edge
}

// WithLogger sets the scenario logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithRand sets the source used to place random objects.
func WithRand(r *rand.Rand) Option {
	return func(s *settings) { s.rng = r }
}

// WithTargetPosition fixes the buried object of Basin2021 instead of
// drawing it at random. The position is snapped to the grid.
func WithTargetPosition(x, y float64) Option {
	return func(s *settings) { s.target = &geom.XY{X: x, Y: y} }
}

// WithStep sets the seafloor step of Seafloor2024.
func WithStep(height, position float64) Option {
	return func(s *settings) { s.step = StepGeometry{Height: height, Position: position} }
}

// WithEngineFactory replaces the default fdtd engine.
func WithEngineFactory(f EngineFactory) Option {
	return func(s *settings) { s.factory = f }
}

// WithAnimator enables pings with Show set.
func WithAnimator(a Animator) Option {
	return func(s *settings) { s.animator = a }
}

// WithMeter sets the meter used for ping metrics.
func WithMeter(m metric.Meter) Option {
	return func(s *settings) { s.meter = m }
}

// Scenario is a built experiment ready to be pinged.
type Scenario struct {
	mu sync.Mutex

	kind     Kind
	preset   preset
	cfg      fdtd.Config // as reported by the engine
	engine   Engine
	log      zerolog.Logger
	animator Animator
	metrics  *pingMetrics

	target    geom.XY
	hasTarget bool
	step      StepGeometry
}

// Build constructs the scenario kind. The kind is checked before any engine
// is allocated.
func Build(kind Kind, opts ...Option) (*Scenario, error) {
	p, ok := presets[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, kind)
	}
	st := settings{
		log:  zerolog.Nop(),
		step: StepGeometry{Height: defaultStepHeight, Position: defaultStepPosition},
	}
	for _, opt := range opts {
		opt(&st)
	}
	if st.rng == nil {
		st.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if st.meter == nil {
		st.meter = meter()
	}
	if st.factory == nil {
		st.factory = DefaultEngine(fdtd.WithLogger(st.log))
	}

	pm, err := newPingMetrics(st.meter, kind)
	if err != nil {
		return nil, err
	}
	engine, err := st.factory(p.config)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", kind, err)
	}
	s := &Scenario{
		kind:     kind,
		preset:   p,
		cfg:      engine.Config(),
		engine:   engine,
		log:      st.log.With().Str("scenario", kind.String()).Logger(),
		animator: st.animator,
		metrics:  pm,
		step:     st.step,
	}
	if err := s.install(&st); err != nil {
		engine.Close()
		return nil, fmt.Errorf("scenario %s: %w", kind, err)
	}
	engine.Seal()

	ev := s.log.Debug().
		Int("nx", s.cfg.X.Samples).
		Int("ny", s.cfg.Y.Samples).
		Int("steps", s.cfg.TimeSamples).
		Int("outputs", len(engine.Outputs()))
	if s.hasTarget {
		ev = ev.Float64("targetX", s.target.X).Float64("targetY", s.target.Y)
	}
	ev.Msg("scenario built")
	return s, nil
}

func (s *Scenario) install(st *settings) error {
	switch s.kind {
	case Basin2020:
		return s.installHull()
	case Basin2021:
		return s.installBuriedObject(st)
	case Seafloor2024:
		return s.installSeafloor()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownScenario, s.kind)
	}
}

// lines registers one reflecting boundary per segment of pts.
func (s *Scenario) lines(pts []geom.XY) error {
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		r, err := s.engine.LineRegion(a.X, a.Y, b.X, b.Y)
		if err != nil {
			return err
		}
		if err := s.engine.AddBoundary(r); err != nil {
			return err
		}
	}
	return nil
}

// walls closes the basin at both x edges and at the bottom.
func (s *Scenario) walls() error {
	cfg := s.cfg
	xm, ym := cfg.X.Max(), cfg.Y.Max()
	return s.lines([]geom.XY{{X: 0, Y: ym}, {X: 0, Y: 0}, {X: xm, Y: 0}, {X: xm, Y: ym}})
}

func (s *Scenario) installHull() error {
	if err := s.lines(hullOutline); err != nil {
		return fmt.Errorf("hull: %w", err)
	}
	if err := s.lines(towerOutline); err != nil {
		return fmt.Errorf("tower: %w", err)
	}
	return nil
}

func (s *Scenario) installBuriedObject(st *settings) error {
	cfg := s.cfg
	if err := s.walls(); err != nil {
		return fmt.Errorf("walls: %w", err)
	}
	rect, err := fdtd.Rectangle(0, 0, cfg.X.Max(), sedimentTop)
	if err != nil {
		return fmt.Errorf("sediment: %w", err)
	}
	bed, err := s.engine.PolygonRegion(rect)
	if err != nil {
		return fmt.Errorf("sediment: %w", err)
	}
	if err := s.engine.AddMaterial(bed, sediment); err != nil {
		return fmt.Errorf("sediment: %w", err)
	}

	var at geom.XY
	if st.target != nil {
		at = *st.target
	} else {
		at = geom.XY{
			X: objectMinX + st.rng.Float64()*(objectMaxX-objectMinX),
			Y: objectMinY + st.rng.Float64()*(objectMaxY-objectMinY),
		}
	}
	at = geom.XY{X: snap(at.X, cfg.X.Delta), Y: snap(at.Y, cfg.Y.Delta)}

	tri, err := fdtd.Triangle(
		geom.XY{X: at.X - objectHalfBase, Y: at.Y - objectBelow},
		geom.XY{X: at.X + objectHalfBase, Y: at.Y - objectBelow},
		geom.XY{X: at.X, Y: at.Y + objectAbove},
	)
	if err != nil {
		return fmt.Errorf("object: %w", err)
	}
	obj, err := s.engine.TriangleRegion(tri)
	if err != nil {
		return fmt.Errorf("object: %w", err)
	}
	if err := s.engine.AddMaterial(obj, inclusion); err != nil {
		return fmt.Errorf("object: %w", err)
	}
	probe, err := s.engine.PointRegion(at.X, at.Y)
	if err != nil {
		return fmt.Errorf("target probe: %w", err)
	}
	if _, err := s.engine.AddOutput(probe); err != nil {
		return fmt.Errorf("target probe: %w", err)
	}
	s.target, s.hasTarget = at, true
	return nil
}

func (s *Scenario) installSeafloor() error {
	cfg := s.cfg
	if err := s.walls(); err != nil {
		return fmt.Errorf("walls: %w", err)
	}
	top := seafloorBase + s.step.Height
	floor, err := fdtd.Polyline(
		geom.XY{X: 0, Y: seafloorBase},
		geom.XY{X: s.step.Position, Y: seafloorBase},
		geom.XY{X: s.step.Position, Y: top},
		geom.XY{X: cfg.X.Max(), Y: top},
	)
	if err != nil {
		return fmt.Errorf("seafloor: %w", err)
	}
	r, err := s.engine.PolylineRegion(floor)
	if err != nil {
		return fmt.Errorf("seafloor: %w", err)
	}
	if err := s.engine.AddBoundary(r); err != nil {
		return fmt.Errorf("seafloor: %w", err)
	}
	return nil
}

// snap rounds v to the nearest multiple of delta.
func snap(v, delta float64) float64 {
	return math.Round(v/delta) * delta
}

// Kind returns the scenario variant.
func (s *Scenario) Kind() Kind { return s.kind }

// Config returns the field configuration.
func (s *Scenario) Config() fdtd.Config { return s.cfg }

// Pulse returns the transducer excitation.
func (s *Scenario) Pulse() Pulse { return s.preset.pulse }

// PostProcess returns the post-processing strategy.
func (s *Scenario) PostProcess() PostProcess { return s.preset.process }

// Target returns the buried object position, if the scenario has one.
func (s *Scenario) Target() (geom.XY, bool) { return s.target, s.hasTarget }

// Step returns the seafloor step geometry. It is meaningful for
// Seafloor2024 only.
func (s *Scenario) Step() StepGeometry { return s.step }

// Impedance is the acoustic impedance of the ambient medium.
func (s *Scenario) Impedance() float64 { return s.cfg.Material.Impedance() }

// Engine exposes the underlying field, mainly for display.
func (s *Scenario) Engine() Engine { return s.engine }

// Close releases the engine.
func (s *Scenario) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Close()
}
