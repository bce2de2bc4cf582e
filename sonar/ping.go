package sonar

import (
	"fmt"
	"math"
	"time"

	"shallows/fdtd"
)

// Request describes one ping: a transducer per position, each with a
// delay. Positions are horizontal offsets in metres from the centre of the
// field; transducers sit on the surface row.
type Request struct {
	Positions []float64
	// Delays, in seconds, are added to the pulse pre-delay. Nil means no
	// delay for every transducer.
	Delays []float64
	// Show runs the ping through the scenario's animator.
	Show bool
}

// Ping resets the field, fires the requested transducers and returns the
// post-processed probe signals. Pings on one Scenario are serialized.
func (s *Scenario) Ping(req Request) (Echo, error) {
	delays := req.Delays
	if delays == nil {
		delays = make([]float64, len(req.Positions))
	}
	if len(delays) != len(req.Positions) {
		return Echo{}, fmt.Errorf("%w: %d positions, %d delays",
			ErrShapeMismatch, len(req.Positions), len(delays))
	}
	if req.Show && s.animator == nil {
		return Echo{}, ErrNoAnimator
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	s.engine.ClearTransient()
	s.engine.Reset()

	cfg := s.cfg
	t := cfg.Time()
	y := cfg.Y.Max()
	for i, pos := range req.Positions {
		r, err := s.engine.PointRegion(cfg.X.Center()+pos, y)
		if err != nil {
			return Echo{}, fmt.Errorf("transducer %d at %g: %w", i, pos, err)
		}
		if err := s.transducer(r, s.preset.pulse.Series(t, delays[i])); err != nil {
			return Echo{}, fmt.Errorf("transducer %d at %g: %w", i, pos, err)
		}
	}

	if err := s.run(req.Show); err != nil {
		return Echo{}, err
	}

	outputs := s.engine.Outputs()
	raw := make([][]float64, len(outputs))
	for i, o := range outputs {
		raw[i] = o.MeanSignal()
	}
	echo := s.preset.process.Apply(raw)

	elapsed := time.Since(start)
	s.metrics.record(cfg.TimeSamples, elapsed)
	s.log.Debug().
		Int("transducers", len(req.Positions)).
		Int("steps", cfg.TimeSamples).
		Float64("window", cfg.Duration()).
		Dur("elapsed", elapsed).
		Msg("ping done")
	return echo, nil
}

// PingAperture fires a single line transducer of the given width centred on
// the surface and returns the signal of every cell on it. The half-width is
// rounded to whole cells. Only Seafloor2024 supports it.
func (s *Scenario) PingAperture(aperture float64, show bool) ([][]float64, error) {
	if s.kind != Seafloor2024 {
		return nil, fmt.Errorf("%w: aperture ping on %s", ErrWrongScenario, s.kind)
	}
	if aperture < 0 || math.IsNaN(aperture) || math.IsInf(aperture, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidAperture, aperture)
	}
	if show && s.animator == nil {
		return nil, ErrNoAnimator
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	s.engine.ClearTransient()
	s.engine.Reset()

	cfg := s.cfg
	half := math.Round(aperture/2/cfg.X.Delta) * cfg.X.Delta
	cx, y := cfg.X.Center(), cfg.Y.Max()
	r, err := s.engine.LineRegion(cx-half, y, cx+half, y)
	if err != nil {
		return nil, fmt.Errorf("aperture %g: %w", aperture, err)
	}
	out, err := s.transducerOutput(r, s.preset.pulse.Series(cfg.Time(), 0))
	if err != nil {
		return nil, fmt.Errorf("aperture %g: %w", aperture, err)
	}
	if err := s.run(show); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	s.metrics.record(cfg.TimeSamples, elapsed)
	s.log.Debug().
		Float64("aperture", aperture).
		Int("cells", r.Len()).
		Float64("window", cfg.Duration()).
		Dur("elapsed", elapsed).
		Msg("aperture ping done")
	return out.Signals(), nil
}

// transducer adds the pulse on r and a probe on the same cells.
func (s *Scenario) transducer(r fdtd.Region, pulse []float64) error {
	_, err := s.transducerOutput(r, pulse)
	return err
}

func (s *Scenario) transducerOutput(r fdtd.Region, pulse []float64) (*fdtd.Output, error) {
	if err := s.engine.AddBoundary(r, fdtd.WithValue(pulse), fdtd.Additive()); err != nil {
		return nil, err
	}
	return s.engine.AddOutput(r)
}

func (s *Scenario) run(show bool) error {
	if show {
		if err := s.animator.Animate(s.engine); err != nil {
			return fmt.Errorf("animate: %w", err)
		}
	}
	// A closed window leaves the rest of the run to finish headless.
	if err := s.engine.Simulate(); err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	return nil
}
