package fdtd

import (
	"fmt"
	"math"
)

// Config fixes the discretization and ambient medium of a field.
type Config struct {
	TimeDelta   float64
	TimeSamples int
	X, Y        Axis
	Material    Material
}

// Time returns the simulated time of every step.
func (c Config) Time() []float64 {
	t := make([]float64, c.TimeSamples)
	for i := range t {
		t[i] = float64(i) * c.TimeDelta
	}
	return t
}

// Duration is the simulated time window.
func (c Config) Duration() float64 {
	return float64(c.TimeSamples) * c.TimeDelta
}

// Validate checks sizes and the stability bound for the ambient material.
func (c Config) Validate() error {
	if c.TimeDelta <= 0 || c.TimeSamples < 1 {
		return fmt.Errorf("%w: need positive time delta and sample count", ErrInvalidConfig)
	}
	if err := c.X.validate("x"); err != nil {
		return err
	}
	if err := c.Y.validate("y"); err != nil {
		return err
	}
	if err := c.Material.Validate(); err != nil {
		return err
	}
	return c.checkStable(c.Material)
}

// courant returns c·Δt·sqrt(1/Δx² + 1/Δy²) for the given material.
func (c Config) courant(m Material) float64 {
	return m.SoundVelocity * c.TimeDelta * math.Sqrt(1/(c.X.Delta*c.X.Delta)+1/(c.Y.Delta*c.Y.Delta))
}

func (c Config) checkStable(m Material) error {
	if n := c.courant(m); n > 1 {
		return fmt.Errorf("%w: courant number %.3f for c=%g", ErrUnstable, n, m.SoundVelocity)
	}
	return nil
}
