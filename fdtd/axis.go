package fdtd

import (
	"fmt"
	"math"
)

// Axis is one uniformly sampled spatial dimension starting at zero.
type Axis struct {
	Delta   float64
	Samples int
	// SnapRadius is the largest distance a coordinate may be from a grid
	// sample and still map onto it. Zero means half a cell.
	SnapRadius float64
}

// Vector returns the coordinate of every sample.
func (a Axis) Vector() []float64 {
	v := make([]float64, a.Samples)
	for i := range v {
		v[i] = float64(i) * a.Delta
	}
	return v
}

// Max returns the coordinate of the last sample.
func (a Axis) Max() float64 {
	if a.Samples == 0 {
		return 0
	}
	return float64(a.Samples-1) * a.Delta
}

// Center returns the coordinate of sample Samples/2.
func (a Axis) Center() float64 {
	return float64(a.Samples/2) * a.Delta
}

// Contains reports whether v lies within [0, Max()].
func (a Axis) Contains(v float64) bool {
	return v >= 0 && v <= a.Max()
}

// Index snaps v to the nearest sample.
func (a Axis) Index(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %g", ErrOutOfBounds, v)
	}
	idx := int(math.Round(v / a.Delta))
	if idx < 0 || idx >= a.Samples {
		return 0, fmt.Errorf("%w: %g not in [0, %g]", ErrOutOfBounds, v, a.Max())
	}
	snap := a.SnapRadius
	if snap <= 0 {
		snap = a.Delta / 2
	}
	if d := math.Abs(float64(idx)*a.Delta - v); d > snap {
		return 0, fmt.Errorf("%w: %g is %g from sample %d (snap radius %g)", ErrOffGrid, v, d, idx, snap)
	}
	return idx, nil
}

func (a Axis) validate(name string) error {
	if a.Delta <= 0 || a.Samples < 2 {
		return fmt.Errorf("%w: axis %s needs positive delta and at least 2 samples", ErrInvalidConfig, name)
	}
	if a.SnapRadius < 0 {
		return fmt.Errorf("%w: axis %s has negative snap radius", ErrInvalidConfig, name)
	}
	return nil
}
