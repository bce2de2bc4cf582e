package fdtd

// Boundary forces the pressure on a region every step. Without a value
// series the pressure is held at zero, which makes the region a
// pressure-release reflector.
type Boundary struct {
	Region   Region
	Value    []float64
	Additive bool
}

// BoundaryOption configures a Boundary.
type BoundaryOption func(*Boundary)

// WithValue forces the series value[n] at step n.
func WithValue(value []float64) BoundaryOption {
	return func(b *Boundary) { b.Value = value }
}

// Additive sums the series into the computed pressure instead of
// replacing it, so overlapping sources superpose.
func Additive() BoundaryOption {
	return func(b *Boundary) { b.Additive = true }
}

// NewBoundary applies opts to a boundary on r.
func NewBoundary(r Region, opts ...BoundaryOption) Boundary {
	b := Boundary{Region: r}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}
