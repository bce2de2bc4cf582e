package fdtd

// Output records the pressure on a region at every time step.
type Output struct {
	region Region
	mean   []float64
	cells  [][]float64
}

// NewOutput allocates recordings for samples steps.
func NewOutput(r Region, samples int) *Output {
	o := &Output{
		region: r,
		mean:   make([]float64, samples),
		cells:  make([][]float64, r.Len()),
	}
	for i := range o.cells {
		o.cells[i] = make([]float64, samples)
	}
	return o
}

// Region returns the probed cells.
func (o *Output) Region() Region { return o.region }

// Record stores step n, reading each cell through sample.
func (o *Output) Record(n int, sample func(Cell) float64) {
	if n < 0 || n >= len(o.mean) {
		return
	}
	var sum float64
	for k, c := range o.region.cells {
		v := sample(c)
		o.cells[k][n] = v
		sum += v
	}
	if len(o.region.cells) > 0 {
		o.mean[n] = sum / float64(len(o.region.cells))
	}
}

// MeanSignal returns a copy of the per-step mean over the region.
func (o *Output) MeanSignal() []float64 {
	out := make([]float64, len(o.mean))
	copy(out, o.mean)
	return out
}

// Signals returns a copy of the per-cell signals in region order.
func (o *Output) Signals() [][]float64 {
	out := make([][]float64, len(o.cells))
	for i, s := range o.cells {
		out[i] = make([]float64, len(s))
		copy(out[i], s)
	}
	return out
}

func (o *Output) reset() {
	clear(o.mean)
	for _, s := range o.cells {
		clear(s)
	}
}
