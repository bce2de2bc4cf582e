package sonar

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"

	"shallows/fdtd"
)

type fakeBoundary struct {
	b     fdtd.Boundary
	cells map[fdtd.Cell]bool
}

// fakeEngine records registrations and reports, at every probe cell, the sum
// of the source series driving that cell. It propagates nothing.
type fakeEngine struct {
	cfg        fdtd.Config
	boundaries []fakeBoundary
	outputs    []*fdtd.Output
	materials  int
	triangles  int
	step       int

	sealed           bool
	staticB, staticO int

	resets, clears, simulates int
	closed                    bool
}

func newFakeEngine(cfg fdtd.Config) *fakeEngine {
	return &fakeEngine{cfg: cfg}
}

// fakeFactory returns a factory handing out fake engines, plus the slice it
// appends them to.
func fakeFactory() (EngineFactory, *[]*fakeEngine) {
	var built []*fakeEngine
	return func(cfg fdtd.Config) (Engine, error) {
		e := newFakeEngine(cfg)
		built = append(built, e)
		return e, nil
	}, &built
}

func (f *fakeEngine) Config() fdtd.Config { return f.cfg }
func (f *fakeEngine) Size() (int, int) { return f.cfg.X.Samples, f.cfg.Y.Samples }
func (f *fakeEngine) Pressure() []float64 { return make([]float64, f.cfg.X.Samples*f.cfg.Y.Samples) }
func (f *fakeEngine) CellKinds() []fdtd.CellKind { return make([]fdtd.CellKind, f.cfg.X.Samples*f.cfg.Y.Samples) }
func (f *fakeEngine) StepIndex() int { return f.step }
func (f *fakeEngine) Done() bool { return f.step >= f.cfg.TimeSamples }
func (f *fakeEngine) Outputs() []*fdtd.Output { return append([]*fdtd.Output(nil), f.outputs...) }
func (f *fakeEngine) PointRegion(x, y float64) (fdtd.Region, error) { return f.cfg.PointRegion(x, y) }
func (f *fakeEngine) LineRegion(x0, y0, x1, y1 float64) (fdtd.Region, error) {
	return f.cfg.LineRegion(x0, y0, x1, y1)
}
func (f *fakeEngine) PolylineRegion(ls geom.LineString) (fdtd.Region, error) {
	return f.cfg.PolylineRegion(ls)
}
func (f *fakeEngine) PolygonRegion(p geom.Polygon) (fdtd.Region, error) {
	return f.cfg.PolygonRegion(p)
}

func (f *fakeEngine) TriangleRegion(p geom.Polygon) (fdtd.Region, error) {
	f.triangles++
	return f.cfg.TriangleRegion(p)
}

func (f *fakeEngine) AddBoundary(r fdtd.Region, opts ...fdtd.BoundaryOption) error {
	b := fdtd.NewBoundary(r, opts...)
	if b.Value != nil && len(b.Value) != f.cfg.TimeSamples {
		return fmt.Errorf("%w: series length %d", fdtd.ErrInvalidConfig, len(b.Value))
	}
	cells := make(map[fdtd.Cell]bool, r.Len())
	for _, c := range r.Cells() {
		cells[c] = true
	}
	f.boundaries = append(f.boundaries, fakeBoundary{b: b, cells: cells})
	return nil
}

func (f *fakeEngine) AddMaterial(r fdtd.Region, m fdtd.Material) error {
	if f.sealed {
		return fdtd.ErrInvalidConfig
	}
	f.materials++
	return nil
}

func (f *fakeEngine) AddOutput(r fdtd.Region) (*fdtd.Output, error) {
	o := fdtd.NewOutput(r, f.cfg.TimeSamples)
	f.outputs = append(f.outputs, o)
	return o, nil
}

func (f *fakeEngine) Seal() {
	f.sealed = true
	f.staticB, f.staticO = len(f.boundaries), len(f.outputs)
}

func (f *fakeEngine) ClearTransient() {
	f.clears++
	f.boundaries = f.boundaries[:f.staticB]
	f.outputs = f.outputs[:f.staticO]
}

func (f *fakeEngine) Reset() {
	f.resets++
	f.step = 0
	for i, o := range f.outputs {
		f.outputs[i] = fdtd.NewOutput(o.Region(), f.cfg.TimeSamples)
	}
}

func (f *fakeEngine) Step() error {
	if f.Done() {
		return nil
	}
	n := f.step
	for _, o := range f.outputs {
		o.Record(n, func(c fdtd.Cell) float64 {
			var v float64
			for _, b := range f.boundaries {
				if b.b.Value != nil && b.cells[c] {
					v += b.b.Value[n]
				}
			}
			return v
		})
	}
	f.step++
	return nil
}

func (f *fakeEngine) Simulate() error {
	f.simulates++
	for !f.Done() {
		if err := f.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeEngine) Close() { f.closed = true }

// transient is the number of boundaries registered after Seal.
func (f *fakeEngine) transient() int { return len(f.boundaries) - f.staticB }
