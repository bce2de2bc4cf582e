package sonar

import (
	"github.com/peterstace/simplefeatures/geom"

	"shallows/fdtd"
)

// Engine is the field simulation surface a Scenario drives. *fdtd.Field
// satisfies it.
type Engine interface {
	fdtd.View

	PointRegion(x, y float64) (fdtd.Region, error)
	LineRegion(x0, y0, x1, y1 float64) (fdtd.Region, error)
	PolylineRegion(ls geom.LineString) (fdtd.Region, error)
	PolygonRegion(p geom.Polygon) (fdtd.Region, error)
	TriangleRegion(p geom.Polygon) (fdtd.Region, error)

	AddBoundary(r fdtd.Region, opts ...fdtd.BoundaryOption) error
	AddMaterial(r fdtd.Region, m fdtd.Material) error
	AddOutput(r fdtd.Region) (*fdtd.Output, error)
	Outputs() []*fdtd.Output

	Seal()
	ClearTransient()
	Reset()
	Simulate() error
	Close()
}

// EngineFactory allocates an engine for a configuration.
type EngineFactory func(cfg fdtd.Config) (Engine, error)

// DefaultEngine returns a factory building *fdtd.Field with opts.
func DefaultEngine(opts ...fdtd.Option) EngineFactory {
	return func(cfg fdtd.Config) (Engine, error) {
		f, err := fdtd.New(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// Animator runs a field to completion while presenting it.
type Animator interface {
	Animate(v fdtd.View) error
}

// AnimatorFunc adapts a function to Animator.
type AnimatorFunc func(v fdtd.View) error

func (f AnimatorFunc) Animate(v fdtd.View) error { return f(v) }

var _ Engine = (*fdtd.Field)(nil)
