package fdtd

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

// Cell is an integer coordinate on the simulation grid.
type Cell struct {
	X int
	Y int
}

// Region is an ordered set of distinct grid cells.
type Region struct {
	cells []Cell
}

// NewRegion builds a region from cells, dropping duplicates but keeping order.
func NewRegion(cells ...Cell) Region {
	seen := make(map[Cell]struct{}, len(cells))
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return Region{cells: out}
}

// Cells returns a copy of the region's cells.
func (r Region) Cells() []Cell {
	out := make([]Cell, len(r.cells))
	copy(out, r.cells)
	return out
}

// Len is the number of cells in the region.
func (r Region) Len() int { return len(r.cells) }

// Union returns the cells of r followed by the cells of o not already in r.
func (r Region) Union(o Region) Region {
	all := make([]Cell, 0, len(r.cells)+len(o.cells))
	all = append(all, r.cells...)
	all = append(all, o.cells...)
	return NewRegion(all...)
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// lineCells walks the integer line between two cells with Bresenham's algorithm.
func lineCells(x0, y0, x1, y1 int) []Cell {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := y1 - y0
	if dy > 0 {
		dy = -dy
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	cells := make([]Cell, 0, max(dx, -dy)+1)
	err := dx + dy
	for {
		cells = append(cells, Cell{X: x0, Y: y0})
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
	return cells
}

// cellAt snaps a physical position to a grid cell.
func (c Config) cellAt(x, y float64) (Cell, error) {
	ix, err := c.X.Index(x)
	if err != nil {
		return Cell{}, fmt.Errorf("x: %w", err)
	}
	iy, err := c.Y.Index(y)
	if err != nil {
		return Cell{}, fmt.Errorf("y: %w", err)
	}
	return Cell{X: ix, Y: iy}, nil
}

// PointRegion returns the single cell at (x, y).
func (c Config) PointRegion(x, y float64) (Region, error) {
	cell, err := c.cellAt(x, y)
	if err != nil {
		return Region{}, fmt.Errorf("point (%g, %g): %w", x, y, err)
	}
	return NewRegion(cell), nil
}

// LineRegion returns the cells on the segment from (x0, y0) to (x1, y1).
// Both end points must snap to the grid.
func (c Config) LineRegion(x0, y0, x1, y1 float64) (Region, error) {
	a, err := c.cellAt(x0, y0)
	if err != nil {
		return Region{}, fmt.Errorf("line (%g, %g)-(%g, %g): %w", x0, y0, x1, y1, err)
	}
	b, err := c.cellAt(x1, y1)
	if err != nil {
		return Region{}, fmt.Errorf("line (%g, %g)-(%g, %g): %w", x0, y0, x1, y1, err)
	}
	return NewRegion(lineCells(a.X, a.Y, b.X, b.Y)...), nil
}

// PolylineRegion rasterizes every segment of ls.
func (c Config) PolylineRegion(ls geom.LineString) (Region, error) {
	seq := ls.Coordinates()
	n := seq.Length()
	if n < 2 {
		return Region{}, fmt.Errorf("%w: polyline needs at least 2 points, got %d", ErrInvalidConfig, n)
	}
	var region Region
	for i := 0; i+1 < n; i++ {
		a, b := seq.GetXY(i), seq.GetXY(i+1)
		seg, err := c.LineRegion(a.X, a.Y, b.X, b.Y)
		if err != nil {
			return Region{}, err
		}
		region = region.Union(seg)
	}
	return region, nil
}

// PolygonRegion returns the cells whose sample point lies inside poly.
// Vertices need not be on the grid but must lie within it.
func (c Config) PolygonRegion(poly geom.Polygon) (Region, error) {
	if poly.IsEmpty() || poly.Area() <= 0 {
		return Region{}, fmt.Errorf("%w: polygon has no area", ErrInvalidConfig)
	}
	seq := poly.ExteriorRing().Coordinates()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		if !c.X.Contains(xy.X) || !c.Y.Contains(xy.Y) {
			return Region{}, fmt.Errorf("%w: polygon vertex (%g, %g)", ErrOutOfBounds, xy.X, xy.Y)
		}
		minX, maxX = math.Min(minX, xy.X), math.Max(maxX, xy.X)
		minY, maxY = math.Min(minY, xy.Y), math.Max(maxY, xy.Y)
	}
	x0 := clampCoord(int(math.Floor(minX/c.X.Delta)), 0, c.X.Samples-1)
	x1 := clampCoord(int(math.Ceil(maxX/c.X.Delta)), 0, c.X.Samples-1)
	y0 := clampCoord(int(math.Floor(minY/c.Y.Delta)), 0, c.Y.Samples-1)
	y1 := clampCoord(int(math.Ceil(maxY/c.Y.Delta)), 0, c.Y.Samples-1)

	shape := poly.AsGeometry()
	var cells []Cell
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			pt, err := geom.XY{X: float64(x) * c.X.Delta, Y: float64(y) * c.Y.Delta}.AsPoint()
			if err != nil {
				return Region{}, fmt.Errorf("sample (%d, %d): %w", x, y, err)
			}
			if geom.Intersects(shape, pt.AsGeometry()) {
				cells = append(cells, Cell{X: x, Y: y})
			}
		}
	}
	if len(cells) == 0 {
		// Smaller than a cell: fall back to the sample nearest its centroid.
		centroid, ok := poly.Centroid().XY()
		if !ok {
			return Region{}, fmt.Errorf("%w: polygon centroid undefined", ErrInvalidConfig)
		}
		cells = append(cells, Cell{
			X: clampCoord(int(math.Round(centroid.X/c.X.Delta)), 0, c.X.Samples-1),
			Y: clampCoord(int(math.Round(centroid.Y/c.Y.Delta)), 0, c.Y.Samples-1),
		})
	}
	return NewRegion(cells...), nil
}

// TriangleRegion is PolygonRegion restricted to triangles.
func (c Config) TriangleRegion(tri geom.Polygon) (Region, error) {
	// A closed ring of a triangle holds its first vertex twice.
	if n := tri.ExteriorRing().Coordinates().Length(); n != 4 || tri.NumInteriorRings() != 0 {
		return Region{}, fmt.Errorf("%w: not a triangle (%d ring coordinates)", ErrInvalidConfig, n)
	}
	return c.PolygonRegion(tri)
}

// Triangle builds a triangle polygon from three vertices.
func Triangle(a, b, c geom.XY) (geom.Polygon, error) {
	return polygon([]float64{a.X, a.Y, b.X, b.Y, c.X, c.Y, a.X, a.Y})
}

// Polyline builds a line string from consecutive vertices.
func Polyline(points ...geom.XY) (geom.LineString, error) {
	flat := make([]float64, 0, 2*len(points))
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("%w: polyline: %v", ErrInvalidConfig, err)
	}
	return ls, nil
}

// Rectangle builds an axis-aligned rectangle polygon.
func Rectangle(x0, y0, x1, y1 float64) (geom.Polygon, error) {
	return polygon([]float64{x0, y0, x1, y0, x1, y1, x0, y1, x0, y0})
}

// polygon builds a hole-free polygon from a closed ring of flat XY pairs.
func polygon(ring []float64) (geom.Polygon, error) {
	ls, err := geom.NewLineString(geom.NewSequence(ring, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("%w: ring: %v", ErrInvalidConfig, err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ls})
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("%w: polygon: %v", ErrInvalidConfig, err)
	}
	return poly, nil
}
