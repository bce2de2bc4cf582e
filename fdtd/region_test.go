package fdtd

import (
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineCells_Diagonal(t *testing.T) {
	cells := lineCells(0, 0, 3, 3)
	assert.Equal(t, []Cell{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, cells)
}

func TestLineCells_SinglePoint(t *testing.T) {
	assert.Equal(t, []Cell{{4, 2}}, lineCells(4, 2, 4, 2))
}

func TestLineCells_Reversed(t *testing.T) {
	cells := lineCells(5, 1, 0, 1)
	require.Len(t, cells, 6)
	assert.Equal(t, Cell{5, 1}, cells[0])
	assert.Equal(t, Cell{0, 1}, cells[5])
}

func TestConfig_LineRegionSnapsEndpoints(t *testing.T) {
	cfg := testConfig(100, 100, 10)

	r, err := cfg.LineRegion(1, 1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 17, r.Len())
	assert.Equal(t, Cell{16, 16}, r.Cells()[0])
}

func TestConfig_LineRegionOutOfBounds(t *testing.T) {
	cfg := testConfig(100, 100, 10)

	_, err := cfg.LineRegion(1, 1, 7, 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestConfig_PolylineRegionDeduplicatesJoints(t *testing.T) {
	cfg := testConfig(100, 100, 10)

	ls, err := Polyline(geom.XY{X: 1, Y: 1}, geom.XY{X: 2, Y: 1}, geom.XY{X: 2, Y: 2})
	require.NoError(t, err)
	r, err := cfg.PolylineRegion(ls)
	require.NoError(t, err)
	// 17 cells on each leg share the corner.
	assert.Equal(t, 33, r.Len())
}

func TestConfig_PolylineRegionNeedsTwoPoints(t *testing.T) {
	cfg := testConfig(100, 100, 10)

	_, err := Polyline(geom.XY{X: 1, Y: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = cfg.PolylineRegion(geom.LineString{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_PolygonRegionRectangle(t *testing.T) {
	cfg := testConfig(100, 100, 10)

	rect, err := Rectangle(1, 1, 1.5, 1.25)
	require.NoError(t, err)
	r, err := cfg.PolygonRegion(rect)
	require.NoError(t, err)
	// 9 columns by 5 rows, edges included.
	assert.Equal(t, 45, r.Len())
}

func TestConfig_TriangleRegion(t *testing.T) {
	cfg := testConfig(100, 100, 10)

	tri, err := Triangle(geom.XY{X: 1, Y: 1}, geom.XY{X: 2, Y: 1}, geom.XY{X: 1, Y: 2})
	require.NoError(t, err)
	r, err := cfg.TriangleRegion(tri)
	require.NoError(t, err)
	// Cells with i+j <= 16 in a 17x17 corner, edges included.
	assert.Equal(t, 153, r.Len())

	rect, err := Rectangle(1, 1, 2, 2)
	require.NoError(t, err)
	_, err = cfg.TriangleRegion(rect)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_PolygonRegionTinyFallsBackToCentroid(t *testing.T) {
	cfg := testConfig(100, 100, 10)

	tri, err := Triangle(geom.XY{X: 1.01, Y: 1.01}, geom.XY{X: 1.02, Y: 1.01}, geom.XY{X: 1.01, Y: 1.02})
	require.NoError(t, err)
	r, err := cfg.PolygonRegion(tri)
	require.NoError(t, err)
	assert.Equal(t, []Cell{{16, 16}}, r.Cells())
}

func TestConfig_PolygonRegionVertexOutside(t *testing.T) {
	cfg := testConfig(100, 100, 10)

	rect, err := Rectangle(4, 4, 7, 7)
	require.NoError(t, err)
	_, err = cfg.PolygonRegion(rect)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestTriangle_RejectsDegenerateVertices(t *testing.T) {
	_, err := Triangle(geom.XY{X: 1, Y: 1}, geom.XY{X: 1, Y: 1}, geom.XY{X: 1, Y: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRegion_UnionKeepsOrder(t *testing.T) {
	a := NewRegion(Cell{1, 1}, Cell{2, 2})
	b := NewRegion(Cell{2, 2}, Cell{3, 3}, Cell{1, 1})

	assert.Equal(t, []Cell{{1, 1}, {2, 2}, {3, 3}}, a.Union(b).Cells())
}
