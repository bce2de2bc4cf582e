package fdtd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxis_VectorAndExtent(t *testing.T) {
	a := Axis{Delta: 0.5, Samples: 5}

	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, a.Vector())
	assert.Equal(t, 2.0, a.Max())
	assert.Equal(t, 1.0, a.Center())
	assert.True(t, a.Contains(2))
	assert.False(t, a.Contains(-0.1))
}

func TestAxis_IndexSnapsWithinRadius(t *testing.T) {
	a := Axis{Delta: 0.05, Samples: 1600, SnapRadius: 1e-3}

	idx, err := a.Index(40.1)
	require.NoError(t, err)
	assert.Equal(t, 802, idx)

	idx, err = a.Index(40.0009)
	require.NoError(t, err)
	assert.Equal(t, 800, idx)
}

func TestAxis_IndexOffGrid(t *testing.T) {
	a := Axis{Delta: 0.05, Samples: 1600, SnapRadius: 1e-3}

	_, err := a.Index(40.02)
	assert.ErrorIs(t, err, ErrOffGrid)
}

func TestAxis_IndexOutOfBounds(t *testing.T) {
	a := Axis{Delta: 0.05, Samples: 100}

	for _, v := range []float64{-0.1, 5.0, 100} {
		_, err := a.Index(v)
		assert.ErrorIs(t, err, ErrOutOfBounds, "v=%g", v)
	}
}

func TestAxis_ZeroSnapRadiusMeansHalfCell(t *testing.T) {
	a := Axis{Delta: 1, Samples: 10}

	idx, err := a.Index(3.4)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
}

func TestConfig_ValidateRejectsUnstableStep(t *testing.T) {
	cfg := testConfig(32, 32, 10)
	cfg.TimeDelta = 1e-4

	assert.ErrorIs(t, cfg.Validate(), ErrUnstable)
}

func TestConfig_ValidateRejectsBadSizes(t *testing.T) {
	cfg := testConfig(32, 32, 10)
	cfg.X.Samples = 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = testConfig(32, 32, 0)
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestMaterial_Impedance(t *testing.T) {
	water := Material{SoundVelocity: 1500, Density: 1000}
	assert.Equal(t, 1.5e6, water.Impedance())
	assert.Error(t, Material{SoundVelocity: 1500}.Validate())
}

// testConfig returns a small stable water configuration.
func TestConfig_TimeAxisAndDuration(t *testing.T) {
	cfg := testConfig(10, 10, 50)

	ts := cfg.Time()
	require.Len(t, ts, 50)
	assert.Equal(t, 0.0, ts[0])
	assert.InDelta(t, 49*2e-5, ts[49], 1e-15)
	assert.InDelta(t, 1e-3, cfg.Duration(), 1e-15)
}

func testConfig(nx, ny, nt int) Config {
	return Config{
		TimeDelta:   2e-5,
		TimeSamples: nt,
		X:           Axis{Delta: 0.0625, Samples: nx, SnapRadius: 1e-3},
		Y:           Axis{Delta: 0.0625, Samples: ny, SnapRadius: 1e-3},
		Material:    Material{SoundVelocity: 1500, Density: 1000, ShearViscosity: 1e-3, BulkViscosity: 3e-3},
	}
}
