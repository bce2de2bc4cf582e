package sonar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeakIndex(t *testing.T) {
	assert.Equal(t, 1, PeakIndex([]float64{0, -3, 2}))
	assert.Equal(t, 2, PeakIndex([]float64{0, 1, 2}))
	assert.Equal(t, -1, PeakIndex(nil))
}

func TestFirstNonZero(t *testing.T) {
	assert.Equal(t, 2, FirstNonZero([]float64{0, 0, -1e-30, 4}))
	assert.Equal(t, -1, FirstNonZero([]float64{0, 0}))
	assert.Equal(t, 3, FirstAbove([]float64{0, 0.1, -0.2, 0.6}, 0.5))
}

func TestEnergy(t *testing.T) {
	assert.InDelta(t, 14.0, Energy([]float64{1, -2, 3}), 1e-12)
	assert.Zero(t, Energy(nil))
}

func TestEnvelope_PeaksAtPulseCentre(t *testing.T) {
	tt := timeAxis(256, 1e-5)
	s := GaussPulse(tt, 128e-5, 5e3, 0.5)

	env := Envelope(s)
	assert.Len(t, env, 256)
	assert.Equal(t, 128, PeakIndex(env))
	assert.Nil(t, Envelope(nil))
}

func TestArrivalTime(t *testing.T) {
	assert.InDelta(t, 1e-3, ArrivalTime(50, 2e-5), 1e-15)
}
