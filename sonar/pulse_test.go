package sonar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeAxis(n int, dt float64) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * dt
	}
	return t
}

func TestGaussPulse_PeakAndSymmetry(t *testing.T) {
	tt := timeAxis(201, 1e-5)
	s := GaussPulse(tt, 1e-3, 5e3, 0.5)

	require.Len(t, s, 201)
	assert.InDelta(t, 1.0, s[100], 1e-9)
	assert.Equal(t, 100, PeakIndex(s))
	for i := 1; i <= 100; i++ {
		assert.InDelta(t, s[100-i], s[100+i], 1e-9, "offset %d", i)
	}
}

func TestGaussPulse_HalfAmplitudeBandwidth(t *testing.T) {
	// The envelope spectrum falls to -6 dB at fc·(1 ± bw/2); in the time
	// domain that fixes a.
	p := Pulse{Frequency: 2e3, Bandwidth: 2}
	a := p.envelopeRate()
	assert.InDelta(t, 5.715e7, a, 1e4)
	assert.InDelta(t, 3.4767e-4, p.Cutoff(), 1e-7)
}

func TestGaussPulse_ZeroOutsideCutoff(t *testing.T) {
	p := Pulse{Frequency: 1e4, Bandwidth: 1, PreDelay: 2e-4}
	tt := timeAxis(400, 2e-6)
	s := p.Series(tt, 0)

	cut := p.Cutoff()
	for i, ti := range tt {
		if math.Abs(ti-p.PreDelay) > cut {
			assert.Zero(t, s[i], "sample %d", i)
		}
	}
	assert.NotZero(t, s[100])
}

func TestPulse_SeriesDelay(t *testing.T) {
	p := Pulse{Frequency: 5e3, Bandwidth: 1, PreDelay: 4.8e-4}
	tt := timeAxis(1500, 8e-6)

	assert.Equal(t, 60, PeakIndex(p.Series(tt, 0)))
	assert.Equal(t, 85, PeakIndex(p.Series(tt, 2e-4)))
	assert.InDelta(t, 6.8e-4, p.Peak(2e-4), 1e-15)
}
