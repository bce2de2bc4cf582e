package sonar

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// PeakIndex returns the index of the largest magnitude in s, or -1 for an
// empty signal.
func PeakIndex(s []float64) int {
	if len(s) == 0 {
		return -1
	}
	mag := make([]float64, len(s))
	for i, v := range s {
		mag[i] = math.Abs(v)
	}
	return floats.MaxIdx(mag)
}

// FirstAbove returns the first index whose magnitude exceeds threshold, or
// -1 if there is none.
func FirstAbove(s []float64, threshold float64) int {
	for i, v := range s {
		if math.Abs(v) > threshold {
			return i
		}
	}
	return -1
}

// FirstNonZero returns the first index holding a non-zero sample, or -1.
func FirstNonZero(s []float64) int {
	return FirstAbove(s, 0)
}

// Energy is the sum of squared samples.
func Energy(s []float64) float64 {
	return floats.Dot(s, s)
}

// Envelope returns the magnitude of the analytic signal of s.
func Envelope(s []float64) []float64 {
	n := len(s)
	if n == 0 {
		return nil
	}
	fft := fourier.NewCmplxFFT(n)
	seq := make([]complex128, n)
	for i, v := range s {
		seq[i] = complex(v, 0)
	}
	coef := fft.Coefficients(nil, seq)
	// Keep DC (and Nyquist for even n), double positive frequencies, drop
	// negative ones.
	for i := 1; i < n; i++ {
		switch {
		case 2*i < n:
			coef[i] *= 2
		case 2*i == n:
		default:
			coef[i] = 0
		}
	}
	analytic := fft.Sequence(nil, coef)
	env := make([]float64, n)
	for i, c := range analytic {
		env[i] = cmplx.Abs(c) / float64(n)
	}
	return env
}

// ArrivalTime converts a sample index to seconds for time step dt.
func ArrivalTime(index int, dt float64) float64 {
	return float64(index) * dt
}
