package sonar

import "math"

const (
	// pulseReference is the level, in dB, at which the fractional bandwidth
	// is measured.
	pulseReference = -6.0
	// pulseCutoff is the envelope level, in dB, below which the pulse is
	// truncated to exactly zero.
	pulseCutoff = -60.0
)

// Pulse describes the excitation sent by every transducer of a scenario.
type Pulse struct {
	Frequency float64 // centre frequency, Hz
	Bandwidth float64 // fractional bandwidth
	PreDelay  float64 // s, envelope peak of an undelayed ping
}

// envelopeRate returns a in exp(-a·t²).
func (p Pulse) envelopeRate() float64 {
	ref := math.Pow(10, pulseReference/20)
	return -math.Pow(math.Pi*p.Frequency*p.Bandwidth, 2) / (4 * math.Log(ref))
}

// Cutoff is the half-width of the pulse support.
func (p Pulse) Cutoff() float64 {
	cut := math.Pow(10, pulseCutoff/20)
	return math.Sqrt(-math.Log(cut) / p.envelopeRate())
}

// Peak is the simulated time of the envelope peak for a transducer delay.
func (p Pulse) Peak(delay float64) float64 {
	return p.PreDelay + delay
}

// Series samples the pulse at times t for a transducer delay.
func (p Pulse) Series(t []float64, delay float64) []float64 {
	return GaussPulse(t, p.Peak(delay), p.Frequency, p.Bandwidth)
}

// GaussPulse samples a Gaussian-modulated cosine centred at t0. The envelope
// falls to -6 dB at fc·bw/2 from the carrier and the pulse is zero where the
// envelope is below -60 dB.
func GaussPulse(t []float64, t0, fc, bw float64) []float64 {
	p := Pulse{Frequency: fc, Bandwidth: bw}
	a := p.envelopeRate()
	cutoff := p.Cutoff()
	out := make([]float64, len(t))
	for i, ti := range t {
		d := ti - t0
		if math.Abs(d) > cutoff {
			continue
		}
		out[i] = math.Exp(-a*d*d) * math.Cos(2*math.Pi*fc*d)
	}
	return out
}
