package sonar

// PostProcess selects how raw probe signals are shaped into an Echo.
type PostProcess uint8

const (
	// Identity returns every probe signal as a transducer signal.
	Identity PostProcess = iota
	// SplitFirstProbe separates the first (static target) probe from the
	// transducer probes.
	SplitFirstProbe
)

func (p PostProcess) String() string {
	switch p {
	case Identity:
		return "identity"
	case SplitFirstProbe:
		return "split-first-probe"
	default:
		return "unknown"
	}
}

// Echo is the result of a ping.
type Echo struct {
	// Target is the signal at the embedded object, nil when the scenario
	// has none.
	Target []float64
	// Signals holds one mean signal per transducer, in request order.
	Signals [][]float64
}

// HasTarget reports whether the echo carries a target signal.
func (e Echo) HasTarget() bool { return e.Target != nil }

// Raw reassembles the probe order the field reported.
func (e Echo) Raw() [][]float64 {
	if e.Target == nil {
		return e.Signals
	}
	return append([][]float64{e.Target}, e.Signals...)
}

// Apply shapes raw probe signals.
func (p PostProcess) Apply(raw [][]float64) Echo {
	switch p {
	case SplitFirstProbe:
		if len(raw) == 0 {
			return Echo{Signals: [][]float64{}}
		}
		return Echo{Target: raw[0], Signals: raw[1:]}
	default:
		return Echo{Signals: raw}
	}
}
