package sonar

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"

	"shallows/fdtd"
)

// Kind identifies a scenario variant.
type Kind uint8

const (
	// Basin2020 is a deep-water basin holding a submarine hull.
	Basin2020 Kind = iota + 1
	// Basin2021 is a shallow basin with a sediment layer and a buried object.
	Basin2021
	// Seafloor2024 is a shallow basin whose seafloor has a single step.
	Seafloor2024
)

// Kinds lists every supported variant.
var Kinds = []Kind{Basin2020, Basin2021, Seafloor2024}

// ParseKind maps an identifier such as "2021" to its Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScenario, s)
}

func (k Kind) String() string {
	switch k {
	case Basin2020:
		return "2020"
	case Basin2021:
		return "2021"
	case Seafloor2024:
		return "2024"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Description is a one-line human summary of the variant.
func (k Kind) Description() string {
	switch k {
	case Basin2020:
		return "basin with submarine"
	case Basin2021:
		return "basin with buried object"
	case Seafloor2024:
		return "seafloor step"
	default:
		return "unknown"
	}
}

var (
	water2020 = fdtd.Material{SoundVelocity: 1500, Density: 1000, ShearViscosity: 1e-3, BulkViscosity: 3e-3}
	water2021 = fdtd.Material{SoundVelocity: 1480, Density: 1000, ShearViscosity: 1e-3, BulkViscosity: 3e-3}
	sediment  = fdtd.Material{SoundVelocity: 1700, Density: 1900, ShearViscosity: 1e-2, BulkViscosity: 3e-2}
	inclusion = fdtd.Material{SoundVelocity: 2800, Density: 2600}
)

// preset holds the constants of one scenario variant.
type preset struct {
	config  fdtd.Config
	pulse   Pulse
	process PostProcess
}

var presets = map[Kind]preset{
	Basin2020: {
		config: fdtd.Config{
			TimeDelta:   2e-5,
			TimeSamples: 2000,
			X:           fdtd.Axis{Delta: 0.05, Samples: 1600, SnapRadius: 1e-3},
			Y:           fdtd.Axis{Delta: 0.05, Samples: 400, SnapRadius: 1e-3},
			Material:    water2020,
		},
		pulse:   Pulse{Frequency: 2e3, Bandwidth: 2, PreDelay: 1e-3},
		process: Identity,
	},
	Basin2021: {
		config: fdtd.Config{
			TimeDelta:   2e-6,
			TimeSamples: 2500,
			X:           fdtd.Axis{Delta: 0.01, Samples: 600},
			Y:           fdtd.Axis{Delta: 0.01, Samples: 300},
			Material:    water2021,
		},
		pulse:   Pulse{Frequency: 1e4, Bandwidth: 1, PreDelay: 2e-4},
		process: SplitFirstProbe,
	},
	Seafloor2024: {
		config: fdtd.Config{
			TimeDelta:   8e-6,
			TimeSamples: 1500,
			X:           fdtd.Axis{Delta: 0.02, Samples: 500},
			Y:           fdtd.Axis{Delta: 0.02, Samples: 250},
			Material:    water2020,
		},
		pulse:   Pulse{Frequency: 5e3, Bandwidth: 1, PreDelay: 4.8e-4},
		process: Identity,
	},
}

// Submarine outline for Basin2020, in metres.
var (
	hullOutline = []geom.XY{
		{X: 40, Y: 6}, {X: 45, Y: 6}, {X: 46, Y: 5}, {X: 46, Y: 4}, {X: 45, Y: 3},
		{X: 40, Y: 3}, {X: 38, Y: 4}, {X: 38, Y: 5}, {X: 40, Y: 6},
	}
	towerOutline = []geom.XY{
		{X: 42, Y: 6}, {X: 42, Y: 8}, {X: 44, Y: 8}, {X: 42, Y: 6},
	}
)

// Basin2021 object placement.
const (
	sedimentTop    = 0.8
	objectMinX     = 2.0
	objectMaxX     = 4.0
	objectMinY     = 0.3
	objectMaxY     = 0.6
	objectHalfBase = 0.06
	objectBelow    = 0.04
	objectAbove    = 0.06
)

// Seafloor2024 geometry.
const (
	seafloorBase        = 1.0
	defaultStepHeight   = 1.0
	defaultStepPosition = 5.0
)
