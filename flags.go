package main

import "flag"

// registerFlags defines the command-line flags on fs and returns the -config
// value. Every other flag overrides the matching config key when set; unset
// flags fall back to the config file, then to SHALLOWS_* environment
// variables, then to the defaults in config.go.
func registerFlags(fs *flag.FlagSet) *string {
	configPath := fs.String("config", "", "path to a JSON config file (default ./shallows.json when present)")

	fs.String("scenario", defaultScenario, "scenario to build: 2020, 2021 or 2024")
	fs.String("positions", defaultPositions, "comma-separated transducer offsets from the field centre (m)")
	fs.String("delays", "", "comma-separated transducer delays (s); empty means none")

	// A non-negative aperture switches the 2024 scenario to a line transducer.
	fs.Float64("aperture", defaultAperture, "line transducer width for the 2024 scenario (m); negative pings -positions instead")
	fs.Float64("step-height", defaultStepHeight, "seafloor step height for the 2024 scenario (m)")
	fs.Float64("step-position", defaultStepPosition, "seafloor step x position for the 2024 scenario (m)")
	fs.Int64("seed", 0, "random seed for object placement (0 uses the clock)")

	fs.Bool("show", false, "animate the ping in a window")
	fs.Float64("scale", defaultScale, "pressure drawn at full colour when animating")
	fs.Int("steps-per-frame", defaultStepsPerFrame, "simulation steps per animation frame")
	fs.Bool("show-boundaries", true, "draw boundaries and sources while animating")
	fs.Bool("show-materials", true, "tint material inclusions while animating")
	fs.Bool("show-outputs", true, "draw probes while animating")

	fs.Bool("listen", false, "play the first returned signal, slowed down")
	fs.Bool("opencl", false, "step the field on an OpenCL device (needs the opencl build tag)")
	fs.Int("workers", 0, "CPU row bands stepped in parallel (0 uses GOMAXPROCS)")

	fs.String("log-level", defaultLogLevel, "log level: trace, debug, info, warn or error")
	fs.String("cpu-profile", "", "write a CPU profile to this path")
	fs.String("mem-profile", "", "write a heap profile to this path on exit")
	return configPath
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"scenario":        "scenario",
	"positions":       "positions",
	"delays":          "delays",
	"aperture":        "aperture",
	"step-height":     "step.height",
	"step-position":   "step.position",
	"seed":            "seed",
	"show":            "show",
	"scale":           "scale",
	"steps-per-frame": "stepsPerFrame",
	"show-boundaries": "showBoundaries",
	"show-materials":  "showMaterials",
	"show-outputs":    "showOutputs",
	"listen":          "listen",
	"opencl":          "opencl",
	"workers":         "workers",
	"log-level":       "logLevel",
	"cpu-profile":     "cpuProfile",
	"mem-profile":     "memProfile",
}
