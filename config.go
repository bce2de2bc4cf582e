package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"shallows/sonar"
)

// Defaults shared by the flag help text and the config layer.
const (
	defaultScenario      = "2020"
	defaultPositions     = "0"
	defaultAperture      = -1.0
	defaultStepHeight    = 1.0
	defaultStepPosition  = 5.0
	defaultScale         = 0.1
	defaultStepsPerFrame = 10
	defaultLogLevel      = "info"

	configName = "shallows"
	envPrefix  = "SHALLOWS"

	minStepsPerFrame  = 1
	maxStepsPerFrame  = 1000
	stepsPerFrameStep = 5
)

// settings is the resolved run configuration.
type settings struct {
	Kind      sonar.Kind
	Positions []float64
	Delays    []float64 // nil when unset
	Aperture  float64   // negative disables the aperture ping

	StepHeight   float64
	StepPosition float64
	Seed         int64

	Show    bool
	Display displayOptions

	Listen   bool
	OpenCL   bool
	Workers  int
	LogLevel string

	CPUProfile string
	MemProfile string
}

// displayOptions controls the animator.
type displayOptions struct {
	Scale          float64
	StepsPerFrame  int
	ShowBoundaries bool
	ShowMaterials  bool
	ShowOutputs    bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scenario", defaultScenario)
	v.SetDefault("positions", defaultPositions)
	v.SetDefault("delays", "")
	v.SetDefault("aperture", defaultAperture)
	v.SetDefault("step.height", defaultStepHeight)
	v.SetDefault("step.position", defaultStepPosition)
	v.SetDefault("seed", 0)

	v.SetDefault("show", false)
	v.SetDefault("scale", defaultScale)
	v.SetDefault("stepsPerFrame", defaultStepsPerFrame)
	v.SetDefault("showBoundaries", true)
	v.SetDefault("showMaterials", true)
	v.SetDefault("showOutputs", true)

	v.SetDefault("listen", false)
	v.SetDefault("opencl", false)
	v.SetDefault("workers", 0)
	v.SetDefault("logLevel", defaultLogLevel)
	v.SetDefault("cpuProfile", "")
	v.SetDefault("memProfile", "")
}

// loadSettings layers defaults, the config file, the environment and the
// flags set on fs, in increasing priority. An empty configPath looks for
// shallows.json in the working directory and tolerates its absence.
func loadSettings(fs *flag.FlagSet, configPath string) (settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return settings{}, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("json")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return settings{}, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	return decodeSettings(v)
}

func decodeSettings(v *viper.Viper) (settings, error) {
	kind, err := sonar.ParseKind(v.GetString("scenario"))
	if err != nil {
		return settings{}, err
	}
	positions, err := parseFloats(v.GetStringSlice("positions"))
	if err != nil {
		return settings{}, fmt.Errorf("positions: %w", err)
	}
	delays, err := parseFloats(v.GetStringSlice("delays"))
	if err != nil {
		return settings{}, fmt.Errorf("delays: %w", err)
	}

	s := settings{
		Kind:         kind,
		Positions:    positions,
		Delays:       delays,
		Aperture:     v.GetFloat64("aperture"),
		StepHeight:   v.GetFloat64("step.height"),
		StepPosition: v.GetFloat64("step.position"),
		Seed:         v.GetInt64("seed"),
		Show:         v.GetBool("show"),
		Display: displayOptions{
			Scale:          v.GetFloat64("scale"),
			StepsPerFrame:  v.GetInt("stepsPerFrame"),
			ShowBoundaries: v.GetBool("showBoundaries"),
			ShowMaterials:  v.GetBool("showMaterials"),
			ShowOutputs:    v.GetBool("showOutputs"),
		},
		Listen:     v.GetBool("listen"),
		OpenCL:     v.GetBool("opencl"),
		Workers:    v.GetInt("workers"),
		LogLevel:   v.GetString("logLevel"),
		CPUProfile: v.GetString("cpuProfile"),
		MemProfile: v.GetString("memProfile"),
	}
	if s.Display.Scale <= 0 {
		return settings{}, fmt.Errorf("scale must be positive, got %g", s.Display.Scale)
	}
	if s.Display.StepsPerFrame < minStepsPerFrame || s.Display.StepsPerFrame > maxStepsPerFrame {
		return settings{}, fmt.Errorf("stepsPerFrame must be in [%d, %d], got %d",
			minStepsPerFrame, maxStepsPerFrame, s.Display.StepsPerFrame)
	}
	if s.Workers < 0 {
		return settings{}, fmt.Errorf("workers must not be negative, got %d", s.Workers)
	}
	return s, nil
}

// parseFloats accepts list entries that are numbers or comma/space
// separated numbers, so JSON arrays, env strings and flags all decode. An
// empty list yields nil.
func parseFloats(items []string) ([]float64, error) {
	var out []float64
	for _, item := range items {
		for _, field := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ' ' }) {
			f, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}
