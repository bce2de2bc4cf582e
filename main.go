package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"shallows/fdtd"
	"shallows/sonar"
)

func main() {
	configPath := registerFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := loadSettings(flag.CommandLine, *configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "shallows:", err)
		os.Exit(2)
	}
	log := newLogger(cfg.LogLevel, os.Stderr)

	prof, err := startProfiling(cfg.CPUProfile, cfg.MemProfile)
	if err != nil {
		log.Fatal().Err(err).Msg("profiling")
	}
	runErr := run(cfg, log)
	if err := prof.stop(); err != nil {
		log.Error().Err(err).Msg("profiling")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("shallows failed")
	}
}

// engineOptions translates settings into field options.
func engineOptions(cfg settings, log zerolog.Logger) []fdtd.Option {
	opts := []fdtd.Option{fdtd.WithLogger(log)}
	if cfg.OpenCL {
		opts = append(opts, fdtd.WithBackend(fdtd.BackendOpenCL))
	}
	if cfg.Workers > 0 {
		opts = append(opts, fdtd.WithWorkers(cfg.Workers))
	}
	return opts
}

// scenarioOptions translates settings into builder options.
func scenarioOptions(cfg settings, log zerolog.Logger) []sonar.Option {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := []sonar.Option{
		sonar.WithLogger(log),
		sonar.WithRand(rand.New(rand.NewSource(seed))),
		sonar.WithStep(cfg.StepHeight, cfg.StepPosition),
		sonar.WithEngineFactory(sonar.DefaultEngine(engineOptions(cfg, log)...)),
	}
	if cfg.Show {
		title := fmt.Sprintf("shallows %s: %s", cfg.Kind, cfg.Kind.Description())
		opts = append(opts, sonar.WithAnimator(newAnimator(title, cfg.Display, log)))
	}
	return opts
}

func run(cfg settings, log zerolog.Logger) error {
	s, err := sonar.Build(cfg.Kind, scenarioOptions(cfg, log)...)
	if err != nil {
		return err
	}
	defer s.Close()

	if at, ok := s.Target(); ok {
		log.Info().Float64("x", at.X).Float64("y", at.Y).Msg("target placed")
	}

	var signals [][]float64
	if cfg.Aperture >= 0 {
		signals, err = s.PingAperture(cfg.Aperture, cfg.Show)
		if err != nil {
			return err
		}
	} else {
		echo, err := s.Ping(sonar.Request{Positions: cfg.Positions, Delays: cfg.Delays, Show: cfg.Show})
		if err != nil {
			return err
		}
		if echo.HasTarget() {
			logSignal(log, "target", 0, echo.Target, s.Config().TimeDelta)
		}
		signals = echo.Signals
	}

	dt := s.Config().TimeDelta
	for i, sig := range signals {
		logSignal(log, "transducer", i, sig, dt)
	}

	if cfg.Listen && len(signals) > 0 {
		return playEcho(signals[0], dt)
	}
	return nil
}

// logSignal reports the arrival and strength of one signal.
func logSignal(log zerolog.Logger, role string, i int, sig []float64, dt float64) {
	ev := log.Info().Str("role", role).Int("index", i).Float64("energy", sonar.Energy(sig))
	if peak := sonar.PeakIndex(sig); peak >= 0 {
		env := sonar.Envelope(sig)
		ev = ev.Int("peak", peak).
			Float64("peakTime", sonar.ArrivalTime(peak, dt)).
			Float64("envelopePeak", env[sonar.PeakIndex(env)])
	}
	ev.Msg("signal")
}
