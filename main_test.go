package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shallows/fdtd"
	"shallows/sonar"
)

func parseFlags(t *testing.T, args ...string) (*flag.FlagSet, string) {
	t.Helper()
	fs := flag.NewFlagSet("shallows", flag.ContinueOnError)
	configPath := registerFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs, *configPath
}

func TestLoadSettings_Defaults(t *testing.T) {
	fs, path := parseFlags(t)

	cfg, err := loadSettings(fs, path)
	require.NoError(t, err)

	assert.Equal(t, sonar.Basin2020, cfg.Kind)
	assert.Equal(t, []float64{0}, cfg.Positions)
	assert.Nil(t, cfg.Delays)
	assert.Less(t, cfg.Aperture, 0.0)
	assert.Equal(t, defaultStepHeight, cfg.StepHeight)
	assert.Equal(t, defaultStepPosition, cfg.StepPosition)
	assert.False(t, cfg.Show)
	assert.Equal(t, displayOptions{
		Scale:          defaultScale,
		StepsPerFrame:  defaultStepsPerFrame,
		ShowBoundaries: true,
		ShowMaterials:  true,
		ShowOutputs:    true,
	}, cfg.Display)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.Workers)
}

func TestLoadSettings_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	body := `{
		"scenario": "2021",
		"positions": [-0.1, 0.1],
		"delays": [0, 0.0001],
		"seed": 42,
		"step": {"height": 0.5},
		"stepsPerFrame": 25
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	fs, _ := parseFlags(t)

	cfg, err := loadSettings(fs, path)
	require.NoError(t, err)

	assert.Equal(t, sonar.Basin2021, cfg.Kind)
	assert.Equal(t, []float64{-0.1, 0.1}, cfg.Positions)
	assert.Equal(t, []float64{0, 0.0001}, cfg.Delays)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 0.5, cfg.StepHeight)
	assert.Equal(t, defaultStepPosition, cfg.StepPosition)
	assert.Equal(t, 25, cfg.Display.StepsPerFrame)
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	fs, _ := parseFlags(t)

	_, err := loadSettings(fs, filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadSettings_EnvThenFlags(t *testing.T) {
	t.Setenv("SHALLOWS_SCENARIO", "2024")
	t.Setenv("SHALLOWS_POSITIONS", "-1,1")
	t.Setenv("SHALLOWS_STEP_HEIGHT", "0.25")

	fs, path := parseFlags(t, "-positions=0.5, 1.5", "-show", "-steps-per-frame=3")
	cfg, err := loadSettings(fs, path)
	require.NoError(t, err)

	assert.Equal(t, sonar.Seafloor2024, cfg.Kind)
	assert.Equal(t, 0.25, cfg.StepHeight)
	assert.Equal(t, []float64{0.5, 1.5}, cfg.Positions, "flags win over env")
	assert.True(t, cfg.Show)
	assert.Equal(t, 3, cfg.Display.StepsPerFrame)
}

func TestLoadSettings_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown scenario", []string{"-scenario=1999"}, sonar.ErrUnknownScenario},
		{"bad position", []string{"-positions=0,x"}, nil},
		{"zero scale", []string{"-scale=0"}, nil},
		{"steps per frame", []string{"-steps-per-frame=0"}, nil},
		{"negative workers", []string{"-workers=-2"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, path := parseFlags(t, tt.args...)
			_, err := loadSettings(fs, path)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestParseFloats(t *testing.T) {
	got, err := parseFloats([]string{"0,0.5", "1", " 2 3 "})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1, 2, 3}, got)

	got, err = parseFloats(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseFloats([]string{"1,,two"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("warn", &buf)

	log.Info().Msg("quiet")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestPressureColor(t *testing.T) {
	assert.Equal(t, uint8(255), pressureColor(1, 0.5).R)
	assert.Equal(t, uint8(255), pressureColor(-3, 1).B)
	assert.Equal(t, uint8(0), pressureColor(-3, 1).R)
	assert.Equal(t, uint8(127), pressureColor(0.05, 0.1).R)
}

func TestFillPixels_FlipsRowsAndOverlays(t *testing.T) {
	const nx, ny = 3, 2
	pressure := []float64{1, 0, 0, 0, 0, -1}
	kinds := make([]fdtd.CellKind, nx*ny)
	kinds[1] = fdtd.KindBoundary
	kinds[3] = fdtd.KindOutput
	dst := make([]byte, nx*ny*4)

	fillPixels(dst, pressure, kinds, nx, ny, 1, overlays{boundaries: true, outputs: false})

	pixel := func(x, row int) []byte {
		i := (row*nx + x) * 4
		return dst[i : i+4]
	}
	// Field row 0 is drawn at the bottom.
	assert.Equal(t, []byte{255, 0, 0, 255}, pixel(0, 1))
	assert.Equal(t, []byte{boundaryColor.R, boundaryColor.G, boundaryColor.B, 255}, pixel(1, 1))
	assert.Equal(t, []byte{0, 0, 0, 255}, pixel(0, 0), "outputs hidden")
	assert.Equal(t, []byte{0, 0, 255, 255}, pixel(2, 0))
}

func TestAdjustStepsPerFrame(t *testing.T) {
	g := &fieldGame{stepsPerFrame: 3}
	g.adjustStepsPerFrame(-stepsPerFrameStep)
	assert.Equal(t, minStepsPerFrame, g.stepsPerFrame)
	g.adjustStepsPerFrame(5000)
	assert.Equal(t, maxStepsPerFrame, g.stepsPerFrame)
}

type countingView struct {
	steps, limit int
	fail         error
}

func (v *countingView) Config() fdtd.Config { return fdtd.Config{TimeSamples: v.limit} }
func (v *countingView) Size() (int, int) { return 4, 2 }
func (v *countingView) Pressure() []float64 { return make([]float64, 8) }
func (v *countingView) CellKinds() []fdtd.CellKind { return make([]fdtd.CellKind, 8) }
func (v *countingView) StepIndex() int { return v.steps }
func (v *countingView) Done() bool { return v.steps >= v.limit }
func (v *countingView) Step() error {
	if v.fail != nil {
		return v.fail
	}
	v.steps++
	return nil
}

func TestFieldGame_AdvanceStopsWhenDone(t *testing.T) {
	v := &countingView{limit: 25}
	g := newFieldGame(v, displayOptions{Scale: 1, StepsPerFrame: 10})

	assert.NoError(t, g.advance())
	assert.Equal(t, 10, v.steps)
	assert.NoError(t, g.advance())
	assert.ErrorIs(t, g.advance(), ebiten.Termination)
	assert.Equal(t, 25, v.steps)
	assert.NoError(t, g.err)
}

func TestFieldGame_AdvanceKeepsStepError(t *testing.T) {
	boom := errors.New("boom")
	g := newFieldGame(&countingView{limit: 5, fail: boom}, displayOptions{Scale: 1, StepsPerFrame: 2})

	assert.ErrorIs(t, g.advance(), ebiten.Termination)
	assert.ErrorIs(t, g.err, boom)
}

func TestEchoPCM(t *testing.T) {
	signal := []float64{0, 0.5, -2, 0.5}
	pcm := echoPCM(signal, 1e-4, 2, 10000)

	// 4 samples of 0.1 ms, slowed twice, at 10 kHz.
	require.Len(t, pcm, 8*audioFrameSize)
	left := func(i int) int16 { return int16(binary.LittleEndian.Uint16(pcm[i*audioFrameSize:])) }
	right := func(i int) int16 { return int16(binary.LittleEndian.Uint16(pcm[i*audioFrameSize+2:])) }
	gain := listenGain
	assert.Equal(t, int16(0), left(0))
	assert.InDelta(t, -gain*pcm16MaxValue, float64(left(4)), 1)
	assert.Equal(t, left(4), right(4))

	assert.Nil(t, echoPCM(make([]float64, 4), 1e-4, 2, 10000))
	assert.Nil(t, echoPCM(nil, 1e-4, 2, 10000))
}

func TestProfiling_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	cpu, mem := filepath.Join(dir, "cpu.pprof"), filepath.Join(dir, "mem.pprof")

	p, err := startProfiling(cpu, mem)
	require.NoError(t, err)
	require.NoError(t, p.stop())
	require.NoError(t, p.stop())

	assert.FileExists(t, cpu)
	assert.FileExists(t, mem)
}

func TestScenarioOptions_BuildsWithFixedSeed(t *testing.T) {
	cfg := settings{Kind: sonar.Basin2021, Seed: 9, StepHeight: 1, StepPosition: 5}
	opts := scenarioOptions(cfg, zerolog.Nop())
	assert.Len(t, opts, 4)

	cfg.Show = true
	assert.Len(t, scenarioOptions(cfg, zerolog.Nop()), 5)
	assert.Len(t, engineOptions(settings{OpenCL: true, Workers: 3}, zerolog.Nop()), 3)
}
