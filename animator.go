package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"shallows/fdtd"
)

// maxWindowWidth bounds the initial window; small fields are magnified.
const maxWindowWidth = 1600

// fieldGame steps a field a batch at a time and draws it.
type fieldGame struct {
	view   fdtd.View
	nx, ny int
	kinds  []fdtd.CellKind
	pixels []byte

	stepsPerFrame int
	scale         float64
	overlays      overlays
	paused        bool
	lastStep      time.Duration

	err error
}

func newFieldGame(v fdtd.View, opts displayOptions) *fieldGame {
	nx, ny := v.Size()
	return &fieldGame{
		view:          v,
		nx:            nx,
		ny:            ny,
		kinds:         v.CellKinds(),
		pixels:        make([]byte, nx*ny*4),
		stepsPerFrame: opts.StepsPerFrame,
		scale:         opts.Scale,
		overlays: overlays{
			boundaries: opts.ShowBoundaries,
			materials:  opts.ShowMaterials,
			outputs:    opts.ShowOutputs,
		},
	}
}

// Update advances the field by one batch and ends the game once the field
// is done, on a stepping error or when the user quits.
func (g *fieldGame) Update() error {
	if g.handleControls() {
		return ebiten.Termination
	}
	if g.paused {
		return nil
	}
	return g.advance()
}

func (g *fieldGame) advance() error {
	start := time.Now()
	for i := 0; i < g.stepsPerFrame && !g.view.Done(); i++ {
		if err := g.view.Step(); err != nil {
			g.err = err
			return ebiten.Termination
		}
	}
	g.lastStep = time.Since(start)
	if g.view.Done() {
		return ebiten.Termination
	}
	return nil
}

// animator presents pings in an ebiten window. ebiten runs one game per
// process, so an animator serves a single ping.
type animator struct {
	opts  displayOptions
	title string
	log   zerolog.Logger
}

func newAnimator(title string, opts displayOptions, log zerolog.Logger) *animator {
	return &animator{opts: opts, title: title, log: log}
}

// Animate runs the window until the field is done or the window closes.
func (a *animator) Animate(v fdtd.View) error {
	g := newFieldGame(v, a.opts)
	zoom := max(1, maxWindowWidth/g.nx)
	ebiten.SetWindowSize(g.nx*zoom, g.ny*zoom)
	ebiten.SetWindowTitle(a.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	a.log.Debug().Int("nx", g.nx).Int("ny", g.ny).Int("zoom", zoom).Msg("animating")
	if err := ebiten.RunGame(g); err != nil {
		return err
	}
	if g.err != nil {
		return g.err
	}
	if !v.Done() {
		a.log.Info().Int("step", v.StepIndex()).Msg("window closed, finishing headless")
	}
	return nil
}
