package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// overlays selects which cell kinds are drawn over the pressure field.
type overlays struct {
	boundaries bool
	materials  bool
	outputs    bool
}

// handleControls processes animator hotkeys. It reports whether the user
// asked to close the window.
func (g *fieldGame) handleControls() (quit bool) {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.adjustStepsPerFrame(-stepsPerFrameStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.adjustStepsPerFrame(stepsPerFrameStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		g.scale /= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		g.scale *= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.overlays.boundaries = !g.overlays.boundaries
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.overlays.materials = !g.overlays.materials
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.overlays.outputs = !g.overlays.outputs
	}
	return false
}

// adjustStepsPerFrame clamps the per-frame step batch within bounds.
func (g *fieldGame) adjustStepsPerFrame(delta int) {
	g.stepsPerFrame += delta
	if g.stepsPerFrame < minStepsPerFrame {
		g.stepsPerFrame = minStepsPerFrame
	} else if g.stepsPerFrame > maxStepsPerFrame {
		g.stepsPerFrame = maxStepsPerFrame
	}
}
