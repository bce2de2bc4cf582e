package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"shallows/fdtd"
)

var (
	boundaryColor = color.RGBA{30, 40, 80, 255}
	sourceColor   = color.RGBA{255, 220, 0, 255}
	outputColor   = color.RGBA{0, 255, 200, 255}
	// materialTint is added to the pressure colour of material cells.
	materialTint = color.RGBA{40, 40, 0, 0}
)

// Draw renders the pressure field with the enabled overlays and a status line.
func (g *fieldGame) Draw(screen *ebiten.Image) {
	fillPixels(g.pixels, g.view.Pressure(), g.kinds, g.nx, g.ny, g.scale, g.overlays)
	screen.WritePixels(g.pixels)

	cfg := g.view.Config()
	state := ""
	if g.paused {
		state = " (paused)"
	}
	msg := fmt.Sprintf("step %d/%d  t=%.3f ms%s\nsteps/frame %d (+/-)  scale %.3g ([/])\nstep: %.2f ms",
		g.view.StepIndex(), cfg.TimeSamples, float64(g.view.StepIndex())*cfg.TimeDelta*1e3, state,
		g.stepsPerFrame, g.scale, g.lastStep.Seconds()*1000)
	ebitenutil.DebugPrint(screen, msg)
}

// Layout reports one screen pixel per field cell.
func (g *fieldGame) Layout(_, _ int) (int, int) { return g.nx, g.ny }

// pressureColor maps p/scale to red for compression and blue for
// rarefaction, saturating at ±scale.
func pressureColor(p, scale float64) color.RGBA {
	v := math.Max(-1, math.Min(1, p/scale))
	intensity := uint8(math.Abs(v) * 255)
	if v >= 0 {
		return color.RGBA{intensity, 0, 0, 255}
	}
	return color.RGBA{0, 0, intensity, 255}
}

// fillPixels writes RGBA pixels for an nx×ny field into dst. Field row y=0
// is the bottom of the image.
func fillPixels(dst []byte, pressure []float64, kinds []fdtd.CellKind, nx, ny int, scale float64, o overlays) {
	for y := 0; y < ny; y++ {
		row := (ny - 1 - y) * nx
		for x := 0; x < nx; x++ {
			i := y*nx + x
			clr := pressureColor(pressure[i], scale)
			if i < len(kinds) {
				switch kinds[i] {
				case fdtd.KindBoundary:
					if o.boundaries {
						clr = boundaryColor
					}
				case fdtd.KindSource:
					if o.boundaries {
						clr = sourceColor
					}
				case fdtd.KindOutput:
					if o.outputs {
						clr = outputColor
					}
				case fdtd.KindMaterial:
					if o.materials {
						clr.R = addSaturating(clr.R, materialTint.R)
						clr.G = addSaturating(clr.G, materialTint.G)
					}
				}
			}
			base := (row + x) * 4
			dst[base] = clr.R
			dst[base+1] = clr.G
			dst[base+2] = clr.B
			dst[base+3] = clr.A
		}
	}
}

func addSaturating(a, b uint8) uint8 {
	if s := int(a) + int(b); s < 255 {
		return uint8(s)
	}
	return 255
}
