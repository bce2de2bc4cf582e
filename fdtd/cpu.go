package fdtd

import "sync"

// band is a half-open range of rows stepped by one goroutine.
type band struct{ y0, y1 int }

// splitBands distributes rows across workers in contiguous bands.
func splitBands(rows, workers int) []band {
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	per := (rows + workers - 1) / workers
	bands := make([]band, 0, workers)
	for y := 0; y < rows; y += per {
		end := y + per
		if end > rows {
			end = rows
		}
		bands = append(bands, band{y0: y, y1: end})
	}
	return bands
}

// runBands calls fn for every band and waits for all of them.
func runBands(bands []band, fn func(y0, y1 int)) {
	if len(bands) == 1 {
		fn(bands[0].y0, bands[0].y1)
		return
	}
	var wg sync.WaitGroup
	for _, b := range bands {
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(b.y0, b.y1)
	}
	wg.Wait()
}

// cpuStepper steps the field on the host.
type cpuStepper struct{}

func (cpuStepper) advance(f *Field, n int) error {
	f.prepare()
	bands := splitBands(f.ny, f.workers)
	for i := 0; i < n && !f.Done(); i++ {
		runBands(bands, f.updateVelocity)
		runBands(bands, f.updateDivergence)
		if f.viscous {
			runBands(bands, f.correctVelocity)
			runBands(bands, f.updateDivergence)
		}
		runBands(bands, f.updatePressure)
		f.applyBoundaries(f.step)
		f.recordOutputs(f.step)
		f.step++
	}
	return nil
}

func (cpuStepper) reset() {}

func (cpuStepper) close() {}

// updateVelocity applies v -= Δt/ρ·∇p on rows [y0, y1).
func (f *Field) updateVelocity(y0, y1 int) {
	nx, ny := f.nx, f.ny
	p, ax, ay := f.pressure, f.coef.ax, f.coef.ay
	for y := y0; y < y1; y++ {
		row := y * nx
		up := ((y + 1) % ny) * nx
		for x := 0; x < nx; x++ {
			i := row + x
			right := row + x + 1
			if x == nx-1 {
				right = row
			}
			f.vx[i] -= ax[i] * (p[right] - p[i])
			f.vy[i] -= ay[i] * (p[up+x] - p[i])
		}
	}
}

// updateDivergence computes ∇·v at pressure points on rows [y0, y1).
func (f *Field) updateDivergence(y0, y1 int) {
	nx, ny := f.nx, f.ny
	invDx, invDy := 1/f.cfg.X.Delta, 1/f.cfg.Y.Delta
	for y := y0; y < y1; y++ {
		row := y * nx
		down := ((y - 1 + ny) % ny) * nx
		for x := 0; x < nx; x++ {
			i := row + x
			left := row + x - 1
			if x == 0 {
				left = row + nx - 1
			}
			f.div[i] = (f.vx[i]-f.vx[left])*invDx + (f.vy[i]-f.vy[down+x])*invDy
		}
	}
}

// correctVelocity adds the viscous term Δt·ν/ρ·∇(∇·v) on rows [y0, y1).
func (f *Field) correctVelocity(y0, y1 int) {
	nx, ny := f.nx, f.ny
	cx, cy := f.coef.nx, f.coef.ny
	for y := y0; y < y1; y++ {
		row := y * nx
		up := ((y + 1) % ny) * nx
		for x := 0; x < nx; x++ {
			i := row + x
			right := row + x + 1
			if x == nx-1 {
				right = row
			}
			f.vx[i] += cx[i] * (f.div[right] - f.div[i])
			f.vy[i] += cy[i] * (f.div[up+x] - f.div[i])
		}
	}
}

// updatePressure applies p -= Δt·ρc²·∇·v on rows [y0, y1).
func (f *Field) updatePressure(y0, y1 int) {
	nx := f.nx
	kp := f.coef.kp
	for y := y0; y < y1; y++ {
		row := y * nx
		for x := 0; x < nx; x++ {
			i := row + x
			f.pressure[i] -= kp[i] * f.div[i]
		}
	}
}
