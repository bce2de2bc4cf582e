//go:build opencl

package fdtd

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

const acousticKernelSource = `__kernel void update_velocity(
    const int nx,
    const int ny,
    __global const float* p,
    __global float* vx,
    __global float* vy,
    __global const float* ax,
    __global const float* ay)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny) {
        return;
    }
    int x = idx % nx;
    int y = idx / nx;
    int right = (x == nx - 1) ? idx - x : idx + 1;
    int up = ((y + 1) % ny) * nx + x;
    vx[idx] -= ax[idx] * (p[right] - p[idx]);
    vy[idx] -= ay[idx] * (p[up] - p[idx]);
}

__kernel void update_divergence(
    const int nx,
    const int ny,
    const float inv_dx,
    const float inv_dy,
    __global const float* vx,
    __global const float* vy,
    __global float* div)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny) {
        return;
    }
    int x = idx % nx;
    int y = idx / nx;
    int left = (x == 0) ? idx + nx - 1 : idx - 1;
    int down = ((y - 1 + ny) % ny) * nx + x;
    div[idx] = (vx[idx] - vx[left]) * inv_dx + (vy[idx] - vy[down]) * inv_dy;
}

__kernel void correct_velocity(
    const int nx,
    const int ny,
    __global const float* div,
    __global float* vx,
    __global float* vy,
    __global const float* cx,
    __global const float* cy)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny) {
        return;
    }
    int x = idx % nx;
    int y = idx / nx;
    int right = (x == nx - 1) ? idx - x : idx + 1;
    int up = ((y + 1) % ny) * nx + x;
    vx[idx] += cx[idx] * (div[right] - div[idx]);
    vy[idx] += cy[idx] * (div[up] - div[idx]);
}

__kernel void update_pressure(
    const int size,
    __global float* p,
    __global const float* div,
    __global const float* kp)
{
    int idx = get_global_id(0);
    if (idx >= size) {
        return;
    }
    p[idx] -= kp[idx] * div[idx];
}

__kernel void apply_boundaries(
    const int count,
    const int step,
    __global const int* cells,
    __global const int* modes,
    __global const int* offsets,
    __global const float* values,
    __global float* p)
{
    if (get_global_id(0) != 0) {
        return;
    }
    for (int i = 0; i < count; i++) {
        int idx = cells[i];
        int mode = modes[i];
        if (mode == 0) {
            p[idx] = 0.0f;
        } else if (mode == 1) {
            p[idx] = values[offsets[i] + step];
        } else {
            p[idx] += values[offsets[i] + step];
        }
    }
}

__kernel void record_outputs(
    const int count,
    const int step,
    __global const int* cells,
    __global const float* p,
    __global float* samples)
{
    int k = get_global_id(0);
    if (k >= count) {
        return;
    }
    samples[step * count + k] = p[cells[k]];
}`

const (
	boundaryZero int32 = iota
	boundaryReplace
	boundaryAdd
)

// openCLStepper runs the update kernels on the first GPU (or CPU) device.
// Host arrays stay authoritative: state is uploaded after Reset and read back
// after every advance.
type openCLStepper struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program

	velocityKernel   *cl.Kernel
	divergenceKernel *cl.Kernel
	viscousKernel    *cl.Kernel
	pressureKernel   *cl.Kernel
	boundaryKernel   *cl.Kernel
	recordKernel     *cl.Kernel

	pBuf, vxBuf, vyBuf, divBuf *cl.MemObject
	axBuf, ayBuf, cxBuf, cyBuf *cl.MemObject
	kpBuf                      *cl.MemObject

	boundaryCells, boundaryModes, boundaryOffsets, boundaryValues *cl.MemObject
	boundaryCount                                                 int

	outputCells, samplesBuf *cl.MemObject
	outputCount             int

	size       int
	deviceName string
	gen        int
	synced     bool
	stateDirty bool
	scratch    []float32
}

func newOpenCLStepper(f *Field) (*openCLStepper, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}
	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &openCLStepper{size: f.nx * f.ny, deviceName: device.Name(), stateDirty: true}
	if err := s.init(device, f); err != nil {
		s.close()
		return nil, err
	}
	f.log.Info().Str("device", s.deviceName).Msg("OpenCL backend enabled")
	return s, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

func (s *openCLStepper) init(device *cl.Device, f *Field) error {
	var err error
	if s.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return fmt.Errorf("creating OpenCL context: %w", err)
	}
	if s.queue, err = s.context.CreateCommandQueue(device, 0); err != nil {
		return fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if s.program, err = s.context.CreateProgramWithSource([]string{acousticKernelSource}); err != nil {
		return fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		if buildErr, ok := err.(cl.BuildError); ok {
			return fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return fmt.Errorf("building OpenCL program: %w", err)
	}
	kernels := []struct {
		name string
		dst  **cl.Kernel
	}{
		{"update_velocity", &s.velocityKernel},
		{"update_divergence", &s.divergenceKernel},
		{"correct_velocity", &s.viscousKernel},
		{"update_pressure", &s.pressureKernel},
		{"apply_boundaries", &s.boundaryKernel},
		{"record_outputs", &s.recordKernel},
	}
	for _, k := range kernels {
		if *k.dst, err = s.program.CreateKernel(k.name); err != nil {
			return fmt.Errorf("creating kernel %s: %w", k.name, err)
		}
	}
	byteSize := s.size * int(unsafe.Sizeof(float32(0)))
	for _, b := range []**cl.MemObject{
		&s.pBuf, &s.vxBuf, &s.vyBuf, &s.divBuf,
		&s.axBuf, &s.ayBuf, &s.cxBuf, &s.cyBuf, &s.kpBuf,
	} {
		if *b, err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
			return fmt.Errorf("allocating field buffer: %w", err)
		}
	}

	nx, ny := int32(f.nx), int32(f.ny)
	if err := s.velocityKernel.SetArgs(nx, ny, s.pBuf, s.vxBuf, s.vyBuf, s.axBuf, s.ayBuf); err != nil {
		return fmt.Errorf("setting velocity kernel arguments: %w", err)
	}
	if err := s.divergenceKernel.SetArgs(nx, ny,
		float32(1/f.cfg.X.Delta), float32(1/f.cfg.Y.Delta),
		s.vxBuf, s.vyBuf, s.divBuf); err != nil {
		return fmt.Errorf("setting divergence kernel arguments: %w", err)
	}
	if err := s.viscousKernel.SetArgs(nx, ny, s.divBuf, s.vxBuf, s.vyBuf, s.cxBuf, s.cyBuf); err != nil {
		return fmt.Errorf("setting viscous kernel arguments: %w", err)
	}
	if err := s.pressureKernel.SetArgs(int32(s.size), s.pBuf, s.divBuf, s.kpBuf); err != nil {
		return fmt.Errorf("setting pressure kernel arguments: %w", err)
	}
	return nil
}

func (s *openCLStepper) float32s(src []float64) []float32 {
	if cap(s.scratch) < len(src) {
		s.scratch = make([]float32, len(src))
	}
	dst := s.scratch[:len(src)]
	for i, v := range src {
		dst[i] = float32(v)
	}
	return dst
}

func (s *openCLStepper) writeFloats(buf *cl.MemObject, src []float64) error {
	_, err := s.queue.EnqueueWriteBufferFloat32(buf, true, 0, s.float32s(src), nil)
	return err
}

func (s *openCLStepper) writeInts(buf *cl.MemObject, src []int32) error {
	if len(src) == 0 {
		return nil
	}
	byteLen := len(src) * int(unsafe.Sizeof(int32(0)))
	_, err := s.queue.EnqueueWriteBuffer(buf, true, 0, byteLen, unsafe.Pointer(&src[0]), nil)
	return err
}

func (s *openCLStepper) readFloats(buf *cl.MemObject, dst []float64) error {
	tmp := make([]float32, len(dst))
	if _, err := s.queue.EnqueueReadBufferFloat32(buf, true, 0, tmp, nil); err != nil {
		return err
	}
	for i, v := range tmp {
		dst[i] = float64(v)
	}
	return nil
}

func releaseBuffer(b **cl.MemObject) {
	if *b != nil {
		(*b).Release()
		*b = nil
	}
}

// syncRegistrations uploads coefficients, boundaries and probe cells after
// the field's registrations changed.
func (s *openCLStepper) syncRegistrations(f *Field) error {
	f.prepare()
	uploads := []struct {
		buf *cl.MemObject
		src []float64
	}{
		{s.axBuf, f.coef.ax}, {s.ayBuf, f.coef.ay},
		{s.cxBuf, f.coef.nx}, {s.cyBuf, f.coef.ny},
		{s.kpBuf, f.coef.kp},
	}
	for _, u := range uploads {
		if err := s.writeFloats(u.buf, u.src); err != nil {
			return fmt.Errorf("writing coefficients: %w", err)
		}
	}

	var cells, modes, offsets []int32
	var values []float64
	for _, b := range f.boundaries {
		mode, offset := boundaryZero, int32(0)
		if b.Value != nil {
			mode = boundaryReplace
			if b.Additive {
				mode = boundaryAdd
			}
			offset = int32(len(values))
			values = append(values, b.Value...)
		}
		for _, c := range b.Region.cells {
			cells = append(cells, int32(f.index(c)))
			modes = append(modes, mode)
			offsets = append(offsets, offset)
		}
	}
	releaseBuffer(&s.boundaryCells)
	releaseBuffer(&s.boundaryModes)
	releaseBuffer(&s.boundaryOffsets)
	releaseBuffer(&s.boundaryValues)
	s.boundaryCount = len(cells)
	if s.boundaryCount > 0 {
		intBytes := s.boundaryCount * int(unsafe.Sizeof(int32(0)))
		var err error
		for _, b := range []**cl.MemObject{&s.boundaryCells, &s.boundaryModes, &s.boundaryOffsets} {
			if *b, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, intBytes); err != nil {
				return fmt.Errorf("allocating boundary buffer: %w", err)
			}
		}
		valueLen := max(len(values), 1)
		if s.boundaryValues, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, valueLen*int(unsafe.Sizeof(float32(0)))); err != nil {
			return fmt.Errorf("allocating boundary values: %w", err)
		}
		if err := s.writeInts(s.boundaryCells, cells); err != nil {
			return fmt.Errorf("writing boundary cells: %w", err)
		}
		if err := s.writeInts(s.boundaryModes, modes); err != nil {
			return fmt.Errorf("writing boundary modes: %w", err)
		}
		if err := s.writeInts(s.boundaryOffsets, offsets); err != nil {
			return fmt.Errorf("writing boundary offsets: %w", err)
		}
		if len(values) > 0 {
			if err := s.writeFloats(s.boundaryValues, values); err != nil {
				return fmt.Errorf("writing boundary values: %w", err)
			}
		}
		if err := s.boundaryKernel.SetArgs(int32(s.boundaryCount), int32(0),
			s.boundaryCells, s.boundaryModes, s.boundaryOffsets, s.boundaryValues, s.pBuf); err != nil {
			return fmt.Errorf("setting boundary kernel arguments: %w", err)
		}
	}

	var probe []int32
	for _, o := range f.outputs {
		for _, c := range o.region.cells {
			probe = append(probe, int32(f.index(c)))
		}
	}
	releaseBuffer(&s.outputCells)
	releaseBuffer(&s.samplesBuf)
	s.outputCount = len(probe)
	if s.outputCount > 0 {
		var err error
		if s.outputCells, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, s.outputCount*int(unsafe.Sizeof(int32(0)))); err != nil {
			return fmt.Errorf("allocating probe buffer: %w", err)
		}
		samples := s.outputCount * f.cfg.TimeSamples * int(unsafe.Sizeof(float32(0)))
		if s.samplesBuf, err = s.context.CreateEmptyBuffer(cl.MemReadWrite, samples); err != nil {
			return fmt.Errorf("allocating sample buffer: %w", err)
		}
		if err := s.writeInts(s.outputCells, probe); err != nil {
			return fmt.Errorf("writing probe cells: %w", err)
		}
		if err := s.recordKernel.SetArgs(int32(s.outputCount), int32(0), s.outputCells, s.pBuf, s.samplesBuf); err != nil {
			return fmt.Errorf("setting record kernel arguments: %w", err)
		}
	}
	s.gen = f.gen
	s.synced = true
	return nil
}

func (s *openCLStepper) advance(f *Field, n int) error {
	if !s.synced || s.gen != f.gen {
		if err := s.syncRegistrations(f); err != nil {
			return err
		}
	}
	if s.stateDirty {
		for _, u := range []struct {
			buf *cl.MemObject
			src []float64
		}{{s.pBuf, f.pressure}, {s.vxBuf, f.vx}, {s.vyBuf, f.vy}} {
			if err := s.writeFloats(u.buf, u.src); err != nil {
				return fmt.Errorf("writing field state: %w", err)
			}
		}
		s.stateDirty = false
	}

	global := []int{s.size}
	start := f.step
	for i := 0; i < n && !f.Done(); i++ {
		if _, err := s.queue.EnqueueNDRangeKernel(s.velocityKernel, nil, global, nil, nil); err != nil {
			return fmt.Errorf("enqueueing velocity kernel: %w", err)
		}
		if _, err := s.queue.EnqueueNDRangeKernel(s.divergenceKernel, nil, global, nil, nil); err != nil {
			return fmt.Errorf("enqueueing divergence kernel: %w", err)
		}
		if f.viscous {
			if _, err := s.queue.EnqueueNDRangeKernel(s.viscousKernel, nil, global, nil, nil); err != nil {
				return fmt.Errorf("enqueueing viscous kernel: %w", err)
			}
			if _, err := s.queue.EnqueueNDRangeKernel(s.divergenceKernel, nil, global, nil, nil); err != nil {
				return fmt.Errorf("enqueueing divergence kernel: %w", err)
			}
		}
		if _, err := s.queue.EnqueueNDRangeKernel(s.pressureKernel, nil, global, nil, nil); err != nil {
			return fmt.Errorf("enqueueing pressure kernel: %w", err)
		}
		if s.boundaryCount > 0 {
			if err := s.boundaryKernel.SetArgInt32(1, int32(f.step)); err != nil {
				return fmt.Errorf("setting boundary step: %w", err)
			}
			if _, err := s.queue.EnqueueNDRangeKernel(s.boundaryKernel, nil, []int{1}, nil, nil); err != nil {
				return fmt.Errorf("applying boundaries: %w", err)
			}
		}
		if s.outputCount > 0 {
			if err := s.recordKernel.SetArgInt32(1, int32(f.step)); err != nil {
				return fmt.Errorf("setting record step: %w", err)
			}
			if _, err := s.queue.EnqueueNDRangeKernel(s.recordKernel, nil, []int{s.outputCount}, nil, nil); err != nil {
				return fmt.Errorf("recording outputs: %w", err)
			}
		}
		f.step++
	}

	for _, r := range []struct {
		buf *cl.MemObject
		dst []float64
	}{{s.pBuf, f.pressure}, {s.vxBuf, f.vx}, {s.vyBuf, f.vy}} {
		if err := s.readFloats(r.buf, r.dst); err != nil {
			return fmt.Errorf("reading field state: %w", err)
		}
	}
	return s.collect(f, start, f.step)
}

// collect copies probe samples for steps [from, to) into the outputs.
func (s *openCLStepper) collect(f *Field, from, to int) error {
	if s.outputCount == 0 || to <= from {
		return nil
	}
	all := make([]float32, s.outputCount*f.cfg.TimeSamples)
	if _, err := s.queue.EnqueueReadBufferFloat32(s.samplesBuf, true, 0, all, nil); err != nil {
		return fmt.Errorf("reading probe samples: %w", err)
	}
	for n := from; n < to; n++ {
		row := all[n*s.outputCount : (n+1)*s.outputCount]
		k := 0
		for _, o := range f.outputs {
			// Record visits cells in region order, matching the upload order.
			o.Record(n, func(Cell) float64 {
				v := row[k]
				k++
				return float64(v)
			})
		}
	}
	return nil
}

func (s *openCLStepper) reset() {
	s.stateDirty = true
}

func (s *openCLStepper) close() {
	for _, b := range []**cl.MemObject{
		&s.pBuf, &s.vxBuf, &s.vyBuf, &s.divBuf,
		&s.axBuf, &s.ayBuf, &s.cxBuf, &s.cyBuf, &s.kpBuf,
		&s.boundaryCells, &s.boundaryModes, &s.boundaryOffsets, &s.boundaryValues,
		&s.outputCells, &s.samplesBuf,
	} {
		releaseBuffer(b)
	}
	for _, k := range []**cl.Kernel{
		&s.velocityKernel, &s.divergenceKernel, &s.viscousKernel,
		&s.pressureKernel, &s.boundaryKernel, &s.recordKernel,
	} {
		if *k != nil {
			(*k).Release()
			*k = nil
		}
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}
