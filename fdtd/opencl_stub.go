//go:build !opencl

package fdtd

import "errors"

type openCLStepper struct{}

func newOpenCLStepper(*Field) (*openCLStepper, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *openCLStepper) advance(*Field, int) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *openCLStepper) reset() {}

func (s *openCLStepper) close() {}
