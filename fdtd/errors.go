package fdtd

import "errors"

var (
	// ErrInvalidConfig is returned for non-positive steps, sample counts or
	// malformed registrations.
	ErrInvalidConfig = errors.New("fdtd: invalid configuration")

	// ErrUnstable is returned when the time step violates the CFL bound for
	// the fastest material in the field.
	ErrUnstable = errors.New("fdtd: time step violates stability bound")

	// ErrOutOfBounds is returned when a physical coordinate maps outside the grid.
	ErrOutOfBounds = errors.New("fdtd: position outside grid")

	// ErrOffGrid is returned when a coordinate is farther than the snap radius
	// from the nearest grid sample.
	ErrOffGrid = errors.New("fdtd: position not within snap radius of a grid sample")

	// ErrBackendUnavailable is returned when the requested stepping backend
	// cannot be initialized.
	ErrBackendUnavailable = errors.New("fdtd: backend unavailable")
)
