package sonar

import "errors"

var (
	// ErrUnknownScenario is returned for identifiers outside the supported set.
	ErrUnknownScenario = errors.New("sonar: unknown scenario")

	// ErrShapeMismatch is returned when positions and delays differ in length.
	ErrShapeMismatch = errors.New("sonar: positions and delays differ in length")

	// ErrNoAnimator is returned when a ping asks to be shown but the scenario
	// was built without an animator.
	ErrNoAnimator = errors.New("sonar: show requested without an animator")

	// ErrWrongScenario is returned when an operation is specific to another
	// scenario kind.
	ErrWrongScenario = errors.New("sonar: operation not supported by scenario")

	// ErrInvalidAperture is returned for negative transducer apertures.
	ErrInvalidAperture = errors.New("sonar: invalid aperture")
)
