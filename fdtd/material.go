package fdtd

import "fmt"

// Material describes an acoustic medium.
type Material struct {
	SoundVelocity  float64 // m/s
	Density        float64 // kg/m³
	ShearViscosity float64 // Pa·s
	BulkViscosity  float64 // Pa·s
}

// Impedance returns the characteristic acoustic impedance ρ·c.
func (m Material) Impedance() float64 {
	return m.Density * m.SoundVelocity
}

// Validate rejects non-physical parameters.
func (m Material) Validate() error {
	if m.SoundVelocity <= 0 || m.Density <= 0 {
		return fmt.Errorf("%w: material needs positive velocity and density, got c=%g rho=%g",
			ErrInvalidConfig, m.SoundVelocity, m.Density)
	}
	if m.ShearViscosity < 0 || m.BulkViscosity < 0 {
		return fmt.Errorf("%w: negative viscosity", ErrInvalidConfig)
	}
	return nil
}

// bulkModulus is ρ·c².
func (m Material) bulkModulus() float64 {
	return m.Density * m.SoundVelocity * m.SoundVelocity
}

// viscosity is the combined longitudinal viscosity 4/3·η + ζ.
func (m Material) viscosity() float64 {
	return 4.0/3.0*m.ShearViscosity + m.BulkViscosity
}
