// Package material describes the weakly-compressible liquid and the Riemann
// solvers used to couple particle pairs.
package material

// WeaklyCompressible is a liquid with a linear equation of state
// p = c0² (rho - rho0).
type WeaklyCompressible struct {
	Rho0 float64 `yaml:"rho0" json:"rho0"`
	C0   float64 `yaml:"sound_speed" json:"sound_speed"`
	Mu   float64 `yaml:"viscosity" json:"viscosity"`
}

func NewWeaklyCompressible(rho0, c0, mu float64) WeaklyCompressible {
	return WeaklyCompressible{Rho0: rho0, C0: c0, Mu: mu}
}

func (m WeaklyCompressible) Pressure(rho float64) float64 {
	return m.C0 * m.C0 * (rho - m.Rho0)
}

func (m WeaklyCompressible) DensityFromPressure(p float64) float64 {
	return p/(m.C0*m.C0) + m.Rho0
}

// SoundSpeed is constant for the linear equation of state.
func (m WeaklyCompressible) SoundSpeed(float64) float64 {
	return m.C0
}

// KinematicViscosity is mu / rho0.
func (m WeaklyCompressible) KinematicViscosity() float64 {
	return m.Mu / m.Rho0
}
