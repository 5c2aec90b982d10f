package physics

import (
	"math"

	"github.com/san-kum/dropsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	advectionCFL = 0.25
	acousticCFL  = 0.6
)

// MaxSpeed is the largest particle speed, or 0 for an empty phase.
func (p *Phase) MaxSpeed() float64 {
	f := p.Fluid
	v := dynamo.MaxReduce(f.Len(), func(i int) float64 { return r2.Norm(f.Vel[i]) })
	if math.IsInf(v, -1) {
		return 0
	}
	return v
}

// ReferenceSpeed is max(U_max, mu/(rho0 h)); the viscous term keeps very slow
// viscous flows from taking huge outer steps.
func (p *Phase) ReferenceSpeed() float64 {
	m := p.Fluid.Material
	return math.Max(p.Params.MaxSpeed, m.Mu/(m.Rho0*p.Kernel.H))
}

// AdvectionStep is the outer step bound 0.25 h / max(vmax, U_ref).
// The result is not checked; the controller decides what is fatal.
func (p *Phase) AdvectionStep() float64 {
	return advectionCFL * p.Kernel.H / math.Max(p.MaxSpeed(), p.ReferenceSpeed())
}

// AcousticStep is the inner step bound 0.6 h / max(c + |v|).
func (p *Phase) AcousticStep() float64 {
	f := p.Fluid
	signal := dynamo.MaxReduce(f.Len(), func(i int) float64 {
		return f.Material.SoundSpeed(f.Rho[i]) + r2.Norm(f.Vel[i])
	})
	return acousticCFL * p.Kernel.H / signal
}
