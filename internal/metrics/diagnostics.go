// Package metrics measures per-phase diagnostics and run-level metrics for
// the controller.
package metrics

import (
	"math"

	"github.com/san-kum/dropsim/internal/physics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// PhaseDiagnostics is a snapshot summary of one phase. ContactAngle is the
// apparent angle of the droplet's shape and is NaN when the phase does not
// touch a wall.
type PhaseDiagnostics struct {
	Phase        string
	Particles    int
	Mass         float64
	Kinetic      float64
	Centroid     r2.Vec
	MaxSpeed     float64
	Surface      int
	ContactAngle float64 // radians
}

// Measure summarises the current state of p.
func Measure(p *physics.Phase) PhaseDiagnostics {
	f := p.Fluid
	n := f.Len()
	d := PhaseDiagnostics{
		Phase:        p.Name(),
		Particles:    n,
		ContactAngle: math.NaN(),
	}
	if n == 0 {
		return d
	}

	xs, ys, v2 := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i], ys[i] = f.Pos[i].X, f.Pos[i].Y
		v2[i] = r2.Norm2(f.Vel[i])
		if f.Surface[i] {
			d.Surface++
		}
	}

	d.Mass = floats.Sum(f.Mass)
	d.Kinetic = KineticEnergy(p)
	d.Centroid = r2.Vec{X: floats.Dot(f.Mass, xs) / d.Mass, Y: floats.Dot(f.Mass, ys) / d.Mass}
	d.MaxSpeed = math.Sqrt(floats.Max(v2))
	if angle, ok := p.ApparentContactAngle(); ok {
		d.ContactAngle = angle
	}
	return d
}

// KineticEnergy is the phase's total kinetic energy.
func KineticEnergy(p *physics.Phase) float64 {
	f := p.Fluid
	e := 0.0
	for i, v := range f.Vel {
		e += f.Mass[i] * r2.Norm2(v)
	}
	return 0.5 * e
}

// MeasureAll measures every phase in order.
func MeasureAll(phases []*physics.Phase) []PhaseDiagnostics {
	out := make([]PhaseDiagnostics, len(phases))
	for i, p := range phases {
		out[i] = Measure(p)
	}
	return out
}
