package material

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// State is one side of a particle-pair Riemann problem.
type State struct {
	Rho float64
	Vel r2.Vec
	P   float64
	C   float64
}

// RiemannSolver returns the interface pressure and velocity between two states
// along e, which points from the right state towards the left one.
type RiemannSolver interface {
	Name() string
	PStar(l, r State, e r2.Vec) float64
	VStar(l, r State, e r2.Vec) r2.Vec
}

// Acoustic is the linearised (acoustic) Riemann solver with a limiter on the
// dissipation so that separating pairs stay dissipation free.
type Acoustic struct{}

func (Acoustic) Name() string { return "acoustic" }

func (Acoustic) PStar(l, r State, e r2.Vec) float64 {
	ul := -r2.Dot(e, l.Vel)
	ur := -r2.Dot(e, r.Vel)
	zl, zr := l.Rho*l.C, r.Rho*r.C
	clr := (zl*l.C + zr*r.C) / (zl + zr)
	limiter := math.Min(3.0*math.Max((ul-ur)/clr, 0), 1)
	return (l.P*zr + r.P*zl + zl*zr*(ul-ur)*limiter) / (zl + zr)
}

func (Acoustic) VStar(l, r State, e r2.Vec) r2.Vec {
	ul := -r2.Dot(e, l.Vel)
	ur := -r2.Dot(e, r.Vel)
	zl, zr := l.Rho*l.C, r.Rho*r.C
	ustar := (zl*ul + zr*ur + l.P - r.P) / (zl + zr)
	avg := r2.Scale(0.5, r2.Add(l.Vel, r.Vel))
	return r2.Add(avg, r2.Scale(ustar-0.5*(ul+ur), r2.Scale(-1, e)))
}

// Averaged drops all dissipation: arithmetic mean pressure and velocity.
type Averaged struct{}

func (Averaged) Name() string { return "none" }

func (Averaged) PStar(l, r State, _ r2.Vec) float64 {
	return 0.5 * (l.P + r.P)
}

func (Averaged) VStar(l, r State, _ r2.Vec) r2.Vec {
	return r2.Scale(0.5, r2.Add(l.Vel, r.Vel))
}
