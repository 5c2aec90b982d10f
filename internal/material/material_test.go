package material

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestEquationOfStateRoundTrip(t *testing.T) {
	m := NewWeaklyCompressible(1.0, 10.0, 0.05)
	if p := m.Pressure(1.0); p != 0 {
		t.Errorf("pressure at reference density = %v, want 0", p)
	}
	for _, rho := range []float64{0.98, 1.0, 1.013} {
		if got := m.DensityFromPressure(m.Pressure(rho)); math.Abs(got-rho) > 1e-12 {
			t.Errorf("density round trip %v -> %v", rho, got)
		}
	}
	if got := m.KinematicViscosity(); got != 0.05 {
		t.Errorf("kinematic viscosity = %v", got)
	}
}

func TestAcousticSolverAtRest(t *testing.T) {
	s := Acoustic{}
	e := r2.Vec{X: 1}
	l := State{Rho: 1, P: 2, C: 10}
	r := State{Rho: 1, P: 4, C: 10}

	if got := s.PStar(l, r, e); math.Abs(got-3) > 1e-12 {
		t.Errorf("PStar = %v, want mean pressure 3", got)
	}
	v := s.VStar(l, r, e)
	// Higher pressure on the right pushes the interface towards +e.
	if v.X <= 0 || math.Abs(v.Y) > 1e-15 {
		t.Errorf("VStar = %+v, want positive x component only", v)
	}
}

func TestAcousticSolverCompression(t *testing.T) {
	s := Acoustic{}
	e := r2.Vec{X: 1} // right state sits at -x
	approaching := State{Rho: 1, C: 10, Vel: r2.Vec{X: -0.5}}
	rest := State{Rho: 1, C: 10}
	separating := State{Rho: 1, C: 10, Vel: r2.Vec{X: 0.5}}

	if p := s.PStar(approaching, rest, e); p <= 0 {
		t.Errorf("approaching pair must gain pressure, got %v", p)
	}
	if p := s.PStar(separating, rest, e); p != 0 {
		t.Errorf("separating pair must not be dissipated, got %v", p)
	}
}

func TestAveragedSolver(t *testing.T) {
	s := Averaged{}
	l := State{P: 1, Vel: r2.Vec{X: 1}}
	r := State{P: 3, Vel: r2.Vec{Y: 1}}
	if got := s.PStar(l, r, r2.Vec{X: 1}); got != 2 {
		t.Errorf("PStar = %v", got)
	}
	if got := s.VStar(l, r, r2.Vec{X: 1}); got != (r2.Vec{X: 0.5, Y: 0.5}) {
		t.Errorf("VStar = %+v", got)
	}
}
