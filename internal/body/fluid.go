package body

import (
	"fmt"

	"github.com/san-kum/dropsim/internal/material"
	"gonum.org/v1/gonum/spatial/r2"
)

// Fluid is one phase's particle set, stored as parallel field slices.
type Fluid struct {
	name     string
	phase    Phase
	Material material.WeaklyCompressible
	Gravity  r2.Vec

	Pos  []r2.Vec
	Vel  []r2.Vec
	Mass []float64
	Vol  []float64
	// Reference volume from the initial lattice; density summation uses it.
	Vol0 []float64

	Rho      []float64
	P        []float64
	DrhoDt   []float64
	AccPrior []r2.Vec
	Acc      []r2.Vec

	Color     []float64
	ColorGrad []r2.Vec
	Normal    []r2.Vec
	HasNormal []bool
	Curvature []float64
	Surface   []bool
}

// NewFluid creates a phase at rest at reference density. Every particle gets
// the reference volume vol.
func NewFluid(name string, phase Phase, mat material.WeaklyCompressible, gravity r2.Vec, pos []r2.Vec, vol float64) *Fluid {
	n := len(pos)
	f := &Fluid{
		name:      name,
		phase:     phase,
		Material:  mat,
		Gravity:   gravity,
		Pos:       append([]r2.Vec(nil), pos...),
		Vel:       make([]r2.Vec, n),
		Mass:      make([]float64, n),
		Vol:       make([]float64, n),
		Vol0:      make([]float64, n),
		Rho:       make([]float64, n),
		P:         make([]float64, n),
		DrhoDt:    make([]float64, n),
		AccPrior:  make([]r2.Vec, n),
		Acc:       make([]r2.Vec, n),
		Color:     make([]float64, n),
		ColorGrad: make([]r2.Vec, n),
		Normal:    make([]r2.Vec, n),
		HasNormal: make([]bool, n),
		Curvature: make([]float64, n),
		Surface:   make([]bool, n),
	}
	for i := 0; i < n; i++ {
		f.Vol[i] = vol
		f.Vol0[i] = vol
		f.Rho[i] = mat.Rho0
		f.Mass[i] = mat.Rho0 * vol
	}
	return f
}

func (f *Fluid) Name() string          { return f.name }
func (f *Fluid) Phase() Phase          { return f.phase }
func (f *Fluid) Len() int              { return len(f.Pos) }
func (f *Fluid) Position(i int) r2.Vec { return f.Pos[i] }
func (f *Fluid) Velocity(i int) r2.Vec { return f.Vel[i] }
func (f *Fluid) Volume(i int) float64  { return f.Vol[i] }

// TotalMass sums particle masses.
func (f *Fluid) TotalMass() float64 {
	m := 0.0
	for _, v := range f.Mass {
		m += v
	}
	return m
}

// ClearInterface drops last step's surface geometry so it is never reused.
func (f *Fluid) ClearInterface(i int) {
	f.Surface[i] = false
	f.HasNormal[i] = false
	f.ColorGrad[i] = r2.Vec{}
	f.Normal[i] = r2.Vec{}
	f.Curvature[i] = 0
}

// Check verifies that all field slices have the particle count.
func (f *Fluid) Check() error {
	n := len(f.Pos)
	lens := map[string]int{
		"vel": len(f.Vel), "mass": len(f.Mass), "vol": len(f.Vol), "vol0": len(f.Vol0),
		"rho": len(f.Rho), "p": len(f.P), "drho_dt": len(f.DrhoDt),
		"acc_prior": len(f.AccPrior), "acc": len(f.Acc), "color": len(f.Color),
		"color_grad": len(f.ColorGrad), "normal": len(f.Normal), "has_normal": len(f.HasNormal),
		"curvature": len(f.Curvature), "surface": len(f.Surface),
	}
	for field, l := range lens {
		if l != n {
			return fmt.Errorf("fluid %s: field %s has %d entries, want %d", f.name, field, l, n)
		}
	}
	return nil
}
