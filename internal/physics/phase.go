package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dropsim/internal/body"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/kernel"
	"github.com/san-kum/dropsim/internal/material"
	"github.com/san-kum/dropsim/internal/neighbor"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// DefaultSurfaceThreshold is the normalised colour value below which a
	// particle is on the free surface.
	DefaultSurfaceThreshold = 0.95
	// DefaultNoiseFloor is the smallest |g|h that still yields a normal.
	DefaultNoiseFloor = 0.01
)

// Params are the per-phase physical and numerical constants.
type Params struct {
	Spacing          float64
	MaxSpeed         float64 // reference speed U_max of the case
	ContactAngle     float64 // radians, measured inside the liquid
	SurfaceTension   float64
	SurfaceThreshold float64
	NoiseFloor       float64
}

// Phase is one liquid together with everything needed to advance it.
type Phase struct {
	Fluid    *body.Fluid
	Relation *neighbor.Relation
	Kernel   *kernel.WendlandC2
	Riemann  material.RiemannSolver
	Params   Params

	sigma0 float64
	smooth []r2.Vec
	fluids []fluidContact
	walls  []wallContact
}

type fluidContact struct {
	fluid *body.Fluid
	lists [][]neighbor.Neighbor
}

type wallContact struct {
	wall  *body.Wall
	lists [][]neighbor.Neighbor
}

// NewPhase wires a fluid's relation to a solver. Zero thresholds fall back
// to the package defaults.
func NewPhase(rel *neighbor.Relation, solver material.RiemannSolver, params Params) (*Phase, error) {
	if rel == nil || rel.Fluid == nil {
		return nil, dynamo.ConfigError("phase", "missing relation")
	}
	if solver == nil {
		return nil, dynamo.ConfigError("riemann", "no solver for phase %s", rel.Fluid.Name())
	}
	if !dynamo.Finite(params.Spacing) {
		return nil, dynamo.ConfigError("spacing", "must be positive, got %g", params.Spacing)
	}
	if err := rel.Fluid.Check(); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if params.SurfaceThreshold == 0 {
		params.SurfaceThreshold = DefaultSurfaceThreshold
	}
	if params.NoiseFloor == 0 {
		params.NoiseFloor = DefaultNoiseFloor
	}
	p := &Phase{
		Fluid:    rel.Fluid,
		Relation: rel,
		Kernel:   rel.Kernel,
		Riemann:  solver,
		Params:   params,
		sigma0:   rel.Kernel.LatticeSum(params.Spacing),
		smooth:   make([]r2.Vec, rel.Fluid.Len()),
	}
	for _, c := range rel.Contacts {
		switch b := c.Body.(type) {
		case *body.Fluid:
			p.fluids = append(p.fluids, fluidContact{fluid: b, lists: c.Lists})
		case *body.Wall:
			p.walls = append(p.walls, wallContact{wall: b, lists: c.Lists})
		default:
			return nil, dynamo.ConfigError("contact", "unsupported body %s", c.Body.Name())
		}
	}
	return p, nil
}

// Name is the fluid body's name.
func (p *Phase) Name() string { return p.Fluid.Name() }

// ReferenceSum is the kernel sum of a fully immersed lattice particle.
func (p *Phase) ReferenceSum() float64 { return p.sigma0 }

// state packs particle i for the Riemann solver.
func (p *Phase) state(i int) material.State {
	f := p.Fluid
	return material.State{Rho: f.Rho[i], Vel: f.Vel[i], P: f.P[i], C: f.Material.SoundSpeed(f.Rho[i])}
}

// wallState mirrors particle i into a wall particle seen along e (from wall
// to fluid): reflected velocity and hydrostatically extrapolated pressure.
func (p *Phase) wallState(i int, n neighbor.Neighbor) material.State {
	f := p.Fluid
	face := r2.Dot(f.AccPrior[i], r2.Scale(-1, n.E))
	pw := f.P[i] + f.Rho[i]*n.R*math.Max(0, face)
	rw := f.Material.DensityFromPressure(pw)
	return material.State{Rho: rw, Vel: r2.Scale(-1, f.Vel[i]), P: pw, C: f.Material.SoundSpeed(rw)}
}

func fluidState(o *body.Fluid, j int) material.State {
	return material.State{Rho: o.Rho[j], Vel: o.Vel[j], P: o.P[j], C: o.Material.SoundSpeed(o.Rho[j])}
}

func unit(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}
