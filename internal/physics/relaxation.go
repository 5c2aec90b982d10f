package physics

import (
	"github.com/san-kum/dropsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// RelaxPressure is the first half of a position-Verlet acoustic step over all
// phases: half-step density and position, Riemann pressure force, full-step
// velocity. Every phase finishes a stage before any phase starts the next, so
// the result does not depend on the order of phases.
func RelaxPressure(dt float64, phases ...*Phase) {
	for _, p := range phases {
		p.initPressure(dt)
	}
	for _, p := range phases {
		p.pressureForce()
	}
	for _, p := range phases {
		p.updateVelocity(dt)
	}
}

// RelaxDensity is the second half: half-step position, Riemann continuity
// equation, half-step density.
func RelaxDensity(dt float64, phases ...*Phase) {
	for _, p := range phases {
		p.advance(dt / 2)
	}
	for _, p := range phases {
		p.densityRate()
	}
	for _, p := range phases {
		p.updateDensity(dt)
	}
}

func (p *Phase) initPressure(dt float64) {
	f := p.Fluid
	half := 0.5 * dt
	dynamo.Each(f.Len(), func(i int) {
		f.Rho[i] += f.DrhoDt[i] * half
		f.Vol[i] = f.Mass[i] / f.Rho[i]
		f.P[i] = f.Material.Pressure(f.Rho[i])
		f.Pos[i] = r2.Add(f.Pos[i], r2.Scale(half, f.Vel[i]))
	})
}

func (p *Phase) pressureForce() {
	f := p.Fluid
	solver := p.Riemann
	dynamo.Each(f.Len(), func(i int) {
		si := p.state(i)
		sum := r2.Vec{}
		for _, n := range p.Relation.Inner[i] {
			ps := solver.PStar(si, p.state(n.J), n.E)
			sum = r2.Add(sum, r2.Scale(2*ps*f.Vol[n.J]*n.DW, n.E))
		}
		for _, c := range p.fluids {
			for _, n := range c.lists[i] {
				ps := solver.PStar(si, fluidState(c.fluid, n.J), n.E)
				sum = r2.Add(sum, r2.Scale(2*ps*c.fluid.Vol[n.J]*n.DW, n.E))
			}
		}
		for _, c := range p.walls {
			for _, n := range c.lists[i] {
				ps := solver.PStar(si, p.wallState(i, n), c.wall.Normal[n.J])
				sum = r2.Add(sum, r2.Scale(2*ps*c.wall.Vol[n.J]*n.DW, n.E))
			}
		}
		f.Acc[i] = r2.Sub(f.AccPrior[i], r2.Scale(1/f.Rho[i], sum))
	})
}

func (p *Phase) updateVelocity(dt float64) {
	f := p.Fluid
	dynamo.Each(f.Len(), func(i int) {
		f.Vel[i] = r2.Add(f.Vel[i], r2.Scale(dt, f.Acc[i]))
	})
}

func (p *Phase) advance(dt float64) {
	f := p.Fluid
	dynamo.Each(f.Len(), func(i int) {
		f.Pos[i] = r2.Add(f.Pos[i], r2.Scale(dt, f.Vel[i]))
	})
}

func (p *Phase) densityRate() {
	f := p.Fluid
	solver := p.Riemann
	dynamo.Each(f.Len(), func(i int) {
		si := p.state(i)
		vi := f.Vel[i]
		rate := 0.0
		for _, n := range p.Relation.Inner[i] {
			vs := solver.VStar(si, p.state(n.J), n.E)
			rate += f.Vol[n.J] * r2.Dot(r2.Sub(vi, vs), n.E) * n.DW
		}
		for _, c := range p.fluids {
			for _, n := range c.lists[i] {
				vs := solver.VStar(si, fluidState(c.fluid, n.J), n.E)
				rate += c.fluid.Vol[n.J] * r2.Dot(r2.Sub(vi, vs), n.E) * n.DW
			}
		}
		for _, c := range p.walls {
			for _, n := range c.lists[i] {
				vs := solver.VStar(si, p.wallState(i, n), c.wall.Normal[n.J])
				rate += c.wall.Vol[n.J] * r2.Dot(r2.Sub(vi, vs), n.E) * n.DW
			}
		}
		f.DrhoDt[i] = 2 * f.Rho[i] * rate
	})
}

func (p *Phase) updateDensity(dt float64) {
	f := p.Fluid
	half := 0.5 * dt
	dynamo.Each(f.Len(), func(i int) {
		f.Rho[i] += f.DrhoDt[i] * half
	})
}
