package physics

import (
	"math"

	"github.com/san-kum/dropsim/internal/dynamo"
)

// SummateDensity recomputes density from the kernel sum over the phase itself
// and every contact body, then volume and pressure from it. The other phase
// contributes its reference volumes, so the result does not depend on which
// phase is summed first.
//
// Particles with an incomplete support (the free surface) would see their
// density drop; the deficit relative to the previous density is partly kept
// so they stay near reference density.
func (p *Phase) SummateDensity() {
	f := p.Fluid
	k := p.Kernel
	rho0 := f.Material.Rho0
	w0 := k.W0()

	dynamo.Each(f.Len(), func(i int) {
		sum := f.Vol0[i] * w0
		for _, n := range p.Relation.Inner[i] {
			sum += f.Vol0[n.J] * n.W
		}
		for _, c := range p.fluids {
			for _, n := range c.lists[i] {
				sum += c.fluid.Vol0[n.J] * n.W
			}
		}
		for _, c := range p.walls {
			for _, n := range c.lists[i] {
				sum += c.wall.Vol[n.J] * n.W
			}
		}
		rhoSum := rho0 * sum / p.sigma0
		prev := f.Rho[i]
		rho := rhoSum + math.Max(0, prev-rhoSum)*rho0/prev

		f.Rho[i] = rho
		f.Vol[i] = f.Mass[i] / rho
		f.P[i] = f.Material.Pressure(rho)
	})
}
