package physics

import (
	"github.com/san-kum/dropsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// ViscousAcceleration adds the pairwise viscous force to the prior
// acceleration. Across the liquid-liquid interface the harmonic mean of the
// two viscosities is used. Walls do not take part.
func (p *Phase) ViscousAcceleration() {
	f := p.Fluid
	mu := f.Material.Mu
	eps := 0.01 * p.Kernel.H

	mix := make([]float64, len(p.fluids))
	for k, c := range p.fluids {
		muj := c.fluid.Material.Mu
		if mu+muj > 0 {
			mix[k] = 2 * mu * muj / (mu + muj)
		}
	}

	dynamo.Each(f.Len(), func(i int) {
		acc := r2.Vec{}
		vi := f.Vel[i]
		for _, n := range p.Relation.Inner[i] {
			dv := r2.Sub(vi, f.Vel[n.J])
			acc = r2.Add(acc, r2.Scale(2*mu*f.Vol[n.J]*n.DW/(n.R+eps), dv))
		}
		for k, c := range p.fluids {
			o := c.fluid
			for _, n := range c.lists[i] {
				dv := r2.Sub(vi, o.Vel[n.J])
				acc = r2.Add(acc, r2.Scale(2*mix[k]*o.Vol[n.J]*n.DW/(n.R+eps), dv))
			}
		}
		f.AccPrior[i] = r2.Add(f.AccPrior[i], r2.Scale(1/f.Rho[i], acc))
	})
}
