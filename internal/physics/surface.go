package physics

import (
	"github.com/san-kum/dropsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// DetectSurface computes the normalised colour value of every particle and
// flags those below the surface threshold. Walls count as liquid, the other
// phase as empty, so both the free surface and the liquid-liquid interface
// are flagged.
func (p *Phase) DetectSurface() {
	f := p.Fluid
	w0 := p.Kernel.W0()
	dynamo.Each(f.Len(), func(i int) {
		sum := f.Vol0[i] * w0
		for _, n := range p.Relation.Inner[i] {
			sum += f.Vol0[n.J] * n.W
		}
		for _, c := range p.walls {
			for _, n := range c.lists[i] {
				sum += c.wall.Vol[n.J] * n.W
			}
		}
		f.Color[i] = sum / p.sigma0
		f.Surface[i] = f.Color[i] < p.Params.SurfaceThreshold
	})
}

// ColorGradient evaluates the raw gradient of the colour indicator and, for
// surface particles where it rises above the noise floor, the outward normal.
func (p *Phase) ColorGradient() {
	f := p.Fluid
	h := p.Kernel.H
	dynamo.Each(f.Len(), func(i int) {
		g := r2.Vec{}
		for _, n := range p.Relation.Inner[i] {
			g = r2.Add(g, r2.Scale(f.Vol0[n.J]*n.DW, n.E))
		}
		for _, c := range p.walls {
			for _, n := range c.lists[i] {
				g = r2.Add(g, r2.Scale(c.wall.Vol[n.J]*n.DW, n.E))
			}
		}
		// the other phase has zero colour and adds nothing
		f.ColorGrad[i] = g

		mag := r2.Norm(g)
		if f.Surface[i] && mag*h > p.Params.NoiseFloor {
			f.Normal[i] = r2.Scale(-1/mag, g)
			f.HasNormal[i] = true
		}
	})
}

// RefineNormals smooths the gradient over neighbouring surface particles,
// renormalises the normal and derives curvature from it.
func (p *Phase) RefineNormals() {
	f := p.Fluid
	h := p.Kernel.H
	w0 := p.Kernel.W0()

	dynamo.Each(f.Len(), func(i int) {
		if !f.HasNormal[i] {
			p.smooth[i] = r2.Vec{}
			return
		}
		weight := w0 * f.Vol0[i]
		sum := r2.Scale(weight, f.ColorGrad[i])
		for _, n := range p.Relation.Inner[i] {
			if !f.HasNormal[n.J] {
				continue
			}
			w := n.W * f.Vol0[n.J]
			sum = r2.Add(sum, r2.Scale(w, f.ColorGrad[n.J]))
			weight += w
		}
		p.smooth[i] = r2.Scale(1/weight, sum)
	})

	dynamo.Each(f.Len(), func(i int) {
		if !f.HasNormal[i] {
			return
		}
		g := p.smooth[i]
		mag := r2.Norm(g)
		if mag*h <= p.Params.NoiseFloor {
			f.HasNormal[i] = false
			f.Normal[i] = r2.Vec{}
			return
		}
		f.ColorGrad[i] = g
		f.Normal[i] = r2.Scale(-1/mag, g)
	})

	p.curvature()
}

// curvature is the divergence of the normal field. For a unit normal in
// two dimensions only the tangential derivative survives, so both the
// normal and the position differences are projected on the tangent; the
// position term normalises the sum whatever the band width of surface
// neighbours.
func (p *Phase) curvature() {
	f := p.Fluid
	dynamo.Each(f.Len(), func(i int) {
		if !f.HasNormal[i] {
			f.Curvature[i] = 0
			return
		}
		ni := f.Normal[i]
		t := r2.Vec{X: -ni.Y, Y: ni.X}
		div, pos := 0.0, 0.0
		for _, n := range p.Relation.Inner[i] {
			if !f.HasNormal[n.J] {
				continue
			}
			vdw := f.Vol0[n.J] * n.DW
			et := r2.Dot(n.E, t)
			div += vdw * r2.Dot(r2.Sub(f.Normal[n.J], ni), t) * et
			pos -= vdw * n.R * et * et
		}
		if pos <= 0 {
			f.Curvature[i] = 0
			return
		}
		f.Curvature[i] = div / pos
	})
}
