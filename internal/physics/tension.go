package physics

import (
	"github.com/san-kum/dropsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// SurfaceTension adds -σ κ |g| n V/m to the prior acceleration of every
// surface particle with a normal.
func (p *Phase) SurfaceTension() {
	f := p.Fluid
	sigma := p.Params.SurfaceTension
	if sigma == 0 {
		return
	}
	dynamo.Each(f.Len(), func(i int) {
		if !f.HasNormal[i] {
			return
		}
		mag := sigma * f.Curvature[i] * r2.Norm(f.ColorGrad[i]) * f.Vol[i] / f.Mass[i]
		f.AccPrior[i] = r2.Sub(f.AccPrior[i], r2.Scale(mag, f.Normal[i]))
	})
}
