package physics_test

import (
	"math"

	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Interface geometry", func() {
	Context("on a flat free surface", func() {
		var p *physics.Phase

		BeforeEach(func() {
			p = newPhase(slab(geometry.NewRect(0, 0, 4, 0.5), r2.Vec{}), physics.Params{SurfaceTension: 1})
			geometryPass(p)
		})

		It("keeps every particle at reference density", func() {
			for i, rho := range p.Fluid.Rho {
				Expect(rho).To(BeNumerically("~", water.Rho0, 1e-9), "particle %d", i)
				Expect(p.Fluid.P[i]).To(BeNumerically("~", 0, 1e-6))
			}
		})

		It("flags only the outer row", func() {
			for i, pos := range p.Fluid.Pos {
				if pos.X < 0.5 || pos.X > 3.5 || pos.Y < 0.1 {
					continue
				}
				onTop := pos.Y > 0.45
				Expect(p.Fluid.Surface[i]).To(Equal(onTop), "particle at %v", pos)
			}
		})

		It("gives an upward normal and zero curvature away from the edges", func() {
			checked := 0
			for i, pos := range p.Fluid.Pos {
				if pos.Y < 0.45 || pos.X < 1 || pos.X > 3 {
					continue
				}
				checked++
				Expect(p.Fluid.HasNormal[i]).To(BeTrue())
				Expect(p.Fluid.Normal[i].X).To(BeNumerically("~", 0, 1e-9))
				Expect(p.Fluid.Normal[i].Y).To(BeNumerically("~", 1, 1e-9))
				Expect(p.Fluid.Curvature[i]).To(BeNumerically("~", 0, 1e-6))
			}
			Expect(checked).To(Equal(40))
		})

		It("produces no tension on the flat part", func() {
			p.SurfaceTension()
			for i, pos := range p.Fluid.Pos {
				if pos.X < 1 || pos.X > 3 {
					continue
				}
				Expect(r2.Norm(p.Fluid.AccPrior[i])).To(BeNumerically("<", 1e-5), "particle at %v", pos)
			}
		})

		It("leaves interior particles without geometry", func() {
			for i, pos := range p.Fluid.Pos {
				if pos.Y < 0.15 || pos.Y > 0.35 || pos.X < 0.5 || pos.X > 3.5 {
					continue
				}
				Expect(p.Fluid.Surface[i]).To(BeFalse())
				Expect(p.Fluid.HasNormal[i]).To(BeFalse())
				Expect(p.Fluid.Normal[i]).To(Equal(r2.Vec{}))
				Expect(p.Fluid.Curvature[i]).To(BeZero())
			}
		})

		It("clears stale geometry at the next step", func() {
			p.InitializeStep()
			for i := range p.Fluid.Pos {
				Expect(p.Fluid.Surface[i]).To(BeFalse())
				Expect(p.Fluid.HasNormal[i]).To(BeFalse())
				Expect(p.Fluid.Curvature[i]).To(BeZero())
			}
		})
	})

	Context("on a circular droplet", func() {
		const radius = 0.3
		var p *physics.Phase

		BeforeEach(func() {
			p = newPhase(droplet(r2.Vec{}, radius), physics.Params{SurfaceTension: 1})
			geometryPass(p)
		})

		It("finds normals only near the rim, pointing outward", func() {
			count := 0
			for i, pos := range p.Fluid.Pos {
				if !p.Fluid.HasNormal[i] {
					continue
				}
				count++
				Expect(r2.Norm(pos)).To(BeNumerically(">", radius-3*dp))
				Expect(r2.Dot(p.Fluid.Normal[i], r2.Unit(pos))).To(BeNumerically(">", 0.7))
			}
			Expect(count).To(BeNumerically(">", 20))
		})

		It("has positive mean curvature close to 1/R", func() {
			sum, n := 0.0, 0
			for i := range p.Fluid.Pos {
				if p.Fluid.HasNormal[i] {
					sum += p.Fluid.Curvature[i]
					n++
				}
			}
			mean := sum / float64(n)
			Expect(mean).To(BeNumerically(">", 0.5/radius))
			Expect(mean).To(BeNumerically("<", 2/radius))
		})

		It("pulls the rim inward", func() {
			p.SurfaceTension()
			radial := 0.0
			for i, pos := range p.Fluid.Pos {
				radial += r2.Dot(p.Fluid.AccPrior[i], pos)
				if !p.Fluid.HasNormal[i] {
					Expect(p.Fluid.AccPrior[i]).To(Equal(r2.Vec{}))
				}
			}
			Expect(radial).To(BeNumerically("<", 0))
		})

		It("is symmetric under the droplet's mirror", func() {
			index := make(map[[2]int64]int, p.Fluid.Len())
			key := func(v r2.Vec) [2]int64 {
				return [2]int64{int64(math.Round(v.X / dp * 2)), int64(math.Round(v.Y / dp * 2))}
			}
			for i, pos := range p.Fluid.Pos {
				index[key(pos)] = i
			}
			for i, pos := range p.Fluid.Pos {
				j, ok := index[key(r2.Vec{X: pos.X, Y: -pos.Y})]
				Expect(ok).To(BeTrue())
				Expect(p.Fluid.Curvature[j]).To(BeNumerically("~", p.Fluid.Curvature[i], 1e-9))
				Expect(p.Fluid.HasNormal[j]).To(Equal(p.Fluid.HasNormal[i]))
			}
		})
	})
})
