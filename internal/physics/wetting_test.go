package physics_test

import (
	"math"

	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Wetting correction", func() {
	interior := geometry.NewRect(0, 0, 2, 1)
	block := geometry.NewRect(0.5, 0, 1, 0.3)

	DescribeTable("sets contact-line normals to the prescribed angle",
		func(degrees float64) {
			theta := degrees * math.Pi / 180
			p := newPhase(slab(block, r2.Vec{Y: -1}), physics.Params{ContactAngle: theta, SurfaceTension: 0.008}, tankWall(interior))
			geometryPass(p)

			before := append([]r2.Vec(nil), p.Fluid.Normal...)
			Expect(p.WettingCorrection()).To(BeNumerically(">", 0))

			angle, ok := p.ContactAngle()
			Expect(ok).To(BeTrue())
			Expect(angle).To(BeNumerically("~", theta, 1e-6))

			for i, pos := range p.Fluid.Pos {
				if pos.Y > 0.25 && pos.X > 0.6 && pos.X < 0.9 {
					Expect(p.Fluid.Normal[i]).To(Equal(before[i]), "far particle at %v", pos)
				}
			}
		},
		Entry("hydrophobic", 150.0),
		Entry("neutral", 90.0),
		Entry("hydrophilic", 30.0),
	)

	DescribeTable("reads the apparent angle from the droplet shape",
		func(degrees float64) {
			theta := degrees * math.Pi / 180
			p := newPhase(sessile(1, 0.4, theta), physics.Params{ContactAngle: math.Pi - theta, SurfaceTension: 0.008}, tankWall(interior))
			geometryPass(p)

			angle, ok := p.ApparentContactAngle()
			Expect(ok).To(BeTrue())
			Expect(angle * 180 / math.Pi).To(BeNumerically("~", degrees, 3))

			// imposing a different angle on the normals leaves the shape reading alone
			Expect(p.WettingCorrection()).To(BeNumerically(">", 0))
			after, _ := p.ApparentContactAngle()
			Expect(after).To(Equal(angle))
		},
		Entry("hydrophilic", 60.0),
		Entry("neutral", 90.0),
		Entry("hydrophobic", 120.0),
	)

	It("only touches particles that carry a normal", func() {
		p := newPhase(slab(block, r2.Vec{}), physics.Params{ContactAngle: 2.6}, tankWall(interior))
		geometryPass(p)
		p.WettingCorrection()
		for i := range p.Fluid.Pos {
			if !p.Fluid.HasNormal[i] {
				Expect(p.Fluid.Normal[i]).To(Equal(r2.Vec{}))
				Expect(p.Fluid.Curvature[i]).To(BeZero())
			}
		}
	})

	It("does nothing without walls", func() {
		p := newPhase(slab(block, r2.Vec{}), physics.Params{ContactAngle: 2.6})
		geometryPass(p)
		Expect(p.WettingCorrection()).To(BeZero())
		_, ok := p.ContactAngle()
		Expect(ok).To(BeFalse())
		_, ok = p.ApparentContactAngle()
		Expect(ok).To(BeFalse())
	})
})
