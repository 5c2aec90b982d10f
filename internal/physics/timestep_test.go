package physics_test

import (
	"math"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/kernel"
	"github.com/san-kum/dropsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Step bounds", func() {
	var p *physics.Phase
	h := kernel.SmoothingRatio * dp

	BeforeEach(func() {
		p = newPhase(slab(geometry.NewRect(0, 0, 0.5, 0.5), r2.Vec{}), physics.Params{MaxSpeed: 1})
	})

	It("uses the reference speed at rest", func() {
		Expect(p.MaxSpeed()).To(BeZero())
		Expect(p.AdvectionStep()).To(BeNumerically("~", 0.25*h, 1e-12))
		Expect(p.AcousticStep()).To(BeNumerically("~", 0.6*h/water.C0, 1e-12))
		Expect(p.AcousticStep()).To(BeNumerically("<", p.AdvectionStep()))
	})

	It("lets viscosity raise the reference speed", func() {
		p.Params.MaxSpeed = 0.1
		Expect(p.ReferenceSpeed()).To(BeNumerically("~", water.Mu/(water.Rho0*h), 1e-12))
	})

	It("shrinks both bounds as the flow speeds up", func() {
		adv, ac := p.AdvectionStep(), p.AcousticStep()
		for _, speed := range []float64{0.5, 2, 8} {
			p.Fluid.Vel[3] = r2.Vec{X: speed}
			Expect(p.AdvectionStep()).To(BeNumerically("<=", adv))
			Expect(p.AcousticStep()).To(BeNumerically("<", ac))
			adv, ac = p.AdvectionStep(), p.AcousticStep()
		}
		Expect(p.MaxSpeed()).To(Equal(8.0))
	})

	It("reports a broken state as a non-finite bound", func() {
		p.Fluid.Vel[0] = r2.Vec{X: math.NaN()}
		Expect(dynamo.Finite(p.AcousticStep())).To(BeFalse())
		Expect(dynamo.Finite(p.AdvectionStep())).To(BeFalse())
	})
})
