package physics_test

import (
	"math/rand"

	"github.com/san-kum/dropsim/internal/body"
	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func momentum(f *body.Fluid) r2.Vec {
	m := r2.Vec{}
	for i := range f.Vel {
		m = r2.Add(m, r2.Scale(f.Mass[i], f.Vel[i]))
	}
	return m
}

var _ = Describe("Acoustic relaxation", func() {
	It("keeps a weightless block at rest", func() {
		p := newPhase(slab(geometry.NewRect(0, 0, 1, 0.5), r2.Vec{}), physics.Params{})
		geometryPass(p)
		dt := p.AcousticStep()
		for k := 0; k < 5; k++ {
			physics.RelaxPressure(dt, p)
			physics.RelaxDensity(dt, p)
		}
		for i := range p.Fluid.Vel {
			Expect(r2.Norm(p.Fluid.Vel[i])).To(BeNumerically("<", 1e-9))
		}
	})

	It("conserves momentum of an isolated liquid", func() {
		f := droplet(r2.Vec{}, 0.3)
		rng := rand.New(rand.NewSource(7))
		for i := range f.Vel {
			f.Vel[i] = r2.Vec{X: 0.2 * (rng.Float64() - 0.5), Y: 0.2 * (rng.Float64() - 0.5)}
		}
		p := newPhase(f, physics.Params{})
		geometryPass(p)
		before := momentum(f)

		dt := p.AcousticStep()
		physics.RelaxPressure(dt, p)
		physics.RelaxDensity(dt, p)

		after := momentum(f)
		Expect(after.X).To(BeNumerically("~", before.X, 1e-12))
		Expect(after.Y).To(BeNumerically("~", before.Y, 1e-12))
	})

	It("pushes the bottom row back against gravity", func() {
		interior := geometry.NewRect(0, 0, 1, 1)
		p := newPhase(slab(geometry.NewRect(0, 0, 1, 0.3), r2.Vec{Y: -1}), physics.Params{}, tankWall(interior))
		geometryPass(p)
		dt := p.AcousticStep()
		physics.RelaxPressure(dt, p)

		// the bottom row is pushed up by the wall's mirrored pressure
		for i, pos := range p.Fluid.Pos {
			if pos.Y < dp && pos.X > 0.2 && pos.X < 0.8 {
				Expect(p.Fluid.Acc[i].Y).To(BeNumerically(">", -1))
			}
		}
	})

	It("compresses approaching particles", func() {
		f := slab(geometry.NewRect(0, 0, 1, 1), r2.Vec{})
		for i, pos := range f.Pos {
			f.Vel[i] = r2.Vec{X: 0.5 - pos.X}
		}
		p := newPhase(f, physics.Params{})
		geometryPass(p)
		dt := p.AcousticStep()
		physics.RelaxPressure(dt, p)
		physics.RelaxDensity(dt, p)

		centre := -1
		for i, pos := range f.Pos {
			if r2.Norm(r2.Sub(pos, r2.Vec{X: 0.5, Y: 0.5})) < dp {
				centre = i
				break
			}
		}
		Expect(centre).NotTo(Equal(-1))
		Expect(f.DrhoDt[centre]).To(BeNumerically(">", 0))
		Expect(f.Rho[centre]).To(BeNumerically(">", water.Rho0))
	})
})
