package metrics

import (
	"math"

	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
)

// Energy is the mean total kinetic energy over the observed steps.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(_ sim.Clock, phases []*physics.Phase) {
	for _, p := range phases {
		e.totalEnergy += KineticEnergy(p)
	}
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// MassDrift is the largest relative change of any phase's mass from its
// first observation. Particles carry fixed mass, so anything above round-off
// means a particle was lost or corrupted.
type MassDrift struct {
	name     string
	initial  map[string]float64
	maxDrift float64
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift", initial: make(map[string]float64)}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(_ sim.Clock, phases []*physics.Phase) {
	for _, p := range phases {
		mass := p.Fluid.TotalMass()
		m0, ok := m.initial[p.Name()]
		if !ok {
			m.initial[p.Name()] = mass
			continue
		}
		if m0 != 0 {
			m.maxDrift = math.Max(m.maxDrift, math.Abs(mass-m0)/math.Abs(m0))
		}
	}
}

func (m *MassDrift) Value() float64 {
	return m.maxDrift
}

func (m *MassDrift) Reset() {
	m.initial = make(map[string]float64)
	m.maxDrift = 0
}
