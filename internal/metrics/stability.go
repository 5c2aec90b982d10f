package metrics

import (
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
)

// Stability is the fraction of steps on which no particle exceeded the
// speed threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(_ sim.Clock, phases []*physics.Phase) {
	s.samples++
	for _, p := range phases {
		if p.MaxSpeed() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// SubCycle is the mean number of acoustic sub-steps per outer step since
// the clock started.
type SubCycle struct {
	name  string
	inner int
	outer int
}

func NewSubCycle() *SubCycle {
	return &SubCycle{name: "substeps_per_step"}
}

func (s *SubCycle) Name() string { return s.name }

func (s *SubCycle) Observe(clock sim.Clock, _ []*physics.Phase) {
	s.inner, s.outer = clock.InnerSteps, clock.Iteration
}

func (s *SubCycle) Value() float64 {
	if s.outer == 0 {
		return 0
	}
	return float64(s.inner) / float64(s.outer)
}

func (s *SubCycle) Reset() {
	s.inner, s.outer = 0, 0
}
