package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dropsim/internal/material"
	"github.com/san-kum/dropsim/internal/metrics"
	"github.com/san-kum/dropsim/internal/sim"
)

// Registry maps configuration names to solver and metric constructors.
type Registry struct {
	solvers map[string]func() material.RiemannSolver
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		solvers: make(map[string]func() material.RiemannSolver),
		metrics: make(map[string]func() sim.Metric),
	}

	r.solvers["acoustic"] = func() material.RiemannSolver { return material.Acoustic{} }
	r.solvers["none"] = func() material.RiemannSolver { return material.Averaged{} }

	r.metrics["kinetic_energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["mass_drift"] = func() sim.Metric { return metrics.NewMassDrift() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(10.0) }
	r.metrics["substeps_per_step"] = func() sim.Metric { return metrics.NewSubCycle() }

	return r
}

func (r *Registry) GetSolver(name string) (material.RiemannSolver, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown riemann solver: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListSolvers() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns one fresh instance of every registered metric, in
// name order.
func (r *Registry) DefaultMetrics() []sim.Metric {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]sim.Metric, len(names))
	for i, name := range names {
		out[i] = r.metrics[name]()
	}
	return out
}
