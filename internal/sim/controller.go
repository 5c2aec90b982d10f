package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/physics"
)

// forceStages run in order; each one finishes on every phase before the next
// starts, so no phase reads another's half-updated fields.
var forceStages = []func(*physics.Phase){
	(*physics.Phase).InitializeStep,
	(*physics.Phase).SummateDensity,
	(*physics.Phase).ViscousAcceleration,
	(*physics.Phase).DetectSurface,
	(*physics.Phase).ColorGradient,
	(*physics.Phase).RefineNormals,
	func(p *physics.Phase) { p.WettingCorrection() },
	(*physics.Phase).SurfaceTension,
}

// Controller advances all phases with a dual-rate scheme: an outer step
// limited by advection and viscosity, during which forces are frozen, and
// an acoustic sub-cycle that consumes exactly the outer step.
type Controller struct {
	phases []*physics.Phase
	cfg    Config
	clock  Clock

	logger    *log.Logger
	timer     *dynamo.StageTimer
	observers []Observer
	snapshots []SnapshotWriter
	restarts  []RestartWriter
	metrics   []Metric
	resumed   bool
}

func New(cfg Config, phases ...*physics.Phase) *Controller {
	return &Controller{
		phases: phases,
		cfg:    cfg,
		logger: log.Default(),
	}
}

func (c *Controller) SetLogger(l *log.Logger)            { c.logger = l }
func (c *Controller) SetTimer(t *dynamo.StageTimer)      { c.timer = t }
func (c *Controller) AddObserver(o Observer)             { c.observers = append(c.observers, o) }
func (c *Controller) AddSnapshotWriter(w SnapshotWriter) { c.snapshots = append(c.snapshots, w) }
func (c *Controller) AddRestartWriter(w RestartWriter)   { c.restarts = append(c.restarts, w) }
func (c *Controller) AddMetric(m Metric)                 { c.metrics = append(c.metrics, m) }

// Clock returns a copy of the current time state.
func (c *Controller) Clock() Clock { return c.clock }

// Phases returns the phases in stepping order.
func (c *Controller) Phases() []*physics.Phase { return c.phases }

// Resume continues from a restored clock. Particle fields must already hold
// the restored state; relations are rebuilt here.
func (c *Controller) Resume(clock Clock) {
	c.clock = clock
	c.resumed = true
	for _, p := range c.phases {
		p.Relation.Refresh()
	}
}

func (c *Controller) validate() error {
	if len(c.phases) == 0 {
		return dynamo.ErrNoParticles
	}
	for _, p := range c.phases {
		if p.Fluid.Len() == 0 {
			return fmt.Errorf("%w: %s", dynamo.ErrNoParticles, p.Name())
		}
	}
	if !dynamo.Finite(c.cfg.EndTime) {
		return dynamo.ConfigError("end_time", "must be positive, got %g", c.cfg.EndTime)
	}
	if !dynamo.Finite(c.cfg.OutputInterval) {
		return dynamo.ConfigError("output_interval", "must be positive, got %g", c.cfg.OutputInterval)
	}
	if c.cfg.ScreenInterval < 0 || c.cfg.RestartInterval < 0 {
		return dynamo.ConfigError("intervals", "must not be negative")
	}
	return nil
}

// Run integrates until the end time. Cancellation is honoured between outer
// steps; the returned result is valid up to the last completed step even
// when an error is returned.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	for _, m := range c.metrics {
		m.Reset()
	}

	res := &Result{Metrics: make(map[string]float64)}
	defer func() {
		res.Clock = c.clock
		res.Timing = c.timer.Totals()
		for _, m := range c.metrics {
			res.Metrics[m.Name()] = m.Value()
		}
	}()

	if !c.resumed {
		if err := c.snapshot(res); err != nil {
			return res, err
		}
	}

	for c.clock.Time < c.cfg.EndTime {
		integrated := 0.0
		for integrated < c.cfg.OutputInterval {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			default:
			}

			before := c.clock.Time
			if err := c.Step(); err != nil {
				return res, err
			}
			integrated += c.clock.Time - before

			if err := c.afterStep(res); err != nil {
				return res, err
			}
		}
		if err := c.snapshot(res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (c *Controller) afterStep(res *Result) error {
	clock := c.clock
	for _, m := range c.metrics {
		m.Observe(clock, c.phases)
	}
	for _, o := range c.observers {
		o.OnStep(clock)
	}
	if c.cfg.ScreenInterval > 0 && clock.Iteration%c.cfg.ScreenInterval == 0 {
		c.logger.Info("step", "N", clock.Iteration, "time", clock.Time, "Dt", clock.OuterDt, "dt", clock.InnerDt)
	}
	if c.cfg.RestartInterval > 0 && clock.Iteration%c.cfg.RestartInterval == 0 {
		if len(c.restarts) == 0 {
			return nil
		}
		return c.timer.TimeErr(StageOutput, func() error {
			for _, w := range c.restarts {
				if err := w.WriteRestart(clock, c.phases); err != nil {
					return fmt.Errorf("restart at step %d: %w", clock.Iteration, err)
				}
			}
			res.Restarts++
			return nil
		})
	}
	return nil
}

func (c *Controller) snapshot(res *Result) error {
	return c.timer.TimeErr(StageOutput, func() error {
		for _, w := range c.snapshots {
			if err := w.WriteSnapshot(c.clock, c.phases); err != nil {
				return fmt.Errorf("snapshot at t=%.6f: %w", c.clock.Time, err)
			}
		}
		res.Snapshots++
		return nil
	})
}

// Step performs one outer step: bound, force stages for every phase,
// acoustic sub-cycle and relation refresh.
func (c *Controller) Step() error {
	outer := math.Inf(1)
	for _, p := range c.phases {
		outer = math.Min(outer, p.AdvectionStep())
	}
	if !dynamo.Finite(outer) {
		return c.fail(outer, dynamo.ErrDiverged)
	}
	c.clock.OuterDt = outer

	c.timer.Time(StageForces, func() {
		for _, stage := range forceStages {
			for _, p := range c.phases {
				stage(p)
			}
		}
	})

	err := c.timer.TimeErr(StageRelaxation, func() error {
		consumed := 0.0
		for consumed < outer {
			bound := math.Inf(1)
			for _, p := range c.phases {
				bound = math.Min(bound, p.AcousticStep())
			}
			if !dynamo.Finite(bound) {
				return c.fail(bound, dynamo.ErrDiverged)
			}
			if bound > outer {
				return c.fail(bound, dynamo.ErrStepOrder)
			}

			dt := bound
			last := consumed+dt >= outer
			if last {
				dt = outer - consumed
			}

			physics.RelaxPressure(dt, c.phases...)
			physics.RelaxDensity(dt, c.phases...)

			c.clock.InnerDt = dt
			c.clock.InnerSteps++
			c.clock.Time += dt
			if last {
				break
			}
			consumed += dt
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.timer.Time(StageUpdate, func() {
		for _, p := range c.phases {
			p.Relation.Refresh()
		}
	})
	c.clock.Iteration++
	return nil
}

func (c *Controller) fail(bound float64, err error) error {
	return &dynamo.SimulationError{
		Step:    c.clock.Iteration,
		Time:    c.clock.Time,
		Bound:   bound,
		Wrapped: err,
	}
}
