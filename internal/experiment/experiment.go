// Package experiment assembles a configured case into a runnable controller:
// tank, fluid blocks, neighbour relations, phases, metrics and outputs.
package experiment

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/body"
	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/export"
	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/kernel"
	"github.com/san-kum/dropsim/internal/neighbor"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
	"github.com/san-kum/dropsim/internal/storage"
	"gonum.org/v1/gonum/spatial/r2"
)

// Case is a fully wired simulation.
type Case struct {
	Config     *config.Config
	Tank       geometry.Tank
	Wall       *body.Wall
	Phases     []*physics.Phase
	Controller *sim.Controller
	Timer      *dynamo.StageTimer
}

// Build validates cfg and discretizes it. The lower phase is stepped first.
func Build(cfg *config.Config, reg *Registry) (*Case, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	solver, err := reg.GetSolver(cfg.Solver.Riemann)
	if err != nil {
		return nil, dynamo.ConfigError("solver.riemann", "%v", err)
	}

	dp := cfg.Spacing()
	vol := dp * dp
	k := kernel.NewWendlandC2(dp)

	tank := TankFor(cfg)
	wpos, wnormal := tank.Discretize(dp)
	wall := body.NewWall("wall", wpos, wnormal, vol)

	lower, err := newFluid(cfg.Lower, body.Lower, dp)
	if err != nil {
		return nil, err
	}
	upper, err := newFluid(cfg.Upper, body.Upper, dp)
	if err != nil {
		return nil, err
	}

	params := physics.Params{
		Spacing:          dp,
		MaxSpeed:         cfg.Solver.MaxSpeed,
		ContactAngle:     cfg.ContactAngleRad(),
		SurfaceTension:   cfg.Interface.SurfaceTension,
		SurfaceThreshold: cfg.Interface.SurfaceThreshold,
		NoiseFloor:       cfg.Interface.NoiseFloor,
	}
	var phases []*physics.Phase
	for _, pair := range [][2]*body.Fluid{{lower, upper}, {upper, lower}} {
		rel := neighbor.Build(pair[0], k, wall, pair[1])
		p, err := physics.NewPhase(rel, solver, params)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}

	timer := dynamo.NewStageTimer()
	ctrl := sim.New(sim.Config{
		EndTime:         cfg.Output.EndTime,
		OutputInterval:  cfg.OutputInterval(),
		ScreenInterval:  cfg.Output.ScreenInterval,
		RestartInterval: cfg.Output.RestartInterval,
	}, phases...)
	ctrl.SetTimer(timer)
	for _, m := range reg.DefaultMetrics() {
		ctrl.AddMetric(m)
	}

	return &Case{
		Config:     cfg,
		Tank:       tank,
		Wall:       wall,
		Phases:     phases,
		Controller: ctrl,
		Timer:      timer,
	}, nil
}

// TankFor is the container described by cfg's domain.
func TankFor(cfg *config.Config) geometry.Tank {
	return geometry.Tank{
		Interior:  geometry.NewRect(0, 0, cfg.Domain.Width, cfg.Domain.Height),
		Thickness: float64(cfg.Domain.WallLayers) * cfg.Spacing(),
	}
}

func newFluid(fc config.FluidConfig, phase body.Phase, dp float64) (*body.Fluid, error) {
	b := fc.Block
	pos := geometry.Lattice(geometry.NewRect(b.XMin, b.YMin, b.XMax, b.YMax), dp)
	if len(pos) == 0 {
		return nil, fmt.Errorf("%w: %w: %s", dynamo.ErrInvalidConfig, dynamo.ErrNoParticles, fc.Name)
	}
	return body.NewFluid(fc.Name, phase, fc.Material, r2.Vec{Y: fc.Gravity}, pos, dp*dp), nil
}

// Bounds is the drawing area: the tank including its wall band.
func (c *Case) Bounds() geometry.Rect { return c.Tank.Bounds() }

// SetLogger routes the controller's screen output.
func (c *Case) SetLogger(l *log.Logger) { c.Controller.SetLogger(l) }

// AttachOutputs makes run the restart writer and adds one snapshot writer per
// configured format.
func (c *Case) AttachOutputs(run *storage.Run) error {
	c.Controller.AddRestartWriter(run)
	for _, format := range c.Config.Output.Formats {
		switch format {
		case "csv":
			c.Controller.AddSnapshotWriter(run)
		case "svg":
			c.Controller.AddSnapshotWriter(export.NewSVGWriter(filepath.Join(run.Dir, "svg"), c.Bounds(), c.Config.Spacing()))
		case "png":
			c.Controller.AddSnapshotWriter(export.NewPNGWriter(filepath.Join(run.Dir, "png"), c.Bounds()))
		default:
			return dynamo.ConfigError("output.formats", "unknown format %q", format)
		}
	}
	return nil
}

// Restore loads a restart into the phases and continues the clock from it.
func (c *Case) Restore(rs *storage.Restart) error {
	if err := rs.Apply(c.Phases); err != nil {
		return err
	}
	c.Controller.Resume(rs.Clock)
	return nil
}

// Run integrates to the end time and logs the stage timing breakdown.
func (c *Case) Run(ctx context.Context, logger *log.Logger) (*sim.Result, error) {
	res, err := c.Controller.Run(ctx)
	if res != nil && logger != nil {
		for _, st := range res.Timing {
			logger.Info("timing", "stage", st.Stage, "seconds", st.Total.Seconds())
		}
	}
	return res, err
}
