package experiment

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/material"
	"github.com/san-kum/dropsim/internal/storage"
)

func quickCase(t *testing.T, mutate func(*config.Config)) *Case {
	t.Helper()
	cfg := config.GetPreset("quick")
	if mutate != nil {
		mutate(cfg)
	}
	c, err := Build(cfg, NewRegistry())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	c.SetLogger(log.New(io.Discard))
	return c
}

func TestBuildQuick(t *testing.T) {
	c := quickCase(t, nil)

	if len(c.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(c.Phases))
	}
	if c.Phases[0].Name() != "lower" || c.Phases[1].Name() != "upper" {
		t.Errorf("unexpected phase order %s, %s", c.Phases[0].Name(), c.Phases[1].Name())
	}
	// 0.5 x 0.4 blocks at spacing 0.1
	for _, p := range c.Phases {
		if n := p.Fluid.Len(); n != 20 {
			t.Errorf("%s: expected 20 particles, got %d", p.Name(), n)
		}
	}
	if c.Phases[0].Fluid.Gravity.Y != 1 || c.Phases[1].Fluid.Gravity.Y != -1 {
		t.Error("droplets should be pulled towards each other")
	}

	// 2 x 3 tank with 4 layers: (20+8)*(30+8) - 20*30
	if n := c.Wall.Len(); n != 464 {
		t.Errorf("expected 464 wall particles, got %d", n)
	}
	b := c.Bounds()
	if math.Abs(b.Min.X+0.4) > 1e-12 || math.Abs(b.Max.Y-3.4) > 1e-12 {
		t.Errorf("unexpected bounds %+v", b)
	}
}

func TestBuildInvalid(t *testing.T) {
	cfg := config.GetPreset("quick")
	cfg.Domain.Resolution = 0
	if _, err := Build(cfg, NewRegistry()); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	cfg = config.GetPreset("quick")
	cfg.Solver.Riemann = "hllc"
	if _, err := Build(cfg, NewRegistry()); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown solver, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	s, err := reg.GetSolver("none")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(material.Averaged); !ok {
		t.Errorf("expected averaged solver, got %T", s)
	}
	if got := reg.ListSolvers(); len(got) != 2 || got[0] != "acoustic" {
		t.Errorf("unexpected solvers %v", got)
	}

	names := map[string]bool{}
	for _, m := range reg.DefaultMetrics() {
		names[m.Name()] = true
	}
	for _, want := range []string{"kinetic_energy", "mass_drift", "stability", "substeps_per_step"} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}

func TestRunQuickCase(t *testing.T) {
	c := quickCase(t, func(cfg *config.Config) {
		cfg.Output.EndTime = 0.2
		cfg.Output.Outputs = 4
		cfg.Output.Formats = []string{"csv", "svg"}
	})

	st := storage.New(t.TempDir())
	run, err := st.Create(c.Config)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.AttachOutputs(run); err != nil {
		t.Fatal(err)
	}

	res, err := c.Run(context.Background(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Clock.Time < 0.2 {
		t.Errorf("run stopped early at t=%g", res.Clock.Time)
	}
	if res.Metrics["mass_drift"] > 1e-12 {
		t.Errorf("mass drifted by %g", res.Metrics["mass_drift"])
	}
	for _, p := range c.Phases {
		if !dynamo.Finite(p.AdvectionStep()) {
			t.Errorf("%s: state diverged", p.Name())
		}
	}

	snaps, err := st.Snapshots(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != res.Snapshots {
		t.Errorf("expected %d snapshot files, got %d", res.Snapshots, len(snaps))
	}
	svgs, _ := filepath.Glob(filepath.Join(run.Dir, "svg", "*.svg"))
	if len(svgs) != res.Snapshots {
		t.Errorf("expected %d svg files, got %d", res.Snapshots, len(svgs))
	}
}

func TestRestoreFromRestart(t *testing.T) {
	c := quickCase(t, nil)
	for i := 0; i < 3; i++ {
		if err := c.Controller.Step(); err != nil {
			t.Fatal(err)
		}
	}

	st := storage.New(t.TempDir())
	run, err := st.Create(c.Config)
	if err != nil {
		t.Fatal(err)
	}
	if err := run.WriteRestart(c.Controller.Clock(), c.Phases); err != nil {
		t.Fatal(err)
	}

	rs, err := st.LoadRestart(run.ID, -1)
	if err != nil {
		t.Fatal(err)
	}
	fresh := quickCase(t, nil)
	if err := fresh.Restore(rs); err != nil {
		t.Fatal(err)
	}
	if fresh.Controller.Clock() != c.Controller.Clock() {
		t.Errorf("clock not restored: %+v vs %+v", fresh.Controller.Clock(), c.Controller.Clock())
	}
	for k, p := range fresh.Phases {
		want := c.Phases[k].Fluid
		for i := range p.Fluid.Pos {
			if p.Fluid.Pos[i] != want.Pos[i] || p.Fluid.Vel[i] != want.Vel[i] {
				t.Fatalf("%s particle %d not restored", p.Name(), i)
			}
		}
	}

	if err := fresh.Controller.Step(); err != nil {
		t.Errorf("step after restore failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(run.Dir, "restart")); err != nil {
		t.Error(err)
	}
}
