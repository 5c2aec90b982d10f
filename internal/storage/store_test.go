package storage

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dropsim/internal/body"
	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/kernel"
	"github.com/san-kum/dropsim/internal/material"
	"github.com/san-kum/dropsim/internal/neighbor"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const dp = 0.1

func testPhases(t *testing.T) []*physics.Phase {
	t.Helper()
	mat := material.NewWeaklyCompressible(1, 10, 0.05)
	k := kernel.NewWendlandC2(dp)
	var phases []*physics.Phase
	for _, name := range []string{"lower", "upper"} {
		f := body.NewFluid(name, body.Lower, mat, r2.Vec{}, geometry.Lattice(geometry.NewRect(0, 0, 0.4, 0.3), dp), dp*dp)
		for i := range f.Vel {
			f.Vel[i] = r2.Vec{X: float64(i)}
		}
		p, err := physics.NewPhase(neighbor.Build(f, k), material.Acoustic{}, physics.Params{Spacing: dp, MaxSpeed: 1})
		if err != nil {
			t.Fatal(err)
		}
		phases = append(phases, p)
	}
	return phases
}

func TestStoreCreateLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset("quick")
	run, err := st.Create(cfg)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if run.ID == "" {
		t.Error("expected non-empty run id")
	}

	phases := testPhases(t)
	clock := sim.Clock{Time: 0.25, Iteration: 7}
	if err := run.WriteSnapshot(clock, phases); err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	res := &sim.Result{Clock: clock, Snapshots: 1, Metrics: map[string]float64{"mass_drift": 0}}
	if err := run.Finish(res, nil); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	meta, err := st.Load(run.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Case != "quick" || meta.Status != "completed" || meta.Snapshots != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Particles["lower"] != 12 || meta.Particles["upper"] != 12 {
		t.Errorf("particle counts %v", meta.Particles)
	}
	if meta.Clock.Iteration != 7 {
		t.Errorf("expected iteration 7, got %d", meta.Clock.Iteration)
	}

	loaded, err := st.Config(run.ID)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if loaded.Name != "quick" || loaded.Domain.Resolution != cfg.Domain.Resolution {
		t.Errorf("config round trip lost values: %+v", loaded)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("expected one run %s, got %v", run.ID, runs)
	}
}

func TestSnapshotAndDiagnostics(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create(config.GetPreset("quick"))
	if err != nil {
		t.Fatal(err)
	}
	phases := testPhases(t)
	for it := 0; it < 3; it++ {
		if err := run.WriteSnapshot(sim.Clock{Time: float64(it) * 0.1, Iteration: it * 10}, phases); err != nil {
			t.Fatal(err)
		}
	}

	files, err := st.Snapshots(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 snapshot files, got %d", len(files))
	}

	particles, err := LoadSnapshot(files[2])
	if err != nil {
		t.Fatal(err)
	}
	if len(particles) != 24 {
		t.Fatalf("expected 24 particles, got %d", len(particles))
	}
	if particles[0].Phase != "lower" || particles[12].Phase != "upper" {
		t.Errorf("phases out of order: %s %s", particles[0].Phase, particles[12].Phase)
	}
	if particles[5].VX != 5 || math.Abs(particles[5].X-0.15) > 1e-12 {
		t.Errorf("particle 5 = %+v", particles[5])
	}

	diags, err := st.LoadDiagnostics(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 6 {
		t.Fatalf("expected 6 diagnostics rows, got %d", len(diags))
	}
	last := diags[5]
	if last.Phase != "upper" || last.Iteration != 20 || math.Abs(last.Time-0.2) > 1e-12 {
		t.Errorf("unexpected last row %+v", last)
	}
	if math.Abs(last.Mass-0.12) > 1e-12 {
		t.Errorf("expected mass 0.12, got %g", last.Mass)
	}
	if !math.IsNaN(last.ContactAngle) {
		t.Errorf("expected NaN contact angle, got %g", last.ContactAngle)
	}
}

func TestLoadSnapshotRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for a non-snapshot file")
	}
}

func TestRestartRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create(config.GetPreset("quick"))
	if err != nil {
		t.Fatal(err)
	}
	phases := testPhases(t)
	phases[0].Fluid.Rho[3] = 1.01

	if err := run.WriteRestart(sim.Clock{Time: 1, Iteration: 10}, phases); err != nil {
		t.Fatal(err)
	}
	phases[1].Fluid.Pos[2] = r2.Vec{X: 9, Y: 9}
	if err := run.WriteRestart(sim.Clock{Time: 2, Iteration: 20}, phases); err != nil {
		t.Fatal(err)
	}

	rs, err := st.LoadRestart(run.ID, -1)
	if err != nil {
		t.Fatal(err)
	}
	if rs.Clock.Iteration != 20 || rs.Clock.Time != 2 {
		t.Errorf("expected latest restart, got %+v", rs.Clock)
	}

	fresh := testPhases(t)
	if err := rs.Apply(fresh); err != nil {
		t.Fatal(err)
	}
	if fresh[1].Fluid.Pos[2] != (r2.Vec{X: 9, Y: 9}) {
		t.Errorf("position not restored: %v", fresh[1].Fluid.Pos[2])
	}
	if fresh[0].Fluid.Rho[3] != 1.01 {
		t.Errorf("density not restored: %g", fresh[0].Fluid.Rho[3])
	}
	if want := 100 * 0.01; math.Abs(fresh[0].Fluid.P[3]-want) > 1e-9 {
		t.Errorf("pressure %g, want %g", fresh[0].Fluid.P[3], want)
	}

	first, err := st.LoadRestart(run.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if first.Clock.Iteration != 10 {
		t.Errorf("expected iteration 10, got %d", first.Clock.Iteration)
	}

	if _, err := st.LoadRestart(run.ID, 30); !errors.Is(err, ErrNoRestart) {
		t.Errorf("expected ErrNoRestart, got %v", err)
	}
	if err := rs.Apply(fresh[:1]); err == nil {
		t.Error("expected error applying to the wrong number of phases")
	}
}

func TestListEmpty(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
