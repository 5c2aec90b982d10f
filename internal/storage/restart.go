package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// Restart is everything needed to continue a run: the clock and the evolving
// fields of every phase. Interface geometry is rebuilt on the next step and
// is not stored.
type Restart struct {
	Clock  sim.Clock    `json:"clock"`
	Phases []PhaseState `json:"phases"`
}

type PhaseState struct {
	Name   string    `json:"name"`
	Pos    []r2.Vec  `json:"pos"`
	Vel    []r2.Vec  `json:"vel"`
	Mass   []float64 `json:"mass"`
	Rho    []float64 `json:"rho"`
	DrhoDt []float64 `json:"drho_dt"`
}

// WriteRestart saves a restart file named after the clock's iteration.
func (r *Run) WriteRestart(clock sim.Clock, phases []*physics.Phase) error {
	rs := Restart{Clock: clock, Phases: make([]PhaseState, len(phases))}
	for k, p := range phases {
		f := p.Fluid
		rs.Phases[k] = PhaseState{
			Name:   p.Name(),
			Pos:    f.Pos,
			Vel:    f.Vel,
			Mass:   f.Mass,
			Rho:    f.Rho,
			DrhoDt: f.DrhoDt,
		}
	}

	path := filepath.Join(r.Dir, restartDir, fmt.Sprintf("restart_%08d.json", clock.Iteration))
	tmp := path + ".tmp"
	data, err := json.Marshal(rs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadRestart reads the restart file of the given iteration, or the latest
// one when iteration is negative.
func (s *Store) LoadRestart(runID string, iteration int) (*Restart, error) {
	dir := filepath.Join(s.baseDir, runID, restartDir)
	var path string
	if iteration >= 0 {
		path = filepath.Join(dir, fmt.Sprintf("restart_%08d.json", iteration))
	} else {
		matches, err := filepath.Glob(filepath.Join(dir, "restart_*.json"))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w in run %s", ErrNoRestart, runID)
		}
		sort.Strings(matches)
		path = matches[len(matches)-1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRestart, filepath.Base(path))
		}
		return nil, err
	}
	var rs Restart
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &rs, nil
}

// Apply copies the stored fields into freshly built phases. Volume and
// pressure follow from the restored density.
func (rs *Restart) Apply(phases []*physics.Phase) error {
	if len(rs.Phases) != len(phases) {
		return dynamo.ConfigError("restart", "has %d phases, case has %d", len(rs.Phases), len(phases))
	}
	for k, p := range phases {
		st := rs.Phases[k]
		f := p.Fluid
		if st.Name != p.Name() {
			return dynamo.ConfigError("restart", "phase %d is %q, case has %q", k, st.Name, p.Name())
		}
		n := f.Len()
		if len(st.Pos) != n || len(st.Vel) != n || len(st.Mass) != n || len(st.Rho) != n || len(st.DrhoDt) != n {
			return dynamo.ConfigError("restart", "phase %s: particle count differs from case (%d)", st.Name, n)
		}
		copy(f.Pos, st.Pos)
		copy(f.Vel, st.Vel)
		copy(f.Mass, st.Mass)
		copy(f.Rho, st.Rho)
		copy(f.DrhoDt, st.DrhoDt)
		for i := 0; i < n; i++ {
			f.Vol[i] = f.Mass[i] / f.Rho[i]
			f.P[i] = f.Material.Pressure(f.Rho[i])
		}
	}
	return nil
}
