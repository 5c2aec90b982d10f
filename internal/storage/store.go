package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/metrics"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
)

const (
	metadataFile    = "metadata.json"
	configFile      = "config.yaml"
	diagnosticsFile = "diagnostics.csv"
	snapshotDir     = "snapshots"
	restartDir      = "restart"
)

// ErrNoRestart is returned when a run has no restart file to resume from.
var ErrNoRestart = errors.New("storage: no restart file")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Case      string             `json:"case"`
	Timestamp time.Time          `json:"timestamp"`
	Spacing   float64            `json:"spacing"`
	EndTime   float64            `json:"end_time"`
	Particles map[string]int     `json:"particles"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	Clock     sim.Clock          `json:"clock"`
	Snapshots int                `json:"snapshots"`
	Metrics   map[string]float64 `json:"metrics"`
	Timing    map[string]float64 `json:"timing_seconds"`
}

// Run is one run directory. It writes snapshots, diagnostics and restart
// files as the controller produces them.
type Run struct {
	ID   string
	Dir  string
	meta RunMetadata
}

// Create makes a new run directory for cfg and records its configuration.
func (s *Store) Create(cfg *config.Config) (*Run, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Name, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 2; ; n++ {
		if _, err := os.Stat(runDir); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", cfg.Name, time.Now().Unix(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	for _, dir := range []string{runDir, filepath.Join(runDir, snapshotDir), filepath.Join(runDir, restartDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return nil, err
	}

	r := &Run{
		ID:  runID,
		Dir: runDir,
		meta: RunMetadata{
			ID:        runID,
			Case:      cfg.Name,
			Timestamp: time.Now(),
			Spacing:   cfg.Spacing(),
			EndTime:   cfg.Output.EndTime,
			Particles: make(map[string]int),
			Status:    "running",
		},
	}
	return r, r.writeMetadata()
}

// Open returns an existing run for appending, as when resuming.
func (s *Store) Open(runID string) (*Run, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	return &Run{ID: runID, Dir: filepath.Join(s.baseDir, runID), meta: *meta}, nil
}

// Config reads back the configuration a run was started with.
func (s *Store) Config(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (r *Run) writeMetadata() error {
	f, err := os.Create(filepath.Join(r.Dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r.meta)
}

// Finish records the outcome of the run.
func (r *Run) Finish(res *sim.Result, runErr error) error {
	r.meta.Status = "completed"
	if runErr != nil {
		r.meta.Status = "failed"
		r.meta.Error = runErr.Error()
	}
	if res != nil {
		r.meta.Clock = res.Clock
		r.meta.Snapshots += res.Snapshots
		r.meta.Metrics = res.Metrics
		r.meta.Timing = make(map[string]float64, len(res.Timing))
		for _, st := range res.Timing {
			r.meta.Timing[st.Stage] += st.Total.Seconds()
		}
	}
	return r.writeMetadata()
}

// WriteSnapshot writes every particle of every phase to one CSV file and
// appends one diagnostics row per phase.
func (r *Run) WriteSnapshot(clock sim.Clock, phases []*physics.Phase) error {
	name := fmt.Sprintf("snapshot_%08d.csv", clock.Iteration)
	file, err := os.Create(filepath.Join(r.Dir, snapshotDir, name))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(snapshotHeader); err != nil {
		return err
	}
	for _, p := range phases {
		f := p.Fluid
		r.meta.Particles[p.Name()] = f.Len()
		for i := 0; i < f.Len(); i++ {
			row := []string{
				p.Name(), strconv.Itoa(i),
				ff(f.Pos[i].X), ff(f.Pos[i].Y), ff(f.Vel[i].X), ff(f.Vel[i].Y),
				ff(f.Rho[i]), ff(f.P[i]), strconv.FormatBool(f.Surface[i]),
				ff(f.Normal[i].X), ff(f.Normal[i].Y), ff(f.Curvature[i]),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return r.appendDiagnostics(clock, metrics.MeasureAll(phases))
}

var snapshotHeader = []string{"phase", "index", "x", "y", "vx", "vy", "rho", "p", "surface", "nx", "ny", "curvature"}

var diagnosticsHeader = []string{"time", "iteration", "phase", "particles", "mass", "kinetic", "cx", "cy", "max_speed", "surface", "contact_angle"}

func (r *Run) appendDiagnostics(clock sim.Clock, diags []metrics.PhaseDiagnostics) error {
	path := filepath.Join(r.Dir, diagnosticsFile)
	_, statErr := os.Stat(path)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()
	if os.IsNotExist(statErr) {
		if err := w.Write(diagnosticsHeader); err != nil {
			return err
		}
	}
	for _, d := range diags {
		row := []string{
			ff(clock.Time), strconv.Itoa(clock.Iteration), d.Phase, strconv.Itoa(d.Particles),
			ff(d.Mass), ff(d.Kinetic), ff(d.Centroid.X), ff(d.Centroid.Y), ff(d.MaxSpeed),
			strconv.Itoa(d.Surface), ff(d.ContactAngle),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	if meta.Particles == nil {
		meta.Particles = make(map[string]int)
	}

	return &meta, nil
}

// Diagnostic is one row of diagnostics.csv.
type Diagnostic struct {
	Time      float64
	Iteration int
	metrics.PhaseDiagnostics
}

// LoadDiagnostics reads every diagnostics row of a run in file order.
func (s *Store) LoadDiagnostics(runID string) ([]Diagnostic, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, diagnosticsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	out := make([]Diagnostic, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) != len(diagnosticsHeader) {
			continue
		}
		vals, err := parseFloats(rec, 0, 4, 5, 6, 7, 8, 10)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", diagnosticsFile, i+1, err)
		}
		iter, _ := strconv.Atoi(rec[1])
		particles, _ := strconv.Atoi(rec[3])
		surface, _ := strconv.Atoi(rec[9])
		d := Diagnostic{Time: vals[0], Iteration: iter}
		d.Phase = rec[2]
		d.Particles = particles
		d.Mass, d.Kinetic = vals[1], vals[2]
		d.Centroid.X, d.Centroid.Y = vals[3], vals[4]
		d.MaxSpeed = vals[5]
		d.Surface = surface
		d.ContactAngle = vals[6]
		out = append(out, d)
	}
	return out, nil
}

func parseFloats(rec []string, cols ...int) ([]float64, error) {
	out := make([]float64, len(cols))
	for k, c := range cols {
		v, err := strconv.ParseFloat(rec[c], 64)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Snapshots lists a run's snapshot files in time order.
func (s *Store) Snapshots(runID string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, runID, snapshotDir, "snapshot_*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Particle is one row of a snapshot file.
type Particle struct {
	Phase     string
	X, Y      float64
	VX, VY    float64
	Rho, P    float64
	Surface   bool
	Curvature float64
}

// LoadSnapshot reads one snapshot file.
func LoadSnapshot(path string) ([]Particle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || strings.Join(records[0], ",") != strings.Join(snapshotHeader, ",") {
		return nil, fmt.Errorf("%s: not a snapshot file", path)
	}

	out := make([]Particle, 0, len(records)-1)
	for i, rec := range records[1:] {
		vals, err := parseFloats(rec, 2, 3, 4, 5, 6, 7, 11)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		out = append(out, Particle{
			Phase:     rec[0],
			X:         vals[0],
			Y:         vals[1],
			VX:        vals[2],
			VY:        vals[3],
			Rho:       vals[4],
			P:         vals[5],
			Surface:   rec[8] == "true",
			Curvature: vals[6],
		})
	}
	return out, nil
}
