package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dropsim/internal/analysis"
	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/experiment"
	"github.com/san-kum/dropsim/internal/export"
	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/storage"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func loadSeries(st *storage.Store, runID string) ([]*analysis.PhaseSeries, error) {
	rows, err := st.LoadDiagnostics(runID)
	if err != nil {
		return nil, err
	}
	series := analysis.Series(rows)
	if len(series) == 0 {
		return nil, fmt.Errorf("run %s has no diagnostics", runID)
	}
	return series, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCASE\tSTARTED\tSTATUS\tTIME\tSTEPS\tSNAPSHOTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f/%g\t%d\t%d\n",
			run.ID,
			run.Case,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.Clock.Time,
			run.EndTime,
			run.Clock.Iteration,
			run.Snapshots,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	series, err := loadSeries(st, runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("samples: %d\n\n", series[0].Len())

	panels := []struct {
		name  string
		unit  string
		value func(s *analysis.PhaseSeries) []float64
	}{
		{"centroid_y", "y", func(s *analysis.PhaseSeries) []float64 { return s.CentroidY }},
		{"kinetic", "E", func(s *analysis.PhaseSeries) []float64 { return s.Kinetic }},
		{"contact_angle", "deg", func(s *analysis.PhaseSeries) []float64 { return degrees(s.ContactAngle) }},
	}
	for _, panel := range panels {
		var data [][]float64
		var lines []export.Line
		for _, s := range series {
			v := panel.value(s)
			data = append(data, fillNaN(v))
			lines = append(lines, export.Line{Name: s.Phase, X: s.Time, Y: v})
		}
		graph := asciigraph.PlotMany(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
			asciigraph.Caption(panel.name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()

		if pngPath != "" {
			path := fmt.Sprintf("%s_%s.png", pngPath, panel.name)
			if err := export.SavePlot(path, panel.name, "t", panel.unit, lines...); err != nil {
				return err
			}
			logger.Info("saved plot", "path", path)
		}
	}
	return nil
}

func degrees(rad []float64) []float64 {
	out := make([]float64, len(rad))
	for i, v := range rad {
		out[i] = v * 180 / math.Pi
	}
	return out
}

// fillNaN carries the last finite value forward; asciigraph cannot draw
// gaps at the start of a series, so leading NaNs become zero.
func fillNaN(v []float64) []float64 {
	out := make([]float64, len(v))
	last := 0.0
	for i, x := range v {
		if !math.IsNaN(x) {
			last = x
		}
		out[i] = last
	}
	return out
}

type report struct {
	Run       *storage.RunMetadata `json:"run"`
	Summaries []analysis.Summary   `json:"summaries"`
	Approach  *approach            `json:"closest_approach,omitempty"`
	Frequency map[string]float64   `json:"centroid_frequency"`
}

type approach struct {
	Time     float64 `json:"time"`
	Distance float64 `json:"distance"`
}

func buildReport(st *storage.Store, runID string) (*report, []*analysis.PhaseSeries, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	series, err := loadSeries(st, runID)
	if err != nil {
		return nil, nil, err
	}

	rep := &report{Run: meta, Frequency: make(map[string]float64)}
	for _, s := range series {
		rep.Summaries = append(rep.Summaries, s.Summary())
		if s.Len() < 4 {
			continue
		}
		dt := (s.Time[s.Len()-1] - s.Time[0]) / float64(s.Len()-1)
		freq, _ := analysis.DominantFrequency(analysis.Resample(s.Time, s.CentroidY, dt), dt)
		rep.Frequency[s.Phase] = freq
	}
	if len(series) >= 2 {
		if t, d, ok := analysis.ClosestApproach(series[0], series[1]); ok {
			rep.Approach = &approach{Time: t, Distance: d}
		}
	}
	return rep, series, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	rep, series, err := buildReport(st, runID)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s (%s, %s)\n\n", runID, rep.Run.Case, rep.Run.Status)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHASE\tSAMPLES\tMASS DRIFT\tPEAK KE\tAT\tTRAVEL\tANGLE\tFREQ")
	for _, s := range rep.Summaries {
		angle := "-"
		if !math.IsNaN(s.FinalContactAngle) {
			angle = fmt.Sprintf("%.1f°", s.FinalContactAngle)
		}
		fmt.Fprintf(w, "%s\t%d\t%.2e\t%.4e\t%.3f\t%.4f\t%s\t%.3f\n",
			s.Phase, s.Samples, s.MassDrift, s.PeakKinetic, s.PeakKineticTime, s.Travel, angle, rep.Frequency[s.Phase])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if rep.Approach != nil {
		fmt.Printf("\nclosest approach: %.4f at t=%.3f\n", rep.Approach.Distance, rep.Approach.Time)
	}

	s := series[0]
	if ps := analysis.PowerSpectrum(s.CentroidY); len(ps) > 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (%s centroid y)", s.Phase)),
		))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	rep, series, err := buildReport(st, runID)
	if err != nil {
		return err
	}

	if svgPath != "" {
		paths := make([][]r2.Vec, len(series))
		for k, s := range series {
			for i := range s.Time {
				paths[k] = append(paths[k], r2.Vec{X: s.CentroidX[i], Y: s.CentroidY[i]})
			}
		}
		if err := os.WriteFile(svgPath, []byte(export.TrajectoryToSVG(paths, 400, 800)), 0644); err != nil {
			return err
		}
		logger.Info("saved trajectories", "path", svgPath)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonSafe(rep))
}

// jsonSafe replaces NaN angles, which encoding/json rejects, with -1.
func jsonSafe(rep *report) *report {
	for i := range rep.Summaries {
		if math.IsNaN(rep.Summaries[i].FinalContactAngle) {
			rep.Summaries[i].FinalContactAngle = -1
		}
	}
	return rep
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	cfg, err := st.Config(runID)
	if err != nil {
		return err
	}
	snaps, err := st.Snapshots(runID)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("run %s has no snapshots", runID)
	}

	bounds := experiment.TankFor(cfg).Bounds()
	names := []string{cfg.Lower.Name, cfg.Upper.Name}
	runDir := filepath.Dir(filepath.Dir(snaps[0]))
	for _, path := range snaps {
		particles, err := storage.LoadSnapshot(path)
		if err != nil {
			return err
		}
		markers := toMarkers(particles, names)
		base := strings.TrimSuffix(filepath.Base(path), ".csv")

		for _, format := range formats {
			dir := filepath.Join(runDir, format)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			out := filepath.Join(dir, base+"."+format)
			switch format {
			case "svg":
				if err := writeSVG(out, markers, cfg, bounds); err != nil {
					return err
				}
			case "png":
				if err := export.SaveParticles(out, base, names, markers, bounds); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format: %s", format)
			}
		}
	}
	logger.Info("rendered", "run", runID, "snapshots", len(snaps), "formats", formats)
	return nil
}

func toMarkers(particles []storage.Particle, names []string) []export.Marker {
	markers := make([]export.Marker, 0, len(particles))
	for _, p := range particles {
		phase := 0
		for k, name := range names {
			if name == p.Phase {
				phase = k
			}
		}
		markers = append(markers, export.Marker{X: p.X, Y: p.Y, Phase: phase, Surface: p.Surface})
	}
	return markers
}

func writeSVG(path string, markers []export.Marker, cfg *config.Config, bounds geometry.Rect) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.ParticlesToSVG(f, markers, bounds, 0.5*cfg.Spacing(), 400)
}
