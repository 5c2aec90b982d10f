package export

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var plotColors = []color.RGBA{
	{R: 0x3f, G: 0xa7, B: 0xff, A: 0xff},
	{R: 0xff, G: 0x7a, B: 0x3f, A: 0xff},
	{R: 0x7d, G: 0xff, B: 0x6a, A: 0xff},
	{R: 0xd4, G: 0x6a, B: 0xff, A: 0xff},
}

func plotColor(k int) color.RGBA {
	return plotColors[k%len(plotColors)]
}

// ParticlesPlot builds a scatter plot of markers, one series per phase, with
// the axes fixed to bounds.
func ParticlesPlot(title string, names []string, markers []Marker, bounds geometry.Rect) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = bounds.Min.X, bounds.Max.X
	p.Y.Min, p.Y.Max = bounds.Min.Y, bounds.Max.Y

	byPhase := make([]plotter.XYs, len(names))
	for _, m := range markers {
		if m.Phase < 0 || m.Phase >= len(names) {
			return nil, fmt.Errorf("export: marker phase %d out of range", m.Phase)
		}
		byPhase[m.Phase] = append(byPhase[m.Phase], plotter.XY{X: m.X, Y: m.Y})
	}
	for k, pts := range byPhase {
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = plotColor(k)
		s.GlyphStyle.Radius = vg.Points(1.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(names[k], s)
	}
	return p, nil
}

// SaveParticles writes the scatter plot of markers to path, 4 inches wide
// and as tall as the aspect ratio of bounds requires.
func SaveParticles(path, title string, names []string, markers []Marker, bounds geometry.Rect) error {
	p, err := ParticlesPlot(title, names, markers, bounds)
	if err != nil {
		return err
	}
	width := 4 * vg.Inch
	return p.Save(width, width*vg.Length(bounds.Height()/bounds.Width()), path)
}

// PNGWriter saves one scatter plot per snapshot into Dir.
type PNGWriter struct {
	Dir    string
	Bounds geometry.Rect
}

func NewPNGWriter(dir string, bounds geometry.Rect) *PNGWriter {
	return &PNGWriter{Dir: dir, Bounds: bounds}
}

func (w *PNGWriter) WriteSnapshot(clock sim.Clock, phases []*physics.Phase) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}
	names := make([]string, len(phases))
	for k, p := range phases {
		names[k] = p.Name()
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("snapshot_%08d.png", clock.Iteration))
	return SaveParticles(path, fmt.Sprintf("t = %.4f", clock.Time), names, Markers(phases), w.Bounds)
}

// Line is one named time series.
type Line struct {
	Name string
	X, Y []float64
}

// SavePlot draws the lines on one set of axes and saves the figure; the
// format follows the file extension. Non-finite samples are skipped.
func SavePlot(path, title, xLabel, yLabel string, lines ...Line) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	for k, l := range lines {
		if len(l.X) != len(l.Y) {
			return fmt.Errorf("export: line %s has %d x and %d y values", l.Name, len(l.X), len(l.Y))
		}
		pts := make(plotter.XYs, 0, len(l.X))
		for i := range l.X {
			if math.IsNaN(l.Y[i]) || math.IsInf(l.Y[i], 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: l.X[i], Y: l.Y[i]})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Color = plotColor(k)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(l.Name, line)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
