// Package export renders particle snapshots and diagnostics as images.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// Marker is one particle as drawn.
type Marker struct {
	X, Y    float64
	Phase   int
	Surface bool
}

var phaseColors = []string{"#3fa7ff", "#ff7a3f", "#7dff6a", "#d46aff"}

const surfaceColor = "#ffffff"

func phaseColor(k int) string {
	return phaseColors[k%len(phaseColors)]
}

// Markers flattens the phases into drawable particles, phase by phase.
func Markers(phases []*physics.Phase) []Marker {
	var out []Marker
	for k, p := range phases {
		f := p.Fluid
		for i := 0; i < f.Len(); i++ {
			out = append(out, Marker{X: f.Pos[i].X, Y: f.Pos[i].Y, Phase: k, Surface: f.Surface[i]})
		}
	}
	return out
}

// ParticlesToSVG draws markers inside bounds on a canvas width pixels wide;
// the height follows the aspect ratio of bounds.
func ParticlesToSVG(w io.Writer, markers []Marker, bounds geometry.Rect, radius float64, width int) error {
	if bounds.Width() <= 0 || bounds.Height() <= 0 {
		return fmt.Errorf("export: empty bounds")
	}
	scale := float64(width) / bounds.Width()
	height := int(bounds.Height()*scale + 0.5)
	r := radius * scale
	if r < 0.5 {
		r = 0.5
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, m := range markers {
		x := (m.X - bounds.Min.X) * scale
		y := float64(height) - (m.Y-bounds.Min.Y)*scale
		fill := phaseColor(m.Phase)
		if m.Surface {
			fill = surfaceColor
		}
		fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.2f\" fill=\"%s\"/>\n", x, y, r, fill)
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

// SVGWriter writes one SVG per snapshot into Dir.
type SVGWriter struct {
	Dir     string
	Bounds  geometry.Rect
	Spacing float64
	Width   int
}

func NewSVGWriter(dir string, bounds geometry.Rect, spacing float64) *SVGWriter {
	return &SVGWriter{Dir: dir, Bounds: bounds, Spacing: spacing, Width: 400}
}

func (s *SVGWriter) WriteSnapshot(clock sim.Clock, phases []*physics.Phase) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.Dir, fmt.Sprintf("snapshot_%08d.svg", clock.Iteration)))
	if err != nil {
		return err
	}
	defer f.Close()
	return ParticlesToSVG(f, Markers(phases), s.Bounds, 0.5*s.Spacing, s.Width)
}

// TrajectoryToSVG draws one polyline per path, e.g. droplet centroids over
// time, scaled to fit a width x height canvas.
func TrajectoryToSVG(paths [][]r2.Vec, width, height int) string {
	first := true
	var minX, maxX, minY, maxY float64
	for _, path := range paths {
		for _, p := range path {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	if first {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for k, path := range paths {
		if len(path) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, phaseColor(k)))
		for i, p := range path {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}
