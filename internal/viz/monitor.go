package viz

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dropsim/internal/geometry"
	"github.com/san-kum/dropsim/internal/sim"
)

const historyLen = 200

// Monitor is the Bubble Tea model of a running case.
type Monitor struct {
	title   string
	endTime float64
	bounds  geometry.Rect
	tank    geometry.Rect
	cancel  context.CancelFunc

	canvas  *Canvas
	clock   sim.Clock
	frame   *FrameMsg
	kinetic []float64
	done    bool
	err     error
}

// NewMonitor draws the domain bounds on a canvas rows characters high; the
// width follows the aspect ratio. cancel is called when the user quits.
func NewMonitor(title string, endTime float64, bounds, tank geometry.Rect, rows int, cancel context.CancelFunc) Monitor {
	cols := int(math.Round(float64(rows) * 2 * bounds.Width() / bounds.Height()))
	if cols < 8 {
		cols = 8
	}
	return Monitor{
		title:   title,
		endTime: endTime,
		bounds:  bounds,
		tank:    tank,
		cancel:  cancel,
		canvas:  NewCanvas(cols, rows),
	}
}

func (m Monitor) Init() tea.Cmd { return nil }

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case StepMsg:
		m.clock = sim.Clock(msg)
	case FrameMsg:
		m.clock = msg.Clock
		m.frame = &msg
		total := 0.0
		for _, d := range msg.Diagnostics {
			total += d.Kinetic
		}
		m.kinetic = append(m.kinetic, total)
		if len(m.kinetic) > historyLen {
			m.kinetic = m.kinetic[len(m.kinetic)-historyLen:]
		}
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Progress is the fraction of the end time reached.
func (m Monitor) Progress() float64 {
	if m.endTime <= 0 {
		return 0
	}
	return math.Min(1, m.clock.Time/m.endTime)
}

func (m Monitor) draw() string {
	m.canvas.Clear()
	proj := m.canvas.Project(m.bounds)
	proj.Outline(m.tank)
	if m.frame != nil {
		for _, pos := range m.frame.Positions {
			for _, v := range pos {
				proj.Plot(v)
			}
		}
	}
	return m.canvas.String()
}

func (m Monitor) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.err != nil:
		status = StatusFailed.Render("FAILED: " + m.err.Error())
	case m.done:
		status = StatusRunning.Render("DONE")
	}
	s.WriteString(status + "\n\n")
	s.WriteString(ProgressBar(m.Progress(), 24) + fmt.Sprintf(" %5.1f%%\n\n", 100*m.Progress()))

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.4f / %g", m.clock.Time, m.endTime))
	row("Step", fmt.Sprintf("%d", m.clock.Iteration))
	row("Dt", fmt.Sprintf("%.3e", m.clock.OuterDt))
	row("dt", fmt.Sprintf("%.3e", m.clock.InnerDt))

	if m.frame != nil {
		for _, d := range m.frame.Diagnostics {
			s.WriteString("\n" + Separator(26) + "\n")
			row("Phase", d.Phase)
			row("Centroid", fmt.Sprintf("(%.3f, %.3f)", d.Centroid.X, d.Centroid.Y))
			row("Vmax", fmt.Sprintf("%.4f", d.MaxSpeed))
			row("Surface", fmt.Sprintf("%d / %d", d.Surface, d.Particles))
			if !math.IsNaN(d.ContactAngle) {
				row("Angle", fmt.Sprintf("%.1f°", d.ContactAngle*180/math.Pi))
			}
		}
	}
	if len(m.kinetic) > 1 {
		chart := asciigraph.Plot(m.kinetic, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString("\n" + chart + "\n")
	}
	s.WriteString("\n" + Subtle.Render("q: stop"))

	return lipgloss.JoinHorizontal(lipgloss.Top, CanvasStyle.Render(m.draw()), PanelStyle.Render(s.String()))
}
