package viz

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/dropsim/internal/metrics"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// StepMsg carries the clock after an outer step.
type StepMsg sim.Clock

// FrameMsg is a copy of the particle state at an output time.
type FrameMsg struct {
	Clock       sim.Clock
	Positions   [][]r2.Vec
	Diagnostics []metrics.PhaseDiagnostics
}

// DoneMsg ends the view; Err is the run's error, if any.
type DoneMsg struct {
	Err error
}

// Feed turns controller callbacks into messages. Step messages are sent at
// most once per interval; frames are always sent.
type Feed struct {
	send     func(tea.Msg)
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewFeed sends through send, normally tea.Program.Send.
func NewFeed(send func(tea.Msg), interval time.Duration) *Feed {
	return &Feed{send: send, interval: interval}
}

func (f *Feed) OnStep(clock sim.Clock) {
	f.mu.Lock()
	now := time.Now()
	due := now.Sub(f.last) >= f.interval
	if due {
		f.last = now
	}
	f.mu.Unlock()
	if due {
		f.send(StepMsg(clock))
	}
}

func (f *Feed) WriteSnapshot(clock sim.Clock, phases []*physics.Phase) error {
	msg := FrameMsg{
		Clock:       clock,
		Positions:   make([][]r2.Vec, len(phases)),
		Diagnostics: metrics.MeasureAll(phases),
	}
	for k, p := range phases {
		msg.Positions[k] = append([]r2.Vec(nil), p.Fluid.Pos...)
	}
	f.send(msg)
	return nil
}
