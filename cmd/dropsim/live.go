package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/dropsim/internal/experiment"
	"github.com/san-kum/dropsim/internal/viz"
)

const (
	liveRows     = 36
	liveInterval = 100 * time.Millisecond
)

func newLiveProgram(c *experiment.Case, cancel context.CancelFunc) *tea.Program {
	monitor := viz.NewMonitor(c.Config.Name, c.Config.Output.EndTime, c.Bounds(), c.Tank.Interior, liveRows, cancel)
	return tea.NewProgram(monitor, tea.WithAltScreen())
}

func newLiveFeed(p *tea.Program) *viz.Feed {
	return viz.NewFeed(p.Send, liveInterval)
}

func doneMsg(err error) tea.Msg {
	return viz.DoneMsg{Err: err}
}
