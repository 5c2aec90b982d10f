package dynamo

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Finite reports whether v is a usable positive step bound.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// StageTimer accumulates wall-clock time per named pipeline stage.
// A nil *StageTimer is valid and records nothing.
type StageTimer struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	order  []string
}

func NewStageTimer() *StageTimer {
	return &StageTimer{totals: make(map[string]time.Duration)}
}

// Time runs fn and charges its duration to stage.
func (t *StageTimer) Time(stage string, fn func()) {
	if t == nil {
		fn()
		return
	}
	start := time.Now()
	fn()
	t.add(stage, time.Since(start))
}

// TimeErr is Time for stages that can fail.
func (t *StageTimer) TimeErr(stage string, fn func() error) error {
	var err error
	t.Time(stage, func() { err = fn() })
	return err
}

func (t *StageTimer) add(stage string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.totals[stage]; !ok {
		t.order = append(t.order, stage)
	}
	t.totals[stage] += d
}

// StageTotal is the accumulated time of one stage.
type StageTotal struct {
	Stage string
	Total time.Duration
}

// Totals returns the stages in first-seen order.
func (t *StageTimer) Totals() []StageTotal {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StageTotal, 0, len(t.order))
	for _, s := range t.order {
		out = append(out, StageTotal{Stage: s, Total: t.totals[s]})
	}
	return out
}

// Slowest returns the stage names sorted by decreasing total.
func (t *StageTimer) Slowest() []string {
	totals := t.Totals()
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].Total > totals[j].Total })
	names := make([]string, len(totals))
	for i, s := range totals {
		names[i] = s.Stage
	}
	return names
}
