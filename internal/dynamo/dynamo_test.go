package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 63, 64, 65, 1000, 4097} {
		seen := make([]int32, n)
		ParallelFor(n, 16, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
	}
}

func TestMaxReduce(t *testing.T) {
	vals := make([]float64, 500)
	for i := range vals {
		vals[i] = float64(i % 97)
	}
	vals[311] = 1000

	got := MaxReduce(len(vals), func(i int) float64 { return vals[i] })
	if got != 1000 {
		t.Errorf("MaxReduce = %v, want 1000", got)
	}

	vals[42] = math.NaN()
	if got := MaxReduce(len(vals), func(i int) float64 { return vals[i] }); !math.IsNaN(got) {
		t.Errorf("expected NaN to propagate, got %v", got)
	}

	if got := MaxReduce(0, func(i int) float64 { return 1 }); !math.IsInf(got, -1) {
		t.Errorf("empty reduce = %v, want -Inf", got)
	}
}

func TestFinite(t *testing.T) {
	tests := []struct {
		v    float64
		want bool
	}{
		{1e-3, true},
		{0, false},
		{-1, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, tt := range tests {
		if got := Finite(tt.v); got != tt.want {
			t.Errorf("Finite(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 12, Time: 0.5, Bound: math.NaN(), Wrapped: ErrDiverged}
	if !errors.Is(err, ErrDiverged) {
		t.Error("expected errors.Is to find ErrDiverged")
	}
	var se *SimulationError
	if !errors.As(err, &se) || se.Step != 12 {
		t.Error("expected errors.As to recover the step index")
	}
}

func TestConfigError(t *testing.T) {
	err := ConfigError("spacing", "must be positive, got %g", -1.0)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatal("expected ErrInvalidConfig")
	}
	want := "dynamo: invalid configuration: spacing: must be positive, got -1"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestStageTimer(t *testing.T) {
	timer := NewStageTimer()
	timer.Time("slow", func() { time.Sleep(2 * time.Millisecond) })
	timer.Time("fast", func() {})
	timer.Time("slow", func() {})

	totals := timer.Totals()
	if len(totals) != 2 || totals[0].Stage != "slow" || totals[1].Stage != "fast" {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if timer.Slowest()[0] != "slow" {
		t.Errorf("expected slow stage first, got %v", timer.Slowest())
	}

	var nilTimer *StageTimer
	ran := false
	nilTimer.Time("x", func() { ran = true })
	if !ran || nilTimer.Totals() != nil {
		t.Error("nil timer must run the stage and record nothing")
	}
}
