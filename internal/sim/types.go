package sim

import (
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/physics"
)

// Clock is the simulation time state. The controller owns it and hands out
// copies.
type Clock struct {
	Time       float64 `json:"time"`
	OuterDt    float64 `json:"outer_dt"`
	InnerDt    float64 `json:"inner_dt"`
	Iteration  int     `json:"iteration"`
	InnerSteps int     `json:"inner_steps"`
}

type Config struct {
	EndTime         float64
	OutputInterval  float64
	ScreenInterval  int
	RestartInterval int
}

// Observer is told about every completed outer step.
type Observer interface {
	OnStep(clock Clock)
}

// SnapshotWriter receives the particle state at every output time.
type SnapshotWriter interface {
	WriteSnapshot(clock Clock, phases []*physics.Phase) error
}

// RestartWriter persists everything needed to resume a run.
type RestartWriter interface {
	WriteRestart(clock Clock, phases []*physics.Phase) error
}

type Metric interface {
	Name() string
	Observe(clock Clock, phases []*physics.Phase)
	Value() float64
	Reset()
}

type Result struct {
	Clock     Clock
	Snapshots int
	Restarts  int
	Metrics   map[string]float64
	Timing    []dynamo.StageTotal
}

// Stage names used for the timing breakdown.
const (
	StageForces     = "forces"
	StageRelaxation = "relaxation"
	StageUpdate     = "update"
	StageOutput     = "output"
)
