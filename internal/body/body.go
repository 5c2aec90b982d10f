// Package body holds the particle containers of the simulation: the two fluid
// phases and the rigid wall.
package body

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Phase distinguishes the two droplets. It never changes for a particle.
type Phase int

const (
	Lower Phase = iota
	Upper
	Solid
)

func (p Phase) String() string {
	switch p {
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	case Solid:
		return "wall"
	default:
		return "unknown"
	}
}

// Body is the capability shared by fluids and walls: something contact
// relations can read positions, velocities and volumes from.
type Body interface {
	Name() string
	Phase() Phase
	Len() int
	Position(i int) r2.Vec
	Velocity(i int) r2.Vec
	Volume(i int) float64
}

// Wall is a fixed set of boundary particles. Physics modules only read it.
type Wall struct {
	name   string
	Pos    []r2.Vec
	Normal []r2.Vec
	Vol    []float64
}

// NewWall copies positions and unit normals; every particle gets volume vol.
func NewWall(name string, pos, normal []r2.Vec, vol float64) *Wall {
	w := &Wall{
		name:   name,
		Pos:    append([]r2.Vec(nil), pos...),
		Normal: make([]r2.Vec, len(normal)),
		Vol:    make([]float64, len(pos)),
	}
	for i := range normal {
		w.Normal[i] = r2.Unit(normal[i])
	}
	for i := range w.Vol {
		w.Vol[i] = vol
	}
	return w
}

func (w *Wall) Name() string          { return w.name }
func (w *Wall) Phase() Phase          { return Solid }
func (w *Wall) Len() int              { return len(w.Pos) }
func (w *Wall) Position(i int) r2.Vec { return w.Pos[i] }
func (w *Wall) Velocity(int) r2.Vec   { return r2.Vec{} }
func (w *Wall) Volume(i int) float64  { return w.Vol[i] }
