// Package neighbor builds the inner and contact neighbour relations of a fluid
// phase and refreshes them when particles move.
package neighbor

import (
	"github.com/san-kum/dropsim/internal/body"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/kernel"
	"gonum.org/v1/gonum/spatial/r2"
)

// Neighbor is one interacting pair as seen from particle i. E is the unit
// vector from j to i and DW the kernel derivative, so the kernel gradient
// with respect to i is DW*E.
type Neighbor struct {
	J  int
	W  float64
	DW float64
	R  float64
	E  r2.Vec
}

// Contact holds the neighbours one fluid has inside another body.
type Contact struct {
	Body  body.Body
	Lists [][]Neighbor

	cells  *CellList
	static bool
}

// Relation is the full neighbourhood of one fluid phase: same-phase (Inner)
// and one Contact per other body.
type Relation struct {
	Fluid    *body.Fluid
	Kernel   *kernel.WendlandC2
	Inner    [][]Neighbor
	Contacts []*Contact

	cells *CellList
}

// Build creates and populates the relation of f with the given contact bodies.
// Walls are binned once; fluids are re-binned on every Refresh.
func Build(f *body.Fluid, k *kernel.WendlandC2, contacts ...body.Body) *Relation {
	r := &Relation{
		Fluid:  f,
		Kernel: k,
		Inner:  make([][]Neighbor, f.Len()),
		cells:  NewCellList(k.Cutoff()),
	}
	for _, b := range contacts {
		_, static := b.(*body.Wall)
		c := &Contact{
			Body:   b,
			Lists:  make([][]Neighbor, f.Len()),
			cells:  NewCellList(k.Cutoff()),
			static: static,
		}
		if static {
			c.cells.Update(b)
		}
		r.Contacts = append(r.Contacts, c)
	}
	r.Refresh()
	return r
}

// Walls returns the contacts with rigid walls.
func (r *Relation) Walls() []*Contact {
	var out []*Contact
	for _, c := range r.Contacts {
		if c.static {
			out = append(out, c)
		}
	}
	return out
}

// Fluids returns the contacts with other fluid phases.
func (r *Relation) Fluids() []*Contact {
	var out []*Contact
	for _, c := range r.Contacts {
		if !c.static {
			out = append(out, c)
		}
	}
	return out
}

// IsWall reports whether the contact body is a rigid wall.
func (c *Contact) IsWall() bool { return c.static }

// Refresh rebuilds every neighbour list from current positions. It must not
// run concurrently with anything that reads the relation.
func (r *Relation) Refresh() {
	f := r.Fluid
	r.cells.Update(f)
	for _, c := range r.Contacts {
		if !c.static {
			c.cells.Update(c.Body)
		}
	}

	cutoff := r.Kernel.Cutoff()
	dynamo.Each(f.Len(), func(i int) {
		pi := f.Pos[i]
		r.Inner[i] = r.Inner[i][:0]
		r.cells.Visit(pi, func(j int) {
			if j == i {
				return
			}
			if n, ok := r.pair(pi, f.Pos[j], j, cutoff); ok {
				r.Inner[i] = append(r.Inner[i], n)
			}
		})

		for _, c := range r.Contacts {
			c.Lists[i] = c.Lists[i][:0]
			c.cells.Visit(pi, func(j int) {
				if n, ok := r.pair(pi, c.Body.Position(j), j, cutoff); ok {
					c.Lists[i] = append(c.Lists[i], n)
				}
			})
		}
	})
}

func (r *Relation) pair(pi, pj r2.Vec, j int, cutoff float64) (Neighbor, bool) {
	d := r2.Sub(pi, pj)
	dist := r2.Norm(d)
	if dist >= cutoff || dist == 0 {
		return Neighbor{}, false
	}
	return Neighbor{
		J:  j,
		W:  r.Kernel.W(dist),
		DW: r.Kernel.DW(dist),
		R:  dist,
		E:  r2.Scale(1/dist, d),
	}, true
}

// Count returns the number of inner and contact pairs.
func (r *Relation) Count() (inner, contact int) {
	for i := range r.Inner {
		inner += len(r.Inner[i])
		for _, c := range r.Contacts {
			contact += len(c.Lists[i])
		}
	}
	return inner, contact
}
