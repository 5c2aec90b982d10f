// Package geometry discretizes the initial shapes into lattice particles.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is an axis-aligned box.
type Rect struct {
	Min, Max r2.Vec
}

func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{Min: r2.Vec{X: math.Min(x0, x1), Y: math.Min(y0, y1)}, Max: r2.Vec{X: math.Max(x0, x1), Y: math.Max(y0, y1)}}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside r, boundary included.
func (r Rect) Contains(p r2.Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{Min: r2.Vec{X: r.Min.X - d, Y: r.Min.Y - d}, Max: r2.Vec{X: r.Max.X + d, Y: r.Max.Y + d}}
}

// Clamp returns the point of r closest to p.
func (r Rect) Clamp(p r2.Vec) r2.Vec {
	return r2.Vec{X: math.Max(r.Min.X, math.Min(p.X, r.Max.X)), Y: math.Max(r.Min.Y, math.Min(p.Y, r.Max.Y))}
}

// cells returns the number of lattice cells along a length, at least one.
func cells(length, spacing float64) int {
	n := int(math.Round(length / spacing))
	if n < 1 {
		n = 1
	}
	return n
}

// Lattice fills r with particles at the centres of a square lattice of the
// given spacing.
func Lattice(r Rect, spacing float64) []r2.Vec {
	nx, ny := cells(r.Width(), spacing), cells(r.Height(), spacing)
	pts := make([]r2.Vec, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			pts = append(pts, r2.Vec{
				X: r.Min.X + (float64(i)+0.5)*spacing,
				Y: r.Min.Y + (float64(j)+0.5)*spacing,
			})
		}
	}
	return pts
}

// Tank is a closed rectangular container: wall particles fill a band of the
// given thickness around the interior.
type Tank struct {
	Interior  Rect
	Thickness float64
}

// Discretize returns wall particle positions and unit normals pointing from
// the wall into the interior.
func (t Tank) Discretize(spacing float64) (pos, normal []r2.Vec) {
	outer := t.Interior.Expand(t.Thickness)
	for _, p := range Lattice(outer, spacing) {
		if t.Interior.Contains(p) {
			continue
		}
		pos = append(pos, p)
		normal = append(normal, r2.Unit(r2.Sub(t.Interior.Clamp(p), p)))
	}
	return pos, normal
}

// Bounds is the box enclosing the tank and its wall band.
func (t Tank) Bounds() Rect {
	return t.Interior.Expand(t.Thickness)
}
