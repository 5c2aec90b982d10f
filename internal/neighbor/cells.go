package neighbor

import (
	"math"

	"github.com/san-kum/dropsim/internal/body"
	"gonum.org/v1/gonum/spatial/r2"
)

type cellKey struct{ X, Y int }

// CellList is a hashed cell-linked list over one body's particles. Cells are
// as wide as the kernel support, so all neighbours of a point lie in the
// surrounding 3x3 block.
type CellList struct {
	size  float64
	cells map[cellKey][]int
}

func NewCellList(size float64) *CellList {
	return &CellList{size: size, cells: make(map[cellKey][]int)}
}

func (c *CellList) key(p r2.Vec) cellKey {
	return cellKey{X: int(math.Floor(p.X / c.size)), Y: int(math.Floor(p.Y / c.size))}
}

// Update re-bins every particle of b. Indices are inserted in ascending order.
func (c *CellList) Update(b body.Body) {
	for k, v := range c.cells {
		c.cells[k] = v[:0]
	}
	for i := 0; i < b.Len(); i++ {
		k := c.key(b.Position(i))
		c.cells[k] = append(c.cells[k], i)
	}
}

// Visit calls fn for every particle index in the 3x3 block of cells around p,
// in a fixed order.
func (c *CellList) Visit(p r2.Vec, fn func(j int)) {
	center := c.key(p)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for _, j := range c.cells[cellKey{X: center.X + dx, Y: center.Y + dy}] {
				fn(j)
			}
		}
	}
}
