package viz

import (
	"strings"

	"github.com/san-kum/dropsim/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Braille cells are 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a Braille dot grid of Width x Height characters, i.e.
// 2*Width x 4*Height dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y); y grows downwards. Dots outside the canvas
// are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Projection maps a world rectangle onto the dots of a canvas, y up.
type Projection struct {
	Bounds geometry.Rect
	canvas *Canvas
}

func (c *Canvas) Project(bounds geometry.Rect) Projection {
	return Projection{Bounds: bounds, canvas: c}
}

func (p Projection) Dot(v r2.Vec) (int, int) {
	w, h := 2*p.canvas.Width-1, 4*p.canvas.Height-1
	x := (v.X - p.Bounds.Min.X) / p.Bounds.Width() * float64(w)
	y := (v.Y - p.Bounds.Min.Y) / p.Bounds.Height() * float64(h)
	return int(x + 0.5), h - int(y+0.5)
}

func (p Projection) Plot(v r2.Vec) {
	x, y := p.Dot(v)
	p.canvas.Set(x, y)
}

// Outline draws the border of r.
func (p Projection) Outline(r geometry.Rect) {
	x0, y0 := p.Dot(r.Min)
	x1, y1 := p.Dot(r.Max)
	p.canvas.DrawLine(x0, y0, x1, y0)
	p.canvas.DrawLine(x1, y0, x1, y1)
	p.canvas.DrawLine(x1, y1, x0, y1)
	p.canvas.DrawLine(x0, y1, x0, y0)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
