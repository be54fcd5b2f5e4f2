// Package geom holds the integer and real 2D types shared by generation and
// the map. Y grows upwards: Top is y+1.
package geom

import (
	"fmt"

	"deepdelve.ai/internal/sim/world/logic/mathx"
)

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func C(x, y int) Coord { return Coord{X: x, Y: y} }

func (c Coord) String() string { return fmt.Sprintf("[%d %d]", c.X, c.Y) }

func (c Coord) Offset(x, y int) Coord { return Coord{X: c.X + x, Y: c.Y + y} }
func (c Coord) Add(o Coord) Coord     { return Coord{X: c.X + o.X, Y: c.Y + o.Y} }
func (c Coord) Sub(o Coord) Coord     { return Coord{X: c.X - o.X, Y: c.Y - o.Y} }
func (c Coord) AddN(n int) Coord      { return Coord{X: c.X + n, Y: c.Y + n} }
func (c Coord) Scale(n int) Coord     { return Coord{X: c.X * n, Y: c.Y * n} }

func (c Coord) DivEuclid(n int) Coord {
	return Coord{X: mathx.FloorDiv(c.X, n), Y: mathx.FloorDiv(c.Y, n)}
}

func (c Coord) RemEuclid(n int) Coord {
	return Coord{X: mathx.Mod(c.X, n), Y: mathx.Mod(c.Y, n)}
}

// Chunk splits c into (chunk, local) for chunks of the given size.
func (c Coord) Chunk(size int) (Coord, Coord) {
	return c.DivEuclid(size), c.RemEuclid(size)
}

// Distance is the Manhattan distance.
func (c Coord) Distance(o Coord) int {
	return mathx.AbsInt(c.X-o.X) + mathx.AbsInt(c.Y-o.Y)
}

func (c Coord) EuclideanDistance(o Coord) float64 {
	return c.Center().Distance(o.Center())
}

func (c Coord) Min(o Coord) Coord {
	return Coord{X: mathx.MinInt(c.X, o.X), Y: mathx.MinInt(c.Y, o.Y)}
}

func (c Coord) Max(o Coord) Coord {
	return Coord{X: mathx.MaxInt(c.X, o.X), Y: mathx.MaxInt(c.Y, o.Y)}
}

// Between enumerates the inclusive box [min, max] row by row.
func Between(min, max Coord) []Coord {
	if max.X < min.X || max.Y < min.Y {
		return nil
	}
	out := make([]Coord, 0, (max.X-min.X+1)*(max.Y-min.Y+1))
	for y := min.Y; y <= max.Y; y++ {
		for x := min.X; x <= max.X; x++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

func (c Coord) InBox(min, max Coord) bool {
	return c.X >= min.X && c.X <= max.X && c.Y >= min.Y && c.Y <= max.Y
}

func (c Coord) Start() Vec2  { return Vec2{X: float64(c.X), Y: float64(c.Y)} }
func (c Coord) Center() Vec2 { return c.Start().AddN(0.5) }
func (c Coord) Bounds() Rect { return Rect{Position: c.Start(), Size: V(1, 1)} }

func (c Coord) Top() Coord         { return c.Offset(0, 1) }
func (c Coord) Bottom() Coord      { return c.Offset(0, -1) }
func (c Coord) Left() Coord        { return c.Offset(-1, 0) }
func (c Coord) Right() Coord       { return c.Offset(1, 0) }
func (c Coord) TopLeft() Coord     { return c.Offset(-1, 1) }
func (c Coord) TopRight() Coord    { return c.Offset(1, 1) }
func (c Coord) BottomLeft() Coord  { return c.Offset(-1, -1) }
func (c Coord) BottomRight() Coord { return c.Offset(1, -1) }

// Adjacent returns the orthogonal neighbours in a fixed order.
func (c Coord) Adjacent() [4]Coord {
	return [4]Coord{c.Top(), c.Bottom(), c.Left(), c.Right()}
}
