package geom

import "math"

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) AddN(n float64) Vec2    { return Vec2{X: v.X + n, Y: v.Y + n} }
func (v Vec2) Scale(n float64) Vec2   { return Vec2{X: v.X * n, Y: v.Y * n} }
func (v Vec2) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Length() float64        { return math.Sqrt(v.LengthSquared()) }

func (v Vec2) DistanceSquared(o Vec2) float64 { return v.Sub(o).LengthSquared() }
func (v Vec2) Distance(o Vec2) float64        { return math.Sqrt(v.DistanceSquared(o)) }

// TaxicabDistance is |dx| + |dy|.
func (v Vec2) TaxicabDistance(o Vec2) float64 {
	return math.Abs(v.X-o.X) + math.Abs(v.Y-o.Y)
}

func (v Vec2) Min(o Vec2) Vec2 { return Vec2{X: math.Min(v.X, o.X), Y: math.Min(v.Y, o.Y)} }
func (v Vec2) Max(o Vec2) Vec2 { return Vec2{X: math.Max(v.X, o.X), Y: math.Max(v.Y, o.Y)} }

// Coord floors both components.
func (v Vec2) Coord() Coord {
	return Coord{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y))}
}

// Near reports whether both components differ by less than eps.
func (v Vec2) Near(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) < eps && math.Abs(v.Y-o.Y) < eps
}
