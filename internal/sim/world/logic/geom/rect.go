package geom

type Rect struct {
	Position Vec2 `json:"position"`
	Size     Vec2 `json:"size"`
}

func R(position, size Vec2) Rect { return Rect{Position: position, Size: size} }

// RectBetween spans [min, max).
func RectBetween(min, max Vec2) Rect { return Rect{Position: min, Size: max.Sub(min)} }

func Focused(center, size Vec2) Rect {
	return Rect{Position: center.Sub(size.Scale(0.5)), Size: size}
}

func (r Rect) Min() Vec2    { return r.Position }
func (r Rect) Max() Vec2    { return r.Position.Add(r.Size) }
func (r Rect) Center() Vec2 { return r.Position.Add(r.Size.Scale(0.5)) }

// Contains is half-open: min inclusive, max exclusive.
func (r Rect) Contains(p Vec2) bool {
	min, max := r.Min(), r.Max()
	return p.X >= min.X && p.X < max.X && p.Y >= min.Y && p.Y < max.Y
}

func (r Rect) Expand(amount float64) Rect {
	return Rect{Position: r.Position.AddN(-amount), Size: r.Size.AddN(amount * 2)}
}

// Coords lists every tile the rectangle touches, edges included.
func (r Rect) Coords() []Coord {
	return Between(r.Min().Coord(), r.Max().Coord())
}
