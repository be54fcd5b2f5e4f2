// Package triangulation implements incremental Bowyer–Watson Delaunay
// triangulation over room centres.
package triangulation

import (
	"math"

	"deepdelve.ai/internal/sim/world/logic/geom"
)

const vertexEpsilon = 0.001

// superMargin scales the bounding box so the super triangle encloses every
// input point with room to spare.
const superMargin = 20.0

type Triangle [3]geom.Vec2

type Edge [2]geom.Vec2

func (t Triangle) Edges() [3]Edge {
	return [3]Edge{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}}
}

func (t Triangle) hasVertex(v geom.Vec2) bool {
	return t[0].Near(v, vertexEpsilon) || t[1].Near(v, vertexEpsilon) || t[2].Near(v, vertexEpsilon)
}

// circumcircleContains reports whether p lies inside or on the circumcircle.
// A degenerate (collinear) triangle contains nothing.
func (t Triangle) circumcircleContains(p geom.Vec2) bool {
	a, b, c := t[0], t[1], t[2]
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-12 {
		return false
	}
	a2 := a.LengthSquared()
	b2 := b.LengthSquared()
	c2 := c.LengthSquared()
	center := geom.V(
		(a2*(b.Y-c.Y)+b2*(c.Y-a.Y)+c2*(a.Y-b.Y))/d,
		(a2*(c.X-b.X)+b2*(a.X-c.X)+c2*(b.X-a.X))/d,
	)
	return p.DistanceSquared(center) <= a.DistanceSquared(center)
}

func sameEdge(e, o Edge) bool {
	return (e[0].Near(o[0], vertexEpsilon) && e[1].Near(o[1], vertexEpsilon)) ||
		(e[0].Near(o[1], vertexEpsilon) && e[1].Near(o[0], vertexEpsilon))
}

func superTriangle(vertices []geom.Vec2) Triangle {
	min := vertices[0]
	max := vertices[0]
	for _, v := range vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	delta := max.Sub(min)
	deltaMax := math.Max(delta.X, delta.Y)
	if deltaMax == 0 {
		deltaMax = 1
	}
	mid := min.Add(max).Scale(0.5)
	return Triangle{
		geom.V(mid.X-superMargin*deltaMax, mid.Y-deltaMax),
		geom.V(mid.X, mid.Y+superMargin*deltaMax),
		geom.V(mid.X+superMargin*deltaMax, mid.Y-deltaMax),
	}
}

// Triangulate returns the Delaunay triangles of vertices. Fewer than three
// vertices (or all collinear) yield no triangles.
func Triangulate(vertices []geom.Vec2) []Triangle {
	if len(vertices) == 0 {
		return nil
	}

	super := superTriangle(vertices)
	triangles := []Triangle{super}

	for _, v := range vertices {
		var bad []Triangle
		kept := triangles[:0:0]
		for _, t := range triangles {
			if t.circumcircleContains(v) {
				bad = append(bad, t)
			} else {
				kept = append(kept, t)
			}
		}

		var polygon []Edge
		for i, t := range bad {
			for _, e := range t.Edges() {
				shared := false
				for j, o := range bad {
					if i == j {
						continue
					}
					for _, oe := range o.Edges() {
						if sameEdge(e, oe) {
							shared = true
							break
						}
					}
					if shared {
						break
					}
				}
				if !shared {
					polygon = append(polygon, e)
				}
			}
		}

		for _, e := range polygon {
			kept = append(kept, Triangle{e[0], e[1], v})
		}
		triangles = kept
	}

	out := triangles[:0]
	for _, t := range triangles {
		if t.hasVertex(super[0]) || t.hasVertex(super[1]) || t.hasVertex(super[2]) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// UniqueEdges lists every undirected edge once, in first-seen order.
func UniqueEdges(triangles []Triangle) []Edge {
	var out []Edge
	for _, t := range triangles {
		for _, e := range t.Edges() {
			dup := false
			for _, o := range out {
				if sameEdge(e, o) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, e)
			}
		}
	}
	return out
}
