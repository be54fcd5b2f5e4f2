package geom

import "testing"

func TestChunkSplitRoundTrip(t *testing.T) {
	for x := -130; x <= 130; x += 7 {
		for y := -130; y <= 130; y += 11 {
			c := C(x, y)
			chunk, local := c.Chunk(50)
			if local.X < 0 || local.X >= 50 || local.Y < 0 || local.Y >= 50 {
				t.Fatalf("local out of range for %v: %v", c, local)
			}
			if back := chunk.Scale(50).Add(local); back != c {
				t.Fatalf("round trip %v -> %v,%v -> %v", c, chunk, local, back)
			}
		}
	}
}

func TestBetweenIsRowMajorInclusive(t *testing.T) {
	got := Between(C(1, 1), C(2, 2))
	want := []Coord{C(1, 1), C(2, 1), C(1, 2), C(2, 2)}
	if len(got) != len(want) {
		t.Fatalf("len: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at %d: got %v want %v", i, got[i], want[i])
		}
	}
	if Between(C(3, 3), C(2, 2)) != nil {
		t.Fatalf("inverted box should be empty")
	}
}

func TestRectContainsIsHalfOpen(t *testing.T) {
	r := R(V(0, 0), V(2, 2))
	if !r.Contains(V(0, 0)) {
		t.Fatalf("min should be inside")
	}
	if r.Contains(V(2, 1)) || r.Contains(V(1, 2)) {
		t.Fatalf("max edge should be outside")
	}
	f := Focused(V(5, 5), V(1, 1))
	if f.Min() != V(4.5, 4.5) || f.Max() != V(5.5, 5.5) {
		t.Fatalf("focused rect: %+v", f)
	}
}

func TestDistances(t *testing.T) {
	if d := C(-2, 3).Distance(C(1, -1)); d != 7 {
		t.Fatalf("manhattan: got %d want 7", d)
	}
	if d := V(0, 0).Distance(V(3, 4)); d != 5 {
		t.Fatalf("euclid: got %f want 5", d)
	}
	if d := V(1, 1).TaxicabDistance(V(-1, 2)); d != 3 {
		t.Fatalf("taxicab: got %f want 3", d)
	}
	if V(-0.5, 1.5).Coord() != C(-1, 1) {
		t.Fatalf("Coord should floor")
	}
}
