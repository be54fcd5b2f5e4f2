package mathx

import "testing"

func TestFloorDivAndModAgree(t *testing.T) {
	for a := -120; a <= 120; a++ {
		q := FloorDiv(a, 50)
		m := Mod(a, 50)
		if m < 0 || m >= 50 {
			t.Fatalf("Mod(%d,50)=%d out of range", a, m)
		}
		if q*50+m != a {
			t.Fatalf("FloorDiv/Mod mismatch for %d: q=%d m=%d", a, q, m)
		}
	}
}

func TestHash32KnownValues(t *testing.T) {
	if got := Hash32(0, 0); got != 0 {
		t.Fatalf("Hash32(0,0)=%d want 0", got)
	}
	// (rotl(0,5)^1)*k = k; (rotl(k,5)^0)*k
	k := fxSeed32
	want := ((k << 5) | (k >> 27)) * k
	if got := Hash32(1, 0); got != want {
		t.Fatalf("Hash32(1,0)=%d want %d", got, want)
	}
	if Hash32(1, 2) == Hash32(2, 1) {
		t.Fatalf("Hash32 should be order sensitive")
	}
}

func TestTileVariantRange(t *testing.T) {
	for x := -10; x < 10; x++ {
		for y := -10; y < 10; y++ {
			v := TileVariant(7, x, y, 4)
			if v < 0 || v >= 4 {
				t.Fatalf("variant out of range: %d", v)
			}
			if v != TileVariant(7, x, y, 4) {
				t.Fatalf("variant not stable at %d,%d", x, y)
			}
		}
	}
	if TileVariant(7, 3, 3, 1) != 0 {
		t.Fatalf("single variant should be 0")
	}
}
