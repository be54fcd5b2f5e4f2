package mathx

import "math/bits"

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func Mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

const fxSeed32 uint32 = 0x9e3779b9

func fxAdd(h, word uint32) uint32 {
	return (bits.RotateLeft32(h, 5) ^ word) * fxSeed32
}

// Hash32 hashes a pair of 32-bit coordinate words. It is stable across
// platforms and runs; chunk and entry streams are seeded from it.
func Hash32(x, y int) uint32 {
	h := fxAdd(0, uint32(int32(x)))
	return fxAdd(h, uint32(int32(y)))
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// TileVariant picks one of n cosmetic variants for the tile at (x, y).
// It never feeds back into generation.
func TileVariant(seed uint32, x, y, n int) int {
	if n <= 1 {
		return 0
	}
	v := uint64(Hash32(x, y)) ^ (uint64(seed) << 32)
	return int(mix64(v) % uint64(n))
}
