package key

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestMortonSpreadCompactRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 2, 3, 1023, 1 << 20, (1 << 21) - 1} {
		spread := spread3(uint64(v))
		test.That(t, compact3(spread), test.ShouldEqual, uint64(v))
	}
}

func TestMortonEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][3]uint32{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{5, 9, 17},
		{(1 << 21) - 1, (1 << 21) - 1, (1 << 21) - 1},
	}
	for _, c := range cases {
		encoded := mortonEncode(c[0], c[1], c[2])
		x, y, z := mortonDecode(encoded)
		test.That(t, x, test.ShouldEqual, c[0])
		test.That(t, y, test.ShouldEqual, c[1])
		test.That(t, z, test.ShouldEqual, c[2])
	}
}

func TestCodeKeyRoundTrip(t *testing.T) {
	sys, err := NewSystem(0.1, 16)
	test.That(t, err, test.ShouldBeNil)

	for depth := uint8(0); depth < sys.DepthLevels; depth++ {
		k := sys.CoordToKey(r3.Vector{X: 1.23, Y: -4.56, Z: 7.89}, depth)
		code := CodeFromKey(k)
		test.That(t, code.Depth(), test.ShouldEqual, depth)
		test.That(t, code.ToKey(), test.ShouldResemble, k)
	}
}

// TestChildIndexRoundTrip checks property P9: for any code and depth d,
// code.ToDepth(d).Child(code.ChildIndex(d-1)).ToDepth(d-1) == code.ToDepth(d-1).
func TestChildIndexRoundTrip(t *testing.T) {
	sys, err := NewSystem(0.1, 16)
	test.That(t, err, test.ShouldBeNil)

	leafKey := sys.CoordToKey(r3.Vector{X: 3.21, Y: -9.87, Z: 0.44}, 0)
	code := CodeFromKey(leafKey)

	for d := uint8(16); d >= 1; d-- {
		ancestor := code.ToDepth(d)
		idx := code.ChildIndex(d - 1)
		child := ancestor.Child(idx)
		test.That(t, child, test.ShouldResemble, code.ToDepth(d-1))
		if d == 1 {
			break
		}
	}
}

func TestChildIndexRange(t *testing.T) {
	sys, err := NewSystem(0.1, 8)
	test.That(t, err, test.ShouldBeNil)

	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				offset := r3.Vector{X: float64(x) * 0.05, Y: float64(y) * 0.05, Z: float64(z) * 0.05}
				k := sys.CoordToKey(offset, 0)
				code := CodeFromKey(k)
				idx := code.ChildIndex(0)
				test.That(t, idx, test.ShouldBeBetweenOrEqual, 0, 7)
			}
		}
	}
}

func TestCodeEqual(t *testing.T) {
	sys, err := NewSystem(0.1, 8)
	test.That(t, err, test.ShouldBeNil)

	a := CodeFromKey(sys.CoordToKey(r3.Vector{X: 1, Y: 1, Z: 1}, 0))
	b := CodeFromKey(sys.CoordToKey(r3.Vector{X: 1, Y: 1, Z: 1}, 0))
	c := CodeFromKey(sys.CoordToKey(r3.Vector{X: 2, Y: 1, Z: 1}, 0))

	test.That(t, a.Equal(b), test.ShouldBeTrue)
	test.That(t, a.Equal(c), test.ShouldBeFalse)
	test.That(t, a == b, test.ShouldBeTrue)
}
