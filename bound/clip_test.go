package bound

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestMoveLineIntoBBXAlreadyInside(t *testing.T) {
	b := AABB{Min: r3.Vector{X: 0, Y: 0, Z: 0}, Max: r3.Vector{X: 1, Y: 1, Z: 1}}
	o, e, ok := MoveLineIntoBBX(b, r3.Vector{X: 0.2, Y: 0.2, Z: 0.2}, r3.Vector{X: 0.8, Y: 0.8, Z: 0.8})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, o, test.ShouldResemble, r3.Vector{X: 0.2, Y: 0.2, Z: 0.2})
	test.That(t, e, test.ShouldResemble, r3.Vector{X: 0.8, Y: 0.8, Z: 0.8})
}

// TestMoveLineIntoBBXCrossing matches scenario S4: a ray from (-1,0,0) to
// (2,0,0) clipped to [0,0,0]-[1,1,1] should behave like (0,0,0)-(1,0,0).
func TestMoveLineIntoBBXCrossing(t *testing.T) {
	b := AABB{Min: r3.Vector{X: 0, Y: 0, Z: 0}, Max: r3.Vector{X: 1, Y: 1, Z: 1}}
	o, e, ok := MoveLineIntoBBX(b, r3.Vector{X: -1, Y: 0, Z: 0}, r3.Vector{X: 2, Y: 0, Z: 0})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, o.X, test.ShouldAlmostEqual, 0.0)
	test.That(t, e.X, test.ShouldAlmostEqual, 1.0)
}

func TestMoveLineIntoBBXOneEndpointOutside(t *testing.T) {
	b := AABB{Min: r3.Vector{X: 0, Y: 0, Z: 0}, Max: r3.Vector{X: 1, Y: 1, Z: 1}}
	o, e, ok := MoveLineIntoBBX(b, r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}, r3.Vector{X: 2, Y: 0.5, Z: 0.5})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, o, test.ShouldResemble, r3.Vector{X: 0.5, Y: 0.5, Z: 0.5})
	test.That(t, e.X, test.ShouldAlmostEqual, 1.0)
}

func TestMoveLineIntoBBXEntirelyOutside(t *testing.T) {
	b := AABB{Min: r3.Vector{X: 0, Y: 0, Z: 0}, Max: r3.Vector{X: 1, Y: 1, Z: 1}}
	_, _, ok := MoveLineIntoBBX(b, r3.Vector{X: 5, Y: 5, Z: 5}, r3.Vector{X: 6, Y: 6, Z: 6})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestAABBIntersects(t *testing.T) {
	b := AABB{Min: r3.Vector{X: 0, Y: 0, Z: 0}, Max: r3.Vector{X: 1, Y: 1, Z: 1}}
	test.That(t, b.Intersects(r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}, 0.1), test.ShouldBeTrue)
	test.That(t, b.Intersects(r3.Vector{X: 10, Y: 10, Z: 10}, 0.1), test.ShouldBeFalse)
	test.That(t, All().Intersects(r3.Vector{X: 1e9, Y: -1e9, Z: 0}, 1), test.ShouldBeTrue)
}
