package octree

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestLeafIteratorVisitsSingleVoxelInEmptyTree(t *testing.T) {
	o := newTestTree(t)
	visited := 0
	o.LeafIterator(0, nil, DefaultFilter(), func(e Entry) bool {
		visited++
		test.That(t, e.Depth, test.ShouldEqual, o.sys.DepthLevels)
		return false
	})
	test.That(t, visited, test.ShouldEqual, 1)
}

func TestLeafIteratorFiltersByOccupancy(t *testing.T) {
	o := newTestTree(t)
	pt := r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}
	o.SetNodeValueAtCoord(pt, 0, o.clampMaxLog)

	f := Filter{Occupied: true}
	found := false
	o.LeafIterator(0, nil, f, func(e Entry) bool {
		if e.Type == NodeOccupied {
			found = true
		}
		return false
	})
	test.That(t, found, test.ShouldBeTrue)
}

func TestLeafIteratorRespectsMinDepth(t *testing.T) {
	o := newTestTree(t)
	pt := r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}
	o.SetNodeValueAtCoord(pt, 0, o.clampMaxLog)

	deepestSeen := o.sys.DepthLevels
	o.LeafIterator(2, nil, DefaultFilter(), func(e Entry) bool {
		if e.Depth < deepestSeen {
			deepestSeen = e.Depth
		}
		return false
	})
	test.That(t, deepestSeen, test.ShouldBeGreaterThanOrEqualTo, uint8(2))
}

func TestTreeIteratorStopsEarlyWhenFnReturnsTrue(t *testing.T) {
	o := newTestTree(t)
	pt := r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}
	o.SetNodeValueAtCoord(pt, 0, o.clampMaxLog)

	calls := 0
	o.TreeIterator(0, nil, DefaultFilter(), func(e Entry) bool {
		calls++
		return true
	})
	test.That(t, calls, test.ShouldEqual, 1)
}
