package octree

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/ISWBenjaminKaiser/ufomap/key"
	"github.com/ISWBenjaminKaiser/ufomap/node"
)

func codeAtDepth(t *testing.T, sys key.System, pt r3.Vector, depth uint8) key.Code {
	t.Helper()
	return key.CodeFromKey(sys.CoordToKey(pt, depth))
}

func keyCodeFor(o *Octree, pt r3.Vector, depth uint8) key.Code {
	return key.CodeFromKey(o.System().CoordToKey(pt, depth))
}

// P1: setting a single voxel's value to something different from the
// uniform root expands the tree; reading it back returns the value.
func TestSetNodeValueExpandsAndReadsBack(t *testing.T) {
	o := newTestTree(t)
	pt := r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}

	o.SetNodeValueAtCoord(pt, 0, 4)
	test.That(t, o.IsOccupied(pt), test.ShouldBeTrue)
	test.That(t, o.Size(), test.ShouldBeGreaterThan, 1)
}

// P2 (I1/I5): setting every child of an expanded node back to the same
// value collapses it again (when automatic_pruning is on).
func TestUniformChildrenCollapse(t *testing.T) {
	o := newTestTree(t)
	sys := o.System()

	// Expand one depth-1 node then drive every one of its eight
	// children to the same value; it should collapse back down. Its
	// ancestors at depths 2..DepthLevels stay expanded, since each still
	// has seven siblings at the old value.
	base := r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}
	code := codeAtDepth(t, sys, base, 1)

	for i := 0; i < 8; i++ {
		childCode := code.Child(i)
		o.SetNodeValue(childCode, 3)
	}

	test.That(t, o.GetNumInnerNodes(), test.ShouldEqual, int(o.sys.DepthLevels)-1)
}

// P3: disabling automatic pruning keeps the tree expanded even when
// children agree.
func TestAutomaticPruningDisabledKeepsExpansion(t *testing.T) {
	o := newTestTree(t)
	o.SetAutomaticPruning(false)
	sys := o.System()

	base := r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}
	code := codeAtDepth(t, sys, base, 1)
	for i := 0; i < 8; i++ {
		o.SetNodeValue(code.Child(i), 3)
	}

	test.That(t, o.GetNumInnerNodes(), test.ShouldBeGreaterThan, 0)
}

// Short-circuit: once a logit is clamped at the max, further positive
// deltas are no-ops.
func TestShortCircuitAtClamp(t *testing.T) {
	o := newTestTree(t)
	pt := r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}

	o.SetNodeValueAtCoord(pt, 0, o.clampMaxLog)
	o.UpdateNodeValueAtCoord(pt, 0, 1000)

	nt, _ := o.GetNodeAtCoord(pt, 0)
	test.That(t, nt, test.ShouldEqual, NodeOccupied)
}

// A value pushed below clamp_min is clamped, not driven further down.
func TestClampMinBound(t *testing.T) {
	o := newTestTree(t)
	pt := r3.Vector{X: 0.05, Y: 0.05, Z: 0.05}

	o.SetNodeValueAtCoord(pt, 0, -1000)
	l, _ := o.lookup(keyCodeFor(o, pt, 0))
	test.That(t, float64(l.Logit), test.ShouldAlmostEqual, float64(o.clampMinLog), 1e-4)
}

// I6: expanding and pruning back nets zero change in node counts.
func TestExpandPruneRoundTripCounts(t *testing.T) {
	o := newTestTree(t)
	before := o.Size()

	o.expand(&o.root, o.sys.DepthLevels)
	test.That(t, o.Size(), test.ShouldBeGreaterThan, before)

	o.prune(&o.root, o.sys.DepthLevels, true)
	test.That(t, o.Size(), test.ShouldEqual, before)
}

// isCollapsible agrees with the all-children-equal definition.
func TestIsCollapsible(t *testing.T) {
	same := node.LeafChildren{{Logit: 1}, {Logit: 1}, {Logit: 1}, {Logit: 1}, {Logit: 1}, {Logit: 1}, {Logit: 1}, {Logit: 1}}
	test.That(t, isCollapsible(same), test.ShouldBeTrue)

	diff := node.LeafChildren{{Logit: 1}, {Logit: 2}, {Logit: 1}, {Logit: 1}, {Logit: 1}, {Logit: 1}, {Logit: 1}, {Logit: 1}}
	test.That(t, isCollapsible(diff), test.ShouldBeFalse)
}
