package octree

import (
	"github.com/golang/geo/r3"

	"github.com/ISWBenjaminKaiser/ufomap/key"
	"github.com/ISWBenjaminKaiser/ufomap/node"
)

// lookup descends from the root toward code, stopping as soon as it
// reaches a collapsed node (invariant I1 means nothing finer than that
// carries any more information) or code's own depth, whichever comes
// first. It always succeeds: every code maps to some terminal node,
// worst case the root itself.
func (o *Octree) lookup(code key.Code) (node.Leaf, uint8) {
	n := &o.root
	depth := o.sys.DepthLevels
	target := code.Depth()

	for depth > target && !n.AllChildrenSame {
		idx := code.ChildIndex(depth - 1)
		switch c := n.Children.(type) {
		case node.LeafChildren:
			return c[idx], 0
		case node.InnerChildren:
			n = &c[idx]
			depth--
		}
	}
	return n.Leaf, depth
}

// classify turns a stored logit into a NodeType under the tree's current
// thresholds.
func (o *Octree) classify(l node.Leaf) NodeType {
	switch {
	case l.IsOccupied(o.occupancyLog):
		return NodeOccupied
	case l.IsFree(o.freeLog):
		return NodeFree
	default:
		return NodeUnknown
	}
}

// GetNode returns the terminal node's classification and the depth at
// which resolution actually terminated for code (which may be coarser
// than code.Depth() if an ancestor was collapsed).
func (o *Octree) GetNode(code key.Code) (NodeType, uint8) {
	l, depth := o.lookup(code)
	return o.classify(l), depth
}

// GetNodeAtKey is the Key-addressed overload of GetNode.
func (o *Octree) GetNodeAtKey(k key.Key) (NodeType, uint8) {
	return o.GetNode(key.CodeFromKey(k))
}

// GetNodeAtCoord is the coordinate-addressed overload of GetNode.
func (o *Octree) GetNodeAtCoord(c r3.Vector, depth uint8) (NodeType, uint8) {
	return o.GetNodeAtKey(o.sys.CoordToKey(c, depth))
}

// IsOccupied reports whether the voxel at pt is classified occupied.
func (o *Octree) IsOccupied(pt r3.Vector) bool {
	t, _ := o.GetNodeAtCoord(pt, 0)
	return t == NodeOccupied
}

// IsFree reports whether the voxel at pt is classified free.
func (o *Octree) IsFree(pt r3.Vector) bool {
	t, _ := o.GetNodeAtCoord(pt, 0)
	return t == NodeFree
}

// IsUnknown reports whether the voxel at pt is classified unknown.
func (o *Octree) IsUnknown(pt r3.Vector) bool {
	t, _ := o.GetNodeAtCoord(pt, 0)
	return t == NodeUnknown
}

// ContainsOccupied reports whether the node addressed by code, or any of
// its descendants, is classified occupied. Unlike contains_free/
// contains_unknown this needs no separate cached flag: invariant I2
// (an inner node's logit is the max over its subtree) means the node's
// own logit already tells whether any descendant is occupied.
func (o *Octree) ContainsOccupied(code key.Code) bool {
	l, _ := o.lookup(code)
	return l.IsOccupied(o.occupancyLog)
}

// ContainsFree reports whether the subtree rooted at code contains any
// descendant (or itself) classified free, using the cached
// contains_free summary where the descent stays inside materialized
// nodes.
func (o *Octree) ContainsFree(code key.Code) bool {
	n := &o.root
	depth := o.sys.DepthLevels
	target := code.Depth()

	for depth > target {
		if n.AllChildrenSame {
			return n.Leaf.IsFree(o.freeLog)
		}
		idx := code.ChildIndex(depth - 1)
		switch c := n.Children.(type) {
		case node.LeafChildren:
			return c[idx].IsFree(o.freeLog)
		case node.InnerChildren:
			n = &c[idx]
			depth--
		}
	}
	if n.AllChildrenSame {
		return n.Leaf.IsFree(o.freeLog)
	}
	return n.ContainsFree
}

// ContainsUnknown is ContainsFree's unknown-classification counterpart.
func (o *Octree) ContainsUnknown(code key.Code) bool {
	n := &o.root
	depth := o.sys.DepthLevels
	target := code.Depth()

	for depth > target {
		if n.AllChildrenSame {
			return n.Leaf.IsUnknown(o.occupancyLog, o.freeLog)
		}
		idx := code.ChildIndex(depth - 1)
		switch c := n.Children.(type) {
		case node.LeafChildren:
			return c[idx].IsUnknown(o.occupancyLog, o.freeLog)
		case node.InnerChildren:
			n = &c[idx]
			depth--
		}
	}
	if n.AllChildrenSame {
		return n.Leaf.IsUnknown(o.occupancyLog, o.freeLog)
	}
	return n.ContainsUnknown
}
