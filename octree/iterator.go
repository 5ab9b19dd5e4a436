package octree

import (
	"github.com/golang/geo/r3"

	"github.com/ISWBenjaminKaiser/ufomap/bound"
	"github.com/ISWBenjaminKaiser/ufomap/key"
	"github.com/ISWBenjaminKaiser/ufomap/node"
)

// Filter selects which classifications an iterator yields. A zero-value
// Filter matches nothing; use DefaultFilter for "everything".
type Filter struct {
	Occupied bool
	Free     bool
	Unknown  bool
	// Contains, when set, matches a node if ANY descendant satisfies the
	// Occupied/Free/Unknown bits set above, rather than requiring the
	// node's own classification to match (§4.7).
	Contains bool
}

// DefaultFilter matches every terminal node regardless of classification.
func DefaultFilter() Filter {
	return Filter{Occupied: true, Free: true, Unknown: true}
}

func (f Filter) matchesOwn(t NodeType) bool {
	switch t {
	case NodeOccupied:
		return f.Occupied
	case NodeFree:
		return f.Free
	default:
		return f.Unknown
	}
}

func (f Filter) matchesContains(o *Octree, n *node.Inner, code key.Code) bool {
	if f.Occupied && n.Leaf.IsOccupied(o.occupancyLog) {
		return true
	}
	if f.Free && (n.ContainsFree || n.Leaf.IsFree(o.freeLog)) {
		return true
	}
	if f.Unknown && (n.ContainsUnknown || n.Leaf.IsUnknown(o.occupancyLog, o.freeLog)) {
		return true
	}
	return false
}

// Entry is one node visited by an iterator.
type Entry struct {
	Code  key.Code
	Type  NodeType
	Depth uint8
}

func (o *Octree) centerAndHalf(code key.Code) (r3.Vector, float64) {
	depth := code.Depth()
	center := o.sys.KeyToCoord(code.ToKey())
	return center, o.sys.NodeHalfSize(depth)
}

func (o *Octree) nodeMatches(n *node.Inner, code key.Code, f Filter) bool {
	if f.Contains {
		return f.matchesContains(o, n, code)
	}
	return f.matchesOwn(o.classify(n.Leaf))
}

// walk performs the shared depth-first descent for both iterator kinds.
// visitTree is called for every inner node at depth >= minDepth before
// descending into it (whether or not it is terminal); visitLeaf is
// called only for terminal nodes (collapsed, or true depth-0 leaves).
func (o *Octree) walk(minDepth uint8, vol bound.Volume, f Filter, visitTree func(Entry) bool, visitLeaf func(Entry) bool) {
	if vol == nil {
		vol = bound.All()
	}
	o.walkNode(&o.root, o.sys.DepthLevels, o.rootCode(), minDepth, vol, f, visitTree, visitLeaf)
}

// rootCode returns a Code of depth DepthLevels whose bits are all clear.
// Since every Code operation below the root only ever reads or writes
// bits strictly below its own depth, the root's own bit pattern is never
// inspected — zero is as good as any other value.
func (o *Octree) rootCode() key.Code {
	return key.CodeFromKey(key.Key{Depth: 0}).ToDepth(o.sys.DepthLevels)
}

func (o *Octree) walkNode(n *node.Inner, depth uint8, code key.Code, minDepth uint8, vol bound.Volume, f Filter, visitTree, visitLeaf func(Entry) bool) bool {
	center, half := o.centerAndHalf(code)
	if !vol.Intersects(center, half) {
		return false
	}

	terminal := n.AllChildrenSame

	if depth >= minDepth {
		e := Entry{Code: code, Type: o.classify(n.Leaf), Depth: depth}
		if o.nodeMatches(n, code, f) {
			if visitTree(e) {
				return true
			}
		}
	}

	if terminal {
		if depth < minDepth {
			return false
		}
		e := Entry{Code: code, Type: o.classify(n.Leaf), Depth: depth}
		if o.nodeMatches(n, code, f) {
			return visitLeaf(e)
		}
		return false
	}

	switch c := n.Children.(type) {
	case node.LeafChildren:
		if minDepth > 0 {
			return false
		}
		for i := 0; i < 8; i++ {
			childCode := code.Child(i)
			leafCenter, leafHalf := o.centerAndHalf(childCode)
			if !vol.Intersects(leafCenter, leafHalf) {
				continue
			}
			wrapped := node.NewCollapsedInner(c[i].Logit)
			e := Entry{Code: childCode, Type: o.classify(wrapped.Leaf), Depth: 0}
			if o.nodeMatches(&wrapped, childCode, f) {
				if visitLeaf(e) {
					return true
				}
			}
		}
	case node.InnerChildren:
		for i := range c {
			if o.walkNode(&c[i], depth-1, code.Child(i), minDepth, vol, f, visitTree, visitLeaf) {
				return true
			}
		}
	}
	return false
}

// TreeIterator invokes fn for every inner node at depth >= minDepth whose
// classification matches f and whose AABB intersects vol (nil means
// include-all), in deterministic child-index order. fn returning true
// stops the walk early.
func (o *Octree) TreeIterator(minDepth uint8, vol bound.Volume, f Filter, fn func(Entry) bool) {
	o.walk(minDepth, vol, f, fn, func(Entry) bool { return false })
}

// LeafIterator invokes fn for every terminal node (true leaf or
// collapsed inner node) at depth >= minDepth matching f and vol, in
// deterministic child-index order.
func (o *Octree) LeafIterator(minDepth uint8, vol bound.Volume, f Filter, fn func(Entry) bool) {
	o.walk(minDepth, vol, f, func(Entry) bool { return false }, fn)
}

// ChildCode returns the Code of code's child octant i (0..7), or an
// ArgumentError if i is out of range (spec.md §7's "bad child index").
func (o *Octree) ChildCode(code key.Code, i int) (key.Code, error) {
	if i < 0 || i > 7 {
		return key.Code{}, NewArgumentError("child index %d out of range [0,7]", i)
	}
	return code.Child(i), nil
}

// leavesAtDepth collects every terminal node's Code whose own depth is
// exactly depth, used by GetMetricMin/Max/Size (§4.5).
func (o *Octree) leavesAtDepth(depth uint8) []key.Code {
	var out []key.Code
	o.LeafIterator(depth, nil, DefaultFilter(), func(e Entry) bool {
		if e.Depth == depth {
			out = append(out, e.Code)
		}
		return false
	})
	return out
}
