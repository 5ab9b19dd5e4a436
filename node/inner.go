package node

// ChildSet is the tagged variant held by an Inner node: it is either
// absent (the node is collapsed and behaves as a uniform cube), a set of
// eight Leaf children (when the inner node is one level above the
// leaves), or a set of eight Inner children. The tag is recoverable from
// the parent's own depth in the tree (depth 1 implies LeafChildren, any
// deeper inner node implies InnerChildren), so ChildSet itself carries no
// explicit discriminant field — callers switch on the dynamic type.
type ChildSet interface {
	isChildSet()
	// Size always reports 8; present for documentation/debug purposes.
	Size() int
}

// LeafChildren is the child set of an inner node at depth 1. It is always
// exactly eight elements when non-nil.
type LeafChildren []Leaf

func (LeafChildren) isChildSet() {}

// Size returns 8.
func (c LeafChildren) Size() int { return len(c) }

// InnerChildren is the child set of an inner node at depth > 1. It is
// always exactly eight elements when non-nil, and owns each child
// outright: there is no sharing and no back-pointer to the parent.
type InnerChildren []Inner

func (InnerChildren) isChildSet() {}

// Size returns 8.
func (c InnerChildren) Size() int { return len(c) }

// Inner is an interior node of the octree. Its own Leaf field caches the
// roll-up of its descendants: logit is the maximum log-odds over the
// subtree, and ContainsFree/ContainsUnknown summarize whether any
// descendant leaf is classified free or unknown under the octree's
// current thresholds. When AllChildrenSame is true, Children is nil and
// the node behaves as a single uniform cube of value Leaf.Logit
// (invariant I1); expand() materializes Children on demand and prune()
// releases it.
type Inner struct {
	Leaf            Leaf
	ContainsFree    bool
	ContainsUnknown bool
	AllChildrenSame bool
	Children        ChildSet
}

// NewCollapsedInner returns an inner node with no materialized children,
// representing a uniform cube of the given log-odds value.
func NewCollapsedInner(logit float32) Inner {
	return Inner{
		Leaf:            Leaf{Logit: logit},
		AllChildrenSame: true,
	}
}
