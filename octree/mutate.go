package octree

import "github.com/ISWBenjaminKaiser/ufomap/node"

// expand materializes n's children array if n is currently collapsed.
// Idempotent: a no-op when n is already expanded. depth is n's own
// depth; depth 1 allocates LeafChildren, anything deeper allocates
// InnerChildren (spec.md §4.2).
func (o *Octree) expand(n *node.Inner, depth uint8) {
	if !n.AllChildrenSame {
		return
	}
	value := n.Leaf.Logit
	containsFree := n.ContainsFree
	containsUnknown := n.ContainsUnknown

	if depth == 1 {
		leaves := make(node.LeafChildren, 8)
		for i := range leaves {
			leaves[i] = node.Leaf{Logit: value}
		}
		n.Children = leaves
		o.numLeafNodes += 8
	} else {
		inners := make(node.InnerChildren, 8)
		for i := range inners {
			inners[i] = node.Inner{
				Leaf:            node.Leaf{Logit: value},
				ContainsFree:    containsFree,
				ContainsUnknown: containsUnknown,
				AllChildrenSame: true,
			}
		}
		n.Children = inners
		o.numInnerLeafNodes += 8
	}
	n.AllChildrenSame = false
	o.numInnerLeafNodes--
	o.numInnerNodes++
}

// decrementSubtreeCounts removes n, and everything materialized under
// it, from the tree's node-count bookkeeping. It is used only on a
// subtree that is about to be discarded outright (prune's released
// children), never on a node that survives as a collapsed leaf.
func (o *Octree) decrementSubtreeCounts(n *node.Inner, depth uint8) {
	if n.AllChildrenSame {
		o.numInnerLeafNodes--
		return
	}
	switch c := n.Children.(type) {
	case node.LeafChildren:
		o.numLeafNodes -= int64(len(c))
	case node.InnerChildren:
		for i := range c {
			o.decrementSubtreeCounts(&c[i], depth-1)
		}
	}
	o.numInnerNodes--
}

// prune releases n's children (recursively, for depth > 1) and marks n
// collapsed. If automatic_pruning is disabled and manual is false,
// pruning is skipped entirely — the tree keeps its expanded
// representation even though it is collapsible (spec.md §4.2).
func (o *Octree) prune(n *node.Inner, depth uint8, manual bool) {
	if n.AllChildrenSame {
		return
	}
	if !o.automaticPruning && !manual {
		o.logger.Debug("automatic pruning disabled, keeping expanded node collapsible but unpruned")
		return
	}

	switch c := n.Children.(type) {
	case node.LeafChildren:
		o.numLeafNodes -= int64(len(c))
	case node.InnerChildren:
		for i := range c {
			o.decrementSubtreeCounts(&c[i], depth-1)
		}
	}

	n.Children = nil
	n.AllChildrenSame = true
	n.ContainsFree = n.Leaf.IsFree(o.freeLog)
	n.ContainsUnknown = n.Leaf.IsUnknown(o.occupancyLog, o.freeLog)

	o.numInnerNodes--
	o.numInnerLeafNodes++
}

// isCollapsible reports whether all eight children hold the same logit
// and, for inner children, are themselves collapsed (spec.md §4.2).
func isCollapsible(children node.ChildSet) bool {
	switch c := children.(type) {
	case node.LeafChildren:
		first := c[0].Logit
		for _, l := range c[1:] {
			if l.Logit != first {
				return false
			}
		}
		return true
	case node.InnerChildren:
		first := c[0].Leaf.Logit
		for _, inn := range c {
			if !inn.AllChildrenSame || inn.Leaf.Logit != first {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// updateInner recomputes n's cached summary fields from its (already
// expanded) children, collapsing n if they all agree. It returns whether
// any of n's own fields changed, which callers use to decide whether to
// keep rolling the update up toward the root (spec.md §4.2).
func (o *Octree) updateInner(n *node.Inner, depth uint8) bool {
	if isCollapsible(n.Children) {
		var newLogit float32
		switch c := n.Children.(type) {
		case node.LeafChildren:
			newLogit = c[0].Logit
		case node.InnerChildren:
			newLogit = c[0].Leaf.Logit
		}
		changed := newLogit != n.Leaf.Logit || !n.AllChildrenSame
		n.Leaf.Logit = newLogit
		o.prune(n, depth, false)
		return changed
	}

	oldLogit, oldFree, oldUnknown := n.Leaf.Logit, n.ContainsFree, n.ContainsUnknown
	var newLogit float32
	var newFree, newUnknown bool
	switch c := n.Children.(type) {
	case node.LeafChildren:
		newLogit = c[0].Logit
		for _, l := range c {
			if l.Logit > newLogit {
				newLogit = l.Logit
			}
			if l.IsFree(o.freeLog) {
				newFree = true
			}
			if l.IsUnknown(o.occupancyLog, o.freeLog) {
				newUnknown = true
			}
		}
	case node.InnerChildren:
		newLogit = c[0].Leaf.Logit
		for _, inn := range c {
			if inn.Leaf.Logit > newLogit {
				newLogit = inn.Leaf.Logit
			}
			if inn.ContainsFree {
				newFree = true
			}
			if inn.ContainsUnknown {
				newUnknown = true
			}
		}
	}
	n.Leaf.Logit, n.ContainsFree, n.ContainsUnknown = newLogit, newFree, newUnknown
	return newLogit != oldLogit || newFree != oldFree || newUnknown != oldUnknown
}
