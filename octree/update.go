package octree

import (
	"github.com/golang/geo/r3"

	"github.com/ISWBenjaminKaiser/ufomap/key"
	"github.com/ISWBenjaminKaiser/ufomap/node"
)

func clampLogit(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// shortCircuit implements §4.3's early-out: it reports whether a node's
// cached logit has already reached the clamp bound an update is pushing
// toward. For a leaf or collapsed node that makes the update a no-op. An
// expanded node caches the maximum over its subtree, so at or below
// clamp_min nothing below it can fall further, but at clamp_max lower
// descendants can still rise; updateNodeValueRec therefore only stops
// early on the way down at collapsed nodes or for non-positive deltas.
func (o *Octree) shortCircuit(logit, delta float32) bool {
	return (delta >= 0 && logit >= o.clampMaxLog) || (delta <= 0 && logit <= o.clampMinLog)
}

func (o *Octree) computeNewLogit(logit, delta float32, set bool) float32 {
	v := logit + delta
	if set {
		v = delta
	}
	return clampLogit(v, o.clampMinLog, o.clampMaxLog)
}

func (o *Octree) applyToLeaf(l *node.Leaf, delta float32, set bool) bool {
	if !set && o.shortCircuit(l.Logit, delta) {
		return false
	}
	newLogit := o.computeNewLogit(l.Logit, delta, set)
	changed := newLogit != l.Logit
	l.Logit = newLogit
	return changed
}

// applyToInner applies delta/set at n itself, which sits at the given
// (non-zero) depth. When the resulting value is no longer occupied the
// subtree is pruned; otherwise, if n has materialized children, the same
// delta is fanned out to all eight of them before n's summary is rolled
// up — this is what keeps I2/I3 correct when a bulk update lands on an
// inner code rather than a depth-0 leaf (spec.md §4.3).
func (o *Octree) applyToInner(n *node.Inner, depth uint8, delta float32, set bool) bool {
	if !set && o.shortCircuit(n.Leaf.Logit, delta) {
		return false
	}
	newLogit := o.computeNewLogit(n.Leaf.Logit, delta, set)
	changed := newLogit != n.Leaf.Logit
	n.Leaf.Logit = newLogit

	becameNonOccupied := !n.Leaf.IsOccupied(o.occupancyLog)
	switch {
	case becameNonOccupied:
		if !n.AllChildrenSame {
			o.prune(n, depth, false)
			changed = true
		} else {
			n.ContainsFree = n.Leaf.IsFree(o.freeLog)
			n.ContainsUnknown = n.Leaf.IsUnknown(o.occupancyLog, o.freeLog)
		}
	case !n.AllChildrenSame:
		switch c := n.Children.(type) {
		case node.LeafChildren:
			for i := range c {
				o.applyToLeaf(&c[i], delta, set)
			}
		case node.InnerChildren:
			for i := range c {
				o.applyToInner(&c[i], depth-1, delta, set)
			}
		}
		if o.updateInner(n, depth) {
			changed = true
		}
	default:
		n.ContainsFree = n.Leaf.IsFree(o.freeLog)
		n.ContainsUnknown = n.Leaf.IsUnknown(o.occupancyLog, o.freeLog)
	}
	return changed
}

// updateNodeValueRec walks from n (at currentDepth) down to code's depth,
// expanding collapsed nodes along the way, applying the update at the
// target, and rolling the change back up through update_inner,
// recording a change-set entry at every level whose fields actually
// moved (spec.md §4.3).
func (o *Octree) updateNodeValueRec(n *node.Inner, currentDepth uint8, code key.Code, delta float32, set bool) bool {
	target := code.Depth()
	if currentDepth == target {
		changed := o.applyToInner(n, currentDepth, delta, set)
		if changed {
			o.recordChange(code.ToDepth(currentDepth))
		}
		return changed
	}

	if !set && (n.AllChildrenSame || delta <= 0) && o.shortCircuit(n.Leaf.Logit, delta) {
		return false
	}

	o.expand(n, currentDepth)

	if currentDepth == 1 {
		leaves := n.Children.(node.LeafChildren)
		idx := code.ChildIndex(0)
		leafChanged := o.applyToLeaf(&leaves[idx], delta, set)
		if leafChanged {
			o.recordChange(code.ToDepth(0))
		}
		if !leafChanged {
			return false
		}
		changed := o.updateInner(n, currentDepth)
		if changed {
			o.recordChange(code.ToDepth(currentDepth))
		}
		return changed
	}

	inners := n.Children.(node.InnerChildren)
	idx := code.ChildIndex(currentDepth - 1)
	childChanged := o.updateNodeValueRec(&inners[idx], currentDepth-1, code, delta, set)
	if !childChanged {
		return false
	}
	changed := o.updateInner(n, currentDepth)
	if changed {
		o.recordChange(code.ToDepth(currentDepth))
	}
	return changed
}

// UpdateNodeValue adds delta (in log-odds) to the node addressed by code,
// clamped to [clamp_min_log, clamp_max_log].
func (o *Octree) UpdateNodeValue(code key.Code, delta float32) {
	o.updateNodeValueRec(&o.root, o.sys.DepthLevels, code, delta, false)
}

// SetNodeValue replaces the logit of the node addressed by code with
// value, clamped to [clamp_min_log, clamp_max_log].
func (o *Octree) SetNodeValue(code key.Code, value float32) {
	o.updateNodeValueRec(&o.root, o.sys.DepthLevels, code, value, true)
}

// UpdateNodeValueAtKey is the Key-addressed overload of UpdateNodeValue.
func (o *Octree) UpdateNodeValueAtKey(k key.Key, delta float32) {
	o.UpdateNodeValue(key.CodeFromKey(k), delta)
}

// UpdateNodeValueAtCoord is the coordinate-addressed overload of
// UpdateNodeValue, at the given depth.
func (o *Octree) UpdateNodeValueAtCoord(c r3.Vector, depth uint8, delta float32) {
	o.UpdateNodeValueAtKey(o.sys.CoordToKey(c, depth), delta)
}

// SetNodeValueAtKey is the Key-addressed overload of SetNodeValue.
func (o *Octree) SetNodeValueAtKey(k key.Key, value float32) {
	o.SetNodeValue(key.CodeFromKey(k), value)
}

// SetNodeValueAtCoord is the coordinate-addressed overload of
// SetNodeValue, at the given depth.
func (o *Octree) SetNodeValueAtCoord(c r3.Vector, depth uint8, value float32) {
	o.SetNodeValueAtKey(o.sys.CoordToKey(c, depth), value)
}

// IntegrateHit applies a single depth-0 occupancy hit at pt.
func (o *Octree) IntegrateHit(pt r3.Vector) {
	o.UpdateNodeValueAtCoord(pt, 0, o.probHitLog)
}

// IntegrateHitAtKey is the Key-addressed overload of IntegrateHit.
func (o *Octree) IntegrateHitAtKey(k key.Key) {
	o.UpdateNodeValueAtKey(k, o.probHitLog)
}

// IntegrateHitAtCode is the Code-addressed overload of IntegrateHit.
func (o *Octree) IntegrateHitAtCode(c key.Code) {
	o.UpdateNodeValue(c, o.probHitLog)
}

// IntegrateMiss applies a single depth-0 occupancy miss at pt.
func (o *Octree) IntegrateMiss(pt r3.Vector) {
	o.UpdateNodeValueAtCoord(pt, 0, o.probMissLog)
}

// IntegrateMissAtKey is the Key-addressed overload of IntegrateMiss.
func (o *Octree) IntegrateMissAtKey(k key.Key) {
	o.UpdateNodeValueAtKey(k, o.probMissLog)
}

// IntegrateMissAtCode is the Code-addressed overload of IntegrateMiss.
func (o *Octree) IntegrateMissAtCode(c key.Code) {
	o.UpdateNodeValue(c, o.probMissLog)
}
