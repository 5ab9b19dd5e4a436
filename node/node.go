// Package node defines the two node kinds of the occupancy octree — Leaf
// and Inner — and the thresholds used to classify a stored log-odds value
// as occupied, free or unknown.
package node

// Leaf holds the occupancy estimate for a single voxel as a log-odds
// value, l = ln(p/(1-p)), additive under independent Bayesian updates.
type Leaf struct {
	Logit float32
}

// IsOccupied reports whether l's log-odds is strictly above the
// occupancy threshold.
func (l Leaf) IsOccupied(occupancyLog float32) bool {
	return l.Logit > occupancyLog
}

// IsFree reports whether l's log-odds is strictly below the free
// threshold.
func (l Leaf) IsFree(freeLog float32) bool {
	return l.Logit < freeLog
}

// IsUnknown reports whether l is neither occupied nor free under the
// given thresholds.
func (l Leaf) IsUnknown(occupancyLog, freeLog float32) bool {
	return !l.IsOccupied(occupancyLog) && !l.IsFree(freeLog)
}
