package octree

import (
	"github.com/golang/geo/r3"

	"github.com/ISWBenjaminKaiser/ufomap/bound"
)

// EnableBBXLimit turns the bounding-box limit on or off. Rays and
// coordinate-checked lookups ignore bbx_min/bbx_max while disabled (§4.5).
func (o *Octree) EnableBBXLimit(enabled bool) {
	o.bbxEnabled = enabled
}

// BBXLimitEnabled reports whether the bounding-box limit is active.
func (o *Octree) BBXLimitEnabled() bool {
	return o.bbxEnabled
}

// SetBBXMin sets the bounding box's minimum corner.
func (o *Octree) SetBBXMin(min r3.Vector) {
	o.bbxMin = min
}

// SetBBXMax sets the bounding box's maximum corner.
func (o *Octree) SetBBXMax(max r3.Vector) {
	o.bbxMax = max
}

// GetBBXMin returns the bounding box's minimum corner.
func (o *Octree) GetBBXMin() r3.Vector { return o.bbxMin }

// GetBBXMax returns the bounding box's maximum corner.
func (o *Octree) GetBBXMax() r3.Vector { return o.bbxMax }

// currentBBX returns the AABB that rays and lookups are actually clipped
// to right now: the configured bbx_min/bbx_max when the limit is enabled,
// or the whole addressable extent otherwise (§4.5).
func (o *Octree) currentBBX() bound.AABB {
	if o.bbxEnabled {
		return bound.AABB{Min: o.bbxMin, Max: o.bbxMax}
	}
	return o.rootAABB()
}

// InBBX reports whether p lies inside the active bounding box (the full
// extent when the limit is disabled).
func (o *Octree) InBBX(p r3.Vector) bool {
	return o.currentBBX().Contains(p)
}

// MoveLineIntoBBX clips [origin, end] to the active bounding box.
func (o *Octree) MoveLineIntoBBX(origin, end r3.Vector) (newOrigin, newEnd r3.Vector, ok bool) {
	return bound.MoveLineIntoBBX(o.currentBBX(), origin, end)
}

// GetMetricMin scans every materialized voxel at the given depth and
// returns the minimum corner of their combined extent. ok is false when
// the tree is empty (collapsed root only, at a depth with nothing
// materialized).
func (o *Octree) GetMetricMin(depth uint8) (r3.Vector, bool) {
	return o.metricExtent(depth, true)
}

// GetMetricMax is GetMetricMin's maximum-corner counterpart.
func (o *Octree) GetMetricMax(depth uint8) (r3.Vector, bool) {
	return o.metricExtent(depth, false)
}

// GetMetricSize returns the combined extent's size along each axis.
func (o *Octree) GetMetricSize(depth uint8) (r3.Vector, bool) {
	min, ok := o.GetMetricMin(depth)
	if !ok {
		return r3.Vector{}, false
	}
	max, _ := o.GetMetricMax(depth)
	return max.Sub(min), true
}

func (o *Octree) metricExtent(depth uint8, wantMin bool) (r3.Vector, bool) {
	var result r3.Vector
	found := false

	half := o.sys.NodeHalfSize(depth)
	corner := r3.Vector{X: half, Y: half, Z: half}
	for _, leaf := range o.leavesAtDepth(depth) {
		c := o.sys.KeyToCoord(leaf.ToKey())
		if wantMin {
			c = c.Sub(corner)
		} else {
			c = c.Add(corner)
		}
		if !found {
			result = c
			found = true
			continue
		}
		if wantMin {
			result = r3.Vector{X: minF(result.X, c.X), Y: minF(result.Y, c.Y), Z: minF(result.Z, c.Z)}
		} else {
			result = r3.Vector{X: maxF(result.X, c.X), Y: maxF(result.Y, c.Y), Z: maxF(result.Z, c.Z)}
		}
	}
	return result, found
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
