package octree

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/ISWBenjaminKaiser/ufomap/key"
)

// rayState is the mutable state of a 3-D DDA walk (Amanatides–Woo),
// advanced one voxel at a time by step (§4.4).
type rayState struct {
	sys   key.System
	depth uint8

	dir r3.Vector

	current key.Key
	ending  key.Key

	step   [3]int32
	tDelta [3]float64
	tMax   [3]float64
}

func axisOf(v r3.Vector, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func keyAxis(k key.Key, i int) uint32 {
	switch i {
	case 0:
		return k.X
	case 1:
		return k.Y
	default:
		return k.Z
	}
}

func setKeyAxis(k *key.Key, i int, v uint32) {
	switch i {
	case 0:
		k.X = v
	case 1:
		k.Y = v
	default:
		k.Z = v
	}
}

// computeRay initializes a DDA walk from origin toward end, at depth.
func (o *Octree) computeRay(origin, end r3.Vector, depth uint8) *rayState {
	diff := end.Sub(origin)
	dir := diff.Normalize()

	rs := &rayState{
		sys:     o.sys,
		depth:   depth,
		dir:     dir,
		current: o.sys.CoordToKey(origin, depth),
		ending:  o.sys.CoordToKey(end, depth),
	}

	size := o.sys.NodeSize(depth)
	half := o.sys.NodeHalfSize(depth)
	border := o.sys.KeyToCoord(rs.current)

	for i := 0; i < 3; i++ {
		d := axisOf(dir, i)
		switch {
		case d > 0:
			rs.step[i] = 1
		case d < 0:
			rs.step[i] = -1
		default:
			rs.step[i] = 0
		}

		if rs.step[i] == 0 {
			rs.tDelta[i] = math.Inf(1)
			rs.tMax[i] = math.Inf(1)
			continue
		}
		rs.tDelta[i] = size / math.Abs(d)
		voxelBorder := axisOf(border, i) + float64(rs.step[i])*half
		rs.tMax[i] = (voxelBorder - axisOf(origin, i)) / d
	}
	return rs
}

// step_ advances the walk by one voxel, returning the axis that moved.
func (rs *rayState) step_() int {
	i := 0
	if rs.tMax[1] < rs.tMax[i] {
		i = 1
	}
	if rs.tMax[2] < rs.tMax[i] {
		i = 2
	}
	v := int64(keyAxis(rs.current, i)) + int64(rs.step[i])<<rs.depth
	setKeyAxis(&rs.current, i, uint32(v))
	rs.tMax[i] += rs.tDelta[i]
	return i
}

func (rs *rayState) reachedEnding() bool {
	return rs.current == rs.ending
}

func (rs *rayState) minTMax() float64 {
	m := rs.tMax[0]
	if rs.tMax[1] < m {
		m = rs.tMax[1]
	}
	if rs.tMax[2] < m {
		m = rs.tMax[2]
	}
	return m
}

// walkRay drives rs one voxel at a time, calling visit for each voxel
// traversed strictly between (not including) the starting voxel, until
// ending is reached or maxRange (in DDA t-units) is exceeded. Unless
// maxRange or visit stops it first, it visits every voxel strictly
// between origin and ending; it never visits the ending voxel itself —
// callers apply the hit there separately.
func walkRay(rs *rayState, maxRange float64, visit func(key.Key) (stop bool)) {
	for {
		if rs.reachedEnding() {
			return
		}
		if maxRange > 0 && rs.minTMax() > maxRange {
			return
		}
		rs.step_()
		if rs.reachedEnding() {
			return
		}
		if visit(rs.current) {
			return
		}
	}
}

// CastRay walks the DDA from origin in direction dir (not necessarily
// normalized) up to maxRange, stopping at the first occupied voxel
// (returns its center and true), or — unless ignoreUnknown is set — at
// the first unknown voxel (returns false), or upon exhausting maxRange
// (returns false) (§4.4).
func (o *Octree) CastRay(origin, dir r3.Vector, maxRange float64, ignoreUnknown bool, depth uint8) (r3.Vector, bool) {
	d := dir.Normalize()
	reach := maxRange
	if reach <= 0 {
		reach = o.sys.NodeSize(o.sys.DepthLevels) * 2
	}
	end := origin.Add(d.Mul(reach))

	rs := o.computeRay(origin, end, depth)

	// check classifies the voxel at k: stop==true means the walk is done
	// (either an occupied hit or, unless ignored, an unknown voxel); hit
	// is only meaningful when occupied is also true.
	check := func(k key.Key) (hit r3.Vector, occupied bool, stop bool) {
		code := key.CodeFromKey(k)
		l, hitDepth := o.lookup(code)
		if l.IsOccupied(o.occupancyLog) {
			return o.sys.KeyToCoord(code.ToDepth(hitDepth).ToKey()), true, true
		}
		if !ignoreUnknown && l.IsUnknown(o.occupancyLog, o.freeLog) {
			return r3.Vector{}, false, true
		}
		return r3.Vector{}, false, false
	}

	if hit, occupied, stop := check(rs.current); stop {
		return hit, occupied
	}

	var result r3.Vector
	var foundOccupied, stopped bool
	walkRay(rs, reach, func(k key.Key) bool {
		hit, occupied, stop := check(k)
		if stop {
			result, foundOccupied, stopped = hit, occupied, true
			return true
		}
		return false
	})
	if !stopped {
		if hit, occupied, stop := check(rs.ending); stop {
			result, foundOccupied = hit, occupied
		}
	}
	if !foundOccupied {
		return r3.Vector{}, false
	}
	return result, true
}
