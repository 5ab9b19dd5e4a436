package octree

import (
	"github.com/golang/geo/r3"

	"github.com/ISWBenjaminKaiser/ufomap/key"
)

// Transform is an optional rigid-body transform applied to every cloud
// point before ray computation (SPEC_FULL.md §4.11).
type Transform func(r3.Vector) r3.Vector

func identity(v r3.Vector) r3.Vector { return v }

// clampRange returns end moved to origin+dir*maxRange when maxRange > 0
// and the segment is longer than that, otherwise end unchanged.
func clampRange(origin, end r3.Vector, maxRange float64) r3.Vector {
	if maxRange <= 0 {
		return end
	}
	diff := end.Sub(origin)
	dist := diff.Norm()
	if dist <= maxRange || dist == 0 {
		return end
	}
	return origin.Add(diff.Mul(maxRange / dist))
}

// InsertRay integrates misses along the DDA traversal from origin to end
// (clamped to maxRange if positive), followed by a hit at end, at the
// given depth.
func (o *Octree) InsertRay(origin, end r3.Vector, maxRange float64, depth uint8) {
	end = clampRange(origin, end, maxRange)
	clippedOrigin, clippedEnd, ok := o.MoveLineIntoBBX(origin, end)
	if !ok {
		o.logger.Debug("ray lies entirely outside the active BBX, skipping insertion")
		return
	}

	rs := o.computeRay(clippedOrigin, clippedEnd, depth)
	walkRay(rs, maxRange, func(k key.Key) bool {
		o.IntegrateMissAtKey(k)
		return false
	})
	o.UpdateNodeValueAtKey(o.sys.CoordToKey(clippedEnd, depth), o.probHitLog)
}

// InsertMissOnRay integrates misses along the DDA traversal from origin
// to end (clamped to maxRange if positive) without a terminal hit.
func (o *Octree) InsertMissOnRay(origin, end r3.Vector, maxRange float64, depth uint8) {
	end = clampRange(origin, end, maxRange)
	clippedOrigin, clippedEnd, ok := o.MoveLineIntoBBX(origin, end)
	if !ok {
		o.logger.Debug("ray lies entirely outside the active BBX, skipping insertion")
		return
	}

	rs := o.computeRay(clippedOrigin, clippedEnd, depth)
	walkRay(rs, maxRange, func(k key.Key) bool {
		o.IntegrateMissAtKey(k)
		return false
	})
	o.UpdateNodeValueAtKey(o.sys.CoordToKey(clippedEnd, depth), o.probMissLog)
}

// InsertPointCloud batches a whole scan into the staging Code→log-odds
// map before applying it, so hits always win over misses at the same
// voxel within one scan and every voxel is written at most once
// (§4.4). t may be nil.
func (o *Octree) InsertPointCloud(origin r3.Vector, cloud []r3.Vector, maxRange float64, t Transform) {
	if t == nil {
		t = identity
	}
	for k := range o.pendingUpdates {
		delete(o.pendingUpdates, k)
	}

	for _, rawPt := range cloud {
		pt := t(rawPt)
		end := clampRange(origin, pt, maxRange)
		clippedOrigin, clippedEnd, ok := o.MoveLineIntoBBX(origin, end)
		if !ok {
			continue
		}

		hitCode := key.CodeFromKey(o.sys.CoordToKey(clippedEnd, 0))
		o.pendingUpdates[hitCode] = o.probHitLog

		rs := o.computeRay(clippedOrigin, clippedEnd, 0)
		walkRay(rs, maxRange, func(k key.Key) bool {
			o.tryEmplaceMiss(key.CodeFromKey(k))
			return false
		})
	}

	for code, delta := range o.pendingUpdates {
		o.UpdateNodeValue(code, delta)
	}
}

// tryEmplaceMiss records a miss delta for code in the staging map only
// if nothing is recorded there yet — a hit already staged for this
// voxel is never downgraded to a miss within the same scan.
func (o *Octree) tryEmplaceMiss(code key.Code) {
	if _, exists := o.pendingUpdates[code]; exists {
		return
	}
	o.pendingUpdates[code] = o.probMissLog
}

// InsertPointCloudDiscrete deduplicates cloud to one depth-0 hit per
// voxel, then — when depth > 0 — walks a ray at that coarser depth to
// each hit's coarse parent, applying a reduced per-voxel miss
// contribution, and then refines that parent into its depth-0 hits
// (§4.4). Refinement happens for every parent whatever n is; n only
// decides at which step of a walk a traversed voxel that is itself a
// hit's coarse parent is passed over without the reduced miss.
func (o *Octree) InsertPointCloudDiscrete(origin r3.Vector, cloud []r3.Vector, maxRange float64, n int, depth uint8, t Transform) {
	if t == nil {
		t = identity
	}

	keyset := make(map[key.Key]struct{})
	for _, rawPt := range cloud {
		pt := t(rawPt)
		end := clampRange(origin, pt, maxRange)
		_, clippedEnd, ok := o.MoveLineIntoBBX(origin, end)
		if !ok {
			continue
		}
		keyset[o.sys.CoordToKey(clippedEnd, 0)] = struct{}{}
	}

	for k := range o.pendingUpdates {
		delete(o.pendingUpdates, k)
	}

	if depth == 0 {
		for k := range keyset {
			o.pendingUpdates[key.CodeFromKey(k)] = o.probHitLog
		}
		for _, rawPt := range cloud {
			pt := t(rawPt)
			end := clampRange(origin, pt, maxRange)
			clippedOrigin, clippedEnd, ok := o.MoveLineIntoBBX(origin, end)
			if !ok {
				continue
			}
			rs := o.computeRay(clippedOrigin, clippedEnd, 0)
			walkRay(rs, maxRange, func(k key.Key) bool {
				o.tryEmplaceMiss(key.CodeFromKey(k))
				return false
			})
		}
		for code, delta := range o.pendingUpdates {
			o.UpdateNodeValue(code, delta)
		}
		return
	}

	// Project each depth-0 hit up to the coarse depth, grouping the
	// children of each coarse (parent) key.
	children := make(map[key.Key][]key.Key)
	for k := range keyset {
		parent := o.sys.ToDepth(k, depth)
		children[parent] = append(children[parent], k)
	}

	reducedMiss := o.probMissLog / float32(2*int(depth)+1)

	for k := range children {
		o.pendingUpdates[key.CodeFromKey(k)] = o.probHitLog
	}

	// remainingSteps counts down from n for every voxel that is not
	// passed over. While it stands at exactly zero, a voxel on the ray
	// that is some hit's coarse parent is passed over and takes no
	// reduced miss; any other voxel takes the reduced miss unless a hit
	// is already staged for it. Refinement is not done here but after
	// each walk, below; kept as inherited, not re-derived, behavior
	// (spec.md §9 open question).
	for parent, kids := range children {
		coarseEnd := o.sys.KeyToCoord(parent)
		rs := o.computeRay(origin, coarseEnd, depth)
		remainingSteps := n
		walkRay(rs, maxRange, func(k key.Key) bool {
			code := key.CodeFromKey(k)
			if _, isHitParent := children[k]; isHitParent && remainingSteps == 0 {
				return false
			}
			if cur, exists := o.pendingUpdates[code]; !exists || cur == o.probMissLog {
				o.pendingUpdates[code] = reducedMiss
			}
			remainingSteps--
			return false
		})

		// walkRay never visits the ray's own ending voxel (§4.4), and
		// parent is exactly that ending — it is always this ray's own
		// hit's coarse parent, so it always refines into its depth-0
		// children rather than staying staged as one coarse-block hit.
		delete(o.pendingUpdates, key.CodeFromKey(parent))
		for _, child := range kids {
			o.pendingUpdates[key.CodeFromKey(child)] = o.probHitLog
		}
	}

	for code, delta := range o.pendingUpdates {
		o.UpdateNodeValue(code, delta)
	}
}
