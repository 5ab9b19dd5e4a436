// Package bound provides the minimal axis-aligned volume needed to clip
// rays and to filter iteration/persistence by a bounding volume. General
// OBB/frustum intersection math is an external collaborator the octree
// engine does not implement (see spec.md §1); this package is the
// smallest stand-in that lets BBX-clipping and tree iteration stay
// in-core.
package bound

import "github.com/golang/geo/r3"

// Volume is satisfied by anything that can answer "does this axis-aligned
// cube intersect you". Iteration and persistence accept a Volume so that
// a richer geometry library (out of scope here) could be plugged in by a
// caller without this package needing to depend on it.
type Volume interface {
	// Intersects reports whether the cube centred at centre with the
	// given half-edge length intersects the volume.
	Intersects(centre r3.Vector, half float64) bool
}

// AABB is an axis-aligned bounding box, used both as the octree's
// optional BBX limit and as a simple Volume for clipping iteration or a
// persisted write to a sub-region.
type AABB struct {
	Min, Max r3.Vector
}

// Intersects implements Volume.
func (b AABB) Intersects(centre r3.Vector, half float64) bool {
	return centre.X+half >= b.Min.X && centre.X-half <= b.Max.X &&
		centre.Y+half >= b.Min.Y && centre.Y-half <= b.Max.Y &&
		centre.Z+half >= b.Min.Z && centre.Z-half <= b.Max.Z
}

// Contains reports whether p lies within the box (inclusive bounds).
func (b AABB) Contains(p r3.Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// All is the empty Volume meaning "include everything", matching §4.8's
// "empty volume = include-all" convention for persistence writes.
type all struct{}

func (all) Intersects(r3.Vector, float64) bool { return true }

// All returns a Volume that intersects everything.
func All() Volume { return all{} }
