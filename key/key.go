// Package key implements the coordinate, key and Morton-code addressing
// scheme used to locate a voxel at any depth of the occupancy octree.
package key

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// MinDepthLevels and MaxDepthLevels bound the valid tree height, per the
// construction contract: depth_levels must fall in [2, 21].
const (
	MinDepthLevels = 2
	MaxDepthLevels = 21
)

// Key is the integer address of a voxel at a particular depth: three
// coordinates in [0, 2^DepthLevels) plus the depth itself. Depth 0 is a
// single leaf voxel; Depth == DepthLevels addresses the whole map.
type Key struct {
	X, Y, Z uint32
	Depth   uint8
}

// System is a resolution/depth pair that defines the coordinate space a
// Key or Code is interpreted in. It owns no mutable state and is safe to
// share across many octrees built with the same parameters.
type System struct {
	Resolution  float64
	DepthLevels uint8
	maxValue    uint32
}

// NewSystem validates and builds a coordinate System. It returns a
// ConfigError-flavored error (via github.com/pkg/errors) when resolution
// or depth_levels are out of the allowed range.
func NewSystem(resolution float64, depthLevels uint8) (System, error) {
	if resolution <= 0 || math.IsNaN(resolution) || math.IsInf(resolution, 0) {
		return System{}, errors.Errorf("invalid resolution %v, must be positive and finite", resolution)
	}
	if depthLevels < MinDepthLevels || depthLevels > MaxDepthLevels {
		return System{}, errors.Errorf("invalid depth_levels %d, must be in [%d,%d]", depthLevels, MinDepthLevels, MaxDepthLevels)
	}
	return System{
		Resolution:  resolution,
		DepthLevels: depthLevels,
		maxValue:    uint32(1) << (depthLevels - 1),
	}, nil
}

// MaxValue is the key offset that centres the index space on the origin,
// 2^(DepthLevels-1).
func (s System) MaxValue() uint32 {
	return s.maxValue
}

// NodeSize returns the edge length of a node at the given depth.
func (s System) NodeSize(depth uint8) float64 {
	return s.Resolution * float64(uint32(1)<<depth)
}

// NodeHalfSize returns half the edge length of a node at the given depth.
func (s System) NodeHalfSize(depth uint8) float64 {
	return s.NodeSize(depth) / 2
}

// coordToKeyAxis implements coord_to_key for a single axis.
func coordToKeyAxis(c float64, depth uint8, resolution float64, maxValue uint32) uint32 {
	floored := int64(math.Floor(c / resolution))
	if depth == 0 {
		return uint32(floored + int64(maxValue))
	}
	aligned := (floored >> depth) << depth
	return uint32(aligned+int64(maxValue)) + (uint32(1) << (depth - 1))
}

// keyToCoordAxis implements key_to_coord for a single axis.
func keyToCoordAxis(k uint32, depth, depthLevels uint8, resolution float64, maxValue uint32) float64 {
	if depth == depthLevels {
		return 0.0
	}
	diff := int64(k) - int64(maxValue)
	centered := math.Floor(float64(diff)/float64(uint32(1)<<depth)) + 0.5
	return centered * (resolution * float64(uint32(1)<<depth))
}

// CoordToKey converts a point to a Key at the given depth. It is total:
// every finite coordinate maps to some key, even outside the addressable
// extent (the result simply overflows/wraps, which callers that need
// bounds checking should guard with CoordToKeyChecked).
func (s System) CoordToKey(c r3.Vector, depth uint8) Key {
	return Key{
		X:     coordToKeyAxis(c.X, depth, s.Resolution, s.maxValue),
		Y:     coordToKeyAxis(c.Y, depth, s.Resolution, s.maxValue),
		Z:     coordToKeyAxis(c.Z, depth, s.Resolution, s.maxValue),
		Depth: depth,
	}
}

// InBounds reports whether c lies within the octree's addressable extent,
// i.e. whether CoordToKey(c, 0) would not wrap.
func (s System) InBounds(c r3.Vector) bool {
	half := s.NodeHalfSize(s.DepthLevels)
	return c.X >= -half && c.X < half &&
		c.Y >= -half && c.Y < half &&
		c.Z >= -half && c.Z < half
}

// CoordToKeyChecked behaves like CoordToKey but rejects coordinates
// outside the map extent, or outside the bounding box [bbxMin, bbxMax]
// when bbxEnabled is true. The bounding-box test is made on c itself,
// whatever depth is requested.
func (s System) CoordToKeyChecked(c r3.Vector, depth uint8, bbxEnabled bool, bbxMin, bbxMax r3.Vector) (Key, bool) {
	if !s.InBounds(c) {
		return Key{}, false
	}
	if bbxEnabled {
		if c.X < bbxMin.X || c.X > bbxMax.X ||
			c.Y < bbxMin.Y || c.Y > bbxMax.Y ||
			c.Z < bbxMin.Z || c.Z > bbxMax.Z {
			return Key{}, false
		}
	}
	return s.CoordToKey(c, depth), true
}

// KeyToCoord converts a Key back to the centre coordinate of the voxel it
// addresses.
func (s System) KeyToCoord(k Key) r3.Vector {
	return r3.Vector{
		X: keyToCoordAxis(k.X, k.Depth, s.DepthLevels, s.Resolution, s.maxValue),
		Y: keyToCoordAxis(k.Y, k.Depth, s.DepthLevels, s.Resolution, s.maxValue),
		Z: keyToCoordAxis(k.Z, k.Depth, s.DepthLevels, s.Resolution, s.maxValue),
	}
}

// ToDepth returns the ancestor key of k at the given (coarser or equal)
// depth.
func (s System) ToDepth(k Key, depth uint8) Key {
	if depth == k.Depth {
		return k
	}
	return s.CoordToKey(s.KeyToCoord(k), depth)
}
