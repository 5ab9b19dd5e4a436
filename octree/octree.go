// Package octree implements a probabilistic occupancy octree: a node
// hierarchy with lazy expansion and collapse-on-equality pruning,
// addressed by key/code, updated by log-odds ray/point-cloud
// integration, and persisted as a text-header-plus-binary-body file,
// optionally LZ4-compressed and bounding-volume clipped.
package octree

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/ISWBenjaminKaiser/ufomap/bound"
	"github.com/ISWBenjaminKaiser/ufomap/key"
	"github.com/ISWBenjaminKaiser/ufomap/node"
)

// Config is the construction-time parameter set (§6). Probabilities are
// given in (0,1) the way the caller thinks about them; the tree converts
// and stores everything internally as log-odds.
type Config struct {
	Resolution       float64
	DepthLevels      uint8
	AutomaticPruning bool

	OccupancyThres float64
	FreeThres      float64

	ProbHit  float64
	ProbMiss float64

	ClampMin float64
	ClampMax float64
}

// DefaultConfig mirrors common occupancy-mapping defaults (0.1m voxels,
// 16 levels ~= 6.5km edge, +/-3.3km around the origin, standard
// OctoMap-style probabilities).
func DefaultConfig() Config {
	return Config{
		Resolution:       0.1,
		DepthLevels:      16,
		AutomaticPruning: true,
		OccupancyThres:   0.5,
		FreeThres:        0.5,
		ProbHit:          0.7,
		ProbMiss:         0.4,
		ClampMin:         0.1192, // logit == -2
		ClampMax:         0.971,  // logit == +3.5
	}
}

// NodeType classifies a node returned by GetNode, mirroring the
// teacher's exported InternalNode/LeafNodeEmpty/LeafNodeFilled enum
// (octree/octree.go) but for occupancy semantics.
type NodeType uint8

const (
	// NodeOccupied is a terminal (leaf or collapsed) node classified occupied.
	NodeOccupied NodeType = iota
	// NodeFree is a terminal node classified free.
	NodeFree
	// NodeUnknown is a terminal node classified unknown.
	NodeUnknown
)

func logOdds(p float64) float32 {
	return float32(math.Log(p / (1 - p)))
}

// Octree is a probabilistic 3-D occupancy map. It is not safe for
// concurrent mutation: the contract is exclusive access during any
// mutating call, readers may run concurrently with each other only while
// no mutator runs (§5).
type Octree struct {
	logger golog.Logger
	sys    key.System
	policy node.Policy

	root node.Inner

	automaticPruning bool

	occupancyLog float32
	freeLog      float32
	probHitLog   float32
	probMissLog  float32
	clampMinLog  float32
	clampMaxLog  float32

	numInnerNodes     int64
	numInnerLeafNodes int64
	numLeafNodes      int64

	bbxEnabled bool
	bbxMin     r3.Vector
	bbxMax     r3.Vector

	changeDetectionEnabled bool
	changedCodes           map[key.Code]struct{}

	pendingUpdates map[key.Code]float32
}

// New builds an empty Octree from cfg. It returns a ConfigError if
// depth_levels is out of [2,21], resolution is non-positive, or any
// threshold/probability is NaN, infinite, or outside (0,1).
func New(cfg Config, logger golog.Logger) (*Octree, error) {
	sys, err := key.NewSystem(cfg.Resolution, cfg.DepthLevels)
	if err != nil {
		return nil, NewConfigError("%v", err)
	}
	for name, p := range map[string]float64{
		"occupancy_thres": cfg.OccupancyThres,
		"free_thres":      cfg.FreeThres,
		"prob_hit":        cfg.ProbHit,
		"prob_miss":       cfg.ProbMiss,
		"clamp_min":       cfg.ClampMin,
		"clamp_max":       cfg.ClampMax,
	} {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 || p >= 1 {
			return nil, NewConfigError("invalid probability for %s: %v, must be in (0,1)", name, p)
		}
	}

	o := &Octree{
		logger:            logger,
		sys:               sys,
		policy:            node.Standard{},
		root:              node.NewCollapsedInner(0),
		automaticPruning:  cfg.AutomaticPruning,
		numInnerLeafNodes: 1,
		pendingUpdates:    make(map[key.Code]float32),
	}
	o.applyThresholds(cfg)
	o.root.ContainsFree = o.root.Leaf.IsFree(o.freeLog)
	o.root.ContainsUnknown = o.root.Leaf.IsUnknown(o.occupancyLog, o.freeLog)
	return o, nil
}

func (o *Octree) applyThresholds(cfg Config) {
	o.occupancyLog = logOdds(cfg.OccupancyThres)
	o.freeLog = logOdds(cfg.FreeThres)
	o.probHitLog = logOdds(cfg.ProbHit)
	o.probMissLog = logOdds(cfg.ProbMiss)
	o.clampMinLog = logOdds(cfg.ClampMin)
	o.clampMaxLog = logOdds(cfg.ClampMax)
}

// Clear resets the tree to empty with new parameters, the same
// ConfigError-raising contract as New.
func (o *Octree) Clear(resolution float64, depthLevels uint8) error {
	sys, err := key.NewSystem(resolution, depthLevels)
	if err != nil {
		return NewConfigError("%v", err)
	}
	o.sys = sys
	o.root = node.NewCollapsedInner(0)
	o.root.ContainsFree = o.root.Leaf.IsFree(o.freeLog)
	o.root.ContainsUnknown = o.root.Leaf.IsUnknown(o.occupancyLog, o.freeLog)
	o.numInnerNodes = 0
	o.numInnerLeafNodes = 1
	o.numLeafNodes = 0
	o.pendingUpdates = make(map[key.Code]float32)
	o.changedCodes = nil
	return nil
}

// SetProbHit sets the hit probability, converting the given probability
// to log-odds.
func (o *Octree) SetProbHit(probability float64) {
	o.probHitLog = logOdds(probability)
}

// SetProbMiss sets the miss probability, converting the given
// probability to log-odds.
//
// The source this specification is drawn from forwards logit(prob_hit_log_)
// here instead of the argument — almost certainly a copy-paste typo. This
// implementation converts the argument, as spec.md §9 directs.
func (o *Octree) SetProbMiss(probability float64) {
	o.probMissLog = logOdds(probability)
}

// SetOccupancyThres sets the occupancy classification threshold. It does
// not rewrite existing leaves' logits, but re-rolls-up every inner node's
// contains_free/contains_unknown summary bits so invariant I3 holds
// under the new threshold immediately, rather than lazily.
func (o *Octree) SetOccupancyThres(probability float64) {
	o.occupancyLog = logOdds(probability)
	o.rerollSummary(&o.root, o.sys.DepthLevels)
}

// SetFreeThres sets the free classification threshold, with the same
// immediate re-roll-up as SetOccupancyThres.
func (o *Octree) SetFreeThres(probability float64) {
	o.freeLog = logOdds(probability)
	o.rerollSummary(&o.root, o.sys.DepthLevels)
}

// SetClamp sets the clamp_min/clamp_max probabilities.
func (o *Octree) SetClamp(min, max float64) {
	o.clampMinLog = logOdds(min)
	o.clampMaxLog = logOdds(max)
}

// SetAutomaticPruning toggles whether expand()ed-but-collapsible nodes
// are pruned back automatically.
func (o *Octree) SetAutomaticPruning(enabled bool) {
	o.automaticPruning = enabled
}

// rerollSummary recomputes contains_free/contains_unknown bottom-up for
// every node under n, without touching logits or collapsing anything.
func (o *Octree) rerollSummary(n *node.Inner, depth uint8) {
	if n.AllChildrenSame {
		n.ContainsFree = n.Leaf.IsFree(o.freeLog)
		n.ContainsUnknown = n.Leaf.IsUnknown(o.occupancyLog, o.freeLog)
		return
	}
	switch c := n.Children.(type) {
	case node.LeafChildren:
		free, unknown := false, false
		for _, l := range c {
			if l.IsFree(o.freeLog) {
				free = true
			}
			if l.IsUnknown(o.occupancyLog, o.freeLog) {
				unknown = true
			}
		}
		n.ContainsFree, n.ContainsUnknown = free, unknown
	case node.InnerChildren:
		free, unknown := false, false
		for i := range c {
			o.rerollSummary(&c[i], depth-1)
			if c[i].ContainsFree {
				free = true
			}
			if c[i].ContainsUnknown {
				unknown = true
			}
		}
		n.ContainsFree, n.ContainsUnknown = free, unknown
	}
}

// Size returns the total number of nodes (inner + inner-leaf + leaf)
// currently materialized in the tree.
func (o *Octree) Size() int {
	return int(o.numInnerNodes + o.numInnerLeafNodes + o.numLeafNodes)
}

// GetNumInnerNodes returns the number of expanded (non-collapsed) inner
// nodes.
func (o *Octree) GetNumInnerNodes() int { return int(o.numInnerNodes) }

// GetNumInnerLeafNodes returns the number of collapsed inner nodes
// (depth > 0, acting as a uniform leaf cube).
func (o *Octree) GetNumInnerLeafNodes() int { return int(o.numInnerLeafNodes) }

// GetNumLeafNodes returns the number of true depth-0 leaf nodes
// materialized inside expanded depth-1 inner nodes.
func (o *Octree) GetNumLeafNodes() int { return int(o.numLeafNodes) }

// GetTreeDepthLevels returns the configured depth_levels (root depth).
func (o *Octree) GetTreeDepthLevels() uint8 { return o.sys.DepthLevels }

// GetResolution returns the configured depth-0 voxel edge length.
func (o *Octree) GetResolution() float64 { return o.sys.Resolution }

// GetNodeSize returns the edge length of a node at the given depth.
func (o *Octree) GetNodeSize(depth uint8) float64 { return o.sys.NodeSize(depth) }

// MemoryUsage estimates the tree's heap footprint, mirroring the
// original's per-node-type accounting (SPEC_FULL.md §4.10):
// num_inner_nodes*sizeof(Inner) + num_inner_leaf_nodes*sizeof(Leaf)*8 +
// num_leaf_nodes*sizeof(Leaf).
func (o *Octree) MemoryUsage() int64 {
	const leafSize = 4                   // float32 logit
	const innerSize = leafSize + 1 + 1 + 1 // embedded Leaf + 2 bool flags + all_children_same
	return o.numInnerNodes*innerSize +
		o.numInnerLeafNodes*leafSize*8 +
		o.numLeafNodes*leafSize
}

// System exposes the coordinate System backing this tree's addressing,
// for callers (e.g. tests) that need to build Keys/Codes directly.
func (o *Octree) System() key.System { return o.sys }

// rootAABB is the axis-aligned cube covering the whole addressable
// extent, used as the default BBX limit (§4.5).
func (o *Octree) rootAABB() bound.AABB {
	half := o.sys.NodeHalfSize(o.sys.DepthLevels)
	return bound.AABB{
		Min: r3.Vector{X: -half, Y: -half, Z: -half},
		Max: r3.Vector{X: half, Y: half, Z: half},
	}
}
