package octree

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func newTestTree(t *testing.T) *Octree {
	t.Helper()
	cfg := DefaultConfig()
	o, err := New(cfg, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return o
}

func TestNewRejectsBadConfig(t *testing.T) {
	logger := golog.NewTestLogger(t)

	t.Run("depth levels out of range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DepthLevels = 1
		_, err := New(cfg, logger)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("non-positive resolution", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Resolution = 0
		_, err := New(cfg, logger)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("probability out of range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ProbHit = 1.5
		_, err := New(cfg, logger)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestNewEmptyTreeIsOneCollapsedNode(t *testing.T) {
	o := newTestTree(t)
	test.That(t, o.Size(), test.ShouldEqual, 1)
	test.That(t, o.GetNumInnerNodes(), test.ShouldEqual, 0)
	test.That(t, o.GetNumInnerLeafNodes(), test.ShouldEqual, 1)
	test.That(t, o.GetNumLeafNodes(), test.ShouldEqual, 0)
}

func TestClearResets(t *testing.T) {
	o := newTestTree(t)
	o.SetNodeValueAtCoord(r3.Vector{}, 0, 5)
	test.That(t, o.Size(), test.ShouldBeGreaterThan, 1)

	err := o.Clear(0.2, 10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, o.Size(), test.ShouldEqual, 1)
	test.That(t, o.GetResolution(), test.ShouldEqual, 0.2)
	test.That(t, o.GetTreeDepthLevels(), test.ShouldEqual, uint8(10))
}
