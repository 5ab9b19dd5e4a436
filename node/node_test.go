package node

import (
	"bytes"
	"testing"

	"go.viam.com/test"
)

func TestLeafClassification(t *testing.T) {
	occupancyLog := float32(0.5)
	freeLog := float32(-0.5)

	occupied := Leaf{Logit: 1.0}
	test.That(t, occupied.IsOccupied(occupancyLog), test.ShouldBeTrue)
	test.That(t, occupied.IsFree(freeLog), test.ShouldBeFalse)
	test.That(t, occupied.IsUnknown(occupancyLog, freeLog), test.ShouldBeFalse)

	free := Leaf{Logit: -1.0}
	test.That(t, free.IsOccupied(occupancyLog), test.ShouldBeFalse)
	test.That(t, free.IsFree(freeLog), test.ShouldBeTrue)
	test.That(t, free.IsUnknown(occupancyLog, freeLog), test.ShouldBeFalse)

	unknown := Leaf{Logit: 0.0}
	test.That(t, unknown.IsOccupied(occupancyLog), test.ShouldBeFalse)
	test.That(t, unknown.IsFree(freeLog), test.ShouldBeFalse)
	test.That(t, unknown.IsUnknown(occupancyLog, freeLog), test.ShouldBeTrue)
}

func TestNewCollapsedInner(t *testing.T) {
	inner := NewCollapsedInner(0.75)
	test.That(t, inner.AllChildrenSame, test.ShouldBeTrue)
	test.That(t, inner.Children, test.ShouldBeNil)
	test.That(t, inner.Leaf.Logit, test.ShouldEqual, float32(0.75))
}

func TestChildSetTagging(t *testing.T) {
	leaves := LeafChildren(make([]Leaf, 8))
	inners := InnerChildren(make([]Inner, 8))

	test.That(t, leaves.Size(), test.ShouldEqual, 8)
	test.That(t, inners.Size(), test.ShouldEqual, 8)

	var asLeaf ChildSet = leaves
	var asInner ChildSet = inners
	_, leafOK := asLeaf.(LeafChildren)
	_, innerOK := asInner.(InnerChildren)
	test.That(t, leafOK, test.ShouldBeTrue)
	test.That(t, innerOK, test.ShouldBeTrue)
}

func TestStandardPolicyRoundTrip(t *testing.T) {
	p := Standard{}
	test.That(t, p.TreeType(), test.ShouldEqual, "ufomap_occupancy")
	test.That(t, p.BinarySupported(), test.ShouldBeTrue)

	var buf bytes.Buffer
	test.That(t, p.WriteLeaf(&buf, Leaf{Logit: 3.25}), test.ShouldBeNil)
	test.That(t, buf.Len(), test.ShouldEqual, 4)

	l, err := p.ReadLeaf(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Logit, test.ShouldEqual, float32(3.25))
}
