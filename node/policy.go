package node

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Policy is the capability interface that stands in for the source
// implementation's virtual dispatch points (updateNode, isNodeCollapsible,
// binarySupport, readBinaryNodes/writeBinaryNodes). A concrete tree is
// parameterised by one Policy value instead of subclassing a node type,
// the same way the teacher's Octree interface is composed
// (pc.PointCloud + Marshaler) rather than inherited.
type Policy interface {
	// TreeType is written into the persisted file header's "id" line and
	// must match on read.
	TreeType() string

	// BinarySupported reports whether WriteLeaf/ReadLeaf implement a
	// binary encoding; a file header requesting binary=1 for a policy
	// that returns false is a FormatError.
	BinarySupported() bool

	// WriteLeaf serialises a single leaf's full field set.
	WriteLeaf(w io.Writer, l Leaf) error

	// ReadLeaf deserialises a single leaf written by WriteLeaf.
	ReadLeaf(r io.Reader) (Leaf, error)
}

// Standard is the plain occupancy-only node Policy: a leaf's entire
// encoded payload is its log-odds value as an IEEE-754 32-bit float,
// little-endian, matching the binary-body convention of the host (§6 of
// the specification this implements).
type Standard struct{}

// TreeType identifies this policy in a persisted file's "id" header line.
func (Standard) TreeType() string { return "ufomap_occupancy" }

// BinarySupported is true: Standard fully defines its bit layout, unlike
// the source's stub readBinaryNodes/writeBinaryNodes.
func (Standard) BinarySupported() bool { return true }

// WriteLeaf writes l.Logit as 4 little-endian bytes.
func (Standard) WriteLeaf(w io.Writer, l Leaf) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(l.Logit))
	_, err := w.Write(buf[:])
	return errors.Wrap(err, "write leaf")
}

// ReadLeaf reads a leaf written by WriteLeaf.
func (Standard) ReadLeaf(r io.Reader) (Leaf, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Leaf{}, errors.Wrap(err, "read leaf")
	}
	return Leaf{Logit: math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))}, nil
}
