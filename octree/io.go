package octree

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/ISWBenjaminKaiser/ufomap/bound"
	"github.com/ISWBenjaminKaiser/ufomap/key"
	"github.com/ISWBenjaminKaiser/ufomap/node"
)

const (
	fileMagic    = "# UFOMap octree file"
	fileVersion  = "1.0"
	dataSentinel = "data"
)

// fileHeader is the ASCII, order-free, data-terminated header described
// by §4.8.
type fileHeader struct {
	Version               string
	ID                    string
	Binary                bool
	Resolution            float64
	DepthLevels           uint8
	OccupancyThres        float64
	FreeThres             float64
	Compressed            bool
	UncompressedDataSize  int64
}

func probFromLogOdds(l float32) float64 {
	return 1 / (1 + math.Exp(-float64(l)))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func writeHeader(w io.Writer, h fileHeader) error {
	lines := []string{
		fileMagic,
		fmt.Sprintf("version %s", h.Version),
		fmt.Sprintf("id %s", h.ID),
		fmt.Sprintf("binary %d", boolToInt(h.Binary)),
		fmt.Sprintf("resolution %g", h.Resolution),
		fmt.Sprintf("depth_levels %d", h.DepthLevels),
		fmt.Sprintf("occupancy_thres %g", h.OccupancyThres),
		fmt.Sprintf("free_thres %g", h.FreeThres),
		fmt.Sprintf("compressed %d", boolToInt(h.Compressed)),
		fmt.Sprintf("uncompressed_data_size %d", h.UncompressedDataSize),
		dataSentinel,
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return NewIOError("write header: %v", err)
		}
	}
	return nil
}

func parseHeader(br *bufio.Reader) (fileHeader, error) {
	first, err := br.ReadString('\n')
	if err != nil {
		return fileHeader{}, NewIOError("read header: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(first), "#") {
		return fileHeader{}, NewFormatError("missing magic header line")
	}

	var h fileHeader
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return fileHeader{}, NewIOError("read header: %v", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == dataSentinel {
			break
		}

		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return fileHeader{}, NewFormatError("malformed header line %q", line)
		}
		tok, value := parts[0], strings.TrimSpace(parts[1])

		var parseErr error
		switch tok {
		case "version":
			h.Version = value
		case "id":
			h.ID = value
		case "binary":
			h.Binary = value == "1"
		case "resolution":
			h.Resolution, parseErr = strconv.ParseFloat(value, 64)
		case "depth_levels":
			var v uint64
			v, parseErr = strconv.ParseUint(value, 10, 8)
			h.DepthLevels = uint8(v)
		case "occupancy_thres":
			h.OccupancyThres, parseErr = strconv.ParseFloat(value, 64)
		case "free_thres":
			h.FreeThres, parseErr = strconv.ParseFloat(value, 64)
		case "compressed":
			h.Compressed = value == "1"
		case "uncompressed_data_size":
			h.UncompressedDataSize, parseErr = strconv.ParseInt(value, 10, 64)
		default:
			// Unknown token: ignore, forward-compatible with extra fields.
		}
		if parseErr != nil {
			return fileHeader{}, NewFormatError("invalid value for %s: %v", tok, parseErr)
		}
	}
	if h.ID == "" {
		return fileHeader{}, NewFormatError("missing id in header")
	}
	return h, nil
}

func (o *Octree) writeLeafData(w io.Writer, l node.Leaf, binary bool) error {
	if binary {
		return o.policy.WriteLeaf(w, l)
	}
	if _, err := fmt.Fprintf(w, "%g\n", l.Logit); err != nil {
		return NewIOError("write leaf: %v", err)
	}
	return nil
}

func (o *Octree) readLeafData(r *bufio.Reader, binary bool) (node.Leaf, error) {
	if binary {
		return o.policy.ReadLeaf(r)
	}
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return node.Leaf{}, NewIOError("read leaf: %v", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 32)
	if err != nil {
		return node.Leaf{}, NewFormatError("invalid leaf value %q: %v", line, err)
	}
	return node.Leaf{Logit: float32(v)}, nil
}

// writeSubtree implements §4.8's recursive body encoding. minDepth lets
// Write stop descending early, writing a coarser node's rolled-up value
// as if it were collapsed even when it materialized children the tree
// still remembers (mirroring the tree iterator's min_depth filter).
//
// A child whose AABB misses vol is skipped entirely — no mask
// consideration, no bytes. A file produced with a non-default vol is
// therefore a partial export: this package's own Read only reconstructs
// it faithfully when vol was bound.All(), the same "empty volume means
// include everything" convention §4.8 uses for filtering.
func (o *Octree) writeSubtree(w io.Writer, n *node.Inner, depth uint8, code key.Code, vol bound.Volume, binary bool, minDepth uint8) error {
	if n.AllChildrenSame || depth <= minDepth {
		if _, err := w.Write([]byte{0x00}); err != nil {
			return NewIOError("write mask: %v", err)
		}
		return o.writeLeafData(w, n.Leaf, binary)
	}

	var mask byte
	var children node.InnerChildren
	if depth > 1 {
		children = n.Children.(node.InnerChildren)
		for i := 0; i < 8; i++ {
			if !children[i].AllChildrenSame {
				mask |= 1 << uint(i)
			}
		}
	} else {
		// A depth-1 node's eight leaf values always follow; a nonzero
		// mask keeps the reader from taking this node as collapsed.
		mask = 0xFF
	}
	if _, err := w.Write([]byte{mask}); err != nil {
		return NewIOError("write mask: %v", err)
	}

	for i := 0; i < 8; i++ {
		childCode := code.Child(i)
		center, half := o.centerAndHalf(childCode)
		if !vol.Intersects(center, half) {
			continue
		}

		if depth == 1 {
			leaf := n.Children.(node.LeafChildren)[i]
			if err := o.writeLeafData(w, leaf, binary); err != nil {
				return err
			}
			continue
		}

		if mask&(1<<uint(i)) != 0 {
			if err := o.writeSubtree(w, &children[i], depth-1, childCode, vol, binary, minDepth); err != nil {
				return err
			}
		} else if err := o.writeLeafData(w, children[i].Leaf, binary); err != nil {
			return err
		}
	}
	return nil
}

// readSubtree mirrors writeSubtree exactly, calling expand before
// descending and update_inner/prune on the way up to restore invariants
// (§4.8).
func (o *Octree) readSubtree(r *bufio.Reader, n *node.Inner, depth uint8, binary bool) error {
	maskByte, err := r.ReadByte()
	if err != nil {
		return NewIOError("read mask: %v", err)
	}
	if maskByte == 0x00 {
		leaf, err := o.readLeafData(r, binary)
		if err != nil {
			return err
		}
		*n = node.NewCollapsedInner(leaf.Logit)
		n.ContainsFree = leaf.IsFree(o.freeLog)
		n.ContainsUnknown = leaf.IsUnknown(o.occupancyLog, o.freeLog)
		return nil
	}

	o.expand(n, depth)
	switch depth {
	case 1:
		leaves := n.Children.(node.LeafChildren)
		for i := 0; i < 8; i++ {
			leaf, err := o.readLeafData(r, binary)
			if err != nil {
				return err
			}
			leaves[i] = leaf
		}
	default:
		children := n.Children.(node.InnerChildren)
		for i := 0; i < 8; i++ {
			if maskByte&(1<<uint(i)) != 0 {
				if err := o.readSubtree(r, &children[i], depth-1, binary); err != nil {
					return err
				}
				continue
			}
			leaf, err := o.readLeafData(r, binary)
			if err != nil {
				return err
			}
			children[i] = node.NewCollapsedInner(leaf.Logit)
			children[i].ContainsFree = leaf.IsFree(o.freeLog)
			children[i].ContainsUnknown = leaf.IsUnknown(o.occupancyLog, o.freeLog)
		}
	}
	o.updateInner(n, depth)
	return nil
}

// Write serializes the tree to w: the ASCII header followed by the
// binary body, clipped to vol (nil meaning the whole tree), optionally
// LZ4-compressed, using binary leaf encoding when requested.
func (o *Octree) Write(w io.Writer, vol bound.Volume, compress, binary bool, minDepth uint8) error {
	if binary && !o.policy.BinarySupported() {
		return NewFormatError("binary encoding requested but %s does not support it", o.policy.TreeType())
	}
	if vol == nil {
		vol = bound.All()
	}

	var body bytes.Buffer
	if err := o.writeSubtree(&body, &o.root, o.sys.DepthLevels, o.rootCode(), vol, binary, minDepth); err != nil {
		return err
	}
	bodyBytes := body.Bytes()

	h := fileHeader{
		Version:              fileVersion,
		ID:                   o.policy.TreeType(),
		Binary:                binary,
		Resolution:            o.sys.Resolution,
		DepthLevels:           o.sys.DepthLevels,
		OccupancyThres:        probFromLogOdds(o.occupancyLog),
		FreeThres:             probFromLogOdds(o.freeLog),
		Compressed:            compress,
		UncompressedDataSize:  int64(len(bodyBytes)),
	}

	if compress {
		compressed, err := compressBody(bodyBytes)
		if err != nil {
			return err
		}
		bodyBytes = compressed
	}

	if err := writeHeader(w, h); err != nil {
		return err
	}
	if _, err := w.Write(bodyBytes); err != nil {
		return NewIOError("write body: %v", err)
	}
	return nil
}

// Read replaces the tree's contents with what is parsed from r. When the
// stream's resolution or depth_levels differ from this tree's, the tree
// is cleared and reinitialised at the new parameters first; otherwise
// the existing tree is collapsed to its root before parsing so expand's
// node-count bookkeeping starts from a known state.
func (o *Octree) Read(r io.Reader) error {
	br := bufio.NewReader(r)
	h, err := parseHeader(br)
	if err != nil {
		return err
	}
	if h.ID != o.policy.TreeType() {
		return NewFormatError("id %q does not match tree type %q", h.ID, o.policy.TreeType())
	}
	if h.Binary && !o.policy.BinarySupported() {
		return NewFormatError("binary node data requested but %s does not support it", o.policy.TreeType())
	}

	if h.Resolution != o.sys.Resolution || h.DepthLevels != o.sys.DepthLevels {
		o.logger.Debug("stream resolution/depth_levels differ from this tree's, clearing and reinitialising")
		if err := o.Clear(h.Resolution, h.DepthLevels); err != nil {
			return err
		}
	} else {
		// Reset the root the way Clear does, rather than prune, which
		// only collapses Children/AllChildrenSame and leaves the root's
		// own Logit/ContainsFree/ContainsUnknown untouched — if
		// readSubtree fails before reassigning *n, a stale occupied
		// root must not survive a failed Read (spec.md:174).
		o.root = node.NewCollapsedInner(0)
		o.root.ContainsFree = o.root.Leaf.IsFree(o.freeLog)
		o.root.ContainsUnknown = o.root.Leaf.IsUnknown(o.occupancyLog, o.freeLog)
		o.numInnerNodes = 0
		o.numInnerLeafNodes = 1
		o.numLeafNodes = 0
	}

	o.SetOccupancyThres(h.OccupancyThres)
	o.SetFreeThres(h.FreeThres)

	var bodyReader io.Reader = br
	if h.Compressed {
		data, err := decompressBody(br, int(h.UncompressedDataSize))
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	}

	return o.readSubtree(bufio.NewReader(bodyReader), &o.root, o.sys.DepthLevels, h.Binary)
}

// WriteFile opens path and calls Write against it, combining any write
// error with a close error the way pointcloud_file.go's WriteToLASFile
// does for its own writer.
func (o *Octree) WriteFile(path string, vol bound.Volume, compress, binary bool, minDepth uint8) error {
	f, err := os.Create(path)
	if err != nil {
		return NewIOError("create %s: %v", path, err)
	}
	writeErr := o.Write(f, vol, compress, binary, minDepth)
	return multierr.Combine(writeErr, f.Close())
}

// ReadFile opens path and calls Read against it.
func (o *Octree) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return NewIOError("open %s: %v", path, err)
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return o.Read(f)
}
