package octree

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// compressBody LZ4-compresses src, returning the compressed bytes. The
// uncompressed length must be carried alongside separately (the file
// header's uncompressed_data_size field) since LZ4 frames here carry no
// embedded size the reader trusts on its own (§4.8).
func compressBody(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, NewIOError("lz4 compress: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, NewIOError("lz4 compress: %v", err)
	}
	return buf.Bytes(), nil
}

// decompressBody decompresses an LZ4-framed body read from r, given the
// authoritative uncompressed size from the header.
func decompressBody(r io.Reader, uncompressedSize int) ([]byte, error) {
	zr := lz4.NewReader(r)
	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, NewIOError("lz4 decompress: %v", err)
	}
	return out, nil
}
