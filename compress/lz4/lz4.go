// Package lz4 implements the LZ4_RAW parquet compression codec, pages are
// compressed as a single LZ4 block without framing.
package lz4

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/parquet-go/parquet-decoding/format"
)

// maxCompressionRatio bounds the growth of the output buffer when the size of
// the decoded block is unknown, LZ4 cannot expand a byte to more than 255.
const maxCompressionRatio = 255

type Codec struct{}

func (c *Codec) String() string {
	return "LZ4_RAW"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Lz4Raw
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	// 3x is a common compression ratio, the buffer is grown when the block
	// does not fit.
	dst = dst[:cap(dst)]
	if len(dst) < 3*len(src) {
		dst = make([]byte, 3*len(src))
	}

	for {
		n, err := lz4.UncompressBlock(src, dst)
		if err == nil {
			return dst[:n], nil
		}
		// The lz4 package does not export its error values, a short output
		// buffer is the only condition we can recover from.
		if len(dst) >= maxCompressionRatio*len(src) {
			return dst[:0], fmt.Errorf("lz4: decoding block of %d bytes: %w", len(src), err)
		}
		dst = make([]byte, 2*len(dst)+64)
	}
}
