// Package snappy implements the SNAPPY parquet compression codec.
package snappy

import (
	"github.com/klauspost/compress/snappy"

	"github.com/parquet-go/parquet-decoding/format"
)

type Codec struct{}

func (c *Codec) String() string {
	return "SNAPPY"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Snappy
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	// snappy.Decode only uses dst if its length holds the decoded block.
	return snappy.Decode(dst[:cap(dst)], src)
}
