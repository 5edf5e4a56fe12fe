// Package uncompressed provides the codec of pages stored without
// compression.
package uncompressed

import (
	"github.com/parquet-go/parquet-decoding/format"
)

type Codec struct{}

func (c *Codec) String() string {
	return "UNCOMPRESSED"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Uncompressed
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}
