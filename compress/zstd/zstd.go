// Package zstd implements the ZSTD parquet compression codec.
package zstd

import (
	"github.com/klauspost/compress/zstd"

	"github.com/parquet-go/parquet-decoding/format"
	"github.com/parquet-go/parquet-decoding/internal/memory"
)

type Codec struct {
	decoders memory.Pool[decoder]
}

type decoder struct {
	dec *zstd.Decoder
	err error
}

func (c *Codec) String() string {
	return "ZSTD"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Zstd
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	d := c.decoders.Get(
		func() *decoder {
			dec, err := zstd.NewReader(nil,
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderLowmem(true),
			)
			return &decoder{dec: dec, err: err}
		},
		func(*decoder) {},
	)
	if d.err != nil {
		return dst[:0], d.err
	}
	defer c.decoders.Put(d)
	return d.dec.DecodeAll(src, dst[:0])
}
