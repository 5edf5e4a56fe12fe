package parquet

import (
	"fmt"

	"github.com/parquet-go/parquet-decoding/compress"
	"github.com/parquet-go/parquet-decoding/compress/brotli"
	"github.com/parquet-go/parquet-decoding/compress/gzip"
	"github.com/parquet-go/parquet-decoding/compress/lz4"
	"github.com/parquet-go/parquet-decoding/compress/snappy"
	"github.com/parquet-go/parquet-decoding/compress/uncompressed"
	"github.com/parquet-go/parquet-decoding/compress/zstd"
	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
)

var (
	// Uncompressed is a parquet compression codec representing uncompressed
	// pages.
	Uncompressed uncompressed.Codec

	// Snappy is the SNAPPY parquet compression codec.
	Snappy snappy.Codec

	// Gzip is the GZIP parquet compression codec.
	Gzip gzip.Codec

	// Brotli is the BROTLI parquet compression codec.
	Brotli brotli.Codec

	// Zstd is the ZSTD parquet compression codec.
	Zstd zstd.Codec

	// Lz4Raw is the LZ4_RAW parquet compression codec.
	Lz4Raw lz4.Codec

	compressionCodecs = [...]compress.Codec{
		format.Uncompressed: &Uncompressed,
		format.Snappy:       &Snappy,
		format.Gzip:         &Gzip,
		format.Brotli:       &Brotli,
		format.Zstd:         &Zstd,
		format.Lz4Raw:       &Lz4Raw,
	}
)

// LookupCompressionCodec returns the compression codec associated with the
// given code. LZO and the deprecated Hadoop-framed LZ4 are not supported.
func LookupCompressionCodec(codec format.CompressionCodec) (compress.Codec, error) {
	if codec >= 0 && int(codec) < len(compressionCodecs) {
		if c := compressionCodecs[codec]; c != nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("compression codec %s: %w", codec, encoding.ErrNotSupported)
}
