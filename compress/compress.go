// Package compress provides the generic APIs implemented by the parquet
// compression codecs in its sub-packages.
//
// Pages are decompressed before their bytes reach a value decoder, so codecs
// only implement decompression.
//
// https://github.com/apache/parquet-format/blob/master/Compression.md
package compress

import (
	"bytes"
	"io"

	"github.com/parquet-go/parquet-decoding/format"
	"github.com/parquet-go/parquet-decoding/internal/memory"
)

// The Codec interface represents parquet compression codecs implemented by the
// compress sub-packages.
//
// Codec instances must be safe to use concurrently from multiple goroutines.
type Codec interface {
	// Returns a human-readable name for the codec.
	String() string

	// Returns the code of the compression codec in the parquet format.
	CompressionCodec() format.CompressionCodec

	// Reads the compressed data from src and writes the decompressed
	// version to dst.
	//
	// The method reuses the capacity of dst and returns the resulting slice,
	// callers that know the uncompressed size should pass a dst buffer with
	// that capacity.
	Decode(dst, src []byte) ([]byte, error)
}

// Reader is the interface of the streaming decompressors wrapped by a
// Decompressor.
type Reader interface {
	io.ReadCloser
	Reset(io.Reader) error
}

// Decompressor is a helper for codecs backed by streaming readers. It pools
// the readers so they are reset and reused across calls to Decode.
type Decompressor struct {
	readers memory.Pool[reader]
}

type reader struct {
	input  bytes.Reader
	reader Reader
}

// Decode decompresses src into dst, creating a reader with newReader when the
// pool is empty.
func (d *Decompressor) Decode(dst, src []byte, newReader func(io.Reader) (Reader, error)) ([]byte, error) {
	var err error
	r := d.readers.Get(
		func() *reader {
			r := new(reader)
			r.input.Reset(src)
			r.reader, err = newReader(&r.input)
			return r
		},
		func(r *reader) {
			r.input.Reset(src)
			err = r.reader.Reset(&r.input)
		},
	)
	if err != nil {
		return dst[:0], err
	}
	defer func() {
		r.input.Reset(nil)
		d.readers.Put(r)
	}()

	if cap(dst) == 0 {
		dst = make([]byte, 0, 2*len(src))
	} else {
		dst = dst[:0]
	}

	for {
		n, err := r.reader.Read(dst[len(dst):cap(dst)])
		dst = dst[:len(dst)+n]

		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return dst, err
		}

		if len(dst) == cap(dst) {
			tmp := make([]byte, len(dst), 2*len(dst)+1)
			copy(tmp, dst)
			dst = tmp
		}
	}
}
