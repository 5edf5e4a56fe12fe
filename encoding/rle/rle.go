// Package rle implements the hybrid RLE/Bit-Packed encoding used by parquet
// for repetition and definition levels, dictionary indexes and booleans.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#run-length-encoding--bit-packing-hybrid-rle--3
package rle

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"

	"github.com/parquet-go/bitpack"

	"github.com/parquet-go/parquet-decoding/encoding"
)

const (
	// MaxBitWidth is the largest bit width supported for run values.
	MaxBitWidth = 32

	// maxSupportedValueCount bounds the number of values announced by a
	// single run header so a corrupted header cannot cause huge allocations.
	maxSupportedValueCount = 16 * 1024 * 1024
)

// Reader reads values from a sequence of RLE and bit-packed runs. Values are
// produced as int32 regardless of the bit width.
//
// The zero value is an empty reader; Reset must be called before reading.
type Reader struct {
	data     []byte
	offset   int
	bitWidth uint
	// values left in the current RLE run
	repeat int
	value  int32
	// values of the current bit-packed run that were not read yet
	packed  []int32
	unpack  []int32
	scratch []byte
}

// Reset starts reading runs of values of the given bit width from data.
func (r *Reader) Reset(data []byte, bitWidth uint) error {
	r.Clear()
	r.data, r.bitWidth = data, bitWidth
	if bitWidth > MaxBitWidth {
		return fmt.Errorf("RLE bit width %d exceeds the maximum of %d: %w", bitWidth, MaxBitWidth, encoding.ErrMalformedPage)
	}
	return nil
}

// Clear drops the runs of r, keeping its buffers. Reading from a cleared
// reader fails like reading past the end of the runs.
func (r *Reader) Clear() {
	*r = Reader{
		unpack:  r.unpack[:0],
		scratch: r.scratch[:0],
	}
}

// Offset returns the position in the data passed to Reset of the next run.
func (r *Reader) Offset() int { return r.offset }

// Read fills dst with the next len(dst) values. An error wrapping
// encoding.ErrMalformedPage is returned if the runs end before dst was filled
// or a run header is corrupted.
func (r *Reader) Read(dst []int32) (int, error) {
	n := 0
	for n < len(dst) {
		switch {
		case r.repeat > 0:
			c := min(r.repeat, len(dst)-n)
			for i := range dst[n : n+c] {
				dst[n+i] = r.value
			}
			r.repeat -= c
			n += c
		case len(r.packed) > 0:
			c := copy(dst[n:], r.packed)
			r.packed = r.packed[c:]
			n += c
		default:
			if err := r.nextRun(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func (r *Reader) nextRun() error {
	if r.offset >= len(r.data) {
		return fmt.Errorf("reading RLE run header: %w: %w", io.ErrUnexpectedEOF, encoding.ErrMalformedPage)
	}

	u, n := binary.Uvarint(r.data[r.offset:])
	switch {
	case n == 0:
		return fmt.Errorf("decoding RLE run header: %w: %w", io.ErrUnexpectedEOF, encoding.ErrMalformedPage)
	case n < 0:
		return fmt.Errorf("overflow after decoding %d/%d bytes of RLE run header: %w", -n+r.offset, len(r.data), encoding.ErrMalformedPage)
	}
	r.offset += n

	count, bitpacked := u>>1, (u&1) != 0
	if bitpacked {
		count *= 8
	}
	if count == 0 || count > maxSupportedValueCount {
		return fmt.Errorf("RLE run of %d values is out of range: %w", count, encoding.ErrMalformedPage)
	}

	if bitpacked {
		return r.readBitPacked(int(count))
	}
	return r.readRunLength(int(count))
}

func (r *Reader) readRunLength(count int) error {
	width := bitpack.ByteCount(r.bitWidth)
	if len(r.data)-r.offset < width {
		return fmt.Errorf("decoding RLE run of %d values: %w: %w", count, io.ErrUnexpectedEOF, encoding.ErrMalformedPage)
	}
	var b [4]byte
	copy(b[:], r.data[r.offset:r.offset+width])
	r.offset += width
	r.value = int32(binary.LittleEndian.Uint32(b[:]))
	r.repeat = count
	return nil
}

func (r *Reader) readBitPacked(count int) error {
	r.unpack = slices.Grow(r.unpack[:0], count)[:count]

	if r.bitWidth == 0 {
		clear(r.unpack)
		r.packed = r.unpack
		return nil
	}

	// Writers may omit the bytes of the trailing padding values in the last
	// run, only the values that are fully present are kept.
	byteCount := bitpack.ByteCount(uint(count) * r.bitWidth)
	if remain := len(r.data) - r.offset; remain < byteCount {
		byteCount = remain
		count = (8 * remain) / int(r.bitWidth)
		if count == 0 {
			return fmt.Errorf("decoding bit-packed run: %w: %w", io.ErrUnexpectedEOF, encoding.ErrMalformedPage)
		}
		r.unpack = r.unpack[:count]
	}

	r.scratch = slices.Grow(r.scratch[:0], byteCount+bitpack.PaddingInt32)
	r.scratch = append(r.scratch, r.data[r.offset:r.offset+byteCount]...)
	r.scratch = r.scratch[:byteCount+bitpack.PaddingInt32]
	clear(r.scratch[byteCount:])

	bitpack.Unpack(r.unpack, r.scratch, r.bitWidth)
	r.offset += byteCount
	r.packed = r.unpack
	return nil
}
