// Package delta implements the DELTA_BINARY_PACKED, DELTA_LENGTH_BYTE_ARRAY
// and DELTA_BYTE_ARRAY parquet encodings.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#delta-encoding-delta_binary_packed--5
package delta

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/parquet-go/bitpack"

	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
)

const (
	maxSupportedBlockSize  = 65536
	maxSupportedMiniBlocks = 512
	maxSupportedBitWidth   = 64
)

// binaryPackedReader reads the values of a DELTA_BINARY_PACKED stream. It is
// used both by the integer decoders and to decode the lengths of the byte
// array encodings.
type binaryPackedReader struct {
	data   []byte
	offset int

	miniBlockCount int
	miniBlockSize  int
	totalValues    int
	firstPending   bool
	lastValue      int64

	minDelta  int64
	bitWidths []byte
	miniBlock int

	values  []int64
	pos     int
	scratch []byte
}

func (r *binaryPackedReader) reset(data []byte) error {
	*r = binaryPackedReader{
		data:      data,
		values:    r.values[:0],
		scratch:   r.scratch[:0],
		miniBlock: -1,
	}

	blockSize, err := r.uvarint("block size")
	if err != nil {
		return err
	}
	miniBlockCount, err := r.uvarint("number of mini blocks")
	if err != nil {
		return err
	}
	totalValues, err := r.uvarint("total value count")
	if err != nil {
		return err
	}
	firstValue, err := r.varint("first value")
	if err != nil {
		return err
	}

	switch {
	case blockSize == 0 || blockSize > maxSupportedBlockSize || blockSize%128 != 0:
		return fmt.Errorf("invalid block size %d: %w", blockSize, encoding.ErrMalformedPage)
	case miniBlockCount == 0 || miniBlockCount > maxSupportedMiniBlocks || blockSize%miniBlockCount != 0:
		return fmt.Errorf("invalid number of mini blocks %d for block size %d: %w", miniBlockCount, blockSize, encoding.ErrMalformedPage)
	case (blockSize/miniBlockCount)%32 != 0:
		return fmt.Errorf("invalid mini block size %d: %w", blockSize/miniBlockCount, encoding.ErrMalformedPage)
	case totalValues > math.MaxInt32:
		return fmt.Errorf("total value count %d is too large: %w", totalValues, encoding.ErrMalformedPage)
	}

	r.miniBlockCount = int(miniBlockCount)
	r.miniBlockSize = int(blockSize / miniBlockCount)
	r.totalValues = int(totalValues)
	r.firstPending = totalValues > 0
	r.lastValue = firstValue
	return nil
}

// read fills dst with the next len(dst) values of the stream.
func (r *binaryPackedReader) read(dst []int64) error {
	if len(dst) > r.totalValues {
		return fmt.Errorf("reading %d values out of %d remaining: %w", len(dst), r.totalValues, encoding.ErrMalformedPage)
	}

	i := 0
	if len(dst) > 0 && r.firstPending {
		dst[0] = r.lastValue
		r.firstPending = false
		i++
	}

	for i < len(dst) {
		if r.pos == len(r.values) {
			if err := r.nextMiniBlock(); err != nil {
				return err
			}
		}
		n := copy(dst[i:], r.values[r.pos:])
		r.pos += n
		i += n
	}

	r.totalValues -= len(dst)
	return nil
}

func (r *binaryPackedReader) nextMiniBlock() error {
	if r.miniBlock < 0 || r.miniBlock == r.miniBlockCount {
		minDelta, err := r.varint("block min delta")
		if err != nil {
			return err
		}
		if len(r.data)-r.offset < r.miniBlockCount {
			return fmt.Errorf("reading bit widths of %d mini blocks: %w: %w", r.miniBlockCount, io.ErrUnexpectedEOF, encoding.ErrMalformedPage)
		}
		r.minDelta = minDelta
		r.bitWidths = r.data[r.offset : r.offset+r.miniBlockCount]
		r.offset += r.miniBlockCount
		r.miniBlock = 0
	}

	bitWidth := uint(r.bitWidths[r.miniBlock])
	if bitWidth > maxSupportedBitWidth {
		return fmt.Errorf("invalid bit width %d of mini block %d: %w", bitWidth, r.miniBlock, encoding.ErrMalformedPage)
	}
	r.miniBlock++

	count := r.miniBlockSize
	r.values = slices.Grow(r.values[:0], count)[:count]
	r.pos = 0

	if bitWidth == 0 {
		clear(r.values)
	} else {
		// The last mini block may be truncated after the last value.
		byteCount := bitpack.ByteCount(uint(count) * bitWidth)
		if remain := len(r.data) - r.offset; remain < byteCount {
			byteCount = remain
			count = (8 * remain) / int(bitWidth)
			if count == 0 {
				return fmt.Errorf("reading mini block of %d values: %w: %w", r.miniBlockSize, io.ErrUnexpectedEOF, encoding.ErrMalformedPage)
			}
			r.values = r.values[:count]
		}

		r.scratch = slices.Grow(r.scratch[:0], byteCount+bitpack.PaddingInt64)
		r.scratch = append(r.scratch, r.data[r.offset:r.offset+byteCount]...)
		r.scratch = r.scratch[:byteCount+bitpack.PaddingInt64]
		clear(r.scratch[byteCount:])
		bitpack.Unpack(r.values, r.scratch, bitWidth)
		r.offset += byteCount
	}

	last, minDelta := uint64(r.lastValue), uint64(r.minDelta)
	for i, delta := range r.values {
		last += minDelta + uint64(delta)
		r.values[i] = int64(last)
	}
	r.lastValue = int64(last)
	return nil
}

func (r *binaryPackedReader) uvarint(what string) (uint64, error) {
	u, n := binary.Uvarint(r.data[r.offset:])
	if n <= 0 {
		return 0, fmt.Errorf("reading %s: %w", what, encoding.ErrMalformedPage)
	}
	r.offset += n
	return u, nil
}

func (r *binaryPackedReader) varint(what string) (int64, error) {
	v, n := binary.Varint(r.data[r.offset:])
	if n <= 0 {
		return 0, fmt.Errorf("reading %s: %w", what, encoding.ErrMalformedPage)
	}
	r.offset += n
	return v, nil
}

// BinaryPackedDecoder decodes DELTA_BINARY_PACKED integers. INT32 values are
// decoded with 64 bits arithmetic and truncated, which produces the same
// results as the 32 bits wrapping arithmetic of the encoder.
type BinaryPackedDecoder[T int32 | int64] struct {
	encoding.State
	reader binaryPackedReader
	buffer []int64
}

func NewInt32Decoder() *BinaryPackedDecoder[int32] {
	return &BinaryPackedDecoder[int32]{State: encoding.MakeState(format.DeltaBinaryPacked)}
}

func NewInt64Decoder() *BinaryPackedDecoder[int64] {
	return &BinaryPackedDecoder[int64]{State: encoding.MakeState(format.DeltaBinaryPacked)}
}

func (d *BinaryPackedDecoder[T]) Reset(numValues int, data []byte) error {
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if numValues == 0 && len(data) == 0 {
		return nil
	}
	if err := d.reader.reset(data); err != nil {
		return d.Errorf(err, "reading header")
	}
	if d.reader.totalValues < numValues {
		return d.Errorf(encoding.ErrMalformedPage, "page of %d values holds only %d values", numValues, d.reader.totalValues)
	}
	return nil
}

func (d *BinaryPackedDecoder[T]) Decode(dst []T) (int, error) {
	n := d.Limit(len(dst))
	if n == 0 {
		return 0, nil
	}

	var values []int64
	if v, ok := any(dst).([]int64); ok {
		values = v[:n]
	} else {
		d.buffer = slices.Grow(d.buffer[:0], n)[:n]
		values = d.buffer
	}

	if err := d.reader.read(values); err != nil {
		return 0, d.Errorf(err, "decoding values")
	}
	if _, ok := any(dst).([]int64); !ok {
		for i, v := range values {
			dst[i] = T(v)
		}
	}

	d.Consume(n)
	return n, nil
}

func (d *BinaryPackedDecoder[T]) DecodeSpaced(dst []T, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[T](d, dst, nullCount, validBits, validBitsOffset)
}
