// Package plain implements the PLAIN parquet encoding.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#plain-plain--0
package plain

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/parquet-go/bitpack/unsafecast"
	"golang.org/x/sys/cpu"

	"github.com/parquet-go/parquet-decoding/deprecated"
	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
	"github.com/parquet-go/parquet-decoding/internal/bits"
)

const (
	// ByteArrayLengthSize is the size of the length prefix of BYTE_ARRAY values.
	ByteArrayLengthSize = 4
)

// Fixed is the constraint of value kinds with a fixed size in the PLAIN
// encoding.
type Fixed interface {
	int32 | int64 | deprecated.Int96 | float32 | float64
}

// page is the cursor state of the decoders, replaced wholesale by Reset.
type page struct {
	data   []byte
	offset int
}

// FixedDecoder decodes PLAIN values of fixed size, stored contiguously in
// little-endian byte order.
type FixedDecoder[T Fixed] struct {
	encoding.State
	page page
}

// NewFixedDecoder returns a decoder of PLAIN values of type T.
func NewFixedDecoder[T Fixed]() *FixedDecoder[T] {
	return &FixedDecoder[T]{State: encoding.MakeState(format.Plain)}
}

func NewInt32Decoder() *FixedDecoder[int32] { return NewFixedDecoder[int32]() }

func NewInt64Decoder() *FixedDecoder[int64] { return NewFixedDecoder[int64]() }

func NewInt96Decoder() *FixedDecoder[deprecated.Int96] { return NewFixedDecoder[deprecated.Int96]() }

func NewFloatDecoder() *FixedDecoder[float32] { return NewFixedDecoder[float32]() }

func NewDoubleDecoder() *FixedDecoder[float64] { return NewFixedDecoder[float64]() }

func (d *FixedDecoder[T]) Reset(numValues int, data []byte) error {
	d.page = page{data: data}
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if size := encoding.SizeOf[T](); len(data) < numValues*size {
		return d.Errorf(encoding.ErrMalformedPage, "%d bytes cannot hold %d values of %d bytes", len(data), numValues, size)
	}
	return nil
}

func (d *FixedDecoder[T]) Decode(dst []T) (int, error) {
	n := d.Limit(len(dst))
	size := encoding.SizeOf[T]()
	src := d.page.data[d.page.offset : d.page.offset+n*size]

	if cpu.IsBigEndian {
		decodeLittleEndian(dst[:n], src)
	} else {
		copy(dst, unsafecast.Slice[T](src))
	}

	d.page.offset += n * size
	d.Consume(n)
	return n, nil
}

func (d *FixedDecoder[T]) DecodeSpaced(dst []T, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[T](d, dst, nullCount, validBits, validBitsOffset)
}

func decodeLittleEndian[T Fixed](dst []T, src []byte) {
	switch values := any(dst).(type) {
	case []int32:
		for i := range values {
			values[i] = int32(binary.LittleEndian.Uint32(src[4*i:]))
		}
	case []int64:
		for i := range values {
			values[i] = int64(binary.LittleEndian.Uint64(src[8*i:]))
		}
	case []float32:
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
		}
	case []float64:
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[8*i:]))
		}
	case []deprecated.Int96:
		for i := range values {
			values[i] = deprecated.Int96FromBytes(src[12*i:])
		}
	}
}

// BooleanDecoder decodes PLAIN booleans, bit-packed least significant bit
// first.
type BooleanDecoder struct {
	encoding.State
	page page
}

func NewBooleanDecoder() *BooleanDecoder {
	return &BooleanDecoder{State: encoding.MakeState(format.Plain)}
}

func (d *BooleanDecoder) Reset(numValues int, data []byte) error {
	d.page = page{data: data}
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if len(data) < bits.ByteCount(uint(numValues)) {
		return d.Errorf(encoding.ErrMalformedPage, "%d bytes cannot hold %d booleans", len(data), numValues)
	}
	return nil
}

func (d *BooleanDecoder) Decode(dst []bool) (int, error) {
	n := d.Limit(len(dst))
	for i := range dst[:n] {
		dst[i] = bits.Get(d.page.data, int64(d.page.offset+i))
	}
	d.page.offset += n
	d.Consume(n)
	return n, nil
}

func (d *BooleanDecoder) DecodeSpaced(dst []bool, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[bool](d, dst, nullCount, validBits, validBitsOffset)
}

// ByteArrayDecoder decodes PLAIN byte arrays, each prefixed with its length
// as a 4 bytes little-endian integer. Decoded values reference the page.
type ByteArrayDecoder struct {
	encoding.State
	page page
}

func NewByteArrayDecoder() *ByteArrayDecoder {
	return &ByteArrayDecoder{State: encoding.MakeState(format.Plain)}
}

// Reset validates the length prefixes of all the values in the page so that
// Decode never reads out of bounds.
func (d *ByteArrayDecoder) Reset(numValues int, data []byte) error {
	d.page = page{data: data}
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if err := ValidateByteArray(data, numValues); err != nil {
		return d.Errorf(err, "validating byte array page")
	}
	return nil
}

func (d *ByteArrayDecoder) Decode(dst []encoding.ByteArray) (int, error) {
	n := d.Limit(len(dst))
	data, offset := d.page.data, d.page.offset

	for i := range dst[:n] {
		size := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += ByteArrayLengthSize
		dst[i] = encoding.ByteArray(data[offset : offset+size : offset+size])
		offset += size
	}

	d.page.offset = offset
	d.Consume(n)
	return n, nil
}

func (d *ByteArrayDecoder) DecodeSpaced(dst []encoding.ByteArray, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[encoding.ByteArray](d, dst, nullCount, validBits, validBitsOffset)
}

// ValidateByteArray checks that data holds numValues length-prefixed byte
// arrays, returning an error wrapping encoding.ErrMalformedPage otherwise.
func ValidateByteArray(data []byte, numValues int) error {
	offset := 0
	for i := range numValues {
		if len(data)-offset < ByteArrayLengthSize {
			return fmt.Errorf("missing length of value %d at offset %d: %w", i, offset, encoding.ErrMalformedPage)
		}
		size := uint64(binary.LittleEndian.Uint32(data[offset:]))
		offset += ByteArrayLengthSize
		if uint64(len(data)-offset) < size {
			return fmt.Errorf("value %d of length %d exceeds the %d bytes remaining: %w", i, size, len(data)-offset, encoding.ErrMalformedPage)
		}
		offset += int(size)
	}
	return nil
}

// FixedLenByteArrayDecoder decodes PLAIN fixed length byte arrays, stored
// back to back without length prefix. The width of values is read from the
// column type length. Decoded values reference the page.
type FixedLenByteArrayDecoder struct {
	encoding.State
	size int
	page page
}

func NewFixedLenByteArrayDecoder(column *encoding.Column) *FixedLenByteArrayDecoder {
	return &FixedLenByteArrayDecoder{
		State: encoding.MakeState(format.Plain),
		size:  column.TypeLength,
	}
}

func (d *FixedLenByteArrayDecoder) Reset(numValues int, data []byte) error {
	d.page = page{data: data}
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if d.size <= 0 {
		return d.Errorf(encoding.ErrInvalidArgument, "invalid fixed length byte array size %d", d.size)
	}
	if len(data) < numValues*d.size {
		return d.Errorf(encoding.ErrMalformedPage, "%d bytes cannot hold %d values of %d bytes", len(data), numValues, d.size)
	}
	return nil
}

func (d *FixedLenByteArrayDecoder) Decode(dst []encoding.FixedLenByteArray) (int, error) {
	n := d.Limit(len(dst))
	for i := range dst[:n] {
		j := d.page.offset + d.size
		dst[i] = encoding.FixedLenByteArray(d.page.data[d.page.offset:j:j])
		d.page.offset = j
	}
	d.Consume(n)
	return n, nil
}

func (d *FixedLenByteArrayDecoder) DecodeSpaced(dst []encoding.FixedLenByteArray, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[encoding.FixedLenByteArray](d, dst, nullCount, validBits, validBitsOffset)
}
