// Package bytestreamsplit implements the BYTE_STREAM_SPLIT parquet encoding.
//
// A page of N values of K bytes is made of K streams of N bytes, stream k
// holding byte k of each value in little-endian order.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#byte-stream-split-byte_stream_split--9
package bytestreamsplit

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/parquet-go/bitpack/unsafecast"
	"golang.org/x/sys/cpu"

	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
)

// Fixed is the constraint of the numeric kinds that the encoding applies to.
type Fixed interface {
	int32 | int64 | float32 | float64
}

// page is the state of a loaded page: the streams and the index of the next
// value to decode in each of them.
type page struct {
	data   []byte
	stride int
	index  int
}

func (p *page) reset(data []byte, numValues, width int) error {
	*p = page{data: data}
	if width <= 0 {
		return encoding.ErrInvalidArgument
	}
	if len(data)%width != 0 || len(data)/width < numValues {
		return encoding.ErrMalformedPage
	}
	p.stride = len(data) / width
	return nil
}

// gather writes the next n values into dst as contiguous little-endian
// values of width bytes.
func (p *page) gather(dst []byte, n, width int) {
	for k := 0; k < width; k++ {
		stream := p.data[k*p.stride+p.index : k*p.stride+p.index+n]
		for i, b := range stream {
			dst[i*width+k] = b
		}
	}
	p.index += n
}

// Decoder decodes BYTE_STREAM_SPLIT values of the numeric kinds.
type Decoder[T Fixed] struct {
	encoding.State
	page   page
	buffer []byte
}

func NewDecoder[T Fixed]() *Decoder[T] {
	return &Decoder[T]{State: encoding.MakeState(format.ByteStreamSplit)}
}

func NewInt32Decoder() *Decoder[int32] { return NewDecoder[int32]() }

func NewInt64Decoder() *Decoder[int64] { return NewDecoder[int64]() }

func NewFloatDecoder() *Decoder[float32] { return NewDecoder[float32]() }

func NewDoubleDecoder() *Decoder[float64] { return NewDecoder[float64]() }

func (d *Decoder[T]) Reset(numValues int, data []byte) error {
	if err := d.Begin(numValues); err != nil {
		return err
	}
	size := encoding.SizeOf[T]()
	if err := d.page.reset(data, numValues, size); err != nil {
		return d.Errorf(err, "page of %d bytes cannot hold %d streams of %d values", len(data), size, numValues)
	}
	return nil
}

func (d *Decoder[T]) Decode(dst []T) (int, error) {
	n := d.Limit(len(dst))
	size := encoding.SizeOf[T]()

	if cpu.IsBigEndian {
		d.buffer = slices.Grow(d.buffer[:0], n*size)[:n*size]
		d.page.gather(d.buffer, n, size)
		decodeLittleEndian(dst[:n], d.buffer)
	} else {
		d.page.gather(unsafecast.Slice[byte](dst[:n]), n, size)
	}

	d.Consume(n)
	return n, nil
}

func (d *Decoder[T]) DecodeSpaced(dst []T, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
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
	}
}

// FixedLenByteArrayDecoder decodes BYTE_STREAM_SPLIT values of
// FIXED_LEN_BYTE_ARRAY columns. Values are reassembled in memory owned by the
// decoder, they remain valid until the next call to Reset.
type FixedLenByteArrayDecoder struct {
	encoding.State
	size  int
	page  page
	arena []byte
}

// NewFixedLenByteArrayDecoder returns a decoder for values of the column, the
// width of values is read from column.TypeLength.
func NewFixedLenByteArrayDecoder(column *encoding.Column) *FixedLenByteArrayDecoder {
	return &FixedLenByteArrayDecoder{
		State: encoding.MakeState(format.ByteStreamSplit),
		size:  column.TypeLength,
	}
}

func (d *FixedLenByteArrayDecoder) Reset(numValues int, data []byte) error {
	d.arena = d.arena[:0]
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if err := d.page.reset(data, numValues, d.size); err != nil {
		return d.Errorf(err, "page of %d bytes cannot hold %d streams of %d values", len(data), d.size, numValues)
	}
	d.arena = slices.Grow(d.arena, numValues*d.size)
	return nil
}

func (d *FixedLenByteArrayDecoder) Decode(dst []encoding.FixedLenByteArray) (int, error) {
	n := d.Limit(len(dst))
	start := len(d.arena)
	d.arena = d.arena[:start+n*d.size]
	values := d.arena[start:]
	d.page.gather(values, n, d.size)

	for i := range dst[:n] {
		j := i * d.size
		dst[i] = values[j : j+d.size : j+d.size]
	}
	d.Consume(n)
	return n, nil
}

func (d *FixedLenByteArrayDecoder) DecodeSpaced(dst []encoding.FixedLenByteArray, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[encoding.FixedLenByteArray](d, dst, nullCount, validBits, validBitsOffset)
}
