package delta

import (
	"fmt"
	"slices"

	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
)

// decodeLengths decodes numValues lengths from the DELTA_BINARY_PACKED stream
// at the beginning of data into lengths, returning the position in data of
// the first byte following the stream.
func decodeLengths(r *binaryPackedReader, lengths []int64, data []byte) (int, error) {
	if len(lengths) == 0 && len(data) == 0 {
		return 0, nil
	}
	if err := r.reset(data); err != nil {
		return 0, err
	}
	if r.totalValues < len(lengths) {
		return 0, fmt.Errorf("page of %d values holds only %d lengths: %w", len(lengths), r.totalValues, encoding.ErrMalformedPage)
	}
	if err := r.read(lengths); err != nil {
		return 0, err
	}
	for i, n := range lengths {
		if n < 0 {
			return 0, fmt.Errorf("negative length %d of value %d: %w", n, i, encoding.ErrMalformedPage)
		}
	}
	return r.offset, nil
}

// lengthByteArrayPage is the cursor state of DELTA_LENGTH_BYTE_ARRAY pages.
type lengthByteArrayPage struct {
	lengths []int64
	values  []byte
	index   int
	offset  int
}

func (p *lengthByteArrayPage) reset(r *binaryPackedReader, numValues int, data []byte) error {
	*p = lengthByteArrayPage{lengths: slices.Grow(p.lengths[:0], numValues)[:numValues]}

	offset, err := decodeLengths(r, p.lengths, data)
	if err != nil {
		return err
	}

	p.values = data[offset:]
	total := int64(0)
	for _, n := range p.lengths {
		total += n
		if total > int64(len(p.values)) {
			return fmt.Errorf("values of %d bytes exceed the %d bytes remaining in the page: %w", total, len(p.values), encoding.ErrMalformedPage)
		}
	}
	return nil
}

func (p *lengthByteArrayPage) next() []byte {
	n := int(p.lengths[p.index])
	v := p.values[p.offset : p.offset+n : p.offset+n]
	p.index++
	p.offset += n
	return v
}

// LengthByteArrayDecoder decodes DELTA_LENGTH_BYTE_ARRAY values: the lengths
// of all values encoded with DELTA_BINARY_PACKED, followed by the
// concatenation of the values. Decoded values reference the page.
type LengthByteArrayDecoder struct {
	encoding.State
	reader binaryPackedReader
	page   lengthByteArrayPage
}

func NewLengthByteArrayDecoder() *LengthByteArrayDecoder {
	return &LengthByteArrayDecoder{State: encoding.MakeState(format.DeltaLengthByteArray)}
}

func (d *LengthByteArrayDecoder) Reset(numValues int, data []byte) error {
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if err := d.page.reset(&d.reader, numValues, data); err != nil {
		return d.Errorf(err, "reading lengths")
	}
	return nil
}

func (d *LengthByteArrayDecoder) Decode(dst []encoding.ByteArray) (int, error) {
	n := d.Limit(len(dst))
	for i := range dst[:n] {
		dst[i] = d.page.next()
	}
	d.Consume(n)
	return n, nil
}

func (d *LengthByteArrayDecoder) DecodeSpaced(dst []encoding.ByteArray, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[encoding.ByteArray](d, dst, nullCount, validBits, validBitsOffset)
}

// ByteArrayDecoder decodes DELTA_BYTE_ARRAY values, also known as incremental
// encoding: the DELTA_BINARY_PACKED lengths of the prefixes shared with the
// previous value, followed by the suffixes in DELTA_LENGTH_BYTE_ARRAY.
//
// Decoded values are reconstructed in memory owned by the decoder, they
// remain valid until the next call to Reset. Fixed length byte arrays must
// all have the width of the column type length.
type ByteArrayDecoder[T encoding.ByteArray | encoding.FixedLenByteArray] struct {
	encoding.State
	fixed    bool
	size     int
	reader   binaryPackedReader
	prefixes []int64
	suffixes lengthByteArrayPage
	arena    []byte
	previous []byte
	index    int
}

func NewByteArrayDecoder() *ByteArrayDecoder[encoding.ByteArray] {
	return &ByteArrayDecoder[encoding.ByteArray]{State: encoding.MakeState(format.DeltaByteArray)}
}

func NewFixedLenByteArrayDecoder(column *encoding.Column) *ByteArrayDecoder[encoding.FixedLenByteArray] {
	return &ByteArrayDecoder[encoding.FixedLenByteArray]{
		State: encoding.MakeState(format.DeltaByteArray),
		fixed: true,
		size:  column.TypeLength,
	}
}

func (d *ByteArrayDecoder[T]) Reset(numValues int, data []byte) error {
	d.arena, d.previous, d.index = d.arena[:0], nil, 0
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if d.fixed && d.size <= 0 {
		return d.Errorf(encoding.ErrInvalidArgument, "invalid fixed length byte array size %d", d.size)
	}

	d.prefixes = slices.Grow(d.prefixes[:0], numValues)[:numValues]
	offset, err := decodeLengths(&d.reader, d.prefixes, data)
	if err != nil {
		return d.Errorf(err, "reading prefix lengths")
	}
	if err := d.suffixes.reset(&d.reader, numValues, data[offset:]); err != nil {
		return d.Errorf(err, "reading suffixes")
	}
	return nil
}

func (d *ByteArrayDecoder[T]) Decode(dst []T) (int, error) {
	n := d.Limit(len(dst))
	for i := range dst[:n] {
		prefix := d.prefixes[d.index]
		if prefix > int64(len(d.previous)) {
			return i, d.Errorf(encoding.ErrMalformedPage, "prefix length %d of value %d exceeds the length %d of the previous value", prefix, d.index, len(d.previous))
		}
		suffix := d.suffixes.next()

		start := len(d.arena)
		d.arena = append(d.arena, d.previous[:prefix]...)
		d.arena = append(d.arena, suffix...)
		value := d.arena[start:len(d.arena):len(d.arena)]
		if d.fixed && len(value) != d.size {
			return i, d.Errorf(encoding.ErrMalformedPage, "value %d of %d bytes in a column of %d bytes values", d.index, len(value), d.size)
		}

		dst[i] = T(value)
		d.previous = value
		d.index++
		d.Consume(1)
	}
	return n, nil
}

func (d *ByteArrayDecoder[T]) DecodeSpaced(dst []T, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[T](d, dst, nullCount, validBits, validBitsOffset)
}
