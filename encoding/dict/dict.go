// Package dict implements the dictionary encodings of data pages
// (RLE_DICTIONARY and the deprecated PLAIN_DICTIONARY), where values are
// stored as indexes into the dictionary page of the column chunk.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#dictionary-encoding-plain_dictionary--2-and-rle_dictionary--8
package dict

import (
	"errors"
	"fmt"

	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/encoding/rle"
	"github.com/parquet-go/parquet-decoding/format"
)

// ErrIndexOutOfRange is returned when a page references a value past the end
// of the dictionary. The error also matches encoding.ErrMalformedPage.
var ErrIndexOutOfRange = fmt.Errorf("dictionary index out of range: %w", encoding.ErrMalformedPage)

// ErrNoDictionary is returned when a data page is loaded before the
// dictionary was set.
var ErrNoDictionary = errors.New("no dictionary was set to decode dictionary-encoded pages")

const indexBufferSize = 256

// Decoder decodes dictionary indexes and looks up the values they refer to.
// The page data starts with one byte holding the bit width of indexes,
// followed by the RLE/bit-packed runs of indexes.
type Decoder[T encoding.Kind] struct {
	encoding.State
	dict    []T
	reader  rle.Reader
	indexes [indexBufferSize]int32
}

// NewDecoder returns a dictionary decoder for the given encoding, which is
// expected to be format.RLEDictionary or format.PlainDictionary.
func NewDecoder[T encoding.Kind](enc format.Encoding) *Decoder[T] {
	return &Decoder[T]{State: encoding.MakeState(enc)}
}

// SetDictionary installs the values of the dictionary page. The decoder
// retains the slice; values decoded from data pages are copied from it.
func (d *Decoder[T]) SetDictionary(values []T) { d.dict = values }

// Dictionary returns the values installed by SetDictionary.
func (d *Decoder[T]) Dictionary() []T { return d.dict }

func (d *Decoder[T]) Reset(numValues int, data []byte) error {
	d.reader.Clear()
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if numValues == 0 {
		return nil
	}
	if d.dict == nil {
		return d.Errorf(ErrNoDictionary, "loading page of %d values", numValues)
	}
	if len(data) == 0 {
		return d.Errorf(encoding.ErrMalformedPage, "missing bit width of dictionary indexes")
	}
	if err := d.reader.Reset(data[1:], uint(data[0])); err != nil {
		return d.Errorf(err, "reading dictionary indexes")
	}
	return nil
}

func (d *Decoder[T]) Decode(dst []T) (int, error) {
	n := d.Limit(len(dst))
	for i := 0; i < n; {
		indexes := d.indexes[:min(n-i, indexBufferSize)]
		if _, err := d.reader.Read(indexes); err != nil {
			return i, d.Errorf(err, "reading dictionary indexes")
		}
		for j, index := range indexes {
			if index < 0 || int(index) >= len(d.dict) {
				return i, d.Errorf(ErrIndexOutOfRange, "index %d at position %d exceeds dictionary of %d values", index, i+j, len(d.dict))
			}
			dst[i+j] = d.dict[index]
		}
		d.Consume(len(indexes))
		i += len(indexes)
	}
	return n, nil
}

func (d *Decoder[T]) DecodeSpaced(dst []T, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[T](d, dst, nullCount, validBits, validBitsOffset)
}
