// Package encoding provides the generic APIs implemented by parquet value
// decoders in its sub-packages.
//
// A decoder is a stateful, per-page object: the column reader hands it the raw
// bytes of a page with Reset, then requests values either densely with Decode
// or interleaved with nulls with DecodeSpaced, until ValuesLeft reaches zero.
// The same decoder is then reset with the next page of the column chunk.
package encoding

import (
	"errors"

	"github.com/parquet-go/parquet-decoding/deprecated"
	"github.com/parquet-go/parquet-decoding/format"
)

var (
	// ErrNotSupported is an error returned when the underlying encoding does
	// not support the kind of values being decoded.
	//
	// This error may be wrapped with type information, applications must use
	// errors.Is rather than equality comparisons to test the error values
	// returned by decoders.
	ErrNotSupported = errors.New("encoding not supported")

	// ErrDecodeMismatch is returned by DecodeSpaced when the dense decode
	// beneath it produced a different number of values than the validity
	// bitmap announced. It indicates either a corrupted page or a null count
	// inconsistent with the bitmap.
	ErrDecodeMismatch = errors.New("number of values decoded does not match the number of non-null values")

	// ErrMalformedPage is returned when the encoded framing of a page would
	// cause a decoder to read out of bounds of the page buffer.
	ErrMalformedPage = errors.New("malformed page")

	// ErrInvalidArgument is returned when a caller passes arguments that
	// violate the preconditions of a decoder method, for example a negative
	// value count or a validity bitmap too short for the slot range.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ByteArray is the value kind of BYTE_ARRAY columns. Decoded values reference
// the page buffer (or memory owned by the decoder) and remain valid until the
// next call to Reset.
type ByteArray []byte

// FixedLenByteArray is the value kind of FIXED_LEN_BYTE_ARRAY columns, the
// width of each value is given by Column.TypeLength.
type FixedLenByteArray []byte

// Kind is the constraint satisfied by the value kinds that decoders produce.
//
// Logical types like DECIMAL are decoded as their physical kind.
type Kind interface {
	bool | int32 | int64 | deprecated.Int96 | float32 | float64 | ByteArray | FixedLenByteArray
}

// Column describes the column that a decoder is reading values of. Decoders
// consult it at construction and never mutate it.
type Column struct {
	Path               []string
	Type               format.Type
	TypeLength         int
	MaxDefinitionLevel int
	MaxRepetitionLevel int
}

// The Decoder interface is implemented by the decoders of all encodings.
//
// Decoders are not safe for concurrent use; separate columns should use
// separate decoder instances.
type Decoder[T Kind] interface {
	// Returns the parquet code for the encoding supported by this decoder.
	Encoding() format.Encoding

	// Reset sets the data of a new page holding numValues encoded values,
	// discarding all the state of the previous page. The decoder retains a
	// reference to data until the next call to Reset but never modifies it.
	Reset(numValues int, data []byte) error

	// Decode decodes up to len(dst) values into dst, returning the number of
	// values written. The count is len(dst) unless fewer values remain in the
	// page, in which case all the remaining values are decoded.
	Decode(dst []T) (int, error)

	// DecodeSpaced fills the len(dst) slots of dst, leaving the slots whose
	// bit in validBits (starting at bit validBitsOffset) is zero untouched.
	// nullCount must be the number of zero bits in that range.
	//
	// The method returns len(dst) on success. It fails with ErrDecodeMismatch
	// if the page did not hold len(dst)-nullCount values.
	DecodeSpaced(dst []T, nullCount int, validBits []byte, validBitsOffset int64) (int, error)

	// ValuesLeft returns the number of values left to decode in the page.
	ValuesLeft() int
}

// SizeOf returns the size in bytes of one value of the given kind, or zero
// for kinds that have a variable or column-dependent size.
func SizeOf[T Kind]() int {
	var zero T
	switch any(zero).(type) {
	case int32, float32:
		return 4
	case int64, float64:
		return 8
	case deprecated.Int96:
		return 12
	default:
		return 0
	}
}
