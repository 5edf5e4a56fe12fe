// Package parquet reads the values of parquet data pages.
//
// The package ties together the value decoders of the encoding sub-packages,
// the compression codecs of the compress sub-packages, and the definition
// levels of optional columns: a ColumnReader turns the raw pages of a column
// chunk into values interleaved with nulls.
package parquet

import (
	"fmt"

	"github.com/parquet-go/parquet-decoding/deprecated"
	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/encoding/bytestreamsplit"
	"github.com/parquet-go/parquet-decoding/encoding/delta"
	"github.com/parquet-go/parquet-decoding/encoding/dict"
	"github.com/parquet-go/parquet-decoding/encoding/plain"
	"github.com/parquet-go/parquet-decoding/encoding/rle"
	"github.com/parquet-go/parquet-decoding/format"
)

// NewDecoder returns a decoder of values of kind T encoded with enc.
//
// Combinations of kind and encoding that the parquet format does not define
// produce a decoder whose Decode method fails with encoding.ErrNotSupported.
// The column is consulted for the width of FIXED_LEN_BYTE_ARRAY values, it
// may be nil for other kinds.
func NewDecoder[T encoding.Kind](column *encoding.Column, enc format.Encoding) encoding.Decoder[T] {
	if column == nil {
		column = new(encoding.Column)
	}

	var d any
	switch enc {
	case format.PlainDictionary, format.RLEDictionary:
		d = dict.NewDecoder[T](enc)
	default:
		var zero T
		switch any(zero).(type) {
		case bool:
			d = newBooleanDecoder(enc)
		case int32:
			d = newInt32Decoder(enc)
		case int64:
			d = newInt64Decoder(enc)
		case deprecated.Int96:
			d = newInt96Decoder(enc)
		case float32:
			d = newFloatDecoder(enc)
		case float64:
			d = newDoubleDecoder(enc)
		case encoding.ByteArray:
			d = newByteArrayDecoder(enc)
		case encoding.FixedLenByteArray:
			d = newFixedLenByteArrayDecoder(column, enc)
		}
	}

	if decoder, ok := d.(encoding.Decoder[T]); ok {
		return decoder
	}
	return encoding.NewUnsupported[T](enc)
}

func newBooleanDecoder(enc format.Encoding) encoding.Decoder[bool] {
	switch enc {
	case format.Plain:
		return plain.NewBooleanDecoder()
	case format.RLE:
		return rle.NewBooleanDecoder()
	default:
		return nil
	}
}

func newInt32Decoder(enc format.Encoding) encoding.Decoder[int32] {
	switch enc {
	case format.Plain:
		return plain.NewInt32Decoder()
	case format.DeltaBinaryPacked:
		return delta.NewInt32Decoder()
	case format.ByteStreamSplit:
		return bytestreamsplit.NewInt32Decoder()
	default:
		return nil
	}
}

func newInt64Decoder(enc format.Encoding) encoding.Decoder[int64] {
	switch enc {
	case format.Plain:
		return plain.NewInt64Decoder()
	case format.DeltaBinaryPacked:
		return delta.NewInt64Decoder()
	case format.ByteStreamSplit:
		return bytestreamsplit.NewInt64Decoder()
	default:
		return nil
	}
}

func newInt96Decoder(enc format.Encoding) encoding.Decoder[deprecated.Int96] {
	if enc == format.Plain {
		return plain.NewInt96Decoder()
	}
	return nil
}

func newFloatDecoder(enc format.Encoding) encoding.Decoder[float32] {
	switch enc {
	case format.Plain:
		return plain.NewFloatDecoder()
	case format.ByteStreamSplit:
		return bytestreamsplit.NewFloatDecoder()
	default:
		return nil
	}
}

func newDoubleDecoder(enc format.Encoding) encoding.Decoder[float64] {
	switch enc {
	case format.Plain:
		return plain.NewDoubleDecoder()
	case format.ByteStreamSplit:
		return bytestreamsplit.NewDoubleDecoder()
	default:
		return nil
	}
}

func newByteArrayDecoder(enc format.Encoding) encoding.Decoder[encoding.ByteArray] {
	switch enc {
	case format.Plain:
		return plain.NewByteArrayDecoder()
	case format.DeltaLengthByteArray:
		return delta.NewLengthByteArrayDecoder()
	case format.DeltaByteArray:
		return delta.NewByteArrayDecoder()
	default:
		return nil
	}
}

func newFixedLenByteArrayDecoder(column *encoding.Column, enc format.Encoding) encoding.Decoder[encoding.FixedLenByteArray] {
	switch enc {
	case format.Plain:
		return plain.NewFixedLenByteArrayDecoder(column)
	case format.DeltaByteArray:
		return delta.NewFixedLenByteArrayDecoder(column)
	case format.ByteStreamSplit:
		return bytestreamsplit.NewFixedLenByteArrayDecoder(column)
	default:
		return nil
	}
}

// TypeOf returns the physical type of values of kind T.
func TypeOf[T encoding.Kind]() format.Type {
	var zero T
	switch any(zero).(type) {
	case bool:
		return format.Boolean
	case int32:
		return format.Int32
	case int64:
		return format.Int64
	case deprecated.Int96:
		return format.Int96
	case float32:
		return format.Float
	case float64:
		return format.Double
	case encoding.ByteArray:
		return format.ByteArray
	default:
		return format.FixedLenByteArray
	}
}

func checkColumnType[T encoding.Kind](column *encoding.Column) error {
	if typ := TypeOf[T](); column.Type != typ {
		return fmt.Errorf("cannot read values of %s column %q as %s: %w", column.Type, column.Path, typ, encoding.ErrInvalidArgument)
	}
	if column.Type == format.FixedLenByteArray && column.TypeLength <= 0 {
		return fmt.Errorf("invalid length %d of fixed length byte array column %q: %w", column.TypeLength, column.Path, encoding.ErrInvalidArgument)
	}
	return nil
}
