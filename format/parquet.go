// Package format declares the enumerations of the parquet format that the
// decoding packages consult: physical types, value encodings and compression
// codecs.
//
// https://github.com/apache/parquet-format/blob/master/src/main/thrift/parquet.thrift
package format

import "fmt"

// Type is the physical type of values stored in a column.
type Type int32

const (
	Boolean           Type = 0
	Int32             Type = 1
	Int64             Type = 2
	Int96             Type = 3 // deprecated
	Float             Type = 4
	Double            Type = 5
	ByteArray         Type = 6
	FixedLenByteArray Type = 7
)

func (t Type) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return fmt.Sprintf("Type(%d)", int32(t))
	}
}

// ParseType returns the Type named by s, matching the names returned by
// Type.String.
func ParseType(s string) (Type, error) {
	for t := Boolean; t <= FixedLenByteArray; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return -1, fmt.Errorf("unknown parquet type: %q", s)
}

// Encoding identifies the encoding of values in a page.
type Encoding int32

const (
	Plain                Encoding = 0
	PlainDictionary      Encoding = 2 // deprecated, same layout as RLEDictionary in data pages
	RLE                  Encoding = 3
	BitPacked            Encoding = 4 // deprecated
	DeltaBinaryPacked    Encoding = 5
	DeltaLengthByteArray Encoding = 6
	DeltaByteArray       Encoding = 7
	RLEDictionary        Encoding = 8
	ByteStreamSplit      Encoding = 9
)

func (e Encoding) String() string {
	switch e {
	case Plain:
		return "PLAIN"
	case PlainDictionary:
		return "PLAIN_DICTIONARY"
	case RLE:
		return "RLE"
	case BitPacked:
		return "BIT_PACKED"
	case DeltaBinaryPacked:
		return "DELTA_BINARY_PACKED"
	case DeltaLengthByteArray:
		return "DELTA_LENGTH_BYTE_ARRAY"
	case DeltaByteArray:
		return "DELTA_BYTE_ARRAY"
	case RLEDictionary:
		return "RLE_DICTIONARY"
	case ByteStreamSplit:
		return "BYTE_STREAM_SPLIT"
	default:
		return fmt.Sprintf("Encoding(%d)", int32(e))
	}
}

// ParseEncoding returns the Encoding named by s, matching the names returned
// by Encoding.String.
func ParseEncoding(s string) (Encoding, error) {
	for e := Plain; e <= ByteStreamSplit; e++ {
		if e != 1 && e.String() == s {
			return e, nil
		}
	}
	return -1, fmt.Errorf("unknown parquet encoding: %q", s)
}

// CompressionCodec identifies the codec used to compress page data.
type CompressionCodec int32

const (
	Uncompressed CompressionCodec = 0
	Snappy       CompressionCodec = 1
	Gzip         CompressionCodec = 2
	LZO          CompressionCodec = 3
	Brotli       CompressionCodec = 4 // Added in 2.4
	Lz4          CompressionCodec = 5 // DEPRECATED (Added in 2.4)
	Zstd         CompressionCodec = 6 // Added in 2.4
	Lz4Raw       CompressionCodec = 7 // Added in 2.9
)

func (c CompressionCodec) String() string {
	switch c {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Snappy:
		return "SNAPPY"
	case Gzip:
		return "GZIP"
	case LZO:
		return "LZO"
	case Brotli:
		return "BROTLI"
	case Lz4:
		return "LZ4"
	case Zstd:
		return "ZSTD"
	case Lz4Raw:
		return "LZ4_RAW"
	default:
		return fmt.Sprintf("CompressionCodec(%d)", int32(c))
	}
}

// ParseCompressionCodec returns the CompressionCodec named by s, matching the
// names returned by CompressionCodec.String.
func ParseCompressionCodec(s string) (CompressionCodec, error) {
	for c := Uncompressed; c <= Lz4Raw; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return -1, fmt.Errorf("unknown parquet compression codec: %q", s)
}
