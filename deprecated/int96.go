// Package deprecated holds value types for parquet features that the format
// has deprecated but that still appear in files written by older tools.
package deprecated

import (
	"encoding/binary"
	"math/big"
)

// Int96 is an implementation of the deprecated INT96 parquet type, stored as
// three little-endian 32 bits words (least significant first).
type Int96 [3]uint32

// Int64 converts i to a int64, truncating the upper 32 bits if the value was
// larger than the range that a 64 bits integer can represent.
func (i Int96) Int64() int64 {
	return int64(i[1])<<32 | int64(i[0])
}

// Negative returns true if i is a negative value.
func (i Int96) Negative() bool {
	return (i[2] >> 31) != 0
}

// Int32 converts i to a int32, truncating the upper bits.
func (i Int96) Int32() int32 { return int32(i[0]) }

// Bytes returns the 12 bytes little-endian representation of i.
func (i Int96) Bytes() []byte {
	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:], i[0])
	binary.LittleEndian.PutUint32(b[4:], i[1])
	binary.LittleEndian.PutUint32(b[8:], i[2])
	return b
}

// String returns the decimal representation of i.
func (i Int96) String() string {
	b := make([]byte, 12)
	binary.BigEndian.PutUint32(b[0:], i[2])
	binary.BigEndian.PutUint32(b[4:], i[1])
	binary.BigEndian.PutUint32(b[8:], i[0])
	n := new(big.Int).SetBytes(b)
	if i.Negative() {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 96))
	}
	return n.String()
}

// Int96FromBytes decodes a 12 bytes little-endian value.
func Int96FromBytes(b []byte) Int96 {
	_ = b[11]
	return Int96{
		binary.LittleEndian.Uint32(b[0:]),
		binary.LittleEndian.Uint32(b[4:]),
		binary.LittleEndian.Uint32(b[8:]),
	}
}
