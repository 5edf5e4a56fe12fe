package rle

import (
	"encoding/binary"
	"io"

	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
)

const booleanBufferSize = 256

// BooleanDecoder decodes boolean values in the RLE encoding: a 4 bytes
// little-endian length followed by runs of 1 bit values.
type BooleanDecoder struct {
	encoding.State
	reader Reader
	buffer [booleanBufferSize]int32
}

func NewBooleanDecoder() *BooleanDecoder {
	return &BooleanDecoder{State: encoding.MakeState(format.RLE)}
}

func (d *BooleanDecoder) Reset(numValues int, data []byte) error {
	d.reader.Clear()
	if err := d.Begin(numValues); err != nil {
		return err
	}
	if len(data) < 4 {
		return d.Errorf(encoding.ErrMalformedPage, "reading length of boolean runs: %v", io.ErrUnexpectedEOF)
	}
	size := int64(binary.LittleEndian.Uint32(data))
	if size > int64(len(data)-4) {
		return d.Errorf(encoding.ErrMalformedPage, "boolean runs of %d bytes exceed the %d bytes of the page", size, len(data)-4)
	}
	return d.reader.Reset(data[4:4+size], 1)
}

func (d *BooleanDecoder) Decode(dst []bool) (int, error) {
	n := d.Limit(len(dst))
	for i := 0; i < n; {
		buf := d.buffer[:min(n-i, booleanBufferSize)]
		if _, err := d.reader.Read(buf); err != nil {
			return i, d.Errorf(err, "decoding booleans")
		}
		for j, v := range buf {
			dst[i+j] = v != 0
		}
		d.Consume(len(buf))
		i += len(buf)
	}
	return n, nil
}

func (d *BooleanDecoder) DecodeSpaced(dst []bool, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[bool](d, dst, nullCount, validBits, validBitsOffset)
}
