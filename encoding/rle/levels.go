package rle

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/parquet-go/parquet-decoding/encoding"
)

// LevelDecoder decodes repetition or definition levels of a data page.
type LevelDecoder struct {
	maxLevel  int32
	numValues int
	reader    Reader
}

// NewLevelDecoder returns a decoder of levels in the range [0, maxLevel].
func NewLevelDecoder(maxLevel int) *LevelDecoder {
	return &LevelDecoder{maxLevel: int32(maxLevel)}
}

// BitWidth returns the number of bits used to encode levels up to maxLevel.
func BitWidth(maxLevel int) uint { return uint(bits.Len32(uint32(maxLevel))) }

// Reset starts decoding numValues levels from data, which begins with the
// 4 bytes little-endian length of the encoded levels (the layout of data
// pages v1). It returns the number of bytes of data occupied by the levels.
func (d *LevelDecoder) Reset(numValues int, data []byte) (int, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("reading length of levels: %w: %w", io.ErrUnexpectedEOF, encoding.ErrMalformedPage)
	}
	size := int64(binary.LittleEndian.Uint32(data))
	if size > int64(len(data)-4) {
		return 0, fmt.Errorf("levels of %d bytes exceed the %d bytes of the page: %w", size, len(data)-4, encoding.ErrMalformedPage)
	}
	if err := d.ResetRaw(numValues, data[4:4+size]); err != nil {
		return 0, err
	}
	return 4 + int(size), nil
}

// ResetRaw starts decoding numValues levels from data, which holds only the
// encoded runs (the layout of data pages v2).
func (d *LevelDecoder) ResetRaw(numValues int, data []byte) error {
	d.numValues = 0
	if numValues < 0 {
		return fmt.Errorf("negative level count %d: %w", numValues, encoding.ErrInvalidArgument)
	}
	if err := d.reader.Reset(data, BitWidth(int(d.maxLevel))); err != nil {
		return err
	}
	d.numValues = numValues
	return nil
}

// LevelsLeft returns the number of levels left to decode.
func (d *LevelDecoder) LevelsLeft() int { return d.numValues }

// Decode decodes up to len(dst) levels, returning how many were written.
func (d *LevelDecoder) Decode(dst []int32) (int, error) {
	n := min(len(dst), d.numValues)
	if _, err := d.reader.Read(dst[:n]); err != nil {
		d.numValues = 0
		return 0, fmt.Errorf("decoding levels: %w", err)
	}
	for i, level := range dst[:n] {
		if level < 0 || level > d.maxLevel {
			d.numValues = 0
			return 0, fmt.Errorf("level %d at index %d exceeds the maximum level %d: %w", level, i, d.maxLevel, encoding.ErrMalformedPage)
		}
	}
	d.numValues -= n
	return n, nil
}
