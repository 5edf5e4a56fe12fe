package encoding

import (
	"fmt"

	"github.com/parquet-go/parquet-decoding/format"
)

// Unsupported is the decoder used for combinations of value kind and encoding
// that have no implementation. Pages can be loaded into it, but every attempt
// to decode values fails with ErrNotSupported.
type Unsupported[T Kind] struct {
	State
}

// NewUnsupported returns a decoder of T values for enc which fails to decode.
func NewUnsupported[T Kind](enc format.Encoding) *Unsupported[T] {
	return &Unsupported[T]{State: MakeState(enc)}
}

func (d *Unsupported[T]) Reset(numValues int, data []byte) error {
	return d.Begin(numValues)
}

func (d *Unsupported[T]) Decode(dst []T) (int, error) {
	return 0, fmt.Errorf("%s: cannot decode values of type %T: %w", d.Encoding(), dst, ErrNotSupported)
}

func (d *Unsupported[T]) DecodeSpaced(dst []T, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return Spaced[T](d, dst, nullCount, validBits, validBitsOffset)
}
