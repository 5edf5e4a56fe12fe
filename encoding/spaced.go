package encoding

import (
	"fmt"

	"github.com/parquet-go/parquet-decoding/internal/bits"
)

// Spaced is the implementation of DecodeSpaced shared by all decoders. It
// only relies on the dense Decode method of d: the non-null values are decoded
// into the front of dst, then moved to the slots marked present in validBits.
//
// Slots of dst that correspond to null values are not written, the caller is
// responsible for their representation.
func Spaced[T Kind](d Decoder[T], dst []T, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	numValues := len(dst)

	if nullCount < 0 || nullCount > numValues {
		return 0, fmt.Errorf("%s: null count %d out of range for %d values: %w", d.Encoding(), nullCount, numValues, ErrInvalidArgument)
	}
	if validBitsOffset < 0 || int64(len(validBits))*8 < validBitsOffset+int64(numValues) {
		return 0, fmt.Errorf("%s: validity bitmap of %d bytes cannot address %d values at bit offset %d: %w",
			d.Encoding(), len(validBits), numValues, validBitsOffset, ErrInvalidArgument)
	}

	valuesToRead := numValues - nullCount
	if present := bits.CountOnes(validBits, validBitsOffset, numValues); present != valuesToRead {
		return 0, fmt.Errorf("%s: validity bitmap has %d non-null values but the null count implies %d: %w",
			d.Encoding(), present, valuesToRead, ErrDecodeMismatch)
	}

	valuesRead, err := d.Decode(dst[:valuesToRead])
	if err != nil {
		return 0, err
	}
	if valuesRead != valuesToRead {
		return 0, fmt.Errorf("%s: decoded %d values out of %d: %w", d.Encoding(), valuesRead, valuesToRead, ErrDecodeMismatch)
	}

	spaceValues(dst, valuesRead, validBits, validBitsOffset)
	return numValues, nil
}

// spaceValues moves the numPresent values packed at the front of dst to the
// slots whose validity bit is set, in a single backward pass.
//
// The pass never overwrites a value it has not read yet: with j values left
// to move when visiting slot i, the slots [0, i] hold j present values, so
// the source index j-1 is always <= i. When j == i+1 every remaining slot is
// present and the values are already in place.
func spaceValues[T any](dst []T, numPresent int, validBits []byte, validBitsOffset int64) {
	j := numPresent
	for i := len(dst) - 1; i >= j; i-- {
		if bits.Get(validBits, validBitsOffset+int64(i)) {
			j--
			dst[i] = dst[j]
		}
	}
}
