package encoding_test

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
	"github.com/parquet-go/parquet-decoding/internal/bits"
)

// sliceDecoder is a decoder which yields the values of a slice, the page
// data passed to Reset is ignored.
type sliceDecoder[T encoding.Kind] struct {
	encoding.State
	values []T
	offset int
	// produces at most limit values per call when positive
	limit int
}

func newSliceDecoder[T encoding.Kind](values []T) *sliceDecoder[T] {
	d := &sliceDecoder[T]{State: encoding.MakeState(format.Plain), values: values}
	d.Reset(len(values), nil)
	return d
}

func (d *sliceDecoder[T]) Reset(numValues int, data []byte) error {
	d.offset = 0
	return d.Begin(numValues)
}

func (d *sliceDecoder[T]) Decode(dst []T) (int, error) {
	n := d.Limit(len(dst))
	if d.limit > 0 {
		n = min(n, d.limit)
	}
	copy(dst, d.values[d.offset:d.offset+n])
	d.offset += n
	d.Consume(n)
	return n, nil
}

func (d *sliceDecoder[T]) DecodeSpaced(dst []T, nullCount int, validBits []byte, validBitsOffset int64) (int, error) {
	return encoding.Spaced[T](d, dst, nullCount, validBits, validBitsOffset)
}

func bitmapOf(s string) []byte {
	b := make([]byte, bits.ByteCount(uint(len(s))))
	for i, c := range s {
		if c == '1' {
			bits.Set(b, int64(i))
		}
	}
	return b
}

func TestDecodeSpacedExample(t *testing.T) {
	d := newSliceDecoder([]encoding.ByteArray{
		encoding.ByteArray("A"),
		encoding.ByteArray("B"),
		encoding.ByteArray("C"),
	})

	dst := make([]encoding.ByteArray, 5)
	n, err := d.DecodeSpaced(dst, 2, bitmapOf("10110"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("wrong number of values returned: want=5 got=%d", n)
	}

	// Slot 1 lies within the region used by the dense decode, it holds a
	// stale value that the caller is expected to ignore.
	got := []encoding.ByteArray{dst[0], dst[2], dst[3], dst[4]}
	want := []encoding.ByteArray{
		encoding.ByteArray("A"),
		encoding.ByteArray("B"),
		encoding.ByteArray("C"),
		nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wrong values:\nwant = %q\ngot  = %q", want, got)
	}
	if d.ValuesLeft() != 0 {
		t.Errorf("values left after decoding all values: %d", d.ValuesLeft())
	}
}

func TestDecodeSpacedBitmaps(t *testing.T) {
	tests := []struct {
		scenario string
		bitmap   string
	}{
		{scenario: "all present", bitmap: "1111111111"},
		{scenario: "all null", bitmap: "0000000000"},
		{scenario: "nulls at the start", bitmap: "0001111111"},
		{scenario: "nulls at the end", bitmap: "1111111000"},
		{scenario: "nulls in the middle", bitmap: "1110000111"},
		{scenario: "alternating", bitmap: "0101010101"},
		{scenario: "single present", bitmap: "0000100000"},
		{scenario: "single null", bitmap: "1111011111"},
		{scenario: "empty", bitmap: ""},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			testDecodeSpaced(t, bitmapOf(test.bitmap), 0, len(test.bitmap))
		})
	}
}

func TestDecodeSpacedRandom(t *testing.T) {
	prng := rand.New(rand.NewSource(1))

	for range 500 {
		validBits := make([]byte, 1+prng.Intn(64))
		prng.Read(validBits)
		offset := prng.Int63n(int64(8 * len(validBits)))
		numValues := prng.Intn(8*len(validBits) - int(offset) + 1)
		testDecodeSpaced(t, validBits, offset, numValues)
	}
}

const sentinel = int64(-1)

func testDecodeSpaced(t *testing.T, validBits []byte, offset int64, numValues int) {
	t.Helper()

	nullCount := bits.CountZeros(validBits, offset, numValues)
	values := make([]int64, numValues-nullCount)
	for i := range values {
		values[i] = int64(i + 1)
	}

	// Null slots are pre-filled with a sentinel. The ones past the dense
	// region must never be written; present slots must all be replaced.
	dst := make([]int64, numValues)
	for i := range dst {
		if bits.Get(validBits, offset+int64(i)) {
			dst[i] = -2
		} else {
			dst[i] = sentinel
		}
	}

	d := newSliceDecoder(values)
	n, err := d.DecodeSpaced(dst, nullCount, validBits, offset)
	if err != nil {
		t.Fatal(err)
	}
	if n != numValues {
		t.Fatalf("wrong number of values returned: want=%d got=%d", numValues, n)
	}

	k := 0
	for i, v := range dst {
		if bits.Get(validBits, offset+int64(i)) {
			if v != values[k] {
				t.Fatalf("slot %d: present value %d expected at this position but found %d", i, values[k], v)
			}
			k++
		} else if i >= len(values) && v != sentinel {
			t.Fatalf("slot %d: null slot was overwritten with %d", i, v)
		}
	}
	if k != len(values) {
		t.Fatalf("only %d/%d values were placed", k, len(values))
	}
}

func TestDecodeSpacedNullsBeforeValues(t *testing.T) {
	validBits := bitmapOf("0011")
	d := newSliceDecoder([]int32{10, 20})

	dst := []int32{-1, -1, -1, -1}
	if _, err := d.DecodeSpaced(dst, 2, validBits, 0); err != nil {
		t.Fatal(err)
	}
	if dst[2] != 10 || dst[3] != 20 {
		t.Errorf("wrong values: %v", dst)
	}
}

func TestDecodeSpacedMismatch(t *testing.T) {
	d := newSliceDecoder([]int32{1, 2, 3})
	d.limit = 2

	dst := make([]int32, 5)
	_, err := d.DecodeSpaced(dst, 2, bitmapOf("10110"), 0)
	if !errors.Is(err, encoding.ErrDecodeMismatch) {
		t.Fatalf("expected a decode mismatch error but got %v", err)
	}
}

func TestDecodeSpacedShortPage(t *testing.T) {
	d := newSliceDecoder([]int32{1, 2})

	dst := make([]int32, 5)
	_, err := d.DecodeSpaced(dst, 2, bitmapOf("10110"), 0)
	if !errors.Is(err, encoding.ErrDecodeMismatch) {
		t.Fatalf("expected a decode mismatch error but got %v", err)
	}
}

func TestDecodeSpacedInconsistentNullCount(t *testing.T) {
	d := newSliceDecoder([]int32{1, 2, 3, 4})

	dst := make([]int32, 5)
	_, err := d.DecodeSpaced(dst, 1, bitmapOf("10110"), 0)
	if !errors.Is(err, encoding.ErrDecodeMismatch) {
		t.Fatalf("expected a decode mismatch error but got %v", err)
	}
	if d.ValuesLeft() != 4 {
		t.Errorf("no values should have been consumed, %d values left", d.ValuesLeft())
	}
}

func TestDecodeSpacedInvalidArguments(t *testing.T) {
	tests := []struct {
		scenario  string
		numValues int
		nullCount int
		validBits []byte
		offset    int64
	}{
		{scenario: "negative null count", numValues: 4, nullCount: -1, validBits: []byte{0xFF}},
		{scenario: "null count too large", numValues: 4, nullCount: 5, validBits: []byte{0xFF}},
		{scenario: "bitmap too short", numValues: 9, nullCount: 0, validBits: []byte{0xFF}},
		{scenario: "offset past the bitmap", numValues: 4, nullCount: 0, validBits: []byte{0xFF}, offset: 6},
		{scenario: "negative offset", numValues: 4, nullCount: 0, validBits: []byte{0xFF}, offset: -1},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			d := newSliceDecoder([]int32{1, 2, 3, 4})
			_, err := d.DecodeSpaced(make([]int32, test.numValues), test.nullCount, test.validBits, test.offset)
			if !errors.Is(err, encoding.ErrInvalidArgument) {
				t.Fatalf("expected an invalid argument error but got %v", err)
			}
		})
	}
}

func TestDecodeCountConservation(t *testing.T) {
	d := newSliceDecoder([]int64{1, 2, 3, 4, 5, 6, 7})
	buf := make([]int64, 3)

	for _, want := range []int{3, 3, 1, 0} {
		before := d.ValuesLeft()
		n, err := d.Decode(buf)
		if err != nil {
			t.Fatal(err)
		}
		if n != want {
			t.Fatalf("wrong number of values decoded: want=%d got=%d", want, n)
		}
		if before-d.ValuesLeft() != n {
			t.Fatalf("values left went from %d to %d after decoding %d values", before, d.ValuesLeft(), n)
		}
	}
}

func TestResetValuesLeft(t *testing.T) {
	d := newSliceDecoder([]int64{1, 2, 3, 4, 5, 6, 7})
	if _, err := d.Decode(make([]int64, 2)); err != nil {
		t.Fatal(err)
	}

	if err := d.Reset(3, nil); err != nil {
		t.Fatal(err)
	}
	if n := d.ValuesLeft(); n != 3 {
		t.Errorf("values left after reset: want=3 got=%d", n)
	}

	if err := d.Reset(-1, nil); !errors.Is(err, encoding.ErrInvalidArgument) {
		t.Errorf("expected an invalid argument error but got %v", err)
	}
	if n := d.ValuesLeft(); n != 0 {
		t.Errorf("values left after a failed reset: want=0 got=%d", n)
	}
}

func TestUnsupported(t *testing.T) {
	d := encoding.NewUnsupported[float32](format.DeltaBinaryPacked)
	if d.Encoding() != format.DeltaBinaryPacked {
		t.Errorf("wrong encoding: %s", d.Encoding())
	}
	if err := d.Reset(4, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}

	if _, err := d.Decode(make([]float32, 4)); !errors.Is(err, encoding.ErrNotSupported) {
		t.Errorf("expected a not supported error but got %v", err)
	}
	if _, err := d.DecodeSpaced(make([]float32, 4), 2, []byte{0b0101}, 0); !errors.Is(err, encoding.ErrNotSupported) {
		t.Errorf("expected a not supported error but got %v", err)
	}
}

func TestSizeOf(t *testing.T) {
	if n := encoding.SizeOf[int32](); n != 4 {
		t.Errorf("int32: %d", n)
	}
	if n := encoding.SizeOf[float64](); n != 8 {
		t.Errorf("float64: %d", n)
	}
	if n := encoding.SizeOf[encoding.ByteArray](); n != 0 {
		t.Errorf("byte array: %d", n)
	}
}
