package dict_test

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/encoding/dict"
	"github.com/parquet-go/parquet-decoding/format"
)

// encodeIndexes encodes indexes as a single bit-packed run preceded by the
// bit width byte.
func encodeIndexes(indexes []int32, bitWidth uint) []byte {
	groups := (len(indexes) + 7) / 8
	b := []byte{byte(bitWidth)}
	b = binary.AppendUvarint(b, uint64(groups)<<1|1)
	packed := make([]byte, groups*int(bitWidth))
	bit := uint(0)
	for _, v := range indexes {
		for i := uint(0); i < bitWidth; i++ {
			if (uint32(v)>>i)&1 != 0 {
				packed[bit/8] |= 1 << (bit % 8)
			}
			bit++
		}
	}
	return append(b, packed...)
}

func TestDecoder(t *testing.T) {
	values := []encoding.ByteArray{
		encoding.ByteArray("apple"),
		encoding.ByteArray("banana"),
		encoding.ByteArray("cherry"),
	}
	indexes := []int32{0, 1, 2, 2, 1, 0, 0, 0, 2, 1}

	d := dict.NewDecoder[encoding.ByteArray](format.RLEDictionary)
	d.SetDictionary(values)
	if err := d.Reset(len(indexes), encodeIndexes(indexes, 2)); err != nil {
		t.Fatal(err)
	}

	got := make([]encoding.ByteArray, 4)
	want := []encoding.ByteArray{}
	for _, index := range indexes {
		want = append(want, values[index])
	}

	all := []encoding.ByteArray{}
	for d.ValuesLeft() > 0 {
		n, err := d.Decode(got)
		if err != nil {
			t.Fatal(err)
		}
		all = append(all, got[:n]...)
	}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("values mismatch:\nwant = %q\ngot  = %q", want, all)
	}
}

func TestDecoderSpaced(t *testing.T) {
	d := dict.NewDecoder[int64](format.PlainDictionary)
	d.SetDictionary([]int64{100, 200, 300})
	if err := d.Reset(3, encodeIndexes([]int32{2, 0, 1}, 2)); err != nil {
		t.Fatal(err)
	}

	got := []int64{-1, -1, -1, -1, -1, -1}
	n, err := d.DecodeSpaced(got, 3, []byte{0b011001}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Fatalf("wrong number of values: %d", n)
	}
	if got[0] != 300 || got[3] != 100 || got[4] != 200 || got[5] != -1 {
		t.Errorf("wrong values: %v", got)
	}
}

func TestDecoderIndexOutOfRange(t *testing.T) {
	d := dict.NewDecoder[int32](format.RLEDictionary)
	d.SetDictionary([]int32{1, 2})
	if err := d.Reset(3, encodeIndexes([]int32{0, 1, 2}, 2)); err != nil {
		t.Fatal(err)
	}

	_, err := d.Decode(make([]int32, 3))
	if !errors.Is(err, dict.ErrIndexOutOfRange) {
		t.Errorf("expected an index out of range error but got %v", err)
	}
	if !errors.Is(err, encoding.ErrMalformedPage) {
		t.Errorf("expected the error to match malformed pages: %v", err)
	}
	if d.ValuesLeft() != 0 {
		t.Errorf("values left after a failure: %d", d.ValuesLeft())
	}
}

func TestDecoderWithoutDictionary(t *testing.T) {
	d := dict.NewDecoder[float64](format.RLEDictionary)
	if err := d.Reset(1, []byte{1, 2, 0}); !errors.Is(err, dict.ErrNoDictionary) {
		t.Errorf("expected a missing dictionary error but got %v", err)
	}
}

func TestDecoderMalformed(t *testing.T) {
	d := dict.NewDecoder[float64](format.RLEDictionary)
	d.SetDictionary([]float64{1})

	if err := d.Reset(1, nil); !errors.Is(err, encoding.ErrMalformedPage) {
		t.Errorf("expected a malformed page error but got %v", err)
	}
	if err := d.Reset(1, []byte{40}); !errors.Is(err, encoding.ErrMalformedPage) {
		t.Errorf("expected a malformed page error for a bit width of 40 but got %v", err)
	}
	if err := d.Reset(0, nil); err != nil {
		t.Errorf("loading an empty page: %v", err)
	}
}
