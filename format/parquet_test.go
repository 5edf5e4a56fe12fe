package format_test

import (
	"testing"

	"github.com/parquet-go/parquet-decoding/format"
)

func TestParseEncoding(t *testing.T) {
	for _, enc := range []format.Encoding{
		format.Plain,
		format.PlainDictionary,
		format.RLE,
		format.BitPacked,
		format.DeltaBinaryPacked,
		format.DeltaLengthByteArray,
		format.DeltaByteArray,
		format.RLEDictionary,
		format.ByteStreamSplit,
	} {
		got, err := format.ParseEncoding(enc.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != enc {
			t.Errorf("%s: parsed as %s", enc, got)
		}
	}

	if _, err := format.ParseEncoding("Encoding(1)"); err == nil {
		t.Error("expected an error parsing the unused encoding code")
	}
}

func TestParseType(t *testing.T) {
	for typ := format.Boolean; typ <= format.FixedLenByteArray; typ++ {
		got, err := format.ParseType(typ.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != typ {
			t.Errorf("%s: parsed as %s", typ, got)
		}
	}
	if _, err := format.ParseType("UUID"); err == nil {
		t.Error("expected an error parsing a logical type name")
	}
}

func TestParseCompressionCodec(t *testing.T) {
	for codec := format.Uncompressed; codec <= format.Lz4Raw; codec++ {
		got, err := format.ParseCompressionCodec(codec.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != codec {
			t.Errorf("%s: parsed as %s", codec, got)
		}
	}
}

func TestUnknownStrings(t *testing.T) {
	if s := format.Type(42).String(); s != "Type(42)" {
		t.Errorf("unexpected type string: %q", s)
	}
	if s := format.Encoding(42).String(); s != "Encoding(42)" {
		t.Errorf("unexpected encoding string: %q", s)
	}
	if s := format.CompressionCodec(42).String(); s != "CompressionCodec(42)" {
		t.Errorf("unexpected codec string: %q", s)
	}
}
