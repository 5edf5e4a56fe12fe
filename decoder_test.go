package parquet_test

import (
	"errors"
	"testing"

	"github.com/parquet-go/parquet-decoding"
	"github.com/parquet-go/parquet-decoding/deprecated"
	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
)

var allEncodings = [...]format.Encoding{
	format.Plain,
	format.PlainDictionary,
	format.RLE,
	format.BitPacked,
	format.DeltaBinaryPacked,
	format.DeltaLengthByteArray,
	format.DeltaByteArray,
	format.RLEDictionary,
	format.ByteStreamSplit,
}

func testSupportedEncodings[T encoding.Kind](t *testing.T, supported ...format.Encoding) {
	t.Helper()
	column := &encoding.Column{Type: parquet.TypeOf[T](), TypeLength: 4}

	for _, enc := range allEncodings {
		d := parquet.NewDecoder[T](column, enc)
		if d.Encoding() != enc {
			t.Errorf("decoder of %s reports encoding %s", enc, d.Encoding())
		}

		_, unsupported := d.(*encoding.Unsupported[T])
		want := false
		for _, e := range supported {
			want = want || e == enc
		}
		if want == unsupported {
			t.Errorf("%s values with %s encoding: supported=%t, want %t", parquet.TypeOf[T](), enc, !unsupported, want)
		}
	}
}

func TestNewDecoder(t *testing.T) {
	dictionary := []format.Encoding{format.PlainDictionary, format.RLEDictionary}

	t.Run("boolean", func(t *testing.T) {
		testSupportedEncodings[bool](t, append(dictionary, format.Plain, format.RLE)...)
	})
	t.Run("int32", func(t *testing.T) {
		testSupportedEncodings[int32](t, append(dictionary, format.Plain, format.DeltaBinaryPacked, format.ByteStreamSplit)...)
	})
	t.Run("int64", func(t *testing.T) {
		testSupportedEncodings[int64](t, append(dictionary, format.Plain, format.DeltaBinaryPacked, format.ByteStreamSplit)...)
	})
	t.Run("int96", func(t *testing.T) {
		testSupportedEncodings[deprecated.Int96](t, append(dictionary, format.Plain)...)
	})
	t.Run("float", func(t *testing.T) {
		testSupportedEncodings[float32](t, append(dictionary, format.Plain, format.ByteStreamSplit)...)
	})
	t.Run("double", func(t *testing.T) {
		testSupportedEncodings[float64](t, append(dictionary, format.Plain, format.ByteStreamSplit)...)
	})
	t.Run("byte array", func(t *testing.T) {
		testSupportedEncodings[encoding.ByteArray](t, append(dictionary, format.Plain, format.DeltaLengthByteArray, format.DeltaByteArray)...)
	})
	t.Run("fixed length byte array", func(t *testing.T) {
		testSupportedEncodings[encoding.FixedLenByteArray](t, append(dictionary, format.Plain, format.DeltaByteArray, format.ByteStreamSplit)...)
	})
}

func TestNewDecoderUnsupported(t *testing.T) {
	d := parquet.NewDecoder[deprecated.Int96](nil, format.DeltaBinaryPacked)
	if err := d.Reset(2, make([]byte, 24)); err != nil {
		t.Fatal(err)
	}
	if d.ValuesLeft() != 2 {
		t.Errorf("values left mismatch: want=2 got=%d", d.ValuesLeft())
	}

	if _, err := d.Decode(make([]deprecated.Int96, 2)); !errors.Is(err, encoding.ErrNotSupported) {
		t.Errorf("decode: expected a not supported error but got %v", err)
	}
	if _, err := d.DecodeSpaced(make([]deprecated.Int96, 3), 1, []byte{0b101}, 0); !errors.Is(err, encoding.ErrNotSupported) {
		t.Errorf("decode spaced: expected a not supported error but got %v", err)
	}
}

func TestNewDecoderNilColumn(t *testing.T) {
	d := parquet.NewDecoder[encoding.FixedLenByteArray](nil, format.Plain)
	if err := d.Reset(1, make([]byte, 4)); !errors.Is(err, encoding.ErrInvalidArgument) {
		t.Errorf("expected an invalid argument error but got %v", err)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		got, want format.Type
	}{
		{parquet.TypeOf[bool](), format.Boolean},
		{parquet.TypeOf[int32](), format.Int32},
		{parquet.TypeOf[int64](), format.Int64},
		{parquet.TypeOf[deprecated.Int96](), format.Int96},
		{parquet.TypeOf[float32](), format.Float},
		{parquet.TypeOf[float64](), format.Double},
		{parquet.TypeOf[encoding.ByteArray](), format.ByteArray},
		{parquet.TypeOf[encoding.FixedLenByteArray](), format.FixedLenByteArray},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("type mismatch: want=%s got=%s", test.want, test.got)
		}
	}
}

func TestReaderConfig(t *testing.T) {
	config := parquet.DefaultReaderConfig()
	if config.Compression != &parquet.Uncompressed {
		t.Errorf("default codec: %s", config.Compression)
	}
	if config.Logger == nil {
		t.Error("default configuration has no logger")
	}

	config.Apply(
		parquet.WithCodec(&parquet.Zstd),
		&parquet.ReaderConfig{Compression: &parquet.Gzip},
	)
	if config.Compression != &parquet.Gzip {
		t.Errorf("codec mismatch: want=%s got=%s", &parquet.Gzip, config.Compression)
	}

	logger := config.Logger
	config.Apply(&parquet.ReaderConfig{})
	if config.Compression != &parquet.Gzip {
		t.Errorf("codec overwritten by an empty configuration: %s", config.Compression)
	}
	if config.Logger != logger {
		t.Error("logger overwritten by an empty configuration")
	}
}
