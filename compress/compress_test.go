package compress_test

import (
	"bytes"
	"testing"

	"github.com/andybalholm/brotli"
	kgzip "github.com/klauspost/compress/gzip"
	ksnappy "github.com/klauspost/compress/snappy"
	kzstd "github.com/klauspost/compress/zstd"
	plz4 "github.com/pierrec/lz4/v4"

	"github.com/parquet-go/parquet-decoding/compress"
	cbrotli "github.com/parquet-go/parquet-decoding/compress/brotli"
	"github.com/parquet-go/parquet-decoding/compress/gzip"
	"github.com/parquet-go/parquet-decoding/compress/lz4"
	"github.com/parquet-go/parquet-decoding/compress/snappy"
	"github.com/parquet-go/parquet-decoding/compress/uncompressed"
	"github.com/parquet-go/parquet-decoding/compress/zstd"
	"github.com/parquet-go/parquet-decoding/format"
)

var testdata = bytes.Repeat([]byte("1234567890qwertyuiopasdfghjklzxcvbnm"), 10e3)

var tests = [...]struct {
	scenario string
	codec    compress.Codec
	format   format.CompressionCodec
	encode   func(testing.TB, []byte) []byte
}{
	{
		scenario: "uncompressed",
		codec:    new(uncompressed.Codec),
		format:   format.Uncompressed,
		encode:   func(_ testing.TB, b []byte) []byte { return b },
	},

	{
		scenario: "snappy",
		codec:    new(snappy.Codec),
		format:   format.Snappy,
		encode:   func(_ testing.TB, b []byte) []byte { return ksnappy.Encode(nil, b) },
	},

	{
		scenario: "gzip",
		codec:    new(gzip.Codec),
		format:   format.Gzip,
		encode: func(t testing.TB, b []byte) []byte {
			buf := new(bytes.Buffer)
			w := kgzip.NewWriter(buf)
			if _, err := w.Write(b); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}
			return buf.Bytes()
		},
	},

	{
		scenario: "brotli",
		codec:    new(cbrotli.Codec),
		format:   format.Brotli,
		encode: func(t testing.TB, b []byte) []byte {
			buf := new(bytes.Buffer)
			w := brotli.NewWriter(buf)
			if _, err := w.Write(b); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}
			return buf.Bytes()
		},
	},

	{
		scenario: "zstd",
		codec:    new(zstd.Codec),
		format:   format.Zstd,
		encode: func(t testing.TB, b []byte) []byte {
			enc, err := kzstd.NewWriter(nil)
			if err != nil {
				t.Fatal(err)
			}
			defer enc.Close()
			return enc.EncodeAll(b, nil)
		},
	},

	{
		scenario: "lz4",
		codec:    new(lz4.Codec),
		format:   format.Lz4Raw,
		encode: func(t testing.TB, b []byte) []byte {
			dst := make([]byte, plz4.CompressBlockBound(len(b)))
			n, err := plz4.CompressBlock(b, dst, nil)
			if err != nil {
				t.Fatal(err)
			}
			return dst[:n]
		},
	},
}

func TestCompressionCodec(t *testing.T) {
	output := make([]byte, 0, len(testdata))

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			if test.codec.CompressionCodec() != test.format {
				t.Errorf("wrong compression codec: want=%s got=%s", test.format, test.codec.CompressionCodec())
			}
			if test.codec.String() != test.format.String() {
				t.Errorf("wrong codec name: want=%s got=%s", test.format, test.codec)
			}

			compressed := test.encode(t, testdata)
			const N = 10
			// Run the test multiple times to exercise codecs that maintain
			// state across decompressions.
			for i := range N {
				var err error

				output, err = test.codec.Decode(output[:0], compressed)
				if err != nil {
					t.Fatal(err)
				}

				if !bytes.Equal(testdata, output) {
					t.Errorf("content mismatch after decompressing (attempt %d/%d)", i+1, N)
				}
			}
		})
	}
}

func TestCompressionCodecEmptyOutputBuffer(t *testing.T) {
	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			output, err := test.codec.Decode(nil, test.encode(t, testdata[:1000]))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(testdata[:1000], output) {
				t.Error("content mismatch after decompressing")
			}
		})
	}
}

func TestCompressionCodecTruncatedInput(t *testing.T) {
	for _, test := range tests {
		if test.format == format.Uncompressed {
			continue
		}
		t.Run(test.scenario, func(t *testing.T) {
			compressed := test.encode(t, testdata)
			if _, err := test.codec.Decode(nil, compressed[:len(compressed)/2]); err == nil {
				t.Error("expected an error decoding truncated input")
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	output := make([]byte, 0, len(testdata))

	for _, test := range tests {
		compressed := test.encode(b, testdata)
		b.Run(test.scenario, func(b *testing.B) {
			b.SetBytes(int64(len(testdata)))
			for b.Loop() {
				output, _ = test.codec.Decode(output[:0], compressed)
			}
		})
	}
}
