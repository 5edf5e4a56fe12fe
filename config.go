package parquet

import (
	"github.com/rs/zerolog"

	"github.com/parquet-go/parquet-decoding/compress"
)

// ReaderConfig carries configuration options for column readers.
//
// ReaderConfig implements the ReaderOption interface so it can be used
// directly as argument to NewColumnReader when needed, for example:
//
//	reader, err := parquet.NewColumnReader[int64](column, &parquet.ReaderConfig{
//		Compression: &parquet.Zstd,
//	})
type ReaderConfig struct {
	// Logger receives debug logs of page loads and error logs of decoding
	// failures. The default logger discards everything. A nil Logger leaves
	// the logger of the configuration it is applied to unchanged.
	Logger *zerolog.Logger

	// Compression is the codec that pages of the column chunk were
	// compressed with. Defaults to Uncompressed.
	Compression compress.Codec
}

// DefaultReaderConfig returns a new ReaderConfig value initialized with the
// default reader configuration.
func DefaultReaderConfig() *ReaderConfig {
	nop := zerolog.Nop()
	return &ReaderConfig{
		Logger:      &nop,
		Compression: &Uncompressed,
	}
}

// Apply applies the given list of options to c.
func (c *ReaderConfig) Apply(options ...ReaderOption) {
	for _, opt := range options {
		opt.ConfigureReader(c)
	}
}

// ConfigureReader applies configuration options from c to config.
func (c *ReaderConfig) ConfigureReader(config *ReaderConfig) {
	if c.Logger != nil {
		config.Logger = c.Logger
	}
	config.Compression = coalesceCodec(c.Compression, config.Compression)
}

// ReaderOption is an interface implemented by types that carry configuration
// options for column readers.
type ReaderOption interface {
	ConfigureReader(*ReaderConfig)
}

type readerOption func(*ReaderConfig)

func (opt readerOption) ConfigureReader(config *ReaderConfig) { opt(config) }

// WithLogger configures the logger of column readers.
func WithLogger(logger zerolog.Logger) ReaderOption {
	return readerOption(func(config *ReaderConfig) { config.Logger = &logger })
}

// WithCodec configures the compression codec that column readers decompress
// pages with.
func WithCodec(codec compress.Codec) ReaderOption {
	return readerOption(func(config *ReaderConfig) { config.Compression = codec })
}

func coalesceCodec(codecs ...compress.Codec) compress.Codec {
	for _, c := range codecs {
		if c != nil {
			return c
		}
	}
	return nil
}
