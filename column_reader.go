package parquet

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/encoding/dict"
	"github.com/parquet-go/parquet-decoding/encoding/rle"
	"github.com/parquet-go/parquet-decoding/format"
	"github.com/parquet-go/parquet-decoding/internal/bits"
	"github.com/parquet-go/parquet-decoding/internal/memory"
)

// DataPage is a data page of a column chunk, as read from a parquet file.
type DataPage struct {
	// Version is the layout of the page, 1 for DATA_PAGE and 2 for
	// DATA_PAGE_V2. Zero is treated as 1.
	Version int

	// NumValues is the number of level entries of the page, including nulls.
	NumValues int

	// NumNulls is the number of nulls declared by the header of v2 pages.
	// It is checked against the definition levels.
	NumNulls int

	// Encoding is the encoding of the values section.
	Encoding format.Encoding

	// RepetitionLevelsByteLength and DefinitionLevelsByteLength are the sizes
	// of the uncompressed levels sections at the start of v2 pages.
	RepetitionLevelsByteLength int
	DefinitionLevelsByteLength int

	// IsCompressed reports whether the values section of a v2 page is
	// compressed. The whole content of v1 pages is always compressed.
	IsCompressed bool

	// UncompressedSize is the size of the page content after decompression,
	// used to size the decompression buffer.
	UncompressedSize int

	// Data is the content of the page, following the page header.
	Data []byte
}

// Result describes the values read from a data page.
type Result struct {
	// NumValues is the number of slots written to the output buffer.
	NumValues int

	// NullCount is the number of null slots, which were left untouched.
	NullCount int

	// ValidBits is the validity bitmap of the slots, nil if the column is
	// required. The bitmap remains valid until the next call to ReadDataPage.
	ValidBits []byte
}

// Valid reports whether slot i holds a value.
func (r *Result) Valid(i int) bool {
	return r.ValidBits == nil || bits.Get(r.ValidBits, int64(i))
}

// ColumnReader reads the pages of a column chunk.
//
// The reader keeps one decoder per encoding, reset with each page of that
// encoding. Decoded BYTE_ARRAY and FIXED_LEN_BYTE_ARRAY values may reference
// internal buffers and remain valid until the next call to ReadDataPage.
//
// ColumnReader instances are not safe for concurrent use.
type ColumnReader[T encoding.Kind] struct {
	column   *encoding.Column
	config   ReaderConfig
	logger   zerolog.Logger
	decoders map[format.Encoding]encoding.Decoder[T]

	dictionary []T

	repetition *rle.LevelDecoder
	definition *rle.LevelDecoder

	page      memory.SliceBuffer[byte]
	levels    memory.SliceBuffer[int32]
	validBits memory.SliceBuffer[byte]
}

// NewColumnReader returns a reader of pages of the given column.
//
// The function errors if T does not match the physical type of the column.
func NewColumnReader[T encoding.Kind](column *encoding.Column, options ...ReaderOption) (*ColumnReader[T], error) {
	if column == nil {
		return nil, fmt.Errorf("nil column: %w", encoding.ErrInvalidArgument)
	}
	if err := checkColumnType[T](column); err != nil {
		return nil, err
	}
	if column.MaxDefinitionLevel < 0 || column.MaxRepetitionLevel < 0 {
		return nil, fmt.Errorf("negative maximum levels of column %q: %w", column.Path, encoding.ErrInvalidArgument)
	}

	config := DefaultReaderConfig()
	config.Apply(options...)

	r := &ColumnReader[T]{
		column:     column,
		config:     *config,
		decoders:   make(map[format.Encoding]encoding.Decoder[T]),
		repetition: rle.NewLevelDecoder(column.MaxRepetitionLevel),
		definition: rle.NewLevelDecoder(column.MaxDefinitionLevel),
	}
	r.logger = config.Logger.With().
		Str("column", strings.Join(column.Path, ".")).
		Stringer("type", column.Type).
		Stringer("compression", config.Compression).
		Logger()
	return r, nil
}

// Column returns the column that r reads.
func (r *ColumnReader[T]) Column() *encoding.Column { return r.column }

// Dictionary returns the values of the last dictionary page read.
func (r *ColumnReader[T]) Dictionary() []T { return r.dictionary }

// ReadDictionaryPage reads the PLAIN-encoded values of the dictionary page of
// the column chunk. The values are used to decode the dictionary-encoded data
// pages that follow.
func (r *ColumnReader[T]) ReadDictionaryPage(numValues int, data []byte) error {
	if numValues < 0 {
		return fmt.Errorf("reading dictionary page of column %q: negative value count %d: %w", r.column.Path, numValues, encoding.ErrInvalidArgument)
	}

	// The dictionary outlives the page buffers, so it is decompressed into
	// memory that it owns.
	content, err := r.config.Compression.Decode(nil, data)
	if err != nil {
		return r.fail(err, "decompressing dictionary page", format.Plain, numValues)
	}

	decoder := NewDecoder[T](r.column, format.Plain)
	values := make([]T, numValues)
	if err := decoder.Reset(numValues, content); err != nil {
		return r.fail(err, "loading dictionary page", format.Plain, numValues)
	}
	if n, err := decoder.Decode(values); err != nil {
		return r.fail(err, "decoding dictionary page", format.Plain, numValues)
	} else if n != numValues {
		return r.fail(encoding.ErrDecodeMismatch, fmt.Sprintf("decoded %d dictionary values out of %d", n, numValues), format.Plain, numValues)
	}

	r.dictionary = values
	for _, d := range r.decoders {
		if d, ok := d.(*dict.Decoder[T]); ok {
			d.SetDictionary(values)
		}
	}

	r.logger.Debug().Int("num_values", numValues).Msg("dictionary page loaded")
	return nil
}

// ReadDataPage decodes the values of page into dst, which must have room for
// page.NumValues slots.
//
// Each level entry of the page produces one slot: slots with a definition
// level lower than the maximum of the column are null and left untouched,
// the others receive the values of the page in order. Repetition levels are
// skipped.
func (r *ColumnReader[T]) ReadDataPage(page DataPage, dst []T) (Result, error) {
	numValues := page.NumValues
	if numValues < 0 || numValues > len(dst) {
		return Result{}, fmt.Errorf("reading data page of %d values of column %q into buffer of %d values: %w",
			numValues, r.column.Path, len(dst), encoding.ErrInvalidArgument)
	}

	values, err := r.splitPage(&page)
	if err != nil {
		return Result{}, r.fail(err, "reading page sections", page.Encoding, numValues)
	}

	result := Result{NumValues: numValues}
	if r.column.MaxDefinitionLevel > 0 {
		if result.NullCount, err = r.decodeDefinitionLevels(numValues); err != nil {
			return Result{}, r.fail(err, "decoding definition levels", page.Encoding, numValues)
		}
		if page.Version == 2 && page.NumNulls != result.NullCount {
			return Result{}, r.fail(encoding.ErrDecodeMismatch,
				fmt.Sprintf("page header declares %d nulls but definition levels hold %d", page.NumNulls, result.NullCount),
				page.Encoding, numValues)
		}
		result.ValidBits = r.validBits.Slice()
	}

	decoder := r.decoder(page.Encoding)
	if err := decoder.Reset(numValues-result.NullCount, values); err != nil {
		return Result{}, r.fail(err, "loading page", page.Encoding, numValues)
	}

	if result.NullCount == 0 {
		n, err := decoder.Decode(dst[:numValues])
		if err == nil && n != numValues {
			err = fmt.Errorf("decoded %d values out of %d: %w", n, numValues, encoding.ErrDecodeMismatch)
		}
		if err != nil {
			return Result{}, r.fail(err, "decoding values", page.Encoding, numValues)
		}
	} else {
		if _, err := decoder.DecodeSpaced(dst[:numValues], result.NullCount, result.ValidBits, 0); err != nil {
			return Result{}, r.fail(err, "decoding spaced values", page.Encoding, numValues)
		}
	}

	r.logger.Debug().
		Stringer("encoding", page.Encoding).
		Int("num_values", numValues).
		Int("null_count", result.NullCount).
		Msg("data page decoded")
	return result, nil
}

// Release returns the internal buffers of r to their pools. The reader
// remains usable, buffers are reacquired by the next page read.
func (r *ColumnReader[T]) Release() {
	r.page.Reset()
	r.levels.Reset()
	r.validBits.Reset()
}

// splitPage decompresses the page and returns its values section, after
// positioning the definition level decoder on the levels of the page.
func (r *ColumnReader[T]) splitPage(page *DataPage) ([]byte, error) {
	if page.Version == 2 {
		return r.splitPageV2(page)
	}

	content, err := r.decompress(page.Data, page.UncompressedSize)
	if err != nil {
		return nil, err
	}

	if r.column.MaxRepetitionLevel > 0 {
		n, err := r.repetition.Reset(page.NumValues, content)
		if err != nil {
			return nil, fmt.Errorf("repetition levels: %w", err)
		}
		content = content[n:]
	}
	if r.column.MaxDefinitionLevel > 0 {
		n, err := r.definition.Reset(page.NumValues, content)
		if err != nil {
			return nil, fmt.Errorf("definition levels: %w", err)
		}
		content = content[n:]
	}
	return content, nil
}

func (r *ColumnReader[T]) splitPageV2(page *DataPage) ([]byte, error) {
	repSize, defSize := page.RepetitionLevelsByteLength, page.DefinitionLevelsByteLength
	if repSize < 0 || defSize < 0 || repSize+defSize > len(page.Data) {
		return nil, fmt.Errorf("levels of %d+%d bytes exceed the %d bytes of the page: %w",
			repSize, defSize, len(page.Data), encoding.ErrMalformedPage)
	}

	if r.column.MaxDefinitionLevel > 0 {
		if err := r.definition.ResetRaw(page.NumValues, page.Data[repSize:repSize+defSize]); err != nil {
			return nil, fmt.Errorf("definition levels: %w", err)
		}
	}

	values := page.Data[repSize+defSize:]
	if !page.IsCompressed {
		return values, nil
	}
	return r.decompress(values, page.UncompressedSize-repSize-defSize)
}

func (r *ColumnReader[T]) decompress(data []byte, uncompressedSize int) ([]byte, error) {
	buffer := r.page.Resize(max(uncompressedSize, 0))[:0]
	content, err := r.config.Compression.Decode(buffer, data)
	if err != nil {
		return nil, fmt.Errorf("decompressing %d bytes with %s: %w", len(data), r.config.Compression, err)
	}
	if uncompressedSize > 0 && len(content) != uncompressedSize {
		return nil, fmt.Errorf("page decompressed to %d bytes instead of %d: %w", len(content), uncompressedSize, encoding.ErrMalformedPage)
	}
	return content, nil
}

// decodeDefinitionLevels decodes the levels loaded in r.definition and builds
// the validity bitmap of the page, returning the number of nulls.
func (r *ColumnReader[T]) decodeDefinitionLevels(numValues int) (int, error) {
	levels := r.levels.Resize(numValues)
	if n, err := r.definition.Decode(levels); err != nil {
		return 0, err
	} else if n != numValues {
		return 0, fmt.Errorf("decoded %d definition levels out of %d: %w", n, numValues, encoding.ErrMalformedPage)
	}

	validBits := r.validBits.Resize(bits.ByteCount(uint(numValues)))
	clear(validBits)
	maxLevel := int32(r.column.MaxDefinitionLevel)
	nullCount := 0
	for i, level := range levels {
		if level == maxLevel {
			bits.Set(validBits, int64(i))
		} else {
			nullCount++
		}
	}
	return nullCount, nil
}

func (r *ColumnReader[T]) decoder(enc format.Encoding) encoding.Decoder[T] {
	d, ok := r.decoders[enc]
	if !ok {
		d = NewDecoder[T](r.column, enc)
		if d, ok := d.(*dict.Decoder[T]); ok && r.dictionary != nil {
			d.SetDictionary(r.dictionary)
		}
		r.decoders[enc] = d
	}
	return d
}

func (r *ColumnReader[T]) fail(err error, msg string, enc format.Encoding, numValues int) error {
	r.logger.Error().
		Err(err).
		Stringer("encoding", enc).
		Int("num_values", numValues).
		Msg(msg)
	return fmt.Errorf("column %q: %s: %w", r.column.Path, msg, err)
}
