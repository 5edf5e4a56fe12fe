// Package parquetrange provides range-over-func iterators over decoded
// parquet values.
package parquetrange

import (
	"fmt"
	"iter"

	"github.com/parquet-go/parquet-decoding"
	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
	"github.com/parquet-go/parquet-decoding/format/thriftdecode"
)

type IterConfig struct {
	ReuseValues bool // Whether to reuse the same slice for each batch of values
	BatchSize   int  // Number of values to decode at a time
}

// Values yields the values left in the page loaded in decoder, in batches of
// at most config.BatchSize values.
//
// When config.ReuseValues is set, each batch overwrites the previous one, so
// callers must copy values they want to retain.
func Values[T encoding.Kind](decoder encoding.Decoder[T], config IterConfig) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		if config.BatchSize <= 0 {
			yield(nil, fmt.Errorf("batch size %d: %w", config.BatchSize, encoding.ErrInvalidArgument))
			return
		}

		var values []T
		if config.ReuseValues {
			values = make([]T, config.BatchSize)
		}

		for decoder.ValuesLeft() > 0 {
			if !config.ReuseValues {
				values = make([]T, config.BatchSize)
			}

			n, err := decoder.Decode(values)
			if err != nil {
				yield(nil, err)
				return
			}
			// Decoders must make progress while values are left.
			if n == 0 {
				yield(nil, fmt.Errorf("no values decoded out of %d left: %w", decoder.ValuesLeft(), encoding.ErrDecodeMismatch))
				return
			}

			if !yield(values[:n], nil) {
				return
			}
		}
	}
}

// Page is a data page yielded by Pages.
type Page[T encoding.Kind] struct {
	// Values holds one slot per level entry of the page, null slots hold the
	// zero value.
	Values []T

	// Result describes the slots of Values.
	Result parquet.Result
}

// Pages yields the data pages of a column chunk read with reader. Dictionary
// pages are loaded into reader and index pages are skipped, neither is
// yielded.
//
// When config.ReuseValues is set, the values of each page overwrite those of
// the previous one. config.BatchSize is the initial capacity of the values
// buffer, which grows to fit the largest page.
//
// Byte array values reference buffers of reader, they remain valid until the
// next iteration. Callers retaining them across pages must copy them.
func Pages[T encoding.Kind](reader *parquet.ColumnReader[T], chunk []byte, config IterConfig) iter.Seq2[Page[T], error] {
	return func(yield func(Page[T], error) bool) {
		values := make([]T, 0, max(config.BatchSize, 0))

		for offset := 0; offset < len(chunk); {
			// The header is decoded ahead of the page to size the buffer of
			// values.
			var header format.PageHeader
			if _, err := thriftdecode.DecodePageHeader(chunk[offset:], &header); err != nil {
				yield(Page[T]{}, fmt.Errorf("page at offset %d: %w: %w", offset, encoding.ErrMalformedPage, err))
				return
			}
			next := parquet.Page{Header: header}
			numValues := next.NumValues()

			if !config.ReuseValues {
				values = nil
			}
			if cap(values) < numValues {
				values = make([]T, numValues)
			}
			values = values[:numValues]

			page, err := reader.ReadPage(chunk[offset:], values)
			if err != nil {
				yield(Page[T]{}, fmt.Errorf("page at offset %d: %w", offset, err))
				return
			}
			offset += page.Size

			if header.DataPageHeader == nil && header.DataPageHeaderV2 == nil {
				continue
			}
			if page.Result.NullCount > 0 {
				var zero T
				for i := range values {
					if !page.Result.Valid(i) {
						values[i] = zero
					}
				}
			}
			if !yield(Page[T]{Values: values, Result: page.Result}, nil) {
				return
			}
		}
	}
}

func Flatten[T any, S ~[]T](seq iter.Seq2[S, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for vs, err := range seq {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, v := range vs {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}
