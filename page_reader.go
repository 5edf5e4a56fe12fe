package parquet

import (
	"fmt"
	"slices"

	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
	"github.com/parquet-go/parquet-decoding/format/thriftdecode"
)

// Page describes a page read by ColumnReader.ReadPage.
type Page struct {
	// Header is the decoded header of the page.
	Header format.PageHeader

	// Size is the number of bytes of the header and content of the page.
	Size int

	// Result describes the values of data pages. It is zero for other pages.
	Result Result
}

// NumValues returns the number of level entries of a data page, or zero for
// other page types.
func (p *Page) NumValues() int {
	switch {
	case p.Header.DataPageHeader != nil:
		return int(p.Header.DataPageHeader.NumValues)
	case p.Header.DataPageHeaderV2 != nil:
		return int(p.Header.DataPageHeaderV2.NumValues)
	default:
		return 0
	}
}

// ReadPage reads the page at the beginning of chunk, made of a thrift encoded
// page header followed by the page content.
//
// Dictionary pages are loaded as by ReadDictionaryPage, data pages are
// decoded into dst as by ReadDataPage. Index pages and pages of unknown types
// are skipped. The returned Page reports the number of bytes consumed from
// chunk.
//
// Byte array values may reference buffers of the reader, they remain valid
// until the next page is read.
func (r *ColumnReader[T]) ReadPage(chunk []byte, dst []T) (Page, error) {
	page, content, err := r.readPageHeader(chunk)
	if err != nil {
		return Page{}, err
	}
	if page.Result, err = r.readPage(&page.Header, content, dst); err != nil {
		return Page{}, err
	}
	return page, nil
}

// ReadColumnChunk reads all the pages of chunk, returning the values of its
// data pages. Null slots hold the zero value and are reported false in the
// returned validity slice. Byte array values are copied to memory owned by
// the returned slice.
func (r *ColumnReader[T]) ReadColumnChunk(chunk []byte) (values []T, validity []bool, err error) {
	for offset := 0; offset < len(chunk); {
		page, content, err := r.readPageHeader(chunk[offset:])
		if err != nil {
			return nil, nil, fmt.Errorf("page at offset %d: %w", offset, err)
		}

		numValues := page.NumValues()
		start := len(values)
		values = slices.Grow(values, numValues)[:start+numValues]

		result, err := r.readPage(&page.Header, content, values[start:])
		if err != nil {
			return nil, nil, fmt.Errorf("page at offset %d: %w", offset, err)
		}
		var zero T
		for i := range result.NumValues {
			valid := result.Valid(i)
			if !valid {
				values[start+i] = zero
			}
			validity = append(validity, valid)
		}
		values = values[:start+result.NumValues]
		copyByteArrays(values[start:])
		offset += page.Size
	}
	return values, validity, nil
}

// copyByteArrays moves the byte array values of a page out of the buffers
// that the next page reuses.
func copyByteArrays[T encoding.Kind](values []T) {
	switch v := any(values).(type) {
	case []encoding.ByteArray:
		copyBytes(v)
	case []encoding.FixedLenByteArray:
		copyBytes(v)
	}
}

func copyBytes[T ~[]byte](values []T) {
	size := 0
	for _, v := range values {
		size += len(v)
	}
	arena := make([]byte, 0, size)
	for i, v := range values {
		if []byte(v) == nil {
			continue
		}
		start := len(arena)
		arena = append(arena, []byte(v)...)
		values[i] = T(arena[start:len(arena):len(arena)])
	}
}

func (r *ColumnReader[T]) readPageHeader(chunk []byte) (Page, []byte, error) {
	var page Page
	n, err := thriftdecode.DecodePageHeader(chunk, &page.Header)
	if err != nil {
		r.logger.Error().Err(err).Int("size", len(chunk)).Msg("decoding page header")
		return Page{}, nil, fmt.Errorf("column %q: decoding page header: %w: %w", r.column.Path, encoding.ErrMalformedPage, err)
	}

	size := int(page.Header.CompressedPageSize)
	if size > len(chunk)-n {
		err := fmt.Errorf("page of %d bytes exceeds the %d bytes remaining after its header: %w", size, len(chunk)-n, encoding.ErrMalformedPage)
		r.logger.Error().Err(err).Stringer("page_type", page.Header.Type).Msg("reading page")
		return Page{}, nil, fmt.Errorf("column %q: %w", r.column.Path, err)
	}
	page.Size = n + size
	return page, chunk[n : n+size], nil
}

func (r *ColumnReader[T]) readPage(header *format.PageHeader, content []byte, dst []T) (Result, error) {
	switch header.Type {
	case format.DictionaryPage:
		h := header.DictionaryPageHeader
		if h.Encoding != format.Plain && h.Encoding != format.PlainDictionary {
			return Result{}, r.fail(encoding.ErrNotSupported, "reading dictionary page", h.Encoding, int(h.NumValues))
		}
		return Result{}, r.ReadDictionaryPage(int(h.NumValues), content)

	case format.DataPage:
		h := header.DataPageHeader
		if r.column.MaxDefinitionLevel > 0 && h.DefinitionLevelEncoding != format.RLE {
			return Result{}, r.fail(encoding.ErrNotSupported,
				fmt.Sprintf("definition levels encoded with %s", h.DefinitionLevelEncoding), h.Encoding, int(h.NumValues))
		}
		if r.column.MaxRepetitionLevel > 0 && h.RepetitionLevelEncoding != format.RLE {
			return Result{}, r.fail(encoding.ErrNotSupported,
				fmt.Sprintf("repetition levels encoded with %s", h.RepetitionLevelEncoding), h.Encoding, int(h.NumValues))
		}
		return r.ReadDataPage(DataPage{
			Version:          1,
			NumValues:        int(h.NumValues),
			Encoding:         h.Encoding,
			UncompressedSize: int(header.UncompressedPageSize),
			Data:             content,
		}, dst)

	case format.DataPageV2:
		h := header.DataPageHeaderV2
		return r.ReadDataPage(DataPage{
			Version:                    2,
			NumValues:                  int(h.NumValues),
			NumNulls:                   int(h.NumNulls),
			Encoding:                   h.Encoding,
			RepetitionLevelsByteLength: int(h.RepetitionLevelsByteLength),
			DefinitionLevelsByteLength: int(h.DefinitionLevelsByteLength),
			IsCompressed:               h.IsCompressed,
			UncompressedSize:           int(header.UncompressedPageSize),
			Data:                       content,
		}, dst)

	default:
		r.logger.Debug().Stringer("page_type", header.Type).Int("size", len(content)).Msg("page skipped")
		return Result{}, nil
	}
}
