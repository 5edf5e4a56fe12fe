// Package thrifttest builds thrift compact protocol encodings of page headers
// for tests of the page readers.
package thrifttest

import (
	"encoding/binary"

	"github.com/parquet-go/parquet-decoding/format"
)

const (
	typeTrue   = 1
	typeFalse  = 2
	typeI32    = 5
	typeBinary = 8
	typeStruct = 12
)

// Writer appends the fields of a struct, tracking the last field id to
// produce short field headers. The zero value writes the top level struct,
// terminated by a call to End.
type Writer struct {
	b      []byte
	lastID []int16
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte { return w.b }

func (w *Writer) field(id int16, typ byte) {
	if len(w.lastID) == 0 {
		w.lastID = append(w.lastID, 0)
	}
	n := len(w.lastID) - 1
	last := w.lastID[n]
	w.lastID[n] = id
	if delta := id - last; delta > 0 && delta <= 15 {
		w.b = append(w.b, byte(delta)<<4|typ)
	} else {
		w.b = append(w.b, typ)
		w.b = binary.AppendVarint(w.b, int64(id))
	}
}

// I32 appends an I32 field.
func (w *Writer) I32(id int16, v int32) {
	w.field(id, typeI32)
	w.b = binary.AppendVarint(w.b, int64(v))
}

// Bool appends a BOOL field.
func (w *Writer) Bool(id int16, v bool) {
	if v {
		w.field(id, typeTrue)
	} else {
		w.field(id, typeFalse)
	}
}

// Binary appends a BINARY field.
func (w *Writer) Binary(id int16, v []byte) {
	w.field(id, typeBinary)
	w.b = binary.AppendUvarint(w.b, uint64(len(v)))
	w.b = append(w.b, v...)
}

// Begin starts a struct field, which must be closed with End.
func (w *Writer) Begin(id int16) {
	w.field(id, typeStruct)
	w.lastID = append(w.lastID, 0)
}

// End appends the stop marker of the current struct.
func (w *Writer) End() {
	w.b = append(w.b, 0)
	if n := len(w.lastID); n > 0 {
		w.lastID = w.lastID[:n-1]
	}
}

// AppendPageHeader appends the encoding of h to b. Statistics is appended to
// the page specific header as an opaque struct holding one binary field when
// it is not nil, for tests of skipped fields.
func AppendPageHeader(b []byte, h *format.PageHeader, statistics []byte) []byte {
	w := &Writer{b: b}
	w.I32(1, int32(h.Type))
	w.I32(2, h.UncompressedPageSize)
	w.I32(3, h.CompressedPageSize)
	if h.CRC != 0 {
		w.I32(4, h.CRC)
	}

	if d := h.DataPageHeader; d != nil {
		w.Begin(5)
		w.I32(1, d.NumValues)
		w.I32(2, int32(d.Encoding))
		w.I32(3, int32(d.DefinitionLevelEncoding))
		w.I32(4, int32(d.RepetitionLevelEncoding))
		appendStatistics(w, 5, statistics)
		w.End()
	}
	if d := h.DictionaryPageHeader; d != nil {
		w.Begin(7)
		w.I32(1, d.NumValues)
		w.I32(2, int32(d.Encoding))
		w.Bool(3, d.IsSorted)
		w.End()
	}
	if d := h.DataPageHeaderV2; d != nil {
		w.Begin(8)
		w.I32(1, d.NumValues)
		w.I32(2, d.NumNulls)
		w.I32(3, d.NumRows)
		w.I32(4, int32(d.Encoding))
		w.I32(5, d.DefinitionLevelsByteLength)
		w.I32(6, d.RepetitionLevelsByteLength)
		w.Bool(7, d.IsCompressed)
		appendStatistics(w, 8, statistics)
		w.End()
	}
	w.End()
	return w.Bytes()
}

func appendStatistics(w *Writer, id int16, statistics []byte) {
	if statistics == nil {
		return
	}
	w.Begin(id)
	w.Binary(1, statistics)
	w.End()
}

// AppendPage appends the header h followed by the page content.
func AppendPage(b []byte, h *format.PageHeader, content []byte) []byte {
	return append(AppendPageHeader(b, h, nil), content...)
}
