// Package thriftdecode decodes the thrift compact protocol encoding of
// parquet page headers.
//
// The decoder reads from an in-memory buffer and never copies it. Fields of
// the headers that the readers of this module do not consult, such as page
// statistics, are skipped.
package thriftdecode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-decoding/format"
)

const (
	typeStop   = 0
	typeTrue   = 1
	typeFalse  = 2
	typeI8     = 3
	typeI16    = 4
	typeI32    = 5
	typeI64    = 6
	typeDouble = 7
	typeBinary = 8
	typeList   = 9
	typeSet    = 10
	typeMap    = 11
	typeStruct = 12
)

// maxDepth bounds the nesting of skipped values.
const maxDepth = 64

type buffer struct {
	data []byte
	pos  int
}

func (b *buffer) ReadByte() (byte, error) {
	if b.pos >= len(b.data) {
		return 0, io.ErrUnexpectedEOF
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

func (b *buffer) skip(n int) error {
	if n < 0 || n > len(b.data)-b.pos {
		return io.ErrUnexpectedEOF
	}
	b.pos += n
	return nil
}

func (b *buffer) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(b.data[b.pos:])
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, errors.New("thriftdecode: varint overflows uint64")
	}
	b.pos += n
	return v, nil
}

// readVarint reads a zigzag encoded integer.
func (b *buffer) readVarint() (int64, error) {
	ux, err := b.readUvarint()
	if err != nil {
		return 0, err
	}
	x := int64(ux >> 1)
	if ux&1 != 0 {
		x = ^x
	}
	return x, nil
}

func (b *buffer) readI32() (int32, error) {
	v, err := b.readVarint()
	if err != nil {
		return 0, err
	}
	if v != int64(int32(v)) {
		return 0, fmt.Errorf("thriftdecode: value %d overflows I32", v)
	}
	return int32(v), nil
}

func (b *buffer) readField(lastID int16) (id int16, typ byte, err error) {
	v, err := b.ReadByte()
	if err != nil {
		return 0, 0, err
	}

	typ = v & 0x0F
	if typ == typeStop {
		return 0, typeStop, nil
	}

	if delta := v >> 4; delta != 0 {
		id = lastID + int16(delta)
	} else {
		v, err := b.readVarint()
		if err != nil {
			return 0, 0, err
		}
		id = int16(v)
	}
	return id, typ, nil
}

func (b *buffer) readList() (size int, typ byte, err error) {
	v, err := b.ReadByte()
	if err != nil {
		return 0, 0, err
	}

	typ = v & 0x0F
	size = int(v >> 4)

	if size == 0x0F {
		n, err := b.readUvarint()
		if err != nil {
			return 0, 0, err
		}
		// Every element takes at least one byte.
		if n > uint64(len(b.data)-b.pos) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		size = int(n)
	}
	return size, typ, nil
}

func (b *buffer) skipValue(typ byte, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("thriftdecode: values nested deeper than %d levels", maxDepth)
	}
	switch typ {
	case typeTrue, typeFalse:
		return nil
	case typeI8:
		return b.skip(1)
	case typeI16, typeI32, typeI64:
		_, err := b.readUvarint()
		return err
	case typeDouble:
		return b.skip(8)
	case typeBinary:
		n, err := b.readUvarint()
		if err != nil {
			return err
		}
		if n > uint64(len(b.data)-b.pos) {
			return io.ErrUnexpectedEOF
		}
		return b.skip(int(n))
	case typeList, typeSet:
		size, elemType, err := b.readList()
		if err != nil {
			return err
		}
		if elemType == typeTrue || elemType == typeFalse {
			return b.skip(size)
		}
		for range size {
			if err := b.skipValue(elemType, depth+1); err != nil {
				return err
			}
		}
		return nil
	case typeMap:
		n, err := b.readUvarint()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if n > uint64(len(b.data)-b.pos) {
			return io.ErrUnexpectedEOF
		}
		kv, err := b.ReadByte()
		if err != nil {
			return err
		}
		keyType, valType := kv>>4, kv&0x0F
		for range n {
			if err := b.skipValue(keyType, depth+1); err != nil {
				return err
			}
			if err := b.skipValue(valType, depth+1); err != nil {
				return err
			}
		}
		return nil
	case typeStruct:
		return b.skipStruct(depth + 1)
	default:
		return fmt.Errorf("thriftdecode: unknown type %d", typ)
	}
}

func (b *buffer) skipStruct(depth int) error {
	var lastID int16
	for {
		id, typ, err := b.readField(lastID)
		if err != nil {
			return err
		}
		if typ == typeStop {
			return nil
		}
		if err := b.skipValue(typ, depth); err != nil {
			return err
		}
		lastID = id
	}
}

// decodeStruct calls field for every field of the struct at the current
// position, until the stop marker.
func (b *buffer) decodeStruct(field func(id int16, typ byte) error) error {
	var lastID int16
	for {
		id, typ, err := b.readField(lastID)
		if err != nil {
			return err
		}
		if typ == typeStop {
			return nil
		}
		if err := field(id, typ); err != nil {
			return err
		}
		lastID = id
	}
}

func (b *buffer) i32(name string, typ byte, v *int32) (err error) {
	if typ != typeI32 {
		return fmt.Errorf("thriftdecode: %s: expected I32, got %d", name, typ)
	}
	*v, err = b.readI32()
	return err
}

func (b *buffer) encoding(name string, typ byte, e *format.Encoding) error {
	var v int32
	if err := b.i32(name, typ, &v); err != nil {
		return err
	}
	*e = format.Encoding(v)
	return nil
}

func (b *buffer) bool(name string, typ byte, v *bool) error {
	if typ != typeTrue && typ != typeFalse {
		return fmt.Errorf("thriftdecode: %s: expected BOOL, got %d", name, typ)
	}
	*v = typ == typeTrue
	return nil
}

func (b *buffer) structType(name string, typ byte) error {
	if typ != typeStruct {
		return fmt.Errorf("thriftdecode: %s: expected STRUCT, got %d", name, typ)
	}
	return nil
}

func (b *buffer) decodeDataPageHeader(h *format.DataPageHeader) error {
	return b.decodeStruct(func(id int16, typ byte) error {
		switch id {
		case 1:
			return b.i32("DataPageHeader.NumValues", typ, &h.NumValues)
		case 2:
			return b.encoding("DataPageHeader.Encoding", typ, &h.Encoding)
		case 3:
			return b.encoding("DataPageHeader.DefinitionLevelEncoding", typ, &h.DefinitionLevelEncoding)
		case 4:
			return b.encoding("DataPageHeader.RepetitionLevelEncoding", typ, &h.RepetitionLevelEncoding)
		default: // Statistics
			return b.skipValue(typ, 1)
		}
	})
}

func (b *buffer) decodeDictionaryPageHeader(h *format.DictionaryPageHeader) error {
	return b.decodeStruct(func(id int16, typ byte) error {
		switch id {
		case 1:
			return b.i32("DictionaryPageHeader.NumValues", typ, &h.NumValues)
		case 2:
			return b.encoding("DictionaryPageHeader.Encoding", typ, &h.Encoding)
		case 3:
			return b.bool("DictionaryPageHeader.IsSorted", typ, &h.IsSorted)
		default:
			return b.skipValue(typ, 1)
		}
	})
}

func (b *buffer) decodeDataPageHeaderV2(h *format.DataPageHeaderV2) error {
	h.IsCompressed = true
	return b.decodeStruct(func(id int16, typ byte) error {
		switch id {
		case 1:
			return b.i32("DataPageHeaderV2.NumValues", typ, &h.NumValues)
		case 2:
			return b.i32("DataPageHeaderV2.NumNulls", typ, &h.NumNulls)
		case 3:
			return b.i32("DataPageHeaderV2.NumRows", typ, &h.NumRows)
		case 4:
			return b.encoding("DataPageHeaderV2.Encoding", typ, &h.Encoding)
		case 5:
			return b.i32("DataPageHeaderV2.DefinitionLevelsByteLength", typ, &h.DefinitionLevelsByteLength)
		case 6:
			return b.i32("DataPageHeaderV2.RepetitionLevelsByteLength", typ, &h.RepetitionLevelsByteLength)
		case 7:
			return b.bool("DataPageHeaderV2.IsCompressed", typ, &h.IsCompressed)
		default: // Statistics
			return b.skipValue(typ, 1)
		}
	})
}

func (b *buffer) decodePageHeader(h *format.PageHeader) error {
	return b.decodeStruct(func(id int16, typ byte) error {
		switch id {
		case 1:
			var v int32
			if err := b.i32("PageHeader.Type", typ, &v); err != nil {
				return err
			}
			h.Type = format.PageType(v)
			return nil
		case 2:
			return b.i32("PageHeader.UncompressedPageSize", typ, &h.UncompressedPageSize)
		case 3:
			return b.i32("PageHeader.CompressedPageSize", typ, &h.CompressedPageSize)
		case 4:
			return b.i32("PageHeader.CRC", typ, &h.CRC)
		case 5:
			if err := b.structType("PageHeader.DataPageHeader", typ); err != nil {
				return err
			}
			h.DataPageHeader = &format.DataPageHeader{}
			return b.decodeDataPageHeader(h.DataPageHeader)
		case 7:
			if err := b.structType("PageHeader.DictionaryPageHeader", typ); err != nil {
				return err
			}
			h.DictionaryPageHeader = &format.DictionaryPageHeader{}
			return b.decodeDictionaryPageHeader(h.DictionaryPageHeader)
		case 8:
			if err := b.structType("PageHeader.DataPageHeaderV2", typ); err != nil {
				return err
			}
			h.DataPageHeaderV2 = &format.DataPageHeaderV2{}
			return b.decodeDataPageHeaderV2(h.DataPageHeaderV2)
		default: // IndexPageHeader is empty
			return b.skipValue(typ, 0)
		}
	})
}

// DecodePageHeader decodes the page header at the beginning of data into h,
// returning the size of the header in bytes. The page content follows the
// header in data.
//
// The function errors if data is truncated, if a field has an unexpected
// type, or if the header does not carry the specific header of its page
// type.
func DecodePageHeader(data []byte, h *format.PageHeader) (int, error) {
	*h = format.PageHeader{}
	b := buffer{data: data}
	if err := b.decodePageHeader(h); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("thriftdecode: decoding page header of %d bytes: %w", len(data), err)
		}
		return 0, err
	}

	var missing bool
	switch h.Type {
	case format.DataPage:
		missing = h.DataPageHeader == nil
	case format.DictionaryPage:
		missing = h.DictionaryPageHeader == nil
	case format.DataPageV2:
		missing = h.DataPageHeaderV2 == nil
	}
	if missing {
		return 0, fmt.Errorf("thriftdecode: %s page header lacks its specific header", h.Type)
	}
	if h.CompressedPageSize < 0 || h.UncompressedPageSize < 0 {
		return 0, fmt.Errorf("thriftdecode: negative page size (compressed=%d uncompressed=%d)", h.CompressedPageSize, h.UncompressedPageSize)
	}
	return b.pos, nil
}
