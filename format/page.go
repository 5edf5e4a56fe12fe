package format

import "fmt"

// PageType identifies the content of a page in a column chunk.
type PageType int32

const (
	DataPage       PageType = 0
	IndexPage      PageType = 1
	DictionaryPage PageType = 2
	DataPageV2     PageType = 3 // Added in 2.0
)

func (t PageType) String() string {
	switch t {
	case DataPage:
		return "DATA_PAGE"
	case IndexPage:
		return "INDEX_PAGE"
	case DictionaryPage:
		return "DICTIONARY_PAGE"
	case DataPageV2:
		return "DATA_PAGE_V2"
	default:
		return fmt.Sprintf("PageType(%d)", int32(t))
	}
}

// DataPageHeader is the header of DATA_PAGE pages. Statistics are not
// decoded.
type DataPageHeader struct {
	// Number of values, including NULLs, in this data page.
	NumValues int32

	// Encoding used for this data page.
	Encoding Encoding

	// Encoding used for definition levels.
	DefinitionLevelEncoding Encoding

	// Encoding used for repetition levels.
	RepetitionLevelEncoding Encoding
}

// DataPageHeaderV2 is the header of DATA_PAGE_V2 pages. The levels sections
// are never compressed and precede the values section.
type DataPageHeaderV2 struct {
	NumValues int32
	NumNulls  int32
	NumRows   int32
	Encoding  Encoding

	// Lengths of the levels sections, in bytes.
	DefinitionLevelsByteLength int32
	RepetitionLevelsByteLength int32

	// Whether the values section is compressed. Defaults to true when the
	// field is absent from the header.
	IsCompressed bool
}

// DictionaryPageHeader is the header of DICTIONARY_PAGE pages.
type DictionaryPageHeader struct {
	NumValues int32
	Encoding  Encoding
	IsSorted  bool
}

// PageHeader precedes every page of a column chunk. Exactly one of the page
// specific headers is set, matching Type.
type PageHeader struct {
	Type                 PageType
	UncompressedPageSize int32
	CompressedPageSize   int32
	CRC                  int32

	DataPageHeader       *DataPageHeader
	DictionaryPageHeader *DictionaryPageHeader
	DataPageHeaderV2     *DataPageHeaderV2
}
