package catalog

// FieldDescriptor describes one field within a table's data records.
type FieldDescriptor struct {
	Type              FieldType
	Offset            uint16
	Name              string
	ArrayElementCount uint16
	Size              uint16
	Overlaps          bool
	Number            uint16

	// Present only when Type.hasArrayElementFields().
	ArrayElementSize uint16
	Template         uint16

	// Present only when Type == Decimal.
	DecimalCount uint8
	DecimalSize  uint8
}

// MemoKind distinguishes a text memo from a binary blob.
type MemoKind uint8

const (
	Memo MemoKind = 0
	Blob MemoKind = 1
)

func (k MemoKind) String() string {
	if k == Blob {
		return "BLOB"
	}
	return "MEMO"
}

// MemoDescriptor describes an out-of-line memo/blob field. The core
// never opens the external memo file itself — that lives beside the
// .tps file under a name derived from ExternalFilename — but exposes
// the schema so a caller can.
type MemoDescriptor struct {
	ExternalFilename string
	Name             string
	Size             uint16
	Binary           bool
	Kind             MemoKind
}

// IndexKind distinguishes the three index flavors Clarion supports.
type IndexKind uint8

const (
	Key          IndexKind = 0
	IndexKindIdx IndexKind = 1
	DynamicIndex IndexKind = 2
)

func (k IndexKind) String() string {
	switch k {
	case Key:
		return "KEY"
	case IndexKindIdx:
		return "INDEX"
	case DynamicIndex:
		return "DYNAMIC_INDEX"
	default:
		return "UNKNOWN"
	}
}

// IndexFieldOrder is the sort direction of one field within a
// composite index.
type IndexFieldOrder uint16

const (
	Ascending  IndexFieldOrder = 0
	Descending IndexFieldOrder = 1
)

// IndexFieldPart is one field's contribution to a composite index key.
type IndexFieldPart struct {
	FieldNumber uint16
	Order       IndexFieldOrder
}

// IndexDescriptor describes one index or key over the table.
type IndexDescriptor struct {
	ExternalFilename string
	Name             string
	Kind             IndexKind
	NoCase           bool
	Opt              bool
	Dup              bool
	Fields           []IndexFieldPart
}

// TableDefinition is the fully assembled schema for one table:
// field/memo/index descriptors, reassembled from one or more
// TABLE_DEFINITION record portions.
type TableDefinition struct {
	MinVersionDriver uint16
	RecordSize       uint16
	Fields           []FieldDescriptor
	Memos            []MemoDescriptor
	Indexes          []IndexDescriptor
}

// FieldByName returns the field descriptor named name, if present.
func (d TableDefinition) FieldByName(name string) (FieldDescriptor, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}
