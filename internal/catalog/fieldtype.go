package catalog

// FieldType is a data record field's on-disk type tag.
type FieldType uint8

const (
	Byte    FieldType = 0x1
	Short   FieldType = 0x2
	UShort  FieldType = 0x3
	Date    FieldType = 0x4
	Time    FieldType = 0x5
	Long    FieldType = 0x6
	ULong   FieldType = 0x7
	Float   FieldType = 0x8
	Double  FieldType = 0x9
	Decimal FieldType = 0xA
	String  FieldType = 0x12
	CString FieldType = 0x13
	PString FieldType = 0x14
	Picture FieldType = 0x15
	Group   FieldType = 0x16
)

func (t FieldType) String() string {
	switch t {
	case Byte:
		return "BYTE"
	case Short:
		return "SHORT"
	case UShort:
		return "USHORT"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case Long:
		return "LONG"
	case ULong:
		return "ULONG"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case Decimal:
		return "DECIMAL"
	case String:
		return "STRING"
	case CString:
		return "CSTRING"
	case PString:
		return "PSTRING"
	case Picture:
		return "PICTURE"
	case Group:
		return "GROUP"
	default:
		return "UNKNOWN"
	}
}

// hasArrayElementFields reports whether the type carries the extra
// array_element_size/template pair in its descriptor.
func (t FieldType) hasArrayElementFields() bool {
	switch t {
	case String, CString, PString, Picture:
		return true
	default:
		return false
	}
}
