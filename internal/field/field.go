// Package field materializes a DATA record's raw bytes into a
// field-name → value mapping per schema: component I.
package field

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/galler-alexander/tpsread/internal/catalog"
	"github.com/galler-alexander/tpsread/internal/errs"
)

// RecNoName is the synthetic field the reference injects into every
// materialized record, carrying the record's record_number.
const RecNoName = ":RecNo"

// clarionEpoch is Clarion's day-zero, 1800-12-28: LONG-as-date values
// count days from this date in the proleptic Gregorian calendar.
var clarionEpoch = time.Date(1800, time.December, 28, 0, 0, 0, 0, time.UTC)

// Decoder turns raw string-field bytes into text per the caller's
// chosen encoding. A nil Decoder means "pass bytes through verbatim".
type Decoder func([]byte) string

func decode(dec Decoder, b []byte) string {
	if dec == nil {
		return string(b)
	}
	return dec(b)
}

// Options configures value interpretation that the schema alone
// cannot determine: which LONG fields are dates or times.
type Options struct {
	Decoder    Decoder
	DateFields map[string]bool // field-name suffix set
	TimeFields map[string]bool // field-name suffix set
	Check      bool
}

func matchesSuffixSet(name string, set map[string]bool) bool {
	for suffix := range set {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Materialize decodes one DATA record's bytes into a field_name →
// value map, per def. recordNumber becomes the synthetic :RecNo
// field. In check mode a record-size mismatch is recorded as a
// warning rather than rejected outright; individual fields that would
// read past the end of data are skipped with a warning instead of
// panicking or fabricating bytes.
func Materialize(data []byte, recordNumber uint32, def catalog.TableDefinition, opts Options) (map[string]any, []errs.Warning, error) {
	var warnings []errs.Warning

	if opts.Check && len(data) != int(def.RecordSize) {
		warnings = append(warnings, errs.Warnf("FieldMaterializer",
			"record %d: length %d does not match table record_size %d", recordNumber, len(data), def.RecordSize))
	}

	out := make(map[string]any, len(def.Fields)+1)
	out[RecNoName] = recordNumber

	for _, f := range def.Fields {
		if f.Type == catalog.Group {
			continue
		}

		start, end := int(f.Offset), int(f.Offset)+int(f.Size)
		if start < 0 || end > len(data) {
			warnings = append(warnings, errs.Warnf("FieldMaterializer",
				"record %d: field %s: offset+size (%d..%d) exceeds record length %d, skipped",
				recordNumber, f.Name, start, end, len(data)))
			continue
		}
		raw := data[start:end]

		if f.Type == catalog.Picture {
			warnings = append(warnings, errs.Warnf("FieldMaterializer",
				"record %d: field %s: PICTURE fields are unsupported, skipped", recordNumber, f.Name))
			continue
		}

		v, warn, err := materializeField(raw, f, opts)
		if err != nil {
			return nil, warnings, errs.Wrapf(err, "record %d", recordNumber)
		}
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		out[f.Name] = v
	}

	return out, warnings, nil
}

func materializeField(raw []byte, f catalog.FieldDescriptor, opts Options) (any, *errs.Warning, error) {
	switch f.Type {
	case catalog.Byte:
		return raw[0], nil, nil

	case catalog.Short:
		return int16(binary.LittleEndian.Uint16(raw)), nil, nil

	case catalog.UShort:
		return binary.LittleEndian.Uint16(raw), nil, nil

	case catalog.Long:
		n := int32(binary.LittleEndian.Uint32(raw))
		switch {
		case matchesSuffixSet(f.Name, opts.DateFields):
			if n == 0 {
				return nil, nil, nil
			}
			return clarionOrdinalToTime(n), nil, nil
		case matchesSuffixSet(f.Name, opts.TimeFields):
			seconds, centiseconds := divmod(n, 100)
			t := time.Unix(int64(seconds), 0).UTC()
			return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d",
				t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), centiseconds), nil, nil
		default:
			return n, nil, nil
		}

	case catalog.ULong:
		return binary.LittleEndian.Uint32(raw), nil, nil

	case catalog.Float:
		return math.Float32frombits(binary.LittleEndian.Uint32(raw)), nil, nil

	case catalog.Double:
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil, nil

	case catalog.Date:
		day, month, year := raw[0], raw[1], binary.LittleEndian.Uint16(raw[2:4])
		if year == 0 {
			return nil, nil, nil
		}
		return time.Date(int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC), nil, nil

	case catalog.Time:
		centi, sec, minute, hour := raw[0], raw[1], raw[2], raw[3]
		return time.Date(0, 1, 1, int(hour), int(minute), int(sec), int(centi)*10_000_000, time.UTC), nil, nil

	case catalog.Decimal:
		v, warn := decodePackedDecimal(raw, int(f.DecimalCount))
		return v, warn, nil

	case catalog.String:
		return strings.TrimRight(decode(opts.Decoder, raw), " \x00\t\r\n"), nil, nil

	case catalog.CString:
		return strings.TrimRight(decode(opts.Decoder, raw), " \x00\t\r\n"), nil, nil

	case catalog.PString:
		if len(raw) == 0 {
			return "", nil, nil
		}
		l := int(raw[0])
		if 1+l > len(raw) {
			l = len(raw) - 1
		}
		return strings.TrimRight(decode(opts.Decoder, raw[1:1+l]), " \x00\t\r\n"), nil, nil

	default:
		return nil, nil, errs.NewUnsupportedField(uint32(f.Number), f.Name, f.Type)
	}
}

func divmod(n int32, d int32) (q, r int32) {
	q = n / d
	r = n % d
	if r < 0 {
		r += d
		q--
	}
	return q, r
}

// clarionOrdinalToTime interprets n as a day count from Clarion's
// epoch, matching Python's date.fromordinal(657433 + n).
func clarionOrdinalToTime(n int32) time.Time {
	return clarionEpoch.AddDate(0, 0, int(n))
}

// decodePackedDecimal decodes a packed-BCD DECIMAL field: if the high
// nibble of the first byte is 0xF, the value is negative and that
// nibble is cleared before digit extraction. A nibble outside 0-9
// (a truncated or corrupted field) yields a zero value and a warning
// rather than a silently wrong result.
func decodePackedDecimal(raw []byte, decimalCount int) (*big.Rat, *errs.Warning) {
	buf := make([]byte, len(raw))
	copy(buf, raw)

	sign := int64(1)
	if buf[0]>>4 == 0xF {
		sign = -1
		buf[0] &= 0x0F
	}

	var digits strings.Builder
	for i, b := range buf {
		hi, lo := b>>4, b&0x0F
		if i == 0 {
			if hi != 0 {
				digits.WriteByte('0' + hi)
			}
		} else {
			digits.WriteByte('0' + hi)
		}
		digits.WriteByte('0' + lo)
	}

	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimalCount)), nil)

	intVal := new(big.Int)
	s := digits.String()
	if s == "" {
		s = "0"
	}
	if _, ok := intVal.SetString(s, 10); !ok {
		warn := errs.Warnf("FieldMaterializer", "decimal field: malformed packed-BCD nibble in % x, using zero", raw)
		return new(big.Rat).SetFrac(big.NewInt(0), denom), &warn
	}
	intVal.Mul(intVal, big.NewInt(sign))

	return new(big.Rat).SetFrac(intVal, denom), nil
}
