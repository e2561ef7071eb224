// Package errs defines the error kinds a TPS file open/scan can produce.
//
// Structural anomalies found while scanning in integrity ("check") mode
// are not represented here: they never abort a scan and are collected
// as Warning values instead. These sentinels are for failures that do
// abort — a missing file, a failed read, a bad password, or a record
// that cannot be parsed at all.
package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel kinds. Use errors.Is(err, errs.BadMagic) etc. to classify an
// error returned from this module; every constructor below marks its
// result with the matching sentinel via errors.Mark.
var (
	NotFound         = errors.New("tpsread: not found")
	IO               = errors.New("tpsread: io error")
	BadMagic         = errors.New("tpsread: bad magic (wrong password or corrupt header)")
	Corrupt          = errors.New("tpsread: corrupt structure")
	UnsupportedField = errors.New("tpsread: unsupported field type")
)

// WrapNotFound marks err as errs.NotFound, recording path for diagnostics.
func WrapNotFound(path string, err error) error {
	return errors.Mark(errors.Wrapf(err, "open %s", errors.Safe(path)), NotFound)
}

// WrapIO marks err as errs.IO.
func WrapIO(what string, err error) error {
	return errors.Mark(errors.Wrapf(err, "%s", what), IO)
}

// NewBadMagic reports a header whose literal marker did not match.
func NewBadMagic(path string) error {
	return errors.Mark(errors.Newf("%s: tOpS marker mismatch", errors.Safe(path)), BadMagic)
}

// Newf builds a fatal Corrupt error with a formatted message.
func Newf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), Corrupt)
}

// Wrapf wraps err as a fatal Corrupt error with additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), Corrupt)
}

// NewUnsupportedField reports a field type the materializer refuses to
// decode outright (as opposed to GROUP/PICTURE, which are skipped).
func NewUnsupportedField(fieldNumber uint32, fieldName string, typ interface{}) error {
	return errors.Mark(
		errors.Newf("field %d (%s): unsupported type %v", errors.Safe(fieldNumber), errors.Safe(fieldName), typ),
		UnsupportedField,
	)
}

// Is reports whether err is (or wraps) the given sentinel kind.
func Is(err error, kind error) bool {
	return errors.Is(err, kind)
}

// Warning is a non-fatal anomaly: a structural finding of integrity
// ("check") mode, or a field that materialization skipped or could
// not decode. It never aborts a scan.
type Warning struct {
	Component string // e.g. "PageIndex", "FieldMaterializer"
	Message   string
}

func (w Warning) String() string {
	return w.Component + ": " + w.Message
}

// Warnf constructs a Warning.
func Warnf(component, format string, args ...interface{}) Warning {
	return Warning{Component: component, Message: fmt.Sprintf(format, args...)}
}
