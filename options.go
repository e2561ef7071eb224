package tpsread

import (
	"log/slog"

	"golang.org/x/text/encoding/charmap"

	"github.com/galler-alexander/tpsread/internal/field"
)

// Options configure Open.
type Options struct {
	// Filename is the path to the TPS file. Required.
	Filename string
	// Encoding names the byte-encoding for string fields and table
	// names. Recognized values: "cp1251", "cp437". Empty means "return
	// raw bytes".
	Encoding string
	// Password enables the block cipher when non-empty.
	Password string
	// Check enables integrity mode: size, intersection, and block
	// containment checks, surfaced as non-fatal Warnings.
	Check bool
	// Cached enables the optional page cache.
	Cached bool
	// CurrentTableName selects the initial iteration target; it may
	// also be set later with SetCurrentTable.
	CurrentTableName string
	// DateFieldNames and TimeFieldNames are field-name suffix sets
	// selecting LONG field interpretation.
	DateFieldNames []string
	TimeFieldNames []string
	// Log receives structured diagnostics. A nil Log discards them.
	Log *slog.Logger
}

func resolveEncoding(name string) func([]byte) string {
	var cm *charmap.Charmap
	switch name {
	case "cp1251":
		cm = charmap.Windows1251
	case "cp437":
		cm = charmap.CodePage437
	default:
		return nil
	}
	return func(b []byte) string {
		out, err := cm.NewDecoder().Bytes(b)
		if err != nil {
			return string(b)
		}
		return string(out)
	}
}

func suffixSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func (o Options) fieldOptions() field.Options {
	return field.Options{
		Decoder:    resolveEncoding(o.Encoding),
		DateFields: suffixSet(o.DateFieldNames),
		TimeFields: suffixSet(o.TimeFieldNames),
		Check:      o.Check,
	}
}
