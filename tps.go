// Package tpsread opens TopSpeed (TPS) database files and iterates
// their records. It orchestrates, in order, a byte source, an
// optional block cipher, the fixed header, the page tree, per-page
// decompression and delta-splitting, record tagging, the table
// catalog, and field materialization.
package tpsread

import (
	"io"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/galler-alexander/tpsread/internal/bytesource"
	"github.com/galler-alexander/tpsread/internal/cache"
	"github.com/galler-alexander/tpsread/internal/catalog"
	"github.com/galler-alexander/tpsread/internal/crypt"
	"github.com/galler-alexander/tpsread/internal/errs"
	"github.com/galler-alexander/tpsread/internal/field"
	"github.com/galler-alexander/tpsread/internal/header"
	"github.com/galler-alexander/tpsread/internal/metrics"
	"github.com/galler-alexander/tpsread/internal/page"
	"github.com/galler-alexander/tpsread/internal/record"
	"github.com/galler-alexander/tpsread/internal/recordsplit"
	"github.com/galler-alexander/tpsread/internal/rle"
)

// File is an open handle on one TPS file.
type File struct {
	opts    Options
	log     *slog.Logger
	session uuid.UUID

	dec     *crypt.Decryptor
	hdr     header.Header
	pages   *page.Index
	cat     *catalog.Catalog
	cache   *cache.Cache
	metrics *metrics.Stats

	warnings []errs.Warning

	currentTable uint32
	haveTable    bool
}

// Open decodes a TPS file's header, page tree, and table catalog.
// Iteration itself stays lazy; Open does the eager, one-time
// structural work every later operation depends on.
func Open(opts Options) (*File, error) {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sessionID := uuid.New()
	log = log.With("session", sessionID.String(), "file", opts.Filename)

	src, err := bytesource.Open(opts.Filename)
	if err != nil {
		return nil, err
	}

	dec := crypt.New(src, opts.Password)

	hdr, err := header.Parse(dec, opts.Filename)
	if err != nil {
		dec.Close()
		return nil, err
	}

	pages, pageWarnings, err := page.Build(dec, hdr, opts.Check)
	if err != nil {
		dec.Close()
		return nil, errs.Wrapf(err, "building page index")
	}

	encoding := record.Decoder(opts.fieldOptions().Decoder)
	cat, catWarnings, err := catalog.Build(dec, pages, hdr.Size, encoding, opts.Check)
	if err != nil {
		dec.Close()
		return nil, errs.Wrapf(err, "building table catalog")
	}

	f := &File{
		opts:    opts,
		log:     log,
		session: sessionID,
		dec:     dec,
		hdr:     hdr,
		pages:   pages,
		cat:     cat,
		metrics: metrics.New(),
	}
	f.warnings = append(f.warnings, pageWarnings...)
	f.warnings = append(f.warnings, catWarnings...)

	if opts.Check && dec.Size()%64 != 0 {
		f.warnings = append(f.warnings, errs.Warnf("ByteSource", "file size %d is not a multiple of 64", dec.Size()))
	}
	if opts.Cached {
		f.cache = cache.New(log)
	}

	log.Info("opened", "tables", cat.Len(), "warnings", len(f.warnings))

	if opts.CurrentTableName != "" {
		if err := f.SetCurrentTable(opts.CurrentTableName); err != nil {
			dec.Close()
			return nil, err
		}
	}

	return f, nil
}

// Close releases the underlying byte source.
func (f *File) Close() error {
	return f.dec.Close()
}

// Warnings returns the non-fatal anomalies accumulated since Open:
// integrity-check findings when Options.Check is set, plus the field
// materialization warnings (skipped fields, malformed decimals) that
// iteration records whether or not Check is set.
func (f *File) Warnings() []errs.Warning {
	return f.warnings
}

// SetCurrentTable selects name as the iteration target.
func (f *File) SetCurrentTable(name string) error {
	number, ok := f.cat.GetNumber(name)
	if !ok {
		return errs.Newf("table %q: not found", name)
	}
	f.currentTable = number
	f.haveTable = true
	return nil
}

// Tables returns the table names discovered in the catalog.
func (f *File) Tables() []string {
	return f.cat.Names()
}

// GetDefinition returns the parsed schema for a table by number.
func (f *File) GetDefinition(number uint32) (catalog.TableDefinition, error) {
	return f.cat.GetDefinition(number)
}

// All iterates the currently selected table's records in page-index
// order, yielding {field_name: value} maps. Iteration stops at the
// first error; a range-over-func consumer observes it as the second
// yielded value with a nil map.
func (f *File) All() iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		if !f.haveTable {
			yield(nil, errs.Newf("no current table selected"))
			return
		}

		def, err := f.cat.GetDefinition(f.currentTable)
		if err != nil {
			yield(nil, err)
			return
		}
		fopts := f.opts.fieldOptions()

		for _, ref := range f.pages.Leaves() {
			p, ok := f.pages.Get(ref)
			if !ok {
				continue
			}

			body, cached := f.lookupCache(ref)
			if !cached {
				start := time.Now()
				raw, err := p.Body(f.dec, f.hdr.Size)
				if err != nil {
					yield(nil, err)
					return
				}
				if int(p.UncompressedSize) > int(p.Size) {
					raw = rle.Decompress(raw)
				}
				body = raw
				f.metrics.ObservePageDecode(time.Since(start))
				f.storeCache(ref, body)
			}

			split := recordsplit.New()
			for _, raw := range split.Split(body) {
				rec, err := record.Parse(raw, record.Decoder(fopts.Decoder))
				if err != nil {
					yield(nil, err)
					return
				}
				if rec.Type != record.Data || rec.TableNumber != f.currentTable {
					continue
				}

				start := time.Now()
				values, warnings, err := field.Materialize(rec.Data, rec.RecordNumber, def, fopts)
				f.metrics.ObserveMaterialize(time.Since(start))
				f.warnings = append(f.warnings, warnings...)
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(values, nil) {
					return
				}
			}
		}
	}
}

func (f *File) lookupCache(ref uint32) ([]byte, bool) {
	if f.cache == nil {
		return nil, false
	}
	return f.cache.Get(ref)
}

func (f *File) storeCache(ref uint32, body []byte) {
	if f.cache == nil {
		return
	}
	f.cache.Put(ref, body)
}
