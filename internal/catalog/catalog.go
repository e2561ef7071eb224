// Package catalog reassembles per-table names, schemas and statistics
// by scanning leaf pages: component H. It also owns TableDefinition
// parsing (the reassembled portions of TABLE_DEFINITION records).
package catalog

import (
	"sort"

	"github.com/cockroachdb/swiss"

	"github.com/galler-alexander/tpsread/internal/crypt"
	"github.com/galler-alexander/tpsread/internal/errs"
	"github.com/galler-alexander/tpsread/internal/page"
	"github.com/galler-alexander/tpsread/internal/record"
	"github.com/galler-alexander/tpsread/internal/recordsplit"
	"github.com/galler-alexander/tpsread/internal/rle"
)

// MetadataRecord is one METADATA record's statistics payload, keyed by
// its metadata_type in Table.Statistics.
type MetadataRecord struct {
	RecordCount uint32
	LastAccess  uint32
}

// Table accumulates what the scan has learned about one table_number.
type Table struct {
	Number   uint32
	Name     string
	hasName  bool
	portions map[uint16][]byte
	stats    map[uint8]MetadataRecord

	definition   TableDefinition
	definitionOK bool
}

func newTable(number uint32) *Table {
	return &Table{
		Number:   number,
		portions: make(map[uint16][]byte),
		stats:    make(map[uint8]MetadataRecord),
	}
}

// Complete reports whether the table has a name and at least one
// definition portion — the point at which catalog scanning may stop
// early for this table.
func (t *Table) Complete() bool {
	return t.hasName && len(t.portions) > 0
}

// Statistics returns the accumulated METADATA records, keyed by
// metadata_type.
func (t *Table) Statistics() map[uint8]MetadataRecord {
	return t.stats
}

// GetDefinition concatenates the table's definition portions in
// ascending portion_number order and parses the result.
func (t *Table) GetDefinition() (TableDefinition, error) {
	if t.definitionOK {
		return t.definition, nil
	}
	if len(t.portions) == 0 {
		return TableDefinition{}, errs.Newf("table %d: no TABLE_DEFINITION portions available", t.Number)
	}

	keys := make([]uint16, 0, len(t.portions))
	for k := range t.portions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var all []byte
	for _, k := range keys {
		all = append(all, t.portions[k]...)
	}

	def, err := ParseDefinition(all)
	if err != nil {
		return TableDefinition{}, errs.Wrapf(err, "table %d", t.Number)
	}
	t.definition = def
	t.definitionOK = true
	return def, nil
}

// Catalog is the table_number → *Table map built by Build.
type Catalog struct {
	tables *swiss.Map[uint32, *Table]
}

// Build scans leaf pages in reverse page-walk order, as returned by
// page.Index.LeavesReverse (table metadata is conventionally near the
// end of the file), accumulating TABLE_NAME,
// TABLE_DEFINITION and METADATA records. The scan stops early once
// every table it has seen is Complete.
func Build(dec *crypt.Decryptor, idx *page.Index, headerSize uint16, encoding record.Decoder, check bool) (*Catalog, []errs.Warning, error) {
	cat := &Catalog{tables: swiss.New[uint32, *Table](16)}
	var warnings []errs.Warning

	for _, ref := range idx.LeavesReverse() {
		p, ok := idx.Get(ref)
		if !ok {
			continue
		}
		body, err := p.Body(dec, headerSize)
		if err != nil {
			return nil, warnings, errs.Wrapf(err, "leaf page ref %d", ref)
		}
		if int(p.UncompressedSize) > int(p.Size) {
			body = rle.Decompress(body)
			if check && len(body)+pageHeaderSize != int(p.UncompressedSize) {
				warnings = append(warnings, errs.Warnf("PageDecompressor",
					"page ref %d: decompressed size %d does not match uncompressed_size %d", ref, len(body)+pageHeaderSize, p.UncompressedSize))
			}
		}

		split := recordsplit.New()
		for _, raw := range split.Split(body) {
			rec, err := record.Parse(raw, encoding)
			if err != nil {
				return nil, warnings, errs.Wrapf(err, "leaf page ref %d", ref)
			}
			if rec.Type == record.Null {
				continue
			}

			t, ok := cat.tables.Get(rec.TableNumber)
			if !ok {
				t = newTable(rec.TableNumber)
				cat.tables.Put(rec.TableNumber, t)
			}

			switch rec.Type {
			case record.TableName:
				t.Name = rec.Name
				t.hasName = true
			case record.TableDefinition:
				portion, body, err := splitPortion(rec)
				if err != nil {
					return nil, warnings, err
				}
				t.portions[portion] = body
			case record.Metadata:
				t.stats[rec.MetadataType] = MetadataRecord{
					RecordCount: rec.MetadataRecordCount,
					LastAccess:  rec.MetadataLastAccess,
				}
			}
		}

		if cat.allComplete() {
			break
		}
	}

	return cat, warnings, nil
}

func (c *Catalog) allComplete() bool {
	if c.tables.Len() == 0 {
		return false
	}
	complete := true
	c.tables.All(func(_ uint32, t *Table) bool {
		if !t.Complete() {
			complete = false
			return false
		}
		return true
	})
	return complete
}

// GetDefinition returns the parsed TableDefinition for a table number.
func (c *Catalog) GetDefinition(number uint32) (TableDefinition, error) {
	t, ok := c.tables.Get(number)
	if !ok {
		return TableDefinition{}, errs.Newf("table %d: not found in catalog", number)
	}
	return t.GetDefinition()
}

// GetNumber returns the first table number whose decoded name equals
// name.
func (c *Catalog) GetNumber(name string) (uint32, bool) {
	var number uint32
	var found bool
	c.tables.All(func(n uint32, t *Table) bool {
		if t.Name == name {
			number, found = n, true
			return false
		}
		return true
	})
	return number, found
}

// Table returns the accumulated Table for number, if known.
func (c *Catalog) Table(number uint32) (*Table, bool) {
	return c.tables.Get(number)
}

// Names returns the decoded name of every table discovered in the
// catalog.
func (c *Catalog) Names() []string {
	out := make([]string, 0, c.tables.Len())
	c.tables.All(func(_ uint32, t *Table) bool {
		if t.hasName {
			out = append(out, t.Name)
		}
		return true
	})
	return out
}

// Len returns the number of tables discovered in the catalog.
func (c *Catalog) Len() int {
	return c.tables.Len()
}

// pageHeaderSize mirrors page.headerLen, which the page package does
// not export; both must track the format's fixed page header layout.
const pageHeaderSize = 13
