package catalog

import (
	"testing"

	"github.com/kr/pretty"
	"github.com/pmezard/go-difflib/difflib"
)

// requireDefinitionsEqual renders a unified diff of the two
// definitions' pretty-printed form on mismatch rather than a single
// opaque require.Equal dump.
func requireDefinitionsEqual(t *testing.T, want, got TableDefinition) {
	t.Helper()
	if len(pretty.Diff(want, got)) == 0 {
		return
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(pretty.Sprint(want)),
		B:        difflib.SplitLines(pretty.Sprint(got)),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	t.Fatalf("table definitions differ:\n%s", text)
}

func TestGetDefinitionMatchesExpectedSchema(t *testing.T) {
	var body []byte
	body = appendU16(body, 1) // min_version_driver
	body = appendU16(body, 4) // record_size
	body = appendU16(body, 1) // field_count
	body = appendU16(body, 0) // memo_count
	body = appendU16(body, 0) // index_count
	body = append(body, buildField(Long, 0, "ID", 0, 4, 1)...)

	tbl := newTable(9)
	tbl.portions[0] = body

	got, err := tbl.GetDefinition()
	if err != nil {
		t.Fatal(err)
	}

	want := TableDefinition{
		MinVersionDriver: 1,
		RecordSize:       4,
		Fields: []FieldDescriptor{
			{Type: Long, Offset: 0, Name: "ID", Size: 4, Number: 1},
		},
	}
	requireDefinitionsEqual(t, want, got)
}
