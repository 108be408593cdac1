// Package format renders an eval.RowSet into one of BIQL's output formats
// (§5): json, table, csv, tsv, paths. Each formatter is grounded on the
// teacher's FormatQueryResult* trio (bigquery/query.go), generalized from
// a fixed BigQuery schema to BIQL's per-row column list.
package format

import (
	"fmt"
	"io"

	"github.com/astewartau/biql/eval"
)

// Writer renders a RowSet to w.
type Writer func(rs *eval.RowSet, w io.Writer) error

// Writers maps format names (as accepted by --format/FORMAT) to their
// Writer implementation.
var Writers = map[string]Writer{
	"json":  WriteJSON,
	"table": WriteTable,
	"csv":   WriteCSV,
	"tsv":   WriteTSV,
	"paths": WritePaths,
}

// Lookup resolves a format name, defaulting to "table" when name is empty.
// The CLI always passes a name (its own default is json), so this fallback
// applies only to library callers that pass neither a name nor a FORMAT clause.
func Lookup(name string) (Writer, error) {
	if name == "" {
		name = "table"
	}
	w, ok := Writers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", name)
	}
	return w, nil
}

// columns returns the union of column names across all rows, in
// first-seen order, so formatters cope with rows whose attribute sets
// differ (e.g. grouped star-projections over a heterogeneous dataset).
func columns(rs *eval.RowSet) []string {
	seen := map[string]bool{}
	var out []string
	for _, row := range rs.Rows {
		for _, c := range row.Columns {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
