package format

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/astewartau/biql/eval"
	"github.com/astewartau/biql/query"
)

// WriteCSV renders the result as CSV with a header row — grounded on the
// teacher's FormatQueryResultCSV (bigquery/query.go), generalized from a
// fixed BigQuery schema to the RowSet's columns.
func WriteCSV(rs *eval.RowSet, w io.Writer) error {
	return writeDelimited(rs, w, ',')
}

// WriteTSV is WriteCSV with a tab delimiter (§5).
func WriteTSV(rs *eval.RowSet, w io.Writer) error {
	return writeDelimited(rs, w, '\t')
}

func writeDelimited(rs *eval.RowSet, w io.Writer, comma rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = comma
	defer writer.Flush()

	cols := columns(rs)
	if err := writer.Write(cols); err != nil {
		return err
	}

	for _, row := range rs.Rows {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = cellString(row.Get(c))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// cellString renders one cell for csv/tsv output: list and map values are
// JSON-encoded (§4.9's "array cells serialized as JSON-encoded strings"),
// everything else uses the value's plain string form.
func cellString(v query.Value) string {
	switch v.Kind() {
	case query.KindList, query.KindMap:
		b, err := json.Marshal(v.ToGo())
		if err != nil {
			return v.String()
		}
		return string(b)
	default:
		return v.String()
	}
}
