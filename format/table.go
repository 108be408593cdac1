package format

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/astewartau/biql/eval"
)

// WriteTable renders the result as an ASCII table — grounded on the
// teacher's FormatQueryResultTable (bigquery/query.go), same
// tablewriter.Header/Append/Render sequence, generalized from a fixed
// BigQuery schema to the RowSet's columns.
func WriteTable(rs *eval.RowSet, w io.Writer) error {
	if len(rs.Rows) == 0 {
		io.WriteString(w, "(no rows)\n")
		return nil
	}

	cols := columns(rs)

	table := tablewriter.NewWriter(w)

	headers := make([]any, len(cols))
	for i, c := range cols {
		headers[i] = c
	}
	table.Header(headers...)

	for _, row := range rs.Rows {
		rowData := make([]any, len(cols))
		for i, c := range cols {
			rowData[i] = row.Get(c).String()
		}
		table.Append(rowData...)
	}

	table.Render()
	return nil
}
