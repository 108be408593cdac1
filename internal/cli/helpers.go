package cli

import (
	"fmt"
	"io"

	"github.com/astewartau/biql/engine"
	"github.com/astewartau/biql/query"
)

func isSyntaxErr(err error) bool {
	_, ok := err.(*query.SyntaxError)
	return ok
}

// printEntities implements --show-entities: list every distinct entity key
// seen across the dataset (§6), each followed by its distinct non-empty
// values in dataset order.
func printEntities(w io.Writer, eng *engine.Engine) {
	fmt.Fprintln(w, "Entities:")
	for _, name := range eng.Entities() {
		ident := &query.Ident{Parts: []string{name}}
		fmt.Fprintf(w, "  %s:", name)
		rs, err := eng.Evaluate(&query.Query{
			Projection: []query.ProjectionItem{{Expr: ident}},
			Distinct:   true,
			Where:      &query.ExistenceProbe{Ident: ident},
		})
		if err == nil {
			for i, row := range rs.Rows {
				sep := " "
				if i > 0 {
					sep = ", "
				}
				fmt.Fprintf(w, "%s%s", sep, row.Get(name).String())
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// printStats implements --show-stats (§6).
func printStats(w io.Writer, eng *engine.Engine) {
	stats := eng.DatasetStats()
	fmt.Fprintf(w, "\n--- dataset stats ---\n")
	fmt.Fprintf(w, "total files: %d\n", stats.TotalFiles)
	fmt.Fprintf(w, "total subjects: %d\n", stats.TotalSubjects)
	for _, dt := range stats.Datatypes {
		fmt.Fprintf(w, "  %s: %d\n", dt, stats.FilesByDatatype[dt])
	}
}
