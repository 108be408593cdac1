package format

import (
	"fmt"
	"io"

	"github.com/astewartau/biql/eval"
)

// WritePaths renders one filepath per line, bypassing the projection
// entirely (§5): it streams rs.MatchedPaths, the WHERE-matched records'
// paths captured before GROUP BY/SELECT ran, so it still produces output
// for a grouped query or a SELECT list that never projected filepath.
func WritePaths(rs *eval.RowSet, w io.Writer) error {
	for _, p := range rs.MatchedPaths {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}
