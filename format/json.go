package format

import (
	"encoding/json"
	"io"

	"github.com/astewartau/biql/eval"
)

// WriteJSON renders the result as a JSON array of objects, one per row,
// keys in projection order — grounded on the teacher's
// FormatQueryResultJSON (bigquery/query.go), generalized from a fixed
// BigQuery schema to the RowSet's per-row columns.
func WriteJSON(rs *eval.RowSet, w io.Writer) error {
	cols := columns(rs)

	out := make([]*orderedObject, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		obj := &orderedObject{}
		for _, c := range cols {
			if _, ok := row.Values[c]; !ok {
				continue
			}
			obj.set(c, row.Get(c).ToGo())
		}
		out = append(out, obj)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(out)
}

// orderedObject is a JSON object that marshals its keys in insertion
// order instead of map's randomized order, so column order in the
// projection is preserved in the JSON output (§5).
type orderedObject struct {
	keys   []string
	values map[string]any
}

func (o *orderedObject) set(key string, val any) {
	if o.values == nil {
		o.values = map[string]any{}
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = val
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyBytes...)
		buf = append(buf, ':')
		valBytes, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, valBytes...)
	}
	buf = append(buf, '}')
	return buf, nil
}
