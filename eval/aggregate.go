package eval

import (
	"fmt"

	"github.com/astewartau/biql/catalog"
	"github.com/astewartau/biql/query"
)

// computeAggregate evaluates one explicit aggregate call over a group's
// records (§4.8): COUNT/AVG/MAX/MIN/SUM/ARRAY_AGG, each with optional
// DISTINCT and an optional inner WHERE that filters the group's records
// before the aggregate itself runs.
func computeAggregate(ev *Evaluator, recs []*catalog.FileRecord, a *query.AggregateCall) (query.Value, error) {
	filtered := recs
	if a.Where != nil {
		filtered = make([]*catalog.FileRecord, 0, len(recs))
		for _, rec := range recs {
			ok, err := ev.MatchesWhere(rec, a.Where)
			if err != nil {
				return query.Null(), err
			}
			if ok {
				filtered = append(filtered, rec)
			}
		}
	}

	if a.Func == query.AggCount && a.Star {
		return query.Int(int64(len(filtered))), nil
	}

	values := make([]query.Value, 0, len(filtered))
	for _, rec := range filtered {
		v, err := ev.evalValue(rec, a.Arg)
		if err != nil {
			return query.Null(), err
		}
		values = append(values, v)
	}

	if a.Distinct {
		values = distinctValues(values)
	}

	switch a.Func {
	case query.AggCount:
		n := 0
		for _, v := range values {
			if !v.IsNull() {
				n++
			}
		}
		return query.Int(int64(n)), nil

	case query.AggSum, query.AggAvg:
		sum := 0.0
		n := 0
		for _, v := range values {
			if v.IsNull() {
				continue
			}
			num, ok := v.AsNumber()
			if !ok {
				continue
			}
			sum += num
			n++
		}
		if a.Func == query.AggSum {
			return query.Float(sum), nil
		}
		if n == 0 {
			return query.Null(), nil
		}
		return query.Float(sum / float64(n)), nil

	case query.AggMax, query.AggMin:
		var best query.Value
		have := false
		for _, v := range values {
			if v.IsNull() {
				continue
			}
			if !have {
				best = v
				have = true
				continue
			}
			c := query.Compare(v, best)
			if (a.Func == query.AggMax && c > 0) || (a.Func == query.AggMin && c < 0) {
				best = v
			}
		}
		if !have {
			return query.Null(), nil
		}
		return best, nil

	case query.AggArrayAgg:
		items := make([]query.Value, 0, len(values))
		for _, v := range values {
			// Nulls are preserved in a plain ARRAY_AGG but dropped under
			// DISTINCT (§4.8) — distinctValues collapses all nulls to one,
			// which DISTINCT's own "drop nulls" rule then excludes.
			if a.Distinct && v.IsNull() {
				continue
			}
			items = append(items, v)
		}
		return query.List(items), nil

	default:
		return query.Null(), fmt.Errorf("unhandled aggregate function")
	}
}

func distinctValues(values []query.Value) []query.Value {
	var out []query.Value
	for _, v := range values {
		found := false
		for _, o := range out {
			if query.Equal(o, v) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}
