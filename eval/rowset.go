package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/astewartau/biql/catalog"
	"github.com/astewartau/biql/query"
)

// starFixedColumns is the fixed attribute set a bare `*` projection expands to
// (§4.6's SELECT *): the file's identity and entity attributes, not its
// full metadata/participants bag, which must be projected explicitly.
var starFixedColumns = []string{"filepath", "relative_path", "filename", "suffix", "extension", "datatype"}

// Row is one result row: an ordered column list plus the resolved values,
// the shape every format.Writer consumes (§5). rec is carried alongside a
// flat (non-grouped) row purely so ORDER BY can reference a bare entity
// that was never selected (§4.9: order keys "may reference projected
// aliases, bare entities, or aggregates already present in the
// projection" — only the aggregate case is required to already be a
// column). It plays no part in what gets rendered.
type Row struct {
	Columns []string
	Values  map[string]query.Value
	rec     *catalog.FileRecord
}

func newRow() Row {
	return Row{Values: map[string]query.Value{}}
}

func (r *Row) set(name string, v query.Value) {
	if _, exists := r.Values[name]; !exists {
		r.Columns = append(r.Columns, name)
	}
	r.Values[name] = v
}

func (r Row) Get(name string) query.Value {
	if v, ok := r.Values[name]; ok {
		return v
	}
	if r.rec != nil {
		return r.rec.Resolve(strings.Split(name, "."))
	}
	return query.Null()
}

// RowSet is the full, ordered result of evaluating a query.
type RowSet struct {
	Rows []Row

	// MatchedPaths are the WHERE-matched records' filepaths, pre-grouping
	// and pre-projection (§4.9/§9): the paths formatter streams these
	// directly instead of reading a "filepath" column, so it still
	// produces output for a GROUP BY query or a SELECT list that never
	// projected filepath.
	MatchedPaths []string
}

// Run evaluates q against idx: filter, project (flat or grouped), filter
// by HAVING, apply DISTINCT, then sort (§4.7-§4.9).
func Run(q *query.Query, idx *catalog.Index) (*RowSet, error) {
	ev := NewEvaluator()

	matched := make([]*catalog.FileRecord, 0, len(idx.Records))
	for _, rec := range idx.Records {
		ok, err := ev.MatchesWhere(rec, q.Where)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, rec)
		}
	}

	hasAgg := false
	for _, item := range q.Projection {
		if item.Aggregate != nil {
			hasAgg = true
		}
	}

	var rows []Row
	var rowGroups []*group
	var err error
	if len(q.GroupBy) == 0 && !hasAgg {
		rows, err = projectFlat(ev, matched, q.Projection)
	} else {
		rows, rowGroups, err = projectGrouped(ev, matched, q)
	}
	if err != nil {
		return nil, err
	}

	if q.Having != nil {
		filtered := rows[:0]
		for i, row := range rows {
			var g *group
			if i < len(rowGroups) {
				g = rowGroups[i]
			}
			ok, err := ev.MatchesWhere(rowRecord{row: row, group: g}, q.Having)
			if err != nil {
				return nil, err
			}
			if ok {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if q.Distinct {
		rows = dedupe(rows)
	}

	sortRows(rows, q.OrderBy)

	paths := make([]string, len(matched))
	for i, rec := range matched {
		paths[i] = rec.Filepath
	}

	return &RowSet{Rows: rows, MatchedPaths: paths}, nil
}

// rowRecord adapts an already-computed Row to the record interface so
// HAVING (and, in principle, any expression) can be evaluated against
// projected/aggregated columns rather than raw FileRecord fields (§4.9:
// HAVING filters on the SELECT list's aliases).
type rowRecord struct {
	row   Row
	group *group // nil when the query has no GROUP BY/aggregate
}

func (r rowRecord) Resolve(parts []string) query.Value {
	if len(parts) != 1 {
		return query.Null()
	}
	return r.row.Get(parts[0])
}

func (r rowRecord) IsEntityLike(parts []string) bool { return false }

// GroupRecords implements aggregateRecordSource so HAVING can evaluate an
// aggregate call directly (`HAVING COUNT(*) > 1`), not only via alias.
func (r rowRecord) GroupRecords() []*catalog.FileRecord {
	if r.group == nil {
		return nil
	}
	return r.group.records
}

func populateStarColumns(ev *Evaluator, row *Row, rec *catalog.FileRecord) {
	for _, name := range starFixedColumns {
		row.set(name, rec.Resolve([]string{name}))
	}
	keys := make([]string, 0, len(rec.Entities))
	for k := range rec.Entities {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		row.set(k, rec.Resolve([]string{k}))
	}
}

func columnName(item query.ProjectionItem) string {
	if item.Alias != "" {
		return item.Alias
	}
	if item.Aggregate != nil {
		return aggDefaultName(item.Aggregate)
	}
	if id, ok := item.Expr.(*query.Ident); ok {
		return strings.Join(id.Parts, ".")
	}
	return "value"
}

func aggDefaultName(a *query.AggregateCall) string {
	fn := aggFuncName(a.Func)
	if a.Star {
		return strings.ToLower(fn)
	}
	if id, ok := a.Arg.(*query.Ident); ok {
		return strings.ToLower(fn) + "_" + strings.Join(id.Parts, "_")
	}
	return strings.ToLower(fn)
}

func aggFuncName(f query.AggFunc) string {
	switch f {
	case query.AggCount:
		return "count"
	case query.AggAvg:
		return "avg"
	case query.AggMax:
		return "max"
	case query.AggMin:
		return "min"
	case query.AggSum:
		return "sum"
	case query.AggArrayAgg:
		return "array_agg"
	default:
		return "agg"
	}
}

func projectFlat(ev *Evaluator, recs []*catalog.FileRecord, items []query.ProjectionItem) ([]Row, error) {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		row := newRow()
		row.rec = rec
		for _, item := range items {
			if item.Star {
				populateStarColumns(ev, &row, rec)
				continue
			}
			if item.Aggregate != nil {
				return nil, fmt.Errorf("aggregate functions require GROUP BY or apply to the whole result set")
			}
			v, err := ev.evalValue(rec, item.Expr)
			if err != nil {
				return nil, err
			}
			row.set(columnName(item), v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// group is one GROUP BY partition: the tuple of key values identifying it
// (kept as values for output; partition keys its map by their stringified
// form) and the records that fall into it.
type group struct {
	keyValues []query.Value
	records   []*catalog.FileRecord
}

func projectGrouped(ev *Evaluator, recs []*catalog.FileRecord, q *query.Query) ([]Row, []*group, error) {
	groups, order, err := partition(ev, recs, q.GroupBy)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]Row, 0, len(order))
	rowGroups := make([]*group, 0, len(order))
	for _, key := range order {
		g := groups[key]
		rowGroups = append(rowGroups, g)
		row := newRow()

		for i, name := range q.GroupBy {
			row.set(name, g.keyValues[i])
		}

		for _, item := range q.Projection {
			if item.Star {
				if err := populateAutoAggregatedStar(ev, &row, g); err != nil {
					return nil, nil, err
				}
				continue
			}
			name := columnName(item)
			if _, already := row.Values[name]; already {
				continue
			}
			if item.Aggregate != nil {
				v, err := computeAggregate(ev, g.records, item.Aggregate)
				if err != nil {
					return nil, nil, err
				}
				row.set(name, v)
				continue
			}
			v, err := autoAggregate(ev, g.records, item.Expr)
			if err != nil {
				return nil, nil, err
			}
			row.set(name, v)
		}

		rows = append(rows, row)
	}
	return rows, rowGroups, nil
}

func partition(ev *Evaluator, recs []*catalog.FileRecord, groupBy []string) (map[string]*group, []string, error) {
	groups := map[string]*group{}
	var order []string

	for _, rec := range recs {
		keyValues := make([]query.Value, len(groupBy))
		keyParts := make([]string, len(groupBy))
		for i, name := range groupBy {
			v := rec.Resolve([]string{name})
			keyValues[i] = v
			keyParts[i] = v.String()
		}
		key := strings.Join(keyParts, "\x1f")

		g, ok := groups[key]
		if !ok {
			g = &group{keyValues: keyValues}
			groups[key] = g
			order = append(order, key)
		}
		g.records = append(g.records, rec)
	}
	return groups, order, nil
}

// autoAggregate implements §4.8's default aggregation for a non-aggregate
// projection expression inside a grouped query: distinct values across the
// group collapse to a scalar, multiple distinct values become an ordered
// list (first-occurrence order), and an all-null group collapses to null.
func autoAggregate(ev *Evaluator, recs []*catalog.FileRecord, expr query.Expr) (query.Value, error) {
	var distinct []query.Value
	allNull := true
	for _, rec := range recs {
		v, err := ev.evalValue(rec, expr)
		if err != nil {
			return query.Null(), err
		}
		if !v.IsNull() {
			allNull = false
		}
		found := false
		for _, d := range distinct {
			if query.Equal(d, v) {
				found = true
				break
			}
		}
		if !found {
			distinct = append(distinct, v)
		}
	}
	if allNull {
		return query.Null(), nil
	}
	nonNull := distinct[:0]
	for _, v := range distinct {
		if !v.IsNull() {
			nonNull = append(nonNull, v)
		}
	}
	if len(nonNull) == 1 {
		return nonNull[0], nil
	}
	return query.List(nonNull), nil
}

func populateAutoAggregatedStar(ev *Evaluator, row *Row, g *group) error {
	if len(g.records) == 0 {
		return nil
	}
	cols := map[string]bool{}
	for _, name := range starFixedColumns {
		cols[name] = true
	}
	for _, rec := range g.records {
		for k := range rec.Entities {
			cols[k] = true
		}
	}
	names := make([]string, 0, len(cols))
	for k := range cols {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, already := row.Values[name]; already {
			continue
		}
		v, err := autoAggregate(ev, g.records, &query.Ident{Parts: []string{name}})
		if err != nil {
			return err
		}
		row.set(name, v)
	}
	return nil
}

func dedupe(rows []Row) []Row {
	seen := map[string]bool{}
	out := rows[:0]
	for _, row := range rows {
		parts := make([]string, len(row.Columns))
		for i, c := range row.Columns {
			parts[i] = row.Get(c).String()
		}
		key := strings.Join(parts, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

func sortRows(rows []Row, orderBy []query.OrderKey) {
	if len(orderBy) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range orderBy {
			a := rows[i].Get(key.Name)
			b := rows[j].Get(key.Name)

			// Null ordering (§4.9): nulls sort last in ASC, first in DESC.
			if a.IsNull() || b.IsNull() {
				if a.IsNull() && b.IsNull() {
					continue
				}
				if key.Desc {
					return a.IsNull()
				}
				return b.IsNull()
			}

			c := query.Compare(a, b)
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
