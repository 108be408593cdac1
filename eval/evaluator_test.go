package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astewartau/biql/catalog"
	"github.com/astewartau/biql/query"
)

func rec(entities map[string]string, suffix, datatype string, metadata map[string]query.Value) *catalog.FileRecord {
	return &catalog.FileRecord{
		Filename: suffixedName(entities, suffix),
		Entities: entities,
		Suffix:   suffix,
		Datatype: datatype,
		Metadata: metadata,
	}
}

func suffixedName(entities map[string]string, suffix string) string {
	name := ""
	for _, k := range []string{"sub", "ses", "task", "run"} {
		if v, ok := entities[k]; ok {
			name += k + "-" + v + "_"
		}
	}
	return name + suffix + ".nii.gz"
}

func mustParse(t *testing.T, src string) *query.Query {
	t.Helper()
	q, err := query.Parse(src)
	require.NoError(t, err)
	return q
}

func TestMatchesWhereEqualityAndLeadingZero(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"sub": "01", "task": "rest"}, "bold", "func", nil)

	q := mustParse(t, "sub=1")
	ok, err := ev.MatchesWhere(r, q.Where)
	require.NoError(t, err)
	assert.True(t, ok, "entity comparison should tolerate leading zeros")

	q = mustParse(t, "sub=2")
	ok, err = ev.MatchesWhere(r, q.Where)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesWhereAndOrNot(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"sub": "01", "task": "rest"}, "bold", "func", nil)

	ok, err := ev.MatchesWhere(r, mustParse(t, "sub=01 AND task=rest").Where)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.MatchesWhere(r, mustParse(t, "sub=01 AND task=nback").Where)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ev.MatchesWhere(r, mustParse(t, "NOT task=nback").Where)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.MatchesWhere(r, mustParse(t, "task=nback OR datatype=func").Where)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesWhereGlobPattern(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"task": "nback2back"}, "bold", "func", nil)

	ok, err := ev.MatchesWhere(r, mustParse(t, "task=*back*").Where)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.MatchesWhere(r, mustParse(t, "task=rest*").Where)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesWhereRegex(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"task": "nback"}, "bold", "func", nil)

	ok, err := ev.MatchesWhere(r, mustParse(t, "task ~= /^n.*k$/").Where)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesWhereRange(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"run": "3"}, "bold", "func", nil)

	ok, err := ev.MatchesWhere(r, mustParse(t, "run = [1:5]").Where)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.MatchesWhere(r, mustParse(t, "run = [4:5]").Where)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesWhereInList(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"task": "rest"}, "bold", "func", nil)

	ok, err := ev.MatchesWhere(r, mustParse(t, "task IN [rest, nback]").Where)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.MatchesWhere(r, mustParse(t, "task IN [nback, stroop]").Where)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesWhereLike(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"task": "rest"}, "bold", "func", nil)
	r.Filename = "sub-01_task-rest_bold.nii.gz"

	ok, err := ev.MatchesWhere(r, mustParse(t, `filename LIKE "%rest_bold%"`).Where)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesWhereNullChecks(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"task": "rest"}, "bold", "func", map[string]query.Value{
		"RepetitionTime": query.Float(2.0),
	})

	ok, err := ev.MatchesWhere(r, mustParse(t, "metadata.EchoTime = NULL").Where)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.MatchesWhere(r, mustParse(t, "metadata.RepetitionTime != NULL").Where)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesWhereExistenceProbe(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"task": "rest"}, "bold", "func", map[string]query.Value{
		"SliceTiming": query.List([]query.Value{query.Float(0), query.Float(0.1)}),
	})

	ok, err := ev.MatchesWhere(r, mustParse(t, "metadata.SliceTiming").Where)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.MatchesWhere(r, mustParse(t, "metadata.EchoTime").Where)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAggregateCallOutsideGroupContextErrors(t *testing.T) {
	ev := NewEvaluator()
	r := rec(map[string]string{"task": "rest"}, "bold", "func", nil)
	agg := &query.AggregateCall{Func: query.AggCount, Star: true}
	_, err := ev.evalValue(r, agg)
	require.Error(t, err)
}
