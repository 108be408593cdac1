package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astewartau/biql/catalog"
	"github.com/astewartau/biql/query"
)

func recsForAggregates() []*catalog.FileRecord {
	return []*catalog.FileRecord{
		rec(map[string]string{"sub": "01", "task": "rest"}, "bold", "func", map[string]query.Value{"RepetitionTime": query.Float(2.0)}),
		rec(map[string]string{"sub": "01", "task": "nback"}, "bold", "func", map[string]query.Value{"RepetitionTime": query.Float(2.0)}),
		rec(map[string]string{"sub": "01", "task": "rest"}, "bold", "func", map[string]query.Value{"RepetitionTime": query.Float(3.0)}),
		rec(map[string]string{"sub": "01", "task": "stroop"}, "bold", "func", nil),
	}
}

func TestComputeAggregateCountStar(t *testing.T) {
	ev := NewEvaluator()
	v, err := computeAggregate(ev, recsForAggregates(), &query.AggregateCall{Func: query.AggCount, Star: true})
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.Int())
}

func TestComputeAggregateCountDistinct(t *testing.T) {
	ev := NewEvaluator()
	agg := &query.AggregateCall{
		Func:     query.AggCount,
		Distinct: true,
		Arg:      &query.Ident{Parts: []string{"task"}},
	}
	v, err := computeAggregate(ev, recsForAggregates(), agg)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Int()) // rest, nback, stroop
}

func TestComputeAggregateSumAvg(t *testing.T) {
	ev := NewEvaluator()
	sumAgg := &query.AggregateCall{Func: query.AggSum, Arg: &query.Ident{Parts: []string{"metadata", "RepetitionTime"}}}
	v, err := computeAggregate(ev, recsForAggregates(), sumAgg)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v.Float())

	avgAgg := &query.AggregateCall{Func: query.AggAvg, Arg: &query.Ident{Parts: []string{"metadata", "RepetitionTime"}}}
	v, err = computeAggregate(ev, recsForAggregates(), avgAgg)
	require.NoError(t, err)
	// 3 of 4 records carry RepetitionTime: (2+2+3)/3
	assert.InDelta(t, 7.0/3.0, v.Float(), 0.0001)
}

func TestComputeAggregateMaxMin(t *testing.T) {
	ev := NewEvaluator()
	maxAgg := &query.AggregateCall{Func: query.AggMax, Arg: &query.Ident{Parts: []string{"metadata", "RepetitionTime"}}}
	v, err := computeAggregate(ev, recsForAggregates(), maxAgg)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.Float())

	minAgg := &query.AggregateCall{Func: query.AggMin, Arg: &query.Ident{Parts: []string{"metadata", "RepetitionTime"}}}
	v, err = computeAggregate(ev, recsForAggregates(), minAgg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.Float())
}

func TestComputeAggregateArrayAggDistinct(t *testing.T) {
	ev := NewEvaluator()
	agg := &query.AggregateCall{
		Func:     query.AggArrayAgg,
		Distinct: true,
		Arg:      &query.Ident{Parts: []string{"task"}},
	}
	v, err := computeAggregate(ev, recsForAggregates(), agg)
	require.NoError(t, err)
	assert.Len(t, v.ListItems(), 3)
}

func TestComputeAggregateWithInnerWhere(t *testing.T) {
	ev := NewEvaluator()
	where, err := query.Parse("task=rest")
	require.NoError(t, err)
	agg := &query.AggregateCall{Func: query.AggCount, Star: true, Where: where.Where}
	v, err := computeAggregate(ev, recsForAggregates(), agg)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Int())
}

func TestComputeAggregateArrayAggDistinctDropsNulls(t *testing.T) {
	ev := NewEvaluator()
	recs := []*catalog.FileRecord{
		rec(map[string]string{"sub": "01", "task": "rest"}, "bold", "func", nil),
		rec(map[string]string{"sub": "01", "task": "nback"}, "bold", "func", nil),
		rec(map[string]string{"sub": "01"}, "bold", "func", nil), // no task entity -> null
	}
	agg := &query.AggregateCall{
		Func:     query.AggArrayAgg,
		Distinct: true,
		Arg:      &query.Ident{Parts: []string{"task"}},
	}
	v, err := computeAggregate(ev, recs, agg)
	require.NoError(t, err)
	items := v.ListItems()
	require.Len(t, items, 2)
	for _, item := range items {
		assert.False(t, item.IsNull())
	}
}

func TestComputeAggregateAllNullSumIsZero(t *testing.T) {
	ev := NewEvaluator()
	recs := []*catalog.FileRecord{rec(map[string]string{"sub": "01"}, "bold", "func", nil)}
	sumAgg := &query.AggregateCall{Func: query.AggSum, Arg: &query.Ident{Parts: []string{"metadata", "RepetitionTime"}}}
	v, err := computeAggregate(ev, recs, sumAgg)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.Float())

	avgAgg := &query.AggregateCall{Func: query.AggAvg, Arg: &query.Ident{Parts: []string{"metadata", "RepetitionTime"}}}
	v, err = computeAggregate(ev, recs, avgAgg)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
