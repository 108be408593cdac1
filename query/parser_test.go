package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBarePredicateDesugarsToSelectStar(t *testing.T) {
	q, err := Parse("task=rest AND datatype=func")
	require.NoError(t, err)
	require.Len(t, q.Projection, 1)
	assert.True(t, q.Projection[0].Star)
	require.NotNil(t, q.Where)
	_, ok := q.Where.(*Logical)
	assert.True(t, ok)
}

func TestParseSelectProjectionWithAliasAndEntities(t *testing.T) {
	q, err := Parse("SELECT sub, task, metadata.RepetitionTime AS tr WHERE datatype=func")
	require.NoError(t, err)
	require.Len(t, q.Projection, 3)
	assert.Equal(t, "tr", q.Projection[2].Alias)
	ident, ok := q.Projection[2].Expr.(*Ident)
	require.True(t, ok)
	assert.Equal(t, []string{"metadata", "RepetitionTime"}, ident.Parts)
}

func TestParseDistinct(t *testing.T) {
	q, err := Parse("SELECT DISTINCT task WHERE datatype=func")
	require.NoError(t, err)
	assert.True(t, q.Distinct)
}

func TestParseGroupByHavingOrderBy(t *testing.T) {
	q, err := Parse("SELECT sub, COUNT(*) AS n WHERE datatype=func GROUP BY sub HAVING COUNT(*) > 1 ORDER BY n DESC")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub"}, q.GroupBy)
	require.Len(t, q.OrderBy, 1)
	assert.Equal(t, "n", q.OrderBy[0].Name)
	assert.True(t, q.OrderBy[0].Desc)

	cmp, ok := q.Having.(*Comparison)
	require.True(t, ok, "expected HAVING to parse as a Comparison, got %T", q.Having)
	agg, ok := cmp.Left.(*AggregateCall)
	require.True(t, ok, "expected HAVING's left operand to be a direct aggregate call")
	assert.Equal(t, AggCount, agg.Func)
	assert.True(t, agg.Star)
	assert.Equal(t, OpGt, cmp.Op)
}

func TestParseAggregateWithDistinctAndInnerWhere(t *testing.T) {
	q, err := Parse("SELECT sub, ARRAY_AGG(DISTINCT task WHERE task != rest) AS tasks GROUP BY sub")
	require.NoError(t, err)
	agg := q.Projection[1].Aggregate
	require.NotNil(t, agg)
	assert.Equal(t, AggArrayAgg, agg.Func)
	assert.True(t, agg.Distinct)
	require.NotNil(t, agg.Where)
}

func TestParseCountDistinctStarRejected(t *testing.T) {
	_, err := Parse("SELECT COUNT(DISTINCT *) WHERE datatype=func")
	require.Error(t, err)
	var synErr *SyntaxError
	assert.ErrorAs(t, err, &synErr)
}

func TestParseComparisonOperators(t *testing.T) {
	tests := []struct {
		src string
		op  CompareOp
	}{
		{"sub=01", OpEq},
		{"sub==01", OpEq},
		{"sub!=01", OpNeq},
		{"run<5", OpLt},
		{"run<=5", OpLte},
		{"run>5", OpGt},
		{"run>=5", OpGte},
	}
	for _, tt := range tests {
		q, err := Parse(tt.src)
		require.NoError(t, err, tt.src)
		cmp, ok := q.Where.(*Comparison)
		require.True(t, ok, tt.src)
		assert.Equal(t, tt.op, cmp.Op, tt.src)
	}
}

func TestParseNullComparison(t *testing.T) {
	q, err := Parse("metadata.EchoTime = NULL")
	require.NoError(t, err)
	_, ok := q.Where.(*NullCheck)
	assert.True(t, ok)

	q, err = Parse("metadata.EchoTime != NULL")
	require.NoError(t, err)
	logical, ok := q.Where.(*Logical)
	require.True(t, ok)
	assert.Equal(t, OpNot, logical.Op)
	_, ok = logical.Left.(*NullCheck)
	assert.True(t, ok)
}

func TestParseNullWithOtherOperatorRejected(t *testing.T) {
	_, err := Parse("run < NULL")
	require.Error(t, err)
}

func TestParseInExpr(t *testing.T) {
	q, err := Parse("task IN [rest, nback, stroop]")
	require.NoError(t, err)
	in, ok := q.Where.(*InExpr)
	require.True(t, ok)
	assert.Len(t, in.List.Items, 3)
}

func TestParseLikeExpr(t *testing.T) {
	q, err := Parse(`filename LIKE "%bold%"`)
	require.NoError(t, err)
	like, ok := q.Where.(*LikeExpr)
	require.True(t, ok)
	assert.Equal(t, "%bold%", like.Pattern)
}

func TestParseRangeLiteral(t *testing.T) {
	q, err := Parse("run = [1:5]")
	require.NoError(t, err)
	cmp, ok := q.Where.(*Comparison)
	require.True(t, ok)
	rng, ok := cmp.Right.(*RangeLiteral)
	require.True(t, ok)
	assert.Equal(t, 1.0, rng.Low)
	assert.Equal(t, 5.0, rng.High)
}

func TestParseExistenceProbe(t *testing.T) {
	q, err := Parse("metadata.SliceTiming")
	require.NoError(t, err)
	probe, ok := q.Where.(*ExistenceProbe)
	require.True(t, ok)
	assert.Equal(t, []string{"metadata", "SliceTiming"}, probe.Ident.Parts)
}

func TestParseImplicitAndAdjacency(t *testing.T) {
	q, err := Parse("sub=01 task=rest")
	require.NoError(t, err)
	logical, ok := q.Where.(*Logical)
	require.True(t, ok)
	assert.Equal(t, OpAnd, logical.Op)
}

func TestParseNotAndParens(t *testing.T) {
	q, err := Parse("NOT (task=rest OR task=nback)")
	require.NoError(t, err)
	logical, ok := q.Where.(*Logical)
	require.True(t, ok)
	assert.Equal(t, OpNot, logical.Op)
	inner, ok := logical.Left.(*Logical)
	require.True(t, ok)
	assert.Equal(t, OpOr, inner.Op)
}

func TestParseFormatClause(t *testing.T) {
	q, err := Parse("SELECT * WHERE sub=01 FORMAT csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", q.Format)
}

func TestParseTrailingGarbageErrors(t *testing.T) {
	_, err := Parse("sub=01 )")
	require.Error(t, err)
}

func TestParseRegexComparison(t *testing.T) {
	q, err := Parse("task ~= /^n.*/")
	require.NoError(t, err)
	cmp, ok := q.Where.(*Comparison)
	require.True(t, ok)
	assert.Equal(t, OpRegex, cmp.Op)
	_, ok = cmp.Right.(*RegexLiteral)
	assert.True(t, ok)
}
