package query

// Query is the top-level AST node produced by the parser (§4.6). A bare
// predicate (`expr` with no clauses) desugars to SELECT * WHERE expr at
// parse time, so this struct is the only shape the evaluator ever sees.
type Query struct {
	Projection []ProjectionItem
	Distinct   bool
	Where      Expr // nil when absent
	GroupBy    []string
	Having     Expr // nil when absent
	OrderBy    []OrderKey
	Format     string // "" when absent; caller/CLI default applies
}

// ProjectionItem is one SELECT item: either the bare-star wildcard, an
// aggregate call, or a scalar value expression, with an optional alias.
type ProjectionItem struct {
	Star      bool
	Aggregate *AggregateCall
	Expr      Expr // set when neither Star nor Aggregate
	Alias     string
}

// AggFunc enumerates the aggregate functions of §4.6's grammar.
type AggFunc int

const (
	AggCount AggFunc = iota
	AggAvg
	AggMax
	AggMin
	AggSum
	AggArrayAgg
)

// AggregateCall is `func '(' [DISTINCT] arg [WHERE expr] ')'`. Arg is nil
// only for COUNT(*).
type AggregateCall struct {
	Func     AggFunc
	Star     bool // COUNT(*)
	Distinct bool
	Arg      Expr
	Where    Expr // nil when absent
}

// AggregateCall also doubles as an Expr so HAVING can compare an aggregate
// directly (§4.9: `HAVING COUNT(*) > 1`), not only via a SELECT alias. The
// evaluator only resolves it in that HAVING context; as a plain value
// expression elsewhere it is rejected.
func (*AggregateCall) exprNode() {}

// OrderKey is one entry of ORDER BY: a qualified identifier plus direction.
type OrderKey struct {
	Name string
	Desc bool
}

// Expr is the sum type for scalar/boolean expressions. Implementations are
// the node kinds below; the evaluator is a type-switch fold over them
// rather than a class hierarchy with virtual dispatch, per §9's design
// note.
type Expr interface {
	exprNode()
}

// Ident is a bare or qualified identifier used as a value expression or,
// standing alone as a predicate, an existence probe (§4.7).
type Ident struct {
	Parts []string // e.g. ["metadata", "RepetitionTime"] or ["sub"]
}

func (*Ident) exprNode() {}

// Literal wraps a constant scalar: number, string, or NULL.
type Literal struct {
	Value Value
}

func (*Literal) exprNode() {}

// PatternLiteral is a bare wildcard value (`*`, `?`) used on the
// right-hand side of a comparison or alone.
type PatternLiteral struct {
	Pattern string
}

func (*PatternLiteral) exprNode() {}

// RegexLiteral is a `/…/` regex literal or the right operand of `~=`.
type RegexLiteral struct {
	Pattern string
}

func (*RegexLiteral) exprNode() {}

// ListLiteral is `[a, b, …]`, the right operand of IN.
type ListLiteral struct {
	Items []Expr
}

func (*ListLiteral) exprNode() {}

// RangeLiteral is `[a:b]`, the right operand of a bare range comparison.
type RangeLiteral struct {
	Low  float64
	High float64
}

func (*RangeLiteral) exprNode() {}

// CompareOp enumerates the comparison operators of §4.7.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpRegex
)

// Comparison is `value_expr op value`.
type Comparison struct {
	Left  Expr
	Op    CompareOp
	Right Expr
}

func (*Comparison) exprNode() {}

// InExpr is `value_expr IN list`.
type InExpr struct {
	Left Expr
	List *ListLiteral
}

func (*InExpr) exprNode() {}

// LikeExpr is `value_expr LIKE pattern` with SQL wildcards (%, _).
type LikeExpr struct {
	Left    Expr
	Pattern string
}

func (*LikeExpr) exprNode() {}

// NullCheck is `value_expr = NULL` / bare NULL comparisons, true iff Left
// resolves to null/missing.
type NullCheck struct {
	Left Expr
}

func (*NullCheck) exprNode() {}

// ExistenceProbe is a bare qualified identifier used directly as a
// predicate: true iff non-null and non-empty.
type ExistenceProbe struct {
	Ident *Ident
}

func (*ExistenceProbe) exprNode() {}

// LogicalOp enumerates AND/OR/NOT.
type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
	OpNot
)

// Logical is a boolean combinator over one or two sub-expressions (NOT
// uses only Left).
type Logical struct {
	Op    LogicalOp
	Left  Expr
	Right Expr // nil for NOT
}

func (*Logical) exprNode() {}
