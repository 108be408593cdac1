package query

// TokenKind enumerates every lexical category BIQL recognizes (§4.5).
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokQualifiedIdent // dotted, e.g. metadata.RepetitionTime
	TokNumber
	TokString
	TokRegex
	TokPattern // unquoted value containing * or ?

	// Keywords
	TokSelect
	TokDistinct
	TokFrom
	TokWhere
	TokGroup
	TokBy
	TokHaving
	TokOrder
	TokAsc
	TokDesc
	TokAs
	TokAnd
	TokOr
	TokNot
	TokIn
	TokLike
	TokNull
	TokFormat

	// Aggregate function names
	TokCount
	TokAvg
	TokMax
	TokMin
	TokSum
	TokArrayAgg

	// Operators
	TokEq     // =
	TokEqEq   // ==
	TokNeq    // !=
	TokLt     // <
	TokLte    // <=
	TokGt     // >
	TokGte    // >=
	TokRegexOp // ~=

	// Punctuation
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokComma
	TokColon
	TokStar
	TokQuestion
)

// keywords maps a lower-cased keyword string to its token kind. Populated
// in init(), the same table shape the pack's SQL-lexer reference
// (other_examples machparse token/keywords.go) uses for case-insensitive
// keyword recognition.
var keywords map[string]TokenKind

func init() {
	keywords = map[string]TokenKind{
		"select":    TokSelect,
		"distinct":  TokDistinct,
		"from":      TokFrom,
		"where":     TokWhere,
		"group":     TokGroup,
		"by":        TokBy,
		"having":    TokHaving,
		"order":     TokOrder,
		"asc":       TokAsc,
		"desc":      TokDesc,
		"as":        TokAs,
		"and":       TokAnd,
		"or":        TokOr,
		"not":       TokNot,
		"in":        TokIn,
		"like":      TokLike,
		"null":      TokNull,
		"format":    TokFormat,
		"count":     TokCount,
		"avg":       TokAvg,
		"max":       TokMax,
		"min":       TokMin,
		"sum":       TokSum,
		"array_agg": TokArrayAgg,
	}
}

// Token is one lexeme with its source position.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position
}

func (k TokenKind) IsAggregateFunc() bool {
	switch k {
	case TokCount, TokAvg, TokMax, TokMin, TokSum, TokArrayAgg:
		return true
	default:
		return false
	}
}

func (k TokenKind) IsComparisonOp() bool {
	switch k {
	case TokEq, TokEqEq, TokNeq, TokLt, TokLte, TokGt, TokGte, TokRegexOp:
		return true
	default:
		return false
	}
}
