// Package eval executes a parsed query.Query against a catalog.Index,
// producing result rows (§4.7-§4.9). It is a type-switch fold over the
// query package's AST rather than a virtual-dispatch visitor, matching
// the sum-type design note in §9.
package eval

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/astewartau/biql/catalog"
	"github.com/astewartau/biql/query"
)

// record is the minimal surface the evaluator needs from a catalog entry;
// satisfied by *catalog.FileRecord.
type record interface {
	Resolve(parts []string) query.Value
	IsEntityLike(parts []string) bool
}

var _ record = (*catalog.FileRecord)(nil)

// regexCache memoizes compiled LIKE/regex patterns across the whole
// evaluation of a query, since the same pattern is typically evaluated
// once per row (§4.7's glob/regex notes).
type regexCache struct {
	mu    sync.Mutex
	glob  map[string]*regexp.Regexp
	plain map[string]*regexp.Regexp
}

func newRegexCache() *regexCache {
	return &regexCache{glob: map[string]*regexp.Regexp{}, plain: map[string]*regexp.Regexp{}}
}

func (c *regexCache) compileGlob(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.glob[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(globToRegex(pattern))
	if err != nil {
		return nil, err
	}
	c.glob[pattern] = re
	return re, nil
}

func (c *regexCache) compilePlain(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.plain[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	c.plain[pattern] = re
	return re, nil
}

// globToRegex translates BIQL's `*`/`?` glob syntax into a fully anchored
// regular expression (§4.7: glob match is a full-string match, not a
// search).
func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString(`\A`)
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`\z`)
	return b.String()
}

// likeToRegex translates SQL LIKE syntax (`%`, `_`, with `\` escaping) into
// a fully anchored regular expression (§4.7).
func likeToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString(`\A`)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '%':
			b.WriteString(`.*`)
		case '_':
			b.WriteString(`.`)
		case '\\':
			if i+1 < len(runes) {
				i++
				b.WriteString(regexp.QuoteMeta(string(runes[i])))
			} else {
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`\z`)
	return b.String()
}

// Evaluator holds the shared, reusable state (mainly the compiled-pattern
// cache) for evaluating one query across every record in an index.
type Evaluator struct {
	cache *regexCache
}

func NewEvaluator() *Evaluator {
	return &Evaluator{cache: newRegexCache()}
}

// MatchesWhere reports whether rec satisfies expr (nil expr always
// matches, the WHERE-less case).
func (e *Evaluator) MatchesWhere(rec record, expr query.Expr) (bool, error) {
	if expr == nil {
		return true, nil
	}
	return e.evalBool(rec, expr)
}

func (e *Evaluator) evalBool(rec record, expr query.Expr) (bool, error) {
	switch n := expr.(type) {
	case *query.Logical:
		switch n.Op {
		case query.OpAnd:
			l, err := e.evalBool(rec, n.Left)
			if err != nil || !l {
				return false, err
			}
			return e.evalBool(rec, n.Right)
		case query.OpOr:
			l, err := e.evalBool(rec, n.Left)
			if err != nil {
				return false, err
			}
			if l {
				return true, nil
			}
			return e.evalBool(rec, n.Right)
		case query.OpNot:
			v, err := e.evalBool(rec, n.Left)
			return !v, err
		}
		return false, fmt.Errorf("unhandled logical operator")

	case *query.Comparison:
		return e.evalComparison(rec, n)

	case *query.InExpr:
		return e.evalIn(rec, n)

	case *query.LikeExpr:
		return e.evalLike(rec, n)

	case *query.NullCheck:
		v, err := e.evalValue(rec, n.Left)
		if err != nil {
			return false, err
		}
		return v.IsNull(), nil

	case *query.ExistenceProbe:
		v := rec.Resolve(n.Ident.Parts)
		return !v.IsEmpty(), nil

	default:
		v, err := e.evalValue(rec, expr)
		if err != nil {
			return false, err
		}
		return !v.IsEmpty(), nil
	}
}

func (e *Evaluator) evalComparison(rec record, n *query.Comparison) (bool, error) {
	left, err := e.evalValue(rec, n.Left)
	if err != nil {
		return false, err
	}

	if rl, ok := n.Right.(*query.RangeLiteral); ok {
		num, ok := left.AsNumber()
		if !ok {
			return false, nil
		}
		return num >= rl.Low && num <= rl.High, nil
	}

	if pat, ok := n.Right.(*query.PatternLiteral); ok {
		re, err := e.cache.compileGlob(pat.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(left.String()), nil
	}

	// `~=` and /regex/ literals are full-match: the user's pattern is
	// anchored as \A(?:...)\z before compiling.
	if rx, ok := n.Right.(*query.RegexLiteral); ok {
		re, err := e.cache.compilePlain(`\A(?:` + rx.Pattern + `)\z`)
		if err != nil {
			return false, err
		}
		return re.MatchString(left.String()), nil
	}

	if lit, ok := n.Right.(*query.Literal); ok && lit.Value.IsNull() {
		isNull := left.IsNull()
		switch n.Op {
		case query.OpEq:
			return isNull, nil
		case query.OpNeq:
			return !isNull, nil
		}
	}

	right, err := e.evalValue(rec, n.Right)
	if err != nil {
		return false, err
	}

	entityCompare := isIdent(n.Left) && entityLike(rec, n.Left)

	switch n.Op {
	case query.OpEq:
		if entityCompare {
			return query.EqualEntity(left, right), nil
		}
		return query.Equal(left, right), nil
	case query.OpNeq:
		if entityCompare {
			return !query.EqualEntity(left, right), nil
		}
		return !query.Equal(left, right), nil
	case query.OpLt, query.OpLte, query.OpGt, query.OpGte:
		c := query.Compare(left, right)
		switch n.Op {
		case query.OpLt:
			return c < 0, nil
		case query.OpLte:
			return c <= 0, nil
		case query.OpGt:
			return c > 0, nil
		case query.OpGte:
			return c >= 0, nil
		}
	case query.OpRegex:
		re, err := e.cache.compilePlain(`\A(?:` + right.RawString() + `)\z`)
		if err != nil {
			return false, err
		}
		return re.MatchString(left.String()), nil
	}
	return false, fmt.Errorf("unhandled comparison operator")
}

func (e *Evaluator) evalIn(rec record, n *query.InExpr) (bool, error) {
	left, err := e.evalValue(rec, n.Left)
	if err != nil {
		return false, err
	}
	for _, item := range n.List.Items {
		rv, err := e.evalValue(rec, item)
		if err != nil {
			return false, err
		}
		if query.Equal(left, rv) {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) evalLike(rec record, n *query.LikeExpr) (bool, error) {
	left, err := e.evalValue(rec, n.Left)
	if err != nil {
		return false, err
	}
	re, err := e.cache.compilePlain(likeToRegex(n.Pattern))
	if err != nil {
		return false, err
	}
	return re.MatchString(left.String()), nil
}

// aggregateRecordSource is implemented by record adapters that can supply
// the underlying group of FileRecords an aggregate call should reduce
// over — only the HAVING evaluation path needs this (§4.9:
// `HAVING COUNT(*) > 1` compares an aggregate directly, not only via a
// SELECT alias).
type aggregateRecordSource interface {
	GroupRecords() []*catalog.FileRecord
}

// evalValue evaluates a non-boolean value expression.
func (e *Evaluator) evalValue(rec record, expr query.Expr) (query.Value, error) {
	switch n := expr.(type) {
	case *query.Ident:
		return rec.Resolve(n.Parts), nil
	case *query.Literal:
		return n.Value, nil
	case *query.PatternLiteral:
		return query.String(n.Pattern), nil
	case *query.RegexLiteral:
		return query.String(n.Pattern), nil
	case *query.AggregateCall:
		src, ok := rec.(aggregateRecordSource)
		if !ok {
			return query.Null(), fmt.Errorf("aggregate functions are only valid in SELECT or HAVING")
		}
		return computeAggregate(e, src.GroupRecords(), n)
	default:
		return query.Null(), fmt.Errorf("expression cannot be evaluated as a value")
	}
}

func isIdent(e query.Expr) bool {
	_, ok := e.(*query.Ident)
	return ok
}

func entityLike(rec record, e query.Expr) bool {
	id, ok := e.(*query.Ident)
	if !ok {
		return false
	}
	return rec.IsEntityLike(id.Parts)
}
