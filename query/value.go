package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

// Value is the polymorphic attribute value used throughout BIQL: filename
// entities, sidecar metadata, participant columns, and literals in a query
// all end up as one of these variants. Comparison and aggregation operate
// purely on this type so the evaluator never has to special-case "is this
// JSON, Go, or source text".
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	m    map[string]Value
}

// Null is the zero value's singleton shape; kept as a function for clarity
// at call sites.
func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func List(items []Value) Value { return Value{kind: KindList, list: items} }

func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports "non-null and non-empty" per the existence-probe rule in
// §4.7: an empty string, empty list, or empty map counts as empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == ""
	case KindList:
		return len(v.list) == 0
	case KindMap:
		return len(v.m) == 0
	default:
		return false
	}
}

func (v Value) Bool() bool { return v.b }

func (v Value) Int() int64 { return v.i }

func (v Value) Float() float64 { return v.f }

func (v Value) RawString() string { return v.s }

func (v Value) ListItems() []Value { return v.list }

func (v Value) MapValue() map[string]Value { return v.m }

// String renders the value for display, glob matching, and regex matching:
// its "string form" per §4.7.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, v.m[k].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// AsNumber attempts to interpret the value numerically, returning ok=false
// if it cannot. Strings are parsed with strconv; this backs the "try
// numeric compare first" ladder in §4.7.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsNonNegativeInt reports whether the value is a non-negative integer,
// tolerating leading zeros in its string form (so "01" and "1" both yield
// (1, true)). This backs the leading-zero-insensitive entity comparison
// rule in §4.7.
func (v Value) AsNonNegativeInt() (int64, bool) {
	var s string
	switch v.kind {
	case KindInt:
		if v.i < 0 {
			return 0, false
		}
		return v.i, true
	case KindString:
		s = v.s
	default:
		return 0, false
	}
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FromGo converts a decoded JSON value (map[string]any / []any / string /
// float64 / bool / nil, as produced by encoding/json) into a Value. It is
// the one conversion boundary between "external data" and the evaluator's
// type lattice; metadata and literal values both funnel through it.
func FromGo(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case float64:
		if x == float64(int64(x)) {
			return Int(int64(x))
		}
		return Float(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = FromGo(item)
		}
		return List(items)
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, val := range x {
			m[k] = FromGo(val)
		}
		return Map(m)
	case []Value:
		return List(x)
	case map[string]Value:
		return Map(x)
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

// ToGo converts a Value back into plain Go data (map[string]any, []any,
// string, float64/int64, bool, nil) suitable for encoding/json or a
// round-trip equality check against the original decoded JSON.
func (v Value) ToGo() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.ToGo()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.ToGo()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether two values are equal under BIQL's comparison rules:
// numeric-first, falling back to string equality. It is the building block
// for IN-lists and equality comparisons.
func Equal(a, b Value) bool {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == KindNull && b.kind == KindNull
	}
	if an, aok := a.AsNumber(); aok {
		if bn, bok := b.AsNumber(); bok {
			return an == bn
		}
	}
	return a.String() == b.String()
}

// EqualEntity is Equal but with the leading-zero-insensitive integer rule
// applied first: "sub=1" matches "sub-01". Falls back to Equal.
func EqualEntity(a, b Value) bool {
	if ai, aok := a.AsNonNegativeInt(); aok {
		if bi, bok := b.AsNonNegativeInt(); bok {
			return ai == bi
		}
	}
	return Equal(a, b)
}

// Compare orders two values numerically when both convert, else
// lexicographically by string form. It returns -1, 0, or 1.
func Compare(a, b Value) int {
	if an, aok := a.AsNumber(); aok {
		if bn, bok := b.AsNumber(); bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
