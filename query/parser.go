package query

import "strconv"

// Parser is a hand-written recursive-descent parser over the token stream
// produced by the Lexer (§4.6). It never returns a partial AST: on error it
// returns a single SyntaxError naming the offending token's position.
type Parser struct {
	toks []Token
	pos  int
}

// Parse compiles BIQL source text into a Query AST.
func Parse(src string) (*Query, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseQuery()
}

func (p *Parser) cur() Token { return p.toks[p.pos] }

func (p *Parser) peekKind(n int) TokenKind {
	if p.pos+n >= len(p.toks) {
		return TokEOF
	}
	return p.toks[p.pos+n].Kind
}

func (p *Parser) at(k TokenKind) bool { return p.cur().Kind == k }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k TokenKind, what string) (Token, error) {
	if !p.at(k) {
		return Token{}, NewSyntaxError(p.cur().Pos, "expected %s, found %q", what, p.cur().Text)
	}
	return p.advance(), nil
}

func isClauseLeader(k TokenKind) bool {
	switch k {
	case TokSelect, TokWhere, TokGroup, TokHaving, TokOrder, TokFormat, TokEOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parseQuery() (*Query, error) {
	q := &Query{Projection: []ProjectionItem{{Star: true}}}

	if !isClauseLeader(p.cur().Kind) {
		// Bare-predicate mode: the whole input is one expr, desugared to
		// SELECT * WHERE expr (§4.6).
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.at(TokEOF) {
			return nil, NewSyntaxError(p.cur().Pos, "unexpected trailing input %q", p.cur().Text)
		}
		q.Where = expr
		return q, nil
	}

	if p.at(TokSelect) {
		p.advance()
		distinct, items, err := p.parseProjectionList()
		if err != nil {
			return nil, err
		}
		q.Distinct = distinct
		q.Projection = items
	}

	if p.at(TokWhere) {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Where = expr
	}

	if p.at(TokGroup) {
		p.advance()
		if _, err := p.expect(TokBy, "BY"); err != nil {
			return nil, err
		}
		keys, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		q.GroupBy = keys
	}

	if p.at(TokHaving) {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Having = expr
	}

	if p.at(TokOrder) {
		p.advance()
		if _, err := p.expect(TokBy, "BY"); err != nil {
			return nil, err
		}
		keys, err := p.parseOrderList()
		if err != nil {
			return nil, err
		}
		q.OrderBy = keys
	}

	if p.at(TokFormat) {
		p.advance()
		tok, err := p.expectIdentLike("a format name")
		if err != nil {
			return nil, err
		}
		q.Format = tok.Text
	}

	if !p.at(TokEOF) {
		return nil, NewSyntaxError(p.cur().Pos, "unexpected input %q", p.cur().Text)
	}

	return q, nil
}

// expectIdentLike accepts TokIdent (identifiers that aren't reserved
// keywords can still appear as format names / group keys in this grammar's
// few keyword-free positions).
func (p *Parser) expectIdentLike(what string) (Token, error) {
	if p.at(TokIdent) || p.at(TokQualifiedIdent) {
		return p.advance(), nil
	}
	return Token{}, NewSyntaxError(p.cur().Pos, "expected %s, found %q", what, p.cur().Text)
}

func (p *Parser) parseIdentList() ([]string, error) {
	var names []string
	tok, err := p.expectIdentLike("an identifier")
	if err != nil {
		return nil, err
	}
	names = append(names, tok.Text)
	for p.at(TokComma) {
		p.advance()
		tok, err := p.expectIdentLike("an identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Text)
	}
	return names, nil
}

func (p *Parser) parseOrderList() ([]OrderKey, error) {
	var keys []OrderKey
	k, err := p.parseOrderKey()
	if err != nil {
		return nil, err
	}
	keys = append(keys, k)
	for p.at(TokComma) {
		p.advance()
		k, err := p.parseOrderKey()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (p *Parser) parseOrderKey() (OrderKey, error) {
	tok, err := p.expectIdentLike("an identifier")
	if err != nil {
		return OrderKey{}, err
	}
	desc := false
	if p.at(TokAsc) {
		p.advance()
	} else if p.at(TokDesc) {
		p.advance()
		desc = true
	}
	return OrderKey{Name: tok.Text, Desc: desc}, nil
}

// --- Projection ---

func (p *Parser) parseProjectionList() (bool, []ProjectionItem, error) {
	distinct := false
	if p.at(TokDistinct) {
		p.advance()
		distinct = true
	}
	var items []ProjectionItem
	item, err := p.parseProjectionItem()
	if err != nil {
		return false, nil, err
	}
	items = append(items, item)
	for p.at(TokComma) {
		p.advance()
		item, err := p.parseProjectionItem()
		if err != nil {
			return false, nil, err
		}
		items = append(items, item)
	}
	return distinct, items, nil
}

func (p *Parser) parseProjectionItem() (ProjectionItem, error) {
	var item ProjectionItem

	switch {
	case p.at(TokStar):
		p.advance()
		item = ProjectionItem{Star: true}
	case p.cur().Kind.IsAggregateFunc():
		agg, err := p.parseAggregate()
		if err != nil {
			return ProjectionItem{}, err
		}
		item = ProjectionItem{Aggregate: agg}
	default:
		ident, err := p.parseQualifiedIdent()
		if err != nil {
			return ProjectionItem{}, err
		}
		item = ProjectionItem{Expr: ident}
	}

	if p.at(TokAs) {
		p.advance()
		tok, err := p.expectIdentLike("an alias")
		if err != nil {
			return ProjectionItem{}, err
		}
		item.Alias = tok.Text
	}
	return item, nil
}

func funcFromToken(k TokenKind) AggFunc {
	switch k {
	case TokCount:
		return AggCount
	case TokAvg:
		return AggAvg
	case TokMax:
		return AggMax
	case TokMin:
		return AggMin
	case TokSum:
		return AggSum
	case TokArrayAgg:
		return AggArrayAgg
	default:
		return AggCount
	}
}

func (p *Parser) parseAggregate() (*AggregateCall, error) {
	funcTok := p.advance()
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}

	distinct := false
	if p.at(TokDistinct) {
		p.advance()
		distinct = true
	}

	call := &AggregateCall{Func: funcFromToken(funcTok.Kind), Distinct: distinct}

	if funcTok.Kind == TokCount && p.at(TokStar) {
		starPos := p.cur().Pos
		p.advance()
		if distinct {
			// §9 open question: COUNT(DISTINCT *) is undefined by the
			// source and is rejected at parse time.
			return nil, NewSyntaxError(starPos, "COUNT(DISTINCT *) is not supported")
		}
		call.Star = true
	} else {
		arg, err := p.parseQualifiedIdent()
		if err != nil {
			return nil, err
		}
		call.Arg = arg
	}

	if p.at(TokWhere) {
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Where = cond
	}

	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseQualifiedIdent() (*Ident, error) {
	if p.at(TokIdent) {
		tok := p.advance()
		return &Ident{Parts: []string{tok.Text}}, nil
	}
	if p.at(TokQualifiedIdent) {
		tok := p.advance()
		return &Ident{Parts: splitDotted(tok.Text)}, nil
	}
	return nil, NewSyntaxError(p.cur().Pos, "expected an identifier, found %q", p.cur().Text)
}

func splitDotted(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// --- Boolean expressions ---

func (p *Parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(TokOr) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

// startsPredicate reports whether the current token can begin a new "not"
// production, used to detect implicit-AND adjacency.
func startsPredicate(k TokenKind) bool {
	if k.IsAggregateFunc() {
		return true
	}
	switch k {
	case TokIdent, TokQualifiedIdent, TokNot, TokLParen:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if p.at(TokAnd) {
			p.advance()
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = &Logical{Op: OpAnd, Left: left, Right: right}
			continue
		}
		if startsPredicate(p.cur().Kind) {
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = &Logical{Op: OpAnd, Left: left, Right: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.at(TokNot) {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Logical{Op: OpNot, Left: inner}, nil
	}
	if p.at(TokLParen) {
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseComparison()
}

func opFromToken(k TokenKind) CompareOp {
	switch k {
	case TokEq, TokEqEq:
		return OpEq
	case TokNeq:
		return OpNeq
	case TokLt:
		return OpLt
	case TokLte:
		return OpLte
	case TokGt:
		return OpGt
	case TokGte:
		return OpGte
	case TokRegexOp:
		return OpRegex
	default:
		return OpEq
	}
}

func (p *Parser) parseComparison() (Expr, error) {
	var left Expr
	var err error
	if p.cur().Kind.IsAggregateFunc() {
		left, err = p.parseAggregate()
	} else {
		left, err = p.parseQualifiedIdent()
	}
	if err != nil {
		return nil, err
	}

	switch {
	case p.cur().Kind.IsComparisonOp():
		opTok := p.advance()
		if p.at(TokNull) {
			p.advance()
			if opTok.Kind != TokEq && opTok.Kind != TokEqEq && opTok.Kind != TokNeq {
				return nil, NewSyntaxError(opTok.Pos, "NULL may only be compared with = or !=")
			}
			nc := Expr(&NullCheck{Left: left})
			if opTok.Kind == TokNeq {
				nc = &Logical{Op: OpNot, Left: nc}
			}
			return nc, nil
		}
		right, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &Comparison{Left: left, Op: opFromToken(opTok.Kind), Right: right}, nil

	case p.at(TokIn):
		p.advance()
		list, err := p.parseListLiteral()
		if err != nil {
			return nil, err
		}
		return &InExpr{Left: left, List: list}, nil

	case p.at(TokLike):
		p.advance()
		tok, err := p.expectStringLike("a LIKE pattern")
		if err != nil {
			return nil, err
		}
		return &LikeExpr{Left: left, Pattern: tok.Text}, nil

	default:
		id, ok := left.(*Ident)
		if !ok {
			return nil, NewSyntaxError(p.cur().Pos, "expected a comparison operator, found %q", p.cur().Text)
		}
		return &ExistenceProbe{Ident: id}, nil
	}
}

func (p *Parser) expectStringLike(what string) (Token, error) {
	switch p.cur().Kind {
	case TokString, TokIdent, TokPattern:
		return p.advance(), nil
	default:
		return Token{}, NewSyntaxError(p.cur().Pos, "expected %s, found %q", what, p.cur().Text)
	}
}

// --- Values ---

func numberValue(text string) Value {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Int(i)
	}
	f, _ := strconv.ParseFloat(text, 64)
	return Float(f)
}

func (p *Parser) parseValue() (Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokNumber:
		p.advance()
		return &Literal{Value: numberValue(tok.Text)}, nil
	case TokString:
		p.advance()
		return &Literal{Value: String(tok.Text)}, nil
	case TokIdent:
		p.advance()
		return &Literal{Value: String(tok.Text)}, nil
	case TokNull:
		p.advance()
		return &Literal{Value: Null()}, nil
	case TokPattern:
		p.advance()
		return &PatternLiteral{Pattern: tok.Text}, nil
	case TokRegex:
		p.advance()
		return &RegexLiteral{Pattern: tok.Text}, nil
	case TokLBracket:
		return p.parseBracketValue()
	default:
		return nil, NewSyntaxError(tok.Pos, "expected a value, found %q", tok.Text)
	}
}

// parseBracketValue disambiguates range ('[' number ':' number ']') from
// list ('[' value (',' value)* ']') with one token of lookahead.
func (p *Parser) parseBracketValue() (Expr, error) {
	p.advance() // consume '['

	if p.at(TokRBracket) {
		p.advance()
		return &ListLiteral{}, nil
	}

	if p.at(TokNumber) && p.peekKind(1) == TokColon {
		loTok := p.advance()
		p.advance() // ':'
		hiTok, err := p.expect(TokNumber, "a number")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket, "']'"); err != nil {
			return nil, err
		}
		lo, _ := strconv.ParseFloat(loTok.Text, 64)
		hi, _ := strconv.ParseFloat(hiTok.Text, 64)
		return &RangeLiteral{Low: lo, High: hi}, nil
	}

	return p.parseListItemsAfterBracket()
}

// parseListLiteral expects the current token to be the opening '[' of a
// list (used for the IN operand, where no range form is possible).
func (p *Parser) parseListLiteral() (*ListLiteral, error) {
	if _, err := p.expect(TokLBracket, "'['"); err != nil {
		return nil, err
	}
	return p.parseListItemsAfterBracket()
}

// parseListItemsAfterBracket parses the comma-separated value list and
// closing ']', assuming the opening '[' has already been consumed.
func (p *Parser) parseListItemsAfterBracket() (*ListLiteral, error) {
	if p.at(TokRBracket) {
		p.advance()
		return &ListLiteral{}, nil
	}
	var items []Expr
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	items = append(items, v)
	for p.at(TokComma) {
		p.advance()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if _, err := p.expect(TokRBracket, "']'"); err != nil {
		return nil, err
	}
	return &ListLiteral{Items: items}, nil
}
