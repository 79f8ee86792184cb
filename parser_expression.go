package gojinja2

// This file implements the expression grammar of spec.md §4.2, a
// standard precedence-climbing recursive descent parser in the style
// of the teacher's parser_expression.go, generalized to Jinja2's
// fuller operator set (**, //, ~, is/is not, inline if/else, filter
// chains).
//
// Precedence, low to high:
//   conditional (x if y else z)
//   or
//   and
//   not (unary)
//   comparison (== != < <= > >= in "not in" is "is not")
//   concat (~)
//   add/sub
//   mul/div/floordiv/mod
//   pow (right-assoc)
//   filters (x|f1|f2(...))
//   unary (-x, +x)
//   postfix (.attr, [idx], (call))
//   primary

func (p *Parser) parseFullExpression() (Expression, error) {
	return p.parseConditional()
}

func (p *Parser) parseConditional() (Expression, error) {
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.PeekKeyword("if") {
		p.Consume()
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.ExpectKeyword("else"); err != nil {
			return nil, err
		}
		elseExpr, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		return &condExpr{cond: cond, ifTrue: expr, ifFalse: elseExpr}, nil
	}
	return expr, nil
}

func (p *Parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.PeekKeyword("or") {
		p.Consume()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orExpr{left: left, right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.PeekKeyword("and") {
		p.Consume()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &andExpr{left: left, right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expression, error) {
	if p.PeekKeyword("not") {
		p.Consume()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notExpr{operand: operand}, nil
	}
	return p.parseCompare()
}

var compareSymbols = map[string]string{
	"==": "eq", "!=": "ne", "<": "lt", "<=": "le", ">": "gt", ">=": "ge",
}

func (p *Parser) parseCompare() (Expression, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	tok := p.Current()
	if tok == nil {
		return left, nil
	}
	if tok.Typ == TokenSymbol {
		if op, ok := compareSymbols[tok.Val]; ok {
			p.Consume()
			right, err := p.parseConcat()
			if err != nil {
				return nil, err
			}
			return &compareExpr{op: op, left: left, right: right}, nil
		}
	}
	if tok.Typ == TokenKeyword && tok.Val == "in" {
		p.Consume()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return &inExpr{left: left, right: right}, nil
	}
	if tok.Typ == TokenKeyword && tok.Val == "not" && p.PeekN(1) != nil && p.PeekN(1).Val == "in" {
		p.Consume()
		p.Consume()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return &notExpr{operand: &inExpr{left: left, right: right}}, nil
	}
	if tok.Typ == TokenKeyword && tok.Val == "is" {
		p.Consume()
		negate := false
		if p.PeekKeyword("not") {
			p.Consume()
			negate = true
		}
		nameTok, err := p.ExpectIdentifier()
		if err != nil {
			if kw := p.MatchType(TokenKeyword); kw != nil {
				nameTok = kw
			} else {
				return nil, err
			}
		}
		var args []Expression
		if p.MatchSymbol("(") {
			args, err = p.parseCallArgList(nil)
			if err != nil {
				return nil, err
			}
			if _, err := p.ExpectSymbol(")"); err != nil {
				return nil, err
			}
		}
		te := &testerExpr{name: nameTok.Val, target: left, args: args}
		if negate {
			return &notExpr{operand: te}, nil
		}
		return te, nil
	}
	return left, nil
}

func (p *Parser) parseConcat() (Expression, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.PeekSymbol("~") {
		p.Consume()
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = &concatExpr{left: left, right: right}
	}
	return left, nil
}

func (p *Parser) parseAdd() (Expression, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.PeekSymbol("+") || p.PeekSymbol("-") {
		op := p.Current().Val
		p.Consume()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &arithExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *Parser) parseMul() (Expression, error) {
	left, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for p.PeekSymbol("*") || p.PeekSymbol("/") || p.PeekSymbol("//") || p.PeekSymbol("%") {
		op := p.Current().Val
		p.Consume()
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		left = &arithExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *Parser) parsePow() (Expression, error) {
	left, err := p.parseFilterChain()
	if err != nil {
		return nil, err
	}
	if p.PeekSymbol("**") {
		p.Consume()
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		return &arithExpr{op: "**", left: left, right: right}, nil
	}
	return left, nil
}

// parseUnary binds tighter than the filter pipe: "-30 | abs" first
// produces the signed literal -30, then applies abs to it.
func (p *Parser) parseUnary() (Expression, error) {
	if p.PeekSymbol("-") || p.PeekSymbol("+") {
		op := p.Current().Val
		p.Consume()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: op, operand: operand}, nil
	}
	return p.parsePostfix()
}

// parseFilterChain binds the filter pipe tighter than pow/arithmetic
// but looser than unary minus/plus, so "-30 | abs" parses as
// "(-30) | abs" (= 30), not "-(30 | abs)" (= -30).
func (p *Parser) parseFilterChain() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.PeekSymbol("|") {
		p.Consume()
		nameTok, err := p.ExpectIdentifier()
		if err != nil {
			return nil, err
		}
		var args []Expression
		var kwargs map[string]Expression
		if p.MatchSymbol("(") {
			args, kwargs, err = p.parseMixedCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.ExpectSymbol(")"); err != nil {
				return nil, err
			}
		}
		left = &filterExpr{name: nameTok.Val, input: left, args: args, kwargs: kwargs, tok: nameTok}
	}
	return left, nil
}

func (p *Parser) parsePostfix() (Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.PeekSymbol("."):
			p.Consume()
			nameTok, err := p.ExpectIdentifier()
			if err != nil {
				return nil, err
			}
			expr = &attrExpr{target: expr, name: nameTok.Val}
		case p.PeekSymbol("["):
			p.Consume()
			idx, err := p.parseFullExpression()
			if err != nil {
				return nil, err
			}
			// "[" here only parses a single key or index; Python-style
			// slicing a[start:stop] is not supported and its ":" fails
			// the "]" expectation below as a parse error.
			if _, err := p.ExpectSymbol("]"); err != nil {
				return nil, err
			}
			expr = &indexExpr{target: expr, index: idx}
		case p.PeekSymbol("("):
			p.Consume()
			args, kwargs, err := p.parseMixedCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.ExpectSymbol(")"); err != nil {
				return nil, err
			}
			expr = &callExpr{callee: expr, args: args, kwargs: kwargs}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (Expression, error) {
	tok := p.Current()
	if tok == nil {
		return nil, p.errorf(ErrExpectedExpression, "<eof>")
	}
	switch tok.Typ {
	case TokenInteger:
		p.Consume()
		n, ok := parseIntLiteral(tok.Val)
		if !ok {
			return &literalExpr{v: doubleValue(parseFloatLiteral(tok.Val))}, nil
		}
		return &literalExpr{v: intValue(n)}, nil
	case TokenFloat:
		p.Consume()
		return &literalExpr{v: doubleValue(parseFloatLiteral(tok.Val))}, nil
	case TokenString:
		p.Consume()
		return &literalExpr{v: stringValue(tok.Val)}, nil
	case TokenKeyword:
		switch tok.Val {
		case "true", "True":
			p.Consume()
			return &literalExpr{v: boolValue(true)}, nil
		case "false", "False":
			p.Consume()
			return &literalExpr{v: boolValue(false)}, nil
		case "none", "None":
			p.Consume()
			return &literalExpr{v: Empty}, nil
		}
	case TokenIdentifier:
		p.Consume()
		return &identExpr{name: tok.Val}, nil
	case TokenSymbol:
		switch tok.Val {
		case "(":
			return p.parseParenOrTuple()
		case "[":
			return p.parseListLiteral()
		case "{":
			return p.parseDictLiteral()
		}
	}
	return nil, p.errorf(ErrExpectedExpression, tok.Val)
}

func (p *Parser) parseParenOrTuple() (Expression, error) {
	p.Consume() // "("
	if p.MatchSymbol(")") {
		return &listExpr{}, nil
	}
	first, err := p.parseFullExpression()
	if err != nil {
		return nil, err
	}
	if p.PeekSymbol(")") {
		p.Consume()
		return first, nil
	}
	items := []Expression{first}
	for p.MatchSymbol(",") {
		if p.PeekSymbol(")") {
			break
		}
		item, err := p.parseFullExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if _, err := p.ExpectSymbol(")"); err != nil {
		return nil, err
	}
	return &listExpr{items: items}, nil
}

func (p *Parser) parseListLiteral() (Expression, error) {
	p.Consume() // "["
	var items []Expression
	for !p.PeekSymbol("]") {
		item, err := p.parseFullExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.MatchSymbol(",") {
			break
		}
	}
	if _, err := p.ExpectSymbol("]"); err != nil {
		return nil, err
	}
	return &listExpr{items: items}, nil
}

func (p *Parser) parseDictLiteral() (Expression, error) {
	p.Consume() // "{"
	keys := []Expression{}
	vals := []Expression{}
	for !p.PeekSymbol("}") {
		k, err := p.parseFullExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.ExpectSymbol(":"); err != nil {
			return nil, err
		}
		v, err := p.parseFullExpression()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		vals = append(vals, v)
		if !p.MatchSymbol(",") {
			break
		}
	}
	if _, err := p.ExpectSymbol("}"); err != nil {
		return nil, err
	}
	return &dictExpr{keys: keys, vals: vals}, nil
}

// parseMixedCallArgs parses a call argument list that may mix
// positional and `name=value` keyword arguments, keyword args always
// trailing positional per spec.md §4.2.
func (p *Parser) parseMixedCallArgs() ([]Expression, map[string]Expression, error) {
	var args []Expression
	var kwargs map[string]Expression
	for !p.PeekSymbol(")") {
		if p.Current() != nil && p.Current().Typ == TokenIdentifier && p.PeekN(1) != nil && p.PeekN(1).Typ == TokenSymbol && p.PeekN(1).Val == "=" {
			nameTok := p.Current()
			p.Consume()
			p.Consume() // "="
			v, err := p.parseFullExpression()
			if err != nil {
				return nil, nil, err
			}
			if kwargs == nil {
				kwargs = map[string]Expression{}
			}
			kwargs[nameTok.Val] = v
		} else {
			v, err := p.parseFullExpression()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, v)
		}
		if !p.MatchSymbol(",") {
			break
		}
	}
	return args, kwargs, nil
}

// parseCallArgList parses a positional-only argument list, used by
// tester-call syntax (`is divisibleby(3)`) which jinja2cpp never
// allows keyword arguments for.
func (p *Parser) parseCallArgList(_ []Expression) ([]Expression, error) {
	var args []Expression
	for !p.PeekSymbol(")") {
		v, err := p.parseFullExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if !p.MatchSymbol(",") {
			break
		}
	}
	return args, nil
}
