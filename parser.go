package gojinja2

import "strings"

// tagParseFunc parses one {% tagname ... %} construct. It is invoked
// with the Parser positioned just after the tag-name identifier token
// and must itself consume through the closing "%}" (and, for block
// tags, the whole body up to and including the matching {% endtag %}).
type tagParseFunc func(p *Parser, startTok *Token) (Renderer, error)

var tagRegistry = map[string]tagParseFunc{}

// RegisterTag adds a statement tag implementation to the engine-wide
// registry, mirroring the teacher's tags.go RegisterTag.
func RegisterTag(name string, fn tagParseFunc) {
	tagRegistry[name] = fn
}

// Parser walks a token stream produced by lex, building a tree of
// Renderers and Expressions. One Parser instance is used per template
// source; tag implementations receive it by reference so they can
// recurse into nested bodies via ParseUntil.
type Parser struct {
	name   string
	tokens []*Token
	idx    int
	opts   *Options
	env    *Environment

	// collectBlocks, when set, is invoked by statements_block.go each
	// time a top-or-nested-level {% block %} is parsed, so parseSource
	// can build the Template's block-name map in one pass.
	collectBlocks func(*blockNode)

	// extendsParent records the template name from a top-level
	// {% extends %}, if any (statements_extends.go rejects a second
	// {% extends %}; where in the document it appears is not checked).
	extendsParent string
	sawNonExtends  bool

	// collectMeta, when set, is invoked with each {% meta %} block's raw
	// JSON payload as it is parsed.
	collectMeta func(raw string)
}

func newParser(name string, tokens []*Token, opts *Options, env *Environment) *Parser {
	return &Parser{name: name, tokens: tokens, opts: opts, env: env}
}

func (p *Parser) Current() *Token { return p.get(p.idx) }
func (p *Parser) PeekN(n int) *Token { return p.get(p.idx + n) }

func (p *Parser) get(i int) *Token {
	if i >= 0 && i < len(p.tokens) {
		return p.tokens[i]
	}
	return nil
}

func (p *Parser) Consume() { p.idx++ }

// MatchType consumes and returns the current token if its type matches.
func (p *Parser) MatchType(t TokenType) *Token {
	tok := p.Current()
	if tok != nil && tok.Typ == t {
		p.Consume()
		return tok
	}
	return nil
}

// Match consumes and returns the current token if type and value match.
func (p *Parser) Match(t TokenType, val string) *Token {
	tok := p.Current()
	if tok != nil && tok.Typ == t && tok.Val == val {
		p.Consume()
		return tok
	}
	return nil
}

// MatchKeyword is shorthand for Match(TokenKeyword, kw).
func (p *Parser) MatchKeyword(kw string) *Token { return p.Match(TokenKeyword, kw) }

// MatchSymbol is shorthand for Match(TokenSymbol, sym).
func (p *Parser) MatchSymbol(sym string) *Token { return p.Match(TokenSymbol, sym) }

// PeekSymbol reports whether the current token is the given symbol,
// without consuming it.
func (p *Parser) PeekSymbol(sym string) bool {
	tok := p.Current()
	return tok != nil && tok.Typ == TokenSymbol && tok.Val == sym
}

func (p *Parser) PeekKeyword(kw string) bool {
	tok := p.Current()
	return tok != nil && tok.Typ == TokenKeyword && tok.Val == kw
}

// ExpectIdentifier consumes an identifier token or returns a
// structured parse error.
func (p *Parser) ExpectIdentifier() (*Token, error) {
	tok := p.MatchType(TokenIdentifier)
	if tok == nil {
		return nil, p.errorf(ErrExpectedIdentifier, p.describeCurrent())
	}
	return tok, nil
}

// ExpectSymbol consumes the given symbol or returns a parse error.
func (p *Parser) ExpectSymbol(sym string) (*Token, error) {
	tok := p.MatchSymbol(sym)
	if tok == nil {
		return nil, p.errorf(ErrExpectedToken, sym, p.describeCurrent())
	}
	return tok, nil
}

// ExpectKeyword consumes the given keyword or returns a parse error.
func (p *Parser) ExpectKeyword(kw string) (*Token, error) {
	tok := p.MatchKeyword(kw)
	if tok == nil {
		return nil, p.errorf(ErrExpectedToken, kw, p.describeCurrent())
	}
	return tok, nil
}

func (p *Parser) describeCurrent() string {
	tok := p.Current()
	if tok == nil {
		return "<eof>"
	}
	return tok.Val
}

func (p *Parser) errorf(code ErrorCode, params ...interface{}) *Error {
	tok := p.Current()
	if tok == nil && len(p.tokens) > 0 {
		tok = p.tokens[len(p.tokens)-1]
	}
	e := newError(code, p.name, 0, 0, "parser", params...)
	return e.withToken(tok)
}

// skipToBlockEnd consumes tokens up to and including the closing "%}"
// (a "-%}"/"+%}" marker is lexed as "%}") and returns that token, used
// by endtag matching to tolerate an optional repeated name after
// "endblock"/"endautoescape" etc.
func (p *Parser) skipToBlockEnd() (*Token, error) {
	for {
		tok := p.Current()
		if tok == nil {
			return nil, p.errorf(ErrExpectedToken, "%}", "<eof>")
		}
		if tok.Typ == TokenSymbol && tok.Val == "%}" {
			p.Consume()
			return tok, nil
		}
		p.Consume()
	}
}

// parseDocument parses the full token stream into a flat renderList,
// the body of the compiled Template.
func (p *Parser) parseDocument() (*renderList, error) {
	list, _, err := p.parseUntil()
	return list, err
}

// parseUntil parses document elements until EOF or until a {% tagname
// %} whose name is in endNames is seen; in the latter case the end
// marker is consumed and its tag name returned.
func (p *Parser) parseUntil(endNames ...string) (*renderList, string, error) {
	list := &renderList{}
	for {
		tok := p.Current()
		if tok == nil {
			if len(endNames) > 0 {
				return nil, "", p.errorf(ErrExpectedToken, strings.Join(endNames, "/"), "<eof>")
			}
			return list, "", nil
		}

		if tok.Typ == TokenHTML {
			list.items = append(list.items, p.buildRawText(tok))
			p.Consume()
			continue
		}

		if tok.Typ == TokenSymbol && tok.Val == "{{" {
			node, err := p.parseOutput()
			if err != nil {
				return nil, "", err
			}
			list.items = append(list.items, node)
			continue
		}

		if tok.Typ == TokenSymbol && tok.Val == "{%" {
			nameTok := p.PeekN(1)
			if nameTok != nil && (nameTok.Typ == TokenKeyword || nameTok.Typ == TokenIdentifier) {
				for _, end := range endNames {
					if nameTok.Val == end {
						// Leave the parser positioned right after the tag
						// name token: callers that need a trailing
						// end-tag expression (elif's condition) parse it
						// themselves, others just Expect "%}".
						p.Consume() // {%
						p.Consume() // name
						return list, end, nil
					}
				}
			}
			node, err := p.parseTag()
			if err != nil {
				return nil, "", err
			}
			if node != nil {
				list.items = append(list.items, node)
			}
			continue
		}

		return nil, "", p.errorf(ErrUnexpectedToken, tok.Val)
	}
}

// ParseUntil is the public entry point tag implementations use to parse
// their body, e.g. ParseUntil("endif", "elif", "else").
func (p *Parser) ParseUntil(endNames ...string) (*renderList, string, error) {
	return p.parseUntil(endNames...)
}

func (p *Parser) parseTag() (Renderer, error) {
	openTok, err := p.ExpectSymbol("{%")
	if err != nil {
		return nil, err
	}
	nameTok := p.Current()
	if nameTok == nil || (nameTok.Typ != TokenKeyword && nameTok.Typ != TokenIdentifier) {
		return nil, p.errorf(ErrExpectedToken, "tag name", p.describeCurrent())
	}
	p.Consume()

	fn, ok := tagRegistry[nameTok.Val]
	if !ok {
		return nil, p.errorf(ErrUnexpectedStatement, nameTok.Val).withToken(openTok)
	}
	return fn(p, nameTok)
}

func (p *Parser) parseOutput() (Renderer, error) {
	openTok, err := p.ExpectSymbol("{{")
	if err != nil {
		return nil, err
	}
	expr, err := p.parseFullExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectSymbol("}}"); err != nil {
		return nil, err
	}
	return &outputNode{expr: expr, tok: openTok}, nil
}

// buildRawText applies whitespace control to an HTML token: explicit
// "-" markers on the adjoining block tokens always win; absent those,
// Options.TrimBlocks strips one newline after a statement close and
// Options.LstripBlocks strips indentation before a statement open,
// unless suppressed by a "+" marker on that side.
func (p *Parser) buildRawText(tok *Token) Renderer {
	text := tok.Val
	prev := p.get(p.idx - 1)
	next := p.get(p.idx + 1)

	if prev != nil && prev.Typ == TokenSymbol {
		switch {
		case prev.TrimRight:
			text = strings.TrimLeft(text, " \t\r\n")
		case prev.Val == "%}" && p.opts != nil && p.opts.TrimBlocks && !prev.KeepRight:
			text = strings.TrimPrefix(text, "\n")
		}
	}

	if next != nil && next.Typ == TokenSymbol {
		switch {
		case next.TrimLeft:
			text = strings.TrimRight(text, " \t\r\n")
		case next.Val == "{%" && p.opts != nil && p.opts.LstripBlocks && !next.KeepLeft:
			text = lstripTrailingLine(text)
		}
	}

	return &rawText{text: text}
}

// lstripTrailingLine strips trailing spaces/tabs on the final line of
// text, provided that line is pure whitespace (lstrip_blocks only
// strips indentation, never content preceding a statement on the same
// line).
func lstripTrailingLine(text string) string {
	idx := strings.LastIndexByte(text, '\n')
	tail := text[idx+1:]
	if strings.TrimLeft(tail, " \t") != "" {
		return text
	}
	return text[:idx+1]
}

// parseSource lexes and parses a template source into a flat renderList
// plus the {% block %} nodes declared at any depth (by name), the
// {% extends %} parent name ("" if none), and the raw {% meta %}
// payloads, used by template.go to build a compiled Template.
func parseSource(name, src string, opts *Options, env *Environment) (*renderList, map[string]*blockNode, string, []string, error) {
	toks, err := lex(name, src, opts)
	if err != nil {
		return nil, nil, "", nil, err
	}
	p := newParser(name, toks, opts, env)
	blocks := map[string]*blockNode{}
	p.collectBlocks = func(b *blockNode) { blocks[b.name] = b }
	var metas []string
	p.collectMeta = func(raw string) { metas = append(metas, raw) }
	body, _, err := p.parseUntil()
	if err != nil {
		return nil, nil, "", nil, err
	}
	return body, blocks, p.extendsParent, metas, nil
}
