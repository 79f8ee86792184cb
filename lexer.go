package gojinja2

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// eof is an invalid rune value used to signal end of input.
const eof rune = -1

// TokenType classifies a single lexical token.
type TokenType int

const (
	TokenError TokenType = iota
	TokenHTML
	TokenKeyword
	TokenIdentifier
	TokenString
	TokenInteger
	TokenFloat
	TokenSymbol
)

// tokenKeywords lists every reserved word recognized inside a block.
var tokenKeywords = map[string]struct{}{
	"for": {}, "endfor": {}, "if": {}, "elif": {}, "else": {}, "endif": {},
	"block": {}, "endblock": {}, "extends": {}, "macro": {}, "endmacro": {},
	"call": {}, "endcall": {}, "filter": {}, "endfilter": {}, "set": {}, "endset": {},
	"include": {}, "import": {}, "from": {}, "as": {}, "with": {}, "without": {},
	"context": {}, "scoped": {}, "recursive": {}, "ignore": {}, "missing": {},
	"do": {}, "meta": {}, "endmeta": {}, "and": {}, "or": {}, "not": {}, "in": {},
	"is": {}, "true": {}, "false": {}, "none": {}, "autoescape": {}, "endautoescape": {},
	"True": {}, "False": {}, "None": {},
}

// tokenSymbols is ordered longest-first so greedy matching prefers, e.g.,
// "{{-" over "{{".
var tokenSymbols = []string{
	"{{-", "-}}", "{%-", "-%}", "{#-", "-#}", "{{+", "+}}", "{%+", "+%}", "{#+", "+#}",
	"==", "!=", "<=", ">=", "**", "//", "{{", "}}", "{%", "%}", "{#", "#}",
	"+", "-", "*", "/", "%", "(", ")", "[", "]", "{", "}", ",", ".", "=", "|", "~", "<", ">", ":",
}

const tokenSpaceChars = " \t\r"
const tokenIdentStart = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
const tokenIdentCont = tokenIdentStart + "0123456789"
const tokenDigits = "0123456789"

var stringEscapeReplacer = strings.NewReplacer(
	`\\`, `\`, `\"`, `"`, `\'`, `'`, `\n`, "\n", `\t`, "\t", `\r`, "\r",
)

// Token is a single lexical element, the output of the fine lexer and
// the input to the parser.
type Token struct {
	Filename string
	Typ      TokenType
	Val      string
	Line     int
	Col      int

	// TrimLeft/TrimRight record "-" whitespace-control carried by a
	// block's open/close marker: force-strip adjoining HTML whitespace
	// regardless of the engine's trim_blocks/lstrip_blocks defaults.
	TrimLeft  bool
	TrimRight bool

	// KeepLeft/KeepRight record "+" whitespace-control: force-suppress
	// the trim_blocks/lstrip_blocks defaults for this marker even if
	// they would otherwise apply.
	KeepLeft  bool
	KeepRight bool
}

type lexerStateFn func() lexerStateFn

// lexer performs the rough block scan (HTML vs {{ }} / {% %} / {# #}
// regions, including "# " line-statements) and, within a block, the
// fine tokenization described in spec.md §4.1.
type lexer struct {
	name    string
	input   string
	opts    *Options
	start   int
	pos     int
	width   int
	tokens  []*Token
	errored bool

	startline, startcol int
	line, col           int

	// openKind tracks which block we're currently inside ("" outside any
	// block) so a mismatched close marker is reported precisely.
	openKind string
}

func lex(name, input string, opts *Options) ([]*Token, error) {
	if opts == nil {
		opts = newOptions()
	}
	if !opts.KeepTrailingNewline {
		input = strings.TrimSuffix(input, "\n")
	}
	l := &lexer{
		name: name, input: input, opts: opts,
		tokens: make([]*Token, 0, 128),
		line: 1, col: 1, startline: 1, startcol: 1,
	}
	l.run()
	if l.errored {
		last := l.tokens[len(l.tokens)-1]
		return nil, newError(ErrUnknown, name, last.Line, last.Col, "lexer", last.Val)
	}
	return l.tokens, nil
}

func (l *lexer) value() string  { return l.input[l.start:l.pos] }
func (l *lexer) length() int    { return l.pos - l.start }

func (l *lexer) emit(t TokenType) {
	tok := &Token{Filename: l.name, Typ: t, Val: l.value(), Line: l.startline, Col: l.startcol}
	if t == TokenString {
		tok.Val = stringEscapeReplacer.Replace(tok.Val)
	}
	if t == TokenSymbol {
		switch {
		case strings.HasSuffix(tok.Val, "-") && len(tok.Val) == 3:
			tok.TrimLeft = true
			tok.Val = strings.TrimSuffix(tok.Val, "-")
		case strings.HasPrefix(tok.Val, "-") && len(tok.Val) == 3:
			tok.TrimRight = true
			tok.Val = strings.TrimPrefix(tok.Val, "-")
		case strings.HasSuffix(tok.Val, "+") && len(tok.Val) == 3:
			tok.KeepLeft = true
			tok.Val = strings.TrimSuffix(tok.Val, "+")
		case strings.HasPrefix(tok.Val, "+") && len(tok.Val) == 3:
			tok.KeepRight = true
			tok.Val = strings.TrimPrefix(tok.Val, "+")
		}
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.pos
	l.startline, l.startcol = l.line, l.col
}

func (l *lexer) ignore() {
	l.start = l.pos
	l.startline, l.startcol = l.line, l.col
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) backup() {
	l.pos -= l.width
	if l.input[l.pos] == '\n' {
		l.line--
	} else {
		l.col--
	}
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) accept(what string) bool {
	if strings.ContainsRune(what, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRun(what string) {
	for strings.ContainsRune(what, l.next()) {
	}
	l.backup()
}

func (l *lexer) errorf(format string, args ...interface{}) lexerStateFn {
	tok := &Token{Filename: l.name, Typ: TokenError, Val: fmt.Sprintf(format, args...), Line: l.startline, Col: l.startcol}
	l.tokens = append(l.tokens, tok)
	l.errored = true
	return nil
}

func (l *lexer) emitRemainingHTML() {
	if l.pos > l.start {
		l.emit(TokenHTML)
	}
}

// atLineStart reports whether the cursor sits right after a newline (or
// at the very start of input), the trigger point for a "#"-prefixed
// line statement.
func (l *lexer) atLineStart() bool {
	if l.pos == 0 {
		return true
	}
	return l.input[l.pos-1] == '\n'
}

// scanLineStatement recognizes a line whose first non-whitespace rune is
// a bare "#" (not part of "{#"), translating it to a synthetic
// "{%" ... "%}" statement block terminated at the line's end.
func (l *lexer) scanLineStatement() bool {
	save := l.pos
	for l.peek() == ' ' || l.peek() == '\t' {
		l.next()
	}
	if !strings.HasPrefix(l.input[l.pos:], "#") || strings.HasPrefix(l.input[l.pos:], "{#") {
		l.pos = save
		return false
	}
	l.emitRemainingHTML()
	l.pos++ // consume '#'
	l.col++
	l.ignore()

	// Synthesize the statement-open marker.
	l.tokens = append(l.tokens, &Token{Filename: l.name, Typ: TokenSymbol, Val: "{%", Line: l.startline, Col: l.startcol})

	for {
		if l.peek() == '\n' || l.peek() == eof {
			break
		}
		l.tokenizeLineStatementStep()
		if l.errored {
			return true
		}
	}
	l.tokens = append(l.tokens, &Token{Filename: l.name, Typ: TokenSymbol, Val: "%}", Line: l.line, Col: l.col})
	return true
}

func (l *lexer) tokenizeLineStatementStep() {
	for state := l.stateCode; state != nil; {
		if l.peek() == '\n' || l.peek() == eof {
			return
		}
		state = state()
	}
}

func (l *lexer) ignoreComment() bool {
	if !strings.HasPrefix(l.input[l.pos:], "{#") {
		return false
	}
	l.emitRemainingHTML()
	open := l.pos
	for _, sym := range []string{"{#-", "{#+", "{#"} {
		if strings.HasPrefix(l.input[open:], sym) {
			l.pos += len(sym)
			l.col += len(sym)
			break
		}
	}
	for {
		if strings.HasPrefix(l.input[l.pos:], "-#}") || strings.HasPrefix(l.input[l.pos:], "+#}") || strings.HasPrefix(l.input[l.pos:], "#}") {
			for _, sym := range []string{"-#}", "+#}", "#}"} {
				if strings.HasPrefix(l.input[l.pos:], sym) {
					l.pos += len(sym)
					l.col += len(sym)
					break
				}
			}
			break
		}
		if l.next() == eof {
			l.errorf("comment not closed, reached EOF")
			return true
		}
	}
	l.ignore()
	return true
}

func (l *lexer) run() {
	for {
		if l.atLineStart() && l.scanLineStatement() {
			if l.errored {
				return
			}
			continue
		}
		if l.ignoreComment() {
			if l.errored {
				return
			}
			continue
		}
		if strings.HasPrefix(l.input[l.pos:], "{{") || strings.HasPrefix(l.input[l.pos:], "{%") {
			l.emitRemainingHTML()
			l.openKind = l.input[l.pos : l.pos+2]
			l.tokenizeBlock()
			if l.errored {
				return
			}
			continue
		}
		if l.next() == eof {
			break
		}
	}
	l.emitRemainingHTML()
}

func (l *lexer) tokenizeBlock() {
	for state := l.stateCode; state != nil; {
		state = state()
	}
}

func (l *lexer) stateCode() lexerStateFn {
outer:
	for {
		switch {
		case l.accept(tokenSpaceChars):
			l.ignore()
			continue
		case l.accept("\n"):
			return l.errorf("newline not allowed within a {{ }} / {%% %%} block")
		case l.accept(tokenIdentStart):
			return l.stateIdentifier
		case l.accept(tokenDigits):
			return l.stateNumber
		case l.accept(`"'`):
			return l.stateString
		}

		for _, sym := range tokenSymbols {
			if strings.HasPrefix(l.input[l.pos:], sym) {
				l.pos += len(sym)
				l.col += len(sym)
				l.emit(TokenSymbol)

				switch sym {
				case "%}", "-%}", "+%}":
					if l.openKind != "{%" {
						return l.errorf("unexpected statement-block end marker")
					}
					l.openKind = ""
					return nil
				case "}}", "-}}", "+}}":
					if l.openKind != "{{" {
						return l.errorf("unexpected expression-block end marker")
					}
					l.openKind = ""
					return nil
				}
				continue outer
			}
		}
		break
	}
	return nil
}

func (l *lexer) stateIdentifier() lexerStateFn {
	l.acceptRun(tokenIdentCont)
	val := l.value()
	if _, ok := tokenKeywords[val]; ok {
		l.emit(TokenKeyword)
	} else {
		l.emit(TokenIdentifier)
	}
	return l.stateCode
}

func (l *lexer) stateNumber() lexerStateFn {
	l.acceptRun(tokenDigits + "_")
	isFloat := false
	if l.peek() == '.' {
		save := l.pos
		l.next()
		if l.accept(tokenDigits) {
			isFloat = true
			l.acceptRun(tokenDigits + "_")
		} else {
			l.pos = save
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		save := l.pos
		l.next()
		l.accept("+-")
		if l.accept(tokenDigits) {
			isFloat = true
			l.acceptRun(tokenDigits)
		} else {
			l.pos = save
		}
	}
	if l.accept(tokenIdentCont) {
		return l.stateIdentifier()
	}
	if isFloat {
		l.emit(TokenFloat)
	} else {
		l.emit(TokenInteger)
	}
	return l.stateCode
}

func (l *lexer) stateString() lexerStateFn {
	quote := l.value()
	l.ignore()
	l.startcol--
	for !l.accept(quote) {
		switch l.next() {
		case '\\':
			switch l.peek() {
			case '"', '\'', '\\', 'n', 't', 'r':
				l.next()
			default:
				return l.errorf("unknown escape sequence")
			}
		case eof:
			return l.errorf("unexpected EOF, string not closed")
		case '\n':
			return l.errorf("newline in string literal not allowed")
		}
	}
	l.backup()
	l.emit(TokenString)
	l.next()
	l.ignore()
	return l.stateCode
}

// parseIntLiteral parses an integer token's text (with "_" separators),
// falling back to a float on overflow per spec.md §4.1.
func parseIntLiteral(s string) (int64, bool) {
	clean := strings.ReplaceAll(s, "_", "")
	n, err := strconv.ParseInt(clean, 10, 64)
	return n, err == nil
}

func parseFloatLiteral(s string) float64 {
	clean := strings.ReplaceAll(s, "_", "")
	f, _ := strconv.ParseFloat(clean, 64)
	return f
}
