package gojinja2

import "strings"

// importNode implements {% import "name" as alias [with|without context] %},
// binding alias to a Map namespace of the imported template's top-level
// variables and macros.
type importNode struct {
	source      Expression
	alias       string
	withContext bool
	tok         *Token
}

func (n *importNode) Render(ctx *RenderContext, _ *strings.Builder) error {
	ns, err := loadImportedModule(ctx, n.source, n.withContext, n.tok)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ns))
	for k := range ns {
		keys = append(keys, k)
	}
	ctx.Set(n.alias, MapOf(keys, ns))
	return nil
}

// fromImportNode implements {% from "name" import sym1, sym2 as alias2
// [with|without context] %}, binding each requested symbol directly.
type fromImportNode struct {
	source      Expression
	symbols     []fromImportSymbol
	withContext bool
	tok         *Token
}

type fromImportSymbol struct {
	name  string
	alias string
}

func (n *fromImportNode) Render(ctx *RenderContext, _ *strings.Builder) error {
	ns, err := loadImportedModule(ctx, n.source, n.withContext, n.tok)
	if err != nil {
		return err
	}
	for _, sym := range n.symbols {
		v, ok := ns[sym.name]
		if !ok {
			return newError(ErrTemplateNotFound, ctx.Template().name, n.tok.Line, n.tok.Col, "from",
				sym.name).withToken(n.tok)
		}
		ctx.Set(sym.alias, v)
	}
	return nil
}

func loadImportedModule(ctx *RenderContext, source Expression, withContext bool, tok *Token) (map[string]*Value, error) {
	v, err := source.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	env := ctx.Environment()
	if env == nil {
		return nil, newError(ErrTemplateEnvAbsent, "", tok.Line, tok.Col, "import").withToken(tok)
	}
	tpl, err := env.getTemplateFrom(ctx.Template().name, joinPath(ctx.Template().name, v.String()))
	if err != nil {
		return nil, err
	}
	var pub Context
	var seed map[string]*Value
	if withContext {
		pub = ctx.Public
		seed = mergeVisibleVars(ctx)
	}
	return tpl.loadModule(env, pub, seed, withContext)
}

func init() {
	RegisterTag("import", parseImport)
	RegisterTag("from", parseFrom)
}

func parseImport(p *Parser, startTok *Token) (Renderer, error) {
	source, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectKeyword("as"); err != nil {
		return nil, err
	}
	aliasTok, err := p.ExpectIdentifier()
	if err != nil {
		return nil, err
	}
	node := &importNode{source: source, alias: aliasTok.Val, tok: startTok}
	node.withContext = parseOptionalContextClause(p)
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	return node, nil
}

func parseFrom(p *Parser, startTok *Token) (Renderer, error) {
	source, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.ExpectKeyword("import"); err != nil {
		return nil, err
	}
	node := &fromImportNode{source: source, tok: startTok}
	for {
		nameTok, err := p.ExpectIdentifier()
		if err != nil {
			return nil, err
		}
		sym := fromImportSymbol{name: nameTok.Val, alias: nameTok.Val}
		if p.PeekKeyword("as") {
			p.Consume()
			aliasTok, err := p.ExpectIdentifier()
			if err != nil {
				return nil, err
			}
			sym.alias = aliasTok.Val
		}
		node.symbols = append(node.symbols, sym)
		if !p.MatchSymbol(",") {
			break
		}
	}
	node.withContext = parseOptionalContextClause(p)
	if _, err := p.ExpectSymbol("%}"); err != nil {
		return nil, err
	}
	return node, nil
}

// parseOptionalContextClause consumes an optional trailing "with
// context" / "without context" clause, defaulting to false (imports, per
// spec.md §13, do not see caller variables unless asked to).
func parseOptionalContextClause(p *Parser) bool {
	if p.PeekKeyword("with") {
		p.Consume()
		p.MatchKeyword("context")
		return true
	}
	if p.PeekKeyword("without") {
		p.Consume()
		p.MatchKeyword("context")
		return false
	}
	return false
}
