package syntax

import (
	"fmt"
	"strconv"

	"martianoff/pspec/pserr"
)

// Parser is a recursive-descent parser over one line of source. Parsing
// stops at the first syntax error.
type Parser struct {
	l    *Lexer
	cur  Token
	peek Token
	err  *pserr.Diagnostic
}

func NewParser(input string) *Parser {
	p := &Parser{l: NewLexer(input)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) failed() bool { return p.err != nil }

func (p *Parser) errorf(pos Pos, format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = pserr.At(pserr.Span{Line: pos.Line, Column: pos.Col}, pserr.SyntaxError, fmt.Sprintf(format, args...))
}

func (p *Parser) expect(t TokenType) Token {
	tok := p.cur
	if tok.Type != t {
		p.errorf(tok.Pos, "expected %s, found %s", t, describe(tok))
		return tok
	}
	p.next()
	return tok
}

func (p *Parser) accept(t TokenType) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	return false
}

func (p *Parser) finish() {
	if p.cur.Type != EOF {
		p.errorf(p.cur.Pos, "unexpected %s", describe(p.cur))
	}
}

func (p *Parser) result() error {
	if p.err != nil {
		return p.err
	}
	return nil
}

func describe(t Token) string {
	if t.Literal != "" && t.Type != EOF {
		return "`" + t.Literal + "`"
	}
	return t.Type.String()
}

// ParseExpr parses a single expression.
func ParseExpr(input string) (Expr, error) {
	p := NewParser(input)
	e := p.parseExpr()
	p.finish()
	return e, p.result()
}

// ParseStatement parses one simple statement.
func ParseStatement(input string) (Stmt, error) {
	p := NewParser(input)
	s := p.parseStatement()
	p.finish()
	return s, p.result()
}

// ParseDef parses a function header such as
// `f[**P, R](x: Callable[P, R], *args: P.args) -> R`.
func ParseDef(input string) (*Def, error) {
	p := NewParser(input)
	d := p.parseDef()
	p.finish()
	return d, p.result()
}

// ParseClass parses a class header such as `Y(Generic[U, P])` or
// `X2[T, **P]`.
func ParseClass(input string) (*Class, error) {
	p := NewParser(input)
	c := p.parseClass()
	p.finish()
	return c, p.result()
}

func (p *Parser) parseStatement() Stmt {
	start := p.cur.Pos
	if p.cur.Type == NAME {
		switch p.cur.Literal {
		case "return":
			p.next()
			if p.cur.Type == EOF {
				return &Return{At: start}
			}
			return &Return{At: start, Value: p.parseExpr()}
		case "pass":
			p.next()
			return &Pass{At: start}
		}
	}
	target := p.parseExpr()
	switch p.cur.Type {
	case COLON:
		p.next()
		s := &Assign{At: start, Target: target, Annotation: p.parseExpr()}
		if p.accept(ASSIGN) {
			s.Value = p.parseExpr()
		}
		p.checkTarget(target)
		return s
	case ASSIGN:
		p.next()
		s := &Assign{At: start, Target: target, Value: p.parseExpr()}
		p.checkTarget(target)
		return s
	}
	return &ExprStmt{X: target}
}

func (p *Parser) checkTarget(e Expr) {
	switch e.(type) {
	case *Name, *Attribute:
	default:
		p.errorf(e.Position(), "cannot assign to `%s`", e)
	}
}

func (p *Parser) parseExpr() Expr {
	left := p.parseSum()
	for p.cur.Type == PIPE && !p.failed() {
		at := p.cur.Pos
		p.next()
		left = &BinOp{At: at, Op: "|", Left: left, Right: p.parseSum()}
	}
	return left
}

func (p *Parser) parseSum() Expr {
	left := p.parsePostfix()
	for p.cur.Type == PLUS && !p.failed() {
		at := p.cur.Pos
		p.next()
		left = &BinOp{At: at, Op: "+", Left: left, Right: p.parsePostfix()}
	}
	return left
}

func (p *Parser) parsePostfix() Expr {
	e := p.parseAtom()
	for !p.failed() {
		switch p.cur.Type {
		case LBRACKET:
			at := p.cur.Pos
			p.next()
			index := p.parseExprList(RBRACKET)
			p.expect(RBRACKET)
			if len(index) == 0 {
				p.errorf(at, "empty subscript")
			}
			e = &Subscript{At: e.Position(), Value: e, Index: index}
		case LPAREN:
			p.next()
			args := p.parseArguments()
			p.expect(RPAREN)
			e = &Call{At: e.Position(), Func: e, Args: args}
		case DOT:
			p.next()
			name := p.expect(NAME)
			e = &Attribute{At: e.Position(), Value: e, Attr: name.Literal}
		default:
			return e
		}
	}
	return e
}

func (p *Parser) parseAtom() Expr {
	tok := p.cur
	switch tok.Type {
	case NAME:
		p.next()
		return &Name{At: tok.Pos, ID: tok.Literal}
	case INT:
		p.next()
		return &Int{At: tok.Pos, Value: tok.Literal}
	case STRING:
		p.next()
		v, err := unquote(tok.Literal)
		if err != nil {
			p.errorf(tok.Pos, "invalid string literal %s", tok.Literal)
		}
		return &Str{At: tok.Pos, Value: v}
	case ELLIPSIS:
		p.next()
		return &Ellipsis{At: tok.Pos}
	case LBRACKET:
		p.next()
		elems := p.parseExprList(RBRACKET)
		p.expect(RBRACKET)
		return &List{At: tok.Pos, Elems: elems}
	case LPAREN:
		p.next()
		e := p.parseExpr()
		p.expect(RPAREN)
		return e
	}
	p.errorf(tok.Pos, "expected an expression, found %s", describe(tok))
	p.next()
	return &Name{At: tok.Pos, ID: "<error>"}
}

// parseExprList parses comma-separated expressions up to end, allowing a
// trailing comma. The end token is not consumed.
func (p *Parser) parseExprList(end TokenType) []Expr {
	var out []Expr
	for p.cur.Type != end && p.cur.Type != EOF && !p.failed() {
		out = append(out, p.parseExpr())
		if !p.accept(COMMA) {
			break
		}
	}
	return out
}

func (p *Parser) parseArguments() []Argument {
	var out []Argument
	for p.cur.Type != RPAREN && p.cur.Type != EOF && !p.failed() {
		at := p.cur.Pos
		switch {
		case p.accept(STAR):
			out = append(out, Argument{At: at, Star: 1, Value: p.parseExpr()})
		case p.accept(DOUBLESTAR):
			out = append(out, Argument{At: at, Star: 2, Value: p.parseExpr()})
		case p.cur.Type == NAME && p.peek.Type == ASSIGN:
			name := p.cur.Literal
			p.next()
			p.next()
			out = append(out, Argument{At: at, Name: name, Value: p.parseExpr()})
		default:
			out = append(out, Argument{At: at, Value: p.parseExpr()})
		}
		if !p.accept(COMMA) {
			break
		}
	}
	return out
}

func (p *Parser) parseTypeParams() []TypeParam {
	if !p.accept(LBRACKET) {
		return nil
	}
	var out []TypeParam
	for p.cur.Type != RBRACKET && p.cur.Type != EOF && !p.failed() {
		at := p.cur.Pos
		kind := PlainTypeParam
		if p.accept(DOUBLESTAR) {
			kind = SpecTypeParam
		} else if p.cur.Type == STAR {
			p.errorf(at, "TypeVarTuple parameters are not supported")
			return out
		}
		name := p.expect(NAME)
		out = append(out, TypeParam{At: at, Name: name.Literal, Kind: kind})
		if !p.accept(COMMA) {
			break
		}
	}
	p.expect(RBRACKET)
	return out
}

func (p *Parser) parseDef() *Def {
	name := p.expect(NAME)
	d := &Def{At: name.Pos, Name: name.Literal}
	d.TypeParams = p.parseTypeParams()
	p.expect(LPAREN)
	for p.cur.Type != RPAREN && p.cur.Type != EOF && !p.failed() {
		d.Params = append(d.Params, p.parseParam())
		if !p.accept(COMMA) {
			break
		}
	}
	p.expect(RPAREN)
	if p.accept(ARROW) {
		d.Returns = p.parseExpr()
	}
	return d
}

func (p *Parser) parseParam() Param {
	at := p.cur.Pos
	switch {
	case p.accept(SLASH):
		return Param{At: at, Kind: Slash}
	case p.accept(DOUBLESTAR):
		prm := Param{At: at, Kind: DoubleStarParam, Name: p.expect(NAME).Literal}
		if p.accept(COLON) {
			prm.Annotation = p.parseExpr()
		}
		return prm
	case p.accept(STAR):
		if p.cur.Type != NAME {
			return Param{At: at, Kind: BareStar}
		}
		prm := Param{At: at, Kind: StarParam, Name: p.expect(NAME).Literal}
		if p.accept(COLON) {
			prm.Annotation = p.parseExpr()
		}
		return prm
	}
	prm := Param{At: at, Kind: PlainParam, Name: p.expect(NAME).Literal}
	if p.accept(COLON) {
		prm.Annotation = p.parseExpr()
	}
	if p.accept(ASSIGN) {
		prm.Default = p.parseExpr()
	}
	return prm
}

func (p *Parser) parseClass() *Class {
	name := p.expect(NAME)
	c := &Class{At: name.Pos, Name: name.Literal}
	c.TypeParams = p.parseTypeParams()
	if p.accept(LPAREN) {
		c.Bases = p.parseExprList(RPAREN)
		p.expect(RPAREN)
	}
	return c
}

func unquote(lit string) (string, error) {
	if len(lit) >= 2 && lit[0] == '\'' {
		// strconv.Unquote reads single quotes as a rune literal.
		inner := lit[1 : len(lit)-1]
		return strconv.Unquote(`"` + inner + `"`)
	}
	return strconv.Unquote(lit)
}
