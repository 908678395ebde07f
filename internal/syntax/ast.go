// Package syntax parses the one-line annotation, expression, statement and
// header forms that make up a checked module.
package syntax

import (
	"strconv"
	"strings"
)

// Pos is a 1-based position inside the parsed text.
type Pos struct {
	Line int
	Col  int
}

// Expr is an expression node.
type Expr interface {
	Position() Pos
	String() string
	exprNode()
}

type Name struct {
	At Pos
	ID string
}

type Attribute struct {
	At    Pos
	Value Expr
	Attr  string
}

type Subscript struct {
	At    Pos
	Value Expr
	Index []Expr
}

type Call struct {
	At   Pos
	Func Expr
	Args []Argument
}

// Argument is one argument of a call. Star is 1 for *x and 2 for **x.
type Argument struct {
	At    Pos
	Name  string
	Star  int
	Value Expr
}

type List struct {
	At    Pos
	Elems []Expr
}

type Ellipsis struct {
	At Pos
}

// Str is a string literal; Value holds the unquoted contents.
type Str struct {
	At    Pos
	Value string
}

type Int struct {
	At    Pos
	Value string
}

type BinOp struct {
	At    Pos
	Op    string
	Left  Expr
	Right Expr
}

func (e *Name) Position() Pos      { return e.At }
func (e *Attribute) Position() Pos { return e.At }
func (e *Subscript) Position() Pos { return e.At }
func (e *Call) Position() Pos      { return e.At }
func (e *List) Position() Pos      { return e.At }
func (e *Ellipsis) Position() Pos  { return e.At }
func (e *Str) Position() Pos       { return e.At }
func (e *Int) Position() Pos       { return e.At }
func (e *BinOp) Position() Pos     { return e.At }

func (*Name) exprNode()      {}
func (*Attribute) exprNode() {}
func (*Subscript) exprNode() {}
func (*Call) exprNode()      {}
func (*List) exprNode()      {}
func (*Ellipsis) exprNode()  {}
func (*Str) exprNode()       {}
func (*Int) exprNode()       {}
func (*BinOp) exprNode()     {}

func (e *Name) String() string      { return e.ID }
func (e *Attribute) String() string { return e.Value.String() + "." + e.Attr }
func (e *Subscript) String() string { return e.Value.String() + "[" + joinExprs(e.Index) + "]" }
func (e *List) String() string      { return "[" + joinExprs(e.Elems) + "]" }
func (e *Ellipsis) String() string  { return "..." }
func (e *Str) String() string       { return strconv.Quote(e.Value) }
func (e *Int) String() string       { return e.Value }
func (e *BinOp) String() string     { return e.Left.String() + " " + e.Op + " " + e.Right.String() }

func (e *Call) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Func.String() + "(" + strings.Join(parts, ", ") + ")"
}

func (a Argument) String() string {
	switch {
	case a.Star == 1:
		return "*" + a.Value.String()
	case a.Star == 2:
		return "**" + a.Value.String()
	case a.Name != "":
		return a.Name + "=" + a.Value.String()
	}
	return a.Value.String()
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Stmt is a statement node.
type Stmt interface {
	Position() Pos
	stmtNode()
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	X Expr
}

// Assign covers `x = e`, `x: T = e` and the bare declaration `x: T`.
// Target is a Name or an Attribute.
type Assign struct {
	At         Pos
	Target     Expr
	Annotation Expr
	Value      Expr
}

type Return struct {
	At    Pos
	Value Expr
}

type Pass struct {
	At Pos
}

func (s *ExprStmt) Position() Pos { return s.X.Position() }
func (s *Assign) Position() Pos   { return s.At }
func (s *Return) Position() Pos   { return s.At }
func (s *Pass) Position() Pos     { return s.At }

func (*ExprStmt) stmtNode() {}
func (*Assign) stmtNode()   {}
func (*Return) stmtNode()   {}
func (*Pass) stmtNode()     {}

// TypeParamKind distinguishes T, *Ts and **P in a type-parameter list.
type TypeParamKind int

const (
	PlainTypeParam TypeParamKind = iota
	SpecTypeParam
)

type TypeParam struct {
	At   Pos
	Name string
	Kind TypeParamKind
}

// ParamKind is the syntactic form of a parameter declaration.
type ParamKind int

const (
	PlainParam ParamKind = iota
	StarParam
	DoubleStarParam
	// BareStar is the `*` marker that starts keyword-only parameters.
	BareStar
	// Slash is the `/` marker that ends positional-only parameters.
	Slash
)

type Param struct {
	At         Pos
	Name       string
	Kind       ParamKind
	Annotation Expr
	Default    Expr
}

// Def is a function header: name[type params](params) -> returns.
type Def struct {
	At         Pos
	Name       string
	TypeParams []TypeParam
	Params     []Param
	Returns    Expr
}

// Class is a class header: Name[type params](bases).
type Class struct {
	At         Pos
	Name       string
	TypeParams []TypeParam
	Bases      []Expr
}
