package types

import (
	"fmt"
	"strings"

	"martianoff/pspec/pserr"
)

// ParamKind is the calling convention of one formal parameter.
type ParamKind int

const (
	PositionalOnly ParamKind = iota
	PositionalOrKeyword
	VarPositional
	KeywordOnly
	VarKeyword
)

func (k ParamKind) String() string {
	switch k {
	case PositionalOnly:
		return "positional-only"
	case PositionalOrKeyword:
		return "positional-or-keyword"
	case VarPositional:
		return "*args"
	case KeywordOnly:
		return "keyword-only"
	case VarKeyword:
		return "**kwargs"
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// AcceptsPositional reports whether an argument can reach the parameter by
// position.
func (k ParamKind) AcceptsPositional() bool {
	return k == PositionalOnly || k == PositionalOrKeyword || k == VarPositional
}

// AcceptsKeyword reports whether an argument can reach the parameter by name.
func (k ParamKind) AcceptsKeyword() bool {
	return k == PositionalOrKeyword || k == KeywordOnly
}

// Param is one formal parameter. Name is empty for parameters introduced by
// Callable[[...], R] or Concatenate.
type Param struct {
	Name       string
	Kind       ParamKind
	Type       Type
	HasDefault bool
}

func (p Param) String() string {
	var sb strings.Builder
	switch p.Kind {
	case PositionalOnly:
		sb.WriteString(p.Type.String())
	case VarPositional:
		sb.WriteString("*" + p.Name + ": " + p.Type.String())
	case VarKeyword:
		sb.WriteString("**" + p.Name + ": " + p.Type.String())
	default:
		sb.WriteString(p.Name + ": " + p.Type.String())
	}
	if p.HasDefault {
		sb.WriteString(" = ...")
	}
	return sb.String()
}

// Shape is the parameter list of a callable. Exactly three variants exist:
// *Concrete, Gradual and *Generic. Consumers switch over all three.
type Shape interface {
	fmt.Stringer
	isShape()
}

// Concrete is a fully known ordered parameter list. Build it with
// NewConcrete so the ordering invariants hold.
type Concrete struct {
	Params []Param
}

func (c *Concrete) String() string { return c.paramsString() }
func (*Concrete) isShape()         {}

func (c *Concrete) paramsString() string {
	parts := make([]string, 0, len(c.Params)+1)
	starred := false
	for _, p := range c.Params {
		if p.Kind == VarPositional {
			starred = true
		}
		if p.Kind == KeywordOnly && !starred {
			parts = append(parts, "*")
			starred = true
		}
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ", ")
}

// Gradual is the open "..." parameter list that accepts anything.
type Gradual struct{}

func (Gradual) String() string { return "..." }
func (Gradual) isShape()       {}

// Generic is an unresolved reference to a ParamSpec variable with zero or
// more positional parameter types concatenated in front of it. A Generic over
// GradualVar is a prefix followed by an open tail (Concatenate[int, ...]).
type Generic struct {
	Var    VarID
	Name   string
	Prefix []Type
}

func (g *Generic) String() string {
	parts := make([]string, 0, len(g.Prefix)+1)
	for _, p := range g.Prefix {
		parts = append(parts, p.String())
	}
	if g.Var == GradualVar {
		parts = append(parts, "...")
	} else {
		parts = append(parts, "**"+g.Name)
	}
	return strings.Join(parts, ", ")
}
func (*Generic) isShape() {}

// NewConcrete validates the calling-convention ordering of params:
// positional-only, positional-or-keyword, *args, keyword-only, **kwargs, with
// at most one of each variadic kind, unique names and no required positional
// parameter after a defaulted one.
func NewConcrete(params []Param) (*Concrete, error) {
	rank := func(k ParamKind) int {
		switch k {
		case PositionalOnly:
			return 0
		case PositionalOrKeyword:
			return 1
		case VarPositional:
			return 2
		case KeywordOnly:
			return 3
		}
		return 4
	}
	last := -1
	seenDefault := false
	names := make(map[string]bool)
	for _, p := range params {
		r := rank(p.Kind)
		if r < last {
			return nil, pserr.Newf(pserr.InvalidShape, "%s parameter%s cannot follow a %s parameter", p.Kind, quoteName(p.Name), kindAtRank(last))
		}
		if r == last && (p.Kind == VarPositional || p.Kind == VarKeyword) {
			return nil, pserr.Newf(pserr.InvalidShape, "duplicate %s parameter", p.Kind)
		}
		last = r
		if p.Name != "" {
			if names[p.Name] {
				return nil, pserr.Newf(pserr.InvalidShape, "duplicate parameter `%s`", p.Name)
			}
			names[p.Name] = true
		}
		if p.Kind == PositionalOnly || p.Kind == PositionalOrKeyword {
			if p.HasDefault {
				seenDefault = true
			} else if seenDefault {
				return nil, pserr.Newf(pserr.InvalidShape, "parameter%s without a default follows a parameter with a default", quoteName(p.Name))
			}
		}
	}
	return &Concrete{Params: params}, nil
}

func quoteName(name string) string {
	if name == "" {
		return ""
	}
	return " `" + name + "`"
}

func kindAtRank(r int) ParamKind {
	return []ParamKind{PositionalOnly, PositionalOrKeyword, VarPositional, KeywordOnly, VarKeyword}[r]
}

// PositionalOnlyParams turns a list of types into unnamed positional-only
// parameters, the form used by Callable[[...], R] and Concatenate prefixes.
func PositionalOnlyParams(ts []Type) []Param {
	out := make([]Param, len(ts))
	for i, t := range ts {
		out[i] = Param{Kind: PositionalOnly, Type: t}
	}
	return out
}

// Equal is structural equality of parameter lists. Concrete lists are equal
// when count, kind sequence and parameter types match, and names match for
// parameters that can be passed by keyword. Defaults are not compared.
func Equal(a, b Shape) bool {
	a, b = Normalize(a), Normalize(b)
	switch x := a.(type) {
	case *Concrete:
		y, ok := b.(*Concrete)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			p, q := x.Params[i], y.Params[i]
			if p.Kind != q.Kind || !Identical(p.Type, q.Type) {
				return false
			}
			if p.Kind.AcceptsKeyword() && p.Name != q.Name {
				return false
			}
		}
		return true
	case Gradual:
		_, ok := b.(Gradual)
		return ok
	case *Generic:
		y, ok := b.(*Generic)
		if !ok || x.Var != y.Var || len(x.Prefix) != len(y.Prefix) {
			return false
		}
		for i := range x.Prefix {
			if !Identical(x.Prefix[i], y.Prefix[i]) {
				return false
			}
		}
		return true
	}
	panic(fmt.Sprintf("unexpected shape %T", a))
}

// Normalize rewrites equivalent spellings of a shape to one canonical form:
// an empty prefix over GradualVar becomes Gradual, and a concrete list ending
// in *args: P.args, **kwargs: P.kwargs whose other parameters are all
// positional becomes Generic(P, their types).
func Normalize(s Shape) Shape {
	switch x := s.(type) {
	case *Generic:
		if x.Var == GradualVar && len(x.Prefix) == 0 {
			return Gradual{}
		}
		return x
	case *Concrete:
		n := len(x.Params)
		if n < 2 {
			return x
		}
		args, ok1 := x.Params[n-2].Type.(*Component)
		kwargs, ok2 := x.Params[n-1].Type.(*Component)
		if !ok1 || !ok2 || x.Params[n-2].Kind != VarPositional || x.Params[n-1].Kind != VarKeyword {
			return x
		}
		if args.Which != WhichArgs || kwargs.Which != WhichKwargs || args.Var != kwargs.Var {
			return x
		}
		prefix := make([]Type, 0, n-2)
		for _, p := range x.Params[:n-2] {
			if p.Kind != PositionalOnly && p.Kind != PositionalOrKeyword {
				return x
			}
			prefix = append(prefix, p.Type)
		}
		return &Generic{Var: args.Var, Name: args.Name, Prefix: prefix}
	case Gradual:
		return x
	}
	panic(fmt.Sprintf("unexpected shape %T", s))
}

// ForwardedVar reports the ParamSpec a concrete list forwards through its
// *args: P.args / **kwargs: P.kwargs pair, if it has one.
func ForwardedVar(c *Concrete) (VarID, string, bool) {
	var args, kwargs *Component
	for _, p := range c.Params {
		comp, ok := p.Type.(*Component)
		if !ok {
			continue
		}
		if p.Kind == VarPositional && comp.Which == WhichArgs {
			args = comp
		}
		if p.Kind == VarKeyword && comp.Which == WhichKwargs {
			kwargs = comp
		}
	}
	if args == nil || kwargs == nil || args.Var != kwargs.Var {
		return 0, "", false
	}
	return args.Var, args.Name, true
}

// DropPositional strips the first n positional-capable parameters off c and
// returns the remainder. A *args parameter absorbs any strips left when it is
// reached and stays in the remainder. check is called with the index into the
// stripped prefix and the parameter receiving it; its error aborts the strip.
// Too few positional parameters, or a keyword-only one among the first n, is
// ArityTooSmall.
func DropPositional(c *Concrete, n int, check func(i int, p Param) error) (*Concrete, error) {
	idx := 0
	for k := 0; k < n; k++ {
		if idx >= len(c.Params) {
			return nil, pserr.Newf(pserr.ArityTooSmall, "expected at least %d positional parameter%s, found %d", n, plural(n), k)
		}
		p := c.Params[idx]
		switch p.Kind {
		case PositionalOnly, PositionalOrKeyword:
			idx++
		case VarPositional:
		default:
			return nil, pserr.Newf(pserr.ArityTooSmall, "expected at least %d positional parameter%s, found %d", n, plural(n), k)
		}
		if check != nil {
			if err := check(k, p); err != nil {
				return nil, err
			}
		}
	}
	rest := make([]Param, len(c.Params)-idx)
	copy(rest, c.Params[idx:])
	return &Concrete{Params: rest}, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
