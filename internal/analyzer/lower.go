package analyzer

import (
	"fmt"

	"martianoff/pspec/internal/component"
	"martianoff/pspec/internal/syntax"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// Locator maps a position inside one parsed line to its source span.
type Locator func(syntax.Pos) pserr.Span

// Lowerer turns annotation expressions into types. Misused forms are
// reported and lowered to Unknown (or the gradual list) so checking goes on.
type Lowerer struct {
	scope *Scope
	arena *types.Arena
	at    Locator
	diags *pserr.List

	// Position is the slot of the annotation being lowered. Component uses
	// are recorded with it.
	Position component.Position
	Uses     []component.Use
	// Listed holds the ParamSpecs that appeared where a parameter list is
	// expected. Only those can make a function generic.
	Listed map[types.VarID]bool
}

func NewLowerer(scope *Scope, arena *types.Arena, at Locator, diags *pserr.List) *Lowerer {
	return &Lowerer{
		scope:    scope,
		arena:    arena,
		at:       at,
		diags:    diags,
		Position: component.AtOther,
		Listed:   make(map[types.VarID]bool),
	}
}

func (l *Lowerer) errorf(pos syntax.Pos, kind pserr.Kind, format string, args ...any) {
	l.diags.Add(pserr.At(l.at(pos), kind, fmt.Sprintf(format, args...)))
}

// Type lowers an annotation in an ordinary type position.
func (l *Lowerer) Type(e syntax.Expr) types.Type {
	switch x := e.(type) {
	case *syntax.Name:
		return l.name(x)
	case *syntax.Str:
		inner, ok := l.deref(x)
		if !ok {
			return types.Unknown{}
		}
		var t types.Type
		l.inside(x.At, func() { t = l.Type(inner) })
		return t
	case *syntax.Attribute:
		return l.attribute(x)
	case *syntax.Subscript:
		saved := l.Position
		l.Position = component.AtOther
		defer func() { l.Position = saved }()
		return l.subscript(x)
	case *syntax.BinOp:
		if x.Op == "|" {
			return types.NewUnion(l.Type(x.Left), l.Type(x.Right))
		}
	case *syntax.Ellipsis:
		l.errorf(x.At, pserr.InvalidTypeForm, "`...` is not allowed in this context")
		return types.Unknown{}
	case *syntax.List:
		l.errorf(x.At, pserr.InvalidTypeForm, "List expression is not allowed in this context")
		return types.Unknown{}
	}
	l.errorf(e.Position(), pserr.InvalidTypeForm, "Expected a type form, got `%s`", e)
	return types.Unknown{}
}

// Alias lowers the target of a type alias. ParamSpecs and type variables
// left free by the alias are closed over: a free ParamSpec accepts any
// arguments and a free type variable is Unknown.
func (l *Lowerer) Alias(e syntax.Expr) types.Type {
	t := l.Type(e)
	free := types.CollectFree(t)
	s := types.NewSubst()
	for _, v := range free.Specs {
		if !l.scope.InScope(v) {
			s.Shapes[v] = types.Gradual{}
		}
	}
	for _, v := range free.Types {
		if !l.scope.BindsType(v) {
			s.Types[v] = types.Unknown{}
		}
	}
	return s.Apply(t)
}

// deref parses a string forward reference. A string that is not a type
// expression, or names nothing, is reported.
func (l *Lowerer) deref(x *syntax.Str) (syntax.Expr, bool) {
	inner, err := syntax.ParseExpr(x.Value)
	if err == nil {
		if n, ok := inner.(*syntax.Name); ok && !l.resolvable(n.ID) {
			err = fmt.Errorf("unresolved name %s", n.ID)
		}
	}
	if err != nil {
		l.errorf(x.At, pserr.InvalidTypeForm, "Expected a type form")
		return nil, false
	}
	return inner, true
}

func (l *Lowerer) resolvable(name string) bool {
	if name == "None" || types.IsBuiltinClass(name) {
		return true
	}
	_, ok := l.scope.Lookup(name)
	return ok
}

// inside runs fn with every diagnostic placed at pos, for expressions parsed
// out of a string literal.
func (l *Lowerer) inside(pos syntax.Pos, fn func()) {
	saved := l.at
	l.at = func(syntax.Pos) pserr.Span { return saved(pos) }
	defer func() { l.at = saved }()
	fn()
}

func (l *Lowerer) name(x *syntax.Name) types.Type {
	if x.ID == "None" {
		return types.NoneType{}
	}
	sym, ok := l.scope.Lookup(x.ID)
	if !ok {
		if types.IsBuiltinClass(x.ID) {
			return &types.Class{Name: x.ID}
		}
		l.errorf(x.At, pserr.UnknownName, "Could not find name `%s`", x.ID)
		return types.Unknown{}
	}
	switch sym.Kind {
	case SymParamSpec:
		l.errorf(x.At, pserr.InvalidParamSpecContext, "`ParamSpec` is not allowed in this context")
		return types.Unknown{}
	case SymTypeVar:
		return sym.Var
	case SymClass:
		return bareClass(sym.Class)
	case SymAlias:
		return sym.Type
	case SymSpecial:
		switch sym.Special {
		case "Any":
			return types.Any{}
		case "Callable":
			return &types.Callable{Params: types.Gradual{}, Return: types.Unknown{}}
		case "tuple":
			return &types.Tuple{Rest: types.Unknown{}}
		case "dict":
			return &types.Dict{Key: types.Unknown{}, Value: types.Unknown{}}
		}
		l.errorf(x.At, pserr.InvalidTypeForm, "`%s` is not allowed in this context", x.ID)
		return types.Unknown{}
	}
	l.errorf(x.At, pserr.InvalidTypeForm, "Expected a type form, got variable `%s`", x.ID)
	return types.Unknown{}
}

// bareClass is a generic class named without type arguments.
func bareClass(c *ClassInfo) *types.Class {
	args := make([]types.Type, len(c.TypeParams))
	for i, tp := range c.TypeParams {
		if tp.IsSpec() {
			args[i] = &types.ShapeArg{Shape: types.Gradual{}}
		} else {
			args[i] = types.Unknown{}
		}
	}
	return &types.Class{Name: c.Name, Args: args}
}

func (l *Lowerer) attribute(x *syntax.Attribute) types.Type {
	if n, ok := x.Value.(*syntax.Name); ok {
		if sym, ok := l.scope.Lookup(n.ID); ok && sym.Kind == SymParamSpec {
			var which types.Which
			switch x.Attr {
			case "args":
				which = types.WhichArgs
			case "kwargs":
				which = types.WhichKwargs
			default:
				l.errorf(x.At, pserr.InvalidTypeForm, "`ParamSpec` has no attribute `%s`", x.Attr)
				return types.Unknown{}
			}
			c := &types.Component{Var: sym.Spec, Name: n.ID, Which: which}
			l.Uses = append(l.Uses, component.Use{Component: c, Position: l.Position, Span: l.at(x.At)})
			return c
		}
	}
	l.errorf(x.At, pserr.InvalidTypeForm, "Expected a type form, got `%s`", x)
	return types.Unknown{}
}

func (l *Lowerer) special(e syntax.Expr, name string) bool {
	n, ok := e.(*syntax.Name)
	if !ok {
		return false
	}
	sym, ok := l.scope.Lookup(n.ID)
	return ok && sym.Kind == SymSpecial && sym.Special == name
}

func (l *Lowerer) paramSpec(e syntax.Expr) (*Symbol, bool) {
	n, ok := e.(*syntax.Name)
	if !ok {
		return nil, false
	}
	sym, ok := l.scope.Lookup(n.ID)
	if !ok || sym.Kind != SymParamSpec {
		return nil, false
	}
	return sym, true
}

func (l *Lowerer) subscript(x *syntax.Subscript) types.Type {
	n, ok := x.Value.(*syntax.Name)
	if !ok {
		l.errorf(x.At, pserr.InvalidTypeForm, "Expected a type form, got `%s`", x)
		return types.Unknown{}
	}
	sym, found := l.scope.Lookup(n.ID)
	if !found {
		if types.IsBuiltinClass(n.ID) {
			args := make([]types.Type, len(x.Index))
			for i, e := range x.Index {
				args[i] = l.typeArg(e)
			}
			return &types.Class{Name: n.ID, Args: args}
		}
		l.errorf(n.At, pserr.UnknownName, "Could not find name `%s`", n.ID)
		return types.Unknown{}
	}
	switch sym.Kind {
	case SymClass:
		return l.classArgs(sym.Class, x)
	case SymSpecial:
		switch sym.Special {
		case "Callable":
			if len(x.Index) != 2 {
				l.errorf(x.At, pserr.InvalidTypeForm, "`Callable` takes a parameter list and a return type")
				return types.Unknown{}
			}
			params := l.ParamList(x.Index[0], false)
			return &types.Callable{Params: params, Return: l.Type(x.Index[1])}
		case "Concatenate":
			l.errorf(x.At, pserr.ConcatenateNotAllowed, "`%s` is not allowed in this context", x)
			return types.Unknown{}
		case "tuple":
			if len(x.Index) == 2 {
				if _, ok := x.Index[1].(*syntax.Ellipsis); ok {
					return &types.Tuple{Rest: l.typeArg(x.Index[0])}
				}
			}
			elems := make([]types.Type, len(x.Index))
			for i, e := range x.Index {
				elems[i] = l.typeArg(e)
			}
			return &types.Tuple{Elems: elems}
		case "dict":
			if len(x.Index) != 2 {
				l.errorf(x.At, pserr.InvalidTypeForm, "`dict` takes a key and a value type")
				return types.Unknown{}
			}
			return &types.Dict{Key: l.typeArg(x.Index[0]), Value: l.typeArg(x.Index[1])}
		}
	}
	l.errorf(x.At, pserr.InvalidTypeForm, "`%s` is not subscriptable", n.ID)
	return types.Unknown{}
}

// typeArg lowers an argument of a generic class in an ordinary type slot.
func (l *Lowerer) typeArg(e syntax.Expr) types.Type {
	if _, ok := l.paramSpec(e); ok {
		l.errorf(e.Position(), pserr.InvalidParamSpecContext, "`ParamSpec` cannot be used for type parameter")
		return types.Unknown{}
	}
	return l.Type(e)
}

// ParamList lowers an expression in a parameter-list slot: the first
// argument of Callable, or a ParamSpec parameter of a generic class.
func (l *Lowerer) ParamList(e syntax.Expr, classSlot bool) types.Shape {
	switch x := e.(type) {
	case *syntax.Ellipsis:
		return types.Gradual{}
	case *syntax.List:
		ts := make([]types.Type, len(x.Elems))
		for i, el := range x.Elems {
			ts[i] = l.Type(el)
		}
		return &types.Concrete{Params: types.PositionalOnlyParams(ts)}
	case *syntax.Str:
		inner, ok := l.deref(x)
		if !ok {
			return types.Gradual{}
		}
		var s types.Shape
		l.inside(x.At, func() { s = l.ParamList(inner, classSlot) })
		return s
	case *syntax.Name:
		if sym, ok := l.paramSpec(x); ok {
			l.Listed[sym.Spec] = true
			return &types.Generic{Var: sym.Spec, Name: x.ID}
		}
	case *syntax.Subscript:
		if l.special(x.Value, "Concatenate") {
			return l.concatenate(x)
		}
	}
	if classSlot {
		l.errorf(e.Position(), pserr.InvalidParamSpecContext, "Expected a valid ParamSpec expression")
	} else {
		l.errorf(e.Position(), pserr.InvalidTypeForm, "Expected a parameter list, `...`, a `ParamSpec` or `Concatenate`")
	}
	return types.Gradual{}
}

func (l *Lowerer) concatenate(x *syntax.Subscript) types.Shape {
	n := len(x.Index)
	if n < 2 {
		l.errorf(x.At, pserr.InvalidTypeForm, "`Concatenate` takes at least one type and a `ParamSpec`")
		return types.Gradual{}
	}
	prefix := make([]types.Type, n-1)
	for i, e := range x.Index[:n-1] {
		prefix[i] = l.Type(e)
	}
	return types.Concat(prefix, l.tail(x.Index[n-1]))
}

// tail lowers the last argument of Concatenate, which must be a ParamSpec
// or `...`.
func (l *Lowerer) tail(e syntax.Expr) types.Shape {
	switch x := e.(type) {
	case *syntax.Ellipsis:
		return types.Gradual{}
	case *syntax.Name:
		if sym, ok := l.paramSpec(x); ok {
			l.Listed[sym.Spec] = true
			return &types.Generic{Var: sym.Spec, Name: x.ID}
		}
	case *syntax.Str:
		if inner, ok := l.deref(x); ok {
			var s types.Shape
			l.inside(x.At, func() { s = l.tail(inner) })
			return s
		}
	}
	l.errorf(e.Position(), pserr.InvalidParamSpecContext, "Expected a `ParamSpec`")
	return types.Gradual{}
}

func (l *Lowerer) classArgs(c *ClassInfo, x *syntax.Subscript) types.Type {
	n := len(c.TypeParams)
	if n == 0 {
		l.errorf(x.At, pserr.InvalidTypeForm, "`%s` is not generic", c.Name)
		return &types.Class{Name: c.Name}
	}
	args := x.Index
	if n == 1 && c.TypeParams[0].IsSpec() && !l.isParamListForm(args) {
		// A class whose only parameter is a ParamSpec takes its list
		// without the inner brackets.
		args = []syntax.Expr{&syntax.List{At: args[0].Position(), Elems: args}}
	}
	if len(args) != n {
		l.errorf(x.At, pserr.InvalidTypeForm, "Expected %d type argument%s for `%s`, got %d", n, plural(n), c.Name, len(args))
		return bareClass(c)
	}
	out := make([]types.Type, n)
	for i, tp := range c.TypeParams {
		if tp.IsSpec() {
			out[i] = &types.ShapeArg{Shape: l.ParamList(args[i], true)}
		} else {
			out[i] = l.typeArg(args[i])
		}
	}
	return &types.Class{Name: c.Name, Args: out}
}

func (l *Lowerer) isParamListForm(args []syntax.Expr) bool {
	if len(args) != 1 {
		return false
	}
	switch x := args[0].(type) {
	case *syntax.List, *syntax.Ellipsis:
		return true
	case *syntax.Name:
		_, ok := l.paramSpec(x)
		return ok
	case *syntax.Subscript:
		return l.special(x.Value, "Concatenate")
	}
	return false
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
