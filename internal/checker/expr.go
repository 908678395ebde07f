package checker

import (
	"fmt"

	"martianoff/pspec/internal/analyzer"
	"martianoff/pspec/internal/syntax"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// exprChecker types expressions of one item in one scope.
type exprChecker struct {
	c     *Checker
	scope *analyzer.Scope
	at    analyzer.Locator
}

func (e *exprChecker) errorf(pos syntax.Pos, kind pserr.Kind, format string, args ...any) {
	e.c.diags.Add(pserr.At(e.at(pos), kind, fmt.Sprintf(format, args...)))
}

func (e *exprChecker) special(x syntax.Expr, name string) bool {
	n, ok := x.(*syntax.Name)
	if !ok {
		return false
	}
	sym, ok := e.scope.Lookup(n.ID)
	return ok && sym.Kind == analyzer.SymSpecial && sym.Special == name
}

// check reports a value of type actual stored where want is declared.
func (e *exprChecker) check(value syntax.Expr, actual, want types.Type) {
	if !types.Assignable(actual, want) {
		e.errorf(value.Position(), pserr.BadAssignment, "`%s` is not assignable to `%s`", actual, want)
	}
}

func (e *exprChecker) expr(x syntax.Expr) types.Type {
	switch v := x.(type) {
	case *syntax.Name:
		return e.name(v)
	case *syntax.Int:
		return &types.Literal{Base: "int", Value: v.Value}
	case *syntax.Str:
		return &types.Literal{Base: "str", Value: "'" + v.Value + "'"}
	case *syntax.Ellipsis:
		return types.Unknown{}
	case *syntax.Attribute:
		obj := e.expr(v.Value)
		t, ok := e.member(obj, v)
		if !ok {
			e.errorf(v.At, pserr.UnknownAttribute, "Object of class `%s` has no attribute `%s`", obj, v.Attr)
			return types.Unknown{}
		}
		return t
	case *syntax.Call:
		return e.call(v)
	case *syntax.BinOp:
		return e.binOp(v)
	case *syntax.List:
		elems := make([]types.Type, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = promote(e.expr(el))
		}
		var elem types.Type = types.Unknown{}
		if len(elems) > 0 {
			elem = types.NewUnion(elems...)
		}
		return &types.Class{Name: "list", Args: []types.Type{elem}}
	case *syntax.Subscript:
		e.expr(v.Value)
		for _, i := range v.Index {
			e.expr(i)
		}
		return types.Unknown{}
	}
	return types.Unknown{}
}

func (e *exprChecker) name(x *syntax.Name) types.Type {
	switch x.ID {
	case "None":
		return types.NoneType{}
	case "True", "False":
		return &types.Literal{Base: "bool", Value: x.ID}
	}
	sym, ok := e.scope.Lookup(x.ID)
	if !ok {
		if types.IsBuiltinClass(x.ID) {
			return &types.ClassObject{Name: x.ID}
		}
		e.errorf(x.At, pserr.UnknownName, "Could not find name `%s`", x.ID)
		return types.Unknown{}
	}
	switch sym.Kind {
	case analyzer.SymValue:
		return sym.Type
	case analyzer.SymClass:
		return &types.ClassObject{Name: sym.Class.Name}
	}
	return types.Unknown{}
}

// member looks up an attribute of a value. Gradual values have every
// attribute.
func (e *exprChecker) member(obj types.Type, x *syntax.Attribute) (types.Type, bool) {
	switch o := obj.(type) {
	case types.Unknown, types.Any:
		return types.Unknown{}, true
	case *types.Class:
		info, ok := e.c.classes[o.Name]
		if !ok {
			return nil, false
		}
		s := info.Subst(o)
		if f, ok := info.Fields[x.Attr]; ok {
			return s.Apply(f), true
		}
		if m, ok := info.Methods[x.Attr]; ok {
			return s.Apply(m), true
		}
	}
	return nil, false
}

func (e *exprChecker) binOp(x *syntax.BinOp) types.Type {
	l, r := promote(e.expr(x.Left)), promote(e.expr(x.Right))
	if types.IsGradual(l) || types.IsGradual(r) {
		return types.Unknown{}
	}
	if x.Op == "+" {
		lc, lok := l.(*types.Class)
		rc, rok := r.(*types.Class)
		if lok && rok && lc.Name == rc.Name && len(lc.Args) == 0 {
			switch lc.Name {
			case "int", "float", "complex", "str", "bytes":
				return lc
			}
		}
	}
	e.errorf(x.At, pserr.ArgumentTypeMismatch, "Operator `%s` is not supported between `%s` and `%s`", x.Op, l, r)
	return types.Unknown{}
}

// promote widens a literal to its class.
func promote(t types.Type) types.Type {
	if l, ok := t.(*types.Literal); ok {
		return l.Promote()
	}
	return t
}
