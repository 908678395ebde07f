package checker

import (
	"martianoff/pspec/internal/analyzer"
	"martianoff/pspec/internal/component"
	"martianoff/pspec/internal/syntax"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

func (c *Checker) stmt(st syntax.Stmt, scope *analyzer.Scope, class *analyzer.ClassInfo, at analyzer.Locator) {
	e := &exprChecker{c: c, scope: scope, at: at}
	switch s := st.(type) {
	case *syntax.Pass:
	case *syntax.ExprStmt:
		e.expr(s.X)
	case *syntax.Return:
		c.ret(s, e)
	case *syntax.Assign:
		c.assign(s, e, class)
	}
}

func (c *Checker) ret(s *syntax.Return, e *exprChecker) {
	var t types.Type = types.NoneType{}
	if s.Value != nil {
		t = e.expr(s.Value)
	}
	if !e.scope.InFunction {
		e.errorf(s.At, pserr.BadReturn, "`return` outside of a function")
		return
	}
	if want := e.scope.Returns; want != nil && !types.Assignable(t, want) {
		e.errorf(s.At, pserr.BadReturn, "Returned type `%s` is not assignable to declared return type `%s`", t, want)
	}
}

func (c *Checker) assign(s *syntax.Assign, e *exprChecker, class *analyzer.ClassInfo) {
	if n, ok := s.Target.(*syntax.Name); ok {
		if s.Annotation == nil && c.declare(n.ID, s.Value, e.scope) {
			return
		}
		if e.isAlias(s) {
			c.alias(n.ID, s.Value, e)
			return
		}
	}
	if s.Annotation != nil {
		c.annotated(s, e, class)
		return
	}

	actual := e.expr(s.Value)
	switch t := s.Target.(type) {
	case *syntax.Name:
		if prev, ok := e.scope.LookupLocal(t.ID); ok && prev.Kind == analyzer.SymValue && prev.Declared {
			e.check(s.Value, actual, prev.Type)
			return
		}
		e.scope.Define(t.ID, &analyzer.Symbol{Kind: analyzer.SymValue, Type: actual})
	case *syntax.Attribute:
		obj := e.expr(t.Value)
		if want, ok := e.member(obj, t); ok {
			e.check(s.Value, actual, want)
		}
	}
}

// declare handles `P = ParamSpec("P")` and `T = TypeVar("T")`.
func (c *Checker) declare(name string, value syntax.Expr, scope *analyzer.Scope) bool {
	call, ok := value.(*syntax.Call)
	if !ok {
		return false
	}
	fn, ok := call.Func.(*syntax.Name)
	if !ok {
		return false
	}
	sym, ok := scope.Lookup(fn.ID)
	if !ok || sym.Kind != analyzer.SymSpecial {
		return false
	}
	switch sym.Special {
	case "ParamSpec":
		v := c.arena.Declare(name, scope.Owner, scope.Owner)
		scope.Define(name, &analyzer.Symbol{Kind: analyzer.SymParamSpec, Spec: v})
	case "TypeVar":
		scope.Define(name, &analyzer.Symbol{Kind: analyzer.SymTypeVar, Var: &types.TypeVar{Name: name}})
	default:
		return false
	}
	return true
}

func (c *Checker) alias(name string, value syntax.Expr, e *exprChecker) {
	l := analyzer.NewLowerer(e.scope, c.arena, e.at, c.diags)
	t := l.Alias(value)
	c.diags.Add(component.Validate(l.Uses, e.scope)...)
	e.scope.Define(name, &analyzer.Symbol{Kind: analyzer.SymAlias, Type: t})
}

// annotated handles `x: T` and `x: T = e`. In a class body the name becomes
// a field of the class.
func (c *Checker) annotated(s *syntax.Assign, e *exprChecker, class *analyzer.ClassInfo) {
	l := analyzer.NewLowerer(e.scope, c.arena, e.at, c.diags)
	l.Position = component.AtVariable
	declared := l.Type(s.Annotation)
	c.diags.Add(component.Validate(l.Uses, e.scope)...)

	if s.Value != nil {
		actual := e.expr(s.Value)
		if _, stub := s.Value.(*syntax.Ellipsis); !stub {
			e.check(s.Value, actual, declared)
		}
	}
	switch t := s.Target.(type) {
	case *syntax.Name:
		if class != nil {
			class.Fields[t.ID] = declared
			return
		}
		e.scope.Define(t.ID, &analyzer.Symbol{Kind: analyzer.SymValue, Type: declared, Declared: true})
	case *syntax.Attribute:
		obj := e.expr(t.Value)
		if cls, ok := obj.(*types.Class); ok {
			if info, ok := c.classes[cls.Name]; ok {
				if _, exists := info.Fields[t.Attr]; !exists {
					info.Fields[t.Attr] = declared
				}
			}
		}
	}
}

// isAlias reports whether an assignment defines a type alias: either it is
// annotated with TypeAlias, or its value can only be a type form.
func (e *exprChecker) isAlias(s *syntax.Assign) bool {
	if s.Annotation != nil {
		return e.special(s.Annotation, "TypeAlias")
	}
	return e.typeForm(s.Value)
}

func (e *exprChecker) typeForm(x syntax.Expr) bool {
	switch v := x.(type) {
	case *syntax.Subscript:
		n, ok := v.Value.(*syntax.Name)
		if !ok {
			return false
		}
		sym, ok := e.scope.Lookup(n.ID)
		if !ok {
			return types.IsBuiltinClass(n.ID)
		}
		switch sym.Kind {
		case analyzer.SymClass, analyzer.SymAlias:
			return true
		case analyzer.SymSpecial:
			switch sym.Special {
			case "Callable", "Concatenate", "tuple", "dict":
				return true
			}
		}
	case *syntax.BinOp:
		return v.Op == "|" && (e.typeForm(v.Left) || e.typeForm(v.Right))
	}
	return false
}
