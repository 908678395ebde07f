package checker

import (
	"martianoff/pspec/internal/analyzer"
	"martianoff/pspec/internal/component"
	"martianoff/pspec/internal/matcher"
	"martianoff/pspec/internal/syntax"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

func (e *exprChecker) call(x *syntax.Call) types.Type {
	if n, ok := x.Func.(*syntax.Name); ok {
		if sym, ok := e.scope.Lookup(n.ID); ok && sym.Kind == analyzer.SymSpecial {
			switch sym.Special {
			case "reveal_type":
				return e.revealType(x)
			case "assert_type":
				return e.assertType(x)
			}
		}
	}
	callee := e.expr(x.Func)
	return e.apply(callee, e.args(x.Args), e.at(x.At))
}

func (e *exprChecker) args(list []syntax.Argument) []matcher.Arg {
	out := make([]matcher.Arg, len(list))
	for i, a := range list {
		star := matcher.NoStar
		switch a.Star {
		case 1:
			star = matcher.StarArgs
		case 2:
			star = matcher.StarKwargs
		}
		out[i] = matcher.Arg{Name: a.Name, Type: e.expr(a.Value), Star: star, Span: e.at(a.At)}
	}
	return out
}

// apply types a call of callee with already evaluated arguments.
func (e *exprChecker) apply(callee types.Type, args []matcher.Arg, span pserr.Span) types.Type {
	switch f := callee.(type) {
	case *types.Callable:
		return e.invoke(f, args, span)
	case *types.ClassObject:
		if info, ok := e.c.classes[f.Name]; ok {
			return e.invoke(info.Constructor(), args, span)
		}
		return &types.Class{Name: f.Name}
	case types.Unknown, types.Any:
		return types.Unknown{}
	case *types.Union:
		results := make([]types.Type, len(f.Members))
		for i, m := range f.Members {
			results[i] = e.apply(m, args, span)
		}
		return types.NewUnion(results...)
	}
	e.c.diags.Add(pserr.At(span, pserr.NotCallable, "Expected a callable, got `"+callee.String()+"`"))
	return types.Unknown{}
}

// invoke solves one call of a signature. A call whose ParamSpec could not be
// bound consistently is typed Unknown.
func (e *exprChecker) invoke(f *types.Callable, args []matcher.Arg, span pserr.Span) types.Type {
	pass := e.c.inf.NewPass()
	sig := pass.Instantiate(f)
	res := matcher.Bind(sig.Params, args, pass, span)
	e.c.diags.Add(res.Diagnostics...)
	if res.Has(pserr.InconsistentBinding) {
		return types.Unknown{}
	}
	return pass.Specialize(sig.Return)
}

func (e *exprChecker) revealType(x *syntax.Call) types.Type {
	if len(x.Args) != 1 || x.Args[0].Name != "" || x.Args[0].Star != 0 {
		e.errorf(x.At, pserr.ArityMismatch, "`reveal_type` takes exactly one positional argument")
		e.args(x.Args)
		return types.Unknown{}
	}
	t := e.expr(x.Args[0].Value)
	e.errorf(x.At, pserr.RevealedType, "revealed type: %s", t)
	return t
}

func (e *exprChecker) assertType(x *syntax.Call) types.Type {
	if len(x.Args) != 2 || x.Args[0].Star != 0 || x.Args[1].Star != 0 {
		e.errorf(x.At, pserr.ArityMismatch, "`assert_type` takes a value and a type")
		e.args(x.Args)
		return types.Unknown{}
	}
	t := e.expr(x.Args[0].Value)
	l := analyzer.NewLowerer(e.scope, e.c.arena, e.at, e.c.diags)
	want := l.Type(x.Args[1].Value)
	e.c.diags.Add(component.Validate(l.Uses, e.scope)...)
	if !types.Identical(t, want) {
		e.errorf(x.At, pserr.AssertTypeMismatch, "assert_type(%s, %s) failed", t, want)
	}
	return t
}
