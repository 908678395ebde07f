package analyzer

import (
	"martianoff/pspec/internal/syntax"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// LowerClass lowers a class header declared in scope and returns the class
// with its body scope. Type parameters come from the header's own list and
// from a Generic[...] base, in that order.
func LowerClass(c *syntax.Class, scope *Scope, arena *types.Arena, at Locator, diags *pserr.List) (*ClassInfo, *Scope) {
	owner := "class " + c.Name
	cs := scope.Child(owner)
	cs.InFunction = false
	cs.Returns = nil
	tps := declareTypeParams(c.TypeParams, cs, arena, owner)

	l := NewLowerer(cs, arena, at, diags)
	for _, base := range c.Bases {
		sub, ok := base.(*syntax.Subscript)
		if !ok || !l.special(sub.Value, "Generic") {
			l.Type(base)
			continue
		}
		for _, e := range sub.Index {
			tp, ok := l.genericParam(e)
			if !ok {
				continue
			}
			if !containsParam(tps, tp) {
				tps = append(tps, tp)
			}
		}
	}
	cs.Bind(tps...)

	info := NewClassInfo(c.Name)
	info.TypeParams = tps
	return info, cs
}

func (l *Lowerer) genericParam(e syntax.Expr) (types.TypeParam, bool) {
	if n, ok := e.(*syntax.Name); ok {
		if sym, ok := l.scope.Lookup(n.ID); ok {
			switch sym.Kind {
			case SymParamSpec:
				return types.TypeParam{Spec: sym.Spec, Name: n.ID}, true
			case SymTypeVar:
				return types.TypeParam{Var: sym.Var, Name: n.ID}, true
			}
		}
	}
	l.errorf(e.Position(), pserr.InvalidTypeForm, "Expected a type variable or `ParamSpec` in `Generic`, got `%s`", e)
	return types.TypeParam{}, false
}

func containsParam(tps []types.TypeParam, tp types.TypeParam) bool {
	for _, x := range tps {
		if x.IsSpec() == tp.IsSpec() && x.Var == tp.Var && x.Spec == tp.Spec {
			return true
		}
	}
	return false
}
