package analyzer

import (
	"errors"

	"martianoff/pspec/internal/component"
	"martianoff/pspec/internal/syntax"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// Signature is a lowered function header.
type Signature struct {
	Name     string
	Callable *types.Callable
	// Scope is the function's own scope. It binds the function's type
	// parameters and defines its parameters.
	Scope *Scope
}

// LowerDef lowers a function header declared in scope. self is the class
// declaring the function as a method, nil for plain functions.
//
// The function is generic over its explicit type parameters plus every
// type variable, and every ParamSpec used as a parameter list, that no
// enclosing scope binds. A ParamSpec mentioned only through P.args or
// P.kwargs does not make the function generic.
func LowerDef(d *syntax.Def, scope *Scope, arena *types.Arena, at Locator, diags *pserr.List, self *ClassInfo) *Signature {
	owner := "def " + d.Name
	fs := scope.Child(owner)
	fs.InFunction = true
	explicit := declareTypeParams(d.TypeParams, fs, arena, owner)
	fs.Bind(explicit...)

	l := NewLowerer(fs, arena, at, diags)
	slash := -1
	for i, p := range d.Params {
		if p.Kind == syntax.Slash {
			slash = i
		}
	}
	var params []types.Param
	annotated := make(map[string]bool)
	kwOnly := false
	for i, p := range d.Params {
		prm := types.Param{Name: p.Name, HasDefault: p.Default != nil}
		switch {
		case p.Kind == syntax.Slash:
			continue
		case p.Kind == syntax.BareStar:
			kwOnly = true
			continue
		case p.Kind == syntax.StarParam:
			prm.Kind = types.VarPositional
			l.Position = component.AtVarPositional
			kwOnly = true
		case p.Kind == syntax.DoubleStarParam:
			prm.Kind = types.VarKeyword
			l.Position = component.AtVarKeyword
		case i < slash:
			prm.Kind = types.PositionalOnly
			l.Position = component.AtParameter
		case kwOnly:
			prm.Kind = types.KeywordOnly
			l.Position = component.AtParameter
		default:
			prm.Kind = types.PositionalOrKeyword
			l.Position = component.AtParameter
		}
		switch {
		case p.Annotation != nil:
			prm.Type = l.Type(p.Annotation)
			annotated[p.Name] = true
		case self != nil && len(params) == 0:
			prm.Type = self.Self()
		default:
			prm.Type = types.Unknown{}
		}
		params = append(params, prm)
	}

	var ret types.Type = types.Unknown{}
	if d.Returns != nil {
		l.Position = component.AtReturn
		ret = l.Type(d.Returns)
		fs.Returns = ret
	} else {
		fs.Returns = nil
	}

	var shape types.Shape
	c, err := types.NewConcrete(params)
	if err != nil {
		var diag *pserr.Diagnostic
		if errors.As(err, &diag) {
			diags.Add(diag.WithSpan(at(d.At)))
		}
		shape = types.Gradual{}
	} else {
		shape = c
	}

	sig := &types.Callable{Params: shape, Return: ret}
	free := types.CollectFree(sig)
	var implicit []types.TypeParam
	for _, v := range free.Types {
		if !fs.BindsType(v) {
			implicit = append(implicit, types.TypeParam{Var: v, Name: v.Name})
		}
	}
	for i, v := range free.Specs {
		if l.Listed[v] && !fs.InScope(v) {
			implicit = append(implicit, types.TypeParam{Spec: v, Name: free.SpecNames[i]})
		}
	}
	fs.Bind(implicit...)
	sig.TypeParams = append(explicit, implicit...)

	diags.Add(component.Validate(l.Uses, fs)...)

	for _, prm := range params {
		t := prm.Type
		_, isComponent := t.(*types.Component)
		switch {
		case prm.Kind == types.VarPositional && !isComponent:
			t = &types.Tuple{Rest: t}
		case prm.Kind == types.VarKeyword && !isComponent:
			t = &types.Dict{Key: types.Str(), Value: t}
		}
		fs.Define(prm.Name, &Symbol{Kind: SymValue, Type: t, Declared: annotated[prm.Name]})
	}
	return &Signature{Name: d.Name, Callable: sig, Scope: fs}
}

func declareTypeParams(tps []syntax.TypeParam, scope *Scope, arena *types.Arena, owner string) []types.TypeParam {
	out := make([]types.TypeParam, 0, len(tps))
	for _, tp := range tps {
		if tp.Kind == syntax.SpecTypeParam {
			v := arena.Declare(tp.Name, owner, owner)
			scope.Define(tp.Name, &Symbol{Kind: SymParamSpec, Spec: v})
			out = append(out, types.TypeParam{Spec: v, Name: tp.Name})
			continue
		}
		v := &types.TypeVar{Name: tp.Name}
		scope.Define(tp.Name, &Symbol{Kind: SymTypeVar, Var: v})
		out = append(out, types.TypeParam{Var: v, Name: tp.Name})
	}
	return out
}

// DropFirst removes the leading parameter of a method signature, giving the
// signature as called through an instance.
func DropFirst(c *types.Callable) *types.Callable {
	conc, ok := c.Params.(*types.Concrete)
	if !ok || len(conc.Params) == 0 {
		return c
	}
	k := conc.Params[0].Kind
	if k != types.PositionalOnly && k != types.PositionalOrKeyword {
		return c
	}
	rest := append([]types.Param{}, conc.Params[1:]...)
	return &types.Callable{TypeParams: c.TypeParams, Params: &types.Concrete{Params: rest}, Return: c.Return}
}
