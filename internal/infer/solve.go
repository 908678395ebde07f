package infer

import (
	"fmt"

	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// SolveShape solves Concatenate[prefix..., v] against the parameter list of
// an actual callable. The prefix is stripped off actual by position, each
// stripped parameter accepting its prefix type, and v takes whatever
// remains. A variable that is already bound must receive an equal list; an
// actual too short for the prefix cannot agree with the binding either.
func (p *Pass) SolveShape(v types.VarID, prefix []types.Type, actual types.Shape) error {
	actual = types.Normalize(p.ApplyShape(actual))
	proposed, err := p.strip(prefix, actual)

	arena := p.inf.arena
	if b, ok := arena.Binding(v); ok {
		prev := p.ApplyShape(b)
		if kind, _ := pserr.KindOf(err); kind == pserr.ArityTooSmall {
			return pserr.Newf(pserr.InconsistentBinding, "`ParamSpec` %s is already bound to `(%s)` and cannot also be solved from `(%s)`",
				arena.Name(v), prev, actual)
		}
		if err != nil {
			return err
		}
		next := p.ApplyShape(proposed)
		if !consistent(prev, next) {
			return pserr.Newf(pserr.InconsistentBinding, "`ParamSpec` %s is already bound to `(%s)` and cannot also be `(%s)`",
				arena.Name(v), prev, next)
		}
		return nil
	}
	if err != nil {
		return err
	}
	return arena.Bind(v, proposed)
}

// strip removes the Concatenate prefix from a normalized actual list and
// returns what is left for the variable.
func (p *Pass) strip(prefix []types.Type, actual types.Shape) (types.Shape, error) {
	switch a := actual.(type) {
	case *types.Concrete:
		rest, err := types.DropPositional(a, len(prefix), func(i int, param types.Param) error {
			return p.checkPrefix(prefix[i], param.Type)
		})
		if err != nil {
			return nil, err
		}
		return rest, nil
	case types.Gradual:
		return types.Gradual{}, nil
	case *types.Generic:
		n := len(prefix)
		if len(a.Prefix) < n {
			if a.Var != types.GradualVar {
				return nil, pserr.Newf(pserr.ArityTooSmall, "expected at least %d positional parameter%s before `%s`, found %d",
					n, plural(n), a.Name, len(a.Prefix))
			}
			n = len(a.Prefix)
		}
		for i := 0; i < n; i++ {
			if err := p.checkPrefix(prefix[i], a.Prefix[i]); err != nil {
				return nil, err
			}
		}
		if len(a.Prefix) < len(prefix) {
			return types.Gradual{}, nil
		}
		rest := make([]types.Type, len(a.Prefix)-len(prefix))
		copy(rest, a.Prefix[len(prefix):])
		return types.Normalize(&types.Generic{Var: a.Var, Name: a.Name, Prefix: rest}), nil
	}
	panic(fmt.Sprintf("unexpected shape %T", actual))
}

// checkPrefix solves and checks one Concatenate prefix entry against the
// parameter that receives it. The parameter must accept the prefix type.
func (p *Pass) checkPrefix(want, param types.Type) error {
	if err := p.unify(want, param); err != nil {
		return err
	}
	w, got := p.Apply(want), p.Apply(param)
	if !types.Assignable(w, got) {
		return pserr.Newf(pserr.ArgumentTypeMismatch, "`%s` is not assignable to parameter type `%s`", w, got)
	}
	return nil
}

// consistent compares two solutions for the same variable. The gradual list
// is consistent with every list.
func consistent(a, b types.Shape) bool {
	a, b = types.Normalize(a), types.Normalize(b)
	if _, ok := a.(types.Gradual); ok {
		return true
	}
	if _, ok := b.(types.Gradual); ok {
		return true
	}
	return types.Equal(a, b)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
