package infer

import (
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// Assign solves the pass's variables so that a value of type actual can be
// passed where formal is expected, then checks assignability under the
// solution. The returned diagnostic has no position and, for a plain type
// mismatch, no message; callers describe the argument themselves.
func (p *Pass) Assign(formal, actual types.Type) error {
	actual = p.open(formal, actual)
	if err := p.unify(formal, actual); err != nil {
		return err
	}
	if !types.Assignable(p.Apply(actual), p.Apply(formal)) {
		return pserr.New(pserr.ArgumentTypeMismatch, "")
	}
	return nil
}

// open instantiates generic callables among the actual's members and turns
// class objects into constructors where a callable is expected.
func (p *Pass) open(formal, actual types.Type) types.Type {
	switch a := actual.(type) {
	case *types.Callable:
		return p.Borrow(a)
	case *types.ClassObject:
		if _, ok := p.Apply(formal).(*types.Callable); ok && p.inf.Constructor != nil {
			if c, ok := p.inf.Constructor(a); ok {
				return p.Borrow(c)
			}
		}
	case *types.Union:
		members := make([]types.Type, len(a.Members))
		for i, m := range a.Members {
			members[i] = p.open(formal, m)
		}
		return types.NewUnion(members...)
	}
	return actual
}

func (p *Pass) unify(formal, actual types.Type) error {
	switch f := formal.(type) {
	case *types.TypeVar:
		if _, owned := p.vars[f]; !owned {
			return nil
		}
		if _, bound := p.subst.Types[f]; bound {
			return nil
		}
		return p.bind(f, actual)
	case *types.Callable:
		switch a := actual.(type) {
		case *types.Callable:
			if err := p.unifyShape(f.Params, a.Params); err != nil {
				return err
			}
			return p.unify(f.Return, a.Return)
		case *types.Union:
			for _, m := range a.Members {
				if err := p.unify(f, m); err != nil {
					return err
				}
			}
		}
	case *types.Class:
		a, ok := actual.(*types.Class)
		if !ok || a.Name != f.Name || len(a.Args) != len(f.Args) {
			return nil
		}
		for i := range f.Args {
			fs, ok1 := f.Args[i].(*types.ShapeArg)
			as, ok2 := a.Args[i].(*types.ShapeArg)
			if ok1 && ok2 {
				if err := p.unifyShape(fs.Shape, as.Shape); err != nil {
					return err
				}
				continue
			}
			if err := p.unify(f.Args[i], a.Args[i]); err != nil {
				return err
			}
		}
	case *types.Tuple:
		a, ok := actual.(*types.Tuple)
		if !ok {
			return nil
		}
		for i := 0; i < len(f.Elems) && i < len(a.Elems); i++ {
			if err := p.unify(f.Elems[i], a.Elems[i]); err != nil {
				return err
			}
		}
		if f.Rest != nil && a.Rest != nil {
			return p.unify(f.Rest, a.Rest)
		}
	case *types.Dict:
		if a, ok := actual.(*types.Dict); ok {
			if err := p.unify(f.Key, a.Key); err != nil {
				return err
			}
			return p.unify(f.Value, a.Value)
		}
	case *types.Union:
		// X | T: the variable takes whatever the fixed members do not cover.
		var free *types.TypeVar
		for _, m := range f.Members {
			if v, ok := m.(*types.TypeVar); ok {
				if _, owned := p.vars[v]; owned {
					if free != nil {
						return nil
					}
					free = v
					continue
				}
			}
			if types.Assignable(actual, m) {
				return nil
			}
		}
		if free != nil {
			return p.unify(free, actual)
		}
	}
	return nil
}

func (p *Pass) unifyShape(formal, actual types.Shape) error {
	switch f := types.Normalize(formal).(type) {
	case *types.Generic:
		if _, owned := p.specs[f.Var]; owned {
			return p.SolveShape(f.Var, f.Prefix, actual)
		}
	case *types.Concrete:
		a, ok := types.Normalize(p.ApplyShape(actual)).(*types.Concrete)
		if !ok {
			return nil
		}
		for i := 0; i < len(f.Params) && i < len(a.Params); i++ {
			if f.Params[i].Kind != a.Params[i].Kind {
				break
			}
			if err := p.unify(f.Params[i].Type, a.Params[i].Type); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pass) bind(v *types.TypeVar, t types.Type) error {
	if t == types.Type(v) {
		return nil
	}
	if lit, ok := t.(*types.Literal); ok {
		t = lit.Promote()
	}
	t = p.Apply(t)
	for _, free := range types.CollectFree(t).Types {
		if free == v {
			return pserr.Newf(pserr.ArgumentTypeMismatch, "occurs check failed: %s in %s", v, t)
		}
	}
	p.subst.Types[v] = t
	return nil
}
