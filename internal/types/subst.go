package types

import "fmt"

// Subst maps ordinary type variables and ParamSpec variables to their
// replacements.
type Subst struct {
	Types  map[*TypeVar]Type
	Shapes map[VarID]Shape
}

func NewSubst() Subst {
	return Subst{Types: make(map[*TypeVar]Type), Shapes: make(map[VarID]Shape)}
}

func (s Subst) Empty() bool {
	return len(s.Types) == 0 && len(s.Shapes) == 0
}

// Apply replaces every substituted variable in t.
func (s Subst) Apply(t Type) Type {
	if s.Empty() || t == nil {
		return t
	}
	switch x := t.(type) {
	case *TypeVar:
		if r, ok := s.Types[x]; ok {
			if r == Type(x) {
				return x
			}
			return s.Apply(r)
		}
		return x
	case *Class:
		if len(x.Args) == 0 {
			return x
		}
		args := make([]Type, len(x.Args))
		for i, a := range x.Args {
			args[i] = s.Apply(a)
		}
		return &Class{Name: x.Name, Args: args}
	case *Union:
		members := make([]Type, len(x.Members))
		for i, m := range x.Members {
			members[i] = s.Apply(m)
		}
		return NewUnion(members...)
	case *Tuple:
		elems := make([]Type, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = s.Apply(e)
		}
		return &Tuple{Elems: elems, Rest: s.Apply(x.Rest)}
	case *Dict:
		return &Dict{Key: s.Apply(x.Key), Value: s.Apply(x.Value)}
	case *Kwargs:
		ts := make([]Type, len(x.Types))
		for i, e := range x.Types {
			ts[i] = s.Apply(e)
		}
		return &Kwargs{Names: x.Names, Types: ts, Extra: s.Apply(x.Extra)}
	case *ShapeArg:
		return &ShapeArg{Shape: s.ApplyShape(x.Shape)}
	case *Component:
		if r, ok := s.Shapes[x.Var]; ok {
			if g, ok := r.(*Generic); ok && len(g.Prefix) == 0 && g.Var != GradualVar {
				return &Component{Var: g.Var, Name: g.Name, Which: x.Which}
			}
		}
		return x
	case *Callable:
		inner := s.without(x.TypeParams)
		return &Callable{
			TypeParams: x.TypeParams,
			Params:     inner.ApplyShape(x.Params),
			Return:     inner.Apply(x.Return),
		}
	}
	return t
}

// ApplyShape replaces substituted variables inside a parameter list. A
// substituted Generic(v, prefix) becomes Concat(prefix, replacement).
func (s Subst) ApplyShape(sh Shape) Shape {
	if s.Empty() {
		return sh
	}
	switch x := sh.(type) {
	case *Concrete:
		params := make([]Param, len(x.Params))
		for i, p := range x.Params {
			p.Type = s.Apply(p.Type)
			params[i] = p
		}
		return &Concrete{Params: params}
	case Gradual:
		return x
	case *Generic:
		prefix := make([]Type, len(x.Prefix))
		for i, p := range x.Prefix {
			prefix[i] = s.Apply(p)
		}
		if r, ok := s.Shapes[x.Var]; ok {
			if g, ok := r.(*Generic); ok && g.Var == x.Var {
				return Normalize(Concat(prefix, g))
			}
			return Normalize(Concat(prefix, s.ApplyShape(r)))
		}
		return &Generic{Var: x.Var, Name: x.Name, Prefix: prefix}
	}
	panic(fmt.Sprintf("unexpected shape %T", sh))
}

// without returns s minus the variables quantified by params.
func (s Subst) without(params []TypeParam) Subst {
	if len(params) == 0 {
		return s
	}
	out := Subst{Types: make(map[*TypeVar]Type, len(s.Types)), Shapes: make(map[VarID]Shape, len(s.Shapes))}
	for k, v := range s.Types {
		out.Types[k] = v
	}
	for k, v := range s.Shapes {
		out.Shapes[k] = v
	}
	for _, p := range params {
		if p.IsSpec() {
			delete(out.Shapes, p.Spec)
		} else {
			delete(out.Types, p.Var)
		}
	}
	return out
}

// FreeVars lists the type variables and ParamSpec variables occurring in t
// that are not quantified by a nested generic callable, in order of first
// appearance.
type FreeVars struct {
	Types []*TypeVar
	Specs []VarID
	// SpecNames holds the display name of each entry of Specs.
	SpecNames []string
}

func (f *FreeVars) addType(v *TypeVar) {
	for _, seen := range f.Types {
		if seen == v {
			return
		}
	}
	f.Types = append(f.Types, v)
}

func (f *FreeVars) addSpec(v VarID, name string) {
	if v == GradualVar {
		return
	}
	for _, seen := range f.Specs {
		if seen == v {
			return
		}
	}
	f.Specs = append(f.Specs, v)
	f.SpecNames = append(f.SpecNames, name)
}

// HasSpec reports whether v is among the free ParamSpec variables.
func (f *FreeVars) HasSpec(v VarID) bool {
	for _, s := range f.Specs {
		if s == v {
			return true
		}
	}
	return false
}

// CollectFree gathers the free variables of ts.
func CollectFree(ts ...Type) *FreeVars {
	f := &FreeVars{}
	for _, t := range ts {
		collectType(f, t, nil)
	}
	return f
}

// CollectFreeShape gathers the free variables of a parameter list.
func CollectFreeShape(s Shape) *FreeVars {
	f := &FreeVars{}
	collectShape(f, s, nil)
	return f
}

func collectType(f *FreeVars, t Type, bound []TypeParam) {
	switch x := t.(type) {
	case *TypeVar:
		for _, b := range bound {
			if b.Var == x {
				return
			}
		}
		f.addType(x)
	case *Class:
		for _, a := range x.Args {
			collectType(f, a, bound)
		}
	case *Union:
		for _, m := range x.Members {
			collectType(f, m, bound)
		}
	case *Tuple:
		for _, e := range x.Elems {
			collectType(f, e, bound)
		}
		if x.Rest != nil {
			collectType(f, x.Rest, bound)
		}
	case *Dict:
		collectType(f, x.Key, bound)
		collectType(f, x.Value, bound)
	case *ShapeArg:
		collectShape(f, x.Shape, bound)
	case *Component:
		if !specBound(bound, x.Var) {
			f.addSpec(x.Var, x.Name)
		}
	case *Callable:
		inner := append(append([]TypeParam{}, bound...), x.TypeParams...)
		collectShape(f, x.Params, inner)
		collectType(f, x.Return, inner)
	}
}

func collectShape(f *FreeVars, s Shape, bound []TypeParam) {
	switch x := s.(type) {
	case *Concrete:
		for _, p := range x.Params {
			collectType(f, p.Type, bound)
		}
	case *Generic:
		for _, p := range x.Prefix {
			collectType(f, p, bound)
		}
		if !specBound(bound, x.Var) {
			f.addSpec(x.Var, x.Name)
		}
	}
}

func specBound(bound []TypeParam, v VarID) bool {
	for _, b := range bound {
		if b.IsSpec() && b.Spec == v {
			return true
		}
	}
	return false
}
