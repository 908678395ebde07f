package types

import (
	"fmt"

	"martianoff/pspec/pserr"
)

// VarID identifies a ParamSpec variable inside an Arena.
type VarID int

// GradualVar is the sentinel variable in slot 0 of every arena. It is always
// bound to Gradual and stands for the open tail of Concatenate[..., ...].
const GradualVar VarID = 0

// ParamSpecVar is one ParamSpec variable: a declaration, or a fresh
// instantiation of one made for a single inference attempt.
type ParamSpecVar struct {
	Name string
	// Site is the declaration site, e.g. "module" or "def decorator".
	Site string
	// Scope names the type-parameter list that introduced the variable.
	Scope string
	// Origin is the declared variable this one was instantiated from, or the
	// variable itself for declarations.
	Origin  VarID
	binding Shape
}

// Bound reports whether a solver step has assigned the variable.
func (v *ParamSpecVar) Bound() bool { return v.binding != nil }

// Arena owns the ParamSpec variables of one checking pass. Bindings are
// write-once; instantiations get fresh slots.
type Arena struct {
	vars []*ParamSpecVar
}

func NewArena() *Arena {
	return &Arena{vars: []*ParamSpecVar{{Name: "...", Site: "builtin", Origin: GradualVar, binding: Gradual{}}}}
}

// Declare adds a new declared variable.
func (a *Arena) Declare(name, site, scope string) VarID {
	id := VarID(len(a.vars))
	a.vars = append(a.vars, &ParamSpecVar{Name: name, Site: site, Scope: scope, Origin: id})
	return id
}

// Fresh creates an unbound copy of v for one instantiation.
func (a *Arena) Fresh(v VarID) VarID {
	src := a.Var(v)
	id := VarID(len(a.vars))
	a.vars = append(a.vars, &ParamSpecVar{Name: src.Name, Site: src.Site, Scope: src.Scope, Origin: src.Origin})
	return id
}

// Var returns the slot for v. It panics on an id this arena never issued.
func (a *Arena) Var(v VarID) *ParamSpecVar {
	if int(v) < 0 || int(v) >= len(a.vars) {
		panic(fmt.Sprintf("paramspec variable %d not in arena", v))
	}
	return a.vars[v]
}

func (a *Arena) Name(v VarID) string { return a.Var(v).Name }

// Binding returns the shape v is bound to.
func (a *Arena) Binding(v VarID) (Shape, bool) {
	b := a.Var(v).binding
	return b, b != nil
}

// Ref returns the bare Generic reference to v.
func (a *Arena) Ref(v VarID) *Generic {
	return &Generic{Var: v, Name: a.Name(v)}
}

// Bind assigns s to v. A second assignment, or a shape that mentions v
// itself, is rejected.
func (a *Arena) Bind(v VarID, s Shape) error {
	slot := a.Var(v)
	if slot.binding != nil {
		return pserr.Newf(pserr.InconsistentBinding, "`ParamSpec` %s is already bound to (%s)", slot.Name, slot.binding)
	}
	if a.mentionsShape(v, s, map[VarID]bool{}) {
		return pserr.Newf(pserr.InconsistentBinding, "`ParamSpec` %s cannot be bound to a parameter list that refers to itself", slot.Name)
	}
	slot.binding = s
	return nil
}

// Resolve expands bound variables inside s, composing prefixes with Concat.
// Unbound variables are left as Generic references.
func (a *Arena) Resolve(s Shape) Shape {
	g, ok := s.(*Generic)
	if !ok {
		return s
	}
	b, bound := a.Binding(g.Var)
	if !bound {
		return s
	}
	return Normalize(Concat(g.Prefix, a.Resolve(b)))
}

func (a *Arena) mentionsShape(v VarID, s Shape, seen map[VarID]bool) bool {
	switch x := s.(type) {
	case *Generic:
		if x.Var == v {
			return true
		}
		for _, t := range x.Prefix {
			if a.mentionsType(v, t, seen) {
				return true
			}
		}
		if x.Var != GradualVar && !seen[x.Var] {
			seen[x.Var] = true
			if b, ok := a.Binding(x.Var); ok {
				return a.mentionsShape(v, b, seen)
			}
		}
		return false
	case *Concrete:
		for _, p := range x.Params {
			if a.mentionsType(v, p.Type, seen) {
				return true
			}
		}
		return false
	case Gradual:
		return false
	}
	panic(fmt.Sprintf("unexpected shape %T", s))
}

func (a *Arena) mentionsType(v VarID, t Type, seen map[VarID]bool) bool {
	switch x := t.(type) {
	case *Callable:
		return a.mentionsShape(v, x.Params, seen) || a.mentionsType(v, x.Return, seen)
	case *Component:
		return x.Var == v
	case *ShapeArg:
		return a.mentionsShape(v, x.Shape, seen)
	case *Class:
		for _, arg := range x.Args {
			if a.mentionsType(v, arg, seen) {
				return true
			}
		}
	case *Union:
		for _, m := range x.Members {
			if a.mentionsType(v, m, seen) {
				return true
			}
		}
	case *Tuple:
		for _, e := range x.Elems {
			if a.mentionsType(v, e, seen) {
				return true
			}
		}
		if x.Rest != nil {
			return a.mentionsType(v, x.Rest, seen)
		}
	}
	return false
}
