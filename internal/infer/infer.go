// Package infer solves the type variables and ParamSpec variables of one
// generic call. An Inferer lives as long as the arena it allocates from; a
// Pass covers a single call site.
package infer

import (
	"martianoff/pspec/internal/types"
)

// Inferer holds the state shared by every pass over one file.
type Inferer struct {
	nextID int
	arena  *types.Arena
	// Constructor turns a class object into its constructor signature when a
	// class is passed where a callable is expected.
	Constructor func(*types.ClassObject) (*types.Callable, bool)
}

func NewInferer(arena *types.Arena) *Inferer {
	return &Inferer{arena: arena}
}

func (inf *Inferer) Arena() *types.Arena { return inf.arena }

func (inf *Inferer) NewTypeVar(name string) *types.TypeVar {
	inf.nextID++
	return &types.TypeVar{Name: name, ID: inf.nextID}
}

// NewPass starts solving one call.
func (inf *Inferer) NewPass() *Pass {
	return &Pass{
		inf:   inf,
		subst: types.NewSubst(),
		vars:  make(map[*types.TypeVar]bool),
		specs: make(map[types.VarID]bool),
	}
}

// Pass owns the variables instantiated for one call. The value stored for
// each owned variable tells whether it was borrowed from a generic argument
// rather than from the callee; borrowed variables left unsolved are
// quantified again on the result.
type Pass struct {
	inf   *Inferer
	subst types.Subst
	vars  map[*types.TypeVar]bool
	specs map[types.VarID]bool
}

// Instantiate replaces the callee's own type parameters with fresh variables
// owned by the pass.
func (p *Pass) Instantiate(c *types.Callable) *types.Callable {
	return p.freshen(c, false)
}

// Borrow is Instantiate for a generic callable passed as an argument.
func (p *Pass) Borrow(c *types.Callable) *types.Callable {
	return p.freshen(c, true)
}

func (p *Pass) freshen(c *types.Callable, borrowed bool) *types.Callable {
	if !c.IsGeneric() {
		return c
	}
	s := types.NewSubst()
	for _, tp := range c.TypeParams {
		if tp.IsSpec() {
			v := p.inf.arena.Fresh(tp.Spec)
			p.specs[v] = borrowed
			s.Shapes[tp.Spec] = p.inf.arena.Ref(v)
			continue
		}
		v := p.inf.NewTypeVar(tp.Var.Name)
		p.vars[v] = borrowed
		s.Types[tp.Var] = v
	}
	return &types.Callable{Params: s.ApplyShape(c.Params), Return: s.Apply(c.Return)}
}

// Owns reports whether v was instantiated by this pass.
func (p *Pass) Owns(v types.VarID) bool {
	_, ok := p.specs[v]
	return ok
}

// current is the substitution solved so far.
func (p *Pass) current() types.Subst {
	s := types.NewSubst()
	for k, v := range p.subst.Types {
		s.Types[k] = v
	}
	for v := range p.specs {
		if b, ok := p.inf.arena.Binding(v); ok {
			s.Shapes[v] = b
		}
	}
	return s
}

// Apply substitutes everything solved so far into t.
func (p *Pass) Apply(t types.Type) types.Type {
	return p.current().Apply(t)
}

// ApplyShape substitutes everything solved so far into s.
func (p *Pass) ApplyShape(s types.Shape) types.Shape {
	return p.current().ApplyShape(s)
}

// Resolve expands s for argument matching. A ParamSpec of the callee that is
// still unsolved accepts any arguments.
func (p *Pass) Resolve(s types.Shape) types.Shape {
	s = types.Normalize(p.inf.arena.Resolve(p.ApplyShape(s)))
	if g, ok := s.(*types.Generic); ok {
		if borrowed, owned := p.specs[g.Var]; owned && !borrowed {
			if _, bound := p.inf.arena.Binding(g.Var); !bound {
				return types.Normalize(types.Concat(g.Prefix, types.Gradual{}))
			}
		}
	}
	return s
}

// Specialize applies the solution to t. Callee variables left unsolved
// become Unknown, or the gradual list for ParamSpecs; borrowed ones that are
// still free are quantified on the resulting callable.
func (p *Pass) Specialize(t types.Type) types.Type {
	s := p.current()
	for v, borrowed := range p.specs {
		if _, ok := s.Shapes[v]; !ok && !borrowed {
			s.Shapes[v] = types.Gradual{}
		}
	}
	for v, borrowed := range p.vars {
		if _, ok := s.Types[v]; !ok && !borrowed {
			s.Types[v] = types.Unknown{}
		}
	}
	return p.generalize(s.Apply(t))
}

func (p *Pass) generalize(t types.Type) types.Type {
	free := types.CollectFree(t)
	var params []types.TypeParam
	for _, v := range free.Types {
		if p.vars[v] {
			params = append(params, types.TypeParam{Var: v, Name: v.Name})
		}
	}
	for i, v := range free.Specs {
		if p.specs[v] {
			params = append(params, types.TypeParam{Spec: v, Name: free.SpecNames[i]})
		}
	}
	if len(params) == 0 {
		return t
	}
	c, ok := t.(*types.Callable)
	if !ok {
		s := types.NewSubst()
		for _, tp := range params {
			if tp.IsSpec() {
				s.Shapes[tp.Spec] = types.Gradual{}
			} else {
				s.Types[tp.Var] = types.Unknown{}
			}
		}
		return s.Apply(t)
	}
	return &types.Callable{
		TypeParams: append(params, c.TypeParams...),
		Params:     c.Params,
		Return:     c.Return,
	}
}
