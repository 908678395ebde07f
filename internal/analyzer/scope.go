// Package analyzer resolves names and lowers annotation syntax to types. It
// validates where ParamSpecs, Concatenate and the P.args / P.kwargs
// components may appear, and builds function signatures and class
// declarations.
package analyzer

import (
	"martianoff/pspec/internal/types"
)

// SymbolKind classifies what a name refers to.
type SymbolKind int

const (
	SymValue SymbolKind = iota
	SymParamSpec
	SymTypeVar
	SymClass
	SymAlias
	SymSpecial
)

// Symbol is the meaning of one name.
type Symbol struct {
	Kind SymbolKind
	// Type is the type of a value, or the target of an alias.
	Type types.Type
	// Declared marks values introduced with an annotation; later
	// assignments must respect it.
	Declared bool
	Spec     types.VarID
	Var      *types.TypeVar
	Class    *ClassInfo
	// Special names a builtin typing form or function such as "Callable".
	Special string
}

// ClassInfo is a declared class.
type ClassInfo struct {
	Name       string
	TypeParams []types.TypeParam
	Fields     map[string]types.Type
	Methods    map[string]*types.Callable
	// Init is the __init__ signature without self, nil when the class
	// declares none.
	Init *types.Callable
}

func NewClassInfo(name string) *ClassInfo {
	return &ClassInfo{Name: name, Fields: make(map[string]types.Type), Methods: make(map[string]*types.Callable)}
}

// Self is the instance type seen inside the class body: every type
// parameter stands for itself.
func (c *ClassInfo) Self() *types.Class {
	args := make([]types.Type, len(c.TypeParams))
	for i, tp := range c.TypeParams {
		if tp.IsSpec() {
			args[i] = &types.ShapeArg{Shape: &types.Generic{Var: tp.Spec, Name: tp.Name}}
		} else {
			args[i] = tp.Var
		}
	}
	return &types.Class{Name: c.Name, Args: args}
}

// Subst maps the class's type parameters to the arguments of inst.
func (c *ClassInfo) Subst(inst *types.Class) types.Subst {
	s := types.NewSubst()
	for i, tp := range c.TypeParams {
		var arg types.Type = types.Unknown{}
		if i < len(inst.Args) {
			arg = inst.Args[i]
		}
		if tp.IsSpec() {
			if sa, ok := arg.(*types.ShapeArg); ok {
				s.Shapes[tp.Spec] = sa.Shape
			} else {
				s.Shapes[tp.Spec] = types.Gradual{}
			}
			continue
		}
		s.Types[tp.Var] = arg
	}
	return s
}

// Constructor is the signature of calling the class: the parameters of
// __init__, quantified over the class and __init__ type parameters,
// returning an instance.
func (c *ClassInfo) Constructor() *types.Callable {
	var params types.Shape = &types.Concrete{}
	var own []types.TypeParam
	if c.Init != nil {
		params = c.Init.Params
		own = c.Init.TypeParams
	}
	tps := append(append([]types.TypeParam{}, c.TypeParams...), own...)
	return &types.Callable{TypeParams: tps, Params: params, Return: c.Self()}
}

// Scope is one level of name resolution: the module, a class body or a
// function. It records the type parameters the level binds.
type Scope struct {
	parent *Scope
	// Owner describes the level, e.g. "module" or "def decorator".
	Owner string
	names map[string]*Symbol
	binds []types.TypeParam
	// Returns is the declared return type inside a function, nil elsewhere.
	Returns types.Type
	// InFunction is set for function scopes.
	InFunction bool
}

// NewModuleScope returns the outermost scope with the typing builtins
// defined.
func NewModuleScope() *Scope {
	s := &Scope{Owner: "module", names: make(map[string]*Symbol)}
	for _, name := range []string{
		"Callable", "Concatenate", "Generic", "TypeAlias", "ParamSpec", "TypeVar",
		"reveal_type", "assert_type", "Any", "tuple", "dict",
	} {
		s.names[name] = &Symbol{Kind: SymSpecial, Special: name}
	}
	return s
}

// Child opens a nested scope.
func (s *Scope) Child(owner string) *Scope {
	return &Scope{parent: s, Owner: owner, names: make(map[string]*Symbol), Returns: s.Returns, InFunction: s.InFunction}
}

// Define binds name in this scope, replacing an earlier definition.
func (s *Scope) Define(name string, sym *Symbol) {
	s.names[name] = sym
}

// Lookup resolves name through the enclosing scopes.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.names[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal resolves name in this scope only.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.names[name]
	return sym, ok
}

// Bind records type parameters introduced by this scope.
func (s *Scope) Bind(tps ...types.TypeParam) {
	s.binds = append(s.binds, tps...)
}

// InScope reports whether a ParamSpec is bound by this scope or an
// enclosing one.
func (s *Scope) InScope(v types.VarID) bool {
	for sc := s; sc != nil; sc = sc.parent {
		for _, tp := range sc.binds {
			if tp.IsSpec() && tp.Spec == v {
				return true
			}
		}
	}
	return false
}

// BindsType reports whether a type variable is bound by this scope or an
// enclosing one.
func (s *Scope) BindsType(v *types.TypeVar) bool {
	for sc := s; sc != nil; sc = sc.parent {
		for _, tp := range sc.binds {
			if tp.Var == v {
				return true
			}
		}
	}
	return false
}
