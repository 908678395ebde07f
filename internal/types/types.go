// Package types holds the type model shared by the parameter-specification
// checker: value types, parameter lists ("shapes"), the ParamSpec variable
// arena, substitution and assignability.
package types

import (
	"fmt"
	"strings"
)

// Type is a value type. The set of implementations is closed.
type Type interface {
	fmt.Stringer
	isType()
}

// Any is the explicit gradual type.
type Any struct{}

func (Any) String() string { return "Any" }
func (Any) isType()        {}

// Unknown is the placeholder given to constructs that failed to check and to
// unannotated parameters. It is compatible with everything so one error does
// not cascade.
type Unknown struct{}

func (Unknown) String() string { return "Unknown" }
func (Unknown) isType()        {}

// NoneType is the type of None.
type NoneType struct{}

func (NoneType) String() string { return "None" }
func (NoneType) isType()        {}

// Class is an instance of a nominal class, builtin or user defined.
type Class struct {
	Name string
	Args []Type
}

func (t *Class) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteByte('[')
	for i, a := range t.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
func (*Class) isType() {}

// ClassObject is the type of a class name used as a value, e.g. the callee
// of a constructor call.
type ClassObject struct {
	Name string
}

func (t *ClassObject) String() string { return "type[" + t.Name + "]" }
func (*ClassObject) isType()          {}

// Literal is a literal value type such as Literal['A'] or Literal[1].
// Value holds the source rendering of the literal.
type Literal struct {
	Base  string
	Value string
}

func (t *Literal) String() string { return "Literal[" + t.Value + "]" }
func (*Literal) isType()          {}

// Promote returns the class a literal belongs to.
func (t *Literal) Promote() Type { return &Class{Name: t.Base} }

// TypeVar is an ordinary (single type) type variable. Identity is the
// pointer; ID only disambiguates instantiations when debugging.
type TypeVar struct {
	Name string
	ID   int
}

func (t *TypeVar) String() string { return t.Name }
func (*TypeVar) isType()          {}

// Union is a union of at least two members. Use NewUnion to build one.
type Union struct {
	Members []Type
}

func (t *Union) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		if _, ok := m.(*Callable); ok {
			parts[i] = "(" + m.String() + ")"
		} else {
			parts[i] = m.String()
		}
	}
	return strings.Join(parts, " | ")
}
func (*Union) isType() {}

// NewUnion flattens nested unions and drops duplicate members. A single
// remaining member is returned as is.
func NewUnion(members ...Type) Type {
	var flat []Type
	var add func(t Type)
	add = func(t Type) {
		if u, ok := t.(*Union); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		for _, seen := range flat {
			if Identical(seen, t) {
				return
			}
		}
		flat = append(flat, t)
	}
	for _, m := range members {
		add(m)
	}
	switch len(flat) {
	case 0:
		return Unknown{}
	case 1:
		return flat[0]
	}
	return &Union{Members: flat}
}

// Tuple is a fixed prefix of element types optionally followed by an
// unbounded run of Rest.
type Tuple struct {
	Elems []Type
	Rest  Type
}

func (t *Tuple) String() string {
	if len(t.Elems) == 0 && t.Rest != nil {
		return "tuple[" + t.Rest.String() + ", ...]"
	}
	parts := make([]string, 0, len(t.Elems)+1)
	for _, e := range t.Elems {
		parts = append(parts, e.String())
	}
	if t.Rest != nil {
		parts = append(parts, "*tuple["+t.Rest.String()+", ...]")
	}
	if len(parts) == 0 {
		return "tuple[()]"
	}
	return "tuple[" + strings.Join(parts, ", ") + "]"
}
func (*Tuple) isType() {}

// Dict is a homogeneous mapping.
type Dict struct {
	Key   Type
	Value Type
}

func (t *Dict) String() string { return "dict[" + t.Key.String() + ", " + t.Value.String() + "]" }
func (*Dict) isType()          {}

// Kwargs is a read-only mapping from keyword names to types, the keyword view
// of a concrete parameter list. Extra is the value type of names outside
// Names, nil when no other names are accepted.
type Kwargs struct {
	Names []string
	Types []Type
	Extra Type
}

func (t *Kwargs) String() string {
	parts := make([]string, 0, len(t.Names)+1)
	for i, n := range t.Names {
		parts = append(parts, n+": "+t.Types[i].String())
	}
	if t.Extra != nil {
		parts = append(parts, "**"+t.Extra.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (*Kwargs) isType() {}

// Which selects one of the two ParamSpec components.
type Which int

const (
	WhichArgs Which = iota
	WhichKwargs
)

func (w Which) String() string {
	if w == WhichArgs {
		return "args"
	}
	return "kwargs"
}

// Component is the annotation type P.args or P.kwargs.
type Component struct {
	Var   VarID
	Name  string
	Which Which
}

func (t *Component) String() string { return t.Name + "." + t.Which.String() }
func (*Component) isType()          {}

// Erased is the view of a component whose variable is not resolved to a
// concrete list: tuple[object, ...] for args, dict[str, object] for kwargs.
func (t *Component) Erased() Type {
	if t.Which == WhichArgs {
		return &Tuple{Rest: Object()}
	}
	return &Dict{Key: Str(), Value: Object()}
}

// ShapeArg carries a parameter list used as a type argument of a class
// generic over a ParamSpec, as in Y[int, [q: int]].
type ShapeArg struct {
	Shape Shape
}

func (t *ShapeArg) String() string {
	switch s := t.Shape.(type) {
	case *Concrete:
		return "[" + s.paramsString() + "]"
	case Gradual:
		return "..."
	case *Generic:
		if len(s.Prefix) == 0 {
			if s.Var == GradualVar {
				return "..."
			}
			return s.Name
		}
		parts := make([]string, 0, len(s.Prefix)+1)
		for _, p := range s.Prefix {
			parts = append(parts, p.String())
		}
		if s.Var == GradualVar {
			parts = append(parts, "...")
		} else {
			parts = append(parts, s.Name)
		}
		return "Concatenate[" + strings.Join(parts, ", ") + "]"
	}
	panic(fmt.Sprintf("unexpected shape %T", t.Shape))
}
func (*ShapeArg) isType() {}

// TypeParam is one entry of a generic declaration: either an ordinary type
// variable or a ParamSpec.
type TypeParam struct {
	Var  *TypeVar
	Spec VarID
	Name string
}

func (p TypeParam) IsSpec() bool { return p.Var == nil }

func (p TypeParam) String() string {
	if p.IsSpec() {
		return "**" + p.Name
	}
	return p.Name
}

// Callable is a callable signature: a parameter-list shape and a return
// type, optionally quantified over its own type parameters.
type Callable struct {
	TypeParams []TypeParam
	Params     Shape
	Return     Type
}

func (t *Callable) String() string {
	var sb strings.Builder
	if len(t.TypeParams) > 0 {
		sb.WriteByte('[')
		for i, p := range t.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteByte(']')
	}
	sb.WriteByte('(')
	sb.WriteString(t.Params.String())
	sb.WriteString(") -> ")
	sb.WriteString(t.Return.String())
	return sb.String()
}
func (*Callable) isType() {}

// IsGeneric reports whether the callable is quantified over its own
// parameters.
func (t *Callable) IsGeneric() bool { return len(t.TypeParams) > 0 }

// Builtin class constructors.
func Object() *Class { return &Class{Name: "object"} }
func Int() *Class    { return &Class{Name: "int"} }
func Str() *Class    { return &Class{Name: "str"} }
func Bool() *Class   { return &Class{Name: "bool"} }
func Float() *Class  { return &Class{Name: "float"} }

// builtinSupers is the nominal hierarchy of builtin scalar classes. Every
// class not listed here has object as its only base.
var builtinSupers = map[string]string{
	"bool":  "int",
	"int":   "float",
	"float": "complex",
}

// IsBuiltinClass reports whether name is one of the builtin classes the
// checker knows without a declaration.
func IsBuiltinClass(name string) bool {
	switch name {
	case "object", "int", "str", "bool", "float", "complex", "bytes", "list", "set", "frozenset":
		return true
	}
	return false
}

// IsGradual reports whether t is Any or Unknown.
func IsGradual(t Type) bool {
	switch t.(type) {
	case Any, Unknown:
		return true
	}
	return false
}
