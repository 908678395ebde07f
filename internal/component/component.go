// Package component validates and projects the P.args / P.kwargs components
// of a ParamSpec.
package component

import (
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// Scope answers whether a ParamSpec is in the generic scope of the function
// being checked.
type Scope interface {
	InScope(v types.VarID) bool
}

// Position is the syntactic slot an annotation occupies.
type Position int

const (
	AtVarPositional Position = iota
	AtVarKeyword
	AtParameter
	AtVariable
	AtReturn
	AtOther
)

// Use is one occurrence of P.args or P.kwargs in an annotation.
type Use struct {
	Component *types.Component
	Position  Position
	Span      pserr.Span
}

func (u Use) wellPlaced() bool {
	if u.Component.Which == types.WhichArgs {
		return u.Position == AtVarPositional
	}
	return u.Position == AtVarKeyword
}

// Validate checks the component uses of one parameter list, or of a single
// annotation outside one. Scope is checked first, then placement; pairing
// and origin are checked over the well-placed uses only.
func Validate(uses []Use, scope Scope) []*pserr.Diagnostic {
	var diags []*pserr.Diagnostic
	var args, kwargs *Use
	for i := range uses {
		u := &uses[i]
		if scope != nil && !scope.InScope(u.Component.Var) {
			diags = append(diags, pserr.At(u.Span, pserr.OutOfScope,
				"`ParamSpec` "+u.Component.Name+" is not in scope here"))
		}
		if !u.wellPlaced() {
			diags = append(diags, pserr.At(u.Span, pserr.MisplacedComponent, misplacedMessage(u.Component.Which)))
			continue
		}
		if u.Component.Which == types.WhichArgs {
			args = u
		} else {
			kwargs = u
		}
	}

	switch {
	case args == nil && kwargs == nil:
	case args == nil || kwargs == nil:
		lone := args
		if lone == nil {
			lone = kwargs
		}
		diags = append(diags, pserr.At(lone.Span, pserr.ComponentsMustBeUsedTogether,
			"`ParamSpec` *args and **kwargs must be used together"))
	case args.Component.Var != kwargs.Component.Var:
		diags = append(diags, pserr.At(args.Span, pserr.OriginMismatch,
			"*args and **kwargs must come from the same `ParamSpec`"))
	}
	return diags
}

func misplacedMessage(w types.Which) string {
	if w == types.WhichArgs {
		return "`ParamSpec` *args is only allowed in an *args annotation"
	}
	return "`ParamSpec` **kwargs is only allowed in a **kwargs annotation"
}

// Project returns the view of a component over shape: the positional
// parameter types as a tuple for args, the keyword parameters by name for
// kwargs. A shape that is not a concrete list gives the erased view.
func Project(shape types.Shape, which types.Which) types.Type {
	c, ok := types.Normalize(shape).(*types.Concrete)
	if !ok {
		return (&types.Component{Which: which}).Erased()
	}
	if which == types.WhichArgs {
		t := &types.Tuple{Elems: []types.Type{}}
		for _, p := range c.Params {
			switch p.Kind {
			case types.PositionalOnly, types.PositionalOrKeyword:
				t.Elems = append(t.Elems, p.Type)
			case types.VarPositional:
				t.Rest = p.Type
			}
		}
		return t
	}
	k := &types.Kwargs{}
	for _, p := range c.Params {
		switch p.Kind {
		case types.PositionalOrKeyword, types.KeywordOnly:
			k.Names = append(k.Names, p.Name)
			k.Types = append(k.Types, p.Type)
		case types.VarKeyword:
			k.Extra = p.Type
		}
	}
	return k
}
