// Package matcher binds the arguments of one call to the parameters of the
// callee's parameter list. Variables of the call are solved by the Env; the
// matcher only distributes arguments and reports what does not fit.
package matcher

import (
	"errors"
	"fmt"

	"martianoff/pspec/internal/component"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// Star tells how an argument is unpacked.
type Star int

const (
	NoStar Star = iota
	StarArgs
	StarKwargs
)

// Arg is one actual argument. Name is set for keyword arguments.
type Arg struct {
	Name string
	Type types.Type
	Star Star
	Span pserr.Span
}

func (a Arg) String() string {
	switch {
	case a.Star == StarArgs:
		return "*" + a.Type.String()
	case a.Star == StarKwargs:
		return "**" + a.Type.String()
	case a.Name != "":
		return a.Name + "=" + a.Type.String()
	}
	return a.Type.String()
}

// Env is the inference state of the call being matched.
type Env interface {
	// Assign solves and checks passing actual where formal is expected.
	Assign(formal, actual types.Type) error
	// Resolve expands the solved variables of a parameter list.
	Resolve(s types.Shape) types.Shape
	// Apply expands the solved variables of a type, for messages.
	Apply(t types.Type) types.Type
	// Owns reports whether a ParamSpec is being solved by this call.
	Owns(v types.VarID) bool
}

// Bound lists the arguments that landed on one parameter.
type Bound struct {
	Param types.Param
	Args  []Arg
}

// Result is the outcome of matching one call.
type Result struct {
	Params      []Bound
	Diagnostics []*pserr.Diagnostic
}

// Failed reports whether any diagnostic was produced.
func (r *Result) Failed() bool { return len(r.Diagnostics) > 0 }

// Has reports whether a diagnostic of kind k was produced.
func (r *Result) Has(k pserr.Kind) bool {
	for _, d := range r.Diagnostics {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// Bind matches args against shape. at is the span of the call itself, used
// for diagnostics that belong to no single argument.
func Bind(shape types.Shape, args []Arg, env Env, at pserr.Span) *Result {
	m := &matcher{env: env, at: at, res: &Result{}}
	m.match(shape, args)
	return m.res
}

type matcher struct {
	env Env
	at  pserr.Span
	res *Result
}

func (m *matcher) match(shape types.Shape, args []Arg) {
	if c, ok := shape.(*types.Concrete); ok {
		if v, _, fwd := types.ForwardedVar(c); fwd && !m.env.Owns(v) {
			// A list forwarding a fixed ParamSpec is Concatenate[..., P].
			if g, ok := types.Normalize(c).(*types.Generic); ok {
				m.generic(g, args)
				return
			}
		}
		m.concrete(c, args)
		return
	}
	switch s := m.env.Resolve(shape).(type) {
	case *types.Concrete:
		m.concrete(s, args)
	case types.Gradual:
		m.gradual(args)
	case *types.Generic:
		m.generic(s, args)
	default:
		panic(fmt.Sprintf("unexpected shape %T", s))
	}
}

func (m *matcher) report(span pserr.Span, kind pserr.Kind, format string, a ...any) {
	if span.IsZero() {
		span = m.at
	}
	m.res.Diagnostics = append(m.res.Diagnostics, pserr.At(span, kind, fmt.Sprintf(format, a...)))
}

// check passes arg to a parameter of type formal and reports a failure
// against that parameter.
func (m *matcher) check(arg Arg, actual types.Type, name string, formal types.Type) {
	err := m.env.Assign(formal, actual)
	if err == nil {
		return
	}
	kind := pserr.ArgumentTypeMismatch
	var d *pserr.Diagnostic
	if errors.As(err, &d) {
		kind = d.Kind
	}
	target := "parameter"
	if name != "" {
		target = "parameter `" + name + "`"
	}
	msg := fmt.Sprintf("Argument `%s` is not assignable to %s with type `%s`", actual, target, m.env.Apply(formal))
	if d != nil && d.Msg != "" {
		msg += ": " + d.Msg
	}
	span := arg.Span
	if span.IsZero() {
		span = m.at
	}
	m.res.Diagnostics = append(m.res.Diagnostics, pserr.At(span, kind, msg))
}

// gradual accepts any arguments.
func (m *matcher) gradual([]Arg) {}

// expandStar turns unpacked fixed-length tuples and fixed keyword mappings
// into the plain arguments they stand for. Other unpacked arguments stay
// opaque.
func expandStar(args []Arg) []Arg {
	out := make([]Arg, 0, len(args))
	for _, a := range args {
		switch a.Star {
		case StarArgs:
			if t, ok := a.Type.(*types.Tuple); ok && t.Rest == nil {
				for _, e := range t.Elems {
					out = append(out, Arg{Type: e, Span: a.Span})
				}
				continue
			}
		case StarKwargs:
			if k, ok := a.Type.(*types.Kwargs); ok && k.Extra == nil {
				for i, n := range k.Names {
					out = append(out, Arg{Name: n, Type: k.Types[i], Span: a.Span})
				}
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// project is the view of a P.args or P.kwargs value under what the call
// knows about P.
func (m *matcher) project(c *types.Component) types.Type {
	return component.Project(m.env.Resolve(&types.Generic{Var: c.Var, Name: c.Name}), c.Which)
}

// unpackedElem is the element type an opaque *-unpacked argument yields.
func (m *matcher) unpackedElem(t types.Type) types.Type {
	switch x := t.(type) {
	case *types.Component:
		return m.unpackedElem(m.project(x))
	case *types.Tuple:
		if x.Rest == nil {
			return types.NewUnion(x.Elems...)
		}
		return types.NewUnion(append(append([]types.Type{}, x.Elems...), x.Rest)...)
	}
	return types.Unknown{}
}

// unpackedValue is the value type an opaque **-unpacked argument yields.
func (m *matcher) unpackedValue(t types.Type) types.Type {
	switch x := t.(type) {
	case *types.Component:
		return m.unpackedValue(m.project(x))
	case *types.Dict:
		return x.Value
	case *types.Kwargs:
		members := append([]types.Type{}, x.Types...)
		if x.Extra != nil {
			members = append(members, x.Extra)
		}
		return types.NewUnion(members...)
	}
	return types.Unknown{}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
