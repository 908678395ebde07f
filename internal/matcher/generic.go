package matcher

import (
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// generic matches args against Concatenate[prefix..., P]. Plain positional
// arguments fill the prefix. What P stands for can only be supplied by
// forwarding *P.args and **P.kwargs; an open tail accepts anything.
func (m *matcher) generic(g *types.Generic, args []Arg) {
	args = expandStar(args)
	open := g.Var == types.GradualVar
	var extra []Arg
	next, positionalCount := 0, 0
	fwdArgs, fwdKwargs, wrongStar, arityErr := false, false, false, false

	for _, a := range args {
		switch {
		case a.Star == StarArgs:
			if c, ok := a.Type.(*types.Component); ok && !open {
				if c.Var == g.Var && c.Which == types.WhichArgs {
					fwdArgs = true
				} else {
					wrongStar = true
				}
				continue
			}
			elem := m.unpackedElem(a.Type)
			for ; next < len(g.Prefix); next++ {
				m.check(Arg{Type: elem, Span: a.Span}, elem, "", g.Prefix[next])
			}
		case a.Star == StarKwargs:
			if c, ok := a.Type.(*types.Component); ok && !open {
				if c.Var == g.Var && c.Which == types.WhichKwargs {
					fwdKwargs = true
				} else {
					wrongStar = true
				}
			}
		case a.Name == "":
			positionalCount++
			switch {
			case next < len(g.Prefix):
				m.check(a, a.Type, "", g.Prefix[next])
				next++
			case !open:
				extra = append(extra, a)
			}
		default:
			if !open {
				m.report(a.Span, pserr.UnexpectedKeywordArgument, "Unexpected keyword argument `%s`", a.Name)
				arityErr = true
			}
		}
	}

	if len(extra) > 0 {
		m.report(extra[0].Span, pserr.TooManyPositionalArguments, "Expected %d positional argument%s, got %d",
			len(g.Prefix), plural(len(g.Prefix)), positionalCount)
		arityErr = true
	}
	if missing := len(g.Prefix) - next; missing > 0 {
		m.report(m.at, pserr.MissingRequiredArgument, "Expected %d more positional argument%s", missing, plural(missing))
		arityErr = true
	}
	if open {
		return
	}
	if wrongStar || (!arityErr && (!fwdArgs || !fwdKwargs)) {
		m.report(m.at, pserr.ArgumentTypeMismatch, "Expected *-unpacked %s.args and **-unpacked %s.kwargs", g.Name, g.Name)
	}
}
