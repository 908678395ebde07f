package matcher

import (
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

// concrete matches args against a list of named parameters. Arguments that
// overflow a list forwarding P through *args: P.args / **kwargs: P.kwargs
// are collected and matched against P once the other parameters, which may
// solve P, have been checked.
func (m *matcher) concrete(c *types.Concrete, args []Arg) {
	args = expandStar(args)
	params := c.Params
	filled := make([][]Arg, len(params))
	var positional []int
	varPos, varKw := -1, -1
	for i, p := range params {
		switch p.Kind {
		case types.PositionalOnly, types.PositionalOrKeyword:
			positional = append(positional, i)
		case types.VarPositional:
			varPos = i
		case types.VarKeyword:
			varKw = i
		}
	}
	fwdVar, fwdName, fwd := types.ForwardedVar(c)

	var overflow, extra []Arg
	next, positionalCount := 0, 0
	for _, a := range args {
		switch {
		case a.Star == StarArgs:
			if _, ok := a.Type.(*types.Component); ok && fwd {
				overflow = append(overflow, a)
				continue
			}
			elem := Arg{Type: m.unpackedElem(a.Type), Span: a.Span}
			for ; next < len(positional); next++ {
				filled[positional[next]] = append(filled[positional[next]], elem)
			}
			switch {
			case fwd:
				overflow = append(overflow, a)
			case varPos >= 0:
				filled[varPos] = append(filled[varPos], elem)
			}
		case a.Star == StarKwargs:
			if _, ok := a.Type.(*types.Component); ok && fwd {
				overflow = append(overflow, a)
				continue
			}
			val := Arg{Type: m.unpackedValue(a.Type), Span: a.Span}
			for i, p := range params {
				if p.Kind.AcceptsKeyword() && len(filled[i]) == 0 {
					filled[i] = append(filled[i], val)
				}
			}
			switch {
			case fwd:
				overflow = append(overflow, a)
			case varKw >= 0:
				filled[varKw] = append(filled[varKw], val)
			}
		case a.Name == "":
			positionalCount++
			switch {
			case next < len(positional):
				filled[positional[next]] = append(filled[positional[next]], a)
				next++
			case fwd:
				overflow = append(overflow, a)
			case varPos >= 0:
				filled[varPos] = append(filled[varPos], a)
			default:
				extra = append(extra, a)
			}
		default:
			i := keywordSlot(params, a.Name)
			switch {
			case i >= 0 && len(filled[i]) > 0:
				m.report(a.Span, pserr.UnexpectedKeywordArgument, "Multiple values for argument `%s`", a.Name)
			case i >= 0:
				filled[i] = append(filled[i], a)
			case fwd:
				overflow = append(overflow, a)
			case varKw >= 0:
				filled[varKw] = append(filled[varKw], a)
			default:
				m.report(a.Span, pserr.UnexpectedKeywordArgument, "Unexpected keyword argument `%s`", a.Name)
			}
		}
	}

	if len(extra) > 0 {
		m.report(extra[0].Span, pserr.TooManyPositionalArguments, "Expected %d positional argument%s, got %d",
			len(positional), plural(len(positional)), positionalCount)
	}
	missingPositional := 0
	for i, p := range params {
		if len(filled[i]) > 0 || p.HasDefault {
			continue
		}
		switch p.Kind {
		case types.PositionalOnly:
			missingPositional++
		case types.PositionalOrKeyword, types.KeywordOnly:
			m.report(m.at, pserr.MissingRequiredArgument, "Missing argument `%s`", p.Name)
		}
	}
	if missingPositional > 0 {
		m.report(m.at, pserr.MissingRequiredArgument, "Expected %d more positional argument%s",
			missingPositional, plural(missingPositional))
	}

	for i, p := range params {
		formal := p.Type
		if _, ok := formal.(*types.Component); ok {
			formal = types.Object()
		}
		for _, a := range filled[i] {
			m.check(a, a.Type, p.Name, formal)
		}
		m.res.Params = append(m.res.Params, Bound{Param: p, Args: filled[i]})
	}

	if fwd {
		m.match(&types.Generic{Var: fwdVar, Name: fwdName}, overflow)
	}
}

// keywordSlot finds the parameter a keyword argument name reaches.
func keywordSlot(params []types.Param, name string) int {
	for i, p := range params {
		if p.Kind.AcceptsKeyword() && p.Name == name {
			return i
		}
	}
	return -1
}
