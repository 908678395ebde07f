package types

import "fmt"

// Concat prepends prefix, as positional-only parameters, to s:
//
//	Generic(v, p)    -> Generic(v, prefix ++ p)
//	Gradual          -> Generic(GradualVar, prefix)
//	Concrete(params) -> Concrete(positional-only(prefix) ++ params)
//
// Prefix parameters are always positional-only and positional-only
// parameters sort before every other kind, so the result is well formed even
// when params starts with *args or **kwargs. No target needs rejecting.
func Concat(prefix []Type, s Shape) Shape {
	if len(prefix) == 0 {
		return s
	}
	switch x := s.(type) {
	case *Generic:
		joined := make([]Type, 0, len(prefix)+len(x.Prefix))
		joined = append(joined, prefix...)
		joined = append(joined, x.Prefix...)
		return &Generic{Var: x.Var, Name: x.Name, Prefix: joined}
	case Gradual:
		p := make([]Type, len(prefix))
		copy(p, prefix)
		return &Generic{Var: GradualVar, Name: "...", Prefix: p}
	case *Concrete:
		params := make([]Param, 0, len(prefix)+len(x.Params))
		params = append(params, PositionalOnlyParams(prefix)...)
		params = append(params, x.Params...)
		return &Concrete{Params: params}
	}
	panic(fmt.Sprintf("unexpected shape %T", s))
}
