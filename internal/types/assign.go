package types

import "fmt"

// Identical is structural type identity, used by assert_type and by
// parameter-list equality.
func Identical(a, b Type) bool {
	switch x := a.(type) {
	case Any:
		_, ok := b.(Any)
		return ok
	case Unknown:
		_, ok := b.(Unknown)
		return ok
	case NoneType:
		_, ok := b.(NoneType)
		return ok
	case *TypeVar:
		y, ok := b.(*TypeVar)
		return ok && x == y
	case *Class:
		y, ok := b.(*Class)
		return ok && x.Name == y.Name && identicalList(x.Args, y.Args)
	case *ClassObject:
		y, ok := b.(*ClassObject)
		return ok && x.Name == y.Name
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Base == y.Base && x.Value == y.Value
	case *Union:
		y, ok := b.(*Union)
		if !ok || len(x.Members) != len(y.Members) {
			return false
		}
		for _, m := range x.Members {
			found := false
			for _, n := range y.Members {
				if Identical(m, n) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || !identicalList(x.Elems, y.Elems) {
			return false
		}
		if x.Rest == nil || y.Rest == nil {
			return x.Rest == nil && y.Rest == nil
		}
		return Identical(x.Rest, y.Rest)
	case *Dict:
		y, ok := b.(*Dict)
		return ok && Identical(x.Key, y.Key) && Identical(x.Value, y.Value)
	case *Kwargs:
		y, ok := b.(*Kwargs)
		if !ok || len(x.Names) != len(y.Names) || !identicalList(x.Types, y.Types) {
			return false
		}
		for i := range x.Names {
			if x.Names[i] != y.Names[i] {
				return false
			}
		}
		if x.Extra == nil || y.Extra == nil {
			return x.Extra == nil && y.Extra == nil
		}
		return Identical(x.Extra, y.Extra)
	case *Component:
		y, ok := b.(*Component)
		return ok && x.Var == y.Var && x.Which == y.Which
	case *ShapeArg:
		y, ok := b.(*ShapeArg)
		return ok && Equal(x.Shape, y.Shape)
	case *Callable:
		y, ok := b.(*Callable)
		return ok && len(x.TypeParams) == len(y.TypeParams) && Equal(x.Params, y.Params) && Identical(x.Return, y.Return)
	}
	panic(fmt.Sprintf("unexpected type %T", a))
}

func identicalList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Identical(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Assignable reports whether a value of type src can be used where dst is
// expected. Any and Unknown are compatible in both directions.
func Assignable(src, dst Type) bool {
	if IsGradual(src) || IsGradual(dst) {
		return true
	}
	if Identical(src, dst) {
		return true
	}
	if u, ok := src.(*Union); ok {
		for _, m := range u.Members {
			if !Assignable(m, dst) {
				return false
			}
		}
		return true
	}
	if u, ok := dst.(*Union); ok {
		for _, m := range u.Members {
			if Assignable(src, m) {
				return true
			}
		}
		return false
	}
	if c, ok := src.(*Component); ok {
		if _, ok := dst.(*Component); ok {
			return false
		}
		return Assignable(c.Erased(), dst)
	}
	if c, ok := dst.(*Class); ok && c.Name == "object" {
		return true
	}

	switch d := dst.(type) {
	case *Class:
		switch s := src.(type) {
		case *Literal:
			return Assignable(s.Promote(), d)
		case *Class:
			if s.Name == d.Name {
				return identicalList(s.Args, d.Args)
			}
			if super, ok := builtinSupers[s.Name]; ok {
				return Assignable(&Class{Name: super}, d)
			}
		}
	case *Tuple:
		s, ok := src.(*Tuple)
		return ok && tupleAssignable(s, d)
	case *Dict:
		switch s := src.(type) {
		case *Dict:
			return Assignable(s.Key, d.Key) && Assignable(s.Value, d.Value)
		case *Kwargs:
			if !Assignable(Str(), d.Key) {
				return false
			}
			for _, t := range s.Types {
				if !Assignable(t, d.Value) {
					return false
				}
			}
			return s.Extra == nil || Assignable(s.Extra, d.Value)
		}
	case *Callable:
		s, ok := src.(*Callable)
		return ok && Assignable(s.Return, d.Return) && ShapeAssignable(s.Params, d.Params)
	}
	return false
}

func tupleAssignable(s, d *Tuple) bool {
	if d.Rest == nil {
		if s.Rest != nil || len(s.Elems) != len(d.Elems) {
			return false
		}
		for i := range s.Elems {
			if !Assignable(s.Elems[i], d.Elems[i]) {
				return false
			}
		}
		return true
	}
	if len(s.Elems) < len(d.Elems) {
		return false
	}
	for i := range d.Elems {
		if !Assignable(s.Elems[i], d.Elems[i]) {
			return false
		}
	}
	for _, e := range s.Elems[len(d.Elems):] {
		if !Assignable(e, d.Rest) {
			return false
		}
	}
	return s.Rest == nil || Assignable(s.Rest, d.Rest)
}

// ShapeAssignable reports whether a callable taking src can stand in for one
// taking dst, i.e. every call dst accepts is also accepted by src. Parameter
// types are compared contravariantly.
func ShapeAssignable(src, dst Shape) bool {
	src, dst = Normalize(src), Normalize(dst)
	if _, ok := src.(Gradual); ok {
		return true
	}
	if _, ok := dst.(Gradual); ok {
		return true
	}
	switch d := dst.(type) {
	case *Generic:
		switch s := src.(type) {
		case *Generic:
			if d.Var == GradualVar || s.Var == GradualVar {
				return prefixAssignable(s.Prefix, d.Prefix)
			}
			if s.Var != d.Var || len(s.Prefix) != len(d.Prefix) {
				return false
			}
			return prefixAssignable(s.Prefix, d.Prefix)
		case *Concrete:
			if d.Var != GradualVar {
				return false
			}
			_, err := DropPositional(s, len(d.Prefix), func(i int, p Param) error {
				if !Assignable(d.Prefix[i], p.Type) {
					return fmt.Errorf("prefix %d", i)
				}
				return nil
			})
			return err == nil
		}
	case *Concrete:
		switch s := src.(type) {
		case *Generic:
			if s.Var != GradualVar {
				return false
			}
			_, err := DropPositional(d, len(s.Prefix), func(i int, p Param) error {
				if !Assignable(p.Type, s.Prefix[i]) {
					return fmt.Errorf("prefix %d", i)
				}
				return nil
			})
			return err == nil
		case *Concrete:
			return concreteAssignable(s, d)
		}
	}
	return false
}

func prefixAssignable(src, dst []Type) bool {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		if !Assignable(dst[i], src[i]) {
			return false
		}
	}
	return true
}

// concreteAssignable walks the parameters of dst and finds, for each, the
// parameter of src that would receive the same argument.
func concreteAssignable(s, d *Concrete) bool {
	used := make([]bool, len(s.Params))
	var positional []int
	varPos, varKw := -1, -1
	for i, p := range s.Params {
		switch p.Kind {
		case PositionalOnly, PositionalOrKeyword:
			positional = append(positional, i)
		case VarPositional:
			varPos = i
		case VarKeyword:
			varKw = i
		}
	}
	next := 0
	byName := func(name string) int {
		for i, p := range s.Params {
			if !used[i] && p.Kind.AcceptsKeyword() && p.Name == name {
				return i
			}
		}
		return -1
	}

	for _, dp := range d.Params {
		switch dp.Kind {
		case PositionalOnly, PositionalOrKeyword:
			if next < len(positional) {
				i := positional[next]
				next++
				sp := s.Params[i]
				if dp.Kind == PositionalOrKeyword && (sp.Kind != PositionalOrKeyword || sp.Name != dp.Name) {
					return false
				}
				if !Assignable(dp.Type, sp.Type) || (dp.HasDefault && !sp.HasDefault) {
					return false
				}
				used[i] = true
				continue
			}
			if varPos < 0 || !Assignable(dp.Type, s.Params[varPos].Type) {
				return false
			}
			if dp.Kind == PositionalOrKeyword && (varKw < 0 || !Assignable(dp.Type, s.Params[varKw].Type)) {
				return false
			}
		case VarPositional:
			if varPos < 0 || !Assignable(dp.Type, s.Params[varPos].Type) {
				return false
			}
			for ; next < len(positional); next++ {
				i := positional[next]
				if !Assignable(dp.Type, s.Params[i].Type) {
					return false
				}
				used[i] = true
			}
		case KeywordOnly:
			if i := byName(dp.Name); i >= 0 {
				sp := s.Params[i]
				if !Assignable(dp.Type, sp.Type) || (dp.HasDefault && !sp.HasDefault) {
					return false
				}
				used[i] = true
				continue
			}
			if varKw < 0 || !Assignable(dp.Type, s.Params[varKw].Type) {
				return false
			}
		case VarKeyword:
			if varKw < 0 || !Assignable(dp.Type, s.Params[varKw].Type) {
				return false
			}
			for i, sp := range s.Params {
				if !used[i] && sp.Kind.AcceptsKeyword() {
					if !Assignable(dp.Type, sp.Type) {
						return false
					}
					used[i] = true
				}
			}
		}
	}
	for i, sp := range s.Params {
		if used[i] || sp.Kind == VarPositional || sp.Kind == VarKeyword {
			continue
		}
		if !sp.HasDefault {
			return false
		}
	}
	return true
}
