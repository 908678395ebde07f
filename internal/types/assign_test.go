package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"martianoff/pspec/internal/types"
)

func callable(params types.Shape, ret types.Type) *types.Callable {
	return &types.Callable{Params: params, Return: ret}
}

func TestAssignableScalars(t *testing.T) {
	tests := []struct {
		name string
		src  types.Type
		dst  types.Type
		want bool
	}{
		{"bool to int", types.Bool(), types.Int(), true},
		{"int to bool", types.Int(), types.Bool(), false},
		{"literal to base", &types.Literal{Base: "str", Value: "'A'"}, types.Str(), true},
		{"literal to other", &types.Literal{Base: "str", Value: "'A'"}, types.Bool(), false},
		{"anything to object", types.Str(), types.Object(), true},
		{"unknown to int", types.Unknown{}, types.Int(), true},
		{"union into wider", types.NewUnion(types.Int(), types.Bool()), types.Int(), true},
		{"union member mismatch", types.NewUnion(types.Int(), types.Str()), types.Int(), false},
		{"into union", types.Str(), types.NewUnion(types.Int(), types.Str()), true},
		{"none to int", types.NoneType{}, types.Int(), false},
		{"generic class invariance", &types.Class{Name: "C", Args: []types.Type{types.Bool()}}, &types.Class{Name: "C", Args: []types.Type{types.Int()}}, false},
		{"fixed tuple to open", &types.Tuple{Elems: []types.Type{types.Int(), types.Str()}}, &types.Tuple{Rest: types.Object()}, true},
		{"open tuple to fixed", &types.Tuple{Rest: types.Int()}, &types.Tuple{Elems: []types.Type{types.Int()}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types.Assignable(tt.src, tt.dst))
		})
	}
}

func TestAssignableComponents(t *testing.T) {
	arena := types.NewArena()
	p := arena.Declare("P", "def test", "def test")
	args := &types.Component{Var: p, Name: "P", Which: types.WhichArgs}
	kwargs := &types.Component{Var: p, Name: "P", Which: types.WhichKwargs}

	assert.True(t, types.Assignable(args, &types.Tuple{Rest: types.Object()}))
	assert.True(t, types.Assignable(kwargs, &types.Dict{Key: types.Str(), Value: types.Object()}))
	assert.False(t, types.Assignable(args, &types.Tuple{Rest: types.Int()}))
	assert.False(t, types.Assignable(args, kwargs))
}

func TestAssignableCallables(t *testing.T) {
	arena := types.NewArena()
	p := arena.Declare("P", "module", "module")

	intStr := concrete(t, types.PositionalOnlyParams([]types.Type{types.Int(), types.Str()})...)
	namedXY := concrete(t, pos("x", types.Int()), pos("y", types.Str()))
	namedYX := concrete(t, pos("y", types.Int()), pos("x", types.Str()))

	tests := []struct {
		name string
		src  types.Type
		dst  types.Type
		want bool
	}{
		{"named to positional-only", callable(namedXY, types.Int()), callable(intStr, types.Int()), true},
		{"positional-only to named", callable(intStr, types.Int()), callable(namedXY, types.Int()), false},
		{"renamed keywords", callable(namedYX, types.Int()), callable(namedXY, types.Int()), false},
		{"return covariance", callable(intStr, types.Bool()), callable(intStr, types.Int()), true},
		{"return contravariance rejected", callable(intStr, types.Int()), callable(intStr, types.Bool()), false},
		{"gradual source", callable(types.Gradual{}, types.Int()), callable(namedXY, types.Int()), true},
		{"gradual target", callable(arena.Ref(p), types.NoneType{}), callable(types.Gradual{}, types.NoneType{}), true},
		{"gradual into paramspec", callable(types.Gradual{}, types.NoneType{}), callable(arena.Ref(p), types.NoneType{}), true},
		{"same paramspec", callable(arena.Ref(p), types.Int()), callable(arena.Ref(p), types.Int()), true},
		{"paramspec to concrete", callable(arena.Ref(p), types.Int()), callable(intStr, types.Int()), false},
		{
			name: "concatenate onto open tail",
			src:  callable(namedXY, types.Int()),
			dst:  callable(types.Concat([]types.Type{types.Int()}, types.Gradual{}), types.Int()),
			want: true,
		},
		{
			name: "parameter contravariance",
			src:  callable(concrete(t, pos("x", types.Int())), types.Int()),
			dst:  callable(concrete(t, pos("x", types.Bool())), types.Int()),
			want: true,
		},
		{
			name: "parameter covariance rejected",
			src:  callable(concrete(t, pos("x", types.Bool())), types.Int()),
			dst:  callable(concrete(t, pos("x", types.Int())), types.Int()),
			want: false,
		},
		{
			name: "extra defaulted parameter",
			src:  callable(concrete(t, pos("x", types.Int()), types.Param{Name: "y", Kind: types.PositionalOrKeyword, Type: types.Int(), HasDefault: true}), types.Int()),
			dst:  callable(concrete(t, pos("x", types.Int())), types.Int()),
			want: true,
		},
		{
			name: "keyword-only names",
			src:  callable(concrete(t, kw("x", types.Int())), types.Int()),
			dst:  callable(concrete(t, kw("y", types.Int())), types.Int()),
			want: false,
		},
		{
			name: "var-positional covers positionals",
			src:  callable(concrete(t, types.Param{Name: "args", Kind: types.VarPositional, Type: types.Object()}), types.Int()),
			dst:  callable(intStr, types.Int()),
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types.Assignable(tt.src, tt.dst))
		})
	}
}

func TestRendering(t *testing.T) {
	arena := types.NewArena()
	p := arena.Declare("P", "module", "module")

	add := callable(types.Concat([]types.Type{types.Str()}, concrete(t,
		pos("x", types.Int()),
		types.Param{Name: "args", Kind: types.VarPositional, Type: types.Bool()},
	)), types.Bool())
	assert.Equal(t, "(str, x: int, *args: bool) -> bool", add.String())

	assert.Equal(t, "(*, x: int) -> int", callable(concrete(t, kw("x", types.Int())), types.Int()).String())
	assert.Equal(t, "(...) -> int", callable(types.Gradual{}, types.Int()).String())
	assert.Equal(t, "(int, ...) -> int", callable(types.Concat([]types.Type{types.Int()}, types.Gradual{}), types.Int()).String())
	assert.Equal(t, "(**P) -> None", callable(arena.Ref(p), types.NoneType{}).String())

	u := types.NewUnion(
		callable(concrete(t, types.PositionalOnlyParams([]types.Type{types.Int()})...), types.NoneType{}),
		callable(concrete(t, types.PositionalOnlyParams([]types.Type{types.Str()})...), types.NoneType{}),
	)
	assert.Equal(t, "((int) -> None) | ((str) -> None)", u.String())

	y := &types.Class{Name: "Y", Args: []types.Type{types.Int(), &types.ShapeArg{Shape: concrete(t, pos("q", types.Int()))}}}
	assert.Equal(t, "Y[int, [q: int]]", y.String())
	assert.Equal(t, "Concatenate[int, P]", (&types.ShapeArg{Shape: types.Concat([]types.Type{types.Int()}, arena.Ref(p))}).String())

	assert.Equal(t, "tuple[int, *tuple[bool, ...]]", (&types.Tuple{Elems: []types.Type{types.Int()}, Rest: types.Bool()}).String())
}

func TestSubstApply(t *testing.T) {
	arena := types.NewArena()
	p := arena.Declare("P", "module", "module")
	r := &types.TypeVar{Name: "R", ID: 1}

	sig := callable(types.Concat([]types.Type{types.Int()}, arena.Ref(p)), r)
	s := types.NewSubst()
	s.Types[r] = types.Str()
	s.Shapes[p] = concrete(t, pos("x", types.Bool()))

	got := s.Apply(sig)
	assert.Equal(t, "(int, x: bool) -> str", got.String())

	quantified := &types.Callable{
		TypeParams: []types.TypeParam{{Var: r, Name: "R"}},
		Params:     types.Gradual{},
		Return:     r,
	}
	assert.Equal(t, "[R](...) -> R", s.Apply(quantified).String(), "quantified variables are not substituted")

	free := types.CollectFree(sig)
	assert.Equal(t, []*types.TypeVar{r}, free.Types)
	assert.Equal(t, []types.VarID{p}, free.Specs)
}
