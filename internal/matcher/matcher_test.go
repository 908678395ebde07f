package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/pspec/internal/infer"
	"martianoff/pspec/internal/matcher"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

func lit(base, value string) *types.Literal { return &types.Literal{Base: base, Value: value} }

func one() types.Type { return lit("int", "1") }
func a() types.Type   { return lit("str", "'A'") }

func pos(t types.Type) matcher.Arg { return matcher.Arg{Type: t} }

func kw(name string, t types.Type) matcher.Arg { return matcher.Arg{Name: name, Type: t} }

func star(t types.Type) matcher.Arg { return matcher.Arg{Type: t, Star: matcher.StarArgs} }

func starstar(t types.Type) matcher.Arg { return matcher.Arg{Type: t, Star: matcher.StarKwargs} }

func named(name string, t types.Type) types.Param {
	return types.Param{Name: name, Kind: types.PositionalOrKeyword, Type: t}
}

func mustConcrete(t *testing.T, ps ...types.Param) *types.Concrete {
	t.Helper()
	c, err := types.NewConcrete(ps)
	require.NoError(t, err)
	return c
}

func kinds(r *matcher.Result) []pserr.Kind {
	out := []pserr.Kind{}
	for _, d := range r.Diagnostics {
		out = append(out, d.Kind)
	}
	return out
}

func messages(r *matcher.Result) []string {
	out := []string{}
	for _, d := range r.Diagnostics {
		out = append(out, d.Msg)
	}
	return out
}

type world struct {
	arena *types.Arena
	inf   *infer.Inferer
}

func newWorld() *world {
	arena := types.NewArena()
	return &world{arena: arena, inf: infer.NewInferer(arena)}
}

func (w *world) bind(shape types.Shape, args ...matcher.Arg) *matcher.Result {
	return matcher.Bind(shape, args, w.inf.NewPass(), pserr.Span{Line: 1, Column: 1})
}

func TestBindPlainParameters(t *testing.T) {
	w := newWorld()
	ab := mustConcrete(t, named("a", types.Int()), named("b", types.Str()))

	tests := []struct {
		name  string
		args  []matcher.Arg
		want  []pserr.Kind
		wantM string
	}{
		{name: "positional", args: []matcher.Arg{pos(one()), pos(a())}, want: []pserr.Kind{}},
		{name: "keywords", args: []matcher.Arg{kw("b", a()), kw("a", one())}, want: []pserr.Kind{}},
		{
			name:  "too many positional",
			args:  []matcher.Arg{pos(one()), pos(a()), pos(one())},
			want:  []pserr.Kind{pserr.TooManyPositionalArguments},
			wantM: "Expected 2 positional arguments, got 3",
		},
		{
			name:  "unexpected keyword",
			args:  []matcher.Arg{pos(one()), pos(a()), kw("c", one())},
			want:  []pserr.Kind{pserr.UnexpectedKeywordArgument},
			wantM: "Unexpected keyword argument `c`",
		},
		{
			name:  "missing",
			args:  []matcher.Arg{pos(one())},
			want:  []pserr.Kind{pserr.MissingRequiredArgument},
			wantM: "Missing argument `b`",
		},
		{
			name:  "multiple values",
			args:  []matcher.Arg{pos(one()), pos(a()), kw("a", one())},
			want:  []pserr.Kind{pserr.UnexpectedKeywordArgument},
			wantM: "Multiple values for argument `a`",
		},
		{
			name:  "wrong type",
			args:  []matcher.Arg{pos(a()), pos(a())},
			want:  []pserr.Kind{pserr.ArgumentTypeMismatch},
			wantM: "Argument `Literal['A']` is not assignable to parameter `a` with type `int`",
		},
		{
			name: "unpacked fixed tuple",
			args: []matcher.Arg{star(&types.Tuple{Elems: []types.Type{types.Int(), types.Str()}})},
			want: []pserr.Kind{},
		},
		{
			name:  "unpacked tuple element mismatch",
			args:  []matcher.Arg{star(&types.Tuple{Elems: []types.Type{types.Int(), types.Int()}})},
			want:  []pserr.Kind{pserr.ArgumentTypeMismatch},
			wantM: "Argument `int` is not assignable to parameter `b` with type `str`",
		},
		{
			name: "unpacked dict covers keywords",
			args: []matcher.Arg{starstar(&types.Dict{Key: types.Str(), Value: types.Unknown{}})},
			want: []pserr.Kind{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := w.bind(ab, tt.args...)
			assert.Equal(t, tt.want, kinds(res))
			if tt.wantM != "" {
				require.NotEmpty(t, res.Diagnostics)
				assert.Equal(t, tt.wantM, res.Diagnostics[0].Msg)
			}
		})
	}
}

func TestBindPositionalOnly(t *testing.T) {
	w := newWorld()
	c := mustConcrete(t, types.PositionalOnlyParams([]types.Type{types.Int(), types.Str()})...)

	res := w.bind(c, pos(one()))
	assert.Equal(t, []string{"Expected 1 more positional argument"}, messages(res))

	res = w.bind(c, pos(one()), pos(types.Int()))
	assert.Equal(t, []string{"Argument `int` is not assignable to parameter with type `str`"}, messages(res))
}

func TestBindVarParameters(t *testing.T) {
	w := newWorld()
	c := mustConcrete(t,
		named("x", types.Int()),
		types.Param{Name: "args", Kind: types.VarPositional, Type: types.Bool()},
		types.Param{Name: "kwargs", Kind: types.VarKeyword, Type: types.Str()},
	)

	res := w.bind(c, pos(one()), pos(types.Bool()), pos(types.Bool()), kw("y", a()))
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Params, 3)
	assert.Len(t, res.Params[1].Args, 2)
	assert.Len(t, res.Params[2].Args, 1)

	res = w.bind(c, pos(one()), pos(types.Int()))
	assert.Equal(t, []pserr.Kind{pserr.ArgumentTypeMismatch}, kinds(res))
}

// twiceSig is [**P](f: Callable[P, int], *args: P.args, **kwargs: P.kwargs) -> int.
func twiceSig(t *testing.T, w *world) *types.Callable {
	p := w.arena.Declare("P", "module", "module")
	return &types.Callable{
		TypeParams: []types.TypeParam{{Spec: p, Name: "P"}},
		Params: mustConcrete(t,
			named("f", &types.Callable{Params: w.arena.Ref(p), Return: types.Int()}),
			types.Param{Name: "args", Kind: types.VarPositional, Type: &types.Component{Var: p, Name: "P", Which: types.WhichArgs}},
			types.Param{Name: "kwargs", Kind: types.VarKeyword, Type: &types.Component{Var: p, Name: "P", Which: types.WhichKwargs}},
		),
		Return: types.Int(),
	}
}

func TestBindTwice(t *testing.T) {
	w := newWorld()
	twice := twiceSig(t, w)
	aIntBStr := &types.Callable{Params: mustConcrete(t, named("a", types.Int()), named("b", types.Str())), Return: types.Int()}

	call := func(args ...matcher.Arg) *matcher.Result {
		pass := w.inf.NewPass()
		sig := pass.Instantiate(twice)
		return matcher.Bind(sig.Params, args, pass, pserr.Span{Line: 1})
	}

	assert.Empty(t, call(pos(aIntBStr), pos(one()), pos(a())).Diagnostics)
	assert.Empty(t, call(pos(aIntBStr), kw("b", a()), kw("a", one())).Diagnostics)

	res := call(pos(aIntBStr), pos(a()), pos(one()))
	assert.Equal(t, []pserr.Kind{pserr.ArgumentTypeMismatch, pserr.ArgumentTypeMismatch}, kinds(res))
	assert.Contains(t, res.Diagnostics[0].Msg, "`Literal['A']` is not assignable to parameter `a` with type `int`")
	assert.Contains(t, res.Diagnostics[1].Msg, "`Literal[1]` is not assignable to parameter `b` with type `str`")

	res = call(pos(aIntBStr), pos(one()))
	assert.Equal(t, []string{"Missing argument `b`"}, messages(res))

	anything := &types.Callable{Params: types.Gradual{}, Return: types.Int()}
	assert.Empty(t, call(pos(anything), pos(one())).Diagnostics, "an open callable takes any forwarded arguments")
}

func TestBindForwardingIsExempt(t *testing.T) {
	w := newWorld()
	twice := twiceSig(t, w)
	q := w.arena.Declare("Q", "def caller", "def caller")
	someFunc := &types.Callable{Params: w.arena.Ref(q), Return: types.Int()}
	qArgs := &types.Component{Var: q, Name: "Q", Which: types.WhichArgs}
	qKwargs := &types.Component{Var: q, Name: "Q", Which: types.WhichKwargs}

	pass := w.inf.NewPass()
	sig := pass.Instantiate(twice)
	res := matcher.Bind(sig.Params, []matcher.Arg{kw("f", someFunc), star(qArgs), starstar(qKwargs)}, pass, pserr.Span{Line: 1})
	assert.Empty(t, res.Diagnostics)

	pass = w.inf.NewPass()
	sig = pass.Instantiate(twice)
	res = matcher.Bind(sig.Params, []matcher.Arg{kw("f", someFunc), star(qArgs)}, pass, pserr.Span{Line: 1})
	assert.Equal(t, []string{"Expected *-unpacked Q.args and **-unpacked Q.kwargs"}, messages(res))
}

func TestBindRigidParamSpec(t *testing.T) {
	w := newWorld()
	p := w.arena.Declare("P", "module", "module")
	args := &types.Component{Var: p, Name: "P", Which: types.WhichArgs}
	kwargs := &types.Component{Var: p, Name: "P", Which: types.WhichKwargs}

	f := w.arena.Ref(p)
	assert.Empty(t, w.bind(f, star(args), starstar(kwargs)).Diagnostics)
	assert.Equal(t, []string{"Expected *-unpacked P.args and **-unpacked P.kwargs"}, messages(w.bind(f, star(kwargs), starstar(args))))
	assert.Equal(t, []string{"Expected 0 positional arguments, got 1"}, messages(w.bind(f, pos(one()), star(args), starstar(kwargs))))
	assert.Equal(t, []string{"Expected *-unpacked P.args and **-unpacked P.kwargs"}, messages(w.bind(f)))

	foo := mustConcrete(t,
		named("x", types.Int()),
		types.Param{Name: "args", Kind: types.VarPositional, Type: args},
		types.Param{Name: "kwargs", Kind: types.VarKeyword, Type: kwargs},
	)
	assert.Empty(t, w.bind(foo, pos(one()), star(args), starstar(kwargs)).Diagnostics)
	res := w.bind(foo, kw("x", one()), star(args), starstar(kwargs))
	assert.ElementsMatch(t, []string{"Unexpected keyword argument `x`", "Expected 1 more positional argument"}, messages(res))
}

func TestBindConcatenatedRigidTail(t *testing.T) {
	w := newWorld()
	twice := twiceSig(t, w)
	p2 := w.arena.Declare("P2", "def g", "def g")
	x := &types.Callable{Params: types.Concat([]types.Type{types.Int()}, w.arena.Ref(p2)), Return: types.Int()}

	call := func(args ...matcher.Arg) *matcher.Result {
		pass := w.inf.NewPass()
		sig := pass.Instantiate(twice)
		return matcher.Bind(sig.Params, args, pass, pserr.Span{Line: 1})
	}

	assert.Equal(t, []string{"Expected 1 more positional argument"}, messages(call(pos(x))))
	assert.Equal(t, []pserr.Kind{pserr.ArgumentTypeMismatch}, kinds(call(pos(x), pos(one()))))
	assert.Equal(t, []pserr.Kind{pserr.TooManyPositionalArguments}, kinds(call(pos(x), pos(one()), pos(one()))))

	p2Args := &types.Component{Var: p2, Name: "P2", Which: types.WhichArgs}
	p2Kwargs := &types.Component{Var: p2, Name: "P2", Which: types.WhichKwargs}
	assert.Empty(t, call(pos(x), pos(one()), star(p2Args), starstar(p2Kwargs)).Diagnostics)
}

func TestBindGradual(t *testing.T) {
	w := newWorld()
	assert.Empty(t, w.bind(types.Gradual{}, pos(one()), kw("z", a()), star(types.Unknown{})).Diagnostics)

	open := types.Concat([]types.Type{types.Int()}, types.Gradual{})
	assert.Empty(t, w.bind(open, pos(one()), pos(a()), kw("z", a())).Diagnostics)
	assert.Equal(t, []pserr.Kind{pserr.ArgumentTypeMismatch}, kinds(w.bind(open, pos(a()))))
	assert.Equal(t, []pserr.Kind{pserr.MissingRequiredArgument}, kinds(w.bind(open)))
}
