package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/pspec/internal/analyzer"
	"martianoff/pspec/internal/component"
	"martianoff/pspec/internal/syntax"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

type env struct {
	scope *analyzer.Scope
	arena *types.Arena
	diags *pserr.List
	p     types.VarID
}

func newEnv() *env {
	e := &env{scope: analyzer.NewModuleScope(), arena: types.NewArena(), diags: &pserr.List{}}
	e.p = e.declareSpec("P")
	e.scope.Define("T", &analyzer.Symbol{Kind: analyzer.SymTypeVar, Var: &types.TypeVar{Name: "T"}})
	return e
}

func (e *env) declareSpec(name string) types.VarID {
	v := e.arena.Declare(name, "module", "module")
	e.scope.Define(name, &analyzer.Symbol{Kind: analyzer.SymParamSpec, Spec: v})
	return v
}

func at(p syntax.Pos) pserr.Span { return pserr.Span{Line: p.Line, Column: p.Col} }

func (e *env) lowerer() *analyzer.Lowerer {
	return analyzer.NewLowerer(e.scope, e.arena, at, e.diags)
}

func (e *env) lower(t *testing.T, src string) types.Type {
	t.Helper()
	expr, err := syntax.ParseExpr(src)
	require.NoError(t, err)
	return e.lowerer().Type(expr)
}

func (e *env) def(t *testing.T, scope *analyzer.Scope, src string) *analyzer.Signature {
	t.Helper()
	d, err := syntax.ParseDef(src)
	require.NoError(t, err)
	return analyzer.LowerDef(d, scope, e.arena, at, e.diags, nil)
}

func kinds(l *pserr.List) []pserr.Kind {
	var out []pserr.Kind
	for _, d := range l.Items {
		out = append(out, d.Kind)
	}
	return out
}

func TestLowerValidForms(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Callable[P, int]", "(**P) -> int"},
		{"Callable[Concatenate[int, P], int]", "(int, **P) -> int"},
		{"Callable[Concatenate[int, str, P], int]", "(int, str, **P) -> int"},
		{"Callable[..., None]", "(...) -> None"},
		{"Callable[[int, str], bool]", "(int, str) -> bool"},
		{"Callable[Concatenate[int, ...], int]", "(int, ...) -> int"},
		{"int | str", "int | str"},
		{"tuple[int, ...]", "tuple[int, ...]"},
		{"tuple[int, str]", "tuple[int, str]"},
		{"dict[str, int]", "dict[str, int]"},
		{"list[T]", "list[T]"},
		{`"int"`, "int"},
		{`Callable["P", int]`, "(**P) -> int"},
		{"Any", "Any"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := newEnv()
			got := e.lower(t, tt.input)
			assert.Empty(t, e.diags.Items)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestLowerInvalidContexts(t *testing.T) {
	tests := []struct {
		input string
		want  []pserr.Kind
		msg   string
	}{
		{"P", []pserr.Kind{pserr.InvalidParamSpecContext}, "`ParamSpec` is not allowed in this context"},
		{"Concatenate[int, P]", []pserr.Kind{pserr.ConcatenateNotAllowed}, "`Concatenate[int, P]` is not allowed in this context"},
		{"Callable[Concatenate[P, P], int]", []pserr.Kind{pserr.InvalidParamSpecContext}, "`ParamSpec` is not allowed in this context"},
		{"list[P]", []pserr.Kind{pserr.InvalidParamSpecContext}, "`ParamSpec` cannot be used for type parameter"},
		{"Callable[[int, str], P]", []pserr.Kind{pserr.InvalidParamSpecContext}, "`ParamSpec` is not allowed in this context"},
		{"Callable[[P, str], int]", []pserr.Kind{pserr.InvalidParamSpecContext}, "`ParamSpec` is not allowed in this context"},
		{`Callable[Concatenate[int, "oops"], int]`, []pserr.Kind{pserr.InvalidTypeForm, pserr.InvalidParamSpecContext}, "Expected a type form"},
		{"Callable[Concatenate[int, str], int]", []pserr.Kind{pserr.InvalidParamSpecContext}, "Expected a `ParamSpec`"},
		{"Callable[int, int]", []pserr.Kind{pserr.InvalidTypeForm}, "Expected a parameter list"},
		{"Missing", []pserr.Kind{pserr.UnknownName}, "Could not find name `Missing`"},
		{"P.other", []pserr.Kind{pserr.InvalidTypeForm}, "`ParamSpec` has no attribute `other`"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := newEnv()
			e.lower(t, tt.input)
			assert.Equal(t, tt.want, kinds(e.diags))
			require.NotEmpty(t, e.diags.Items)
			assert.Contains(t, e.diags.Items[0].Msg, tt.msg)
		})
	}
}

func TestLowerRecordsComponentUses(t *testing.T) {
	e := newEnv()
	l := e.lowerer()
	l.Position = component.AtVarPositional
	expr, err := syntax.ParseExpr("P.args")
	require.NoError(t, err)
	got := l.Type(expr)
	assert.Equal(t, &types.Component{Var: e.p, Name: "P", Which: types.WhichArgs}, got)
	require.Len(t, l.Uses, 1)
	assert.Equal(t, component.AtVarPositional, l.Uses[0].Position)
	assert.Empty(t, l.Listed, "a component use is not a parameter-list use")
}

func TestGenericClassArguments(t *testing.T) {
	e := newEnv()
	x := analyzer.NewClassInfo("X")
	tv := &types.TypeVar{Name: "T"}
	x.TypeParams = []types.TypeParam{{Var: tv, Name: "T"}, {Spec: e.p, Name: "P"}}
	e.scope.Define("X", &analyzer.Symbol{Kind: analyzer.SymClass, Class: x})
	z := analyzer.NewClassInfo("Z")
	z.TypeParams = []types.TypeParam{{Spec: e.p, Name: "P"}}
	e.scope.Define("Z", &analyzer.Symbol{Kind: analyzer.SymClass, Class: z})

	tests := []struct {
		input string
		want  string
	}{
		{"X[int, P]", "X[int, P]"},
		{"X[int, Concatenate[int, P]]", "X[int, Concatenate[int, P]]"},
		{"X[int, [int, bool]]", "X[int, [int, bool]]"},
		{"X[int, ...]", "X[int, ...]"},
		{"X", "X[Unknown, ...]"},
		{"Z[[int, str, bool]]", "Z[[int, str, bool]]"},
		{"Z[int, str, bool]", "Z[[int, str, bool]]"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e.diags.Items = nil
			assert.Equal(t, tt.want, e.lower(t, tt.input).String())
			assert.Empty(t, e.diags.Items)
		})
	}

	e.diags.Items = nil
	e.lower(t, "X[int, int]")
	require.Len(t, e.diags.Items, 1)
	assert.Equal(t, pserr.InvalidParamSpecContext, e.diags.Items[0].Kind)
	assert.Equal(t, "Expected a valid ParamSpec expression", e.diags.Items[0].Msg)
}

func TestAliasClosesFreeParamSpec(t *testing.T) {
	e := newEnv()
	expr, err := syntax.ParseExpr("Callable[P, None]")
	require.NoError(t, err)
	got := e.lowerer().Alias(expr)
	assert.Equal(t, "(...) -> None", got.String())
}

func TestLowerDefInfersTypeParams(t *testing.T) {
	e := newEnv()
	sig := e.def(t, e.scope, "decorator(f: Callable[P, int]) -> Callable[P, None]")
	assert.Empty(t, e.diags.Items)
	assert.Equal(t, "[**P](f: (**P) -> int) -> (**P) -> None", sig.Callable.String())
	assert.True(t, sig.Scope.InScope(e.p))
	assert.False(t, e.scope.InScope(e.p))

	sig = e.def(t, e.scope, "identity[**Q, R](x: Callable[Q, R]) -> Callable[Q, R]")
	assert.Empty(t, e.diags.Items)
	assert.Equal(t, "[**Q, R](x: (**Q) -> R) -> (**Q) -> R", sig.Callable.String())

	sig = e.def(t, e.scope, "pick(x: T, y: T) -> T")
	assert.Equal(t, "[T](x: T, y: T) -> T", sig.Callable.String())
}

func TestLowerDefParameterKinds(t *testing.T) {
	e := newEnv()
	sig := e.def(t, e.scope, "f(a, /, b, *args: int, c, **kw: str)")
	assert.Empty(t, e.diags.Items)
	assert.Equal(t, "(Unknown, b: Unknown, *args: int, c: Unknown, **kw: str) -> Unknown", sig.Callable.String())

	args, ok := sig.Scope.LookupLocal("args")
	require.True(t, ok)
	assert.Equal(t, "tuple[int, ...]", args.Type.String())
	kw, ok := sig.Scope.LookupLocal("kw")
	require.True(t, ok)
	assert.Equal(t, "dict[str, str]", kw.Type.String())
	assert.Nil(t, sig.Scope.Returns)

	sig = e.def(t, e.scope, "g(*, x: int) -> None")
	assert.Equal(t, "(*, x: int) -> None", sig.Callable.String())

	e.def(t, e.scope, "h(a=1, b)")
	assert.Equal(t, []pserr.Kind{pserr.InvalidShape}, kinds(e.diags))
}

func TestLowerDefComponentScope(t *testing.T) {
	e := newEnv()
	e.def(t, e.scope, "out_of_scope(*args: P.args, **kwargs: P.kwargs) -> None")
	assert.Equal(t, []pserr.Kind{pserr.OutOfScope, pserr.OutOfScope}, kinds(e.diags))

	e.diags.Items = nil
	outer := e.def(t, e.scope, "outer(f: Callable[P, int]) -> None")
	inner := e.def(t, outer.Scope, "inner(*args: P.args, **kwargs: P.kwargs) -> None")
	assert.Empty(t, e.diags.Items)
	assert.False(t, inner.Callable.IsGeneric(), "P belongs to the enclosing function")
	args, ok := inner.Scope.LookupLocal("args")
	require.True(t, ok)
	assert.Equal(t, "P.args", args.Type.String())

	e.def(t, outer.Scope, "mixed(*args: P.kwargs, **kwargs: P.args) -> None")
	assert.Equal(t, []pserr.Kind{pserr.MisplacedComponent, pserr.MisplacedComponent}, kinds(e.diags))

	e.diags.Items = nil
	e.def(t, outer.Scope, "alone(*args: P.args) -> None")
	assert.Equal(t, []pserr.Kind{pserr.ComponentsMustBeUsedTogether}, kinds(e.diags))

	e.diags.Items = nil
	e.def(t, e.scope, "explicit[**Q](*args: Q.args, **kwargs: Q.kwargs) -> None")
	assert.Empty(t, e.diags.Items)
}

func TestLowerClass(t *testing.T) {
	e := newEnv()
	c, err := syntax.ParseClass("Y(Generic[T, P])")
	require.NoError(t, err)
	info, body := analyzer.LowerClass(c, e.scope, e.arena, at, e.diags)
	assert.Empty(t, e.diags.Items)
	require.Len(t, info.TypeParams, 2)
	assert.Equal(t, "T", info.TypeParams[0].Name)
	assert.True(t, info.TypeParams[1].IsSpec())
	assert.True(t, body.InScope(e.p))
	assert.Equal(t, "Y[T, P]", info.Self().String())

	c, err = syntax.ParseClass("X2[U, **Q]")
	require.NoError(t, err)
	info, body = analyzer.LowerClass(c, e.scope, e.arena, at, e.diags)
	require.Len(t, info.TypeParams, 2)
	assert.Equal(t, "**Q", info.TypeParams[1].String())

	init, err := syntax.ParseDef("__init__(self, f: Callable[Q, str], prop: U) -> None")
	require.NoError(t, err)
	sig := analyzer.LowerDef(init, body, e.arena, at, e.diags, info)
	assert.Empty(t, e.diags.Items)
	assert.False(t, sig.Callable.IsGeneric(), "the class binds U and Q")
	assert.Equal(t, "X2[U, Q]", firstParamType(sig.Callable))
	assert.Equal(t, "(f: (**Q) -> str, prop: U) -> None", analyzer.DropFirst(sig.Callable).String())
}

func firstParamType(c *types.Callable) string {
	return c.Params.(*types.Concrete).Params[0].Type.String()
}
