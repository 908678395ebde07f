package component_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/pspec/internal/component"
	"martianoff/pspec/internal/types"
	"martianoff/pspec/pserr"
)

type scopeSet map[types.VarID]bool

func (s scopeSet) InScope(v types.VarID) bool { return s[v] }

func kinds(diags []*pserr.Diagnostic) []pserr.Kind {
	out := make([]pserr.Kind, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Kind)
	}
	return out
}

func TestValidate(t *testing.T) {
	arena := types.NewArena()
	p1 := arena.Declare("P1", "module", "module")
	p2 := arena.Declare("P2", "module", "module")
	args := func(v types.VarID, pos component.Position) component.Use {
		return component.Use{Component: &types.Component{Var: v, Name: arena.Name(v), Which: types.WhichArgs}, Position: pos}
	}
	kwargs := func(v types.VarID, pos component.Position) component.Use {
		return component.Use{Component: &types.Component{Var: v, Name: arena.Name(v), Which: types.WhichKwargs}, Position: pos}
	}
	inScope := scopeSet{p1: true, p2: true}

	tests := []struct {
		name  string
		uses  []component.Use
		scope component.Scope
		want  []pserr.Kind
	}{
		{
			name:  "forwarding pair",
			uses:  []component.Use{args(p1, component.AtVarPositional), kwargs(p1, component.AtVarKeyword)},
			scope: inScope,
			want:  []pserr.Kind{},
		},
		{
			name:  "swapped components",
			uses:  []component.Use{kwargs(p1, component.AtVarPositional), args(p1, component.AtVarKeyword)},
			scope: inScope,
			want:  []pserr.Kind{pserr.MisplacedComponent, pserr.MisplacedComponent},
		},
		{
			name:  "plain parameter",
			uses:  []component.Use{args(p1, component.AtParameter)},
			scope: inScope,
			want:  []pserr.Kind{pserr.MisplacedComponent},
		},
		{
			name:  "variable annotation",
			uses:  []component.Use{kwargs(p1, component.AtVariable)},
			scope: inScope,
			want:  []pserr.Kind{pserr.MisplacedComponent},
		},
		{
			name:  "args alone",
			uses:  []component.Use{args(p1, component.AtVarPositional)},
			scope: inScope,
			want:  []pserr.Kind{pserr.ComponentsMustBeUsedTogether},
		},
		{
			name:  "kwargs alone",
			uses:  []component.Use{kwargs(p1, component.AtVarKeyword)},
			scope: inScope,
			want:  []pserr.Kind{pserr.ComponentsMustBeUsedTogether},
		},
		{
			name:  "different origins",
			uses:  []component.Use{args(p1, component.AtVarPositional), kwargs(p2, component.AtVarKeyword)},
			scope: inScope,
			want:  []pserr.Kind{pserr.OriginMismatch},
		},
		{
			name:  "out of scope",
			uses:  []component.Use{args(p1, component.AtVarPositional), kwargs(p1, component.AtVarKeyword)},
			scope: scopeSet{},
			want:  []pserr.Kind{pserr.OutOfScope, pserr.OutOfScope},
		},
		{
			name:  "out of scope and misplaced",
			uses:  []component.Use{args(p1, component.AtReturn)},
			scope: scopeSet{},
			want:  []pserr.Kind{pserr.OutOfScope, pserr.MisplacedComponent},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(component.Validate(tt.uses, tt.scope)))
		})
	}
}

func TestValidateMessages(t *testing.T) {
	arena := types.NewArena()
	p := arena.Declare("P", "module", "module")
	diags := component.Validate([]component.Use{
		{Component: &types.Component{Var: p, Name: "P", Which: types.WhichKwargs}, Position: component.AtVarPositional, Span: pserr.Span{Line: 3, Column: 5}},
	}, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "`ParamSpec` **kwargs is only allowed in a **kwargs annotation", diags[0].Msg)
	assert.Equal(t, 3, diags[0].Span.Line)
}

func TestProject(t *testing.T) {
	c, err := types.NewConcrete([]types.Param{
		{Kind: types.PositionalOnly, Type: types.Int()},
		{Name: "a", Kind: types.PositionalOrKeyword, Type: types.Str()},
		{Name: "rest", Kind: types.VarPositional, Type: types.Bool()},
		{Name: "k", Kind: types.KeywordOnly, Type: types.Float()},
		{Name: "extra", Kind: types.VarKeyword, Type: types.Int()},
	})
	require.NoError(t, err)

	assert.Equal(t, "tuple[int, str, *tuple[bool, ...]]", component.Project(c, types.WhichArgs).String())
	assert.Equal(t, "{a: str, k: float, **int}", component.Project(c, types.WhichKwargs).String())

	assert.Equal(t, "tuple[object, ...]", component.Project(types.Gradual{}, types.WhichArgs).String())
	assert.Equal(t, "dict[str, object]", component.Project(types.Gradual{}, types.WhichKwargs).String())

	arena := types.NewArena()
	p := arena.Declare("P", "module", "module")
	assert.Equal(t, "tuple[object, ...]", component.Project(arena.Ref(p), types.WhichArgs).String())
}
