package checkfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/pspec/internal/checkfile"
	"martianoff/pspec/pserr"
)

const fixture = `name: sample
body:
  - P = ParamSpec("P")
  - def: "decorator(f: Callable[P, int]) -> Callable[P, None]"
    body:
      - pass
  - stmt: decorator(1)
    expect:
      - "ArgumentTypeMismatch: not assignable"
      - RevealedType
`

func TestParse(t *testing.T) {
	f, err := checkfile.Parse([]byte(fixture), "sample.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sample", f.Name)
	require.Len(t, f.Body, 3)

	assign := f.Body[0]
	assert.Equal(t, checkfile.Stmt, assign.Kind)
	assert.Equal(t, `P = ParamSpec("P")`, assign.Source)
	assert.Equal(t, 3, assign.Line)
	assert.Equal(t, 5, assign.Column)

	def := f.Body[1]
	assert.Equal(t, checkfile.Def, def.Kind)
	assert.Equal(t, 4, def.Line)
	assert.Equal(t, 11, def.Column, "the opening quote is skipped")
	require.Len(t, def.Body, 1)
	assert.Equal(t, "pass", def.Body[0].Source)

	call := f.Body[2]
	assert.Equal(t, []checkfile.Expectation{
		{Kind: pserr.ArgumentTypeMismatch, Fragment: "not assignable"},
		{Kind: pserr.RevealedType},
	}, call.Expect)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"top level list", "- x\n", "expected a mapping at the top level"},
		{"unknown top key", "bodies: []\n", `unknown key "bodies"`},
		{"two forms", "body:\n  - stmt: x\n    def: f()\n", "exactly one of stmt, def or class"},
		{"no form", "body:\n  - expect: [UnknownName]\n", "needs one of stmt, def or class"},
		{"statement body", "body:\n  - stmt: x\n    body: [pass]\n", "only def and class items have a body"},
		{"bad kind", "body:\n  - stmt: x\n    expect: [Nope]\n", `unknown diagnostic kind "Nope"`},
		{"bad yaml", "body: [\n", "parsing bad.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkfile.Parse([]byte(tt.input), "bad.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseExpectation(t *testing.T) {
	e, err := checkfile.ParseExpectation("RevealedType: revealed type: (x: int) -> str")
	require.NoError(t, err)
	assert.Equal(t, pserr.RevealedType, e.Kind)
	assert.Equal(t, "revealed type: (x: int) -> str", e.Fragment)
	assert.Equal(t, "RevealedType: revealed type: (x: int) -> str", e.String())
}

func TestVerify(t *testing.T) {
	f, err := checkfile.Parse([]byte(fixture), "sample.yaml")
	require.NoError(t, err)

	at := func(line int) pserr.Span { return pserr.Span{File: "sample.yaml", Line: line, Column: 13} }
	exact := []*pserr.Diagnostic{
		pserr.At(at(7), pserr.RevealedType, "revealed type: None"),
		pserr.At(at(7), pserr.ArgumentTypeMismatch, "Argument `Literal[1]` is not assignable to parameter `f`"),
	}
	assert.Empty(t, checkfile.Verify(f, exact))

	missing := exact[:1]
	got := checkfile.Verify(f, missing)
	require.Len(t, got, 1)
	assert.Equal(t, "missing ArgumentTypeMismatch: not assignable", got[0].Msg)

	extra := append(append([]*pserr.Diagnostic{}, exact...), pserr.At(at(3), pserr.UnknownName, "Could not find name `ParamSpec`"))
	got = checkfile.Verify(f, extra)
	require.Len(t, got, 1)
	assert.Equal(t, "unexpected [UnknownName] Could not find name `ParamSpec`", got[0].Msg)
	assert.Equal(t, 3, got[0].Span.Line)

	stray := []*pserr.Diagnostic{pserr.At(at(40), pserr.UnknownName, "x")}
	got = checkfile.Verify(f, append(append([]*pserr.Diagnostic{}, exact...), stray...))
	require.Len(t, got, 1)
	assert.Equal(t, 40, got[0].Span.Line)
}
