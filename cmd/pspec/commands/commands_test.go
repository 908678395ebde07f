package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--color=never"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVerifyFixtures(t *testing.T) {
	out, err := run(t, "verify")
	require.NoError(t, err, out)
	assert.Contains(t, out, ", 0 failed")
}

func TestCheckPrintsDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`body:
  - P = ParamSpec("P")
  - def: "f(x: Callable[P, int]) -> Callable[P, str]"
  - def: "g(a: int) -> int"
  - reveal_type(f(g))
  - f(1)
`), 0o644))

	out, err := run(t, "check", path)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, path+":5:5: [RevealedType] revealed type: (a: int) -> str")
	assert.Contains(t, out, path+":6:7: [ArgumentTypeMismatch] Argument `Literal[1]` is not assignable to parameter `x`")
}

func TestCheckInfoOnlySucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.yaml")
	require.NoError(t, os.WriteFile(path, []byte("body:\n  - reveal_type(1)\n"), 0o644))

	out, err := run(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[RevealedType] revealed type: Literal[1]")
}

func TestCheckMissingFile(t *testing.T) {
	out, err := run(t, "check", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "absent.yaml")
}

func TestInvalidColor(t *testing.T) {
	_, err := run(t, "--color=sometimes", "version")
	assert.ErrorContains(t, err, "invalid --color")
	colorMode = "never"
}
