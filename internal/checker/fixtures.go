package checker

import (
	"os"
	"path/filepath"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
)

// FixtureDir returns the directory holding the checker's YAML fixtures.
// Under Bazel it is found through the runfiles; otherwise it is located
// relative to the module root found by walking up to go.mod.
func FixtureDir() (string, error) {
	if p, err := bazel.Runfile("internal/checker/testdata/twice.yaml"); err == nil {
		return filepath.Dir(p), nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "internal", "checker", "testdata"), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
