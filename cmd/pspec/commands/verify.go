package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"martianoff/pspec/internal/checker"
	"martianoff/pspec/internal/checkfile"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file.yaml ...]",
	Short: "Check modules against the diagnostics they expect",
	Long: `Check each module and compare the diagnostics with the expect: lists of
its items. Every expectation must be met by a distinct diagnostic on the same
line, and every diagnostic must be expected.

Without arguments the checker's own fixtures are verified.

Examples:
  pspec verify
  pspec verify twice.yaml decorator.yaml`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		dir, err := checker.FixtureDir()
		if err != nil {
			return fmt.Errorf("no files given and fixtures not found: %w", err)
		}
		if paths, err = filepath.Glob(filepath.Join(dir, "*.yaml")); err != nil {
			return err
		}
		logger.Printf("verifying %d fixture(s) in %s", len(paths), dir)
	}

	p := newPrinter(cmd.OutOrStdout())
	failed := 0
	for _, path := range paths {
		f, err := checkfile.Load(path)
		if err != nil {
			p.line("%s: %v", path, err)
			failed++
			continue
		}
		mismatches := checkfile.Verify(f, checker.Check(f).Items)
		if len(mismatches) == 0 {
			p.line("%s %s", p.paint(ansiCyan, "OK"), path)
			continue
		}
		failed++
		p.line("%s %s", p.paint(ansiRed, "FAIL"), path)
		for _, m := range mismatches {
			p.line("  %s", m)
		}
	}
	p.line("%d file(s), %d failed", len(paths), failed)
	if failed > 0 {
		return errReported
	}
	return nil
}
