package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"martianoff/pspec/internal/checker"
	"martianoff/pspec/internal/checkfile"
	"martianoff/pspec/pserr"
)

var checkWatch bool

var checkCmd = &cobra.Command{
	Use:   "check file.yaml ...",
	Short: "Check modules and print their diagnostics",
	Long: `Check each module and print its diagnostics as file:line:col: [Kind] message.
Files are checked concurrently; the output keeps the order of the arguments.

The command exits with status 1 when any error was reported. reveal_type
results are informational and do not fail the check.

Examples:
  pspec check decorators.yaml
  pspec check --watch testdata/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "Re-check when a file changes")
}

type fileResult struct {
	path  string
	diags *pserr.List
	err   error
}

func checkFile(path string) fileResult {
	f, err := checkfile.Load(path)
	if err != nil {
		return fileResult{path: path, err: err}
	}
	return fileResult{path: path, diags: checker.Check(f)}
}

// checkAll checks every file in its own goroutine. Files share nothing, so
// no locking is needed beyond collecting the results by index.
func checkAll(paths []string) []fileResult {
	results := make([]fileResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			start := time.Now()
			results[i] = checkFile(path)
			logger.Printf("checked %s in %s", path, time.Since(start))
		}(i, path)
	}
	wg.Wait()
	return results
}

// report prints the results and tells whether any of them failed.
func report(p *printer, results []fileResult) bool {
	failed := false
	for _, r := range results {
		if r.err != nil {
			p.line("%s: %v", r.path, r.err)
			failed = true
			continue
		}
		for _, d := range r.diags.Items {
			p.diagnostic(d)
		}
		if r.diags.HasErrors() {
			failed = true
		}
	}
	return failed
}

func runCheck(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd.OutOrStdout())
	failed := report(p, checkAll(args))
	if checkWatch {
		return watch(cmd.Context(), p, args)
	}
	if failed {
		return errReported
	}
	return nil
}

// watch re-checks a file each time it is written until ctx is done.
// Directories are watched rather than files so editors that replace a file
// on save keep being followed.
func watch(ctx context.Context, p *printer, paths []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	logger.Printf("watching %d file(s)", len(watched))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watch error: %v", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[ev.Name] || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			logger.Printf("%s changed", ev.Name)
			p.line("--- %s", ev.Name)
			report(p, checkAll([]string{ev.Name}))
		}
	}
}
