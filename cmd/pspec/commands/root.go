// Package commands provides the CLI commands for the pspec tool.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	colorMode string
	verbose   bool

	// logger traces what the commands do; it writes to stderr with --verbose.
	logger = log.New(io.Discard, "pspec: ", 0)
)

// errReported signals that diagnostics or mismatches were printed and the
// process should exit non-zero without printing anything else.
var errReported = errors.New("problems reported")

var rootCmd = &cobra.Command{
	Use:   "pspec",
	Short: "ParamSpec checker for callable signatures",
	Long: `pspec checks modules that declare and call functions generic over their
parameter lists (ParamSpec, Concatenate, P.args and P.kwargs).

Modules are written as YAML files: a body of statements, function headers
and class headers, each optionally stating the diagnostics it must produce.

Usage:
  pspec check file.yaml ...     Print the diagnostics of each module
  pspec check --watch file.yaml Re-check whenever a file changes
  pspec verify [file.yaml ...]  Compare diagnostics with the expectations
  pspec version                 Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch colorMode {
		case "auto", "always", "never":
		default:
			return fmt.Errorf("invalid --color %q: want auto, always or never", colorMode)
		}
		if verbose {
			logger.SetOutput(os.Stderr)
		}
		return nil
	},
}

// Execute runs the root command. An interrupt cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colorize output: auto, always or never")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
}
