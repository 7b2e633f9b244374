// Package cli contains the demo driver for the binding. It is scaffolding
// around the library, not part of the core: it spins up an engine, runs a
// canned evaluation, and shows how each abnormal condition reaches an
// embedding host.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	ren "github.com/renlang/ren-go"
)

var (
	// Version is set via -ldflags.
	Version = "dev"

	verbose bool

	rootCmd = &cobra.Command{
		Use:   "ren",
		Short: "Demo driver for the ren-go embedding binding",
		Long: `ren is a small demonstration host for the ren-go binding.

It creates an interpreter engine, evaluates canned step programs, and
shows how raised errors, cancellation, and exit directives surface to
host code.`,
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ren",
	})
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cobra.OnInitialize(func() {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	})

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(schemaCmd)
}

// Execute runs the root command. An exit directive escaping the demo
// terminates the process with the carried code, per the embedding
// contract.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(Version)); err != nil {
		var exitErr *ren.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
