// Package cli implements the lockport command-line interface.
//
// The CLI exposes a single export command that converts a project's
// resolved lockfile into installer-consumable formats. It is built using
// cobra; all commands support --verbose (-v) for debug-level logging, and
// loggers are passed through context.Context.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lockport/pkg/buildinfo"
)

// Execute runs the lockport CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "lockport",
		Short:        "Lockport exports resolved lockfiles to installer formats",
		Long:         `Lockport converts a resolved dependency set (poetry.lock) into pinned, installer-consumable manifests: requirements.txt or structured JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newExportCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
