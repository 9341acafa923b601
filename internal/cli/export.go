package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lockport/pkg/errors"
	"github.com/matzehuels/lockport/pkg/export"
	"github.com/matzehuels/lockport/pkg/lock"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	format          string   // output format identifier
	output          string   // output file path (stdout if empty)
	dir             string   // project directory holding the lockfile
	withoutHashes   bool     // omit --hash lines / hashes objects
	dev             bool     // include dev dependencies
	extras          []string // extras to include by name
	allExtras       bool     // include every optional package
	withCredentials bool     // embed index credentials in the output
}

// newExportCmd creates the export command.
func newExportCmd() *cobra.Command {
	opts := exportOpts{format: export.FormatRequirementsTXT, dir: "."}

	cmd := &cobra.Command{
		Use:   "export [project-dir]",
		Short: "Export the resolved lockfile to an installer format",
		Long: `Export the resolved dependency set recorded in poetry.lock.

The project directory (default ".") must contain a poetry.lock; a sibling
pyproject.toml provides the project name and any custom package sources.

Examples:
  lockport export                            # requirements.txt to stdout
  lockport export -o requirements.txt        # write next to the lockfile
  lockport export -f json --dev ./myproject  # JSON manifest with dev deps
  lockport export --extras tls --extras cli  # include named extras`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.dir = args[0]
			}
			return runExport(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "export format: requirements.txt (default), json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, relative to the project dir (stdout if empty)")
	cmd.Flags().BoolVar(&opts.withoutHashes, "without-hashes", false, "omit integrity hashes")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "include dev dependencies")
	cmd.Flags().StringArrayVarP(&opts.extras, "extras", "E", nil, "extras to include (repeatable)")
	cmd.Flags().BoolVar(&opts.allExtras, "all-extras", false, "include all extras")
	cmd.Flags().BoolVar(&opts.withCredentials, "with-credentials", false, "embed index credentials in the output")

	return cmd
}

func runExport(ctx context.Context, opts *exportOpts) error {
	logger := loggerFromContext(ctx)

	// Index credentials may live in a project .env; loading is best-effort.
	if err := godotenv.Load(filepath.Join(opts.dir, ".env")); err == nil {
		logger.Debug("Loaded environment", "file", filepath.Join(opts.dir, ".env"))
	}

	locker := lock.NewLocker(opts.dir)
	pool, err := locker.Pool()
	if err != nil {
		return err
	}

	out := export.Stream(os.Stdout)
	dest := "stdout"
	if opts.output != "" {
		if err := errors.ValidateOutputPath(opts.output); err != nil {
			return err
		}
		out = export.File(opts.dir, opts.output)
		dest = opts.output
	}

	exporter := export.New(locker, pool)
	prog := newProgress(logger)
	err = exporter.Export(opts.format, out, export.Options{
		WithHashes:      !opts.withoutHashes,
		Dev:             opts.dev,
		Extras:          extrasSelection(opts),
		WithCredentials: opts.withCredentials,
	})
	if err != nil {
		return err
	}

	name := locker.ProjectName()
	if name == "" {
		name = opts.dir
	}
	prog.done(fmt.Sprintf("Exported %s as %s", name, opts.format))
	if opts.output != "" {
		printSuccess(os.Stderr, "wrote", dest)
	}
	return nil
}

// extrasSelection maps the --all-extras / --extras flags onto the extras
// scope. --all-extras wins over any named extras.
func extrasSelection(opts *exportOpts) lock.Extras {
	if opts.allExtras {
		return lock.AllExtras()
	}
	if len(opts.extras) > 0 {
		return lock.SomeExtras(opts.extras...)
	}
	return lock.NoExtras()
}
