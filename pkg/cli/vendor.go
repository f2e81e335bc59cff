package cli

import (
	"path/filepath"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/pydeps"
)

func cmdVendor() *cobra.Command {
	var repoDir, vendorDir, pipPackage, pythonVersion, python string
	var verbosity int

	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Vendor the plugin's Python dependency into libs/",
		Long: `Vendor the plugin's Python dependency into libs/

Recreates the vendor directory from scratch, installs the package and
its transitive requirements for the target interpreter version, and
strips caches, bytecode, test suites and packaging metadata. The same
step runs inside the release pipeline; this subcommand exists for
trying it out locally.
`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := clog.WithLogger(cmd.Context(), clog.NewLogger(newLogger(verbosity)))

			v := &pydeps.Vendorer{
				Dir:           filepath.Join(repoDir, vendorDir),
				Package:       pipPackage,
				PythonVersion: pythonVersion,
				Python:        python,
			}
			return v.Vendor(ctx)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo-dir", ".", "path to the plugin repository")
	cmd.Flags().StringVar(&vendorDir, "vendor-dir", "libs", "directory the Python dependency is vendored into")
	cmd.Flags().StringVar(&pipPackage, "package", "rocrate", "pip package to vendor")
	cmd.Flags().StringVar(&pythonVersion, "python-version", "3.9", "interpreter version the vendored files must target")
	cmd.Flags().StringVar(&python, "python", "python3", "python executable used to run pip")
	addVerboseFlag(&verbosity, cmd)

	return cmd
}
