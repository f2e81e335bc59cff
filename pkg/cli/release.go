package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/git"
	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/pydeps"
	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/release"
	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/versions"
)

type releaseOptions struct {
	repoDir       string
	devBranch     string
	releaseBranch string
	remote        string
	metadataFile  string
	ignoreFile    string
	vendorDir     string
	pipPackage    string
	pythonVersion string
	python        string
	skipMerge     bool
	skipPush      bool
	assumeYes     bool
	syncTags      bool
	verbosity     int
}

func cmdRelease() *cobra.Command {
	opts := releaseOptions{}
	cmd := &cobra.Command{
		Use:     "release <version>",
		Short:   "Run the guarded release pipeline",
		Example: "  wfd-release release v1.2.3",
		Long: `Run the guarded release pipeline

The release subcommand merges the development branch into the release
branch, bumps the version key in the plugin metadata file, vendors the
plugin's Python runtime dependency into libs/ for offline use, commits,
creates an annotated tag and pushes branch and tags.

Every precondition is checked before anything is mutated: the release
must start from the development branch with a clean working tree, the
version must have the form vMAJOR.MINOR.PATCH, and the tag must not
exist yet. Confirmation prompts gate the tag sync and the metadata
commit; answering no to the metadata prompt reverts the edit and exits
cleanly.
`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := clog.WithLogger(cmd.Context(), clog.NewLogger(newLogger(opts.verbosity)))

			// historical surface: release --sync-tags instead of the
			// sync-tags subcommand, mutually exclusive with a version
			if opts.syncTags {
				if len(args) != 0 {
					return fmt.Errorf("--sync-tags does not take a version argument")
				}
				repo, err := git.Open(opts.repoDir)
				if err != nil {
					return err
				}
				return syncTags(ctx, repo, opts.remote)
			}

			if len(args) == 0 {
				cmd.Help() //nolint:errcheck
				return fmt.Errorf("missing version argument")
			}

			v, err := versions.Parse(args[0])
			if err != nil {
				return fmt.Errorf("bad version %q: %w", args[0], err)
			}

			repo, err := git.Open(opts.repoDir)
			if err != nil {
				return err
			}

			pipeline := &release.Pipeline{
				Opts: release.Options{
					Version:       v,
					DevBranch:     opts.devBranch,
					ReleaseBranch: opts.releaseBranch,
					Remote:        opts.remote,
					MetadataFile:  opts.metadataFile,
					IgnoreFile:    opts.ignoreFile,
					VendorDir:     opts.vendorDir,
					SkipMerge:     opts.skipMerge,
					SkipPush:      opts.skipPush,
				},
				Repo: repo,
				Installer: &pydeps.Vendorer{
					Dir:           filepath.Join(opts.repoDir, opts.vendorDir),
					Package:       opts.pipPackage,
					PythonVersion: opts.pythonVersion,
					Python:        opts.python,
				},
				Confirm: newConfirmer(opts.assumeYes),
			}

			err = pipeline.Run(ctx)

			log := clog.FromContext(ctx)
			for _, r := range pipeline.Tolerated() {
				log.Warnf("%s: tolerated: %v", r.Stage, r.Err)
			}

			if errors.Is(err, release.ErrDeclined) {
				fmt.Fprintf(os.Stderr, "%s\n", err)
				printAbortGuidance(opts)
				return nil
			}
			if err != nil {
				printRecoveryGuidance(pipeline.Results(), v, opts)
				return err
			}

			printNextSteps(v, opts)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.repoDir, "repo-dir", ".", "path to the plugin repository")
	cmd.Flags().StringVar(&opts.devBranch, "dev-branch", "dev", "development branch the release starts from")
	cmd.Flags().StringVar(&opts.releaseBranch, "release-branch", "master", "branch the release is promoted to")
	cmd.Flags().StringVar(&opts.remote, "remote", "origin", "remote to push branch and tags to")
	cmd.Flags().StringVar(&opts.metadataFile, "metadata-file", "Plugin/metadata.txt", "plugin metadata file carrying the version key")
	cmd.Flags().StringVar(&opts.ignoreFile, "ignore-file", ".gitignore", "file whose release-branch content survives merge conflicts")
	cmd.Flags().StringVar(&opts.vendorDir, "vendor-dir", "libs", "directory the Python dependency is vendored into")
	cmd.Flags().StringVar(&opts.pipPackage, "package", "rocrate", "pip package to vendor")
	cmd.Flags().StringVar(&opts.pythonVersion, "python-version", "3.9", "interpreter version the vendored files must target")
	cmd.Flags().StringVar(&opts.python, "python", "python3", "python executable used to run pip")
	cmd.Flags().BoolVar(&opts.skipMerge, "no-merge", false, "release from the development branch without promoting")
	cmd.Flags().BoolVar(&opts.skipPush, "skip-push", false, "create the commit and tag without pushing")
	cmd.Flags().BoolVarP(&opts.assumeYes, "yes", "y", false, "answer yes to every prompt")
	cmd.Flags().BoolVar(&opts.syncTags, "sync-tags", false, "only sync local tags with the remote, then exit")
	addVerboseFlag(&opts.verbosity, cmd)

	return cmd
}

func printNextSteps(v versions.ReleaseVersion, opts releaseOptions) {
	bold := color.New(color.Bold).SprintFunc()
	if opts.skipPush {
		fmt.Printf("\n%s %s\n\n", bold("Tagged"), v.Tag())
		fmt.Println("Next steps:")
		fmt.Printf("  - push the release: git push %s && git push %s --tags\n", opts.remote, opts.remote)
	} else {
		fmt.Printf("\n%s %s\n\n", bold("Tagged and pushed"), v.Tag())
		fmt.Println("Next steps:")
	}
	fmt.Printf("  - create a release from tag %s on the hosting platform\n", v.Tag())
	fmt.Println("  - zip the plugin and upload it to the QGIS plugin repository")
	fmt.Printf("  - switch back to the development branch: git checkout %s\n", opts.devBranch)
}

func printAbortGuidance(opts releaseOptions) {
	fmt.Println("Nothing was committed or tagged.")
	if !opts.skipMerge {
		fmt.Printf("If the merge already ran, switch back with: git checkout %s\n", opts.devBranch)
	}
}

// printRecoveryGuidance tells the operator how to unwind a partially
// completed release. There is no automatic rollback.
func printRecoveryGuidance(results []release.StageResult, v versions.ReleaseVersion, opts releaseOptions) {
	if len(results) == 0 {
		return
	}
	failed := results[len(results)-1]
	if failed.Stage == "sync-tags" || failed.Stage == "validate" {
		// nothing was mutated yet
		return
	}

	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(os.Stderr, "\n%s the %s stage failed and the repository may be partially modified.\n", red("warning:"), failed.Stage)
	fmt.Fprintln(os.Stderr, "To unwind manually:")
	fmt.Fprintf(os.Stderr, "  - delete the tag if it was created: git tag -d %s\n", v.Tag())
	fmt.Fprintln(os.Stderr, "  - drop the release commit if it was created: git reset --hard HEAD~1")
	fmt.Fprintf(os.Stderr, "  - switch back to the development branch: git checkout %s\n", opts.devBranch)
}
