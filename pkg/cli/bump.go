package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/git"
	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/metadata"
	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/versions"
)

func cmdBump() *cobra.Command {
	var repoDir, metadataFile string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:     "bump <version>",
		Short:   "Rewrite the version key in the plugin metadata file",
		Example: "  wfd-release bump v1.2.3",
		Long: `Rewrite the version key in the plugin metadata file

Shows the resulting change and asks for confirmation. Answering no
restores the file to its committed content. The change is staged but
not committed; use the release subcommand for the full pipeline.
`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := versions.Parse(args[0])
			if err != nil {
				return fmt.Errorf("bad version %q: %w", args[0], err)
			}

			repo, err := git.Open(repoDir)
			if err != nil {
				return err
			}

			path := filepath.Join(repoDir, metadataFile)
			oldLine, newLine, err := metadata.SetVersion(path, v.Number())
			if err != nil {
				return err
			}

			fmt.Printf("%s\n%s\n%s\n",
				metadataFile,
				color.New(color.FgRed).Sprintf("-%s", oldLine),
				color.New(color.FgGreen).Sprintf("+%s", newLine),
			)

			ok, err := newConfirmer(assumeYes).Confirm("Keep this version change?")
			if err != nil {
				return err
			}
			if !ok {
				if err := repo.RestoreFile(metadataFile); err != nil {
					return fmt.Errorf("failed to revert %s: %w", metadataFile, err)
				}
				fmt.Fprintf(os.Stderr, "%s left unchanged\n", metadataFile)
				return nil
			}

			return repo.Add(metadataFile)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo-dir", ".", "path to the plugin repository")
	cmd.Flags().StringVar(&metadataFile, "metadata-file", "Plugin/metadata.txt", "plugin metadata file carrying the version key")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every prompt")

	return cmd
}
