package cli

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/git"
	"github.com/nicevibesplus/qgis-workflow-documentation/pkg/versions"
)

func cmdSyncTags() *cobra.Command {
	var repoDir, remote string
	var verbosity int

	cmd := &cobra.Command{
		Use:   "sync-tags",
		Short: "Replace all local tags with the remote's tag set",
		Long: `Replace all local tags with the remote's tag set

Deletes every local tag, then fetches the remote's tags, so tags that
were deleted on the remote disappear locally too. Useful when the
duplicate-tag check keeps tripping over stale local tags. The release
pipeline itself is never run.
`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := clog.WithLogger(cmd.Context(), clog.NewLogger(newLogger(verbosity)))

			repo, err := git.Open(repoDir)
			if err != nil {
				return err
			}
			return syncTags(ctx, repo, remote)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo-dir", ".", "path to the plugin repository")
	cmd.Flags().StringVar(&remote, "remote", "origin", "remote holding the authoritative tag set")
	addVerboseFlag(&verbosity, cmd)

	return cmd
}

func syncTags(ctx context.Context, repo *git.Repo, remote string) error {
	if err := repo.SyncTags(ctx, remote); err != nil {
		return err
	}

	tags, err := repo.Tags()
	if err != nil {
		return err
	}
	fmt.Printf("local tags now match %s (%d tags)\n", remote, len(tags))
	for _, tag := range versions.SortTags(tags) {
		fmt.Printf("  %s\n", tag)
	}
	return nil
}
