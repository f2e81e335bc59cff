package cli

import (
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "wfd-release",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Release tooling for the QGIS workflow-documentation plugin",
	}

	cmd.AddCommand(
		cmdRelease(),
		cmdSyncTags(),
		cmdBump(),
		cmdVendor(),
		version.Version(),
	)

	return cmd
}
