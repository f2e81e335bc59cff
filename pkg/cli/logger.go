package cli

import (
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newLogger(verbosity int) *slog.Logger {
	level := charmlog.WarnLevel
	switch {
	case verbosity >= 2:
		level = charmlog.DebugLevel
	case verbosity == 1:
		level = charmlog.InfoLevel
	}

	return slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: false,
		Level:           level,
	}))
}

func addVerboseFlag(v *int, cmd *cobra.Command) {
	cmd.Flags().CountVarP(v, "verbose", "v", "logging verbosity (repeat for more detail)")
}
