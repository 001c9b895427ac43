package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/habitoapp/habito-server/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "habitoctl %s (%s)\n", version.Version, runtime.Version())
		},
	}
}
