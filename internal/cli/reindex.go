package cli

import (
	"fmt"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/habitoapp/habito-server/internal/service"
)

func (a *app) reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			injector, err := a.container()
			if err != nil {
				return err
			}
			defer func() { _ = injector.Shutdown() }()

			svc, err := do.Invoke[*service.SearchService](injector)
			if err != nil {
				return err
			}
			stats, err := svc.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents for %d users in %s\n",
				stats.Documents, stats.Users, stats.Took.Round(time.Millisecond))
			return nil
		},
	}
}
