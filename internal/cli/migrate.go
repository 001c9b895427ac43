package cli

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/habitoapp/habito-server/internal/config"
	"github.com/habitoapp/habito-server/internal/di/providers"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Create or upgrade the SQLite schema and the session store without
starting the server. The schema is idempotent, so running it twice is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			injector, err := a.container()
			if err != nil {
				return err
			}
			defer func() { _ = injector.Shutdown() }()

			cfg := do.MustInvoke[*config.Config](injector)
			if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			if _, err := do.Invoke[*providers.KVHandle](injector); err != nil {
				return fmt.Errorf("open session store: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date: %s\n", cfg.Storage.DatabasePath())
			return nil
		},
	}
}
