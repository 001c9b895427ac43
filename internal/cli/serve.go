package cli

import (
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/habitoapp/habito-server/internal/di"
	"github.com/habitoapp/habito-server/internal/logger"
)

func (a *app) serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server until interrupted.

Examples:
  habitoctl serve
  habitoctl serve --port 9090 --data-path /var/lib/habito`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.flags.Port = port
			injector, err := a.container()
			if err != nil {
				return err
			}
			if err := di.Bootstrap(injector); err != nil {
				_ = injector.Shutdown()
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			log := do.MustInvoke[*logger.Logger](injector)
			log.Info("Shutting down server gracefully...")
			if err := injector.Shutdown(); err != nil {
				log.Error("Shutdown error", "error", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Server port (default: 8080)")
	return cmd
}
