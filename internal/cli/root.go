// Package cli implements habitoctl, the operator command line: serve,
// migrate, reindex and progress reports.
package cli

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/habitoapp/habito-server/internal/config"
	"github.com/habitoapp/habito-server/internal/di"
)

// app holds the flags shared by every command.
type app struct {
	flags config.Flags
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "habitoctl",
		Short: "Operate a Habito server",
		Long: `habitoctl runs and maintains a Habito habit tracking server.

Configuration comes from flags, then environment variables, then the .env
file, the same way the server reads it.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.Env, "env", "", "Environment (development, staging, production)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.DataPath, "data-path", "", "Directory for the database, indexes and keys")
	pf.StringVar(&a.flags.DefaultTimezone, "timezone", "", "Default IANA timezone for users")
	pf.StringVar(&a.flags.EnvFile, "env-file", ".env", "Path to .env file")

	root.AddCommand(
		a.serveCmd(),
		a.migrateCmd(),
		a.reindexCmd(),
		a.reportCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// container loads configuration from the shared flags and returns a
// container around it. Callers must shut it down.
func (a *app) container() (*do.RootScope, error) {
	cfg, err := config.Load(a.flags)
	if err != nil {
		return nil, err
	}
	return di.NewContainer(cfg), nil
}
