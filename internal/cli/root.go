package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NaufalH27/inquran-be/internal/app"
	"github.com/NaufalH27/inquran-be/internal/database"
	"github.com/NaufalH27/inquran-be/internal/di"
)

type options struct {
	migrate bool
}

// Injectors are swapped in tests.
var (
	initializeApp         = di.InitializeApp
	initializeMaintenance = di.InitializeMaintenance
)

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "inquran-api",
		Short:         "inQuran account and session API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSessionsCommand())
	return cmd
}

func newServeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			a, err := initializeApp(ctx)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return serve(ctx, a, opts.migrate)
		},
	}
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}

func serve(ctx context.Context, a *app.App, migrate bool) error {
	if migrate {
		if err := database.Migrate(a.DB); err != nil {
			return err
		}
		a.Logger.Info("schema migrated")
	}
	return a.Run(ctx)
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := initializeMaintenance(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			defer m.Close()
			if err := database.Migrate(m.DB); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}

func newSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "sessions", Short: "Session maintenance"}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired session rows once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := initializeMaintenance(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			defer m.Close()
			n, err := m.Sessions.PruneExpired(cmd.Context())
			if err != nil {
				return fmt.Errorf("prune sessions: %w", err)
			}
			m.Logger.Info("expired sessions pruned", "deleted", n)
			cmd.Printf("pruned %d expired sessions\n", n)
			return nil
		},
	})
	return cmd
}
