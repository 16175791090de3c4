package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mgltickets/api/config"
	"github.com/mgltickets/api/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var (
		host    string
		port    int
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server and handle requests until SIGINT or SIGTERM,
then drain in-flight requests before exiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			if host != "" {
				rt.cfg.Server.Host = host
			}
			if port != 0 {
				rt.cfg.Server.Port = port
			}
			if migrate {
				if err := config.Migrate(rt.db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				rt.logger.Info().Msg("database schema migrated")
			}

			srv, err := server.New(rt.cfg, rt.db, rt.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "server host address (default: SERVER_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "server port (default: PORT)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}
