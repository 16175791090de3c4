package commands

import (
	"github.com/mgltickets/api/config"
	"github.com/spf13/cobra"
)

func newMigrateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := config.Migrate(rt.db); err != nil {
				return err
			}
			rt.logger.Info().Msg("database schema migrated")
			return nil
		},
	}
}
