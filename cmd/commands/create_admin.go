package commands

import (
	"fmt"

	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/services"
	"github.com/spf13/cobra"
)

func newCreateAdminCommand(flags *globalFlags) *cobra.Command {
	var input services.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Example: `  mgltickets create-admin --name "Jane Admin" --email jane@example.com \
    --password 's3cret-pass' --phone 0712345678`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			input.Role = models.RoleAdmin
			users := services.NewUserService(repositories.NewUserRepository(rt.db))
			user, err := users.Register(rt.logger.WithContext(cmd.Context()), input)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "full name")
	cmd.Flags().StringVar(&input.Email, "email", "", "login email")
	cmd.Flags().StringVar(&input.Password, "password", "", "password (at least 8 characters)")
	cmd.Flags().StringVar(&input.PhoneNumber, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
