package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
)

var createCmd = &cobra.Command{
	Use:   "create <email> <name>",
	Short: "Register a new user",
	Long: `Register a new active user. The email must not belong to another user.

Examples:
  shop user create jo@example.com "Jo Doe"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		user, err := app.Users.CreateUser(cmd.Context(), userApp.CreateUserCommand{
			Email: args[0],
			Name:  args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return printUser(cmd.OutOrStdout(), user)
	},
}
