package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
)

var getCmd = &cobra.Command{
	Use:     "get <user-id>",
	Short:   "Show a user",
	Aliases: []string{"show"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		userID, err := cli.ParseID("user", args[0])
		if err != nil {
			return err
		}

		user, err := app.Users.GetUser(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		return printUser(cmd.OutOrStdout(), user)
	},
}

var getByEmailCmd = &cobra.Command{
	Use:   "get-by-email <email>",
	Short: "Show the user registered with an email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		user, err := app.Users.GetUserByEmail(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		return printUser(cmd.OutOrStdout(), user)
	},
}
