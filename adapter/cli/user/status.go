package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
)

var activateCmd = &cobra.Command{
	Use:   "activate <user-id>",
	Short: "Activate a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		userID, err := cli.ParseID("user", args[0])
		if err != nil {
			return err
		}

		user, err := app.Users.ActivateUser(cmd.Context(), userApp.ActivateUserCommand{UserID: userID})
		if err != nil {
			return fmt.Errorf("failed to activate user: %w", err)
		}

		return printUser(cmd.OutOrStdout(), user)
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <user-id>",
	Short: "Deactivate a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		userID, err := cli.ParseID("user", args[0])
		if err != nil {
			return err
		}

		user, err := app.Users.DeactivateUser(cmd.Context(), userApp.DeactivateUserCommand{UserID: userID})
		if err != nil {
			return fmt.Errorf("failed to deactivate user: %w", err)
		}

		return printUser(cmd.OutOrStdout(), user)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user",
	Long: `Delete a user from every store. Orders placed by the user are kept.

Examples:
  shop user delete 7c9e...`,
	Aliases: []string{"rm"},
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

		if err := app.Users.DeleteUser(cmd.Context(), userApp.DeleteUserCommand{UserID: userID}); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User deleted: %s\n", userID)
		return nil
	},
}
