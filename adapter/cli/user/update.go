package user

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
)

var (
	updateName  string
	updateEmail string
)

var updateCmd = &cobra.Command{
	Use:   "update <user-id>",
	Short: "Change a user's name or email",
	Long: `Change the name and/or email of a user. Only the given flags are applied.

Examples:
  shop user update 7c9e... --name "Jo Smith"
  shop user update 7c9e... --email jo.smith@example.com`,
	Aliases: []string{"edit"},
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

		updateUserCmd := userApp.UpdateUserCommand{UserID: userID}
		if cmd.Flags().Changed("name") {
			updateUserCmd.Name = &updateName
		}
		if cmd.Flags().Changed("email") {
			updateUserCmd.Email = &updateEmail
		}
		if updateUserCmd.Name == nil && updateUserCmd.Email == nil {
			return errors.New("nothing to update: use --name or --email")
		}

		user, err := app.Users.UpdateUser(cmd.Context(), updateUserCmd)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		return printUser(cmd.OutOrStdout(), user)
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateName, "name", "", "new display name")
	updateCmd.Flags().StringVar(&updateEmail, "email", "", "new email address")
}
