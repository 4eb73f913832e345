package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <email-fragment>",
	Short: "Find users whose email contains a fragment",
	Long: `Search the user read model by email substring.

Examples:
  shop user search example.com
  shop user search jo --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		users, err := app.Users.SearchUsers(cmd.Context(), userApp.SearchUsersQuery{
			Email: args[0],
			Limit: searchLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to search users: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, users)
		}
		if len(users) == 0 {
			fmt.Fprintln(out, "No users found.")
			return nil
		}

		fmt.Fprintf(out, "Users (%d):\n", len(users))
		for _, u := range users {
			status := "active"
			if !u.IsActive {
				status = "inactive"
			}
			fmt.Fprintf(out, "  %s  %-30s  %s (%s)\n", u.ID, u.Email, u.Name, status)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum number of results")
}
