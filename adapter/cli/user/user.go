package user

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
)

// Cmd is the user command group
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
	Long:  `Create, look up, update, activate, deactivate and delete users.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(getByEmailCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(activateCmd)
	Cmd.AddCommand(deactivateCmd)
	Cmd.AddCommand(searchCmd)
}

func printUser(w io.Writer, u *userApp.UserDTO) error {
	if cli.JSONOutput() {
		return cli.PrintJSON(w, u)
	}
	status := "active"
	if !u.IsActive {
		status = "inactive"
	}
	fmt.Fprintf(w, "User %s\n", u.ID)
	fmt.Fprintf(w, "  email:   %s\n", u.Email)
	fmt.Fprintf(w, "  name:    %s\n", u.Name)
	fmt.Fprintf(w, "  status:  %s\n", status)
	fmt.Fprintf(w, "  created: %s\n", u.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  updated: %s\n", u.UpdatedAt.Format(time.RFC3339))
	return nil
}
