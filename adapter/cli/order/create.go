package order

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
)

var (
	street  string
	city    string
	state   string
	zipCode string
	country string
)

var createCmd = &cobra.Command{
	Use:   "create <user-id>",
	Short: "Open a pending order for a user",
	Long: `Open an empty pending order shipped to the given address.

Examples:
  shop order create 7c9e... --street "1 Main St" --city Springfield --state IL --zip 62701 --country US`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		userID, err := cli.ParseID("user", args[0])
		if err != nil {
			return err
		}

		order, err := app.Orders.CreateOrder(cmd.Context(), orderApp.CreateOrderCommand{
			UserID: userID,
			ShippingAddress: orderApp.ShippingAddressDTO{
				Street:  street,
				City:    city,
				State:   state,
				ZipCode: zipCode,
				Country: country,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return printOrder(cmd.OutOrStdout(), order)
	},
}

func init() {
	createCmd.Flags().StringVar(&street, "street", "", "shipping street")
	createCmd.Flags().StringVar(&city, "city", "", "shipping city")
	createCmd.Flags().StringVar(&state, "state", "", "shipping state or region")
	createCmd.Flags().StringVar(&zipCode, "zip", "", "shipping postal code")
	createCmd.Flags().StringVar(&country, "country", "", "shipping country")
}
