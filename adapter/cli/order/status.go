package order

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm <order-id>",
	Short: "Confirm a pending order",
	Long: `Confirm a pending order with at least one item. The worker then sends
the confirmation email and processes the payment.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		orderID, err := cli.ParseID("order", args[0])
		if err != nil {
			return err
		}

		order, err := app.Orders.ConfirmOrder(cmd.Context(), orderApp.ConfirmOrderCommand{OrderID: orderID})
		if err != nil {
			return fmt.Errorf("failed to confirm order: %w", err)
		}

		return printOrder(cmd.OutOrStdout(), order)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel an order that has not been delivered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		orderID, err := cli.ParseID("order", args[0])
		if err != nil {
			return err
		}

		order, err := app.Orders.CancelOrder(cmd.Context(), orderApp.CancelOrderCommand{OrderID: orderID})
		if err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		return printOrder(cmd.OutOrStdout(), order)
	},
}
