package order

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
)

var getCmd = &cobra.Command{
	Use:     "get <order-id>",
	Short:   "Show an order",
	Aliases: []string{"show"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		orderID, err := cli.ParseID("order", args[0])
		if err != nil {
			return err
		}

		order, err := app.Orders.GetOrder(cmd.Context(), orderID)
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}

		return printOrder(cmd.OutOrStdout(), order)
	},
}

var listCmd = &cobra.Command{
	Use:     "list <user-id>",
	Short:   "List the orders of a user",
	Aliases: []string{"ls"},
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

		orders, err := app.Orders.ListOrdersByUser(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("failed to list orders: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, orders)
		}
		if len(orders) == 0 {
			fmt.Fprintln(out, "No orders found.")
			return nil
		}

		fmt.Fprintf(out, "Orders (%d):\n", len(orders))
		for _, o := range orders {
			fmt.Fprintf(out, "  %s  %-10s  %d item(s)  %s %s\n",
				o.ID, o.Status, len(o.Items), o.TotalAmount, o.Currency)
		}
		return nil
	},
}
