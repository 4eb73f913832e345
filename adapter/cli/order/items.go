package order

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
)

var (
	productID   string
	productName string
	price       string
	currency    string
	quantity    int
)

var addItemCmd = &cobra.Command{
	Use:   "add-item <order-id>",
	Short: "Add a product to a pending order",
	Long: `Add a product line to a pending order. Adding a product that is already
on the order increases its quantity. Omit --product-id to use a new product id.

Examples:
  shop order add-item 3f2a... --name "Widget" --price 10.00 --quantity 2
  shop order add-item 3f2a... --product-id 9b1c... --name "Widget" --price 10.00 --currency EUR`,
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

		product := uuid.New()
		if productID != "" {
			if product, err = cli.ParseID("product", productID); err != nil {
				return err
			}
		}

		order, err := app.Orders.AddOrderItem(cmd.Context(), orderApp.AddOrderItemCommand{
			OrderID:     orderID,
			ProductID:   product,
			ProductName: productName,
			Price:       price,
			Currency:    currency,
			Quantity:    quantity,
		})
		if err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}

		return printOrder(cmd.OutOrStdout(), order)
	},
}

var removeItemCmd = &cobra.Command{
	Use:   "remove-item <order-id> <item-id>",
	Short: "Remove a line item from a pending order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		orderID, err := cli.ParseID("order", args[0])
		if err != nil {
			return err
		}
		itemID, err := cli.ParseID("item", args[1])
		if err != nil {
			return err
		}

		order, err := app.Orders.RemoveOrderItem(cmd.Context(), orderApp.RemoveOrderItemCommand{
			OrderID: orderID,
			ItemID:  itemID,
		})
		if err != nil {
			return fmt.Errorf("failed to remove item: %w", err)
		}

		return printOrder(cmd.OutOrStdout(), order)
	},
}

func init() {
	addItemCmd.Flags().StringVar(&productID, "product-id", "", "product id (defaults to a new id)")
	addItemCmd.Flags().StringVar(&productName, "name", "", "product name")
	addItemCmd.Flags().StringVar(&price, "price", "", "unit price, e.g. 10.00")
	addItemCmd.Flags().StringVar(&currency, "currency", "USD", "ISO currency code")
	addItemCmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity")
	_ = addItemCmd.MarkFlagRequired("name")
	_ = addItemCmd.MarkFlagRequired("price")
}
