package order

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
)

// Cmd is the order command group
var Cmd = &cobra.Command{
	Use:   "order",
	Short: "Manage orders",
	Long:  `Create orders, manage their line items and move them through confirmation or cancellation.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addItemCmd)
	Cmd.AddCommand(removeItemCmd)
	Cmd.AddCommand(confirmCmd)
	Cmd.AddCommand(cancelCmd)
}

func printOrder(w io.Writer, o *orderApp.OrderDTO) error {
	if cli.JSONOutput() {
		return cli.PrintJSON(w, o)
	}
	fmt.Fprintf(w, "Order %s\n", o.ID)
	fmt.Fprintf(w, "  user:    %s\n", o.UserID)
	fmt.Fprintf(w, "  status:  %s\n", o.Status)
	fmt.Fprintf(w, "  ship to: %s\n", o.FormattedAddress)
	fmt.Fprintf(w, "  total:   %s %s\n", o.TotalAmount, o.Currency)
	fmt.Fprintf(w, "  created: %s\n", o.CreatedAt.Format(time.RFC3339))
	if len(o.Items) == 0 {
		fmt.Fprintln(w, "  items:   none")
		return nil
	}
	fmt.Fprintf(w, "  items (%d):\n", len(o.Items))
	for _, item := range o.Items {
		fmt.Fprintf(w, "    %s  %s x%d @ %s %s = %s\n",
			item.ID, item.ProductName, item.Quantity, item.Price, item.Currency, item.Total)
	}
	return nil
}
