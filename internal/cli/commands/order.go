package commands

import (
	"fmt"

	"payflow/internal/cli/client"
	"payflow/internal/cli/ui"

	"github.com/spf13/cobra"
)

type orderResponse struct {
	OrderRef  string  `json:"order_ref"`
	Amount    int64   `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	Receipt   string  `json:"receipt,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func NewOrderCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Create and inspect orders (requires an issued API key)",
	}

	cmd.AddCommand(newOrderCreateCommand())
	cmd.AddCommand(newOrderListCommand())
	cmd.AddCommand(newOrderGetCommand())

	return cmd
}

func newOrderCreateCommand() *cobra.Command {
	var amount int64
	var currency, receipt, idempotencyKey string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"amount": amount}
			if currency != "" {
				payload["currency"] = currency
			}
			if receipt != "" {
				payload["receipt"] = receipt
			}
			if idempotencyKey != "" {
				payload["idempotency_key"] = idempotencyKey
			}

			spinner := ui.NewSpinner("Creating order...")
			spinner.Start()
			raw, err := client.New().Post("/v1/orders", payload)
			spinner.Stop()
			if err != nil {
				ui.Error(fmt.Sprintf("create order failed: %v", err))
				return err
			}

			var o orderResponse
			if err := client.Decode(raw, &o); err != nil {
				return err
			}
			ui.Success("Order created")
			printOrder(o)
			return nil
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "amount in the smallest currency unit")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency code, e.g. INR")
	cmd.Flags().StringVar(&receipt, "receipt", "", "merchant-supplied receipt id")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "replay-safe key for this order")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newOrderListCommand() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders for the authenticated merchant",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := client.New().Get(fmt.Sprintf("/v1/orders?limit=%d&offset=%d", limit, offset))
			if err != nil {
				return err
			}
			var orders []orderResponse
			if err := client.Decode(raw, &orders); err != nil {
				return err
			}
			table := ui.NewTable([]string{"ORDER_REF", "AMOUNT", "CURRENCY", "STATUS", "CREATED_AT"})
			for _, o := range orders {
				table.AddRow([]string{o.OrderRef, fmt.Sprintf("%d", o.Amount), o.Currency, o.Status, o.CreatedAt})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func newOrderGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [order_ref]",
		Short: "Show a single order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := client.New().Get("/v1/orders/" + args[0])
			if err != nil {
				return err
			}
			var o orderResponse
			if err := client.Decode(raw, &o); err != nil {
				return err
			}
			printOrder(o)
			return nil
		},
	}
}

func printOrder(o orderResponse) {
	table := ui.NewTable([]string{"FIELD", "VALUE"})
	table.AddRow([]string{"order_ref", o.OrderRef})
	table.AddRow([]string{"amount", fmt.Sprintf("%d", o.Amount)})
	table.AddRow([]string{"currency", o.Currency})
	table.AddRow([]string{"status", o.Status})
	table.AddRow([]string{"receipt", o.Receipt})
	table.AddRow([]string{"created_at", o.CreatedAt})
	table.Render()
}
