package commands

import (
	"fmt"
	"strings"

	"payflow/internal/cli/client"
	"payflow/internal/cli/ui"

	"github.com/spf13/cobra"
)

type paymentResponse struct {
	PaymentRef string   `json:"payment_ref"`
	OrderRef   string   `json:"order_ref"`
	Amount     int64    `json:"amount"`
	Method     string   `json:"method"`
	Status     string   `json:"status"`
	IsFlagged  bool     `json:"is_flagged"`
	RuleHits   []string `json:"rule_hits,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

type refundResponse struct {
	RefundRef string `json:"refund_ref"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func NewPaymentCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Inspect, capture, and refund payments",
	}

	cmd.AddCommand(newPaymentGetCommand())
	cmd.AddCommand(newPaymentCaptureCommand())
	cmd.AddCommand(newPaymentRefundCommand())
	cmd.AddCommand(newPaymentRefundsCommand())

	return cmd
}

func newPaymentGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [payment_ref]",
		Short: "Show a single payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := client.New().Get("/v1/payments/" + args[0])
			if err != nil {
				return err
			}
			var p paymentResponse
			if err := client.Decode(raw, &p); err != nil {
				return err
			}
			printPayment(p)
			return nil
		},
	}
}

func newPaymentCaptureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capture [payment_ref]",
		Short: "Capture an authorized payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spinner := ui.NewSpinner("Capturing payment...")
			spinner.Start()
			raw, err := client.New().Post("/v1/payments/"+args[0]+"/capture", nil)
			spinner.Stop()
			if err != nil {
				ui.Error(fmt.Sprintf("capture failed: %v", err))
				return err
			}
			var p paymentResponse
			if err := client.Decode(raw, &p); err != nil {
				return err
			}
			ui.Success("Payment captured")
			printPayment(p)
			return nil
		},
	}
}

func newPaymentRefundCommand() *cobra.Command {
	var amount int64
	var reason string

	cmd := &cobra.Command{
		Use:   "refund [payment_ref]",
		Short: "Refund a captured payment, in full by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"reason": reason}
			if amount > 0 {
				payload["amount"] = amount
			}

			spinner := ui.NewSpinner("Processing refund...")
			spinner.Start()
			raw, err := client.New().Post("/v1/payments/"+args[0]+"/refund", payload)
			spinner.Stop()
			if err != nil {
				ui.Error(fmt.Sprintf("refund failed: %v", err))
				return err
			}

			var r refundResponse
			if err := client.Decode(raw, &r); err != nil {
				return err
			}
			ui.Success("Refund processed")
			table := ui.NewTable([]string{"FIELD", "VALUE"})
			table.AddRow([]string{"refund_ref", r.RefundRef})
			table.AddRow([]string{"amount", fmt.Sprintf("%d", r.Amount)})
			table.AddRow([]string{"reason", r.Reason})
			table.AddRow([]string{"status", r.Status})
			table.Render()
			return nil
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "partial refund amount, omit for a full refund")
	cmd.Flags().StringVar(&reason, "reason", "requested_by_customer", "refund reason")
	return cmd
}

func newPaymentRefundsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refunds [payment_ref]",
		Short: "List refunds issued against a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := client.New().Get("/v1/payments/" + args[0] + "/refunds")
			if err != nil {
				return err
			}
			var refunds []refundResponse
			if err := client.Decode(raw, &refunds); err != nil {
				return err
			}
			table := ui.NewTable([]string{"REFUND_REF", "AMOUNT", "REASON", "STATUS", "CREATED_AT"})
			for _, r := range refunds {
				table.AddRow([]string{r.RefundRef, fmt.Sprintf("%d", r.Amount), r.Reason, r.Status, r.CreatedAt})
			}
			table.Render()
			return nil
		},
	}
}

func printPayment(p paymentResponse) {
	flagged := "no"
	if p.IsFlagged {
		flagged = fmt.Sprintf("yes (%s)", strings.Join(p.RuleHits, ", "))
	}
	table := ui.NewTable([]string{"FIELD", "VALUE"})
	table.AddRow([]string{"payment_ref", p.PaymentRef})
	table.AddRow([]string{"order_ref", p.OrderRef})
	table.AddRow([]string{"amount", fmt.Sprintf("%d", p.Amount)})
	table.AddRow([]string{"method", p.Method})
	table.AddRow([]string{"status", p.Status})
	table.AddRow([]string{"flagged", flagged})
	table.AddRow([]string{"created_at", p.CreatedAt})
	table.Render()
}
