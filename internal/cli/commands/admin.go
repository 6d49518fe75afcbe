package commands

import (
	"fmt"

	"payflow/internal/cli/client"
	"payflow/internal/cli/ui"

	"github.com/spf13/cobra"
)

type adminStatsResponse struct {
	TotalOrders     int64 `json:"total_orders"`
	TotalPayments   int64 `json:"total_payments"`
	CapturedAmount  int64 `json:"captured_amount"`
	RefundedAmount  int64 `json:"refunded_amount"`
	FlaggedPayments int64 `json:"flagged_payments"`
	FailedPayments  int64 `json:"failed_payments"`
}

func NewAdminCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Read-only platform analytics (requires an admin session)",
	}
	cmd.AddCommand(newAdminStatsCommand())
	cmd.AddCommand(newAdminFlaggedCommand())
	return cmd
}

func newAdminStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show platform-wide totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := client.New().Get("/admin/stats")
			if err != nil {
				return err
			}
			var s adminStatsResponse
			if err := client.Decode(raw, &s); err != nil {
				return err
			}
			table := ui.NewTable([]string{"METRIC", "VALUE"})
			table.AddRow([]string{"total_orders", fmt.Sprintf("%d", s.TotalOrders)})
			table.AddRow([]string{"total_payments", fmt.Sprintf("%d", s.TotalPayments)})
			table.AddRow([]string{"captured_amount", fmt.Sprintf("%d", s.CapturedAmount)})
			table.AddRow([]string{"refunded_amount", fmt.Sprintf("%d", s.RefundedAmount)})
			table.AddRow([]string{"flagged_payments", fmt.Sprintf("%d", s.FlaggedPayments)})
			table.AddRow([]string{"failed_payments", fmt.Sprintf("%d", s.FailedPayments)})
			table.Render()
			return nil
		},
	}
}

func newAdminFlaggedCommand() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "flagged",
		Short: "List payments the fraud engine flagged",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := client.New().Get(fmt.Sprintf("/admin/flagged?limit=%d&offset=%d", limit, offset))
			if err != nil {
				return err
			}
			var payments []paymentResponse
			if err := client.Decode(raw, &payments); err != nil {
				return err
			}
			table := ui.NewTable([]string{"PAYMENT_REF", "AMOUNT", "METHOD", "STATUS", "RULE_HITS"})
			for _, p := range payments {
				table.AddRow([]string{p.PaymentRef, fmt.Sprintf("%d", p.Amount), p.Method, p.Status, fmt.Sprintf("%v", p.RuleHits)})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}
