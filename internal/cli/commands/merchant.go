package commands

import (
	"fmt"

	"payflow/internal/cli/client"
	"payflow/internal/cli/config"
	"payflow/internal/cli/ui"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

type merchantResponse struct {
	ID            string  `json:"id"`
	BusinessName  string  `json:"business_name"`
	BusinessEmail string  `json:"business_email"`
	Website       *string `json:"website,omitempty"`
	WebhookURL    *string `json:"webhook_url,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type issueKeyResponse struct {
	KeyID     string `json:"key_id"`
	KeySecret string `json:"key_secret"`
	Label     string `json:"label"`
}

func NewMerchantCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchant",
		Short: "Manage the merchant profile behind the logged-in user",
	}

	cmd.AddCommand(newMerchantCreateCommand())
	cmd.AddCommand(newMerchantMeCommand())
	cmd.AddCommand(newMerchantWebhookCommand())
	cmd.AddCommand(newMerchantKeysCommand())

	return cmd
}

func newMerchantCreateCommand() *cobra.Command {
	var businessName, businessEmail, website string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the merchant profile for the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if businessName == "" {
				result, err := (&promptui.Prompt{Label: "Business Name"}).Run()
				if err != nil {
					return err
				}
				businessName = result
			}
			if businessEmail == "" {
				result, err := (&promptui.Prompt{Label: "Business Email"}).Run()
				if err != nil {
					return err
				}
				businessEmail = result
			}

			payload := map[string]interface{}{
				"business_name":  businessName,
				"business_email": businessEmail,
			}
			if website != "" {
				payload["website"] = website
			}

			spinner := ui.NewSpinner("Creating merchant profile...")
			spinner.Start()
			raw, err := client.New().Post("/merchants/", payload)
			spinner.Stop()
			if err != nil {
				ui.Error(fmt.Sprintf("create merchant failed: %v", err))
				return err
			}

			var m merchantResponse
			if err := client.Decode(raw, &m); err != nil {
				return err
			}
			ui.Success("Merchant profile created")
			printMerchant(m)
			return nil
		},
	}

	cmd.Flags().StringVar(&businessName, "name", "", "business name")
	cmd.Flags().StringVar(&businessEmail, "email", "", "business email")
	cmd.Flags().StringVar(&website, "website", "", "business website")
	return cmd
}

func newMerchantMeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in user's merchant profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := client.New().Get("/merchants/me")
			if err != nil {
				return err
			}
			var m merchantResponse
			if err := client.Decode(raw, &m); err != nil {
				return err
			}
			printMerchant(m)
			return nil
		},
	}
}

func newMerchantWebhookCommand() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "set-webhook",
		Short: "Set or clear the merchant's webhook URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if url != "" {
				payload["webhook_url"] = url
			}
			raw, err := client.New().Put("/merchants/me/webhook", payload)
			if err != nil {
				ui.Error(fmt.Sprintf("update webhook failed: %v", err))
				return err
			}
			var m merchantResponse
			if err := client.Decode(raw, &m); err != nil {
				return err
			}
			ui.Success("Webhook URL updated")
			printMerchant(m)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "webhook URL, omit to clear")
	return cmd
}

func newMerchantKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}
	cmd.AddCommand(newKeysIssueCommand())
	cmd.AddCommand(newKeysRevokeCommand())
	return cmd
}

func newKeysIssueCommand() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a new API key and save it for use by the v1 commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if label == "" {
				result, err := (&promptui.Prompt{Label: "Key Label"}).Run()
				if err != nil {
					return err
				}
				label = result
			}

			spinner := ui.NewSpinner("Issuing API key...")
			spinner.Start()
			raw, err := client.New().Post("/merchants/me/keys", map[string]string{"label": label})
			spinner.Stop()
			if err != nil {
				ui.Error(fmt.Sprintf("issue key failed: %v", err))
				return err
			}

			var key issueKeyResponse
			if err := client.Decode(raw, &key); err != nil {
				return err
			}
			if err := config.SaveAPIKey(key.KeyID, key.KeySecret); err != nil {
				ui.Warning(fmt.Sprintf("could not save key locally: %v", err))
			}

			ui.Success("API key issued — key_secret is shown once, it is not retrievable again")
			ui.Info(fmt.Sprintf("key_id: %s", key.KeyID))
			ui.Info(fmt.Sprintf("key_secret: %s", key.KeySecret))
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "label for the new key")
	return cmd
}

func newKeysRevokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke [key_id]",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.New().Delete("/merchants/me/keys/" + args[0]); err != nil {
				ui.Error(fmt.Sprintf("revoke failed: %v", err))
				return err
			}
			ui.Success(fmt.Sprintf("key %s revoked", args[0]))
			return nil
		},
	}
}

func printMerchant(m merchantResponse) {
	website := ""
	if m.Website != nil {
		website = *m.Website
	}
	webhook := ""
	if m.WebhookURL != nil {
		webhook = *m.WebhookURL
	}
	table := ui.NewTable([]string{"FIELD", "VALUE"})
	table.AddRow([]string{"id", m.ID})
	table.AddRow([]string{"business_name", m.BusinessName})
	table.AddRow([]string{"business_email", m.BusinessEmail})
	table.AddRow([]string{"website", website})
	table.AddRow([]string{"webhook_url", webhook})
	table.AddRow([]string{"created_at", m.CreatedAt})
	table.Render()
}
