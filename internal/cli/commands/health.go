package commands

import (
	"encoding/json"
	"fmt"

	"payflow/internal/cli/client"
	"payflow/internal/cli/config"
	"payflow/internal/cli/ui"

	"github.com/spf13/cobra"
)

func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API's dependency health",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := client.New().GetRaw("/health")
			if err != nil {
				ui.Error(fmt.Sprintf("health check failed: %v", err))
				return err
			}

			var status map[string]interface{}
			if err := json.Unmarshal(raw, &status); err != nil {
				return err
			}

			ui.Info(fmt.Sprintf("api url: %s", config.APIURL()))
			for name, v := range status {
				ui.Info(fmt.Sprintf("%s: %v", name, v))
			}
			return nil
		},
	}
}
