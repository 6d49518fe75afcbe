package commands

import (
	"fmt"

	"payflow/internal/cli/client"
	"payflow/internal/cli/config"
	"payflow/internal/cli/ui"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func NewAuthCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  "Register, login, and manage the locally saved session",
	}

	cmd.AddCommand(newRegisterCommand())
	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newWhoamiCommand())

	return cmd
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

func newRegisterCommand() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Example: `  payflowctl auth register
  payflowctl auth register --email merchant@example.com --role merchant`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				result, err := (&promptui.Prompt{Label: "Full Name"}).Run()
				if err != nil {
					return err
				}
				name = result
			}
			if email == "" {
				result, err := (&promptui.Prompt{Label: "Email"}).Run()
				if err != nil {
					return err
				}
				email = result
			}
			if password == "" {
				result, err := (&promptui.Prompt{Label: "Password", Mask: '*'}).Run()
				if err != nil {
					return err
				}
				password = result
			}
			if role == "" {
				sel := promptui.Select{Label: "Role", Items: []string{"user", "merchant", "admin"}}
				_, result, err := sel.Run()
				if err != nil {
					return err
				}
				role = result
			}

			spinner := ui.NewSpinner("Creating account...")
			spinner.Start()
			raw, err := client.New().PublicPost("/auth/register", map[string]string{
				"name": name, "email": email, "password": password, "role": role,
			})
			spinner.Stop()
			if err != nil {
				ui.Error(fmt.Sprintf("registration failed: %v", err))
				return err
			}

			var user userResponse
			if err := client.Decode(raw, &user); err != nil {
				return err
			}

			ui.Success("Account created")
			ui.Info(fmt.Sprintf("id: %s  email: %s  role: %s", user.ID, user.Email, user.Role))
			ui.Info("Next: payflowctl auth login")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", "", "user, merchant, or admin")
	return cmd
}

func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the access token locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				result, err := (&promptui.Prompt{Label: "Email"}).Run()
				if err != nil {
					return err
				}
				email = result
			}
			if password == "" {
				result, err := (&promptui.Prompt{Label: "Password", Mask: '*'}).Run()
				if err != nil {
					return err
				}
				password = result
			}

			spinner := ui.NewSpinner("Logging in...")
			spinner.Start()
			raw, err := client.New().PublicPost("/auth/login-json", map[string]string{
				"email": email, "password": password,
			})
			spinner.Stop()
			if err != nil {
				ui.Error(fmt.Sprintf("login failed: %v", err))
				return err
			}

			var login loginResponse
			if err := client.Decode(raw, &login); err != nil {
				return err
			}
			if err := config.SaveLogin(login.AccessToken, email); err != nil {
				ui.Warning(fmt.Sprintf("could not save credentials: %v", err))
			}

			ui.Success("Login successful")
			ui.Info(fmt.Sprintf("logged in as %s, token expires %s", email, login.ExpiresAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the locally saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearCredentials(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.Success("Logged out")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			email := config.UserEmail()
			if email == "" && config.KeyID() == "" {
				ui.Warning("not logged in")
				ui.Info("run: payflowctl auth login")
				return nil
			}
			if email != "" {
				ui.Info(fmt.Sprintf("user session: %s", email))
			}
			if keyID := config.KeyID(); keyID != "" {
				ui.Info(fmt.Sprintf("api key: %s", keyID))
			}
			ui.Info(fmt.Sprintf("api url: %s", config.APIURL()))
			return nil
		},
	}
}
