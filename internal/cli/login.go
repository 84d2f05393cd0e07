package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/marofny/deckhand/internal/shell/client"
)

// =============================================================================
// login
// =============================================================================

var (
	loginURL   string
	loginToken string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the control plane URL and access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := loginURL
		token := loginToken

		var err error
		if url == "" {
			url, err = pterm.DefaultInteractiveTextInput.Show("Control plane URL")
			if err != nil {
				return err
			}
		}
		if token == "" {
			token, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Access token")
			if err != nil {
				return err
			}
		}

		api, err := client.New(url, token)
		if err != nil {
			return err
		}
		me, err := api.Me()
		if err != nil {
			return err
		}

		data := &UserData{RemoteURL: url, Token: token}
		if err := data.Save(); err != nil {
			return err
		}

		pterm.Success.Printfln("Logged in as %s (%s)", me.Name, me.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginURL, "url", "", "control plane URL")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "access token")
}
