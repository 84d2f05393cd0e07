package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// =============================================================================
// secret
// =============================================================================

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage the secrets units reference with secret:<key>",
}

var secretAddCmd = &cobra.Command{
	Use:   "add <key> [value]",
	Short: "Store a new secret",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := apiClient()
		if err != nil {
			return err
		}

		value := ""
		if len(args) == 2 {
			value = args[1]
		} else {
			value, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Value")
			if err != nil {
				return err
			}
		}

		if err := api.AddSecret(args[0], value); err != nil {
			return err
		}
		pterm.Success.Printfln("Stored secret %s", args[0])
		return nil
	},
}

var secretSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Replace an existing secret's value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := apiClient()
		if err != nil {
			return err
		}
		if err := api.UpdateSecret(args[0], args[1]); err != nil {
			return err
		}
		pterm.Success.Printfln("Updated secret %s", args[0])
		return nil
	},
}

var secretRmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Delete a secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := apiClient()
		if err != nil {
			return err
		}
		if err := api.DeleteSecret(args[0]); err != nil {
			return err
		}
		pterm.Success.Printfln("Deleted secret %s", args[0])
		return nil
	},
}

var secretShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Reveal a secret's value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := apiClient()
		if err != nil {
			return err
		}
		value, err := api.ShowSecret(args[0])
		if err != nil {
			return err
		}
		pterm.Println(value)
		return nil
	},
}

var secretListCmd = &cobra.Command{
	Use:   "list",
	Short: "List secret keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := apiClient()
		if err != nil {
			return err
		}
		secrets, err := api.ListSecrets()
		if err != nil {
			return err
		}
		if len(secrets) == 0 {
			pterm.Info.Println("No secrets stored")
			return nil
		}

		data := pterm.TableData{{"KEY", "CREATED"}}
		for _, s := range secrets {
			data = append(data, []string{s.Key, s.CreatedAt.Format("2006-01-02 15:04")})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	secretCmd.AddCommand(secretAddCmd)
	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretRmCmd)
	secretCmd.AddCommand(secretShowCmd)
	secretCmd.AddCommand(secretListCmd)
}
