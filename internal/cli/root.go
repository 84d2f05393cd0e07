// Package cli implements the command-line interface for deckhand-cli.
package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Version information (set by build)
var Version = "dev"

// Global flags
var (
	manifestFile string
	contextDir   string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "deckhand-cli",
	Short: "Deploy projects onto a Deckhand cluster",
	Long: `deckhand-cli plans and applies project deployments against a Deckhand
control plane. It builds application images locally, uploads them into the
cluster, and drives the Swarm service API through the control plane.

Authenticate once with "deckhand-cli login"; the remote URL and token are
stored in your user config directory.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Errors are printed here so main stays a
// one-liner.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestFile, "file", "f", "deckhand.yaml", "manifest file name")
	rootCmd.PersistentFlags().StringVarP(&contextDir, "context", "C", ".", "project directory the manifest and build contexts are relative to")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(secretCmd)
}
