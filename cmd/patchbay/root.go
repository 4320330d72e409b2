package main

import (
	"fmt"
	"os"

	"github.com/aretw0/patchbay/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "patchbay",
	Short: "Patchbay edits modular signal-processing patches",
	Long: `Patchbay serves patches to editors over a websocket and ships a line editor
and patch inspection tools. Settings come from patchbay.toml, .env,
PATCHBAY_* environment variables and flags, in increasing priority.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// loadConfig resolves the settings for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Flags())
}
