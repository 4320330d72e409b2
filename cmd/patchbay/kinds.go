package main

import (
	"github.com/aretw0/patchbay/internal/cli"
	"github.com/spf13/cobra"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the object kinds and their inputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := cli.LoadCatalog(cfg)
		if err != nil {
			return err
		}
		cli.PrintKinds(cat, cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
