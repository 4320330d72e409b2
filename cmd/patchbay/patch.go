package main

import (
	"os"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/aretw0/patchbay/internal/presentation/tui"
	"github.com/aretw0/patchbay/pkg/library"
	"github.com/spf13/cobra"
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Manage saved patches",
	Long:  `List, inspect, graph and remove patches in the configured store.`,
}

var patchLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved patches",
	Args:  cobra.NoArgs,
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Manager, args []string) error {
		return cli.ListPatches(cmd.Context(), lib, cmd.OutOrStdout())
	}),
}

var patchShowCmd = &cobra.Command{
	Use:   "show <patch>",
	Short: "Show a patch with its signal flow",
	Args:  cobra.ExactArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Manager, args []string) error {
		return cli.ShowPatch(cmd.Context(), lib, args[0], cmd.OutOrStdout(), tui.NewRenderer(os.Stdout))
	}),
}

var patchGraphCmd = &cobra.Command{
	Use:   "graph <patch>",
	Short: "Export a patch as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Manager, args []string) error {
		return cli.GraphPatch(cmd.Context(), lib, args[0], cmd.OutOrStdout())
	}),
}

var patchRmCmd = &cobra.Command{
	Use:   "rm <patch>...",
	Short: "Remove one or more patches",
	Args:  cobra.MinimumNArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Manager, args []string) error {
		return cli.RemovePatches(cmd.Context(), lib, args, cmd.OutOrStdout())
	}),
}

// withLibrary opens the configured store around fn.
func withLibrary(fn func(cmd *cobra.Command, lib *library.Manager, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		lib, closer, err := cli.OpenLibrary(cfg, nil)
		if err != nil {
			return err
		}
		defer closer.Close()
		return fn(cmd, lib, args)
	}
}

func init() {
	rootCmd.AddCommand(patchCmd)
	patchCmd.AddCommand(patchLsCmd)
	patchCmd.AddCommand(patchShowCmd)
	patchCmd.AddCommand(patchGraphCmd)
	patchCmd.AddCommand(patchRmCmd)
}
