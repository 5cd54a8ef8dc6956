package cli

import (
	"github.com/hifiberry/extensions/internal/lifecycle"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <extension>",
	Short: "Start an extension and enable it at boot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.engine.Start(cmd.Context(), args[0], lifecycle.Interactive)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <extension>",
	Short: "Stop an extension and disable it at boot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.engine.Stop(cmd.Context(), args[0], lifecycle.Interactive)
	},
}

func init() {
	rootCmd.AddCommand(startCmd, stopCmd)
}
