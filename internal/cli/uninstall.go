package cli

import (
	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:     "uninstall <extension>",
	Aliases: []string{"remove"},
	Short:   "Remove an installed extension",
	Long: `Remove the host links that point into the extension, then delete its
directory. Running containers are not stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.engine.Uninstall(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
