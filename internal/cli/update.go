package cli

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <extension>",
	Short: "Pull the latest version of an installed extension",
	Long: `Run git pull in the extension directory and link plugins that are not
linked yet. Containers are not restarted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.engine.Update(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
