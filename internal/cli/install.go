package cli

import (
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <extension>",
	Short: "Clone a configured extension and link its plugins",
	Long: `Clone the extension's git repository into its own directory under the
extensions root and link every exported plugin into the host directory.
The extension is not started or activated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.engine.Install(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
