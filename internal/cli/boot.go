package cli

import (
	"fmt"
	"io"

	"github.com/hifiberry/extensions/internal/lifecycle"
	"github.com/spf13/cobra"
)

var startupCmd = &cobra.Command{
	Use:   "startup",
	Short: "Start every active extension",
	Long: `Start every extension that carries an activation marker. A failing
extension is reported and the rest are still started.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printFailures(cmd.OutOrStdout(), current.engine.StartAll(cmd.Context()))
		return nil
	},
}

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Stop every installed extension, keeping activation",
	Long: `Stop the containers of every installed extension. Activation markers
are kept so the next startup brings the same extensions back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printFailures(cmd.OutOrStdout(), current.engine.ShutdownAll(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startupCmd, shutdownCmd)
}

func printFailures(w io.Writer, reports []lifecycle.Report) {
	for _, r := range reports {
		if r.Err != nil {
			fmt.Fprintln(w, lifecycle.Brief(r.Err))
		}
	}
}
