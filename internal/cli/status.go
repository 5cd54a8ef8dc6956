package cli

import (
	"fmt"

	"github.com/hifiberry/extensions/internal/lifecycle"
	"github.com/hifiberry/extensions/internal/metrics"
	"github.com/spf13/cobra"
)

var statusTextfile string

var statusCmd = &cobra.Command{
	Use:   "status [extension]",
	Short: "Show whether extensions are running",
	Long: `Without an argument, print "<name>: <state>" for every configured extension.
With an extension name, print "running" or "not running".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusTextfile, "textfile", "", "Also write Prometheus metrics to this file")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	var reports []lifecycle.Report
	if len(args) == 1 {
		name := args[0]
		state, err := current.engine.Status(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, state)
		reports = []lifecycle.Report{{
			Name:      name,
			Installed: true,
			Active:    current.store.IsActive(name),
			State:     state,
		}}
	} else {
		reports = current.engine.StatusAll(ctx)
		for _, r := range reports {
			fmt.Fprintf(out, "%s: %s\n", r.Name, r.State)
		}
	}

	if statusTextfile != "" {
		if err := metrics.WriteTextfile(statusTextfile, extensionStates(reports)); err != nil {
			return err
		}
		current.logger.Debug("metrics written", "path", statusTextfile)
	}
	return nil
}

func extensionStates(reports []lifecycle.Report) []metrics.ExtensionState {
	states := make([]metrics.ExtensionState, 0, len(reports))
	for _, r := range reports {
		states = append(states, metrics.ExtensionState{
			Name:      r.Name,
			Installed: r.Installed,
			Active:    r.Active,
			Running:   r.State == lifecycle.Running,
		})
	}
	return states
}
