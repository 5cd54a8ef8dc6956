package cli

import (
	"fmt"

	"github.com/hifiberry/extensions/internal/doctor"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the extensions installation",
	Long: `Check the git and compose tools, the extensions and host directories, the
config file, and report extension directories or host links left behind.
Nothing is changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := &doctor.Doctor{
			Config:  current.cfg,
			Store:   current.store,
			Links:   current.links,
			Runner:  current.runner,
			Git:     current.settings.GitCommand,
			Compose: current.settings.ComposeArgv(),
		}
		sum, err := d.Run(cmd.Context(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !sum.Healthy() {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d warning(s), %d missing, %d failure(s)\n", sum.Warnings, sum.Missing, sum.Failures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
