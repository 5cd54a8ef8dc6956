package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured extensions",
	Long:  `List every extension in the config file with its repository and on-disk state.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a configured extension for display.
type listEntry struct {
	Name       string `json:"name"`
	Repository string `json:"repository"`
	Branch     string `json:"branch,omitempty"`
	Installed  bool   `json:"installed"`
	Active     bool   `json:"active"`
}

func runList(cmd *cobra.Command, args []string) error {
	var entries []listEntry
	for _, r := range current.engine.Inventory() {
		entry := listEntry{Name: r.Name, Installed: r.Installed, Active: r.Active}
		if ext, ok := current.cfg.Lookup(r.Name); ok {
			entry.Repository = ext.Repository
			entry.Branch = ext.Branch
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No extensions configured in %s\n", current.settings.ConfigFile)
		return nil
	}

	if listJSON {
		return printListJSON(cmd, entries)
	}
	return printListTable(cmd, entries)
}

func printListTable(cmd *cobra.Command, entries []listEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tREPOSITORY\tBRANCH\tINSTALLED\tACTIVE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, dash(e.Repository), dash(e.Branch), yesNo(e.Installed), yesNo(e.Active))
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
