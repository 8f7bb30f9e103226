package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// newNotificationsCmd creates the command that lists the persisted
// notification history.
func newNotificationsCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show the persisted notification history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				settings.Notifications = nil
				saveSettings()
				fmt.Fprintln(cmd.OutOrStdout(), "Notification history cleared.")
				return nil
			}

			if len(settings.Notifications) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", text.FgYellow.Sprint("No notifications recorded"))
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{
				text.FgHiCyan.Sprint("TIME"),
				text.FgHiCyan.Sprint("SEVERITY"),
				text.FgHiCyan.Sprint("TITLE"),
				text.FgHiCyan.Sprint("BODY"),
			})
			for _, n := range settings.Notifications {
				t.AppendRow(table.Row{
					n.Time.Local().Format("2006-01-02 15:04"),
					n.Severity,
					n.Title,
					n.Body,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "delete the stored history")

	return cmd
}
