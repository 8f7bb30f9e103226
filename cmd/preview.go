package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"mcpdock/internal/draft"
	"mcpdock/internal/formatting"
	"mcpdock/internal/mcpclient"
)

// newPreviewCmd creates the command that probes candidate servers directly,
// without the install service.
func newPreviewCmd() *cobra.Command {
	var (
		formatFlag string
		details    bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Probe servers from a bundle and list their capabilities",
		Long: `Preview connects to each server in the bundle directly over its own
transport (stdio, SSE, or streamable HTTP) and lists the tools,
resources, and prompts it exposes. Unreachable servers are reported
per item; they do not fail the pass.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := loadDrafts(cmd, args, formatFlag)
			if err != nil {
				return err
			}
			specs := draft.SpecsByName(drafts)

			if timeout <= 0 {
				timeout = settings.PreviewTimeout()
			}

			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Suffix = fmt.Sprintf(" Probing %d server(s)...", len(specs))
			s.Start()
			resp, err := mcpclient.NewPreviewer().Preview(cmd.Context(), specs, details, timeout)
			s.Stop()
			if err != nil {
				return err
			}

			formatting.RenderPreview(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "auto", "input format: auto, json, or toml")
	cmd.Flags().BoolVar(&details, "details", false, "include tool input schemas")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall probe timeout (default from config)")

	return cmd
}
