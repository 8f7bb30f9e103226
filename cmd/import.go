package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"mcpdock/internal/api"
	"mcpdock/internal/formatting"
	"mcpdock/internal/pipeline"
	"mcpdock/internal/report"
)

// newImportCmd creates the command that runs the full install flow:
// normalize, preview, dry-run, confirm, commit.
func newImportCmd() *cobra.Command {
	var (
		formatFlag string
		profileID  string
		dryRunOnly bool
		assumeYes  bool
		details    bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Install MCP servers from a JSON or TOML bundle",
		Long: `Import reads a server bundle from a file or stdin, previews each
server's capabilities, validates the set with a dry run against the
install service, and commits it after confirmation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := loadDrafts(cmd, args, formatFlag)
			if err != nil {
				return err
			}

			client, err := newBackendClient()
			if err != nil {
				return err
			}
			defer saveSettings()

			notifier := &consoleNotifier{out: cmd.OutOrStdout()}
			flow := pipeline.New(client, notifier, pipeline.Options{
				PreviewTimeout: settings.PreviewTimeout(),
				IncludeDetails: details,
			})
			defer flow.Close()

			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Suffix = fmt.Sprintf(" Previewing %d server(s)...", len(drafts))
			s.Start()
			err = flow.Begin(cmd.Context(), drafts, api.SourceIngest)
			s.Stop()
			if err != nil {
				return err
			}

			preview, _ := flow.PreviewResult()
			formatting.RenderPreview(cmd.OutOrStdout(), preview)

			if profileID != "" {
				flow.SetTargetProfile(profileID)
			}

			s.Suffix = " Running dry run..."
			s.Start()
			err = flow.PerformDryRun(cmd.Context())
			s.Stop()
			if err != nil {
				return err
			}

			dryRun, _ := flow.DryRunResult()
			formatting.RenderImportStats(cmd.OutOrStdout(), report.FromResponse(dryRun))
			if msg := report.DryRunMessage(dryRun); msg.Severity == report.SeverityError {
				return fmt.Errorf("dry run reported failures, nothing was installed")
			}

			if dryRunOnly {
				return nil
			}

			if !assumeYes && !confirm(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled.")
				return nil
			}

			s.Suffix = " Importing..."
			s.Start()
			err = flow.ConfirmImport(cmd.Context())
			s.Stop()
			if err != nil {
				return err
			}

			// A successful import auto-closes the flow and clears its
			// results; the notifier has already reported the outcome.
			commit, _ := flow.CommitResult()
			if commit == nil {
				return nil
			}
			stats := report.FromResponse(commit)
			formatting.RenderImportStats(cmd.OutOrStdout(), stats)
			if stats.Classify(commit.Succeeded()) == report.OutcomeFailed {
				return fmt.Errorf("import failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "auto", "input format: auto, json, or toml")
	cmd.Flags().StringVar(&profileID, "profile", "", "target profile id for the install")
	cmd.Flags().BoolVar(&dryRunOnly, "dry-run", false, "validate only, do not commit")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&details, "details", false, "include full capability details in the preview")

	return cmd
}

// confirm asks the operator to approve the commit.
func confirm(cmd *cobra.Command) bool {
	fmt.Fprint(cmd.OutOrStdout(), "Proceed with the import? [y/N]: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
