package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"mcpdock/internal/formatting"
	"mcpdock/internal/profile"
)

// newProfilesCmd creates the command that summarizes capability enablement
// across the active profiles.
func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles [set-id...]",
		Short: "Summarize capability enablement across profiles",
		Long: `Profiles fetches the server, tool, resource, and prompt lists of every
given configuration set and merges them: a capability counts as enabled
when any set enables it. Without arguments the active profiles from the
config file are used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setIDs := args
			if len(setIDs) == 0 {
				setIDs = settings.ActiveProfiles
			}
			if len(setIDs) == 0 {
				return fmt.Errorf("no profiles given and none active in the config file")
			}

			client, err := newBackendClient()
			if err != nil {
				return err
			}

			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Suffix = fmt.Sprintf(" Collecting capabilities from %d profile(s)...", len(setIDs))
			s.Start()
			summary, err := profile.NewCollector(client).Collect(cmd.Context(), setIDs)
			s.Stop()
			if err != nil {
				return err
			}

			formatting.RenderCapabilityCounts(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	return cmd
}
