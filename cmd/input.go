package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mcpdock/internal/draft"
	"mcpdock/internal/ingest"
	"mcpdock/pkg/logging"
)

// maxInputSize caps pasted or piped bundles at 4 MB.
const maxInputSize = 4 << 20

// readBundle returns the raw configuration text from the file argument, or
// from stdin when no argument (or "-") is given.
func readBundle(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxInputSize))
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// parseFormat maps the --format flag onto an ingestion format.
func parseFormat(flag string) (ingest.Format, error) {
	switch flag {
	case "", "auto":
		return ingest.FormatAuto, nil
	case "json":
		return ingest.FormatJSON, nil
	case "toml":
		return ingest.FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown format %q, expected auto, json, or toml", flag)
	}
}

// loadDrafts reads and normalizes the input bundle into drafts.
func loadDrafts(cmd *cobra.Command, args []string, formatFlag string) ([]draft.Draft, error) {
	format, err := parseFormat(formatFlag)
	if err != nil {
		return nil, err
	}
	raw, err := readBundle(cmd, args)
	if err != nil {
		return nil, err
	}
	drafts, err := ingest.Normalize(raw, format)
	if err != nil {
		return nil, err
	}

	route, err := ingest.Decide(drafts)
	if err != nil {
		return nil, err
	}
	logging.Debug("CLI", "Normalized %d draft(s), route %s", len(drafts), route)
	return drafts, nil
}
