// Package ingest normalizes pasted or dropped text bundles (JSON or TOML,
// single or multi-server) into pipeline-ready drafts.
package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"mcpdock/internal/api"
	"mcpdock/internal/draft"
	"mcpdock/pkg/logging"
)

// Format selects the parser for a raw bundle.
type Format string

const (
	// FormatJSON parses the input as a JSON bundle.
	FormatJSON Format = "json"
	// FormatTOML parses the input as a TOML bundle.
	FormatTOML Format = "toml"
	// FormatAuto sniffs the format from the input text.
	FormatAuto Format = "auto"
)

// entryConfig is the per-server shape accepted inside a bundle. Both JSON
// and TOML manifests use it; unknown keys are ignored.
type entryConfig struct {
	Type             string            `json:"type" toml:"type"`
	Command          string            `json:"command" toml:"command"`
	Args             []string          `json:"args" toml:"args"`
	Env              map[string]string `json:"env" toml:"env"`
	URL              string            `json:"url" toml:"url"`
	Headers          map[string]string `json:"headers" toml:"headers"`
	URLParams        map[string]string `json:"urlParams" toml:"urlParams"`
	RegistryServerID string            `json:"registry_server_id" toml:"registry_server_id"`
	Description      string            `json:"description" toml:"description"`
	Version          string            `json:"version" toml:"version"`
}

// bundle is the canonical multi-server manifest wrapper. Manifests in the
// wild use either the mcpServers or the servers table key; a bare
// name-to-config mapping is accepted as well.
type bundle struct {
	MCPServers map[string]entryConfig `json:"mcpServers" toml:"mcpServers"`
	Servers    map[string]entryConfig `json:"servers" toml:"servers"`
}

// Normalize parses rawText into a list of drafts. Malformed input yields a
// single error and nothing is partially applied; an input that parses but
// contains no server entries yields a "no servers detected" validation
// error. Drafts are returned sorted by name for deterministic routing.
func Normalize(rawText string, format Format) ([]draft.Draft, error) {
	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		return nil, api.NewValidationError("input", "no servers detected in the input")
	}

	if format == FormatAuto || format == "" {
		format = sniffFormat(trimmed)
	}

	var entries map[string]entryConfig
	var err error
	switch format {
	case FormatJSON:
		entries, err = parseJSON(trimmed)
	case FormatTOML:
		entries, err = parseTOML(trimmed)
	default:
		return nil, api.NewValidationError("format", "unsupported bundle format: %s", string(format))
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, api.NewValidationError("input", "no servers detected in the input")
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	drafts := make([]draft.Draft, 0, len(names))
	for _, name := range names {
		d, err := toDraft(name, entries[name])
		if err != nil {
			return nil, fmt.Errorf("server %q: %w", name, err)
		}
		drafts = append(drafts, d)
	}

	logging.Debug("Ingest", "Normalized %d server(s) from %s bundle", len(drafts), format)
	return drafts, nil
}

func sniffFormat(trimmed string) Format {
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}
	return FormatTOML
}

func parseJSON(raw string) (map[string]entryConfig, error) {
	var wrapper bundle
	if err := json.Unmarshal([]byte(raw), &wrapper); err == nil {
		if entries, ok := wrapper.pick(); ok {
			return entries, nil
		}
	}

	// No wrapper key: treat the whole object as a name-to-config mapping.
	var bare map[string]entryConfig
	if err := json.Unmarshal([]byte(raw), &bare); err != nil {
		return nil, fmt.Errorf("invalid JSON bundle: %w", err)
	}
	return bare, nil
}

func parseTOML(raw string) (map[string]entryConfig, error) {
	var wrapper bundle
	if err := toml.Unmarshal([]byte(raw), &wrapper); err == nil {
		if entries, ok := wrapper.pick(); ok {
			return entries, nil
		}
	}

	var bare map[string]entryConfig
	if err := toml.Unmarshal([]byte(raw), &bare); err != nil {
		return nil, fmt.Errorf("invalid TOML bundle: %w", err)
	}
	return bare, nil
}

// pick returns the wrapped entry map and whether a wrapper key was present
// at all. A wrapper key holding an empty table decodes to a non-nil empty
// map; it must be reported as "no servers detected", never fall through to
// the bare-map branch where the wrapper key itself would read as a server
// name.
func (b bundle) pick() (map[string]entryConfig, bool) {
	if b.MCPServers != nil {
		return b.MCPServers, true
	}
	if b.Servers != nil {
		return b.Servers, true
	}
	return nil, false
}

// toDraft determines the server kind and runs the entry through the draft
// builders. Kind comes from the explicit type field when present; otherwise
// a command implies stdio and a url implies streamable_http (sse is never
// inferred, only declared).
func toDraft(name string, cfg entryConfig) (draft.Draft, error) {
	var kind api.ServerKind
	switch {
	case strings.TrimSpace(cfg.Type) != "":
		parsed, err := api.ParseServerKind(strings.TrimSpace(cfg.Type))
		if err != nil {
			return draft.Draft{}, err
		}
		kind = parsed
	case strings.TrimSpace(cfg.Command) != "":
		kind = api.KindStdio
	case strings.TrimSpace(cfg.URL) != "":
		kind = api.KindStreamableHTTP
	default:
		return draft.Draft{}, api.NewValidationError("type", "entry has neither command nor url")
	}

	var meta *api.Meta
	if cfg.Description != "" || cfg.Version != "" {
		meta = &api.Meta{Description: cfg.Description, Version: cfg.Version}
	}

	return draft.New(draft.Params{
		Name:             name,
		Kind:             kind,
		Command:          cfg.Command,
		Args:             cfg.Args,
		Env:              pairsOf(cfg.Env),
		URL:              cfg.URL,
		Headers:          pairsOf(cfg.Headers),
		URLParams:        pairsOf(cfg.URLParams),
		RegistryServerID: cfg.RegistryServerID,
		Meta:             meta,
	})
}

func pairsOf(m map[string]string) []draft.KVPair {
	return draft.PairsFromMap(m)
}
