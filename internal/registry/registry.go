// Package registry derives drafts from catalog entries and implements the
// identity rules used for market deduplication and blacklist matching.
package registry

import (
	"fmt"
	"strings"

	"mcpdock/internal/api"
	"mcpdock/internal/draft"
)

// Identity returns the deduplication identity of a catalog entry: the
// official registry server id when present, else name@version.
func Identity(e api.RegistryEntry) string {
	if e.OfficialMeta != nil && e.OfficialMeta.ServerID != "" {
		return e.OfficialMeta.ServerID
	}
	return fmt.Sprintf("%s@%s", e.Name, e.Version)
}

// DisplayName derives a draft name from the entry. Registry names are often
// namespaced ("io.github.owner/server"); the last path segment is the
// human-facing part.
func DisplayName(e api.RegistryEntry) string {
	name := strings.TrimSpace(e.Name)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ToDraft derives a pipeline-ready draft from a catalog entry. The entry's
// identity is recorded as the draft's registry back-reference for
// provenance and deduplication.
func ToDraft(e api.RegistryEntry) (draft.Draft, error) {
	var kind api.ServerKind
	switch {
	case strings.TrimSpace(e.Type) != "":
		parsed, err := api.ParseServerKind(strings.TrimSpace(e.Type))
		if err != nil {
			return draft.Draft{}, err
		}
		kind = parsed
	case strings.TrimSpace(e.Command) != "":
		kind = api.KindStdio
	case strings.TrimSpace(e.URL) != "":
		kind = api.KindStreamableHTTP
	default:
		return draft.Draft{}, api.NewValidationError("entry", "catalog entry %s has neither command nor url", e.Name)
	}

	meta := &api.Meta{
		Description: e.Description,
		Version:     e.Version,
		WebsiteURL:  e.WebsiteURL,
		Repository:  e.Repository,
		Icons:       e.Icons,
	}

	return draft.New(draft.Params{
		Name:             DisplayName(e),
		Kind:             kind,
		Command:          e.Command,
		Args:             e.Args,
		Env:              draft.PairsFromMap(e.Env),
		URL:              e.URL,
		Headers:          draft.PairsFromMap(e.Headers),
		RegistryServerID: Identity(e),
		Meta:             meta,
	})
}

// Blacklist matches catalog entries against identities that are already
// installed, so the market view can mark or hide them.
type Blacklist struct {
	identities map[string]bool
}

// NewBlacklist builds a blacklist from installed identities. Empty strings
// are ignored.
func NewBlacklist(identities []string) *Blacklist {
	m := make(map[string]bool, len(identities))
	for _, id := range identities {
		if id != "" {
			m[id] = true
		}
	}
	return &Blacklist{identities: m}
}

// Contains reports whether the entry's identity is blacklisted.
func (b *Blacklist) Contains(e api.RegistryEntry) bool {
	return b.identities[Identity(e)]
}

// Filter returns the entries whose identity is not blacklisted, preserving
// order.
func (b *Blacklist) Filter(entries []api.RegistryEntry) []api.RegistryEntry {
	var out []api.RegistryEntry
	for _, e := range entries {
		if !b.Contains(e) {
			out = append(out, e)
		}
	}
	return out
}

// Dedupe drops entries whose identity was already seen, keeping the first
// occurrence. Catalog pages can overlap after cache invalidation.
func Dedupe(entries []api.RegistryEntry) []api.RegistryEntry {
	seen := make(map[string]bool, len(entries))
	var out []api.RegistryEntry
	for _, e := range entries {
		id := Identity(e)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, e)
	}
	return out
}
