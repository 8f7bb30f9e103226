package api

import (
	"encoding/json"
	"fmt"
)

// PreviewResponse is the capability snapshot returned by a preview request.
// The request may succeed at the transport level while individual items
// still carry errors; callers distinguish the two via HasItemErrors.
type PreviewResponse struct {
	Success bool          `json:"success"`
	Items   []PreviewItem `json:"items,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// HasItemErrors reports whether any item in a transport-level-successful
// preview carries a per-item error. Such errors are warnings, not failures:
// the backend retries unreachable servers after installation.
func (r *PreviewResponse) HasItemErrors() bool {
	if r == nil {
		return false
	}
	for _, item := range r.Items {
		if item.Error != "" {
			return true
		}
	}
	return false
}

// ItemErrorNames returns the server names of items with per-item errors,
// deduplicated in first-seen order.
func (r *PreviewResponse) ItemErrorNames() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, item := range r.Items {
		if item.Error == "" || item.ServerName == "" || seen[item.ServerName] {
			continue
		}
		seen[item.ServerName] = true
		names = append(names, item.ServerName)
	}
	return names
}

// PreviewItem is one capability reported by a preview. The backend does not
// guarantee a uniform shape across tool/resource/prompt/template items, so
// everything beyond the envelope lives in Extra and is probed by key.
type PreviewItem struct {
	ServerName string         `json:"serverName,omitempty"`
	Kind       CapabilityKind `json:"kind"`
	Error      string         `json:"error,omitempty"`
	Extra      map[string]any `json:"-"`
}

// UnmarshalJSON decodes the envelope fields and keeps every other key in
// Extra for duck-typed probing.
func (i *PreviewItem) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["serverName"].(string); ok {
		i.ServerName = v
		delete(raw, "serverName")
	}
	if v, ok := raw["kind"].(string); ok {
		i.Kind = CapabilityKind(v)
		delete(raw, "kind")
	}
	if v, ok := raw["error"].(string); ok {
		i.Error = v
		delete(raw, "error")
	}
	i.Extra = raw
	return nil
}

// titleKeys is the probe priority per capability kind for a display title.
var titleKeys = map[CapabilityKind][]string{
	CapabilityTool:     {"name", "title"},
	CapabilityResource: {"name", "title", "uri"},
	CapabilityPrompt:   {"name", "title"},
	CapabilityTemplate: {"name", "uriTemplate"},
}

// descriptionKeys is the probe priority per capability kind for a
// description line.
var descriptionKeys = map[CapabilityKind][]string{
	CapabilityTool:     {"description"},
	CapabilityResource: {"description", "mimeType"},
	CapabilityPrompt:   {"description"},
	CapabilityTemplate: {"description"},
}

// Title extracts a display title from the item by probing kind-specific
// keys in priority order. Falls back to the kind name so the operator never
// sees an empty label.
func (i PreviewItem) Title() string {
	if s := probe(i.Extra, titleKeys[i.Kind]); s != "" {
		return s
	}
	return fmt.Sprintf("(unnamed %s)", i.Kind)
}

// Description extracts a description line, or "" when none is present.
func (i PreviewItem) Description() string {
	return probe(i.Extra, descriptionKeys[i.Kind])
}

func probe(extra map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := extra[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
