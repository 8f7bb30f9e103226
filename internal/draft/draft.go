// Package draft holds the canonical, transport-agnostic representation of
// one MCP server endpoint on its way into the install pipeline, plus the
// builders that normalize raw operator input into that shape.
package draft

import (
	"strings"

	"mcpdock/internal/api"
	"mcpdock/internal/urlutil"
)

// Draft is the canonical unit of work. Exactly one of the stdio-only
// (Command/Args/Env) or remote-only (URL/Headers/URLParams) field groups is
// populated, determined by Kind. A Draft is immutable once handed to the
// pipeline; edits go through Clone.
type Draft struct {
	// Name is the unique display identifier. Required, non-empty after
	// trimming.
	Name string `json:"name"`

	// Kind determines which field group below is meaningful.
	Kind api.ServerKind `json:"kind"`

	// Stdio-only fields.
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	// Remote-only fields. URLParams are composed into the URL at payload
	// construction time; the backend does not accept them separately.
	URL       string            `json:"url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	URLParams map[string]string `json:"urlParams,omitempty"`

	// RegistryServerID back-references the catalog entry a market draft
	// was derived from. It doubles as the deduplication identity.
	RegistryServerID string `json:"registryServerId,omitempty"`

	// Meta is the optional descriptive block.
	Meta *api.Meta `json:"meta,omitempty"`
}

// Params is the raw field set a builder receives, before normalization.
// Free-text fields may carry surrounding whitespace; key-value groups come
// in as ordered pairs.
type Params struct {
	Name             string
	Kind             api.ServerKind
	Command          string
	Args             []string
	Env              []KVPair
	URL              string
	Headers          []KVPair
	URLParams        []KVPair
	RegistryServerID string
	Meta             *api.Meta
}

// New normalizes params into a Draft and validates it. Every free-text
// field is trimmed; an empty result after trimming is treated as absent.
// Maps and slices that would be empty are omitted entirely (nil).
func New(p Params) (Draft, error) {
	d := Draft{
		Name:             strings.TrimSpace(p.Name),
		Kind:             p.Kind,
		Command:          strings.TrimSpace(p.Command),
		Args:             trimArgs(p.Args),
		Env:              BuildMap(p.Env),
		URL:              strings.TrimSpace(p.URL),
		Headers:          BuildMap(p.Headers),
		URLParams:        BuildMap(p.URLParams),
		RegistryServerID: strings.TrimSpace(p.RegistryServerID),
		Meta:             normalizeMeta(p.Meta),
	}

	// The invariant: only the field group selected by Kind survives.
	if d.Kind == api.KindStdio {
		d.URL = ""
		d.Headers = nil
		d.URLParams = nil
	} else {
		d.Command = ""
		d.Args = nil
		d.Env = nil
	}

	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Validate enforces the data-model invariants. Violations surface as
// *api.ValidationError and must abort submission before the pipeline is
// reached.
func (d Draft) Validate() error {
	if d.Name == "" {
		return api.NewValidationError("name", "server name is required")
	}
	switch d.Kind {
	case api.KindStdio:
		if d.Command == "" {
			return api.NewValidationError("command", "command is required for stdio servers")
		}
	case api.KindSSE, api.KindStreamableHTTP:
		if d.URL == "" {
			return api.NewValidationError("url", "url is required for remote servers")
		}
	default:
		return api.NewValidationError("kind", "unsupported server type: %s", string(d.Kind))
	}
	return nil
}

// Clone returns an independent copy, including map and slice contents.
// Editing a draft mid-flow produces a new Draft through this.
func (d Draft) Clone() Draft {
	out := d
	out.Args = append([]string(nil), d.Args...)
	out.Env = cloneMap(d.Env)
	out.Headers = cloneMap(d.Headers)
	out.URLParams = cloneMap(d.URLParams)
	if d.Meta != nil {
		meta := *d.Meta
		if d.Meta.Repository != nil {
			repo := *d.Meta.Repository
			meta.Repository = &repo
		}
		meta.Icons = append([]api.Icon(nil), d.Meta.Icons...)
		out.Meta = &meta
	}
	return out
}

// Spec converts the draft into the backend commit payload. Remote drafts
// get their auxiliary query parameters composed into the URL here, because
// the backend does not accept a separate parameters field.
func (d Draft) Spec() api.ServerSpec {
	spec := api.ServerSpec{
		Type:             d.Kind,
		RegistryServerID: d.RegistryServerID,
	}
	if !d.Meta.IsZero() {
		spec.Meta = d.Meta
	}
	if d.Kind == api.KindStdio {
		spec.Command = d.Command
		spec.Args = d.Args
		spec.Env = d.Env
	} else {
		spec.URL = urlutil.Compose(d.URL, d.URLParams)
		spec.Headers = d.Headers
	}
	return spec
}

// SpecsByName builds the name-keyed payload the backend operations take.
func SpecsByName(drafts []Draft) map[string]api.ServerSpec {
	specs := make(map[string]api.ServerSpec, len(drafts))
	for _, d := range drafts {
		specs[d.Name] = d.Spec()
	}
	return specs
}

// Names returns the draft names in input order.
func Names(drafts []Draft) []string {
	names := make([]string, 0, len(drafts))
	for _, d := range drafts {
		names = append(names, d.Name)
	}
	return names
}

func trimArgs(args []string) []string {
	var out []string
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func normalizeMeta(m *api.Meta) *api.Meta {
	if m == nil {
		return nil
	}
	out := *m
	out.Description = strings.TrimSpace(out.Description)
	out.Version = strings.TrimSpace(out.Version)
	out.WebsiteURL = strings.TrimSpace(out.WebsiteURL)
	if out.IsZero() {
		return nil
	}
	return &out
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
