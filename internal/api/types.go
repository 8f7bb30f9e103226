package api

import "fmt"

// ServerKind identifies the transport of an MCP server endpoint and
// determines which configuration field group is meaningful for it.
type ServerKind string

const (
	// KindStdio is a locally spawned subprocess speaking MCP over stdio.
	KindStdio ServerKind = "stdio"
	// KindSSE is a remote server using the Server-Sent Events transport.
	KindSSE ServerKind = "sse"
	// KindStreamableHTTP is a remote server using the streamable HTTP transport.
	KindStreamableHTTP ServerKind = "streamable_http"
)

// ParseServerKind converts a wire-level type string into a ServerKind.
// It accepts the dash form ("streamable-http") emitted by some bundles.
func ParseServerKind(s string) (ServerKind, error) {
	switch s {
	case "stdio":
		return KindStdio, nil
	case "sse":
		return KindSSE, nil
	case "streamable_http", "streamable-http", "http":
		return KindStreamableHTTP, nil
	default:
		return "", fmt.Errorf("unsupported server type: %s (supported: %s, %s, %s)",
			s, KindStdio, KindSSE, KindStreamableHTTP)
	}
}

// IsRemote reports whether the kind uses a URL-based transport.
func (k ServerKind) IsRemote() bool {
	return k == KindSSE || k == KindStreamableHTTP
}

// Source tags the provenance of an install flow. It is display-only but
// required for audit.
type Source string

const (
	// SourceManual marks drafts entered through the single-server form.
	SourceManual Source = "manual"
	// SourceIngest marks drafts parsed from a pasted or dropped bundle.
	SourceIngest Source = "ingest"
	// SourceMarket marks drafts derived from a catalog entry.
	SourceMarket Source = "market"
)

// CapabilityKind categorizes the capability lists a server or profile exposes.
type CapabilityKind string

const (
	CapabilityServer   CapabilityKind = "server"
	CapabilityTool     CapabilityKind = "tool"
	CapabilityResource CapabilityKind = "resource"
	CapabilityPrompt   CapabilityKind = "prompt"
	CapabilityTemplate CapabilityKind = "template"
)

// CapabilityRecord is the enablement state of one capability as reported by
// a single configuration set.
type CapabilityRecord struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// Repository describes the source repository of a server, when known.
type Repository struct {
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
	Subfolder string `json:"subfolder,omitempty" yaml:"subfolder,omitempty"`
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
}

// Icon is a descriptive icon reference attached to server metadata.
type Icon struct {
	Src      string `json:"src" yaml:"src"`
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Sizes    string `json:"sizes,omitempty" yaml:"sizes,omitempty"`
}

// Meta is the optional descriptive block carried alongside a server
// definition. All fields are informational.
type Meta struct {
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string      `json:"version,omitempty" yaml:"version,omitempty"`
	WebsiteURL  string      `json:"websiteUrl,omitempty" yaml:"websiteUrl,omitempty"`
	Repository  *Repository `json:"repository,omitempty" yaml:"repository,omitempty"`
	Icons       []Icon      `json:"icons,omitempty" yaml:"icons,omitempty"`
}

// IsZero reports whether the meta block carries no information at all.
func (m *Meta) IsZero() bool {
	if m == nil {
		return true
	}
	return m.Description == "" && m.Version == "" && m.WebsiteURL == "" &&
		m.Repository == nil && len(m.Icons) == 0
}

// ServerSpec is the per-server commit payload accepted by the backend.
// The URL must already have auxiliary query parameters composed in; the
// backend does not accept a separate parameters field.
type ServerSpec struct {
	Type             ServerKind        `json:"type"`
	Command          string            `json:"command,omitempty"`
	Args             []string          `json:"args,omitempty"`
	Env              map[string]string `json:"env,omitempty"`
	URL              string            `json:"url,omitempty"`
	Headers          map[string]string `json:"headers,omitempty"`
	RegistryServerID string            `json:"registry_server_id,omitempty"`
	Meta             *Meta             `json:"meta,omitempty"`
}

// RegistryMeta is the official registry metadata block of a catalog entry.
type RegistryMeta struct {
	ServerID    string `json:"serverId,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// RegistryEntry is one catalog/registry listing. It is read-only input:
// mcpdock never writes entries back to a registry.
type RegistryEntry struct {
	Name         string            `json:"name"`
	Version      string            `json:"version,omitempty"`
	Description  string            `json:"description,omitempty"`
	Repository   *Repository       `json:"repository,omitempty"`
	WebsiteURL   string            `json:"websiteUrl,omitempty"`
	Icons        []Icon            `json:"icons,omitempty"`
	OfficialMeta *RegistryMeta     `json:"officialMeta,omitempty"`
	Type         string            `json:"type,omitempty"`
	Command      string            `json:"command,omitempty"`
	Args         []string          `json:"args,omitempty"`
	Env          map[string]string `json:"env,omitempty"`
	URL          string            `json:"url,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// CatalogPage is one page of a cursor-paginated catalog listing.
type CatalogPage struct {
	Servers  []RegistryEntry `json:"servers"`
	Metadata PageMetadata    `json:"metadata"`
}

// PageMetadata carries the paging token for the next catalog page, if any.
type PageMetadata struct {
	NextCursor string `json:"nextCursor,omitempty"`
}
