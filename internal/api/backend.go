package api

import (
	"context"
	"time"
)

// Previewer requests a best-effort capability snapshot for candidate servers
// without installing anything. The timeout is generous because stdio servers
// may need first-run dependency installation before they respond.
type Previewer interface {
	Preview(ctx context.Context, servers map[string]ServerSpec, includeDetails bool, timeout time.Duration) (*PreviewResponse, error)
}

// Importer submits servers for installation. With dryRun set the backend
// validates and classifies without persisting; without it the call commits.
type Importer interface {
	Import(ctx context.Context, servers map[string]ServerSpec, dryRun bool, targetProfileID string) (*ImportResponse, error)
}

// CapabilityLister reports per-configuration-set enablement state, one call
// per capability kind.
type CapabilityLister interface {
	ListCapabilities(ctx context.Context, setID string, kind CapabilityKind) ([]CapabilityRecord, error)
}

// CatalogLister pages through a remote registry catalog using opaque cursors.
type CatalogLister interface {
	ListCatalog(ctx context.Context, cursor, search string, limit int) (*CatalogPage, error)
}

// Backend is the full remote service surface the install pipeline depends
// on. The wire shapes are owned by the backend and decoded leniently.
type Backend interface {
	Previewer
	Importer
	CapabilityLister
	CatalogLister
}

// ImportResponse is the raw dry-run/commit payload. Its shape varies by
// backend code path: stats may appear at the top level or nested under data,
// and success may be signalled by the flag, the error field, or the status
// string. Use Succeeded rather than reading fields directly.
type ImportResponse struct {
	Success  *bool          `json:"success,omitempty"`
	Error    string         `json:"error,omitempty"`
	Status   string         `json:"status,omitempty"`
	Imported []string       `json:"imported,omitempty"`
	Skipped  []SkipRecord   `json:"skipped,omitempty"`
	Failed   []FailRecord   `json:"failed,omitempty"`
	Data     *ImportPayload `json:"data,omitempty"`
}

// ImportPayload is the nested stats block some backend paths emit.
type ImportPayload struct {
	Imported []string     `json:"imported,omitempty"`
	Skipped  []SkipRecord `json:"skipped,omitempty"`
	Failed   []FailRecord `json:"failed,omitempty"`
}

// SkipRecord names a server the backend declined to install, with a
// structured reason ("already_installed", ...).
type SkipRecord struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// FailRecord names a server the backend could not install.
type FailRecord struct {
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

// Succeeded decodes the overall outcome of an import response. The fallback
// chain is, in priority order: the explicit success flag, the presence of an
// error field, and finally a status string equality check. A response with
// none of the three counts as success.
func (r *ImportResponse) Succeeded() bool {
	if r == nil {
		return false
	}
	if r.Success != nil {
		return *r.Success
	}
	if r.Error != "" {
		return false
	}
	if r.Status != "" {
		return r.Status == "success" || r.Status == "ok"
	}
	return true
}
