// Package backend implements the HTTP client for the remote install
// service. The wire shapes belong to the backend and are decoded
// leniently; request-level failures surface as api.TransportError.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mcpdock/internal/api"
	"mcpdock/pkg/logging"
)

// Client talks JSON over HTTP to the install service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ api.Backend = (*Client)(nil)

// NewClient creates a client for the service at baseURL. A nil httpClient
// falls back to a default with no overall timeout; per-call deadlines come
// from the caller's context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type previewRequest struct {
	Servers        map[string]api.ServerSpec `json:"servers"`
	IncludeDetails bool                      `json:"includeDetails"`
	TimeoutMs      int64                     `json:"timeoutMs"`
}

// Preview requests a capability snapshot for the candidate servers.
func (c *Client) Preview(ctx context.Context, servers map[string]api.ServerSpec, includeDetails bool, timeout time.Duration) (*api.PreviewResponse, error) {
	req := previewRequest{
		Servers:        servers,
		IncludeDetails: includeDetails,
		TimeoutMs:      timeout.Milliseconds(),
	}
	var resp api.PreviewResponse
	if err := c.doJSON(ctx, http.MethodPost, "/mcp/preview", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type importRequest struct {
	Servers         map[string]api.ServerSpec `json:"servers"`
	DryRun          bool                      `json:"dryRun"`
	TargetProfileID string                    `json:"targetProfileId,omitempty"`
}

// Import submits servers for dry-run validation or commit.
func (c *Client) Import(ctx context.Context, servers map[string]api.ServerSpec, dryRun bool, targetProfileID string) (*api.ImportResponse, error) {
	req := importRequest{
		Servers:         servers,
		DryRun:          dryRun,
		TargetProfileID: targetProfileID,
	}
	var resp api.ImportResponse
	if err := c.doJSON(ctx, http.MethodPost, "/mcp/import", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// capabilityListResponse accepts any of the four plural list keys the
// capability endpoint emits depending on kind.
type capabilityListResponse struct {
	Servers   []api.CapabilityRecord `json:"servers"`
	Tools     []api.CapabilityRecord `json:"tools"`
	Resources []api.CapabilityRecord `json:"resources"`
	Prompts   []api.CapabilityRecord `json:"prompts"`
}

func (r capabilityListResponse) forKind(kind api.CapabilityKind) []api.CapabilityRecord {
	switch kind {
	case api.CapabilityServer:
		return r.Servers
	case api.CapabilityTool:
		return r.Tools
	case api.CapabilityResource:
		return r.Resources
	case api.CapabilityPrompt:
		return r.Prompts
	default:
		return nil
	}
}

// ListCapabilities fetches the enablement list of one capability kind for
// one configuration set.
func (c *Client) ListCapabilities(ctx context.Context, setID string, kind api.CapabilityKind) ([]api.CapabilityRecord, error) {
	if setID == "" {
		return nil, api.NewValidationError("setId", "configuration set id is required")
	}
	path := fmt.Sprintf("/profiles/%s/%ss", url.PathEscape(setID), kind)
	var resp capabilityListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.forKind(kind), nil
}

// ListCatalog fetches one page of the registry catalog.
func (c *Client) ListCatalog(ctx context.Context, cursor, search string, limit int) (*api.CatalogPage, error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if search != "" {
		query.Set("search", search)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp api.CatalogPage
	if err := c.doJSON(ctx, http.MethodGet, "/catalog", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doJSON issues one request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := operationName(path)

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return api.NewTransportError(op, 0, fmt.Errorf("encoding request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return api.NewTransportError(op, 0, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	logging.Debug("Backend", "%s %s", method, endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return api.NewTransportError(op, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return api.NewTransportError(op, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return api.NewTransportError(op, resp.StatusCode, errors.New(snippet(data)))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return api.NewTransportError(op, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
		}
	}
	return nil
}

func operationName(path string) string {
	switch {
	case strings.HasPrefix(path, "/mcp/preview"):
		return "preview"
	case strings.HasPrefix(path, "/mcp/import"):
		return "import"
	case strings.HasPrefix(path, "/profiles/"):
		return "list_capabilities"
	case strings.HasPrefix(path, "/catalog"):
		return "list_catalog"
	default:
		return "request"
	}
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "empty response body"
	}
	return s
}
