package mcpclient

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mcpdock/internal/api"
	"mcpdock/pkg/logging"
)

// maxConcurrentProbes bounds how many candidate servers are contacted at
// once during a preview pass.
const maxConcurrentProbes = 4

// Previewer implements api.Previewer by connecting to each candidate
// server directly. A server that cannot be reached degrades to a per-item
// error; the pass itself still succeeds, matching the partial-failure
// semantics of the remote preview operation.
type Previewer struct {
	factory func(api.ServerSpec) (Client, error)
}

var _ api.Previewer = (*Previewer)(nil)

// NewPreviewer creates a previewer using the default transport factory.
func NewPreviewer() *Previewer {
	return &Previewer{factory: NewFromSpec}
}

// Preview probes every candidate concurrently and aggregates the
// capability items. Items are sorted by server name, kind, and title so
// repeated passes over the same set render identically.
func (p *Previewer) Preview(ctx context.Context, servers map[string]api.ServerSpec, includeDetails bool, timeout time.Duration) (*api.PreviewResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var mu sync.Mutex
	var items []api.PreviewItem

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)

	for name, spec := range servers {
		g.Go(func() error {
			probed, err := p.probeServer(gctx, name, spec, includeDetails)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logging.Warn("Previewer", "Probe of %s failed: %v", name, err)
				items = append(items, api.PreviewItem{
					ServerName: name,
					Kind:       api.CapabilityServer,
					Error:      err.Error(),
				})
				return nil
			}
			items = append(items, probed...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].ServerName != items[j].ServerName {
			return items[i].ServerName < items[j].ServerName
		}
		if items[i].Kind != items[j].Kind {
			return items[i].Kind < items[j].Kind
		}
		return items[i].Title() < items[j].Title()
	})

	return &api.PreviewResponse{Success: true, Items: items}, nil
}

// probeServer connects, lists capabilities, and converts them into preview
// items. A kind the server does not expose is skipped, not an error.
func (p *Previewer) probeServer(ctx context.Context, name string, spec api.ServerSpec, includeDetails bool) ([]api.PreviewItem, error) {
	c, err := p.factory(spec)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			logging.Debug("Previewer", "Error closing client for %s: %v", name, closeErr)
		}
	}()

	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}

	var items []api.PreviewItem

	if tools, err := c.ListTools(ctx); err != nil {
		logging.Debug("Previewer", "Server %s does not list tools: %v", name, err)
	} else {
		for _, t := range tools {
			extra := map[string]any{"name": t.Name, "description": t.Description}
			if includeDetails {
				extra["inputSchema"] = t.InputSchema
			}
			items = append(items, api.PreviewItem{ServerName: name, Kind: api.CapabilityTool, Extra: extra})
		}
	}

	if resources, err := c.ListResources(ctx); err != nil {
		logging.Debug("Previewer", "Server %s does not list resources: %v", name, err)
	} else {
		for _, r := range resources {
			items = append(items, api.PreviewItem{ServerName: name, Kind: api.CapabilityResource, Extra: map[string]any{
				"name":        r.Name,
				"uri":         r.URI,
				"description": r.Description,
				"mimeType":    r.MIMEType,
			}})
		}
	}

	if templates, err := c.ListResourceTemplates(ctx); err != nil {
		logging.Debug("Previewer", "Server %s does not list resource templates: %v", name, err)
	} else {
		for _, rt := range templates {
			extra := map[string]any{
				"name":        rt.Name,
				"description": rt.Description,
			}
			if rt.URITemplate != nil {
				extra["uriTemplate"] = rt.URITemplate.Raw()
			}
			items = append(items, api.PreviewItem{ServerName: name, Kind: api.CapabilityTemplate, Extra: extra})
		}
	}

	if prompts, err := c.ListPrompts(ctx); err != nil {
		logging.Debug("Previewer", "Server %s does not list prompts: %v", name, err)
	} else {
		for _, pr := range prompts {
			items = append(items, api.PreviewItem{ServerName: name, Kind: api.CapabilityPrompt, Extra: map[string]any{
				"name":        pr.Name,
				"description": pr.Description,
			}})
		}
	}

	logging.Debug("Previewer", "Server %s reported %d item(s)", name, len(items))
	return items, nil
}
