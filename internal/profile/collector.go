package profile

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"mcpdock/internal/api"
	"mcpdock/pkg/logging"
)

// dashboardKinds are the capability lists fetched per configuration set.
var dashboardKinds = []api.CapabilityKind{
	api.CapabilityServer,
	api.CapabilityTool,
	api.CapabilityResource,
	api.CapabilityPrompt,
}

// maxConcurrentFetches bounds the parallel capability calls per pass.
const maxConcurrentFetches = 8

// Summary is the merged dashboard state across all active sets.
type Summary struct {
	Records map[api.CapabilityKind][]api.CapabilityRecord
	Counts  map[api.CapabilityKind]Counts
}

// Collector pulls per-set capability lists and OR-merges them.
type Collector struct {
	lister api.CapabilityLister
}

// NewCollector creates a collector over the given capability lister.
func NewCollector(lister api.CapabilityLister) *Collector {
	return &Collector{lister: lister}
}

// Collect fetches the four capability lists for every active set
// concurrently and merges them per kind. Fetches are fail-soft: a failing
// source is logged and contributes nothing, it never aborts the pass. Only
// context cancellation is returned as an error.
func (c *Collector) Collect(ctx context.Context, setIDs []string) (Summary, error) {
	type slot struct {
		kind api.CapabilityKind
		set  int
	}

	results := make(map[slot][]api.CapabilityRecord)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for setIdx, setID := range setIDs {
		for _, kind := range dashboardKinds {
			g.Go(func() error {
				records, err := c.lister.ListCapabilities(gctx, setID, kind)
				if err != nil {
					logging.Warn("ProfileCollector", "Failed to list %s capabilities for set %s: %v", kind, setID, err)
					return nil
				}
				mu.Lock()
				results[slot{kind: kind, set: setIdx}] = records
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Records: make(map[api.CapabilityKind][]api.CapabilityRecord, len(dashboardKinds)),
		Counts:  make(map[api.CapabilityKind]Counts, len(dashboardKinds)),
	}
	for _, kind := range dashboardKinds {
		sets := make([][]api.CapabilityRecord, 0, len(setIDs))
		for setIdx := range setIDs {
			sets = append(sets, results[slot{kind: kind, set: setIdx}])
		}
		merged := Merge(sets...)
		summary.Records[kind] = merged
		summary.Counts[kind] = CountOf(merged)
	}
	return summary, nil
}
