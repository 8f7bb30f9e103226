// Package profile aggregates capability enablement across simultaneously
// active configuration sets.
package profile

import "mcpdock/internal/api"

// Merge combines capability records from any number of sets using the OR
// policy: a capability is enabled if any contributing set reports it
// enabled. Unseen ids are inserted as-is; a later enabled record overwrites
// a disabled one, and nothing ever reverts an enabled record to disabled.
// The enabled flags in the result are independent of set iteration order.
func Merge(sets ...[]api.CapabilityRecord) []api.CapabilityRecord {
	index := make(map[string]int)
	var merged []api.CapabilityRecord
	for _, set := range sets {
		for _, rec := range set {
			if pos, seen := index[rec.ID]; seen {
				if rec.Enabled {
					merged[pos].Enabled = true
				}
				continue
			}
			index[rec.ID] = len(merged)
			merged = append(merged, rec)
		}
	}
	return merged
}

// Counts is the per-kind dashboard summary. It is derived after the merge
// completes, never incrementally, so the numbers cannot depend on set
// iteration order.
type Counts struct {
	EnabledCount int
	TotalCount   int
}

// CountOf derives Counts from a merged record list.
func CountOf(merged []api.CapabilityRecord) Counts {
	c := Counts{TotalCount: len(merged)}
	for _, rec := range merged {
		if rec.Enabled {
			c.EnabledCount++
		}
	}
	return c
}
