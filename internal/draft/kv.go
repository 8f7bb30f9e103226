package draft

import (
	"sort"
	"strings"
)

// KVPair is one row of a key-value editing list (env, headers, urlParams).
type KVPair struct {
	Key   string
	Value string
}

// BuildMap collapses an ordered pair list into a map. Keys are trimmed,
// pairs with an empty key are dropped, and on duplicate keys the last
// occurrence wins. Returns nil when no usable pairs remain so callers can
// omit the field entirely.
func BuildMap(pairs []KVPair) map[string]string {
	var m map[string]string
	for _, p := range pairs {
		key := strings.TrimSpace(p.Key)
		if key == "" {
			continue
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[key] = p.Value
	}
	return m
}

// PairsFromMap converts a map back into a pair list sorted by key, for
// pre-filling editing forms from an existing draft.
func PairsFromMap(m map[string]string) []KVPair {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]KVPair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, KVPair{Key: k, Value: m[k]})
	}
	return pairs
}
