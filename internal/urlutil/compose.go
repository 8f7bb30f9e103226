// Package urlutil merges server endpoint URLs with auxiliary query
// parameters. Composition must always degrade to some usable result: a
// malformed base never fails the operation outright.
package urlutil

import (
	"net/url"
	"sort"
	"strings"
)

// Compose merges baseURL with the given query parameters and returns the
// resulting URL string. With no parameters the base is returned unchanged.
//
// Absolute http(s) URLs are parsed and re-serialized with each parameter
// set on the query, later keys overriding earlier ones with the same name.
// Bases that are not absolute http(s) URLs (relative paths, templated
// hosts) keep their original path text and get a literal "?"-joined query
// string appended. If parsing fails entirely, the parameters are encoded
// by hand and concatenated.
func Compose(baseURL string, params map[string]string) string {
	if len(params) == 0 {
		return baseURL
	}

	u, err := url.Parse(baseURL)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		q := u.Query()
		for _, k := range sortedKeys(params) {
			q.Set(k, params[k])
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	if err == nil {
		// Not an absolute http(s) URL. Reuse query serialization only;
		// the original path text is re-attached verbatim so nothing of
		// the parse leaks into the result.
		q := u.Query()
		for _, k := range sortedKeys(params) {
			q.Set(k, params[k])
		}
		path := baseURL
		if i := strings.Index(baseURL, "?"); i >= 0 {
			path = baseURL[:i]
		}
		return path + "?" + q.Encode()
	}

	// Parsing threw: fall back to naive concatenation.
	values := url.Values{}
	for _, k := range sortedKeys(params) {
		values.Set(k, params[k])
	}
	return baseURL + "?" + values.Encode()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
