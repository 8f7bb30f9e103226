package ingest

import (
	"mcpdock/internal/api"
	"mcpdock/internal/draft"
)

// Route is the cardinality decision for a normalized draft list.
type Route int

const (
	// RouteForm routes exactly one draft into the single-server editing
	// form for review before submission.
	RouteForm Route = iota
	// RouteBulk routes multiple drafts directly to bulk submission,
	// bypassing the form.
	RouteBulk
)

func (r Route) String() string {
	if r == RouteBulk {
		return "bulk"
	}
	return "form"
}

// Decide picks the downstream route for the given drafts. Zero drafts is
// the non-fatal "no servers detected" condition; callers surface it and
// change no state.
func Decide(drafts []draft.Draft) (Route, error) {
	switch len(drafts) {
	case 0:
		return 0, api.NewValidationError("input", "no servers detected in the input")
	case 1:
		return RouteForm, nil
	default:
		return RouteBulk, nil
	}
}
