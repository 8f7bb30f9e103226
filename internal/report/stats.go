// Package report classifies dry-run and commit responses into the
// imported/skipped/failed projection shown to the operator.
package report

import (
	"fmt"
	"strings"

	"mcpdock/internal/api"
)

// Stats is the read-only projection of one import response. It is derived,
// never stored.
type Stats struct {
	Imported []string
	Skipped  []api.SkipRecord
	Failed   []api.FailRecord
}

// FromResponse extracts stats from a response, merging the top-level and
// data-nested variants the backend emits on different code paths.
func FromResponse(r *api.ImportResponse) Stats {
	if r == nil {
		return Stats{}
	}
	s := Stats{
		Imported: r.Imported,
		Skipped:  r.Skipped,
		Failed:   r.Failed,
	}
	if r.Data != nil {
		if len(s.Imported) == 0 {
			s.Imported = r.Data.Imported
		}
		if len(s.Skipped) == 0 {
			s.Skipped = r.Data.Skipped
		}
		if len(s.Failed) == 0 {
			s.Failed = r.Data.Failed
		}
	}
	return s
}

// FailedNames returns the names of failed servers, skipping records the
// backend reported without a name.
func (s Stats) FailedNames() []string {
	var names []string
	for _, f := range s.Failed {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

// SkippedNames returns the names of skipped servers.
func (s Stats) SkippedNames() []string {
	var names []string
	for _, r := range s.Skipped {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}

// Outcome buckets a commit result for operator messaging.
type Outcome int

const (
	// OutcomeImported means at least one server was actually installed.
	OutcomeImported Outcome = iota
	// OutcomeSkippedOnly means nothing failed but nothing was installed
	// either; the operator may want to adjust and retry.
	OutcomeSkippedOnly
	// OutcomeNoChanges means the commit succeeded with zero imported and
	// zero skipped servers.
	OutcomeNoChanges
	// OutcomeFailed means the commit reported failure.
	OutcomeFailed
)

// Classify buckets the stats using the decoded success flag of the
// surrounding response.
func (s Stats) Classify(succeeded bool) Outcome {
	switch {
	case !succeeded || len(s.Failed) > 0:
		return OutcomeFailed
	case len(s.Imported) > 0:
		return OutcomeImported
	case len(s.Skipped) > 0:
		return OutcomeSkippedOnly
	default:
		return OutcomeNoChanges
	}
}

// Severity grades an operator-facing message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// Message is a human-readable title/body pair. Every path below fills both
// fields; the surface layer never renders an empty message.
type Message struct {
	Severity Severity
	Title    string
	Body     string
}

// CommitMessage summarizes a commit response.
func CommitMessage(r *api.ImportResponse) Message {
	s := FromResponse(r)
	switch s.Classify(r.Succeeded()) {
	case OutcomeFailed:
		return Message{
			Severity: SeverityError,
			Title:    "Import failed",
			Body:     failureBody(r, s),
		}
	case OutcomeImported:
		return Message{
			Severity: SeveritySuccess,
			Title:    "Import complete",
			Body:     fmt.Sprintf("Imported %d server(s): %s", len(s.Imported), strings.Join(s.Imported, ", ")),
		}
	case OutcomeSkippedOnly:
		return Message{
			Severity: SeverityWarning,
			Title:    "No servers imported",
			Body:     skipBody(s),
		}
	default:
		return Message{
			Severity: SeverityInfo,
			Title:    "Import completed",
			Body:     "The import completed without changes.",
		}
	}
}

// DryRunMessage summarizes a dry-run response: failures are blocking,
// skips are a warning, a clean pass is informational.
func DryRunMessage(r *api.ImportResponse) Message {
	s := FromResponse(r)
	if !r.Succeeded() || len(s.Failed) > 0 {
		return Message{
			Severity: SeverityError,
			Title:    "Validation failed",
			Body:     failureBody(r, s),
		}
	}
	if len(s.Skipped) > 0 {
		return Message{
			Severity: SeverityWarning,
			Title:    "Some servers would be skipped",
			Body:     skipBody(s),
		}
	}
	return Message{
		Severity: SeverityInfo,
		Title:    "Validation passed",
		Body:     "All servers passed the dry run.",
	}
}

// failureBody prefers the backend's own error text, then explicit failed
// server names, then a count-based fallback so the message is never empty.
func failureBody(r *api.ImportResponse, s Stats) string {
	if r != nil && r.Error != "" {
		return fmt.Sprintf("Import failed: %s", r.Error)
	}
	if names := s.FailedNames(); len(names) > 0 {
		return fmt.Sprintf("The following server(s) failed: %s", strings.Join(names, ", "))
	}
	if len(s.Failed) > 0 {
		return fmt.Sprintf("%d server(s) failed to install.", len(s.Failed))
	}
	return "Import failed: the backend returned an unspecified error."
}

func skipBody(s Stats) string {
	parts := make([]string, 0, len(s.Skipped))
	for _, rec := range s.Skipped {
		if rec.Name == "" {
			continue
		}
		if rec.Reason != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", rec.Name, rec.Reason))
		} else {
			parts = append(parts, rec.Name)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d server(s) were skipped.", len(s.Skipped))
	}
	return fmt.Sprintf("Skipped: %s", strings.Join(parts, ", "))
}
