// Package pipeline orchestrates the staged install flow: preview, optional
// dry-run, and commit against the backend, with per-stage loading and error
// state.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mcpdock/internal/api"
	"mcpdock/internal/draft"
	"mcpdock/internal/report"
	"mcpdock/pkg/logging"
)

// Stage is the state-machine position of a flow.
type Stage string

const (
	StageIdle    Stage = "idle"
	StagePreview Stage = "preview"
	StageDryRun  Stage = "dry_run"
	StageResult  Stage = "result"
)

// DefaultPreviewTimeout is generous because stdio transports may need
// first-run dependency installation before they answer a capability probe.
const DefaultPreviewTimeout = 45 * time.Second

// Options tunes a flow instance.
type Options struct {
	// PreviewTimeout overrides DefaultPreviewTimeout when positive.
	PreviewTimeout time.Duration
	// IncludeDetails asks the backend for full capability details in
	// previews.
	IncludeDetails bool
}

// Backend is the subset of the service surface a flow needs.
type Backend interface {
	api.Previewer
	api.Importer
}

// Flow is one active install flow. All mutation happens under a single
// mutex; network calls run outside it and are fenced by a generation
// counter so a response resolving after Close (or after a newer Begin)
// cannot resurrect state.
type Flow struct {
	backend  Backend
	notifier Notifier
	opts     Options

	mu sync.Mutex

	id         string
	generation uint64

	drafts          []draft.Draft
	source          api.Source
	stage           Stage
	targetProfileID string

	previewLoading bool
	dryRunLoading  bool
	commitLoading  bool

	previewResult *api.PreviewResponse
	previewErr    error
	dryRunResult  *api.ImportResponse
	dryRunErr     error
	commitResult  *api.ImportResponse
	commitErr     error
}

// New creates an idle flow. A nil notifier falls back to NopNotifier.
func New(backend Backend, notifier Notifier, opts Options) *Flow {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if opts.PreviewTimeout <= 0 {
		opts.PreviewTimeout = DefaultPreviewTimeout
	}
	return &Flow{
		backend:  backend,
		notifier: notifier,
		opts:     opts,
		stage:    StageIdle,
	}
}

// Begin starts a flow over the given drafts and provenance tag, clears any
// prior results, and issues the initial preview. With zero drafts it
// reports "no servers detected" and the flow does not leave idle.
func (f *Flow) Begin(ctx context.Context, drafts []draft.Draft, source api.Source) error {
	f.mu.Lock()
	if len(drafts) == 0 {
		f.mu.Unlock()
		err := api.NewValidationError("drafts", "no servers detected, provide at least one")
		f.notifier.Error("Nothing to install", err.Message)
		return err
	}

	f.generation++
	f.id = uuid.NewString()
	f.drafts = drafts
	f.source = source
	f.stage = StagePreview
	f.clearResultsLocked()
	gen := f.generation
	logging.Info("Pipeline", "Flow %s begun with %d draft(s) from source %s", f.id, len(drafts), source)
	f.mu.Unlock()

	return f.runPreview(ctx, gen)
}

// Refresh re-runs the preview, optionally over an edited working set. It is
// only valid while a flow is active.
func (f *Flow) Refresh(ctx context.Context, edited []draft.Draft) error {
	f.mu.Lock()
	if f.stage == StageIdle {
		f.mu.Unlock()
		return api.NewValidationError("stage", "no active flow to refresh")
	}
	if len(edited) > 0 {
		f.drafts = edited
	}
	f.stage = StagePreview
	f.previewResult = nil
	f.previewErr = nil
	gen := f.generation
	f.mu.Unlock()

	return f.runPreview(ctx, gen)
}

// runPreview performs the capability probe and stores the outcome unless
// the flow moved on in the meantime.
func (f *Flow) runPreview(ctx context.Context, gen uint64) error {
	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		return nil
	}
	f.previewLoading = true
	specs := draft.SpecsByName(f.drafts)
	timeout := f.opts.PreviewTimeout
	details := f.opts.IncludeDetails
	f.mu.Unlock()

	previewCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resp, err := f.backend.Preview(previewCtx, specs, details, timeout)

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		logging.Debug("Pipeline", "Discarding stale preview response (generation %d != %d)", gen, f.generation)
		return nil
	}
	f.previewLoading = false

	if err == nil && resp != nil && !resp.Success {
		errText := resp.Error
		if errText == "" {
			errText = "the preview request failed"
		}
		err = api.NewTransportError("preview", 0, errors.New(errText))
	}
	if err != nil {
		f.previewErr = err
		// Notify outside the lock: a notifier may call back into flow
		// accessors.
		f.mu.Unlock()
		f.notifier.Error("Preview failed", err.Error()+". You can retry the preview.")
		return err
	}

	f.previewResult = resp
	f.previewErr = nil
	itemErrors := resp.HasItemErrors()
	names := resp.ItemErrorNames()
	f.mu.Unlock()

	if itemErrors {
		// Soft warning only: the backend retries unreachable servers
		// after installation, so the operator may proceed.
		body := "Some servers did not report their capabilities yet. They will be retried after installation."
		if len(names) > 0 {
			body = "Unreachable: " + strings.Join(names, ", ") + ". They will be retried after installation."
		}
		f.notifier.Warning("Preview incomplete", body)
	}
	return nil
}

// SetTargetProfile selects the destination configuration set for the
// commit.
func (f *Flow) SetTargetProfile(profileID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targetProfileID = profileID
}

// PerformDryRun resubmits the working set with the dry-run flag. It can be
// repeated after edits. Skips classify as a warning, any failed server as a
// blocking error.
func (f *Flow) PerformDryRun(ctx context.Context) error {
	f.mu.Lock()
	if f.stage == StageIdle {
		f.mu.Unlock()
		return api.NewValidationError("stage", "no active flow to dry-run")
	}
	f.stage = StageDryRun
	f.dryRunLoading = true
	gen := f.generation
	specs := draft.SpecsByName(f.drafts)
	target := f.targetProfileID
	f.mu.Unlock()

	resp, err := f.backend.Import(ctx, specs, true, target)

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		logging.Debug("Pipeline", "Discarding stale dry-run response")
		return nil
	}
	f.dryRunLoading = false

	if err != nil {
		f.dryRunErr = err
		f.mu.Unlock()
		f.notifier.Error("Dry run failed", err.Error())
		return err
	}

	f.dryRunResult = resp
	f.dryRunErr = nil
	f.mu.Unlock()

	notify(f.notifier, report.DryRunMessage(resp))
	return nil
}

// ConfirmImport commits the working set. The flow moves to result; on
// success with at least one imported server it auto-closes back to idle.
// Skips alone do not auto-close, since the operator may want to adjust and
// retry. A failed commit keeps the flow in result for inspection.
func (f *Flow) ConfirmImport(ctx context.Context) error {
	f.mu.Lock()
	if f.stage == StageIdle {
		f.mu.Unlock()
		return api.NewValidationError("stage", "no active flow to commit")
	}
	f.commitLoading = true
	gen := f.generation
	specs := draft.SpecsByName(f.drafts)
	target := f.targetProfileID
	f.mu.Unlock()

	resp, err := f.backend.Import(ctx, specs, false, target)

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		logging.Debug("Pipeline", "Discarding stale commit response")
		return nil
	}
	f.commitLoading = false
	f.stage = StageResult

	if err != nil {
		f.commitErr = err
		f.mu.Unlock()
		f.notifier.Error("Import failed", err.Error())
		return err
	}

	f.commitResult = resp
	f.commitErr = nil

	stats := report.FromResponse(resp)
	if stats.Classify(resp.Succeeded()) == report.OutcomeImported {
		logging.Info("Pipeline", "Flow %s committed %d server(s), auto-closing", f.id, len(stats.Imported))
		f.resetLocked()
	}
	f.mu.Unlock()

	notify(f.notifier, report.CommitMessage(resp))
	return nil
}

// Close fully resets the flow from any state. In-flight responses resolve
// against an old generation and are discarded; no partial state leaks into
// the next Begin.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *Flow) resetLocked() {
	f.generation++
	f.id = ""
	f.drafts = nil
	f.source = ""
	f.targetProfileID = ""
	f.stage = StageIdle
	f.previewLoading = false
	f.dryRunLoading = false
	f.commitLoading = false
	f.clearResultsLocked()
}

func (f *Flow) clearResultsLocked() {
	f.previewResult = nil
	f.previewErr = nil
	f.dryRunResult = nil
	f.dryRunErr = nil
	f.commitResult = nil
	f.commitErr = nil
}

// ID returns the flow instance id ("" when idle).
func (f *Flow) ID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

// Stage returns the current state-machine position.
func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

// Drafts returns a deep copy of the working set. The flow's own drafts are
// immutable once handed to it; edits go through Refresh with a new set.
func (f *Flow) Drafts() []draft.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.drafts == nil {
		return nil
	}
	out := make([]draft.Draft, len(f.drafts))
	for i, d := range f.drafts {
		out[i] = d.Clone()
	}
	return out
}

// Source returns the provenance tag of the active flow.
func (f *Flow) Source() api.Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source
}

// TargetProfile returns the selected destination configuration set.
func (f *Flow) TargetProfile() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.targetProfileID
}

// PreviewResult returns the last preview outcome and error.
func (f *Flow) PreviewResult() (*api.PreviewResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.previewResult, f.previewErr
}

// DryRunResult returns the last dry-run outcome and error.
func (f *Flow) DryRunResult() (*api.ImportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dryRunResult, f.dryRunErr
}

// CommitResult returns the commit outcome and error.
func (f *Flow) CommitResult() (*api.ImportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commitResult, f.commitErr
}

// Loading reports the per-stage loading flags (preview, dry-run, commit).
// Callers should gate re-entrant triggers on these; the flow itself only
// guarantees that stale responses are discarded.
func (f *Flow) Loading() (preview, dryRun, commit bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.previewLoading, f.dryRunLoading, f.commitLoading
}
