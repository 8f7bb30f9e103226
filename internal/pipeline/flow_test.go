package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpdock/internal/api"
	"mcpdock/internal/draft"
)

func boolPtr(b bool) *bool { return &b }

// fakeBackend scripts preview and import responses and records the
// payloads it received.
type fakeBackend struct {
	mu sync.Mutex

	previewResp *api.PreviewResponse
	previewErr  error
	importResp  *api.ImportResponse
	importErr   error

	previewCalls  int
	importCalls   []importCall
	previewBlock  chan struct{}
	lastPreviewed map[string]api.ServerSpec
}

type importCall struct {
	servers map[string]api.ServerSpec
	dryRun  bool
	target  string
}

func (b *fakeBackend) Preview(ctx context.Context, servers map[string]api.ServerSpec, includeDetails bool, timeout time.Duration) (*api.PreviewResponse, error) {
	b.mu.Lock()
	b.previewCalls++
	b.lastPreviewed = servers
	block := b.previewBlock
	b.mu.Unlock()
	if block != nil {
		<-block
	}
	return b.previewResp, b.previewErr
}

func (b *fakeBackend) Import(ctx context.Context, servers map[string]api.ServerSpec, dryRun bool, target string) (*api.ImportResponse, error) {
	b.mu.Lock()
	b.importCalls = append(b.importCalls, importCall{servers: servers, dryRun: dryRun, target: target})
	b.mu.Unlock()
	return b.importResp, b.importErr
}

// recordingNotifier captures notifications per severity.
type recordingNotifier struct {
	mu       sync.Mutex
	infos    []string
	successs []string
	warnings []string
	errors   []string
}

func (n *recordingNotifier) Info(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, title+": "+body)
}

func (n *recordingNotifier) Success(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successs = append(n.successs, title+": "+body)
}

func (n *recordingNotifier) Warning(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, title+": "+body)
}

func (n *recordingNotifier) Error(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, title+": "+body)
}

func stdioDraft(t *testing.T, name string) draft.Draft {
	t.Helper()
	d, err := draft.New(draft.Params{Name: name, Kind: api.KindStdio, Command: "uvx"})
	require.NoError(t, err)
	return d
}

func remoteDraft(t *testing.T, name string) draft.Draft {
	t.Helper()
	d, err := draft.New(draft.Params{
		Name:      name,
		Kind:      api.KindStreamableHTTP,
		URL:       "https://example.com/mcp",
		URLParams: []draft.KVPair{{Key: "token", Value: "abc"}},
	})
	require.NoError(t, err)
	return d
}

func TestBegin_NoDrafts(t *testing.T) {
	backend := &fakeBackend{}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	err := f.Begin(context.Background(), nil, api.SourceManual)

	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Contains(t, err.Error(), "no servers detected")
	assert.Equal(t, StageIdle, f.Stage(), "flow must not leave idle")
	assert.Equal(t, 0, backend.previewCalls)
	assert.Len(t, notifier.errors, 1)
}

func TestBegin_PreviewSuccess(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{Success: true, Items: []api.PreviewItem{
			{ServerName: "foo", Kind: api.CapabilityTool, Extra: map[string]any{"name": "do_thing"}},
		}},
	}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	err := f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual)
	require.NoError(t, err)

	assert.Equal(t, StagePreview, f.Stage())
	assert.NotEmpty(t, f.ID())
	assert.Equal(t, api.SourceManual, f.Source())
	result, perr := f.PreviewResult()
	require.NoError(t, perr)
	require.NotNil(t, result)
	assert.Len(t, result.Items, 1)
	assert.Empty(t, notifier.errors)
	assert.Empty(t, notifier.warnings)
}

func TestBegin_PreviewTransportFailureIsHardButRetryable(t *testing.T) {
	backend := &fakeBackend{previewErr: errors.New("connection refused")}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	err := f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceIngest)
	require.Error(t, err)

	assert.Equal(t, StagePreview, f.Stage(), "stage keeps the flow retryable")
	_, perr := f.PreviewResult()
	assert.Error(t, perr)
	require.Len(t, notifier.errors, 1)
	assert.Contains(t, notifier.errors[0], "retry")

	// Retry succeeds.
	backend.previewErr = nil
	backend.previewResp = &api.PreviewResponse{Success: true}
	require.NoError(t, f.Refresh(context.Background(), nil))
	_, perr = f.PreviewResult()
	assert.NoError(t, perr)
	assert.Equal(t, 2, backend.previewCalls)
}

func TestBegin_PreviewEnvelopeFailure(t *testing.T) {
	backend := &fakeBackend{previewResp: &api.PreviewResponse{Success: false, Error: "probe crashed"}}
	f := New(backend, nil, Options{})

	err := f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual)
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))
	assert.Contains(t, err.Error(), "probe crashed")
}

func TestBegin_PerItemErrorsAreSoftWarnings(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{Success: true, Items: []api.PreviewItem{
			{ServerName: "foo", Kind: api.CapabilityTool},
			{ServerName: "bar", Kind: api.CapabilityTool, Error: "not installed yet"},
		}},
	}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	err := f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo"), stdioDraft(t, "bar")}, api.SourceIngest)
	require.NoError(t, err, "per-item errors must not fail the flow")

	require.Len(t, notifier.warnings, 1)
	assert.Contains(t, notifier.warnings[0], "bar")
	assert.Equal(t, StagePreview, f.Stage())
}

func TestPerformDryRun_Classification(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{Success: true},
		importResp: &api.ImportResponse{
			Success: boolPtr(true),
			Skipped: []api.SkipRecord{{Name: "foo", Reason: "already_installed"}},
		},
	}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	require.NoError(t, f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual))
	f.SetTargetProfile("profile-1")
	require.NoError(t, f.PerformDryRun(context.Background()))

	assert.Equal(t, StageDryRun, f.Stage())
	require.Len(t, backend.importCalls, 1)
	assert.True(t, backend.importCalls[0].dryRun)
	assert.Equal(t, "profile-1", backend.importCalls[0].target)
	require.Len(t, notifier.warnings, 1)
	assert.Contains(t, notifier.warnings[0], "already_installed")

	// Dry-run is re-enterable.
	backend.importResp = &api.ImportResponse{Success: boolPtr(true)}
	require.NoError(t, f.PerformDryRun(context.Background()))
	assert.Len(t, backend.importCalls, 2)
	assert.Equal(t, StageDryRun, f.Stage())
}

func TestPerformDryRun_FailedServersBlock(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{Success: true},
		importResp: &api.ImportResponse{
			Success: boolPtr(true),
			Failed:  []api.FailRecord{{Name: "foo", Error: "spawn failed"}},
		},
	}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	require.NoError(t, f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual))
	require.NoError(t, f.PerformDryRun(context.Background()))

	require.Len(t, notifier.errors, 1)
	assert.Contains(t, notifier.errors[0], "foo")
}

func TestConfirmImport_SuccessAutoCloses(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{Success: true},
		importResp:  &api.ImportResponse{Success: boolPtr(true), Imported: []string{"foo"}},
	}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	require.NoError(t, f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual))
	require.NoError(t, f.ConfirmImport(context.Background()))

	assert.Equal(t, StageIdle, f.Stage(), "imported > 0 auto-closes the flow")
	assert.Empty(t, f.ID())
	require.Len(t, backend.importCalls, 1)
	assert.False(t, backend.importCalls[0].dryRun)
	require.Len(t, notifier.successs, 1)
	assert.Contains(t, notifier.successs[0], "foo")
}

func TestConfirmImport_SkipsAloneDoNotAutoClose(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{Success: true},
		importResp: &api.ImportResponse{
			Success: boolPtr(true),
			Skipped: []api.SkipRecord{{Name: "foo", Reason: "already_installed"}},
		},
	}
	f := New(backend, nil, Options{})

	require.NoError(t, f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual))
	require.NoError(t, f.ConfirmImport(context.Background()))

	assert.Equal(t, StageResult, f.Stage())
}

func TestConfirmImport_NoChangesIsInfo(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{Success: true},
		importResp:  &api.ImportResponse{Success: boolPtr(true)},
	}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	require.NoError(t, f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual))
	require.NoError(t, f.ConfirmImport(context.Background()))

	assert.Equal(t, StageResult, f.Stage())
	require.Len(t, notifier.infos, 1)
	assert.Contains(t, notifier.infos[0], "without changes")
}

func TestConfirmImport_FailureStaysInResult(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{Success: true},
		importResp:  &api.ImportResponse{Success: boolPtr(false), Error: "x"},
	}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	require.NoError(t, f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual))
	require.NoError(t, f.ConfirmImport(context.Background()))

	assert.Equal(t, StageResult, f.Stage(), "flow stays in result, not idle")
	require.Len(t, notifier.errors, 1)
	assert.Contains(t, notifier.errors[0], "Import failed: x")
	result, cerr := f.CommitResult()
	require.NoError(t, cerr)
	assert.False(t, result.Succeeded())
}

func TestCommitPayload_ComposesURLAndOmitsParams(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{Success: true},
		importResp:  &api.ImportResponse{Success: boolPtr(true), Imported: []string{"remote"}},
	}
	f := New(backend, nil, Options{})

	require.NoError(t, f.Begin(context.Background(), []draft.Draft{remoteDraft(t, "remote")}, api.SourceMarket))
	require.NoError(t, f.ConfirmImport(context.Background()))

	require.Len(t, backend.importCalls, 1)
	spec := backend.importCalls[0].servers["remote"]
	assert.Equal(t, "https://example.com/mcp?token=abc", spec.URL)
	assert.Equal(t, api.KindStreamableHTTP, spec.Type)
	assert.Empty(t, spec.Command)
}

func TestClose_DiscardsInFlightPreview(t *testing.T) {
	block := make(chan struct{})
	backend := &fakeBackend{
		previewResp:  &api.PreviewResponse{Success: true},
		previewBlock: block,
	}
	notifier := &recordingNotifier{}
	f := New(backend, notifier, Options{})

	done := make(chan error, 1)
	go func() {
		done <- f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual)
	}()

	// Wait for the preview call to be in flight, then close the flow.
	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.previewCalls == 1
	}, time.Second, 5*time.Millisecond)

	f.Close()
	close(block)

	require.NoError(t, <-done)
	assert.Equal(t, StageIdle, f.Stage())
	result, perr := f.PreviewResult()
	assert.Nil(t, result, "late response must not resurrect state")
	assert.NoError(t, perr)
}

func TestClose_FullyResetsState(t *testing.T) {
	backend := &fakeBackend{previewResp: &api.PreviewResponse{Success: true}}
	f := New(backend, nil, Options{})

	require.NoError(t, f.Begin(context.Background(), []draft.Draft{stdioDraft(t, "foo")}, api.SourceManual))
	f.SetTargetProfile("p1")
	f.Close()

	assert.Equal(t, StageIdle, f.Stage())
	assert.Empty(t, f.Drafts())
	assert.Empty(t, f.TargetProfile())
	assert.Empty(t, f.ID())
	preview, dryRun, commit := f.Loading()
	assert.False(t, preview)
	assert.False(t, dryRun)
	assert.False(t, commit)
}

func TestDryRun_RequiresActiveFlow(t *testing.T) {
	f := New(&fakeBackend{}, nil, Options{})
	assert.Error(t, f.PerformDryRun(context.Background()))
	assert.Error(t, f.ConfirmImport(context.Background()))
	assert.Error(t, f.Refresh(context.Background(), nil))
}

// reentrantNotifier calls back into the flow's accessors from every
// notification, the way a UI layer refreshing its view on notify would.
type reentrantNotifier struct {
	flow   *Flow
	stages []Stage
}

func (n *reentrantNotifier) observe() {
	n.stages = append(n.stages, n.flow.Stage())
	n.flow.PreviewResult()
	n.flow.DryRunResult()
	n.flow.CommitResult()
	n.flow.Drafts()
}

func (n *reentrantNotifier) Info(title, body string)    { n.observe() }
func (n *reentrantNotifier) Success(title, body string) { n.observe() }
func (n *reentrantNotifier) Warning(title, body string) { n.observe() }
func (n *reentrantNotifier) Error(title, body string)   { n.observe() }

func TestNotifier_MayCallBackIntoFlow(t *testing.T) {
	backend := &fakeBackend{
		previewResp: &api.PreviewResponse{
			Success: true,
			Items:   []api.PreviewItem{{ServerName: "foo", Kind: api.CapabilityServer, Error: "unreachable"}},
		},
		importResp: &api.ImportResponse{Success: boolPtr(true), Imported: []string{"foo"}},
	}
	notifier := &reentrantNotifier{}
	f := New(backend, notifier, Options{})
	notifier.flow = f

	d := stdioDraft(t, "foo")
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, f.Begin(context.Background(), []draft.Draft{d}, api.SourceManual))
		assert.NoError(t, f.PerformDryRun(context.Background()))
		assert.NoError(t, f.ConfirmImport(context.Background()))

		// Error notifications must not hold the lock either.
		backend.previewErr = errors.New("boom")
		assert.Error(t, f.Begin(context.Background(), []draft.Draft{d}, api.SourceManual))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notifier callback into the flow deadlocked")
	}
	assert.NotEmpty(t, notifier.stages)
}

func TestDrafts_ReturnsIndependentCopy(t *testing.T) {
	original, err := draft.New(draft.Params{
		Name:    "foo",
		Kind:    api.KindStdio,
		Command: "uvx",
		Args:    []string{"bar"},
		Env:     []draft.KVPair{{Key: "TOKEN", Value: "x"}},
	})
	require.NoError(t, err)

	backend := &fakeBackend{previewResp: &api.PreviewResponse{Success: true}}
	f := New(backend, nil, Options{})
	require.NoError(t, f.Begin(context.Background(), []draft.Draft{original}, api.SourceManual))

	got := f.Drafts()
	require.Len(t, got, 1)
	got[0].Name = "mutated"
	got[0].Args[0] = "mutated"
	got[0].Env["TOKEN"] = "mutated"

	kept := f.Drafts()
	require.Len(t, kept, 1)
	assert.Equal(t, "foo", kept[0].Name)
	assert.Equal(t, []string{"bar"}, kept[0].Args)
	assert.Equal(t, map[string]string{"TOKEN": "x"}, kept[0].Env)
}
