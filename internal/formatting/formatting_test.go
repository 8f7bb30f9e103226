package formatting

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"mcpdock/internal/api"
	"mcpdock/internal/profile"
	"mcpdock/internal/registry"
	"mcpdock/internal/report"
)

func TestRenderPreview(t *testing.T) {
	var buf bytes.Buffer
	RenderPreview(&buf, &api.PreviewResponse{
		Success: true,
		Items: []api.PreviewItem{
			{ServerName: "weather", Kind: api.CapabilityTool, Extra: map[string]any{
				"name":        "get_forecast",
				"description": "Fetch the forecast",
			}},
			{ServerName: "broken", Kind: api.CapabilityServer, Error: "connection refused"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "get_forecast")
	assert.Contains(t, out, "Fetch the forecast")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "1 server(s) could not be reached")
}

func TestRenderPreview_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderPreview(&buf, &api.PreviewResponse{Success: true})
	assert.Contains(t, buf.String(), "No capabilities found")
}

func TestRenderImportStats(t *testing.T) {
	var buf bytes.Buffer
	RenderImportStats(&buf, report.Stats{
		Imported: []string{"weather"},
		Skipped:  []api.SkipRecord{{Name: "github", Reason: "already_installed"}},
		Failed:   []api.FailRecord{{Name: "bad", Error: "spawn failed"}},
	})

	out := buf.String()
	assert.Contains(t, out, "weather")
	assert.Contains(t, out, "already_installed")
	assert.Contains(t, out, "spawn failed")
	assert.Contains(t, out, "1 imported, 1 skipped, 1 failed")
}

func TestRenderMessage(t *testing.T) {
	var buf bytes.Buffer
	RenderMessage(&buf, report.Message{
		Severity: report.SeveritySuccess,
		Title:    "Import complete",
		Body:     "Imported 1 server(s): weather",
	})

	out := buf.String()
	assert.Contains(t, out, "Import complete")
	assert.Contains(t, out, "Imported 1 server(s): weather")
}

func TestRenderCatalogPage(t *testing.T) {
	entries := []api.RegistryEntry{
		{Name: "io.github.acme/weather", Version: "1.0.0", Description: "Weather data"},
		{Name: "io.github.acme/github", Version: "2.1.0"},
	}
	installed := registry.NewBlacklist([]string{"io.github.acme/github@2.1.0"})

	var buf bytes.Buffer
	RenderCatalogPage(&buf, entries, installed, 2, true)

	out := buf.String()
	assert.Contains(t, out, "weather")
	assert.Contains(t, out, "installed")
	assert.Contains(t, out, "Page 2 (more available)")
}

func TestRenderCapabilityCounts(t *testing.T) {
	var buf bytes.Buffer
	RenderCapabilityCounts(&buf, profile.Summary{
		Counts: map[api.CapabilityKind]profile.Counts{
			api.CapabilityTool: {EnabledCount: 3, TotalCount: 5},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "tool")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "5")
}
