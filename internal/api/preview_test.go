package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewItem_TitleProbing(t *testing.T) {
	tests := []struct {
		name     string
		item     PreviewItem
		expected string
	}{
		{
			name:     "tool name preferred over title",
			item:     PreviewItem{Kind: CapabilityTool, Extra: map[string]any{"name": "kubectl_get", "title": "Get resources"}},
			expected: "kubectl_get",
		},
		{
			name:     "tool falls back to title",
			item:     PreviewItem{Kind: CapabilityTool, Extra: map[string]any{"title": "Get resources"}},
			expected: "Get resources",
		},
		{
			name:     "resource falls back to uri",
			item:     PreviewItem{Kind: CapabilityResource, Extra: map[string]any{"uri": "file:///tmp/x"}},
			expected: "file:///tmp/x",
		},
		{
			name:     "template falls back to uriTemplate",
			item:     PreviewItem{Kind: CapabilityTemplate, Extra: map[string]any{"uriTemplate": "db://{table}"}},
			expected: "db://{table}",
		},
		{
			name:     "non-string values are skipped",
			item:     PreviewItem{Kind: CapabilityTool, Extra: map[string]any{"name": 42, "title": "fallback"}},
			expected: "fallback",
		},
		{
			name:     "empty extra yields placeholder",
			item:     PreviewItem{Kind: CapabilityPrompt},
			expected: "(unnamed prompt)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.item.Title())
		})
	}
}

func TestPreviewItem_Description(t *testing.T) {
	resource := PreviewItem{Kind: CapabilityResource, Extra: map[string]any{"mimeType": "text/plain"}}
	assert.Equal(t, "text/plain", resource.Description())

	tool := PreviewItem{Kind: CapabilityTool, Extra: map[string]any{"mimeType": "text/plain"}}
	assert.Equal(t, "", tool.Description(), "tools do not probe mimeType")
}

func TestPreviewItem_UnmarshalJSON(t *testing.T) {
	raw := `{"serverName":"foo","kind":"tool","error":"unreachable","name":"do_thing","description":"does a thing"}`

	var item PreviewItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))

	assert.Equal(t, "foo", item.ServerName)
	assert.Equal(t, CapabilityTool, item.Kind)
	assert.Equal(t, "unreachable", item.Error)
	assert.Equal(t, "do_thing", item.Title())
	assert.Equal(t, "does a thing", item.Description())
	assert.NotContains(t, item.Extra, "serverName", "envelope keys must not leak into Extra")
}

func TestPreviewResponse_ItemErrors(t *testing.T) {
	resp := &PreviewResponse{
		Success: true,
		Items: []PreviewItem{
			{ServerName: "a", Kind: CapabilityTool},
			{ServerName: "b", Kind: CapabilityTool, Error: "timeout"},
			{ServerName: "b", Kind: CapabilityResource, Error: "timeout"},
		},
	}

	assert.True(t, resp.HasItemErrors())
	assert.Equal(t, []string{"b"}, resp.ItemErrorNames())

	var nilResp *PreviewResponse
	assert.False(t, nilResp.HasItemErrors())
	assert.Nil(t, nilResp.ItemErrorNames())
}
