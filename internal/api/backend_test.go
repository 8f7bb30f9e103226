package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportResponse_Succeeded(t *testing.T) {
	truthy := true
	falsy := false

	tests := []struct {
		name     string
		response *ImportResponse
		expected bool
	}{
		{
			name:     "explicit success flag wins",
			response: &ImportResponse{Success: &truthy, Error: "ignored"},
			expected: true,
		},
		{
			name:     "explicit failure flag wins over clean status",
			response: &ImportResponse{Success: &falsy, Status: "success"},
			expected: false,
		},
		{
			name:     "error field means failure when flag absent",
			response: &ImportResponse{Error: "boom"},
			expected: false,
		},
		{
			name:     "status success",
			response: &ImportResponse{Status: "success"},
			expected: true,
		},
		{
			name:     "status ok",
			response: &ImportResponse{Status: "ok"},
			expected: true,
		},
		{
			name:     "status failure",
			response: &ImportResponse{Status: "failed"},
			expected: false,
		},
		{
			name:     "empty response counts as success",
			response: &ImportResponse{},
			expected: true,
		},
		{
			name:     "nil response is a failure",
			response: nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.response.Succeeded())
		})
	}
}

func TestImportResponse_DecodeVariants(t *testing.T) {
	// Stats at the top level.
	var top ImportResponse
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"imported":["a"],"skipped":[{"name":"b","reason":"already_installed"}]}`), &top))
	assert.True(t, top.Succeeded())
	assert.Equal(t, []string{"a"}, top.Imported)
	require.Len(t, top.Skipped, 1)
	assert.Equal(t, "already_installed", top.Skipped[0].Reason)

	// Stats nested under data.
	var nested ImportResponse
	require.NoError(t, json.Unmarshal([]byte(`{"status":"ok","data":{"failed":[{"name":"c","error":"spawn failed"}]}}`), &nested))
	assert.True(t, nested.Succeeded())
	require.NotNil(t, nested.Data)
	require.Len(t, nested.Data.Failed, 1)
	assert.Equal(t, "c", nested.Data.Failed[0].Name)
}

func TestParseServerKind(t *testing.T) {
	tests := []struct {
		input    string
		expected ServerKind
		wantErr  bool
	}{
		{"stdio", KindStdio, false},
		{"sse", KindSSE, false},
		{"streamable_http", KindStreamableHTTP, false},
		{"streamable-http", KindStreamableHTTP, false},
		{"http", KindStreamableHTTP, false},
		{"websocket", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseServerKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestServerKind_IsRemote(t *testing.T) {
	assert.False(t, KindStdio.IsRemote())
	assert.True(t, KindSSE.IsRemote())
	assert.True(t, KindStreamableHTTP.IsRemote())
}
