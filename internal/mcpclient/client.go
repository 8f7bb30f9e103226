// Package mcpclient connects directly to candidate MCP servers to gather
// capability snapshots, one transport client per server kind. It backs the
// local previewer used when no install service is configured.
package mcpclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"mcpdock/internal/api"
	"mcpdock/pkg/logging"
)

// protocolVersion is the MCP protocol revision spoken during the handshake.
const protocolVersion = "2024-11-05"

// Client is the transport-agnostic surface the previewer needs from a
// connected MCP server.
type Client interface {
	// Initialize establishes the connection and performs the protocol
	// handshake.
	Initialize(ctx context.Context) error
	// Close cleanly shuts down the client connection.
	Close() error
	// ListTools returns all available tools from the server.
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	// ListResources returns all available resources from the server.
	ListResources(ctx context.Context) ([]mcp.Resource, error)
	// ListResourceTemplates returns all available resource templates from
	// the server.
	ListResourceTemplates(ctx context.Context) ([]mcp.ResourceTemplate, error)
	// ListPrompts returns all available prompts from the server.
	ListPrompts(ctx context.Context) ([]mcp.Prompt, error)
}

// NewFromSpec creates the transport client matching the spec's kind.
func NewFromSpec(spec api.ServerSpec) (Client, error) {
	switch spec.Type {
	case api.KindStdio:
		if spec.Command == "" {
			return nil, fmt.Errorf("command is required for stdio type")
		}
		return &stdioClient{command: spec.Command, args: spec.Args, env: spec.Env}, nil
	case api.KindSSE:
		if spec.URL == "" {
			return nil, fmt.Errorf("url is required for sse type")
		}
		return &sseClient{url: spec.URL, headers: spec.Headers}, nil
	case api.KindStreamableHTTP:
		if spec.URL == "" {
			return nil, fmt.Errorf("url is required for streamable_http type")
		}
		return &streamableHTTPClient{url: spec.URL, headers: spec.Headers}, nil
	default:
		return nil, fmt.Errorf("unsupported server type: %s", spec.Type)
	}
}

// baseClient holds the shared connection state and listing operations.
type baseClient struct {
	mu        sync.RWMutex
	client    client.MCPClient
	connected bool
}

func (b *baseClient) adopt(c client.MCPClient) {
	b.client = c
	b.connected = true
}

func (b *baseClient) checkConnected() error {
	if !b.connected || b.client == nil {
		return fmt.Errorf("client not connected")
	}
	return nil
}

func (b *baseClient) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected || b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.connected = false
	b.client = nil
	return err
}

func (b *baseClient) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}
	result, err := b.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return result.Tools, nil
}

func (b *baseClient) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}
	result, err := b.client.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return result.Resources, nil
}

func (b *baseClient) ListResourceTemplates(ctx context.Context) ([]mcp.ResourceTemplate, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}
	result, err := b.client.ListResourceTemplates(ctx, mcp.ListResourceTemplatesRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list resource templates: %w", err)
	}
	return result.ResourceTemplates, nil
}

func (b *baseClient) ListPrompts(ctx context.Context) ([]mcp.Prompt, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}
	result, err := b.client.ListPrompts(ctx, mcp.ListPromptsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return result.Prompts, nil
}

func initRequest() mcp.InitializeRequest {
	return mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: protocolVersion,
			ClientInfo: mcp.Implementation{
				Name:    "mcpdock",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}
}

// stdioClient spawns the server as a subprocess and speaks MCP over stdio.
type stdioClient struct {
	baseClient
	command string
	args    []string
	env     map[string]string
}

func (c *stdioClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	logging.Debug("StdioClient", "Creating stdio client for command: %s %v", c.command, c.args)

	var envStrings []string
	for k, v := range c.env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}

	mcpClient, err := client.NewStdioMCPClient(c.command, envStrings, c.args...)
	if err != nil {
		return fmt.Errorf("failed to create stdio client: %w", err)
	}

	// First runs may install dependencies before the server answers, so
	// only cap the handshake when the caller did not set a deadline.
	initCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	if _, err := mcpClient.Initialize(initCtx, initRequest()); err != nil {
		if closeErr := mcpClient.Close(); closeErr != nil {
			logging.Debug("StdioClient", "Error closing failed client for %s: %v", c.command, closeErr)
		}
		return fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}

	c.adopt(mcpClient)
	return nil
}

// sseClient connects to a remote server over Server-Sent Events.
type sseClient struct {
	baseClient
	url     string
	headers map[string]string
}

func (c *sseClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	logging.Debug("SSEClient", "Creating SSE client for URL: %s", c.url)

	var opts []transport.ClientOption
	if len(c.headers) > 0 {
		opts = append(opts, transport.WithHeaders(c.headers))
	}

	mcpClient, err := client.NewSSEMCPClient(c.url, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SSE client: %w", err)
	}

	if err := mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("failed to start SSE transport: %w", err)
	}

	if _, err := mcpClient.Initialize(ctx, initRequest()); err != nil {
		mcpClient.Close()
		return fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}

	c.adopt(mcpClient)
	return nil
}

// streamableHTTPClient connects to a remote server over streamable HTTP.
type streamableHTTPClient struct {
	baseClient
	url     string
	headers map[string]string
}

func (c *streamableHTTPClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	logging.Debug("StreamableHTTPClient", "Creating StreamableHTTP client for URL: %s", c.url)

	var opts []transport.StreamableHTTPCOption
	if len(c.headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(c.headers))
	}

	mcpClient, err := client.NewStreamableHttpClient(c.url, opts...)
	if err != nil {
		return fmt.Errorf("failed to create StreamableHTTP client: %w", err)
	}

	if _, err := mcpClient.Initialize(ctx, initRequest()); err != nil {
		mcpClient.Close()
		return fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}

	c.adopt(mcpClient)
	return nil
}
