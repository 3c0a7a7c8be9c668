// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oasbind parameter resolution as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasbind"
	"github.com/erraggy/oasbind/parser"
)

const serverInstructions = `oasbind MCP server: lists the parameters an OpenAPI operation declares and resolves raw request values against them (defaults, type coercion, constraint validation), reporting the exact error a server would return.

Configuration: All defaults are configurable via OASBIND_* environment variables set in your MCP client config.

Key settings:
- OASBIND_MCP_CACHE_ENABLED (default: true) - disable document caching entirely
- OASBIND_MCP_CACHE_FILE_TTL (default: 15m) - cache TTL for local file documents
- OASBIND_MCP_CACHE_CONTENT_TTL (default: 15m) - cache TTL for inline documents
- OASBIND_MCP_LIST_LIMIT (default: 100) - default result limit for list_parameters
- OASBIND_MAX_BODY_SIZE (default: 10485760) - largest body resolve_parameter accepts

Caching: Compiled documents are cached per session. File entries use path+mtime as key (auto-invalidated on change).`

// toolServer carries what the tool handlers share.
type toolServer struct {
	logger parser.Logger
}

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled. A nil logger discards log output.
func Run(ctx context.Context, logger parser.Logger) error {
	if logger == nil {
		logger = parser.NopLogger{}
	}
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasbind", Version: oasbind.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server, &toolServer{logger: logger})
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server, ts *toolServer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_parameters",
		Description: "List the compiled parameters of the operations in an OpenAPI document: name, location (path, query, header, cookie, formData, body), type, whether it is required, its default and array serialization. Filter by operation (operationId), method, path template, or in. Use offset/limit to paginate through operations.",
	}, ts.handleListParameters)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_parameter",
		Description: "Resolve raw request values against an operation's parameters the way a server would: missing values take their schema default, text is coerced to the declared type, and the result is checked against the schema constraints. Identify the operation by operationId, or by method plus a concrete request path (path parameters are taken from it). Set name and in to resolve one parameter only. A failed resolution is not a tool error: the result carries the 400/413/500 problem details a client would receive.",
	}, ts.handleResolveParameter)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ListLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ListLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
