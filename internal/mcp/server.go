// Package mcp exposes changelog generation as an MCP tool over streamable
// HTTP, so agent clients can request changelogs for a repository ref range.
package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		"changelog-agent",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	toolDefinitions := map[string]mcp.Tool{
		"generate_changelog": mcp.NewTool("generate_changelog",
			mcp.WithDescription("Generate a changelog from the commits in a git ref range. Enriches each commit with a category and description, then synthesizes a title/description/summary document."),
			mcp.WithString("repo_path",
				mcp.Description("Path to the local git repository (default: configured repo path)"),
			),
			mcp.WithString("from_ref",
				mcp.Description("Starting reference (tag, branch, or SHA); required unless auto is true"),
			),
			mcp.WithString("to_ref",
				mcp.Description("Ending reference (default: HEAD)"),
			),
			mcp.WithBoolean("auto",
				mcp.Description("Start from the latest version tag instead of from_ref (default: false)"),
			),
			mcp.WithString("template",
				mcp.Description("Optional formatting guidance for the generated changelog"),
			),
		),
	}

	for name, adapter := range cfg.ToolAdapters {
		tool := toolDefinitions[name]
		mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return adapter.ToolAdapter(ctx, req)
		})
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)

	return &Server{
		MCP:     mcpServer,
		HTTP:    httpServer,
		Handler: httpServer,
	}
}
