// Package server exposes outline lookups as MCP tools.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultFindLimit = 20

// New creates the MCP server and registers the outline tools on it.
func New(h *Handler, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"jsoutline",
		version,
		server.WithToolCapabilities(false),
	)
	s.AddTools(Tools(h)...)
	return s
}

// Tools returns the tool definitions served for h.
func Tools(h *Handler) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("outline",
				mcp.WithDescription("List the functions, objects and assignments of a JavaScript file with their signatures and selection ranges."),
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("File path, absolute or relative to the project root"),
				),
			),
			Handler: h.handleOutline,
		},
		{
			Tool: mcp.NewTool("signature_at",
				mcp.WithDescription("Return the innermost outline entry enclosing a character offset of a JavaScript file."),
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("File path, absolute or relative to the project root"),
				),
				mcp.WithNumber("offset",
					mcp.Required(),
					mcp.Description("Zero-based character offset into the file"),
				),
			),
			Handler: h.handleSignatureAt,
		},
		{
			Tool: mcp.NewTool("find_symbol",
				mcp.WithDescription("Search the project index for outline entries whose label contains the query, ignoring case."),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("Text to look for in signatures, e.g. a function name"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Maximum number of results. Default: 20"),
				),
			),
			Handler: h.handleFindSymbol,
		},
	}
}

func (h *Handler) handleOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	units, err := h.Outline(ctx, path)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to outline "+path, err), nil
	}
	return jsonResult(units)
}

func (h *Handler) handleSignatureAt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}
	offset, err := req.RequireInt("offset")
	if err != nil {
		return mcp.NewToolResultError("offset is required"), nil
	}
	if offset < 0 {
		return mcp.NewToolResultError("offset must not be negative"), nil
	}
	unit, err := h.SignatureAt(ctx, path, offset)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to outline "+path, err), nil
	}
	if unit == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no outline entry at offset %d", offset)), nil
	}
	return jsonResult(unit)
}

func (h *Handler) handleFindSymbol(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}
	limit := req.GetInt("limit", defaultFindLimit)
	units, err := h.FindSymbol(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("search failed", err), nil
	}
	return jsonResult(units)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to encode result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
