package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/docsearch/internal/search"
	"github.com/ziadkadry99/docsearch/internal/vectordb"
)

func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	resp, err := s.svc.Search(ctx, query, request.GetString("mode", "simple"))
	if err != nil {
		return toolError("search", err), nil
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRetrieveChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	results, err := s.svc.Engine().Query(ctx, query, limit)
	if errors.Is(err, vectordb.ErrEmptyStore) {
		return mcp.NewToolResultText("No documents have been indexed yet. Use ingest_document first."), nil
	}
	if err != nil {
		return toolError("retrieval", err), nil
	}

	return mcp.NewToolResultText(vectordb.FormatResults(results)), nil
}

func (s *Server) handleIngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}

	n, err := s.svc.Ingest(ctx, text, source)
	if err != nil {
		return toolError("ingestion", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Indexed %s: %d chunks.", source, n)), nil
}

func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := s.svc.Engine().Store()
	sources := store.Sources()
	if len(sources) == 0 {
		return mcp.NewToolResultText("No documents indexed."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d source(s), %d chunk(s):\n", len(sources), store.Count())
	for _, src := range sources {
		fmt.Fprintf(&sb, "- %s\n", src)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// toolError reports err to the calling agent with its kind so it can decide
// whether retrying makes sense.
func toolError(op string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s failed (%s): %v", op, search.Classify(err), err))
}
