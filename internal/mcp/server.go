// Package mcp exposes ingestion and search as Model Context Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/docsearch/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server over one search.Service.
type Server struct {
	svc *search.Service
	mcp *server.MCPServer
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc *search.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"docsearch",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(retrieveChunksTool, s.handleRetrieveChunks)
	s.mcp.AddTool(ingestDocumentTool, s.handleIngestDocument)
	s.mcp.AddTool(listSourcesTool, s.handleListSources)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
