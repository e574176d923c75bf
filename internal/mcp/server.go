// Package mcp exposes the guide to AI agents as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/evolution"
	"github.com/digiguide/digiguide/internal/search"
	"github.com/digiguide/digiguide/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps are the components the tools read from. Related may be nil, which
// leaves out the related_digimon tool.
type Deps struct {
	Source  *data.Source
	Search  *search.Holder
	Graphs  *evolution.Cache
	Related *vectordb.Index
	Team    config.TeamConfig
}

// Server wraps an MCP server that exposes guide lookup tools.
type Server struct {
	deps Deps
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(deps Deps) *Server {
	if deps.Graphs == nil {
		deps.Graphs = &evolution.Cache{}
	}
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"digiguide",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchGuideTool, s.handleSearchGuide)
	s.mcp.AddTool(getDigimonTool, s.handleGetDigimon)
	s.mcp.AddTool(evolutionPathTool, s.handleEvolutionPath)
	s.mcp.AddTool(analyzeTeamTool, s.handleAnalyzeTeam)
	if s.deps.Related != nil {
		s.mcp.AddTool(relatedDigimonTool, s.handleRelatedDigimon)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
