// Package mcpserver exposes the bill catalog as read-only MCP tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"legisbase/internal/catalog"
	applog "legisbase/internal/log"
)

const serverName = "legisbase"

// Server wraps an MCP server whose tools query a catalog.Service.
type Server struct {
	mcpServer *mcp.Server
	logger    *applog.Logger
}

// New creates the MCP server and registers the bill tools.
func New(svc *catalog.Service, version string, logger *applog.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentMCP})
	}
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
		logger:    logger,
	}
	mcp.AddTool(s.mcpServer, ListBillsTool(), ListBillsHandler(svc, logger))
	mcp.AddTool(s.mcpServer, GetBillTool(), GetBillHandler(svc, logger))
	return s
}

// MCP returns the underlying server, e.g. to connect an in-memory transport.
func (s *Server) MCP() *mcp.Server {
	return s.mcpServer
}

// Run serves until the client disconnects or ctx is cancelled. A
// cancellation is a clean stop.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.InfoContext(ctx, "MCP server starting", "tools", []string{toolListBills, toolGetBill})
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	s.logger.InfoContext(ctx, "MCP server stopped")
	return nil
}
