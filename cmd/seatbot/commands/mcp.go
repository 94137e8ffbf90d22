// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes the seatbot tables to LLM agents via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/seatbot/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs seatbot as an MCP (Model Context Protocol) server over stdio,
letting LLM agents list, read, upsert and remove table rows.

Logs go to stderr so they never mix with protocol traffic.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by the agent host)
  seatbot mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "seatbot": {
  #       "command": "seatbot",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	s, logger, err := openStoreWithLogger(cmd)
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer("seatbot", versionInfo.Version)
	mcp.RegisterTools(server, s, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server starting on stdio", "db", s.Path())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-serverErr:
		if err != nil {
			err = fmt.Errorf("server error: %w", err)
		}
	}

	if cerr := s.Close(); cerr != nil {
		logger.Warn("error closing storage", "err", cerr)
	}
	return err
}
