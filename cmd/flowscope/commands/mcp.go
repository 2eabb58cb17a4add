// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes the explorer tools to LLM agents via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/flowscope/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs flowscope as an MCP (Model Context Protocol) server over stdio so
LLM agents can filter cases, run projections, read and write frame
descriptions, and ask the vision model for new ones.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  flowscope mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "flowscope": {
  #       "command": "flowscope",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer(
		"flowscope",
		versionInfo.Version,
		mcpserver.WithToolCapabilities(false),
	)
	mcp.RegisterTools(server, a.Explorer)

	if !quiet {
		log.Printf("flowscope MCP server starting on stdio with %d records...", a.Catalog.Len())
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
	case err := <-serverErr:
		if err != nil {
			_ = a.Close()
			return fmt.Errorf("server error: %w", err)
		}
	}

	if err := a.Close(); err != nil {
		log.Printf("Warning: Error closing annotation store: %v", err)
	}
	if !quiet {
		log.Println("Shutdown complete")
	}
	return nil
}
