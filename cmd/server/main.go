// ABOUTME: Main entry point for the standalone flowscope MCP server with stdio transport
// ABOUTME: Loads config and snapshot, then serves the explorer tools
package main

import (
	"context"
	"log"

	"github.com/harper/flowscope/internal/app"
	"github.com/harper/flowscope/internal/config"
	"github.com/harper/flowscope/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	a, err := app.New(context.Background(), cfg, nil)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	server := mcpserver.NewMCPServer(
		"flowscope",
		"0.1.0",
		mcpserver.WithToolCapabilities(false),
	)
	mcp.RegisterTools(server, a.Explorer)

	log.Printf("flowscope MCP server starting on stdio with %d records...", a.Catalog.Len())
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Printf("Server error: %v", err)
	}
}
