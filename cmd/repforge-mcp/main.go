package main

import (
	"flag"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/repforge/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// repforge-mcp runs a stdio MCP server backed by a remote RepForge
// instance. The binary runs next to the MCP client; data and the
// generation pipeline live on the server, reached over Tailscale.
func main() {
	serverURL := flag.String("server", "http://repforge:80", "RepForge server base URL")
	apiKey := flag.String("api-key", "", "API key, if the server requires one")
	flag.Parse()

	// Log to stderr: stdout belongs to the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	client := mcp.NewHTTPClient(*serverURL, *apiKey)
	s := mcp.New(client, client, Version, log)

	log.Info("repforge-mcp starting", "server", *serverURL, "version", Version)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
