package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/polydb-cli/internal/adapters/driving/mcp"
	"github.com/custodia-labs/polydb-cli/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can browse
polyDB collections, query documents and convert typed properties.

By default, the server communicates over stdio using JSON-RPC.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default)
  polydb mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  polydb mcp serve --port 8080

  # Serve the local mirror
  polydb --offline mcp serve`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	s, err := load(cmd)
	if err != nil {
		return err
	}
	ports := &mcp.Ports{
		Catalog:    s.Catalog,
		Collection: s.Collection,
		Conversion: s.Conversion,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	go watchSettings(ctx, s)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// watchSettings applies configuration changes to the running server until
// ctx is done.
func watchSettings(ctx context.Context, s *Services) {
	if s.Settings == nil || s.ApplySettings == nil {
		return
	}
	err := s.Settings.Watch(ctx, s.ApplySettings)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("Watching settings: %v", err)
	}
}
