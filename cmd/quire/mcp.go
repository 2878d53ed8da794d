package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the library to AI agents as MCP tools and resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, _ := cmd.Flags().GetString("transport")
			addr, _ := cmd.Flags().GetString("addr")

			// Logs go to stderr, so they never corrupt JSON-RPC on stdout.
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			srv := mcp.NewServer(app.Library, quire.Version, app.Logger)

			switch transport {
			case "stdio":
				app.Logger.Info("Starting Quire MCP Server (Stdio)...")
				return srv.ServeStdio()
			case "sse":
				baseURL, _ := cmd.Flags().GetString("base-url")
				if baseURL == "" {
					baseURL = "http://localhost" + addr
				}
				if err := srv.ServeSSE(cmd.Context(), addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				app.Logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}
	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	cmd.Flags().String("base-url", "", "Public base URL advertised to SSE clients")
	return cmd
}
