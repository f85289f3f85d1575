package main

import (
	"os"

	"github.com/aretw0/aiterm/internal/cli"
	"github.com/aretw0/aiterm/pkg/runner"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the command catalog and the suggestion service as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs must stay off stdout, which carries JSON-RPC in stdio mode.
		stack, err := newStack(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer stack.Close()

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		return cli.RunMCP(signals.Context(), stack, transport, port)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
