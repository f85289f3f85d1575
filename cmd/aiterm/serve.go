package main

import (
	"fmt"
	"os"

	"github.com/aretw0/aiterm/internal/cli"
	"github.com/aretw0/aiterm/pkg/runner"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session HTTP server",
	Long: `Serves console sessions over HTTP: REST events, SSE state streams,
the command catalog, Prometheus metrics and the OpenAPI document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := newStack(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer stack.Close()

		port := stack.Config.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		return cli.RunServer(signals.Context(), stack, fmt.Sprintf(":%d", port))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
