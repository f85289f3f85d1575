package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/aiterm/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive console session",
	Long: `Starts the console. On a terminal it opens the full-screen UI; otherwise
(or with --plain) it reads one command per line from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")
		jsonMode, _ := cmd.Flags().GetBool("json")
		logFile, _ := cmd.Flags().GetString("log-file")

		opts := cli.ConsoleOptions{
			SessionID: sessionID,
			Plain:     plain,
			JSON:      jsonMode,
			Stdin:     cmd.InOrStdin(),
			Stdout:    cmd.OutOrStdout(),
		}

		// The full-screen UI owns the terminal, so logs go to a file or nowhere.
		var logOut io.Writer = os.Stderr
		if cli.Interactive(opts) {
			logOut = nil
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
		}

		stack, err := newStack(cmd, logOut)
		if err != nil {
			return err
		}
		defer stack.Close()

		return cli.RunConsole(cmd.Context(), stack, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Resume or create a named session")
	runCmd.Flags().Bool("plain", false, "Use the line-oriented console even on a terminal")
	runCmd.Flags().Bool("json", false, "Read and write JSON lines")
	runCmd.Flags().String("log-file", "", "Write logs to this file while the full-screen UI runs")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
