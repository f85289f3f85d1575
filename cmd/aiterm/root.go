package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/aiterm/internal/cli"
	"github.com/aretw0/aiterm/internal/config"
	"github.com/aretw0/aiterm/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aiterm",
	Short: "aiterm is a terminal console backed by a remote command executor",
	Long: `aiterm runs shell commands and natural-language "ai" prompts through a
remote execution API, with command completion from a local catalog and the
remote suggestion service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to a YAML configuration file")
	flags.String("api", "", "Base URL of the execution API")
	flags.String("catalog", "", "Command catalog file (YAML or JSON) replacing the built-in one")
	flags.String("redis", "", "Redis URL for shared session storage")
	flags.String("session-dir", "", "Directory for session files when Redis is not used")
	flags.Duration("debounce", 0, "Delay before requesting suggestions")
	flags.Duration("timeout", 0, "Execution request timeout")
	flags.String("theme", "", "Colour theme: auto, dark or light")
	flags.Bool("timestamps", false, "Show entry timestamps")
	flags.Bool("no-autocomplete", false, "Disable suggestions")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.Bool("debug", false, "Shorthand for --log-level=debug")
}

// loadConfig layers the command-line flags over the file and environment configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api") {
		cfg.APIURL, _ = flags.GetString("api")
	}
	if flags.Changed("catalog") {
		cfg.Catalog, _ = flags.GetString("catalog")
	}
	if flags.Changed("redis") {
		cfg.RedisURL, _ = flags.GetString("redis")
	}
	if flags.Changed("session-dir") {
		cfg.SessionDir, _ = flags.GetString("session-dir")
	}
	if flags.Changed("debounce") {
		cfg.Debounce, _ = flags.GetDuration("debounce")
	}
	if flags.Changed("timeout") {
		cfg.ExecuteTimeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("theme") {
		cfg.Theme, _ = flags.GetString("theme")
	}
	if flags.Changed("timestamps") {
		cfg.ShowTimestamps, _ = flags.GetBool("timestamps")
	}
	if off, _ := flags.GetBool("no-autocomplete"); off {
		cfg.Autocomplete = false
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to w at the configured level. A nil w discards everything.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		return logging.NewNop()
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.NewWithWriter(w, level)
}

// newStack loads the configuration and builds the shared collaborators, logging to w.
func newStack(cmd *cobra.Command, w io.Writer) (*cli.Stack, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewStack(cfg, newLogger(cfg, w))
}
