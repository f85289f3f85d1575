package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/aiterm/internal/config"
	"github.com/aretw0/aiterm/internal/presentation/tui"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/registry"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var commandsCmd = &cobra.Command{
	Use:   "commands [partial]",
	Short: "List catalog commands, optionally filtered by a partial name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		category, _ := cmd.Flags().GetString("category")

		var entries []domain.RegistryEntry
		switch {
		case len(args) == 1:
			entries = reg.Match(args[0])
		case category != "":
			entries = reg.ByCategory(category)
		default:
			entries = reg.All()
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching commands.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, e := range entries {
			if category != "" && e.Category != category {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Command, e.Category, e.Description)
		}
		return tw.Flush()
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <command>",
	Short: "Show usage and examples for a catalog command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, cfg, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		entry, ok := reg.Lookup(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownCommand, args[0])
		}

		doc := registry.Markdown(entry)
		if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			if rendered, err := tui.NewRenderer(cfg.Theme, 80)(doc); err == nil {
				doc = rendered
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(doc, "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
	commandsCmd.AddCommand(describeCmd)
	commandsCmd.Flags().String("category", "", "Only list commands in this category")
}

func loadRegistry(cmd *cobra.Command) (*registry.Registry, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Catalog == "" {
		return registry.Default(), cfg, nil
	}
	reg, err := registry.LoadFile(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}
