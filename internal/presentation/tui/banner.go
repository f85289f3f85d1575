package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the console banner to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Green-to-cyan, like a phosphor screen
	lines := []struct {
		text  string
		color string
	}{
		{"        _ _                      ", "#22c55e"},
		{"   __ _(_) |_ ___ _ __ _ __ ___  ", "#10b981"},
		{"  / _` | | __/ _ \\ '__| '_ ` _ \\ ", "#14b8a6"},
		{" | (_| | | ||  __/ |  | | | | | |", "#06b6d4"},
		{"  \\__,_|_|\\__\\___|_|  |_| |_| |_|", "#0ea5e9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  AI terminal console "+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
