package registry

import (
	"fmt"
	"strings"

	"github.com/aretw0/aiterm/pkg/domain"
)

// Markdown renders an entry as a short help page.
func Markdown(e domain.RegistryEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", e.Command, e.Description)
	fmt.Fprintf(&b, "**Usage:** `%s`\n\n", e.Usage)
	if len(e.Examples) > 0 {
		b.WriteString("**Examples:**\n\n")
		for _, ex := range e.Examples {
			fmt.Fprintf(&b, "- `%s`\n", ex)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "_%s / %s_\n", e.Group, e.Category)
	return b.String()
}
