package wizard

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown pretty-prints help text for the terminal, falling back
// to the raw string when rendering fails.
func renderMarkdown(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
