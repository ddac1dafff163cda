// Provides terminal styles for the console.

package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")
)

// styles renders for one output. Color is dropped when the output is not a
// terminal.
type styles struct {
	success lipgloss.Style
	err     lipgloss.Style
	info    lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		err:     r.NewStyle().Foreground(colorError).Bold(true),
		info:    r.NewStyle().Foreground(colorInfo),
		muted:   r.NewStyle().Foreground(colorMuted),
		title:   r.NewStyle().Foreground(colorPrimary).Bold(true),
	}
}
