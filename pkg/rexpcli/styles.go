package rexpcli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rexplorer/rexp/pkg/theme"
)

// styles renders CLI output in the active theme. Colors are dropped when out
// is not a terminal.
type styles struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	File      lipgloss.Style
	Dir       lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	renderer  *lipgloss.Renderer
}

func newStyles(out io.Writer, th theme.Theme) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		Title:     r.NewStyle().Bold(true).Foreground(th.Highlight.Lipgloss()),
		Muted:     r.NewStyle().Faint(true),
		File:      r.NewStyle().Foreground(th.FG.Lipgloss()),
		Dir:       r.NewStyle().Bold(true).Foreground(th.Highlight.Lipgloss()),
		Highlight: r.NewStyle().Foreground(th.Highlight.Lipgloss()),
		Error:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		renderer:  r,
	}
}

// swatch is a two-cell block painted in c.
func (s styles) swatch(c theme.RGB) string {
	return s.renderer.NewStyle().Background(c.Lipgloss()).Render("  ")
}
