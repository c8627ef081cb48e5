// Package console prints the release progress: section banners, audit lines
// and notices. Output is styled only when the writer is a colour terminal.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Console writes human-facing progress output.
type Console struct {
	w      io.Writer
	banner lipgloss.Style
	notice lipgloss.Style
}

// New creates a Console writing to w. The colour profile is detected from w,
// so buffers and pipes receive plain text.
func New(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w: w,
		banner: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")),
		notice: r.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")),
	}
}

// Writer returns the underlying writer.
func (c *Console) Writer() io.Writer { return c.w }

// Banner announces a pipeline phase: a blank line, "=== text ===", a blank line.
func (c *Console) Banner(text string) {
	fmt.Fprintf(c.w, "\n%s\n\n", c.banner.Render("=== "+text+" ==="))
}

// Command prints an audit line for an external command: "$ line".
func (c *Console) Command(line string) {
	fmt.Fprintf(c.w, "$ %s\n", line)
}

// Notice prints a single informational line.
func (c *Console) Notice(format string, args ...any) {
	fmt.Fprintln(c.w, c.notice.Render(fmt.Sprintf(format, args...)))
}
