// Package console implements the line-based terminal boundary: one line of
// user text in per turn, rendered assistant text or diagnostics out.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// Console reads user lines and writes rendered output. It is a thin blocking
// wrapper; all turn sequencing lives in the agent loop.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	renderer *glamour.TermRenderer
}

// New creates a Console over the given streams. Markdown rendering degrades
// to plain text if the renderer cannot be constructed (e.g. no TTY).
func New(in io.Reader, out, errOut io.Writer) *Console {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		renderer = nil
	}
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		errOut:   errOut,
		renderer: renderer,
	}
}

// ReadLine prints the prompt and blocks for one line of user text.
// Returns io.EOF when the input stream is closed.
func (c *Console) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.out, promptStyle.Render(prompt))

	line, err := c.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// WriteMessage renders assistant text as markdown and writes it.
func (c *Console) WriteMessage(text string) {
	if c.renderer != nil {
		if rendered, err := c.renderer.Render(text); err == nil {
			fmt.Fprint(c.out, rendered)
			return
		}
	}
	fmt.Fprintln(c.out, text)
}

// WriteStatus writes a dim status line.
func (c *Console) WriteStatus(text string) {
	fmt.Fprintln(c.out, statusStyle.Render(text))
}

// WriteError writes an error diagnostic to the error stream.
func (c *Console) WriteError(text string) {
	fmt.Fprintln(c.errOut, errorStyle.Render("Error: ")+text)
}
