// Package ui renders Chrono's terminal output.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// Console writes styled REPL output to a single destination.
type Console struct {
	out io.Writer
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Banner prints the startup header.
func (c *Console) Banner(version string) {
	fmt.Fprintln(c.out, bannerStyle.Render(fmt.Sprintf("Chrono v%s — scheduling assistant", version)))
	fmt.Fprintln(c.out, infoStyle.Render(`Type your request, or "exit" to quit.`))
	fmt.Fprintln(c.out)
}

// Prompt returns the styled input prompt.
func (c *Console) Prompt() string {
	return promptStyle.Render("you> ")
}

// Assistant prints an assistant reply.
func (c *Console) Assistant(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	fmt.Fprintln(c.out, assistantStyle.Render("chrono> ")+text)
	fmt.Fprintln(c.out)
}

// Info prints a dim status line.
func (c *Console) Info(text string) {
	fmt.Fprintln(c.out, infoStyle.Render(text))
}

// Error prints an error line.
func (c *Console) Error(err error) {
	fmt.Fprintln(c.out, errorStyle.Render("error: ")+err.Error())
	fmt.Fprintln(c.out)
}
