package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns passage text into terminal output.
type Renderer func(string) (string, error)

// NewRenderer returns a glamour markdown renderer when stdout is a terminal and a
// pass-through renderer otherwise, so piped output stays plain.
func NewRenderer() Renderer {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return Plain
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return Plain
	}
	return r.Render
}

// Plain returns text unchanged.
func Plain(text string) (string, error) {
	return text, nil
}
