package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the quire ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []termenv.Style{
		termenv.String("   __ _ _   _ _ _ __ ___ ").Foreground(p.Color("#818cf8")),
		termenv.String("  / _` | | | | | '__/ _ \\").Foreground(p.Color("#a78bfa")),
		termenv.String(" | (_| | |_| | | | |  __/").Foreground(p.Color("#e879f9")),
		termenv.String("  \\__, |\\__,_|_|_|  \\___|").Foreground(p.Color("#f472b6")),
		termenv.String("     |_|").Foreground(p.Color("#fb7185")),
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w)
}

// Faint renders secondary text dimmed when the terminal supports it.
func Faint(s string) string {
	return termenv.String(s).Faint().String()
}

// Warn renders text in the warning color.
func Warn(s string) string {
	return termenv.String(s).Foreground(termenv.ColorProfile().Color("#fb7185")).String()
}
