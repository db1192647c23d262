package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the fasim ASCII art banner.
func PrintBanner(w io.Writer, profile termenv.Profile) {
	// Teal to indigo gradient
	lines := []struct{ text, color string }{
		{"   __                _           ", "#2dd4bf"},
		{"  / _| __ _ ___ (_)_ __ ___      ", "#22d3ee"},
		{" | |_ / _` / __|| | '_ ` _ \\     ", "#38bdf8"},
		{" |  _| (_| \\__ \\| | | | | | |    ", "#60a5fa"},
		{" |_|  \\__,_|___/|_|_| |_| |_|    ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, profile.String(l.text).Foreground(profile.Color(l.color)))
	}
	fmt.Fprintln(w)
}
