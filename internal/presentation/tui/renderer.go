package tui

import (
	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a Renderer backed by glamour.
// It detects a light or dark background automatically.
func NewRenderer() (Renderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// PlainRenderer returns the markdown untouched, for pipes and files.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}
