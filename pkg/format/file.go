package format

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/fasim/pkg/domain"
)

// Extension is the conventional file extension of saved automata.
const Extension = ".txt"

// LoadFile reads an automaton from path.
func LoadFile(path string) (*domain.Automaton, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open automaton file: %w", err)
	}
	defer f.Close()

	a, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// SaveFile writes an automaton to path and returns the path actually written.
// Extension is appended when path has none.
func SaveFile(path string, a *domain.Automaton) (string, error) {
	if filepath.Ext(path) == "" {
		path += Extension
	}

	data, err := Marshal(a)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write automaton file: %w", err)
	}
	return path, nil
}
