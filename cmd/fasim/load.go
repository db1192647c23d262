package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/fasim"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/format"
)

// loadPath reads an automaton file. .yaml and .yml files use the YAML import,
// everything else the text format.
func loadPath(path string) (*domain.Automaton, error) {
	if isYAMLPath(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open automaton file: %w", err)
		}
		defer f.Close()

		a, err := format.ImportYAML(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return a, nil
	}
	return format.LoadFile(path)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// resolve treats ref as a file path when one exists, and as a store name otherwise.
// It returns the automaton and the name to display.
func resolve(ctx context.Context, eng *fasim.Engine, ref string) (*domain.Automaton, string, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		a, err := loadPath(ref)
		if err != nil {
			return nil, "", err
		}
		return a, strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref)), nil
	}

	a, err := eng.Automaton(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	return a, ref, nil
}
