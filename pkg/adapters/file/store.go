package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/format"
)

const sessionExt = ".json"

// Store implements ports.AutomatonStore and ports.SessionStore using the local filesystem.
// Automata are stored as <dir>/<name>.txt in the text format, sessions as JSON files
// under <dir>/sessions.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".fasim".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = ".fasim"
	}
	return &Store{BasePath: basePath}
}

func (s *Store) automatonPath(name string) string {
	return filepath.Join(s.BasePath, name+format.Extension)
}

func (s *Store) sessionDir() string {
	return filepath.Join(s.BasePath, "sessions")
}

// SaveAutomaton writes the automaton in canonical text form.
func (s *Store) SaveAutomaton(ctx context.Context, name string, a *domain.Automaton) error {
	if err := domain.ValidateKey(name); err != nil {
		return err
	}
	data, err := format.Marshal(a)
	if err != nil {
		return err
	}
	return writeAtomic(s.BasePath, name+format.Extension, data)
}

// LoadAutomaton reads <dir>/<name>.txt.
func (s *Store) LoadAutomaton(ctx context.Context, name string) (*domain.Automaton, error) {
	if err := domain.ValidateKey(name); err != nil {
		return nil, err
	}
	a, err := format.LoadFile(s.automatonPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrAutomatonNotFound
	}
	return a, err
}

// DeleteAutomaton removes the automaton file.
func (s *Store) DeleteAutomaton(ctx context.Context, name string) error {
	if err := domain.ValidateKey(name); err != nil {
		return err
	}
	err := os.Remove(s.automatonPath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete automaton file: %w", err)
	}
	return nil
}

// ListAutomata returns the names of the .txt files in the base directory that
// LoadAutomaton accepts. Other text files sharing the directory are skipped.
func (s *Store) ListAutomata(ctx context.Context) ([]string, error) {
	candidates, err := listWithExt(s.BasePath, format.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to list automata: %w", err)
	}

	names := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := s.LoadAutomaton(ctx, name); err != nil {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Save persists the session as a JSON file atomically.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	if err := domain.ValidateKey(session.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return writeAtomic(s.sessionDir(), session.ID+sessionExt, data)
}

// Load retrieves the session from its JSON file.
func (s *Store) Load(ctx context.Context, id string) (*domain.Session, error) {
	if err := domain.ValidateKey(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.sessionDir(), id+sessionExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateKey(id); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.sessionDir(), id+sessionExt))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := listWithExt(s.sessionDir(), sessionExt)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

func listWithExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
			names = append(names, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	return names, nil
}

// writeAtomic writes to a temporary file in dir, fsyncs it and renames it over name.
func writeAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
