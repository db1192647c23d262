package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/format"
	"github.com/stretchr/testify/require"
)

// PairText is the two-state automaton accepting exactly "a".
const PairText = `#states
q0
q1
#initial
q0
#accepting
q1
#alphabet
a
#transitions
q0:a>q1
`

// MustParse loads an automaton from its text form.
// It fails the test immediately on error.
func MustParse(t *testing.T, text string) *domain.Automaton {
	t.Helper()
	a, err := format.Unmarshal([]byte(text))
	require.NoError(t, err, "Failed to parse automaton")
	return a
}

// WriteFile writes content to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "Failed to write %s", name)
	return path
}
