package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tilde prefix", "~/reports/findings.json", filepath.Join(home, "reports", "findings.json")},
		{"absolute path unchanged", "/var/lib/leakguard", "/var/lib/leakguard"},
		{"relative path unchanged", "reports/findings.json", "reports/findings.json"},
		{"bare tilde directory unchanged", "~tilde/file", "~tilde/file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureWithinRoot(t *testing.T) {
	root := t.TempDir()

	inside, err := EnsureWithinRoot(root, filepath.Join(root, "src", "main.go"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "main.go"), inside)

	_, err = EnsureWithinRoot(root, filepath.Join(root, "..", "escape.go"))
	assert.ErrorContains(t, err, "escapes root")

	// An empty root disables confinement.
	cleaned, err := EnsureWithinRoot("", "a/../b.go")
	require.NoError(t, err)
	assert.Equal(t, "b.go", cleaned)
}

func TestWriteFileAtomicReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`{"v":1}`)))
	require.NoError(t, WriteFileAtomic(path, []byte(`{"v":2}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))

	// No temp files may survive a successful write.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}
