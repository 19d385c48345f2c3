package admission

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T, root string) *Gate {
	t.Helper()
	gate, err := NewGate(root, ".leakguardignore", 1<<20, nil)
	require.NoError(t, err)
	return gate
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestAdmitPlainTextFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.go", []byte("package main\n"))

	content, skip := newTestGate(t, dir).Admit(path, "app.go")

	require.Nil(t, skip)
	assert.Equal(t, []byte("package main\n"), content)
}

func TestAdmitLargeFilePrecedesBinaryCheck(t *testing.T) {
	// A file over the size limit that also contains NUL bytes must be
	// reported as large-file: the size check short-circuits first.
	dir := t.TempDir()
	content := append(bytes.Repeat([]byte{0}, 512), bytes.Repeat([]byte("x"), 1<<20)...)
	path := writeFile(t, dir, "blob.bin", content)

	_, skip := newTestGate(t, dir).Admit(path, "blob.bin")

	require.NotNil(t, skip)
	assert.Equal(t, ReasonLargeFile, skip.Reason)
}

func TestAdmitBinaryFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "image.png", []byte{'P', 'N', 'G', 0, 1, 2})

	_, skip := newTestGate(t, dir).Admit(path, "image.png")

	require.NotNil(t, skip)
	assert.Equal(t, ReasonBinary, skip.Reason)
}

func TestAdmitMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, skip := newTestGate(t, dir).Admit(filepath.Join(dir, "gone.txt"), "gone.txt")

	require.NotNil(t, skip)
	assert.Equal(t, ReasonFileError, skip.Reason)
	assert.Error(t, skip.Err)
}

func TestAdmitIgnoredPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".leakguardignore", []byte("vendor/\n*.lock\n# comment\n\n"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0755))
	vendored := writeFile(t, filepath.Join(dir, "vendor"), "dep.go", []byte("package dep\n"))
	lock := writeFile(t, dir, "yarn.lock", []byte("lockfile\n"))

	gate := newTestGate(t, dir)

	_, skip := gate.Admit(vendored, "vendor/dep.go")
	require.NotNil(t, skip)
	assert.Equal(t, ReasonIgnored, skip.Reason)

	_, skip = gate.Admit(lock, "yarn.lock")
	require.NotNil(t, skip)
	assert.Equal(t, ReasonIgnored, skip.Reason)
}

func TestAdmitMissingIgnoreFileIgnoresNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "anything.txt", []byte("text\n"))

	_, skip := newTestGate(t, dir).Admit(path, "anything.txt")

	assert.Nil(t, skip)
}

func TestAdmitExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	goFile := writeFile(t, dir, "main.go", []byte("package main\n"))
	mdFile := writeFile(t, dir, "README.md", []byte("# readme\n"))

	gate, err := NewGate(dir, ".leakguardignore", 1<<20, []string{".go"})
	require.NoError(t, err)

	_, skip := gate.Admit(goFile, "main.go")
	assert.Nil(t, skip)

	_, skip = gate.Admit(mdFile, "README.md")
	require.NotNil(t, skip)
	assert.Equal(t, ReasonLanguageFilter, skip.Reason)
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"empty sample", nil, false},
		{"plain text", []byte("hello world\n"), false},
		{"text with tabs and CR", []byte("a\tb\r\nc"), false},
		{"nul byte anywhere", []byte("abc\x00def"), true},
		{"mostly control bytes", bytes.Repeat([]byte{0x01}, 100), true},
		{"few control bytes", append(bytes.Repeat([]byte("a"), 97), 0x01, 0x02, 0x03), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBinary(tt.content))
		})
	}
}

func TestIsBinarySamplesOnlyPrefix(t *testing.T) {
	// A NUL past the 8000-byte sample must not mark the file binary.
	content := append(bytes.Repeat([]byte("a"), 8000), 0)
	assert.False(t, IsBinary(content))
}
