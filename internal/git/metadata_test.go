package git

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectRepositoryMetadataFallsBackOutsideRepositories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "payments")
	require.NoError(t, os.MkdirAll(dir, 0755))

	md, err := CollectRepositoryMetadata(dir)

	// The fallback must arrive as usable metadata, not an error.
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "payments", md.RepoID)
	assert.Nil(t, md.BranchName)
	assert.Nil(t, md.CommitHash)
}

func TestCollectRepositoryMetadataEmptyFolder(t *testing.T) {
	_, err := CollectRepositoryMetadata("")
	assert.Error(t, err)
}

func TestCollectRepositoryMetadataReadsOriginRemote(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/acme/payments.git"},
	})
	require.NoError(t, err)

	md, err := CollectRepositoryMetadata(dir)

	require.NoError(t, err)
	assert.Equal(t, "acme/payments", md.RepoID)
}

func TestCollectRepositoryMetadataWalksUpToTheRoot(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	nested := filepath.Join(dir, "src", "internal")
	require.NoError(t, os.MkdirAll(nested, 0755))

	md, err := CollectRepositoryMetadata(nested)

	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), md.RepoRootFolder)
}
