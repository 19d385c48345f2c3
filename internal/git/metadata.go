package git

import (
	"fmt"
	"path/filepath"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
)

// RepositoryMetadata describes the repository enclosing a scan target.
type RepositoryMetadata struct {
	RepoID         string
	BranchName     *string
	CommitHash     *string
	RepoRootFolder string
}

// CollectRepositoryMetadata finds the git repository enclosing sourceFolder
// and derives the repository id from the origin remote. Targets outside any
// repository, or whose repository cannot be read, fall back to the directory
// base name as the repo id with no branch or commit.
func CollectRepositoryMetadata(sourceFolder string) (*RepositoryMetadata, error) {
	if sourceFolder == "" {
		return nil, fmt.Errorf("source folder is not set")
	}

	if absSource, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = absSource
	}

	md := &RepositoryMetadata{
		RepoRootFolder: filepath.Clean(sourceFolder),
		RepoID:         filepath.Base(sourceFolder),
	}

	repoRootFolder, err := findGitRepositoryPath(sourceFolder)
	if err != nil {
		return md, nil
	}
	md.RepoRootFolder = filepath.Clean(repoRootFolder)

	repo, err := git.PlainOpen(repoRootFolder)
	if err != nil {
		// Metadata is best effort; the base-name repo id fallback still applies.
		return md, nil
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}
		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	if remote, err := repo.Remote("origin"); err == nil {
		urls := remote.Config().URLs
		if len(urls) > 0 {
			if repoID, err := repoIDFromRemote(urls[0]); err == nil {
				md.RepoID = repoID
			}
		}
	}

	return md, nil
}

// repoIDFromRemote parses a remote URL into the "owner/name" form.
func repoIDFromRemote(remoteURL string) (string, error) {
	info, err := vcsurl.Parse(remoteURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse remote url %q: %w", remoteURL, err)
	}
	return info.FullName, nil
}

// findGitRepositoryPath walks up from sourceFolder until a git repository
// opens.
func findGitRepositoryPath(sourceFolder string) (string, error) {
	for {
		if _, err := git.PlainOpen(sourceFolder); err == nil {
			return sourceFolder, nil
		}

		parent := filepath.Dir(sourceFolder)
		if parent == sourceFolder {
			break
		}
		sourceFolder = parent
	}

	return "", fmt.Errorf("source folder is not inside a git repository")
}
