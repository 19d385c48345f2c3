package lifecycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leakguard-io/leakguard/pkg/shared/files"
)

const snapshotVersion = 1

// fileSnapshot is the on-disk envelope with an explicit version field so the
// format can evolve without guessing.
type fileSnapshot struct {
	Version  int             `json:"version"`
	Projects []projectRecord `json:"projects"`
	Findings []StoredFinding `json:"findings"`
}

// projectRecord carries the token hash, which the API-facing Project struct
// deliberately never serializes.
type projectRecord struct {
	ID        string    `json:"id"`
	RepoID    string    `json:"repoId"`
	Name      string    `json:"name"`
	TokenHash string    `json:"tokenHash"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenFileStore returns a Store persisted as a JSON snapshot at path. State
// is loaded once at open; every mutation atomically replaces the snapshot
// before the mutating call returns, so a crash never loses an acknowledged
// write or leaves a half-written file behind.
func OpenFileStore(path string) (*MemoryStore, error) {
	store := NewMemoryStore()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: nothing to restore.
	case err != nil:
		return nil, fmt.Errorf("failed to read store snapshot %q: %w", path, err)
	default:
		var snap fileSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("failed to decode store snapshot %q: %w", path, err)
		}
		projects := make([]Project, 0, len(snap.Projects))
		for _, record := range snap.Projects {
			projects = append(projects, Project{
				ID:        record.ID,
				RepoID:    record.RepoID,
				Name:      record.Name,
				TokenHash: record.TokenHash,
				CreatedAt: record.CreatedAt,
			})
		}
		store.restore(projects, snap.Findings)
	}

	if err := files.CreateFolderIfNotExists(filepath.Dir(path)); err != nil {
		return nil, err
	}

	store.afterMutate = func() error {
		return writeSnapshot(path, store)
	}
	return store, nil
}

// writeSnapshot is called under the store mutex, so it sees a consistent view.
func writeSnapshot(path string, store *MemoryStore) error {
	projects, stored := store.snapshot()

	records := make([]projectRecord, 0, len(projects))
	for _, project := range projects {
		records = append(records, projectRecord{
			ID:        project.ID,
			RepoID:    project.RepoID,
			Name:      project.Name,
			TokenHash: project.TokenHash,
			CreatedAt: project.CreatedAt,
		})
	}

	data, err := json.MarshalIndent(fileSnapshot{
		Version:  snapshotVersion,
		Projects: records,
		Findings: stored,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store snapshot: %w", err)
	}

	return files.WriteFileAtomic(path, data)
}
