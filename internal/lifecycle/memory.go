package lifecycle

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is the reference Store implementation: a mutex-serialized
// in-memory map keyed by (projectID, fingerprint). It backs tests and the
// file-snapshot store.
type MemoryStore struct {
	mu sync.Mutex

	findings    map[string]StoredFinding // by finding id
	byKey       map[findingKey]string    // (projectID, fingerprint) -> finding id
	projects    map[string]Project       // by project id
	byRepoID    map[string]string        // repoID -> project id
	byTokenHash map[string]string        // token hash -> project id
	afterMutate func() error             // optional persistence hook, called under mu
}

type findingKey struct {
	projectID   string
	fingerprint string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		findings:    make(map[string]StoredFinding),
		byKey:       make(map[findingKey]string),
		projects:    make(map[string]Project),
		byRepoID:    make(map[string]string),
		byTokenHash: make(map[string]string),
	}
}

// UpsertFinding implements the read-then-conditionally-write contract under a
// single lock, so concurrent batches can never create two rows for the same
// (projectID, fingerprint) pair.
func (s *MemoryStore) UpsertFinding(_ context.Context, projectID string, patch FindingPatch) (StoredFinding, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := findingKey{projectID: projectID, fingerprint: patch.Fingerprint}
	if id, ok := s.byKey[key]; ok {
		existing := s.findings[id]
		existing.File = patch.File
		existing.Line = patch.Line
		existing.PreviewMasked = patch.PreviewMasked
		existing.LastSeenAt = patch.SeenAt
		s.findings[id] = existing
		if err := s.persist(); err != nil {
			return StoredFinding{}, false, err
		}
		return existing, false, nil
	}

	created := StoredFinding{
		ID:            uuid.NewString(),
		ProjectID:     projectID,
		UserID:        patch.UserID,
		Type:          patch.Type,
		File:          patch.File,
		Line:          patch.Line,
		PreviewMasked: patch.PreviewMasked,
		Fingerprint:   patch.Fingerprint,
		Status:        StatusOpen,
		FirstSeenAt:   patch.SeenAt,
		LastSeenAt:    patch.SeenAt,
	}
	s.findings[created.ID] = created
	s.byKey[key] = created.ID
	if err := s.persist(); err != nil {
		return StoredFinding{}, false, err
	}
	return created, true, nil
}

func (s *MemoryStore) GetFinding(_ context.Context, id string) (StoredFinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	finding, ok := s.findings[id]
	if !ok {
		return StoredFinding{}, ErrNotFound
	}
	return finding, nil
}

func (s *MemoryStore) SetFindingStatus(_ context.Context, id string, status Status) (StoredFinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	finding, ok := s.findings[id]
	if !ok {
		return StoredFinding{}, ErrNotFound
	}
	finding.Status = status
	s.findings[id] = finding
	if err := s.persist(); err != nil {
		return StoredFinding{}, err
	}
	return finding, nil
}

func (s *MemoryStore) ListFindings(_ context.Context, filter Filter) ([]StoredFinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []StoredFinding
	for _, finding := range s.findings {
		if filter.ProjectID != "" && finding.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Type != "" && finding.Type != filter.Type {
			continue
		}
		if filter.Status != "" && finding.Status != filter.Status {
			continue
		}
		if filter.Since != nil && finding.FirstSeenAt.Before(*filter.Since) {
			continue
		}
		out = append(out, finding)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeenAt.Equal(out[j].LastSeenAt) {
			return out[i].LastSeenAt.After(out[j].LastSeenAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (s *MemoryStore) CreateProject(_ context.Context, project Project) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byRepoID[project.RepoID]; ok {
		return Project{}, ErrProjectExists
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	s.projects[project.ID] = project
	s.byRepoID[project.RepoID] = project.ID
	s.byTokenHash[project.TokenHash] = project.ID
	if err := s.persist(); err != nil {
		return Project{}, err
	}
	return project, nil
}

func (s *MemoryStore) ProjectByTokenHash(_ context.Context, tokenHash string) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byTokenHash[tokenHash]
	if !ok {
		return Project{}, ErrNotFound
	}
	return s.projects[id], nil
}

func (s *MemoryStore) ProjectByID(_ context.Context, id string) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return project, nil
}

func (s *MemoryStore) ListProjects(_ context.Context) ([]Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Project, 0, len(s.projects))
	for _, project := range s.projects {
		out = append(out, project)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RepoID < out[j].RepoID })
	return out, nil
}

func (s *MemoryStore) persist() error {
	if s.afterMutate == nil {
		return nil
	}
	return s.afterMutate()
}

// snapshot returns a copy of all state for persistence. Caller must hold mu.
func (s *MemoryStore) snapshot() ([]Project, []StoredFinding) {
	projects := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })

	stored := make([]StoredFinding, 0, len(s.findings))
	for _, f := range s.findings {
		stored = append(stored, f)
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].ID < stored[j].ID })

	return projects, stored
}

// restore replaces all state from a persisted snapshot. Caller must hold mu
// or guarantee exclusive access.
func (s *MemoryStore) restore(projects []Project, stored []StoredFinding) {
	for _, p := range projects {
		s.projects[p.ID] = p
		s.byRepoID[p.RepoID] = p.ID
		s.byTokenHash[p.TokenHash] = p.ID
	}
	for _, f := range stored {
		s.findings[f.ID] = f
		s.byKey[findingKey{projectID: f.ProjectID, fingerprint: f.Fingerprint}] = f.ID
	}
}
