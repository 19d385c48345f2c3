package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/leakguard-io/leakguard/internal/findings"
	"github.com/leakguard-io/leakguard/internal/masking"
)

// TypeCount is one entry of the per-type frequency summary.
type TypeCount struct {
	Type  string
	Count int
}

// Event describes a batch ingest that discovered at least one new finding.
// Every field is already masked; an Event is safe to hand to any transport.
type Event struct {
	RepoID     string
	NewCount   int
	TopTypes   []TypeCount
	SampleFile string
	SampleLine int
}

// Notifier receives post-commit events. Implementations must tolerate being
// called after the ingest has already been acknowledged; their failure never
// rolls anything back.
type Notifier interface {
	NotifyNewFindings(ctx context.Context, event Event) error
}

// IngestResult reports the outcome of one batch.
type IngestResult struct {
	Total int
	New   int
}

// Service implements the finding lifecycle on top of a Store: dedup-on-ingest,
// the status state machine, and the post-commit notification hook.
type Service struct {
	store    Store
	notifier Notifier
	logger   hclog.Logger
	maxBatch int
	now      func() time.Time
}

// NewService wires a lifecycle service. notifier may be nil. maxBatch <= 0
// falls back to the wire-schema ceiling.
func NewService(store Store, notifier Notifier, logger hclog.Logger, maxBatch int) *Service {
	if maxBatch <= 0 {
		maxBatch = findings.MaxBatchFindings
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		maxBatch: maxBatch,
		now:      time.Now,
	}
}

// Ingest merges a validated batch of findings into the store. Per-fingerprint
// updates commit individually; a failed batch may have partially applied, and
// callers retry the whole batch safely because upserts are idempotent by
// fingerprint. The notifier fires only after all upserts committed.
func (s *Service) Ingest(ctx context.Context, project Project, payload findings.Payload) (IngestResult, error) {
	if len(payload.Findings) > s.maxBatch {
		return IngestResult{}, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(payload.Findings), s.maxBatch)
	}
	if err := payload.Validate(); err != nil {
		return IngestResult{}, err
	}
	if payload.RepoID != project.RepoID {
		return IngestResult{}, fmt.Errorf("payload repoId %q does not match project repo %q", payload.RepoID, project.RepoID)
	}

	now := s.now()
	var newOnes []StoredFinding

	for _, finding := range payload.Findings {
		// Re-sanitize server-side: the boundary never trusts the caller to
		// have masked correctly.
		preview := masking.SanitizePreview(finding.PreviewMasked)

		stored, created, err := s.store.UpsertFinding(ctx, project.ID, FindingPatch{
			UserID:        payload.UserID,
			Type:          finding.Type,
			File:          finding.File,
			Line:          finding.Line,
			PreviewMasked: preview,
			Fingerprint:   finding.Fingerprint,
			SeenAt:        now,
		})
		if err != nil {
			return IngestResult{}, fmt.Errorf("failed to upsert finding %q: %w", finding.Fingerprint, err)
		}
		if created {
			newOnes = append(newOnes, stored)
		}
	}

	result := IngestResult{Total: len(payload.Findings), New: len(newOnes)}

	if len(newOnes) > 0 && s.notifier != nil {
		event := buildEvent(project.RepoID, newOnes)
		if err := s.notifier.NotifyNewFindings(ctx, event); err != nil {
			s.logger.Warn("notification dispatch failed", "repo", project.RepoID, "error", err)
		}
	}

	return result, nil
}

// SetStatus applies an operator status change. The transition is
// unconditional: there is no verification that the underlying secret was
// removed, and LastSeenAt is untouched.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (StoredFinding, error) {
	return s.store.SetFindingStatus(ctx, id, status)
}

// MintProject creates a project and its ingestion credential. The plaintext
// token is returned exactly once and only its hash is stored.
func (s *Service) MintProject(ctx context.Context, repoID, name string) (Project, string, error) {
	token, err := GenerateToken()
	if err != nil {
		return Project{}, "", err
	}
	if name == "" {
		name = repoID
	}

	project, err := s.store.CreateProject(ctx, Project{
		RepoID:    repoID,
		Name:      name,
		TokenHash: HashToken(token),
		CreatedAt: s.now(),
	})
	if err != nil {
		return Project{}, "", err
	}
	return project, token, nil
}

// ProjectByToken resolves a bearer credential to its project.
func (s *Service) ProjectByToken(ctx context.Context, token string) (Project, error) {
	return s.store.ProjectByTokenHash(ctx, HashToken(token))
}

func (s *Service) GetFinding(ctx context.Context, id string) (StoredFinding, error) {
	return s.store.GetFinding(ctx, id)
}

func (s *Service) ListFindings(ctx context.Context, filter Filter) ([]StoredFinding, error) {
	return s.store.ListFindings(ctx, filter)
}

func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	return s.store.ListProjects(ctx)
}

// buildEvent computes the frequency summary: top 5 types by descending count,
// ties broken by type name.
func buildEvent(repoID string, newOnes []StoredFinding) Event {
	counts := make(map[string]int)
	for _, finding := range newOnes {
		counts[finding.Type]++
	}

	top := make([]TypeCount, 0, len(counts))
	for t, c := range counts {
		top = append(top, TypeCount{Type: t, Count: c})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Type < top[j].Type
	})
	if len(top) > 5 {
		top = top[:5]
	}

	return Event{
		RepoID:     repoID,
		NewCount:   len(newOnes),
		TopTypes:   top,
		SampleFile: newOnes[0].File,
		SampleLine: newOnes[0].Line,
	}
}
