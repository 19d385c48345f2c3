package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status is the operator-facing lifecycle state of a stored finding. Only
// StatusOpen is reachable automatically (on first sighting); every transition
// between the three states is an explicit operator action.
type Status string

const (
	StatusOpen    Status = "open"
	StatusFixed   Status = "fixed"
	StatusIgnored Status = "ignored"
)

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusFixed, StatusIgnored:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

var (
	ErrNotFound      = errors.New("not found")
	ErrProjectExists = errors.New("project already exists")
	ErrBatchTooLarge = errors.New("findings batch exceeds the ingestion ceiling")
)

// Project scopes findings and owns one ingestion credential, stored hashed.
type Project struct {
	ID        string    `json:"id"`
	RepoID    string    `json:"repoId"`
	Name      string    `json:"name"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// StoredFinding is the persistent, deduplicated view of one detection.
// Exactly one row exists per (ProjectID, Fingerprint).
type StoredFinding struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"projectId"`
	UserID        string    `json:"userId"`
	Type          string    `json:"type"`
	File          string    `json:"file"`
	Line          int       `json:"line"`
	PreviewMasked string    `json:"previewMasked"`
	Fingerprint   string    `json:"fingerprint"`
	Status        Status    `json:"status"`
	FirstSeenAt   time.Time `json:"firstSeenAt"`
	LastSeenAt    time.Time `json:"lastSeenAt"`
}

// FindingPatch carries the refreshable fields of one sighting into
// UpsertFinding. On insert all fields apply and status starts open; on update
// only File, Line, PreviewMasked, and SeenAt are applied, so re-detection
// never reopens an ignored or fixed finding.
type FindingPatch struct {
	UserID        string
	Type          string
	File          string
	Line          int
	PreviewMasked string
	Fingerprint   string
	SeenAt        time.Time
}

// Filter narrows ListFindings. Zero values mean "no constraint". Since is a
// lower bound on FirstSeenAt.
type Filter struct {
	ProjectID string
	Type      string
	Status    Status
	Since     *time.Time
}

// Store is the persistence boundary of the lifecycle engine. Implementations
// must enforce (projectID, fingerprint) uniqueness and serialize mutations to
// the same pair; the lifecycle logic on top never changes across engines.
type Store interface {
	// UpsertFinding looks up (projectID, patch.Fingerprint) and either inserts
	// a new open finding or refreshes the sighting fields of the existing one.
	// It reports whether a row was created.
	UpsertFinding(ctx context.Context, projectID string, patch FindingPatch) (StoredFinding, bool, error)

	GetFinding(ctx context.Context, id string) (StoredFinding, error)

	// SetFindingStatus applies an operator status change unconditionally.
	// LastSeenAt reflects detection recency and is not touched.
	SetFindingStatus(ctx context.Context, id string, status Status) (StoredFinding, error)

	ListFindings(ctx context.Context, filter Filter) ([]StoredFinding, error)

	CreateProject(ctx context.Context, project Project) (Project, error)
	ProjectByTokenHash(ctx context.Context, tokenHash string) (Project, error)
	ProjectByID(ctx context.Context, id string) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
}
