package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProject(t *testing.T, store Store, repoID string) Project {
	t.Helper()

	project, err := store.CreateProject(context.Background(), Project{
		RepoID:    repoID,
		Name:      repoID,
		TokenHash: HashToken("token-for-" + repoID),
		CreatedAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return project
}

func patchAt(fingerprint string, seenAt time.Time) FindingPatch {
	return FindingPatch{
		UserID:        "dev",
		Type:          "github_pat",
		File:          "ci/deploy.sh",
		Line:          8,
		PreviewMasked: "TOKEN=[REDACTED]",
		Fingerprint:   fingerprint,
		SeenAt:        seenAt,
	}
}

func TestMemoryStoreUpsertCreatesThenRefreshes(t *testing.T) {
	store := NewMemoryStore()
	project := seedProject(t, store, "acme/payments")
	ctx := context.Background()

	first := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	created, isNew, err := store.UpsertFinding(ctx, project.ID, patchAt("fp-11111111", first))
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, StatusOpen, created.Status)
	assert.True(t, created.FirstSeenAt.Equal(first))
	assert.True(t, created.LastSeenAt.Equal(first))

	second := first.Add(time.Hour)
	patch := patchAt("fp-11111111", second)
	patch.File = "ci/release.sh"
	patch.Line = 21

	updated, isNew, err := store.UpsertFinding(ctx, project.ID, patch)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "ci/release.sh", updated.File)
	assert.Equal(t, 21, updated.Line)
	assert.True(t, updated.FirstSeenAt.Equal(first))
	assert.True(t, updated.LastSeenAt.Equal(second))
}

func TestMemoryStoreFingerprintsAreScopedPerProject(t *testing.T) {
	store := NewMemoryStore()
	one := seedProject(t, store, "acme/payments")
	two := seedProject(t, store, "acme/billing")
	ctx := context.Background()
	seen := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	_, isNew, err := store.UpsertFinding(ctx, one.ID, patchAt("fp-11111111", seen))
	require.NoError(t, err)
	assert.True(t, isNew)

	_, isNew, err = store.UpsertFinding(ctx, two.ID, patchAt("fp-11111111", seen))
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestMemoryStoreSetStatusLeavesSeenTimesAlone(t *testing.T) {
	store := NewMemoryStore()
	project := seedProject(t, store, "acme/payments")
	ctx := context.Background()
	seen := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	created, _, err := store.UpsertFinding(ctx, project.ID, patchAt("fp-11111111", seen))
	require.NoError(t, err)

	changed, err := store.SetFindingStatus(ctx, created.ID, StatusFixed)
	require.NoError(t, err)
	assert.Equal(t, StatusFixed, changed.Status)
	assert.True(t, changed.LastSeenAt.Equal(seen))

	_, err = store.SetFindingStatus(ctx, "missing-id", StatusFixed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListFindingsFiltersAndOrder(t *testing.T) {
	store := NewMemoryStore()
	project := seedProject(t, store, "acme/payments")
	other := seedProject(t, store, "acme/billing")
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	older := patchAt("fp-11111111", base)
	newer := patchAt("fp-22222222", base.Add(time.Hour))
	newer.Type = "slack_token"

	oldStored, _, err := store.UpsertFinding(ctx, project.ID, older)
	require.NoError(t, err)
	_, _, err = store.UpsertFinding(ctx, project.ID, newer)
	require.NoError(t, err)
	_, _, err = store.UpsertFinding(ctx, other.ID, patchAt("fp-33333333", base))
	require.NoError(t, err)

	_, err = store.SetFindingStatus(ctx, oldStored.ID, StatusIgnored)
	require.NoError(t, err)

	byProject, err := store.ListFindings(ctx, Filter{ProjectID: project.ID})
	require.NoError(t, err)
	require.Len(t, byProject, 2)
	// Most recently seen first.
	assert.Equal(t, "fp-22222222", byProject[0].Fingerprint)
	assert.Equal(t, "fp-11111111", byProject[1].Fingerprint)

	byType, err := store.ListFindings(ctx, Filter{ProjectID: project.ID, Type: "slack_token"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "fp-22222222", byType[0].Fingerprint)

	byStatus, err := store.ListFindings(ctx, Filter{ProjectID: project.ID, Status: StatusIgnored})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "fp-11111111", byStatus[0].Fingerprint)

	since := base.Add(30 * time.Minute)
	recent, err := store.ListFindings(ctx, Filter{ProjectID: project.ID, Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "fp-22222222", recent[0].Fingerprint)
}

func TestMemoryStoreProjectLookups(t *testing.T) {
	store := NewMemoryStore()
	project := seedProject(t, store, "acme/payments")
	ctx := context.Background()

	byID, err := store.ProjectByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.RepoID, byID.RepoID)

	byHash, err := store.ProjectByTokenHash(ctx, HashToken("token-for-acme/payments"))
	require.NoError(t, err)
	assert.Equal(t, project.ID, byHash.ID)

	_, err = store.ProjectByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.ProjectByTokenHash(ctx, HashToken("wrong"))
	assert.ErrorIs(t, err, ErrNotFound)

	seedProject(t, store, "acme/billing")
	all, err := store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "acme/billing", all[0].RepoID)
	assert.Equal(t, "acme/payments", all[1].RepoID)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "leakguard.json")
	ctx := context.Background()

	store, err := OpenFileStore(path)
	require.NoError(t, err)

	project := seedProject(t, store, "acme/payments")
	seen := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	created, _, err := store.UpsertFinding(ctx, project.ID, patchAt("fp-11111111", seen))
	require.NoError(t, err)
	_, err = store.SetFindingStatus(ctx, created.ID, StatusIgnored)
	require.NoError(t, err)

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)

	byToken, err := reopened.ProjectByTokenHash(ctx, HashToken("token-for-acme/payments"))
	require.NoError(t, err)
	assert.Equal(t, project.ID, byToken.ID)

	finding, err := reopened.GetFinding(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusIgnored, finding.Status)
	assert.True(t, finding.FirstSeenAt.Equal(seen))

	// Dedup keys must be rebuilt on restore.
	_, isNew, err := reopened.UpsertFinding(ctx, project.ID, patchAt("fp-11111111", seen.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestFileStoreLeavesNoPartialSnapshots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leakguard.json")
	ctx := context.Background()

	store, err := OpenFileStore(path)
	require.NoError(t, err)

	project := seedProject(t, store, "acme/payments")
	seen := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, _, err := store.UpsertFinding(ctx, project.ID, patchAt(fmt.Sprintf("fp-%08d", i), seen))
		require.NoError(t, err)
	}

	// Every mutation replaces the snapshot whole; no temp files survive.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "leakguard.json", entries[0].Name())
}

func TestGenerateTokenIsUnique(t *testing.T) {
	one, err := GenerateToken()
	require.NoError(t, err)
	two, err := GenerateToken()
	require.NoError(t, err)

	assert.NotEqual(t, one, two)
	assert.NotEmpty(t, one)
	assert.Len(t, HashToken(one), 64)
}
