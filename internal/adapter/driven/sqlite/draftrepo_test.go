package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
)

func addTestRequest(t *testing.T, db *DB, submitterID int64) model.ReviewRequest {
	t.Helper()
	rr, err := NewRequestRepo(db).Create(context.Background(),
		makeRequest(submitterID, nil, "Base summary"))
	require.NoError(t, err)
	return rr
}

func TestDraftRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDraftRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	alice := addTestUser(t, db, "alice")
	rr := addTestRequest(t, db, user.ID)

	d := model.SeedDraft(rr)
	d.Summary = "Edited summary"
	d.TargetPeopleIDs = []int64{alice.ID}

	created, err := repo.Create(ctx, d)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.Get(ctx, rr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited summary", got.Summary)
	assert.Equal(t, []int64{alice.ID}, got.TargetPeopleIDs)
	assert.Empty(t, got.TargetGroupIDs)
}

func TestDraftRepo_Get_NoDraft(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDraftRepo(db)
	user := addTestUser(t, db, "doc")
	rr := addTestRequest(t, db, user.ID)

	_, err := repo.Get(context.Background(), rr.ID)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestDraftRepo_Update_RewritesFieldsAndTargets(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDraftRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	alice := addTestUser(t, db, "alice")
	bob := addTestUser(t, db, "bob")
	rr := addTestRequest(t, db, user.ID)

	d := model.SeedDraft(rr)
	d.TargetPeopleIDs = []int64{alice.ID}
	created, err := repo.Create(ctx, d)
	require.NoError(t, err)

	created.Description = "New description"
	created.BugsClosed = []string{"42"}
	created.TargetPeopleIDs = []int64{bob.ID, alice.ID}
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.Get(ctx, rr.ID)
	require.NoError(t, err)
	assert.Equal(t, "New description", got.Description)
	assert.Equal(t, []string{"42"}, got.BugsClosed)
	assert.Equal(t, []int64{bob.ID, alice.ID}, got.TargetPeopleIDs)
}

func TestDraftRepo_Publish_AppliesDraftToRequest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDraftRepo(db)
	requests := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	alice := addTestUser(t, db, "alice")
	rr := addTestRequest(t, db, user.ID)

	d := model.SeedDraft(rr)
	d.Summary = "Published summary"
	d.TestingDone = "Ran the suite"
	d.TargetPeopleIDs = []int64{alice.ID}
	created, err := repo.Create(ctx, d)
	require.NoError(t, err)

	require.NoError(t, repo.Publish(ctx, created, true))

	got, err := requests.GetByID(ctx, rr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Published summary", got.Summary)
	assert.Equal(t, "Ran the suite", got.TestingDone)
	assert.Equal(t, []int64{alice.ID}, got.TargetPeopleIDs)
	assert.True(t, got.Public)

	// Draft is consumed by the publish.
	_, err = repo.Get(ctx, rr.ID)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestDraftRepo_Publish_SecondPublishLosesRace(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDraftRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	rr := addTestRequest(t, db, user.ID)

	created, err := repo.Create(ctx, model.SeedDraft(rr))
	require.NoError(t, err)

	require.NoError(t, repo.Publish(ctx, created, true))

	// The draft row is already gone, so the replay changes nothing.
	err = repo.Publish(ctx, created, true)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestDraftRepo_Publish_LaterPublishDoesNotTouchPublicFlag(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDraftRepo(db)
	requests := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	rr := addTestRequest(t, db, user.ID)

	first, err := repo.Create(ctx, model.SeedDraft(rr))
	require.NoError(t, err)
	require.NoError(t, repo.Publish(ctx, first, true))

	published, err := requests.GetByID(ctx, rr.ID)
	require.NoError(t, err)
	require.True(t, published.Public)

	second := model.SeedDraft(*published)
	second.Summary = "Revised"
	createdSecond, err := repo.Create(ctx, second)
	require.NoError(t, err)
	require.NoError(t, repo.Publish(ctx, createdSecond, false))

	got, err := requests.GetByID(ctx, rr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revised", got.Summary)
	assert.True(t, got.Public)
}

func TestDraftRepo_Publish_PromotesDiffSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDraftRepo(db)
	diffs := NewDiffRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	rr := addTestRequest(t, db, user.ID)

	ds, err := diffs.CreateDiffSet(ctx, rr.ID, "diff", []model.FileDiff{
		{SourceFile: "a.go", DestFile: "a.go", SourceRevision: "123", Diff: "@@ -1 +1 @@"},
	})
	require.NoError(t, err)

	d := model.SeedDraft(rr)
	d.DiffSetID = &ds.ID
	created, err := repo.Create(ctx, d)
	require.NoError(t, err)

	history, err := diffs.ListByReviewRequest(ctx, rr.ID, true)
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, repo.Publish(ctx, created, true))

	history, err = diffs.ListByReviewRequest(ctx, rr.ID, true)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ds.ID, history[0].ID)
}

func TestDraftRepo_Discard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDraftRepo(db)
	requests := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	rr := addTestRequest(t, db, user.ID)

	d := model.SeedDraft(rr)
	d.Summary = "Never published"
	created, err := repo.Create(ctx, d)
	require.NoError(t, err)

	require.NoError(t, repo.Discard(ctx, created.ID))

	_, err = repo.Get(ctx, rr.ID)
	assert.ErrorIs(t, err, fault.ErrNotFound)

	// The base request is untouched.
	got, err := requests.GetByID(ctx, rr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Base summary", got.Summary)

	err = repo.Discard(ctx, created.ID)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}
