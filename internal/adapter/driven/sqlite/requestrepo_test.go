package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
)

// addTestUser inserts a user required for foreign key constraints.
func addTestUser(t *testing.T, db *DB, username string) model.User {
	t.Helper()
	u, err := NewUserRepo(db).Create(context.Background(), model.User{
		Username:      username,
		Email:         username + "@example.com",
		APIToken:      "token-" + username,
		NotifyEnabled: true,
		CreatedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	return u
}

func addTestSite(t *testing.T, db *DB, name string) model.LocalSite {
	t.Helper()
	site, err := NewSiteRepo(db).Create(context.Background(), model.LocalSite{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return site
}

func makeRequest(submitterID int64, siteID *int64, summary string) model.ReviewRequest {
	now := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	return model.ReviewRequest{
		LocalSiteID: siteID,
		SubmitterID: submitterID,
		Summary:     summary,
		BugsClosed:  []string{},
		Status:      model.StatusPending,
		TimeAdded:   now,
		LastUpdated: now,
	}
}

func TestRequestRepo_Create_AssignsSequentialLocalIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")

	first, err := repo.Create(ctx, makeRequest(user.ID, nil, "First"))
	require.NoError(t, err)
	second, err := repo.Create(ctx, makeRequest(user.ID, nil, "Second"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.LocalID)
	assert.Equal(t, int64(2), second.LocalID)
}

func TestRequestRepo_Create_LocalIDsIndependentPerSite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	siteA := addTestSite(t, db, "site-a")
	siteB := addTestSite(t, db, "site-b")

	inA, err := repo.Create(ctx, makeRequest(user.ID, &siteA.ID, "In A"))
	require.NoError(t, err)
	inB, err := repo.Create(ctx, makeRequest(user.ID, &siteB.ID, "In B"))
	require.NoError(t, err)
	global, err := repo.Create(ctx, makeRequest(user.ID, nil, "Global"))
	require.NoError(t, err)

	// Each scope runs its own sequence starting at 1.
	assert.Equal(t, int64(1), inA.LocalID)
	assert.Equal(t, int64(1), inB.LocalID)
	assert.Equal(t, int64(1), global.LocalID)
}

func TestRequestRepo_Create_LocalIDsNotReusedAfterDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")

	first, err := repo.Create(ctx, makeRequest(user.ID, nil, "First"))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, first.ID))

	second, err := repo.Create(ctx, makeRequest(user.ID, nil, "Second"))
	require.NoError(t, err)

	assert.Equal(t, int64(2), second.LocalID)
}

func TestRequestRepo_GetByLocalID_ScopedToSite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	siteA := addTestSite(t, db, "site-a")
	siteB := addTestSite(t, db, "site-b")

	created, err := repo.Create(ctx, makeRequest(user.ID, &siteA.ID, "In A"))
	require.NoError(t, err)

	got, err := repo.GetByLocalID(ctx, &siteA.ID, created.LocalID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "In A", got.Summary)

	// Same display id under the wrong site looks like absence.
	_, err = repo.GetByLocalID(ctx, &siteB.ID, created.LocalID)
	assert.ErrorIs(t, err, fault.ErrNotFound)

	_, err = repo.GetByLocalID(ctx, nil, created.LocalID)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestRequestRepo_CreateAndGet_RoundTripsTargets(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	alice := addTestUser(t, db, "alice")
	bob := addTestUser(t, db, "bob")

	g, err := NewGroupRepo(db).Create(ctx, model.Group{Name: "devgroup"})
	require.NoError(t, err)

	rr := makeRequest(user.ID, nil, "Targeted")
	rr.TargetPeopleIDs = []int64{bob.ID, alice.ID}
	rr.TargetGroupIDs = []int64{g.ID}
	rr.BugsClosed = []string{"1234", "5678"}

	created, err := repo.Create(ctx, rr)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID, alice.ID}, got.TargetPeopleIDs)
	assert.Equal(t, []int64{g.ID}, got.TargetGroupIDs)
	assert.Equal(t, []string{"1234", "5678"}, got.BugsClosed)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.False(t, got.Public)
}

func TestRequestRepo_ListBySite_FiltersScope(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")
	site := addTestSite(t, db, "site-a")

	_, err := repo.Create(ctx, makeRequest(user.ID, &site.ID, "Sited"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, makeRequest(user.ID, nil, "Global"))
	require.NoError(t, err)

	sited, err := repo.ListBySite(ctx, &site.ID)
	require.NoError(t, err)
	require.Len(t, sited, 1)
	assert.Equal(t, "Sited", sited[0].Summary)

	global, err := repo.ListBySite(ctx, nil)
	require.NoError(t, err)
	require.Len(t, global, 1)
	assert.Equal(t, "Global", global[0].Summary)
}

func TestRequestRepo_SetStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")

	created, err := repo.Create(ctx, makeRequest(user.ID, nil, "To close"))
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(ctx, created.ID, model.StatusSubmitted))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, got.Status)

	err = repo.SetStatus(ctx, 9999, model.StatusDiscarded)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestRequestRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()
	user := addTestUser(t, db, "doc")

	created, err := repo.Create(ctx, makeRequest(user.ID, nil, "Doomed"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, fault.ErrNotFound)

	err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}
