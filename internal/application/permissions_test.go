package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efisher/reviewhub/internal/domain/model"
)

func canView(t *testing.T, e *env, actor *model.User, rr *model.ReviewRequest) bool {
	t.Helper()
	ok, err := e.perms.CanViewReviewRequest(context.Background(), actor, rr)
	require.NoError(t, err)
	return ok
}

func TestCanView_NonPublicRequest(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	grumpy := e.addUser("grumpy")
	doc := e.addUser("doc")
	happy := e.addUser("happy")
	admin := e.addUser("admin")
	admin.IsSuperuser = true

	rr, err := e.requests.Create(ctx, model.ReviewRequest{
		SubmitterID:     grumpy.ID,
		Status:          model.StatusPending,
		TargetPeopleIDs: []int64{doc.ID},
	})
	require.NoError(t, err)

	assert.True(t, canView(t, e, grumpy, &rr), "submitter")
	assert.True(t, canView(t, e, admin, &rr), "superuser")
	assert.True(t, canView(t, e, doc, &rr), "direct target")
	assert.False(t, canView(t, e, happy, &rr), "unrelated user")
	assert.False(t, canView(t, e, nil, &rr), "anonymous")
}

func TestCanView_PublicRequestOpenToEveryone(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	grumpy := e.addUser("grumpy")
	happy := e.addUser("happy")

	rr, err := e.requests.Create(ctx, model.ReviewRequest{
		SubmitterID: grumpy.ID,
		Status:      model.StatusPending,
		Public:      true,
	})
	require.NoError(t, err)

	assert.True(t, canView(t, e, happy, &rr))
	assert.True(t, canView(t, e, nil, &rr))
}

func TestCanView_InviteOnlyGroup(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	grumpy := e.addUser("grumpy")
	member := e.addUser("member")
	outsider := e.addUser("outsider")
	admin := e.addUser("admin")
	admin.IsSuperuser = true

	g, err := e.groups.Create(ctx, model.Group{Name: "secret", InviteOnly: true})
	require.NoError(t, err)
	require.NoError(t, e.groups.AddMember(ctx, g.ID, member.ID))

	rr, err := e.requests.Create(ctx, model.ReviewRequest{
		SubmitterID:    grumpy.ID,
		Status:         model.StatusPending,
		Public:         true,
		TargetGroupIDs: []int64{g.ID},
	})
	require.NoError(t, err)

	assert.True(t, canView(t, e, member, &rr), "group member")
	assert.True(t, canView(t, e, grumpy, &rr), "submitter")
	assert.True(t, canView(t, e, admin, &rr), "superuser")
	assert.False(t, canView(t, e, outsider, &rr), "non-member")
	assert.False(t, canView(t, e, nil, &rr), "anonymous")
}

func TestCanView_InviteOnlyGroupWithNoMembers(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	grumpy := e.addUser("grumpy")
	outsider := e.addUser("outsider")

	g, err := e.groups.Create(ctx, model.Group{Name: "empty", InviteOnly: true})
	require.NoError(t, err)

	rr, err := e.requests.Create(ctx, model.ReviewRequest{
		SubmitterID:    grumpy.ID,
		Status:         model.StatusPending,
		Public:         true,
		TargetGroupIDs: []int64{g.ID},
	})
	require.NoError(t, err)

	assert.False(t, canView(t, e, outsider, &rr))
	assert.True(t, canView(t, e, grumpy, &rr))
}

func TestCanView_AnyTargetGroupGrantsAccess(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	grumpy := e.addUser("grumpy")
	outsider := e.addUser("outsider")

	inviteOnly, err := e.groups.Create(ctx, model.Group{Name: "secret", InviteOnly: true})
	require.NoError(t, err)
	open, err := e.groups.Create(ctx, model.Group{Name: "open"})
	require.NoError(t, err)

	rr, err := e.requests.Create(ctx, model.ReviewRequest{
		SubmitterID:    grumpy.ID,
		Status:         model.StatusPending,
		Public:         true,
		TargetGroupIDs: []int64{inviteOnly.ID, open.ID},
	})
	require.NoError(t, err)

	// The open group admits anyone regardless of the invite-only one.
	assert.True(t, canView(t, e, outsider, &rr))
}

func TestCanView_DirectTargetBypassesGroupRules(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	grumpy := e.addUser("grumpy")
	doc := e.addUser("doc")

	g, err := e.groups.Create(ctx, model.Group{Name: "secret", InviteOnly: true})
	require.NoError(t, err)

	rr, err := e.requests.Create(ctx, model.ReviewRequest{
		SubmitterID:     grumpy.ID,
		Status:          model.StatusPending,
		Public:          true,
		TargetPeopleIDs: []int64{doc.ID},
		TargetGroupIDs:  []int64{g.ID},
	})
	require.NoError(t, err)

	assert.True(t, canView(t, e, doc, &rr))
}

func TestCanView_SiteMembershipRequired(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	grumpy := e.addUser("grumpy")
	member := e.addUser("member")
	outsider := e.addUser("outsider")

	site, err := e.sites.Create(ctx, model.LocalSite{Name: "site-a"})
	require.NoError(t, err)
	require.NoError(t, e.sites.AddMember(ctx, site.ID, grumpy.ID))
	require.NoError(t, e.sites.AddMember(ctx, site.ID, member.ID))

	rr, err := e.requests.Create(ctx, model.ReviewRequest{
		LocalSiteID: &site.ID,
		SubmitterID: grumpy.ID,
		Status:      model.StatusPending,
		Public:      true,
	})
	require.NoError(t, err)

	assert.True(t, canView(t, e, member, &rr))
	assert.False(t, canView(t, e, outsider, &rr))
}

func TestCanDelete_RequiresGrantOnTopOfOwnership(t *testing.T) {
	e := newEnv()
	grumpy := e.addUser("grumpy")
	admin := e.addUser("admin")
	admin.IsSuperuser = true

	rr := &model.ReviewRequest{SubmitterID: grumpy.ID}

	assert.False(t, e.perms.CanDeleteReviewRequest(grumpy, rr), "owner without grant")

	grumpy.CanDeleteReviewRequest = true
	assert.True(t, e.perms.CanDeleteReviewRequest(grumpy, rr), "owner with grant")

	assert.True(t, e.perms.CanDeleteReviewRequest(admin, rr), "superuser bypass")
}
