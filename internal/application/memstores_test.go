package application_test

import (
	"context"
	"strings"
	"time"

	"github.com/efisher/reviewhub/internal/application"
	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
)

// In-memory port implementations mirroring the SQLite adapter's contracts:
// single-item absence reports fault.ErrNotFound, display ids count per site
// scope, draft publish consumes the draft row.

func scopeOf(siteID *int64) int64 {
	if siteID == nil {
		return 0
	}
	return *siteID
}

// --- users ---

type memUserStore struct {
	seq   int64
	users map[int64]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int64]model.User)}
}

func (m *memUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	m.seq++
	u.ID = m.seq
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return &u, nil
}

func (m *memUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memUserStore) GetByToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range m.users {
		if u.APIToken == token {
			u := u
			return &u, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memUserStore) GetByIDs(_ context.Context, ids []int64) ([]model.User, error) {
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserStore) ListAll(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserStore) SetNotifyEnabled(_ context.Context, id int64, enabled bool) error {
	u, ok := m.users[id]
	if !ok {
		return fault.ErrNotFound
	}
	u.NotifyEnabled = enabled
	m.users[id] = u
	return nil
}

// --- sites ---

type memSiteStore struct {
	seq     int64
	sites   map[int64]model.LocalSite
	members map[int64]map[int64]bool
}

func newMemSiteStore() *memSiteStore {
	return &memSiteStore{
		sites:   make(map[int64]model.LocalSite),
		members: make(map[int64]map[int64]bool),
	}
}

func (m *memSiteStore) Create(_ context.Context, site model.LocalSite) (model.LocalSite, error) {
	m.seq++
	site.ID = m.seq
	m.sites[site.ID] = site
	m.members[site.ID] = make(map[int64]bool)
	return site, nil
}

func (m *memSiteStore) GetByName(_ context.Context, name string) (*model.LocalSite, error) {
	for _, s := range m.sites {
		if s.Name == name {
			s := s
			return &s, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memSiteStore) ListAll(_ context.Context) ([]model.LocalSite, error) {
	out := make([]model.LocalSite, 0, len(m.sites))
	for _, s := range m.sites {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSiteStore) AddMember(_ context.Context, siteID, userID int64) error {
	m.members[siteID][userID] = true
	return nil
}

func (m *memSiteStore) RemoveMember(_ context.Context, siteID, userID int64) error {
	delete(m.members[siteID], userID)
	return nil
}

func (m *memSiteStore) IsMember(_ context.Context, siteID, userID int64) (bool, error) {
	return m.members[siteID][userID], nil
}

// --- groups ---

type memGroupStore struct {
	seq     int64
	groups  map[int64]model.Group
	members map[int64][]int64
}

func newMemGroupStore() *memGroupStore {
	return &memGroupStore{
		groups:  make(map[int64]model.Group),
		members: make(map[int64][]int64),
	}
}

func (m *memGroupStore) Create(_ context.Context, g model.Group) (model.Group, error) {
	m.seq++
	g.ID = m.seq
	m.groups[g.ID] = g
	return g, nil
}

func (m *memGroupStore) GetByID(_ context.Context, id int64) (*model.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return &g, nil
}

func (m *memGroupStore) GetByName(_ context.Context, siteID *int64, name string) (*model.Group, error) {
	for _, g := range m.groups {
		if scopeOf(g.LocalSiteID) != scopeOf(siteID) {
			continue
		}
		if strings.EqualFold(g.Name, name) || strings.EqualFold(g.DisplayName, name) {
			g := g
			return &g, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memGroupStore) GetByIDs(_ context.Context, ids []int64) ([]model.Group, error) {
	out := make([]model.Group, 0, len(ids))
	for _, id := range ids {
		if g, ok := m.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGroupStore) ListBySite(_ context.Context, siteID *int64) ([]model.Group, error) {
	var out []model.Group
	for _, g := range m.groups {
		if scopeOf(g.LocalSiteID) == scopeOf(siteID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGroupStore) AddMember(_ context.Context, groupID, userID int64) error {
	for _, id := range m.members[groupID] {
		if id == userID {
			return nil
		}
	}
	m.members[groupID] = append(m.members[groupID], userID)
	return nil
}

func (m *memGroupStore) RemoveMember(_ context.Context, groupID, userID int64) error {
	ids := m.members[groupID]
	for i, id := range ids {
		if id == userID {
			m.members[groupID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memGroupStore) IsMember(_ context.Context, groupID, userID int64) (bool, error) {
	for _, id := range m.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memGroupStore) MemberIDs(_ context.Context, groupID int64) ([]int64, error) {
	return append([]int64(nil), m.members[groupID]...), nil
}

// --- repositories ---

type memRepositoryStore struct {
	seq   int64
	repos map[int64]model.Repository
}

func newMemRepositoryStore() *memRepositoryStore {
	return &memRepositoryStore{repos: make(map[int64]model.Repository)}
}

func (m *memRepositoryStore) Create(_ context.Context, repo model.Repository) (model.Repository, error) {
	m.seq++
	repo.ID = m.seq
	m.repos[repo.ID] = repo
	return repo, nil
}

func (m *memRepositoryStore) GetByID(_ context.Context, id int64) (*model.Repository, error) {
	repo, ok := m.repos[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return &repo, nil
}

func (m *memRepositoryStore) ListBySite(_ context.Context, siteID *int64) ([]model.Repository, error) {
	var out []model.Repository
	for _, repo := range m.repos {
		if scopeOf(repo.LocalSiteID) == scopeOf(siteID) {
			out = append(out, repo)
		}
	}
	return out, nil
}

// --- review requests ---

type memRequestStore struct {
	seq      int64
	counters map[int64]int64
	requests map[int64]model.ReviewRequest
	order    []int64
}

func newMemRequestStore() *memRequestStore {
	return &memRequestStore{
		counters: make(map[int64]int64),
		requests: make(map[int64]model.ReviewRequest),
	}
}

func (m *memRequestStore) Create(_ context.Context, rr model.ReviewRequest) (model.ReviewRequest, error) {
	m.seq++
	rr.ID = m.seq
	sc := scopeOf(rr.LocalSiteID)
	m.counters[sc]++
	rr.LocalID = m.counters[sc]
	m.requests[rr.ID] = rr
	m.order = append(m.order, rr.ID)
	return rr, nil
}

func (m *memRequestStore) GetByID(_ context.Context, id int64) (*model.ReviewRequest, error) {
	rr, ok := m.requests[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return &rr, nil
}

func (m *memRequestStore) GetByLocalID(_ context.Context, siteID *int64, localID int64) (*model.ReviewRequest, error) {
	for _, rr := range m.requests {
		if scopeOf(rr.LocalSiteID) == scopeOf(siteID) && rr.LocalID == localID {
			rr := rr
			return &rr, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memRequestStore) ListBySite(_ context.Context, siteID *int64) ([]model.ReviewRequest, error) {
	var out []model.ReviewRequest
	for _, id := range m.order {
		rr, ok := m.requests[id]
		if ok && scopeOf(rr.LocalSiteID) == scopeOf(siteID) {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (m *memRequestStore) SetStatus(_ context.Context, id int64, status model.ReviewRequestStatus) error {
	rr, ok := m.requests[id]
	if !ok {
		return fault.ErrNotFound
	}
	rr.Status = status
	rr.LastUpdated = time.Now().UTC()
	m.requests[id] = rr
	return nil
}

func (m *memRequestStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.requests[id]; !ok {
		return fault.ErrNotFound
	}
	delete(m.requests, id)
	return nil
}

// --- drafts ---

type memDraftStore struct {
	seq      int64
	drafts   map[int64]model.ReviewRequestDraft // keyed by review request id
	requests *memRequestStore
	diffs    *memDiffStore
}

func newMemDraftStore(requests *memRequestStore, diffs *memDiffStore) *memDraftStore {
	return &memDraftStore{
		drafts:   make(map[int64]model.ReviewRequestDraft),
		requests: requests,
		diffs:    diffs,
	}
}

func (m *memDraftStore) Get(_ context.Context, reviewRequestID int64) (*model.ReviewRequestDraft, error) {
	d, ok := m.drafts[reviewRequestID]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return &d, nil
}

func (m *memDraftStore) Create(_ context.Context, d model.ReviewRequestDraft) (model.ReviewRequestDraft, error) {
	m.seq++
	d.ID = m.seq
	d.LastUpdated = time.Now().UTC()
	m.drafts[d.ReviewRequestID] = d
	return d, nil
}

func (m *memDraftStore) Update(_ context.Context, d model.ReviewRequestDraft) error {
	stored, ok := m.drafts[d.ReviewRequestID]
	if !ok || stored.ID != d.ID {
		return fault.ErrNotFound
	}
	d.LastUpdated = time.Now().UTC()
	m.drafts[d.ReviewRequestID] = d
	return nil
}

func (m *memDraftStore) Publish(_ context.Context, d model.ReviewRequestDraft, firstPublish bool) error {
	stored, ok := m.drafts[d.ReviewRequestID]
	if !ok || stored.ID != d.ID {
		return fault.ErrNotFound
	}
	delete(m.drafts, d.ReviewRequestID)

	rr := m.requests.requests[d.ReviewRequestID]
	rr.Summary = d.Summary
	rr.Description = d.Description
	rr.TestingDone = d.TestingDone
	rr.Branch = d.Branch
	rr.BugsClosed = append([]string(nil), d.BugsClosed...)
	rr.TargetPeopleIDs = append([]int64(nil), d.TargetPeopleIDs...)
	rr.TargetGroupIDs = append([]int64(nil), d.TargetGroupIDs...)
	if firstPublish {
		rr.Public = true
	}
	rr.LastUpdated = time.Now().UTC()
	m.requests.requests[rr.ID] = rr

	if d.DiffSetID != nil {
		ds := m.diffs.sets[*d.DiffSetID]
		ds.InHistory = true
		m.diffs.sets[ds.ID] = ds
	}

	return nil
}

func (m *memDraftStore) Discard(_ context.Context, draftID int64) error {
	for rrID, d := range m.drafts {
		if d.ID == draftID {
			delete(m.drafts, rrID)
			return nil
		}
	}
	return fault.ErrNotFound
}

// --- reviews ---

type memReviewStore struct {
	seq     int64
	reviews map[int64]model.Review
	order   []int64
}

func newMemReviewStore() *memReviewStore {
	return &memReviewStore{reviews: make(map[int64]model.Review)}
}

func (m *memReviewStore) GetOrCreatePending(_ context.Context, reviewRequestID, userID int64, baseReplyToID *int64) (model.Review, bool, error) {
	for _, id := range m.order {
		r := m.reviews[id]
		if r.ReviewRequestID == reviewRequestID && r.UserID == userID && !r.Public &&
			replyKey(r.BaseReplyToID) == replyKey(baseReplyToID) {
			return r, false, nil
		}
	}

	m.seq++
	r := model.Review{
		ID:              m.seq,
		ReviewRequestID: reviewRequestID,
		UserID:          userID,
		BaseReplyToID:   baseReplyToID,
		Timestamp:       time.Now().UTC(),
	}
	m.reviews[r.ID] = r
	m.order = append(m.order, r.ID)
	return r, true, nil
}

func replyKey(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func (m *memReviewStore) GetByID(_ context.Context, id int64) (*model.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return &r, nil
}

func (m *memReviewStore) Update(_ context.Context, r model.Review) error {
	stored, ok := m.reviews[r.ID]
	if !ok || stored.Public {
		return fault.ErrNotFound
	}
	stored.ShipIt = r.ShipIt
	stored.BodyTop = r.BodyTop
	stored.BodyBottom = r.BodyBottom
	m.reviews[r.ID] = stored
	return nil
}

func (m *memReviewStore) Publish(_ context.Context, id int64) error {
	r, ok := m.reviews[id]
	if !ok || r.Public {
		return fault.ErrNotFound
	}
	r.Public = true
	r.Timestamp = time.Now().UTC()
	m.reviews[id] = r
	return nil
}

func (m *memReviewStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.reviews[id]; !ok {
		return fault.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *memReviewStore) ListPublicByReviewRequest(_ context.Context, reviewRequestID int64) ([]model.Review, error) {
	var out []model.Review
	for _, id := range m.order {
		r, ok := m.reviews[id]
		if ok && r.ReviewRequestID == reviewRequestID && r.Public && !r.IsReply() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReviewStore) ListPublicReplies(_ context.Context, reviewID int64) ([]model.Review, error) {
	var out []model.Review
	for _, id := range m.order {
		r, ok := m.reviews[id]
		if ok && r.Public && r.IsReply() && *r.BaseReplyToID == reviewID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReviewStore) GetPendingReply(_ context.Context, reviewID, userID int64) (*model.Review, error) {
	for _, id := range m.order {
		r, ok := m.reviews[id]
		if ok && !r.Public && r.IsReply() && *r.BaseReplyToID == reviewID && r.UserID == userID {
			return &r, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memReviewStore) PublicReviewerIDs(_ context.Context, reviewRequestID int64) ([]int64, error) {
	seen := make(map[int64]bool)
	var out []int64
	for _, id := range m.order {
		r, ok := m.reviews[id]
		if ok && r.ReviewRequestID == reviewRequestID && r.Public && !r.IsReply() && !seen[r.UserID] {
			seen[r.UserID] = true
			out = append(out, r.UserID)
		}
	}
	return out, nil
}

// --- comments ---

type memCommentStore struct {
	seq       int64
	diffCmts  map[int64]model.DiffComment
	shotCmts  map[int64]model.ScreenshotComment
	diffOrder []int64
	shotOrder []int64
}

func newMemCommentStore() *memCommentStore {
	return &memCommentStore{
		diffCmts: make(map[int64]model.DiffComment),
		shotCmts: make(map[int64]model.ScreenshotComment),
	}
}

func (m *memCommentStore) CreateDiffComment(_ context.Context, c model.DiffComment) (model.DiffComment, error) {
	m.seq++
	c.ID = m.seq
	c.Timestamp = time.Now().UTC()
	m.diffCmts[c.ID] = c
	m.diffOrder = append(m.diffOrder, c.ID)
	return c, nil
}

func (m *memCommentStore) GetDiffComment(_ context.Context, id int64) (*model.DiffComment, error) {
	c, ok := m.diffCmts[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return &c, nil
}

func (m *memCommentStore) ListDiffCommentsByReview(_ context.Context, reviewID int64) ([]model.DiffComment, error) {
	var out []model.DiffComment
	for _, id := range m.diffOrder {
		if c, ok := m.diffCmts[id]; ok && c.ReviewID == reviewID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCommentStore) CreateScreenshotComment(_ context.Context, c model.ScreenshotComment) (model.ScreenshotComment, error) {
	m.seq++
	c.ID = m.seq
	c.Timestamp = time.Now().UTC()
	m.shotCmts[c.ID] = c
	m.shotOrder = append(m.shotOrder, c.ID)
	return c, nil
}

func (m *memCommentStore) GetScreenshotComment(_ context.Context, id int64) (*model.ScreenshotComment, error) {
	c, ok := m.shotCmts[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return &c, nil
}

func (m *memCommentStore) ListScreenshotCommentsByReview(_ context.Context, reviewID int64) ([]model.ScreenshotComment, error) {
	var out []model.ScreenshotComment
	for _, id := range m.shotOrder {
		if c, ok := m.shotCmts[id]; ok && c.ReviewID == reviewID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- diffs / screenshots ---

type memDiffStore struct {
	seq     int64
	fileSeq int64
	sets    map[int64]model.DiffSet
	order   []int64
}

func newMemDiffStore() *memDiffStore {
	return &memDiffStore{sets: make(map[int64]model.DiffSet)}
}

func (m *memDiffStore) CreateDiffSet(_ context.Context, reviewRequestID int64, name string, files []model.FileDiff) (model.DiffSet, error) {
	revision := 1
	for _, ds := range m.sets {
		if ds.ReviewRequestID == reviewRequestID && ds.Revision >= revision {
			revision = ds.Revision + 1
		}
	}

	m.seq++
	ds := model.DiffSet{
		ID:              m.seq,
		ReviewRequestID: reviewRequestID,
		Revision:        revision,
		Name:            name,
		CreatedAt:       time.Now().UTC(),
	}
	for _, f := range files {
		m.fileSeq++
		f.ID = m.fileSeq
		f.DiffSetID = ds.ID
		ds.Files = append(ds.Files, f)
	}
	m.sets[ds.ID] = ds
	m.order = append(m.order, ds.ID)
	return ds, nil
}

func (m *memDiffStore) GetByRevision(_ context.Context, reviewRequestID int64, revision int) (*model.DiffSet, error) {
	for _, ds := range m.sets {
		if ds.ReviewRequestID == reviewRequestID && ds.Revision == revision {
			ds := ds
			return &ds, nil
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memDiffStore) ListByReviewRequest(_ context.Context, reviewRequestID int64, historyOnly bool) ([]model.DiffSet, error) {
	var out []model.DiffSet
	for _, id := range m.order {
		ds, ok := m.sets[id]
		if !ok || ds.ReviewRequestID != reviewRequestID {
			continue
		}
		if historyOnly && !ds.InHistory {
			continue
		}
		out = append(out, ds)
	}
	return out, nil
}

func (m *memDiffStore) GetFileDiff(_ context.Context, id int64) (*model.FileDiff, error) {
	for _, ds := range m.sets {
		for _, f := range ds.Files {
			if f.ID == id {
				f := f
				return &f, nil
			}
		}
	}
	return nil, fault.ErrNotFound
}

func (m *memDiffStore) FileDiffBelongs(_ context.Context, fileDiffID, reviewRequestID int64) (bool, error) {
	for _, ds := range m.sets {
		if ds.ReviewRequestID != reviewRequestID {
			continue
		}
		for _, f := range ds.Files {
			if f.ID == fileDiffID {
				return true, nil
			}
		}
	}
	return false, nil
}

type memScreenshotStore struct {
	seq   int64
	shots map[int64]model.Screenshot
	order []int64
}

func newMemScreenshotStore() *memScreenshotStore {
	return &memScreenshotStore{shots: make(map[int64]model.Screenshot)}
}

func (m *memScreenshotStore) Create(_ context.Context, s model.Screenshot) (model.Screenshot, error) {
	m.seq++
	s.ID = m.seq
	m.shots[s.ID] = s
	m.order = append(m.order, s.ID)
	return s, nil
}

func (m *memScreenshotStore) GetByID(_ context.Context, id int64) (*model.Screenshot, error) {
	s, ok := m.shots[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return &s, nil
}

func (m *memScreenshotStore) ListByReviewRequest(_ context.Context, reviewRequestID int64) ([]model.Screenshot, error) {
	var out []model.Screenshot
	for _, id := range m.order {
		if s, ok := m.shots[id]; ok && s.ReviewRequestID == reviewRequestID {
			out = append(out, s)
		}
	}
	return out, nil
}

// --- notifier ---

type captureNotifier struct {
	sent []model.Notification
}

func (n *captureNotifier) Notify(_ context.Context, notification model.Notification) error {
	n.sent = append(n.sent, notification)
	return nil
}

// --- fixture ---

// env wires every service over the in-memory stores with notifications on.
type watchKey struct {
	userID    int64
	requestID int64
}

type memWatchStore struct {
	watched map[watchKey]bool
	order   []watchKey
}

func newMemWatchStore() *memWatchStore {
	return &memWatchStore{watched: make(map[watchKey]bool)}
}

func (m *memWatchStore) Watch(_ context.Context, userID, reviewRequestID int64) error {
	k := watchKey{userID, reviewRequestID}
	if m.watched[k] {
		return nil
	}
	m.watched[k] = true
	m.order = append(m.order, k)
	return nil
}

func (m *memWatchStore) Unwatch(_ context.Context, userID, reviewRequestID int64) error {
	k := watchKey{userID, reviewRequestID}
	if !m.watched[k] {
		return fault.ErrNotFound
	}
	delete(m.watched, k)
	for i, other := range m.order {
		if other == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memWatchStore) ListWatchedIDs(_ context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for _, k := range m.order {
		if k.userID == userID {
			ids = append(ids, k.requestID)
		}
	}
	return ids, nil
}

type env struct {
	users       *memUserStore
	sites       *memSiteStore
	groups      *memGroupStore
	repos       *memRepositoryStore
	requests    *memRequestStore
	drafts      *memDraftStore
	reviews     *memReviewStore
	comments    *memCommentStore
	diffs       *memDiffStore
	screenshots *memScreenshotStore
	watches     *memWatchStore
	notifier    *captureNotifier

	perms      *application.Permissions
	requestSvc *application.RequestService
	draftSvc   *application.DraftService
	reviewSvc  *application.ReviewService
	diffSvc    *application.DiffService
}

func newEnv() *env {
	e := &env{
		users:       newMemUserStore(),
		sites:       newMemSiteStore(),
		groups:      newMemGroupStore(),
		repos:       newMemRepositoryStore(),
		requests:    newMemRequestStore(),
		reviews:     newMemReviewStore(),
		comments:    newMemCommentStore(),
		diffs:       newMemDiffStore(),
		screenshots: newMemScreenshotStore(),
		watches:     newMemWatchStore(),
		notifier:    &captureNotifier{},
	}
	e.drafts = newMemDraftStore(e.requests, e.diffs)

	e.perms = application.NewPermissions(e.sites, e.groups)
	resolver := application.NewRecipientResolver(e.users, e.groups)
	e.requestSvc = application.NewRequestService(e.requests, e.users, e.repos, e.watches, e.perms)
	e.draftSvc = application.NewDraftService(e.drafts, e.requests, e.users, e.groups, e.perms, resolver, e.notifier, true)
	e.reviewSvc = application.NewReviewService(e.reviews, e.requests, e.comments, e.diffs, e.screenshots, e.perms, resolver, e.notifier, true)
	e.diffSvc = application.NewDiffService(e.diffs, e.screenshots, e.drafts, e.requests, e.perms)

	return e
}

func (e *env) addUser(username string) *model.User {
	u, _ := e.users.Create(context.Background(), model.User{
		Username:      username,
		Email:         username + "@example.com",
		APIToken:      "token-" + username,
		NotifyEnabled: true,
		CreatedAt:     time.Now().UTC(),
	})
	return &u
}

func (e *env) addRepository(siteID *int64) model.Repository {
	repo, _ := e.repos.Create(context.Background(), model.Repository{
		LocalSiteID: siteID,
		Name:        "main-repo",
		Path:        "/srv/git/main.git",
		Tool:        "Git",
	})
	return repo
}
