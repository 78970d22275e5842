package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/intake"
	"github.com/inkstone-site/inkstone/internal/pagination"
	"github.com/inkstone-site/inkstone/internal/ratelimit"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// countingStore is an in-memory counter store that also records how many
// Incr calls it received, so tests can prove a code path never consumed
// a rate-limit slot.
type countingStore struct {
	counts map[string]int64
	calls  int
	err    error
}

func newCountingStore() *countingStore {
	return &countingStore{counts: make(map[string]int64)}
}

func (s *countingStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.calls++
	if s.err != nil {
		return 0, 0, s.err
	}
	s.counts[key]++
	return s.counts[key], window, nil
}

// fakeCommentRepo records created comments and every repository call in
// order, shared with the other fakes through the calls slice pointer.
type fakeCommentRepo struct {
	comments  map[string]*domain.Comment
	created   []*domain.Comment
	createErr error
	updateErr error
	calls     *[]string
}

func newFakeCommentRepo() *fakeCommentRepo {
	log := []string{}
	return &fakeCommentRepo{comments: make(map[string]*domain.Comment), calls: &log}
}

func (r *fakeCommentRepo) record(call string) {
	if r.calls != nil {
		*r.calls = append(*r.calls, call)
	}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.record("create")
	if r.createErr != nil {
		return r.createErr
	}
	r.comments[comment.ID] = comment
	r.created = append(r.created, comment)
	return nil
}

func (r *fakeCommentRepo) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	r.record("find")
	comment, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) UpdateStatus(_ context.Context, id string, status domain.CommentStatus, moderatedAt time.Time) error {
	r.record("update")
	if r.updateErr != nil {
		return r.updateErr
	}
	comment, ok := r.comments[id]
	if !ok {
		return domain.ErrCommentNotFound
	}
	comment.Status = status
	comment.ModeratedAt = &moderatedAt
	comment.UpdatedAt = moderatedAt
	return nil
}

func (r *fakeCommentRepo) ListApproved(_ context.Context, slug string, _ *pagination.Cursor, limit int) ([]*domain.Comment, error) {
	r.record("list_approved")
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.ContentSlug == slug && c.Status == domain.CommentStatusApproved {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) ListByStatus(_ context.Context, status *domain.CommentStatus, _ *pagination.Cursor, limit int) ([]*domain.Comment, error) {
	r.record("list_by_status")
	var out []*domain.Comment
	for _, c := range r.comments {
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeContactRepo struct {
	created   []*domain.ContactMessage
	createErr error
}

func (r *fakeContactRepo) Create(_ context.Context, msg *domain.ContactMessage) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, msg)
	return nil
}

func testLimits() SubmissionLimits {
	return SubmissionLimits{
		CommentIPLimit:     100,
		CommentIPWindow:    time.Minute,
		CommentSlugLimit:   100,
		CommentSlugWindow:  time.Minute,
		ContactIPLimit:     100,
		ContactIPWindow:    time.Minute,
		ContactEmailLimit:  100,
		ContactEmailWindow: time.Minute,
	}
}

func validCommentSubmission() intake.CommentSubmission {
	return intake.CommentSubmission{
		Slug:       "hello-world",
		Author:     "Ada",
		Email:      "ada@example.com",
		Body:       "Lovely post.",
		RenderedAt: time.Now().Add(-10 * time.Second).UnixMilli(),
	}
}

func newSubmissionFixture(store *countingStore, limits SubmissionLimits) (*SubmissionUseCase, *fakeCommentRepo, *fakeContactRepo) {
	comments := newFakeCommentRepo()
	contacts := &fakeContactRepo{}
	uc := NewSubmissionUseCase(
		intake.NewFilter(),
		ratelimit.NewLimiter(store, newTestLogger()),
		comments,
		contacts,
		limits,
		"identity-hash-secret",
		newTestLogger(),
	)
	return uc, comments, contacts
}

func TestSubmitComment_AcceptedStoresPendingWithHashedIdentity(t *testing.T) {
	store := newCountingStore()
	uc, comments, _ := newSubmissionFixture(store, testLimits())

	err := uc.SubmitComment(context.Background(), validCommentSubmission(), "203.0.113.9", "test-agent/1.0")
	require.NoError(t, err)

	require.Len(t, comments.created, 1)
	stored := comments.created[0]
	assert.Equal(t, domain.CommentStatusPending, stored.Status)
	assert.Equal(t, "hello-world", stored.ContentSlug)
	assert.NotEqual(t, "ada@example.com", stored.AuthorEmailHash)
	assert.Len(t, stored.AuthorEmailHash, 64, "email hash should be hex sha256")
	assert.NotEqual(t, "203.0.113.9", stored.IPHash)
	assert.Len(t, stored.IPHash, 64, "ip hash should be hex sha256")
	assert.Equal(t, "test-agent/1.0", stored.UserAgent)
}

func TestSubmitComment_FilteredSubmissionNeverReachesLimiterOrStore(t *testing.T) {
	store := newCountingStore()
	uc, comments, _ := newSubmissionFixture(store, testLimits())

	sub := validCommentSubmission()
	sub.Honeypot = "gotcha"

	err := uc.SubmitComment(context.Background(), sub, "203.0.113.9", "test-agent/1.0")

	var rejection *intake.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Zero(t, store.calls, "a filtered submission must not consume a rate-limit slot")
	assert.Empty(t, comments.created)
}

func TestSubmitComment_SlowDwellNeverReachesLimiter(t *testing.T) {
	store := newCountingStore()
	uc, comments, _ := newSubmissionFixture(store, testLimits())

	sub := validCommentSubmission()
	sub.RenderedAt = time.Now().UnixMilli() // submitted instantly

	err := uc.SubmitComment(context.Background(), sub, "203.0.113.9", "test-agent/1.0")

	var rejection *intake.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Zero(t, store.calls)
	assert.Empty(t, comments.created)
}

func TestSubmitComment_DeniedWhenEitherKeyExceeded(t *testing.T) {
	limits := testLimits()
	limits.CommentSlugLimit = 1
	store := newCountingStore()
	uc, comments, _ := newSubmissionFixture(store, limits)
	ctx := context.Background()

	// Two different IPs hit the same slug; the slug budget is one.
	require.NoError(t, uc.SubmitComment(ctx, validCommentSubmission(), "203.0.113.1", "ua"))
	err := uc.SubmitComment(ctx, validCommentSubmission(), "203.0.113.2", "ua")

	var limited *RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.False(t, limited.ResetAt.IsZero())
	assert.Len(t, comments.created, 1, "denied submission must not be stored")
}

func TestSubmitComment_IPBudgetSpansSlugs(t *testing.T) {
	limits := testLimits()
	limits.CommentIPLimit = 2
	store := newCountingStore()
	uc, _, _ := newSubmissionFixture(store, limits)
	ctx := context.Background()

	for _, slug := range []string{"first-post", "second-post"} {
		sub := validCommentSubmission()
		sub.Slug = slug
		require.NoError(t, uc.SubmitComment(ctx, sub, "203.0.113.9", "ua"))
	}

	sub := validCommentSubmission()
	sub.Slug = "third-post"
	err := uc.SubmitComment(ctx, sub, "203.0.113.9", "ua")

	var limited *RateLimitError
	assert.ErrorAs(t, err, &limited)
}

func TestSubmitComment_StoreErrorIsRetryable(t *testing.T) {
	store := newCountingStore()
	uc, comments, _ := newSubmissionFixture(store, testLimits())
	comments.createErr = errors.New("connection refused")

	err := uc.SubmitComment(context.Background(), validCommentSubmission(), "203.0.113.9", "ua")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestSubmitComment_NoRepositoryIsRetryable(t *testing.T) {
	store := newCountingStore()
	uc := NewSubmissionUseCase(
		intake.NewFilter(),
		ratelimit.NewLimiter(store, newTestLogger()),
		nil,
		nil,
		testLimits(),
		"identity-hash-secret",
		newTestLogger(),
	)

	err := uc.SubmitComment(context.Background(), validCommentSubmission(), "203.0.113.9", "ua")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestSubmitContact_AcceptedHashesIdentity(t *testing.T) {
	store := newCountingStore()
	uc, _, contacts := newSubmissionFixture(store, testLimits())

	sub := intake.ContactSubmission{
		Name:       "Ada",
		Email:      "ada@example.com",
		Subject:    "Hello",
		Message:    "I enjoyed the piece on rivers.",
		RenderedAt: time.Now().Add(-10 * time.Second).UnixMilli(),
	}
	require.NoError(t, uc.SubmitContact(context.Background(), sub, "203.0.113.9"))

	require.Len(t, contacts.created, 1)
	stored := contacts.created[0]
	assert.NotEqual(t, "ada@example.com", stored.EmailHash)
	assert.Len(t, stored.EmailHash, 64)
	assert.NotEqual(t, "203.0.113.9", stored.IPHash)
}

func TestSubmitContact_EmailBudgetSpansIPs(t *testing.T) {
	limits := testLimits()
	limits.ContactEmailLimit = 1
	store := newCountingStore()
	uc, _, contacts := newSubmissionFixture(store, limits)
	ctx := context.Background()

	sub := intake.ContactSubmission{
		Name:       "Ada",
		Email:      "ada@example.com",
		Message:    "First message.",
		RenderedAt: time.Now().Add(-10 * time.Second).UnixMilli(),
	}
	require.NoError(t, uc.SubmitContact(ctx, sub, "203.0.113.1"))

	err := uc.SubmitContact(ctx, sub, "203.0.113.2")

	var limited *RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.Len(t, contacts.created, 1)
}
