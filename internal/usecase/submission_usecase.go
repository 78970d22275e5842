package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/intake"
	"github.com/inkstone-site/inkstone/internal/obs"
	"github.com/inkstone-site/inkstone/internal/ports"
	"github.com/inkstone-site/inkstone/internal/ratelimit"
)

// RateLimitError reports a denied submission and when the caller may
// retry.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded"
}

// SubmissionLimits are the per-dimension budgets enforced on inbound
// writes. Comments gate on (ip, slug); contact gates on (ip, email).
// Both keys of a pair must allow.
type SubmissionLimits struct {
	CommentIPLimit     int
	CommentIPWindow    time.Duration
	CommentSlugLimit   int
	CommentSlugWindow  time.Duration
	ContactIPLimit     int
	ContactIPWindow    time.Duration
	ContactEmailLimit  int
	ContactEmailWindow time.Duration
}

// SubmissionUseCase runs the inbound write pipeline: intake filter, then
// dual-key rate limiting, then the pending insert. Raw email and IP are
// hashed before anything is stored.
type SubmissionUseCase struct {
	filter   *intake.Filter
	limiter  *ratelimit.Limiter
	comments ports.CommentRepository
	contacts ports.ContactRepository
	limits   SubmissionLimits
	hashKey  []byte
	logger   *logrus.Logger
}

// NewSubmissionUseCase creates the submission pipeline. The repositories
// may be nil when no live store is configured; submissions then fail as
// retryable rather than being silently dropped.
func NewSubmissionUseCase(
	filter *intake.Filter,
	limiter *ratelimit.Limiter,
	comments ports.CommentRepository,
	contacts ports.ContactRepository,
	limits SubmissionLimits,
	hashSecret string,
	logger *logrus.Logger,
) *SubmissionUseCase {
	return &SubmissionUseCase{
		filter:   filter,
		limiter:  limiter,
		comments: comments,
		contacts: contacts,
		limits:   limits,
		hashKey:  []byte(hashSecret),
		logger:   logger,
	}
}

// SubmitComment runs a comment submission through the full pipeline.
// Order matters: a filtered submission never touches the rate limiter or
// the store.
func (uc *SubmissionUseCase) SubmitComment(ctx context.Context, sub intake.CommentSubmission, clientIP, userAgent string) error {
	clean, err := uc.filter.CheckComment(sub)
	if err != nil {
		uc.logRejection(ctx, "comment", err)
		return err
	}

	ipHash := uc.hashIdentity(clientIP)
	ipRes := uc.limiter.Check(ctx, "comment:ip:"+ipHash, uc.limits.CommentIPLimit, uc.limits.CommentIPWindow)
	slugRes := uc.limiter.Check(ctx, "comment:slug:"+clean.Slug, uc.limits.CommentSlugLimit, uc.limits.CommentSlugWindow)
	if err := uc.gate(ctx, "comment", map[string]ratelimit.Result{"ip": ipRes, "slug": slugRes}); err != nil {
		return err
	}

	if uc.comments == nil {
		return domain.ErrBackendUnavailable
	}
	comment := domain.NewComment(clean.Slug, clean.Author, uc.hashIdentity(clean.Email), clean.Body, ipHash, userAgent)
	if err := uc.comments.Create(ctx, comment); err != nil {
		obs.SubmissionsTotal.WithLabelValues("comment", "store_error").Inc()
		uc.logger.WithContext(ctx).WithError(err).Error("failed to store comment")
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}

	obs.SubmissionsTotal.WithLabelValues("comment", "accepted").Inc()
	uc.logger.WithContext(ctx).WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"slug":       comment.ContentSlug,
	}).Info("comment accepted for moderation")
	return nil
}

// SubmitContact runs a contact-form submission through the pipeline.
func (uc *SubmissionUseCase) SubmitContact(ctx context.Context, sub intake.ContactSubmission, clientIP string) error {
	clean, err := uc.filter.CheckContact(sub)
	if err != nil {
		uc.logRejection(ctx, "contact", err)
		return err
	}

	ipHash := uc.hashIdentity(clientIP)
	emailHash := uc.hashIdentity(clean.Email)
	ipRes := uc.limiter.Check(ctx, "contact:ip:"+ipHash, uc.limits.ContactIPLimit, uc.limits.ContactIPWindow)
	emailRes := uc.limiter.Check(ctx, "contact:email:"+emailHash, uc.limits.ContactEmailLimit, uc.limits.ContactEmailWindow)
	if err := uc.gate(ctx, "contact", map[string]ratelimit.Result{"ip": ipRes, "email": emailRes}); err != nil {
		return err
	}

	if uc.contacts == nil {
		return domain.ErrBackendUnavailable
	}
	msg := domain.NewContactMessage(clean.Name, emailHash, clean.Subject, clean.Message, ipHash)
	if err := uc.contacts.Create(ctx, msg); err != nil {
		obs.SubmissionsTotal.WithLabelValues("contact", "store_error").Inc()
		uc.logger.WithContext(ctx).WithError(err).Error("failed to store contact message")
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}

	obs.SubmissionsTotal.WithLabelValues("contact", "accepted").Inc()
	return nil
}

// gate requires every configured dimension to allow. The retry hint is
// the latest reset across denied dimensions.
func (uc *SubmissionUseCase) gate(ctx context.Context, kind string, results map[string]ratelimit.Result) error {
	var denied bool
	var resetAt time.Time
	for dimension, res := range results {
		if res.Allowed {
			continue
		}
		denied = true
		if res.ResetAt.After(resetAt) {
			resetAt = res.ResetAt
		}
		obs.RateLimitDenialsTotal.WithLabelValues(dimension).Inc()
		uc.logger.WithContext(ctx).WithFields(logrus.Fields{
			"kind":      kind,
			"dimension": dimension,
		}).Warn("submission rate limited")
	}
	if denied {
		obs.SubmissionsTotal.WithLabelValues(kind, "rate_limited").Inc()
		return &RateLimitError{ResetAt: resetAt}
	}
	return nil
}

func (uc *SubmissionUseCase) logRejection(ctx context.Context, kind string, err error) {
	fields := logrus.Fields{"kind": kind}
	if rej, ok := err.(*intake.RejectionError); ok {
		fields["reason"] = rej.Reason
	}
	obs.SubmissionsTotal.WithLabelValues(kind, "rejected").Inc()
	uc.logger.WithContext(ctx).WithFields(fields).Warn("submission rejected by intake filter")
}

// hashIdentity one-way hashes an email or IP for storage and rate-limit
// keys. Keyed so the hashes are useless without the server secret.
func (uc *SubmissionUseCase) hashIdentity(value string) string {
	mac := hmac.New(sha256.New, uc.hashKey)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
