package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/obs"
	"github.com/inkstone-site/inkstone/internal/pagination"
	"github.com/inkstone-site/inkstone/internal/ports"
)

// MaxReasonLength caps the free-text reason recorded with a transition.
const MaxReasonLength = 500

const queuePageSize = 50

// ApplyResult reports the outcome of a single moderation action.
type ApplyResult struct {
	Status domain.CommentStatus `json:"status"`
	Slug   string               `json:"slug"`
}

// BulkResult is the per-id outcome of a bulk action. Bulk actions are
// independent applications; partial success is expected and reported
// per id, never rolled up into one failure.
type BulkResult struct {
	ID     string               `json:"id"`
	Status domain.CommentStatus `json:"status,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// QueuePage is one window of the moderation queue.
type QueuePage struct {
	Comments   []*domain.Comment
	NextCursor *pagination.Cursor
}

// ModerationUseCase owns the comment lifecycle state machine. Every
// transition appends an immutable audit entry; the audit log is the
// authoritative history, so concurrent moderation of the same comment is
// last-write-wins on status but never loses an entry.
type ModerationUseCase struct {
	comments ports.CommentRepository
	audits   ports.AuditRepository
	cache    ports.CacheSignal
	logger   *logrus.Logger
	now      func() time.Time
}

// NewModerationUseCase creates the moderation engine.
func NewModerationUseCase(
	comments ports.CommentRepository,
	audits ports.AuditRepository,
	cache ports.CacheSignal,
	logger *logrus.Logger,
) *ModerationUseCase {
	return &ModerationUseCase{
		comments: comments,
		audits:   audits,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Apply performs one state transition. Authorization is checked first and
// fails closed; not-found is reported distinctly from forbidden. Cache
// invalidation is signalled only after the write is confirmed.
func (uc *ModerationUseCase) Apply(ctx context.Context, commentID string, action domain.ModerationAction, actor *domain.Actor, reason string) (*ApplyResult, error) {
	if err := domain.RequirePermission(actor, domain.PermModerate); err != nil {
		return nil, err
	}
	newStatus, err := action.TargetStatus()
	if err != nil {
		return nil, err
	}
	if uc.comments == nil {
		return nil, domain.ErrBackendUnavailable
	}

	comment, err := uc.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	moderatedAt := uc.now().UTC()
	if err := uc.comments.UpdateStatus(ctx, commentID, newStatus, moderatedAt); err != nil {
		return nil, err
	}

	if len(reason) > MaxReasonLength {
		reason = reason[:MaxReasonLength]
	}
	metadata := domain.Metadata{
		"previous_status": domain.StringValue(string(comment.Status)),
		"bulk":            domain.BoolValue(false),
	}
	if reason != "" {
		metadata["reason"] = domain.StringValue(reason)
	}
	entry := domain.NewAuditEntry(commentID, action, actor, metadata)
	if err := uc.audits.Append(ctx, entry); err != nil {
		// The status write landed but the trail is incomplete; surface it
		// so the caller retries rather than trusting a silent gap.
		uc.logger.WithContext(ctx).WithError(err).WithField("comment_id", commentID).
			Error("audit append failed after status update")
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	// Write confirmed; now the cached views are stale.
	if uc.cache != nil {
		uc.cache.InvalidateContent(ctx, comment.ContentSlug)
		uc.cache.InvalidateQueue(ctx)
	}

	obs.ModerationActionsTotal.WithLabelValues(string(action)).Inc()
	uc.logger.WithContext(ctx).WithFields(logrus.Fields{
		"comment_id": commentID,
		"action":     action,
		"actor_id":   actor.ID,
		"from":       comment.Status,
		"to":         newStatus,
	}).Info("moderation action applied")

	return &ApplyResult{Status: newStatus, Slug: comment.ContentSlug}, nil
}

// ApplyBulk applies the same action to each id independently and reports
// per-id outcomes. No multi-row transaction is assumed.
func (uc *ModerationUseCase) ApplyBulk(ctx context.Context, ids []string, action domain.ModerationAction, actor *domain.Actor, reason string) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		res, err := uc.Apply(ctx, id, action, actor, reason)
		if err != nil {
			results = append(results, BulkResult{ID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ID: id, Status: res.Status})
	}
	return results
}

// Queue lists comments for the moderation surface, newest first.
// Requires view-queue.
func (uc *ModerationUseCase) Queue(ctx context.Context, actor *domain.Actor, status *domain.CommentStatus, after *pagination.Cursor) (*QueuePage, error) {
	if err := domain.RequirePermission(actor, domain.PermViewQueue); err != nil {
		return nil, err
	}
	if uc.comments == nil {
		return nil, domain.ErrBackendUnavailable
	}

	comments, err := uc.comments.ListByStatus(ctx, status, after, queuePageSize+1)
	if err != nil {
		return nil, err
	}
	page := &QueuePage{}
	if len(comments) > queuePageSize {
		comments = comments[:queuePageSize]
		last := comments[len(comments)-1]
		page.NextCursor = &pagination.Cursor{TS: last.CreatedAt, Key: last.ID}
	}
	page.Comments = comments
	return page, nil
}

// AuditTrail returns a comment's full transition history. Requires
// read-audit; unknown comments are not-found, not an empty trail.
func (uc *ModerationUseCase) AuditTrail(ctx context.Context, actor *domain.Actor, commentID string) ([]*domain.AuditEntry, error) {
	if err := domain.RequirePermission(actor, domain.PermReadAudit); err != nil {
		return nil, err
	}
	if uc.comments == nil {
		return nil, domain.ErrBackendUnavailable
	}
	if _, err := uc.comments.FindByID(ctx, commentID); err != nil {
		return nil, err
	}
	return uc.audits.ListByComment(ctx, commentID)
}
