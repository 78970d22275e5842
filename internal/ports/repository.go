package ports

import (
	"context"
	"time"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/pagination"
)

// CommentRepository defines the interface for comment persistence
type CommentRepository interface {
	// Create saves a new comment in the pending state
	Create(ctx context.Context, comment *domain.Comment) error

	// FindByID retrieves a comment by its ID; domain.ErrCommentNotFound
	// when absent
	FindByID(ctx context.Context, id string) (*domain.Comment, error)

	// UpdateStatus performs the single-row conditional status update.
	// Returns domain.ErrCommentNotFound when no row matched.
	UpdateStatus(ctx context.Context, id string, status domain.CommentStatus, moderatedAt time.Time) error

	// ListApproved returns approved comments for a slug in descending
	// (created_at, id) order, keyset-paginated
	ListApproved(ctx context.Context, slug string, after *pagination.Cursor, limit int) ([]*domain.Comment, error)

	// ListByStatus returns comments across all slugs for the moderation
	// queue, newest first; nil status means every status
	ListByStatus(ctx context.Context, status *domain.CommentStatus, after *pagination.Cursor, limit int) ([]*domain.Comment, error)
}

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	// Append writes one immutable audit entry
	Append(ctx context.Context, entry *domain.AuditEntry) error

	// ListByComment returns a comment's audit trail in application order
	ListByComment(ctx context.Context, commentID string) ([]*domain.AuditEntry, error)
}

// ContactRepository defines the interface for contact message persistence
type ContactRepository interface {
	// Create saves a new contact message
	Create(ctx context.Context, msg *domain.ContactMessage) error
}

// CacheSignal receives staleness notifications after a confirmed
// moderation write. Implementations must tolerate concurrent callers.
type CacheSignal interface {
	// InvalidateContent marks cached views of a content page stale
	InvalidateContent(ctx context.Context, slug string)

	// InvalidateQueue marks the cached moderation list stale
	InvalidateQueue(ctx context.Context)
}
