package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus represents the moderation state of a comment
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
	CommentStatusSpam     CommentStatus = "spam"
)

// ParseCommentStatus validates a status string from the outside world.
func ParseCommentStatus(s string) (CommentStatus, error) {
	switch CommentStatus(s) {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected, CommentStatusSpam:
		return CommentStatus(s), nil
	}
	return "", NewDomainError("invalid comment status")
}

// ModerationAction is a requested transition on a comment. "pending"
// returns a comment to the queue; any state is re-enterable, so an admin
// can correct a mistaken spam flag.
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
	ActionSpam    ModerationAction = "spam"
	ActionPending ModerationAction = "pending"
)

// TargetStatus maps an action to the status it produces.
func (a ModerationAction) TargetStatus() (CommentStatus, error) {
	switch a {
	case ActionApprove:
		return CommentStatusApproved, nil
	case ActionReject:
		return CommentStatusRejected, nil
	case ActionSpam:
		return CommentStatusSpam, nil
	case ActionPending:
		return CommentStatusPending, nil
	}
	return "", ErrInvalidAction
}

// Comment represents a reader-submitted comment on a content page.
// AuthorEmailHash and IPHash are one-way hashes; the raw values never
// survive past intake. Comments are never hard-deleted.
type Comment struct {
	ID              string        `json:"id"`
	ContentSlug     string        `json:"content_slug"`
	AuthorName      string        `json:"author_name"`
	AuthorEmailHash string        `json:"-"`
	Body            string        `json:"body"`
	Status          CommentStatus `json:"status"`
	IPHash          string        `json:"-"`
	UserAgent       string        `json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	ModeratedAt     *time.Time    `json:"moderated_at,omitempty"`
}

// NewComment creates a comment in the pending state. Only the moderation
// engine changes the status afterwards.
func NewComment(slug, authorName, emailHash, body, ipHash, userAgent string) *Comment {
	now := time.Now().UTC()
	return &Comment{
		ID:              uuid.NewString(),
		ContentSlug:     slug,
		AuthorName:      authorName,
		AuthorEmailHash: emailHash,
		Body:            body,
		Status:          CommentStatusPending,
		IPHash:          ipHash,
		UserAgent:       userAgent,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
