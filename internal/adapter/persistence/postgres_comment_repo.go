package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/pagination"
	"github.com/inkstone-site/inkstone/internal/ports"
)

// PostgresCommentRepository implements CommentRepository using PostgreSQL
type PostgresCommentRepository struct {
	db *sql.DB
}

// NewPostgresCommentRepository creates a new PostgreSQL comment repository
func NewPostgresCommentRepository(db *sql.DB) ports.CommentRepository {
	return &PostgresCommentRepository{db: db}
}

const commentColumns = `id, content_slug, author_name, author_email_hash, body, status, ip_hash, user_agent, created_at, updated_at, moderated_at`

// Create saves a new comment in the pending state
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, content_slug, author_name, author_email_hash, body, status, ip_hash, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.ContentSlug,
		comment.AuthorName,
		comment.AuthorEmailHash,
		comment.Body,
		string(comment.Status),
		comment.IPHash,
		comment.UserAgent,
		comment.CreatedAt,
		comment.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// FindByID retrieves a comment by its ID
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE id = $1
	`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	return comment, nil
}

// UpdateStatus performs the single-row conditional status update
func (r *PostgresCommentRepository) UpdateStatus(ctx context.Context, id string, status domain.CommentStatus, moderatedAt time.Time) error {
	query := `
		UPDATE comments
		SET status = $2, moderated_at = $3, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, string(status), moderatedAt)
	if err != nil {
		return fmt.Errorf("failed to update comment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrCommentNotFound
	}

	return nil
}

// ListApproved retrieves approved comments for a content page, newest
// first, keyset-paginated on (created_at, id)
func (r *PostgresCommentRepository) ListApproved(ctx context.Context, slug string, after *pagination.Cursor, limit int) ([]*domain.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE content_slug = $1 AND status = 'approved'
	`
	args := []interface{}{slug}

	if after != nil {
		query += ` AND (created_at, id) < ($2, $3)`
		args = append(args, after.TS, after.Key)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	return r.queryComments(ctx, query, args...)
}

// ListByStatus retrieves comments across all pages for the moderation
// queue; a nil status means every status
func (r *PostgresCommentRepository) ListByStatus(ctx context.Context, status *domain.CommentStatus, after *pagination.Cursor, limit int) ([]*domain.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE 1=1
	`
	var args []interface{}

	if status != nil {
		args = append(args, string(*status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if after != nil {
		query += fmt.Sprintf(` AND (created_at, id) < ($%d, $%d)`, len(args)+1, len(args)+2)
		args = append(args, after.TS, after.Key)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	return r.queryComments(ctx, query, args...)
}

func (r *PostgresCommentRepository) queryComments(ctx context.Context, query string, args ...interface{}) ([]*domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var comment domain.Comment
	var status string
	var moderatedAt sql.NullTime

	err := row.Scan(
		&comment.ID,
		&comment.ContentSlug,
		&comment.AuthorName,
		&comment.AuthorEmailHash,
		&comment.Body,
		&status,
		&comment.IPHash,
		&comment.UserAgent,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&moderatedAt,
	)
	if err != nil {
		return nil, err
	}

	comment.Status = domain.CommentStatus(status)
	if moderatedAt.Valid {
		t := moderatedAt.Time
		comment.ModeratedAt = &t
	}

	return &comment, nil
}
