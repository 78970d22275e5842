package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/ports"
)

// PostgresAuditRepository implements the append-only audit log using
// PostgreSQL. There is deliberately no update or delete path.
type PostgresAuditRepository struct {
	db *sql.DB
}

// NewPostgresAuditRepository creates a new PostgreSQL audit repository
func NewPostgresAuditRepository(db *sql.DB) ports.AuditRepository {
	return &PostgresAuditRepository{db: db}
}

// Append writes one immutable audit entry
func (r *PostgresAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode audit metadata: %w", err)
	}

	query := `
		INSERT INTO moderation_audit (id, comment_id, action, actor_id, actor_name, actor_roles, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.CommentID,
		entry.Action,
		entry.ActorID,
		entry.ActorName,
		pq.Array(domain.RoleStrings(entry.ActorRoles)),
		metadata,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// ListByComment retrieves a comment's audit trail in application order
func (r *PostgresAuditRepository) ListByComment(ctx context.Context, commentID string) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, comment_id, action, actor_id, actor_name, actor_roles, metadata, created_at
		FROM moderation_audit
		WHERE comment_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry

	for rows.Next() {
		var entry domain.AuditEntry
		var roles []string
		var metadata []byte

		err := rows.Scan(
			&entry.ID,
			&entry.CommentID,
			&entry.Action,
			&entry.ActorID,
			&entry.ActorName,
			pq.Array(&roles),
			&metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		for _, role := range roles {
			parsed, err := domain.ParseRole(role)
			if err != nil {
				return nil, fmt.Errorf("stored audit entry %s has unknown role %q", entry.ID, role)
			}
			entry.ActorRoles = append(entry.ActorRoles, parsed)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}
