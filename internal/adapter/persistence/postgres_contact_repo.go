package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/ports"
)

// PostgresContactRepository implements ContactRepository using PostgreSQL
type PostgresContactRepository struct {
	db *sql.DB
}

// NewPostgresContactRepository creates a new PostgreSQL contact repository
func NewPostgresContactRepository(db *sql.DB) ports.ContactRepository {
	return &PostgresContactRepository{db: db}
}

// Create saves a new contact message
func (r *PostgresContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email_hash, subject, message, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		msg.Name,
		msg.EmailHash,
		msg.Subject,
		msg.Message,
		msg.IPHash,
		msg.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}
