package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/pagination"
)

// PostgresContentIndex is the live content index backend. Its ordering
// must agree exactly with the static fallback: descending
// (inserted_at, slug), row-value keyset comparisons on both legs.
type PostgresContentIndex struct {
	db *sql.DB
}

// NewPostgresContentIndex creates the live content index backend
func NewPostgresContentIndex(db *sql.DB) pagination.Backend {
	return &PostgresContentIndex{db: db}
}

// PageAfter returns up to limit entries strictly after the cursor in the
// canonical descending order
func (b *PostgresContentIndex) PageAfter(ctx context.Context, cur *pagination.Cursor, limit int) ([]domain.ContentEntry, error) {
	query := `
		SELECT slug, title, tags, inserted_at
		FROM content_index
	`
	var args []interface{}

	if cur != nil {
		query += ` WHERE (inserted_at, slug) < ($1, $2)`
		args = append(args, cur.TS, cur.Key)
	}
	query += fmt.Sprintf(` ORDER BY inserted_at DESC, slug DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	return b.queryEntries(ctx, query, args...)
}

// PageBefore returns up to limit entries strictly before the cursor,
// nearest the cursor first
func (b *PostgresContentIndex) PageBefore(ctx context.Context, cur *pagination.Cursor, limit int) ([]domain.ContentEntry, error) {
	query := `
		SELECT slug, title, tags, inserted_at
		FROM content_index
		WHERE (inserted_at, slug) > ($1, $2)
		ORDER BY inserted_at ASC, slug ASC
		LIMIT $3
	`

	return b.queryEntries(ctx, query, cur.TS, cur.Key, limit)
}

func (b *PostgresContentIndex) queryEntries(ctx context.Context, query string, args ...interface{}) ([]domain.ContentEntry, error) {
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content index: %w", err)
	}
	defer rows.Close()

	var entries []domain.ContentEntry

	for rows.Next() {
		var entry domain.ContentEntry

		err := rows.Scan(
			&entry.Slug,
			&entry.Title,
			pq.Array(&entry.Tags),
			&entry.InsertedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content entry: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content entries: %w", err)
	}

	return entries, nil
}
