// Command seed loads the static content index snapshot into the live
// content_index table. The publish pipeline runs it after generating the
// snapshot so the live store and the fallback serve the same entries.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/lib/pq"

	"github.com/inkstone-site/inkstone/internal/config"
	"github.com/inkstone-site/inkstone/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	data, err := os.ReadFile(cfg.Content.StaticIndexFile)
	if err != nil {
		log.Fatalf("failed to read content index: %v", err)
	}
	var entries []domain.ContentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Fatalf("failed to parse content index: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	query := `
		INSERT INTO content_index (slug, title, tags, inserted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE
		SET title = EXCLUDED.title, tags = EXCLUDED.tags, inserted_at = EXCLUDED.inserted_at
	`

	for _, entry := range entries {
		tags := entry.Tags
		if tags == nil {
			tags = []string{}
		}
		if _, err := db.ExecContext(ctx, query, entry.Slug, entry.Title, pq.Array(tags), entry.InsertedAt); err != nil {
			log.Fatalf("failed to upsert %s: %v", entry.Slug, err)
		}
	}

	log.Printf("seeded %d content entries", len(entries))
}
