package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/pagination"
)

// StaticContentIndex serves the content index from a JSON snapshot
// generated at publish time. It is the read fallback when the live store
// is down, so its ordering and cursor behaviour must match the live
// backend exactly; both lean on the shared comparator.
type StaticContentIndex struct {
	entries []domain.ContentEntry // canonical descending order
}

// NewStaticContentIndex loads and sorts the snapshot file.
func NewStaticContentIndex(path string) (*StaticContentIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content index %s: %w", path, err)
	}
	return ParseStaticContentIndex(data)
}

// ParseStaticContentIndex builds the index from raw snapshot JSON.
func ParseStaticContentIndex(data []byte) (*StaticContentIndex, error) {
	var entries []domain.ContentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse content index: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return pagination.CompareDesc(entries[i].InsertedAt, entries[i].Slug, entries[j].InsertedAt, entries[j].Slug) < 0
	})

	return &StaticContentIndex{entries: entries}, nil
}

// Len reports how many entries the snapshot holds.
func (b *StaticContentIndex) Len() int {
	return len(b.entries)
}

// PageAfter returns up to limit entries strictly after the cursor in the
// canonical descending order
func (b *StaticContentIndex) PageAfter(_ context.Context, cur *pagination.Cursor, limit int) ([]domain.ContentEntry, error) {
	start := 0
	if cur != nil {
		start = sort.Search(len(b.entries), func(i int) bool {
			return pagination.CompareDesc(b.entries[i].InsertedAt, b.entries[i].Slug, cur.TS, cur.Key) > 0
		})
	}

	end := start + limit
	if end > len(b.entries) {
		end = len(b.entries)
	}
	return append([]domain.ContentEntry(nil), b.entries[start:end]...), nil
}

// PageBefore returns up to limit entries strictly before the cursor,
// nearest the cursor first
func (b *StaticContentIndex) PageBefore(_ context.Context, cur *pagination.Cursor, limit int) ([]domain.ContentEntry, error) {
	// First index at or after the cursor position; everything earlier in
	// the slice sorts strictly before the cursor.
	end := sort.Search(len(b.entries), func(i int) bool {
		return pagination.CompareDesc(b.entries[i].InsertedAt, b.entries[i].Slug, cur.TS, cur.Key) >= 0
	})

	out := make([]domain.ContentEntry, 0, limit)
	for i := end - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, b.entries[i])
	}
	return out, nil
}
