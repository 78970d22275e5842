package pagination

import (
	"context"
	"errors"

	"github.com/inkstone-site/inkstone/internal/domain"
)

// ErrCursorConflict reports that both an after and a before cursor were
// supplied; exactly one may be used per request.
var ErrCursorConflict = errors.New("after and before cursors are mutually exclusive")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Backend is a source of content index rows. Both the live store and the
// static fallback implement it with identical ordering semantics, built
// on the shared CompareDesc comparator.
type Backend interface {
	// PageAfter returns up to limit rows strictly after cur in the
	// canonical descending order. A nil cursor starts from the top.
	PageAfter(ctx context.Context, cur *Cursor, limit int) ([]domain.ContentEntry, error)

	// PageBefore returns up to limit rows strictly before cur, walking
	// the canonical order in reverse: the row nearest the cursor comes
	// first in the result.
	PageBefore(ctx context.Context, cur *Cursor, limit int) ([]domain.ContentEntry, error)
}

// Page is one window of the content index in canonical order, with
// cursors for continuing in either direction. A nil cursor means there is
// no page that way.
type Page struct {
	Items      []domain.ContentEntry
	NextCursor *Cursor
	PrevCursor *Cursor
}

// Paginate produces a stable page over the backend. Item order is always
// canonical regardless of which direction was navigated.
func Paginate(ctx context.Context, b Backend, pageSize int, after, before *Cursor) (*Page, error) {
	if after != nil && before != nil {
		return nil, ErrCursorConflict
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	if before != nil {
		return paginateBackward(ctx, b, pageSize, before)
	}
	return paginateForward(ctx, b, pageSize, after)
}

func paginateForward(ctx context.Context, b Backend, pageSize int, after *Cursor) (*Page, error) {
	rows, err := b.PageAfter(ctx, after, pageSize+1)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		page.NextCursor = cursorOf(rows[len(rows)-1])
	}
	page.Items = rows
	// An after cursor proves a previous page exists.
	if after != nil && len(rows) > 0 {
		page.PrevCursor = cursorOf(rows[0])
	}
	return page, nil
}

func paginateBackward(ctx context.Context, b Backend, pageSize int, before *Cursor) (*Page, error) {
	rows, err := b.PageBefore(ctx, before, pageSize+1)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	hasPrev := false
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		hasPrev = true
	}
	// Restore canonical order before returning.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	page.Items = rows
	if hasPrev {
		page.PrevCursor = cursorOf(rows[0])
	}
	// A before cursor proves a next page exists.
	if len(rows) > 0 {
		page.NextCursor = cursorOf(rows[len(rows)-1])
	}
	return page, nil
}

func cursorOf(e domain.ContentEntry) *Cursor {
	return &Cursor{TS: e.InsertedAt, Key: e.Slug}
}
