package usecase

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/inkstone-site/inkstone/internal/obs"
	"github.com/inkstone-site/inkstone/internal/pagination"
)

// ContentUseCase serves the paginated content index. Reads prefer the
// live backend and fall back to the static source on failure; cursor
// semantics are identical either way because both backends share the
// paginator and its comparator. Writes never go near the fallback.
type ContentUseCase struct {
	live   pagination.Backend // nil when no live store is configured
	static pagination.Backend
	logger *logrus.Logger
}

// NewContentUseCase wires the two backends. static must not be nil.
func NewContentUseCase(live, static pagination.Backend, logger *logrus.Logger) *ContentUseCase {
	return &ContentUseCase{
		live:   live,
		static: static,
		logger: logger,
	}
}

// Page decodes the cursor tokens and produces one page of the index.
// Malformed tokens surface pagination.ErrBadCursor; supplying both
// cursors surfaces pagination.ErrCursorConflict.
func (uc *ContentUseCase) Page(ctx context.Context, pageSize int, afterToken, beforeToken string) (*pagination.Page, error) {
	var after, before *pagination.Cursor
	if afterToken != "" {
		cur, err := pagination.DecodeCursor(afterToken)
		if err != nil {
			return nil, err
		}
		after = &cur
	}
	if beforeToken != "" {
		cur, err := pagination.DecodeCursor(beforeToken)
		if err != nil {
			return nil, err
		}
		before = &cur
	}

	if uc.live != nil {
		page, err := pagination.Paginate(ctx, uc.live, pageSize, after, before)
		if err == nil {
			return page, nil
		}
		if errors.Is(err, pagination.ErrCursorConflict) {
			return nil, err
		}
		obs.ContentFallbacksTotal.Inc()
		uc.logger.WithContext(ctx).WithError(err).
			Warn("live content index unavailable, serving static fallback")
	}
	return pagination.Paginate(ctx, uc.static, pageSize, after, before)
}
