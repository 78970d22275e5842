package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/intake"
	"github.com/inkstone-site/inkstone/internal/pagination"
	"github.com/inkstone-site/inkstone/internal/usecase"
)

// Helper methods for writing responses

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// mapDomainError translates pipeline and domain errors to an HTTP status
// and client message, setting Retry-After for rate-limited requests.
// Anything unrecognized is reported as an internal error without leaking
// detail.
func mapDomainError(w http.ResponseWriter, err error) (int, string) {
	var rejection *intake.RejectionError
	var limited *usecase.RateLimitError

	switch {
	case errors.As(err, &rejection):
		return http.StatusBadRequest, rejection.Message
	case errors.As(err, &limited):
		retryAfter := int(time.Until(limited.ResetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		return http.StatusTooManyRequests, "too many submissions, slow down"
	case errors.Is(err, domain.ErrCommentNotFound):
		return http.StatusNotFound, "comment not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrInvalidAction):
		return http.StatusBadRequest, "invalid moderation action"
	case errors.Is(err, pagination.ErrBadCursor):
		return http.StatusBadRequest, "invalid cursor"
	case errors.Is(err, pagination.ErrCursorConflict):
		return http.StatusBadRequest, "after and before cursors are mutually exclusive"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "temporarily unavailable, please retry"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, message := mapDomainError(w, err)
	writeError(w, status, message)
}

// writeModerationError uses the moderation surface's {ok,error} envelope.
func writeModerationError(w http.ResponseWriter, err error) {
	status, message := mapDomainError(w, err)
	writeJSON(w, status, map[string]interface{}{
		"ok":    false,
		"error": message,
	})
}

// encodeCursor renders an optional cursor for a response body.
func encodeCursor(cur *pagination.Cursor) *string {
	if cur == nil {
		return nil
	}
	token := cur.Encode()
	return &token
}

// decodeOptionalCursor parses an optional cursor query parameter.
func decodeOptionalCursor(token string) (*pagination.Cursor, error) {
	if token == "" {
		return nil, nil
	}
	cur, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, err
	}
	return &cur, nil
}

// parsePageSize reads a bounded page size query parameter, falling back
// to def when absent or unparseable.
func parsePageSize(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > pagination.MaxPageSize {
		return pagination.MaxPageSize
	}
	return n
}
