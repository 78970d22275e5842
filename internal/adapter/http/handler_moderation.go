package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/pagination"
	"github.com/inkstone-site/inkstone/internal/usecase"
)

// ModerationService defines the behavior the handler depends on.
type ModerationService interface {
	Apply(ctx context.Context, commentID string, action domain.ModerationAction, actor *domain.Actor, reason string) (*usecase.ApplyResult, error)
	ApplyBulk(ctx context.Context, ids []string, action domain.ModerationAction, actor *domain.Actor, reason string) []usecase.BulkResult
	Queue(ctx context.Context, actor *domain.Actor, status *domain.CommentStatus, after *pagination.Cursor) (*usecase.QueuePage, error)
	AuditTrail(ctx context.Context, actor *domain.Actor, commentID string) ([]*domain.AuditEntry, error)
}

// QueueCache holds the rendered default queue view between moderation
// writes.
type QueueCache interface {
	GetQueue() (interface{}, bool)
	SetQueue(value interface{})
}

// ModerationHandler handles the staff moderation surface
type ModerationHandler struct {
	moderation ModerationService
	cache      QueueCache
}

// NewModerationHandler creates a new moderation handler. cache may be
// nil.
func NewModerationHandler(moderation ModerationService, cache QueueCache) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, cache: cache}
}

// RegisterRoutes registers moderation routes
func (h *ModerationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/moderation/comments/{id}/actions", h.ApplyAction).Methods("POST")
	router.HandleFunc("/api/v1/moderation/comments/{id}/audit", h.GetAuditTrail).Methods("GET")
	router.HandleFunc("/api/v1/moderation/bulk", h.ApplyBulk).Methods("POST")
	router.HandleFunc("/api/v1/moderation/queue", h.GetQueue).Methods("GET")
}

type actionRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

type bulkRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"`
	Reason string   `json:"reason"`
}

// ApplyAction handles a single moderation action
func (h *ModerationHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(r.Context(), w)
	if actor == nil {
		return
	}

	commentID := mux.Vars(r)["id"]
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid request body"})
		return
	}

	result, err := h.moderation.Apply(r.Context(), commentID, domain.ModerationAction(req.Action), actor, req.Reason)
	if err != nil {
		writeModerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"status": result.Status,
		"slug":   result.Slug,
	})
}

// ApplyBulk handles a bulk moderation action with per-id outcomes
func (h *ModerationHandler) ApplyBulk(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(r.Context(), w)
	if actor == nil {
		return
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid request body"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "ids are required"})
		return
	}

	results := h.moderation.ApplyBulk(r.Context(), req.IDs, domain.ModerationAction(req.Action), actor, req.Reason)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"results": results,
	})
}

// GetQueue handles listing the moderation queue
func (h *ModerationHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(r.Context(), w)
	if actor == nil {
		return
	}

	// The cache only ever holds the default view, so the permission check
	// must run before serving from it.
	if err := domain.RequirePermission(actor, domain.PermViewQueue); err != nil {
		writeModerationError(w, err)
		return
	}

	var status *domain.CommentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := domain.ParseCommentStatus(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid status filter"})
			return
		}
		status = &parsed
	}

	after, err := decodeOptionalCursor(r.URL.Query().Get("after"))
	if err != nil {
		writeModerationError(w, err)
		return
	}

	// Only the unfiltered first page is cached; it is the view the
	// moderation dashboard polls.
	cacheable := status == nil && after == nil
	if cacheable && h.cache != nil {
		if cached, ok := h.cache.GetQueue(); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	page, err := h.moderation.Queue(r.Context(), actor, status, after)
	if err != nil {
		writeModerationError(w, err)
		return
	}

	comments := page.Comments
	if comments == nil {
		comments = []*domain.Comment{}
	}
	response := map[string]interface{}{
		"ok":          true,
		"comments":    comments,
		"next_cursor": encodeCursor(page.NextCursor),
	}
	if cacheable && h.cache != nil {
		h.cache.SetQueue(response)
	}
	writeJSON(w, http.StatusOK, response)
}

// GetAuditTrail handles retrieving a comment's moderation history
func (h *ModerationHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	actor := requireActor(r.Context(), w)
	if actor == nil {
		return
	}

	commentID := mux.Vars(r)["id"]
	entries, err := h.moderation.AuditTrail(r.Context(), actor, commentID)
	if err != nil {
		writeModerationError(w, err)
		return
	}

	if entries == nil {
		entries = []*domain.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"entries": entries,
	})
}
