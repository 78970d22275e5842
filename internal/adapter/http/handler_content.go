package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/pagination"
)

// ContentService serves pages of the published content index.
type ContentService interface {
	Page(ctx context.Context, pageSize int, afterToken, beforeToken string) (*pagination.Page, error)
}

// ContentHandler handles the public content index listing
type ContentHandler struct {
	content ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(content ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// RegisterRoutes registers content routes
func (h *ContentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/content", h.ListContent).Methods("GET")
}

// ListContent handles one page of the content index
func (h *ContentHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pageSize := parsePageSize(query.Get("page_size"), pagination.DefaultPageSize)

	page, err := h.content.Page(r.Context(), pageSize, query.Get("after"), query.Get("before"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := page.Items
	if items == nil {
		items = []domain.ContentEntry{}
	}
	w.Header().Set("Cache-Control", "public, max-age=30")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries":     items,
		"next_cursor": encodeCursor(page.NextCursor),
		"prev_cursor": encodeCursor(page.PrevCursor),
	})
}
