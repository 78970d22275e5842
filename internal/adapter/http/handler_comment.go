package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/intake"
	"github.com/inkstone-site/inkstone/internal/pagination"
)

// SubmissionService defines the behavior the handler depends on.
// Using an interface here makes the handler easily testable with fakes.
type SubmissionService interface {
	SubmitComment(ctx context.Context, sub intake.CommentSubmission, clientIP, userAgent string) error
	SubmitContact(ctx context.Context, sub intake.ContactSubmission, clientIP string) error
}

// CommentLister provides the approved-comment listing for content pages.
type CommentLister interface {
	ListApproved(ctx context.Context, slug string, after *pagination.Cursor, limit int) ([]*domain.Comment, error)
}

// ListingCache holds rendered comment listings between moderation writes.
type ListingCache interface {
	GetContent(slug string) (interface{}, bool)
	SetContent(slug string, value interface{})
}

// CommentHandler handles public comment submission and listing
type CommentHandler struct {
	submissions SubmissionService
	lister      CommentLister
	cache       ListingCache
}

// NewCommentHandler creates a new comment handler. cache may be nil.
func NewCommentHandler(submissions SubmissionService, lister CommentLister, cache ListingCache) *CommentHandler {
	return &CommentHandler{
		submissions: submissions,
		lister:      lister,
		cache:       cache,
	}
}

// RegisterRoutes registers comment routes
func (h *CommentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/comments", h.SubmitComment).Methods("POST")
	router.HandleFunc("/api/v1/comments", h.ListComments).Methods("GET")
}

type commentRequest struct {
	Slug   string `json:"slug"`
	Author string `json:"author"`
	Email  string `json:"email"`
	Body   string `json:"body"`
	// Honeypot must stay empty; submittedAt is the client-reported form
	// render time in unix milliseconds.
	Honeypot    string `json:"honeypot"`
	SubmittedAt int64  `json:"submittedAt"`
}

// commentView is the public projection of an approved comment. Email,
// hashes, and moderation state never leave the server.
type commentView struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type commentListResponse struct {
	Comments   []commentView `json:"comments"`
	NextCursor *string       `json:"nextCursor"`
}

const commentPageSize = 20

// SubmitComment handles public comment submission
func (h *CommentHandler) SubmitComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub := intake.CommentSubmission{
		Slug:       req.Slug,
		Author:     req.Author,
		Email:      req.Email,
		Body:       req.Body,
		Honeypot:   req.Honeypot,
		RenderedAt: req.SubmittedAt,
	}

	err := h.submissions.SubmitComment(r.Context(), sub, clientIP(r), r.UserAgent())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "comment received and awaiting moderation",
	})
}

// ListComments handles retrieving approved comments for a content page
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	after, err := decodeOptionalCursor(r.URL.Query().Get("after"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	pageSize := parsePageSize(r.URL.Query().Get("page_size"), commentPageSize)

	// Only the unpaginated first page is cached; it is the view every
	// content page requests.
	cacheable := after == nil && pageSize == commentPageSize
	if cacheable && h.cache != nil {
		if cached, ok := h.cache.GetContent(slug); ok {
			w.Header().Set("Cache-Control", "public, max-age=30")
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	if h.lister == nil {
		writeDomainError(w, domain.ErrBackendUnavailable)
		return
	}
	comments, err := h.lister.ListApproved(r.Context(), slug, after, pageSize+1)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response := commentListResponse{Comments: []commentView{}}
	if len(comments) > pageSize {
		comments = comments[:pageSize]
		last := comments[len(comments)-1]
		response.NextCursor = encodeCursor(&pagination.Cursor{TS: last.CreatedAt, Key: last.ID})
	}
	for _, c := range comments {
		response.Comments = append(response.Comments, commentView{
			ID:        c.ID,
			Author:    c.AuthorName,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}

	if cacheable && h.cache != nil {
		h.cache.SetContent(slug, response)
	}

	w.Header().Set("Cache-Control", "public, max-age=30")
	writeJSON(w, http.StatusOK, response)
}
