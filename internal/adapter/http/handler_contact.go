package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkstone-site/inkstone/internal/intake"
)

// ContactHandler handles contact form submissions
type ContactHandler struct {
	submissions SubmissionService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(submissions SubmissionService) *ContactHandler {
	return &ContactHandler{submissions: submissions}
}

// RegisterRoutes registers contact routes
func (h *ContactHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/contact", h.SubmitContact).Methods("POST")
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	// Honeypot must stay empty; submittedAt is the client-reported form
	// render time in unix milliseconds.
	Honeypot    string `json:"honeypot"`
	SubmittedAt int64  `json:"submittedAt"`
}

// SubmitContact handles contact form submission
func (h *ContactHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub := intake.ContactSubmission{
		Name:       req.Name,
		Email:      req.Email,
		Subject:    req.Subject,
		Message:    req.Message,
		Honeypot:   req.Honeypot,
		RenderedAt: req.SubmittedAt,
	}

	if err := h.submissions.SubmitContact(r.Context(), sub, clientIP(r)); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "message received",
	})
}
