package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/inkstone-site/inkstone/internal/intake"
)

func newContactRouter(submissions SubmissionService) *mux.Router {
	router := mux.NewRouter()
	NewContactHandler(submissions).RegisterRoutes(router)
	return router
}

func TestContactHandler_SubmitContact_ForwardsWireFields(t *testing.T) {
	submissions := new(MockSubmissionService)
	submissions.On("SubmitContact", mock.Anything,
		mock.MatchedBy(func(sub intake.ContactSubmission) bool {
			return sub.RenderedAt == 1700000000000 && sub.Honeypot == "" && sub.Name == "Ada"
		}), mock.Anything).
		Return(nil)

	router := newContactRouter(submissions)
	body := `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Hello there.","honeypot":"","submittedAt":1700000000000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	submissions.AssertExpectations(t)
}

func TestContactHandler_SubmitContact_RejectionSurfacesMessage(t *testing.T) {
	submissions := new(MockSubmissionService)
	submissions.On("SubmitContact", mock.Anything, mock.Anything, mock.Anything).
		Return(&intake.RejectionError{Reason: "missing_message", Message: "a message is required"})

	router := newContactRouter(submissions)
	body := `{"name":"Ada","email":"ada@example.com","honeypot":"","submittedAt":1700000000000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
