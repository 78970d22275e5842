package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkstone-site/inkstone/internal/domain"
	"github.com/inkstone-site/inkstone/internal/session"
)

// AuthHandler handles staff login and logout
type AuthHandler struct {
	codec         *session.Codec
	table         *session.Table
	secureCookies bool
}

// NewAuthHandler creates a new auth handler. secureCookies should be set
// outside local development.
func NewAuthHandler(codec *session.Codec, table *session.Table, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		codec:         codec,
		table:         table,
		secureCookies: secureCookies,
	}
}

// SessionVerifier adapts the codec and credential table to the
// middleware's TokenVerifier.
func (h *AuthHandler) SessionVerifier() TokenVerifier {
	return &sessionVerifier{codec: h.codec, table: h.table}
}

type sessionVerifier struct {
	codec *session.Codec
	table *session.Table
}

func (v *sessionVerifier) Verify(token string) *domain.Actor {
	return v.codec.Verify(token, v.table.Lookup)
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/auth/login", h.Login).Methods("POST")
	router.HandleFunc("/api/v1/auth/logout", h.Logout).Methods("POST")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles staff login and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cred, err := h.table.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := h.codec.Mint(cred)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(session.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"actor": map[string]interface{}{
			"id":           cred.ID,
			"display_name": cred.Name,
			"roles":        cred.Roles,
		},
		"expires_in": int(session.MaxAge.Seconds()),
	})
}

// Logout clears the session cookie. Tokens themselves stay valid until
// they age out; revocation is per-actor secret rotation.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
