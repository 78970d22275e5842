package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkstone-site/inkstone/internal/session"
)

func newAuthFixture(t *testing.T) (*mux.Router, *AuthHandler) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)

	table, err := session.ParseTable(fmt.Sprintf(
		`[{"id":"mod-1","username":"morgan","name":"Morgan","roles":["moderator"],"secret":"s1","password_hash":%q}]`,
		string(hash)))
	require.NoError(t, err)

	codec, err := session.NewCodec("server-secret")
	require.NoError(t, err)

	handler := NewAuthHandler(codec, table, false)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router, handler
}

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	router, handler := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewBufferString(`{"username":"morgan","password":"letmein"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(session.MaxAge.Seconds()), cookie.MaxAge)

	// The minted cookie must verify back to the actor.
	actor := handler.SessionVerifier().Verify(cookie.Value)
	require.NotNil(t, actor)
	assert.Equal(t, "mod-1", actor.ID)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}

func TestAuthHandler_Login_UniformFailure(t *testing.T) {
	router, _ := newAuthFixture(t)

	attempts := []string{
		`{"username":"morgan","password":"wrong"}`,
		`{"username":"nobody","password":"letmein"}`,
	}

	var bodies []string
	for _, attempt := range attempts {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(attempt))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
		bodies = append(bodies, rec.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1], "unknown user and wrong password must be indistinguishable")
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	router, _ := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}
