package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/inkstone-site/inkstone/internal/domain"
)

type contextKey string

const (
	contextKeyActor         contextKey = "actor"
	contextKeyCorrelationID contextKey = "correlation_id"
	contextKeyClientIP      contextKey = "client_ip"
)

// SessionCookieName is the cookie carrying the staff session token.
const SessionCookieName = "inkstone_session"

// TokenVerifier turns a bearer token into an authenticated actor. A nil
// actor means the token did not verify; no reason is exposed.
type TokenVerifier interface {
	Verify(token string) *domain.Actor
}

func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		w.Header().Set("X-Correlation-ID", correlationID)
		ctx := context.WithValue(r.Context(), contextKeyCorrelationID, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			fields := logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      recorder.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if id, ok := r.Context().Value(contextKeyCorrelationID).(string); ok {
				fields["correlation_id"] = id
			}
			logger.WithFields(fields).Info("request handled")
		})
	}
}

func recoveryMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.WithField("panic", err).Error("panic recovered")
					writeError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// sessionMiddleware resolves the session token from the cookie or the
// Authorization header and attaches the verified actor to the request
// context. Requests without a valid token pass through anonymous; the
// moderation handlers enforce authentication themselves.
func sessionMiddleware(verifier TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(SessionCookieName); err == nil {
					token = cookie.Value
				}
			}

			if token != "" {
				if actor := verifier.Verify(token); actor != nil {
					ctx := context.WithValue(r.Context(), contextKeyActor, actor)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// actorFromContext returns the authenticated actor, or nil for anonymous
// requests. Expired, tampered, and missing tokens all look the same here.
func actorFromContext(ctx context.Context) *domain.Actor {
	actor, _ := ctx.Value(contextKeyActor).(*domain.Actor)
	return actor
}

// requireActor rejects anonymous requests with a uniform 401.
func requireActor(ctx context.Context, w http.ResponseWriter) *domain.Actor {
	actor := actorFromContext(ctx)
	if actor == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return actor
}

// realIPMiddleware resolves the submitting client's address once per
// request. X-Forwarded-For is attacker-controlled unless a trusted
// reverse proxy sets it, so the header is only honoured when the
// deployment says one is in front; otherwise a direct client could pick
// its own rate-limit key.
func realIPMiddleware(trustProxy bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteHost(r)
			if trustProxy {
				if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
					parts := strings.Split(forwarded, ",")
					ip = strings.TrimSpace(parts[0])
				}
			}
			ctx := context.WithValue(r.Context(), contextKeyClientIP, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP returns the address resolved by realIPMiddleware, or the bare
// connection peer when the middleware is not installed.
func clientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(contextKeyClientIP).(string); ok {
		return ip
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
