package auth_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	"heartcare-gateway/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// newTestRouter wires routes the way the gateway does: login outside the
// middleware, everything else behind it.
func newTestRouter(sessions *session.Store, loginReached, protectedReached *bool) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		*loginReached = true
		w.WriteHeader(http.StatusOK)
	})
	router.Group(func(r chi.Router) {
		r.Use(mwauth.New(log, sessions))
		r.Get("/calendar", func(w http.ResponseWriter, r *http.Request) {
			*protectedReached = true
			w.WriteHeader(http.StatusOK)
		})
	})
	return router
}

func TestLoginReachableWithExpiredStoredSession(t *testing.T) {
	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	expired := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	if err := sessions.Save(session.Session{AccessToken: expired}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	var loginReached, protectedReached bool
	router := newTestRouter(sessions, &loginReached, &protectedReached)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", rec.Code)
	}
	if !loginReached {
		t.Error("login handler never ran; a stale session must not block a fresh login")
	}
}

func TestProtectedRouteRejectsExpiredStoredSession(t *testing.T) {
	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	expired := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	if err := sessions.Save(session.Session{AccessToken: expired}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	var loginReached, protectedReached bool
	router := newTestRouter(sessions, &loginReached, &protectedReached)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calendar", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if protectedReached {
		t.Error("handler ran despite expired token")
	}
	if !strings.Contains(rec.Body.String(), "UNAUTHORIZED") {
		t.Errorf("body = %s, want UNAUTHORIZED envelope", rec.Body.String())
	}
	if sessions.Token() != "" {
		t.Error("expired stored session was not cleared")
	}
}

func TestBearerHeaderReachesHandler(t *testing.T) {
	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	token := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	var got string
	router := chi.NewRouter()
	router.Use(mwauth.New(log, sessions))
	router.Get("/calendar", func(w http.ResponseWriter, r *http.Request) {
		got = mwauth.Token(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/calendar", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if got != token {
		t.Errorf("Token(ctx) = %q, want the header token", got)
	}
}

func TestAnonymousRequestPassesThrough(t *testing.T) {
	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	var reached bool
	router := chi.NewRouter()
	router.Use(mwauth.New(log, sessions))
	router.Get("/calendar", func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if tok := mwauth.Token(r.Context()); tok != "" {
			t.Errorf("Token(ctx) = %q, want empty for anonymous request", tok)
		}
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/calendar", nil))

	if !reached {
		t.Error("anonymous request must reach the handler")
	}
}
