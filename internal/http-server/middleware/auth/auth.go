package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"heartcare-gateway/internal/session"
	"heartcare-gateway/pkg/response"

	"github.com/go-chi/render"
)

type ctxKey struct{}

// Token returns the bearer token the middleware attached, empty when the
// request is anonymous.
func Token(ctx context.Context) string {
	tok, _ := ctx.Value(ctxKey{}).(string)
	return tok
}

// New extracts the bearer token from the Authorization header, falling back
// to the stored session for requests that carry none. Tokens whose exp claim
// has already passed are rejected before an upstream round trip; a stored
// session that expired is cleared so the next load starts logged out.
func New(log *slog.Logger, sessions *session.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(slog.String("component", "middleware/auth"))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			fromSession := false

			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			} else if sessions != nil {
				token = sessions.Token()
				fromSession = token != ""
			}

			if token != "" && session.TokenExpired(token, time.Now()) {
				if fromSession {
					_ = sessions.Clear()
				}

				log.Warn("Rejected expired bearer token")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "authentication required"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
