package logout

import (
	"context"
	"log/slog"
	"net/http"

	"heartcare-gateway/internal/http-server/httperr"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"

	"github.com/go-chi/chi/middleware"
)

type LogoutProvider interface {
	Logout(ctx context.Context, token string) error
}

func New(log *slog.Logger, provider LogoutProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.logout.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		err := provider.Logout(r.Context(), mwauth.Token(r.Context()))
		if err != nil {
			httperr.Write(log, w, r, err, "failed to log out")
			return
		}

		log.Info("Logout succeeded")
		w.WriteHeader(http.StatusNoContent)
	}
}
