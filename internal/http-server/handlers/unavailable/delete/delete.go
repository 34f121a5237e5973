package delete

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"heartcare-gateway/internal/http-server/httperr"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	"heartcare-gateway/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type PeriodDeleter interface {
	DeleteUnavailablePeriod(ctx context.Context, token string, id int64) error
}

func New(log *slog.Logger, deleter PeriodDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.unavailable.delete.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			log.Error("Invalid period id")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "period id must be numeric"))
			return
		}

		err = deleter.DeleteUnavailablePeriod(r.Context(), mwauth.Token(r.Context()), id)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to delete unavailable period")
			return
		}

		log.Info("Unavailable period deleted", slog.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
