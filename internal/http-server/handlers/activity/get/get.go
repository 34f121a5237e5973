package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"heartcare-gateway/internal/http-server/httperr"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	"heartcare-gateway/internal/rollup"
	"heartcare-gateway/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ActivityBuilder interface {
	Activity(ctx context.Context, token, role string, view rollup.ViewMode, year int, month time.Month) (rollup.Result, error)
}

func New(log *slog.Logger, builder ActivityBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.activity.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		view := rollup.ViewMonth
		if v := r.URL.Query().Get("view"); v != "" {
			parsed, ok := rollup.ParseViewMode(v)
			if !ok {
				log.Error("Invalid view query parameter", slog.String("view", v))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "view must be one of day, week, month"))
				return
			}
			view = parsed
		}

		role := r.URL.Query().Get("role")
		if role == "" {
			role = "user"
		}
		if role != "user" && role != "counselor" {
			log.Error("Invalid role query parameter", slog.String("role", role))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "role must be user or counselor"))
			return
		}

		now := time.Now()
		year, month := now.Year(), now.Month()

		if v := r.URL.Query().Get("year"); v != "" {
			y, err := strconv.Atoi(v)
			if err != nil {
				log.Error("Invalid year query parameter")
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "year must be numeric"))
				return
			}
			year = y
		}
		if v := r.URL.Query().Get("month"); v != "" {
			m, err := strconv.Atoi(v)
			if err != nil || m < 1 || m > 12 {
				log.Error("Invalid month query parameter")
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "month must be between 1 and 12"))
				return
			}
			month = time.Month(m)
		}

		result, err := builder.Activity(r.Context(), mwauth.Token(r.Context()), role, view, year, month)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to build activity summary")
			return
		}

		log.Info("Activity summary built",
			slog.String("view", string(view)),
			slog.String("role", role),
		)
		render.JSON(w, r, result)
	}
}
