package update

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"heartcare-gateway/api"
	"heartcare-gateway/internal/http-server/httperr"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	"heartcare-gateway/pkg/response"
	"heartcare-gateway/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type PeriodUpdater interface {
	UpdateUnavailablePeriod(ctx context.Context, token string, id int64, req *api.UnavailablePeriodRequest) error
}

type Request struct {
	api.UnavailablePeriodRequest
}

func New(log *slog.Logger, updater PeriodUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.unavailable.update.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if err := validator.New().Struct(req.UnavailablePeriodRequest); err != nil {
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}

		err = updater.UpdateUnavailablePeriod(r.Context(), mwauth.Token(r.Context()), id, &req.UnavailablePeriodRequest)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to update unavailable period")
			return
		}

		log.Info("Unavailable period updated", slog.Int64("id", id))
		render.JSON(w, r, response.Response{})
	}
}
