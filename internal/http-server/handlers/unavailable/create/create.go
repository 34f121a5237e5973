package create

import (
	"context"
	"log/slog"
	"net/http"

	"heartcare-gateway/api"
	"heartcare-gateway/internal/http-server/httperr"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	"heartcare-gateway/pkg/response"
	"heartcare-gateway/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type PeriodCreator interface {
	CreateUnavailablePeriod(ctx context.Context, token string, req *api.UnavailablePeriodRequest) error
}

type Request struct {
	api.UnavailablePeriodRequest
}

func New(log *slog.Logger, creator PeriodCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.unavailable.create.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

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

		err := creator.CreateUnavailablePeriod(r.Context(), mwauth.Token(r.Context()), &req.UnavailablePeriodRequest)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to create unavailable period")
			return
		}

		log.Info("Unavailable period created",
			slog.String("start_date", req.StartDate),
			slog.String("end_date", req.EndDate),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, response.Response{})
	}
}
