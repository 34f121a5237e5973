package save

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

type ScheduleSaver interface {
	SaveSchedules(ctx context.Context, token string, entries []api.ScheduleEntry) error
}

type Request struct {
	api.SaveSchedulesRequest
}

func New(log *slog.Logger, saver ScheduleSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.save.New"

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

		if err := validator.New().Struct(req.SaveSchedulesRequest); err != nil {
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}

		err := saver.SaveSchedules(r.Context(), mwauth.Token(r.Context()), req.Schedules)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to save schedules")
			return
		}

		log.Info("Schedules saved", slog.Int("count", len(req.Schedules)))
		w.WriteHeader(http.StatusOK)
		render.JSON(w, r, response.Response{})
	}
}
