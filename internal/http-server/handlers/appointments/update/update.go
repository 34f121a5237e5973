package update

import (
	"context"
	"encoding/json"
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

type AppointmentUpdater interface {
	UpdateAppointment(ctx context.Context, token string, id int64, req *api.UpdateAppointmentRequest) (json.RawMessage, error)
}

type Request struct {
	api.UpdateAppointmentRequest
}

type Response struct {
	response.Response
	Appointment json.RawMessage `json:"appointment,omitempty"`
}

func New(log *slog.Logger, updater AppointmentUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.update.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			log.Error("Invalid appointment id")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "appointment id must be numeric"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if err := validator.New().Struct(req.UpdateAppointmentRequest); err != nil {
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}

		updated, err := updater.UpdateAppointment(r.Context(), mwauth.Token(r.Context()), id, &req.UpdateAppointmentRequest)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to update appointment")
			return
		}

		log.Info("Appointment updated", slog.Int64("id", id))

		render.JSON(w, r, Response{
			Appointment: updated,
		})
	}
}
