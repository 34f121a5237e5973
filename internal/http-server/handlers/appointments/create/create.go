package create

import (
	"context"
	"encoding/json"
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

type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, token string, req *api.CreateAppointmentRequest) (json.RawMessage, error)
}

type Request struct {
	api.CreateAppointmentRequest
}

type Response struct {
	response.Response
	Appointment json.RawMessage `json:"appointment,omitempty"`
}

func New(log *slog.Logger, creator AppointmentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.create.New"

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

		if err := validator.New().Struct(req.CreateAppointmentRequest); err != nil {
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}

		created, err := creator.CreateAppointment(r.Context(), mwauth.Token(r.Context()), &req.CreateAppointmentRequest)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to create appointment")
			return
		}

		log.Info("Appointment created",
			slog.Int64("counselor_id", req.CounselorID),
			slog.String("date", req.Date),
			slog.String("start", req.StartTime),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Appointment: created,
		})
	}
}
