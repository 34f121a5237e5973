package get

import (
	"context"
	"log/slog"
	"net/http"

	"heartcare-gateway/internal/http-server/httperr"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	"heartcare-gateway/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AppointmentProvider interface {
	MyAppointments(ctx context.Context, token string) ([]models.AppointmentRecord, error)
}

func New(log *slog.Logger, provider AppointmentProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		records, err := provider.MyAppointments(r.Context(), mwauth.Token(r.Context()))
		if err != nil {
			httperr.Write(log, w, r, err, "failed to get appointments")
			return
		}

		log.Info("Appointments retrieved", slog.Int("count", len(records)))

		if records == nil {
			records = []models.AppointmentRecord{}
		}

		// Always a bare list, regardless of how the backend wrapped it.
		render.JSON(w, r, records)
	}
}
