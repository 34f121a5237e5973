package preview

import (
	"context"
	"log/slog"
	"net/http"

	"heartcare-gateway/internal/http-server/httperr"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	"heartcare-gateway/internal/models"
	"heartcare-gateway/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

// AvailabilityPreviewer computes the authenticated counselor's own bookable
// slots from their schedule, exceptions, and existing appointments.
type AvailabilityPreviewer interface {
	PreviewAvailability(ctx context.Context, token, date string) ([]models.DaySlot, error)
}

type Response struct {
	response.Response
	AvailableSlots []models.DaySlot `json:"available_slots"`
}

func New(log *slog.Logger, previewer AvailabilityPreviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.preview.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		date := r.URL.Query().Get("date")
		if date == "" {
			log.Error("date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date is required"))
			return
		}

		slots, err := previewer.PreviewAvailability(r.Context(), mwauth.Token(r.Context()), date)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to preview availability")
			return
		}

		log.Info("Availability previewed", slog.String("date", date), slog.Int("count", len(slots)))

		render.JSON(w, r, Response{
			AvailableSlots: slots,
		})
	}
}
