package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"heartcare-gateway/internal/http-server/httperr"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	"heartcare-gateway/internal/models"
	"heartcare-gateway/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type SlotProvider interface {
	AvailableSlots(ctx context.Context, token string, counselorID int64, date string) ([]models.DaySlot, error)
}

type Response struct {
	response.Response
	AvailableSlots []models.DaySlot `json:"available_slots"`
}

func New(log *slog.Logger, provider SlotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		counselorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			log.Error("Invalid counselor id")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "counselor id must be numeric"))
			return
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			log.Error("date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date is required"))
			return
		}

		slots, err := provider.AvailableSlots(r.Context(), mwauth.Token(r.Context()), counselorID, date)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to get available slots")
			return
		}

		// An empty day is "no availability", never an error.
		log.Info("Available slots resolved", slog.Int("count", len(slots)))

		render.JSON(w, r, Response{
			AvailableSlots: slots,
		})
	}
}
