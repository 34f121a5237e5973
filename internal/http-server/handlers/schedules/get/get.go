package get

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

type ScheduleProvider interface {
	Schedules(ctx context.Context, token string) ([]models.WeeklySchedule, error)
}

type Response struct {
	response.Response
	Schedules []models.WeeklySchedule `json:"schedules"`
}

func New(log *slog.Logger, provider ScheduleProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		schedules, err := provider.Schedules(r.Context(), mwauth.Token(r.Context()))
		if err != nil {
			httperr.Write(log, w, r, err, "failed to get schedules")
			return
		}

		log.Info("Schedules retrieved", slog.Int("count", len(schedules)))

		if schedules == nil {
			schedules = []models.WeeklySchedule{}
		}

		render.JSON(w, r, Response{
			Schedules: schedules,
		})
	}
}
