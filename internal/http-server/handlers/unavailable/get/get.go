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
	"github.com/go-chi/render"
)

type PeriodProvider interface {
	UnavailablePeriods(ctx context.Context, token string, skip, limit int) ([]models.UnavailablePeriod, error)
}

type Response struct {
	response.Response
	Periods []models.UnavailablePeriod `json:"periods"`
}

func New(log *slog.Logger, provider PeriodProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.unavailable.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		skip := 0
		if s := r.URL.Query().Get("skip"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n >= 0 {
				skip = n
			}
		}

		limit := 10
		if s := r.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				limit = n
			}
		}

		periods, err := provider.UnavailablePeriods(r.Context(), mwauth.Token(r.Context()), skip, limit)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to get unavailable periods")
			return
		}

		log.Info("Unavailable periods retrieved", slog.Int("count", len(periods)))

		if periods == nil {
			periods = []models.UnavailablePeriod{}
		}

		render.JSON(w, r, Response{
			Periods: periods,
		})
	}
}
