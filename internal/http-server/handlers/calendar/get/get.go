package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"heartcare-gateway/internal/calendar"
	"heartcare-gateway/internal/http-server/httperr"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	"heartcare-gateway/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type CalendarBuilder interface {
	Calendar(ctx context.Context, token string, year int, month time.Month) (calendar.MonthGrid, error)
}

func New(log *slog.Logger, builder CalendarBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.calendar.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		now := time.Now()
		year, month := now.Year(), now.Month()

		if v := r.URL.Query().Get("year"); v != "" {
			y, err := strconv.Atoi(v)
			if err != nil {
				log.Error("Invalid year query parameter")
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "year must be numeric"))
				return
			}
			year = y
		}
		if v := r.URL.Query().Get("month"); v != "" {
			m, err := strconv.Atoi(v)
			if err != nil || m < 1 || m > 12 {
				log.Error("Invalid month query parameter")
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "month must be between 1 and 12"))
				return
			}
			month = time.Month(m)
		}

		grid, err := builder.Calendar(r.Context(), mwauth.Token(r.Context()), year, month)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to build calendar")
			return
		}

		log.Info("Calendar built", slog.Int("year", year), slog.Int("month", int(month)))
		render.JSON(w, r, grid)
	}
}
