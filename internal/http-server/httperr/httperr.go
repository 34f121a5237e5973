package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"heartcare-gateway/internal/upstream"
	"heartcare-gateway/pkg/response"
	"heartcare-gateway/pkg/sl"

	"github.com/go-chi/render"
)

// Write maps a service error to an HTTP status and error envelope.
// Upstream failures carry the backend's own detail message through; the
// fallback is used when nothing better is known.
func Write(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, code, msg := classify(err, fallback)

	if status >= http.StatusInternalServerError {
		log.Error(fallback, sl.Err(err))
	} else {
		log.Warn(fallback, sl.Err(err))
	}

	w.WriteHeader(status)
	render.JSON(w, r, response.Error(string(code), msg))
}

func classify(err error, fallback string) (int, response.ErrCode, string) {
	msg := fallback
	var ue *upstream.Error
	if errors.As(err, &ue) && ue.Detail != "" {
		msg = ue.Detail
	}

	switch {
	case errors.Is(err, response.ErrUnauthorized):
		// The session was already cleared by the client; the caller gets a
		// silent 401 and is expected to redirect to login.
		return http.StatusUnauthorized, response.UNAUTHORIZED, "authentication required"
	case errors.Is(err, response.ErrForbidden):
		return http.StatusForbidden, response.FORBIDDEN, msg
	case errors.Is(err, response.ErrNotFound):
		return http.StatusNotFound, response.NOT_FOUND, msg
	case errors.Is(err, response.ErrBadRequest),
		errors.Is(err, response.ErrPastDate),
		errors.Is(err, response.ErrBeyondHorizon):
		return http.StatusBadRequest, response.BAD_REQUEST, firstError(err, msg)
	case errors.Is(err, response.ErrSlotNotAvailable):
		return http.StatusUnprocessableEntity, response.SLOT_NOT_AVAILABLE, response.ErrSlotNotAvailable.Error()
	case errors.Is(err, response.ErrNotOnGrid):
		return http.StatusUnprocessableEntity, response.VALIDATION_FAILED, response.ErrNotOnGrid.Error()
	case errors.Is(err, response.ErrInvalidDuration):
		return http.StatusUnprocessableEntity, response.VALIDATION_FAILED, response.ErrInvalidDuration.Error()
	case errors.Is(err, response.ErrUpstreamDown):
		return http.StatusBadGateway, response.UPSTREAM_UNREACHABLE, "backend is unreachable, try again later"
	case errors.Is(err, response.ErrUpstream):
		return http.StatusBadGateway, response.FAILED_REQUEST, msg
	default:
		return http.StatusInternalServerError, response.FAILED_REQUEST, fallback
	}
}

func firstError(err error, msg string) string {
	for _, sentinel := range []error{response.ErrPastDate, response.ErrBeyondHorizon} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return msg
}
