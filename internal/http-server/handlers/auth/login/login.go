package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"heartcare-gateway/api"
	"heartcare-gateway/internal/http-server/httperr"
	"heartcare-gateway/pkg/response"
	"heartcare-gateway/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type LoginProvider interface {
	Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error)
}

type Request struct {
	api.LoginRequest
}

type Response struct {
	response.Response
	AccessToken string          `json:"access_token,omitempty"`
	UserInfo    json.RawMessage `json:"user_info,omitempty"`
}

func New(log *slog.Logger, provider LoginProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.New"

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

		if err := validator.New().Struct(req.LoginRequest); err != nil {
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}

		result, err := provider.Login(r.Context(), &req.LoginRequest)
		if err != nil {
			httperr.Write(log, w, r, err, "failed to log in")
			return
		}

		log.Info("Login succeeded")

		render.JSON(w, r, Response{
			AccessToken: result.AccessToken,
			UserInfo:    result.UserInfo,
		})
	}
}
