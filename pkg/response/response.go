package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST       ErrCode = "REQUEST_FAILED"
	BAD_REQUEST          ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND            ErrCode = "NOT_FOUND"
	UNAUTHORIZED         ErrCode = "UNAUTHORIZED"
	FORBIDDEN            ErrCode = "FORBIDDEN"
	VALIDATION_FAILED    ErrCode = "VALIDATION_FAILED"
	SLOT_NOT_AVAILABLE   ErrCode = "SLOT_NOT_AVAILABLE"
	UPSTREAM_UNREACHABLE ErrCode = "UPSTREAM_UNREACHABLE"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("permission denied")
	ErrSlotNotAvailable = errors.New("slot is not available")
	ErrNotOnGrid        = errors.New("time is not aligned to the slot grid")
	ErrInvalidDuration  = errors.New("appointment duration must be between 1 and 3 hours")
	ErrPastDate         = errors.New("date is in the past")
	ErrBeyondHorizon    = errors.New("date is beyond the booking horizon")
	ErrUpstream         = errors.New("upstream request failed")
	ErrUpstreamDown     = errors.New("upstream is unreachable")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsg []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' is required", err.Field()))
		case "min":
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' must be at least %s", err.Field(), err.Param()))
		case "max":
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param()))
		default:
			errMsg = append(errMsg, fmt.Sprintf("Field '%s' is invalid", err.Field()))
		}
	}

	return Response{
		ResponseError: ResponseError{
			Code:    string(VALIDATION_FAILED),
			Message: strings.Join(errMsg, ", "),
		},
	}
}
