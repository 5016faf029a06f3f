package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// ErrorStatus maps a domain error to its HTTP status and client message.
// ok is false for errors that must not be shown to clients.
func ErrorStatus(err error) (code int, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrOutOfRange):
		var re *domain.RangeError
		if errors.As(err, &re) {
			return http.StatusOK, re.Message, true
		}
		return http.StatusOK, domain.ErrOutOfRange.Error(), true
	case errors.Is(err, domain.ErrInvalidNumber):
		return http.StatusUnprocessableEntity, domain.ErrInvalidNumber.Error(), true
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, domain.ErrMissingFields.Error(), true
	case errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, domain.ErrPasswordTooLong.Error(), true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error(), true
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict, domain.ErrUsernameTaken.Error(), true
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound.Error(), true
	case errors.Is(err, domain.ErrUnknownMetric):
		return http.StatusNotFound, domain.ErrUnknownMetric.Error(), true
	}
	return http.StatusInternalServerError, "internal server error", false
}

// toHTTPError turns known domain errors into echo errors and passes the rest
// through for the central error handler to log.
func toHTTPError(err error) error {
	if code, msg, ok := ErrorStatus(err); ok {
		return echo.NewHTTPError(code, msg).SetInternal(err)
	}
	return err
}
