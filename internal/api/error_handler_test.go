package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrInvalidNumber, http.StatusUnprocessableEntity, "please enter valid numbers."},
		{&domain.RangeError{Metric: domain.MetricWater, Message: domain.MsgWaterNegative}, http.StatusOK, domain.MsgWaterNegative},
		{fmt.Errorf("submit sleep: %w", &domain.RangeError{Metric: domain.MetricSleep, Message: domain.MsgSleepNegative}), http.StatusOK, domain.MsgSleepNegative},
		{domain.ErrOutOfRange, http.StatusOK, "value out of range"},
		{domain.ErrMissingFields, http.StatusBadRequest, "please fill out all fields"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "wrong username or password"},
		{domain.ErrUsernameTaken, http.StatusConflict, "username already in use"},
		{fmt.Errorf("me: %w", domain.ErrUserNotFound), http.StatusNotFound, "user not found"},
		{domain.StoreError("append water", errors.New("disk full")), http.StatusInternalServerError, "internal server error"},
		{echo.NewHTTPError(http.StatusUnauthorized, "missing session"), http.StatusUnauthorized, "missing session"},
	}

	for _, tc := range cases {
		e := echo.New()
		e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

		e.HTTPErrorHandler(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: decode: %v", tc.err, err)
		}
		if body.Error != tc.msg {
			t.Fatalf("%v: expected %q, got %q", tc.err, tc.msg, body.Error)
		}
	}
}
