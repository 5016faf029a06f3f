package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/healthlog/internal/api/middleware"
)

// ctxUserID returns the user id the Auth middleware resolved. Its absence
// means the route was mounted without the middleware.
func ctxUserID(c echo.Context) (int64, error) {
	id, _ := c.Get(middleware.CtxUserID).(int64)
	if id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

func ctxSession(c echo.Context) (tokenID string, expires time.Time) {
	tokenID, _ = c.Get(middleware.CtxTokenID).(string)
	expires, _ = c.Get(middleware.CtxTokenExpires).(time.Time)
	return tokenID, expires
}
