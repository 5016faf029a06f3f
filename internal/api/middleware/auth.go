package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/healthlog/internal/core/ports"
	"github.com/sirpyerre/healthlog/internal/pkg/token"
)

// SessionCookie carries the token for browser clients.
const SessionCookie = "session"

// Context keys set by Auth.
const (
	CtxUserID       = "user_id"
	CtxUsername     = "username"
	CtxTokenID      = "token_id"
	CtxTokenExpires = "token_expires"
)

// Auth resolves the session to a user id before any handler runs. The token
// comes from the Authorization header or, failing that, the session cookie.
// denylist may be nil.
func Auth(jwtSecret string, denylist ports.TokenDenylist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := sessionToken(c)
			if err != nil {
				return err
			}

			claims, err := token.Parse(jwtSecret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if denylist != nil {
				revoked, err := denylist.IsRevoked(c.Request().Context(), claims.ID)
				if err != nil {
					c.Logger().Errorf("session denylist: %v", err)
					return echo.NewHTTPError(http.StatusServiceUnavailable, "session check unavailable")
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "session ended")
				}
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxUsername, claims.Username)
			c.Set(CtxTokenID, claims.ID)
			c.Set(CtxTokenExpires, claims.ExpiresAt.Time)

			return next(c)
		}
	}
}

func sessionToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
}
