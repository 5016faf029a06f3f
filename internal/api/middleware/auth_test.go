package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/healthlog/internal/pkg/token"
)

type stubDenylist struct {
	revoked map[string]bool
	err     error
}

func (d *stubDenylist) Revoke(_ context.Context, id string, _ time.Duration) error {
	d.revoked[id] = true
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.revoked[id], nil
}

func issue(t *testing.T, secret string) (string, *token.Claims) {
	t.Helper()
	signed, claims, err := token.Issue(secret, 42, "alice", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed, claims
}

func run(t *testing.T, req *http.Request, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	signed, claims := issue(t, "secret")
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret", nil)(func(c echo.Context) error {
		called = true
		if c.Get(CtxUserID) != int64(42) {
			t.Fatalf("user_id not set: %v", c.Get(CtxUserID))
		}
		if c.Get(CtxUsername) != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get(CtxTokenID) != claims.ID {
			t.Fatalf("token id not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to run with 200, got called=%v code=%d", called, rec.Code)
	}
}

func TestAuthMiddleware_SessionCookie(t *testing.T) {
	signed, _ := issue(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signed})

	rec, called := run(t, req, Auth("secret", nil))
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("cookie session should authenticate, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	signed, _ := issue(t, "other-secret")

	cases := map[string]func(r *http.Request){
		"missing":        func(r *http.Request) {},
		"bad scheme":     func(r *http.Request) { r.Header.Set("Authorization", "Token abc") },
		"empty bearer":   func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") },
		"garbage":        func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-token") },
		"wrong secret":   func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+signed) },
		"garbage cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "x"}) },
	}

	for name, setup := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		setup(req)
		rec, called := run(t, req, Auth("secret", nil))
		if called {
			t.Fatalf("%s: next must not run", name)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	signed, claims := issue(t, "secret")
	denylist := &stubDenylist{revoked: map[string]bool{claims.ID: true}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec, called := run(t, req, Auth("secret", denylist))
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token must be rejected, got called=%v code=%d", called, rec.Code)
	}
}

func TestAuthMiddleware_DenylistUnavailable(t *testing.T) {
	signed, _ := issue(t, "secret")
	denylist := &stubDenylist{err: errors.New("redis down")}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec, called := run(t, req, Auth("secret", denylist))
	if called || rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without running next, got called=%v code=%d", called, rec.Code)
	}
}
