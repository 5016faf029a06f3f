package ports

import (
	"context"
	"time"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	User      *domain.User
}

type AccountService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	Me(ctx context.Context, userID int64) (*domain.User, error)
}
