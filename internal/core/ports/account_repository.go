package ports

import (
	"context"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

// AccountRepository defines persistence for user accounts.
// Create must return domain.ErrUsernameTaken when the username already exists.
type AccountRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
