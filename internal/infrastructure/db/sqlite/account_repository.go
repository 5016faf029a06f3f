package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

type AccountRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db, now: time.Now}
}

// Create inserts the user. The UNIQUE constraint on username decides races
// between concurrent registrations.
func (r *AccountRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	created := *user
	if created.CreatedAt.IsZero() {
		created.CreatedAt = storeNow(r.now)
	}
	created.CreatedAt = created.CreatedAt.UTC().Truncate(time.Millisecond)

	const q = `INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, q, created.Username, created.PasswordHash, formatTime(created.CreatedAt)).Scan(&created.ID)
	if isUniqueViolation(err) {
		return nil, domain.ErrUsernameTaken
	}
	if err != nil {
		return nil, domain.StoreError("create user", err)
	}
	return &created, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`
	return r.findOne(ctx, "find user by username", q, username)
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`
	return r.findOne(ctx, "find user by id", q, id)
}

func (r *AccountRepository) findOne(ctx context.Context, op, q string, arg any) (*domain.User, error) {
	var (
		u       domain.User
		created string
	)
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, domain.StoreError(op, err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, domain.StoreError(op, err)
	}
	return &u, nil
}
