package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/healthlog/internal/core/domain"
	"github.com/sirpyerre/healthlog/internal/core/ports"
	"github.com/sirpyerre/healthlog/internal/pkg/token"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// AccountService implements registration, login and logout.
type AccountService struct {
	repo      ports.AccountRepository
	denylist  ports.TokenDenylist
	jwtSecret string
	tokenTTL  time.Duration
	cost      int
	now       func() time.Time
	logger    zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAccountService wires the account store. denylist may be nil, in which
// case logout only ends the client side session.
func NewAccountService(repo ports.AccountRepository, denylist ports.TokenDenylist, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountService{
		repo:      repo,
		denylist:  denylist,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		cost:      bcrypt.DefaultCost,
		now:       time.Now,
		logger:    logger,
	}
}

func normalizeCredentials(username, password string) (string, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", "", domain.ErrMissingFields
	}
	if len(password) > maxPasswordBytes {
		return "", "", domain.ErrPasswordTooLong
	}
	return username, password, nil
}

// Register creates an account. The first registration of a username wins;
// later attempts get domain.ErrUsernameTaken and change nothing.
func (s *AccountService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username, password, err := normalizeCredentials(username, password)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("account registered")
	return created, nil
}

// Authenticate checks a username/password pair. Every failed login, including
// blank fields, yields domain.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username, password, err := normalizeCredentials(username, password)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	signed, claims, err := token.Issue(s.jwtSecret, user.ID, user.Username, s.now(), s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &ports.Session{
		Token:     signed,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// Logout revokes tokenID until the token would have expired anyway.
func (s *AccountService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.denylist == nil || tokenID == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, tokenID, ttl); err != nil {
		return err
	}
	s.logger.Info().Str("jti", tokenID).Dur("ttl", ttl).Msg("session revoked")
	return nil
}

func (s *AccountService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *AccountService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("healthlog-placeholder"), s.cost)
	})
	return s.dummyHash
}
