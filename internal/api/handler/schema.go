package handler

import (
	"time"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

// --- Request / Response types ---

type credentialsRequest struct {
	Username string `json:"username" form:"username" validate:"max=64"`
	Password string `json:"password" form:"password" validate:"max=72"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Message   string        `json:"message,omitempty"`
	Token     string        `json:"token,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	User      *userResponse `json:"user,omitempty"`
}

// historyResponse is returned by GET /v1/{metric}.
type historyResponse struct {
	Metric  domain.Metric  `json:"metric"`
	History []domain.Entry `json:"history"`
}

// submissionResponse is returned by POST /v1/{metric}. Entry is absent when
// nothing was stored.
type submissionResponse struct {
	Metric  domain.Metric  `json:"metric"`
	Result  any            `json:"result,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Entry   domain.Entry   `json:"entry,omitempty"`
	History []domain.Entry `json:"history"`
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}
