package ports

import (
	"context"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

// RecordRepository is the append-only store of health entries.
type RecordRepository interface {
	// Append persists entry under userID and returns it with the store-assigned
	// id and created_at. The entry's own UserID is ignored.
	Append(ctx context.Context, userID int64, entry domain.Entry) (domain.Entry, error)

	// Recent returns at most limit entries of metric owned by userID, newest first.
	// The result is empty, never nil, when the user has no entries.
	Recent(ctx context.Context, userID int64, metric domain.Metric, limit int) ([]domain.Entry, error)
}
