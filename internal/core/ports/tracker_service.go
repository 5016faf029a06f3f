package ports

import (
	"context"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

// Submission is what a metric page renders after a POST: the evaluator
// result, the stored entry (nil when nothing was persisted) and the
// refreshed history. ErrorMessage is set for unparseable input and for
// non-positive BMI inputs; Message carries feedback and range advice.
type Submission struct {
	Metric       domain.Metric
	Result       any
	Message      string
	ErrorMessage string
	Entry        domain.Entry
	History      []domain.Entry
}

// Stored reports whether the submission produced a new entry.
func (s *Submission) Stored() bool { return s.Entry != nil }

type TrackerService interface {
	// Submit evaluates the raw form values for metric and appends the entry
	// when the values are accepted. Invalid numbers come back as a
	// Submission with ErrorMessage set and domain.ErrInvalidNumber.
	Submit(ctx context.Context, userID int64, metric domain.Metric, form map[string]string) (*Submission, error)
	History(ctx context.Context, userID int64, metric domain.Metric) ([]domain.Entry, error)
}
