package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/healthlog/internal/core/domain"
	"github.com/sirpyerre/healthlog/internal/core/ports"
)

// Form field names per metric.
const (
	FieldWeight = "weight"
	FieldHeight = "height"
	FieldCups   = "cups"
	FieldHours  = "hours"
	FieldTarget = "target"
	FieldActual = "actual"
)

type trackerService struct {
	records ports.RecordRepository
	log     zerolog.Logger
}

// NewTrackerService returns a TrackerService backed by records.
func NewTrackerService(records ports.RecordRepository, log zerolog.Logger) ports.TrackerService {
	return &trackerService{records: records, log: log}
}

// Submit runs evaluate, append, recent for one form post.
func (s *trackerService) Submit(ctx context.Context, userID int64, metric domain.Metric, form map[string]string) (*ports.Submission, error) {
	if _, err := domain.ParseMetric(string(metric)); err != nil {
		return nil, err
	}

	sub := &ports.Submission{Metric: metric}

	// 1. Evaluate. Nothing is written unless this succeeds.
	entry, result, err := evaluate(userID, metric, form)
	var rangeErr *domain.RangeError
	switch {
	case errors.Is(err, domain.ErrInvalidNumber):
		sub.ErrorMessage = domain.InvalidNumberMessage(metric)
		if sub.History, err = s.History(ctx, userID, metric); err != nil {
			return nil, err
		}
		return sub, domain.ErrInvalidNumber
	case errors.As(err, &rangeErr):
		s.log.Debug().Int64("user_id", userID).Str("metric", string(metric)).Msg("submission out of range, not stored")
		// BMI rejects its inputs outright; the other metrics answer with advice.
		if metric == domain.MetricBMI {
			sub.ErrorMessage = rangeErr.Message
		} else {
			sub.Message = rangeErr.Message
		}
	case err != nil:
		return nil, err
	default:
		// 2. Append under the authenticated user.
		stored, err := s.records.Append(ctx, userID, entry)
		if err != nil {
			return nil, fmt.Errorf("submit %s: %w", metric, err)
		}
		sub.Entry = stored
		sub.Result = result
		sub.Message = feedbackOf(result)
		s.log.Info().Int64("user_id", userID).Str("metric", string(metric)).Int64("entry_id", stored.Meta().ID).Msg("entry recorded")
	}

	// 3. Recent history, including the entry just written.
	history, err := s.History(ctx, userID, metric)
	if err != nil {
		return nil, err
	}
	sub.History = history
	return sub, nil
}

func (s *trackerService) History(ctx context.Context, userID int64, metric domain.Metric) ([]domain.Entry, error) {
	if _, err := domain.ParseMetric(string(metric)); err != nil {
		return nil, err
	}
	entries, err := s.records.Recent(ctx, userID, metric, domain.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", metric, err)
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}

func evaluate(userID int64, metric domain.Metric, form map[string]string) (domain.Entry, any, error) {
	switch metric {
	case domain.MetricBMI:
		weight, height, err := readPair(form, FieldWeight, FieldHeight)
		if err != nil {
			return nil, nil, err
		}
		e, res, err := domain.NewBMIEntry(userID, weight, height)
		return e, res, err
	case domain.MetricWater:
		cups, err := reading(form, FieldCups)
		if err != nil {
			return nil, nil, err
		}
		e, res, err := domain.NewWaterEntry(userID, cups)
		return e, res, err
	case domain.MetricSleep:
		hours, err := reading(form, FieldHours)
		if err != nil {
			return nil, nil, err
		}
		e, res, err := domain.NewSleepEntry(userID, hours)
		return e, res, err
	case domain.MetricCalories:
		target, actual, err := readPair(form, FieldTarget, FieldActual)
		if err != nil {
			return nil, nil, err
		}
		e, res, err := domain.NewCaloriesEntry(userID, target, actual)
		return e, res, err
	}
	return nil, nil, domain.ErrUnknownMetric
}

// reading reads an absent field as 0. A present but blank field is invalid.
func reading(form map[string]string, key string) (float64, error) {
	raw, ok := form[key]
	if !ok {
		return 0, nil
	}
	return domain.ParseReading(raw)
}

func readPair(form map[string]string, a, b string) (float64, float64, error) {
	x, err := reading(form, a)
	if err != nil {
		return 0, 0, err
	}
	y, err := reading(form, b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func feedbackOf(result any) string {
	switch r := result.(type) {
	case domain.WaterResult:
		return r.Feedback
	case domain.SleepResult:
		return r.Feedback
	case domain.CaloriesResult:
		return r.Feedback
	}
	return ""
}
