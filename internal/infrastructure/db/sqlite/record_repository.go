package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

// RecordRepository stores each metric in its own *_logs table.
type RecordRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db, now: time.Now}
}

func (r *RecordRepository) Append(ctx context.Context, userID int64, entry domain.Entry) (domain.Entry, error) {
	created := storeNow(r.now)
	ts := formatTime(created)

	var (
		stored domain.Entry
		q      string
		args   []any
	)
	switch e := entry.(type) {
	case *domain.BMIEntry:
		c := *e
		stored = &c
		q = `INSERT INTO bmi_logs (user_id, created_at, weight, height, bmi, category) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
		args = []any{userID, ts, c.Weight, c.Height, c.BMI, string(c.Category)}
	case *domain.WaterEntry:
		c := *e
		stored = &c
		q = `INSERT INTO water_logs (user_id, created_at, cups) VALUES (?, ?, ?) RETURNING id`
		args = []any{userID, ts, c.Cups}
	case *domain.SleepEntry:
		c := *e
		stored = &c
		q = `INSERT INTO sleep_logs (user_id, created_at, hours) VALUES (?, ?, ?) RETURNING id`
		args = []any{userID, ts, c.Hours}
	case *domain.CaloriesEntry:
		c := *e
		stored = &c
		q = `INSERT INTO calories_logs (user_id, created_at, target, actual, difference) VALUES (?, ?, ?, ?, ?) RETURNING id`
		args = []any{userID, ts, c.Target, c.Actual, c.Difference}
	default:
		return nil, fmt.Errorf("append %T: %w", entry, domain.ErrUnknownMetric)
	}

	meta := stored.Meta()
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&meta.ID); err != nil {
		return nil, domain.StoreError("append "+string(stored.Metric()), err)
	}
	meta.UserID = userID
	meta.CreatedAt = created
	return stored, nil
}

func (r *RecordRepository) Recent(ctx context.Context, userID int64, metric domain.Metric, limit int) ([]domain.Entry, error) {
	var cols, table string
	switch metric {
	case domain.MetricBMI:
		table, cols = "bmi_logs", "weight, height, bmi, category"
	case domain.MetricWater:
		table, cols = "water_logs", "cups"
	case domain.MetricSleep:
		table, cols = "sleep_logs", "hours"
	case domain.MetricCalories:
		table, cols = "calories_logs", "target, actual, difference"
	default:
		return nil, domain.ErrUnknownMetric
	}
	if limit <= 0 {
		return []domain.Entry{}, nil
	}

	q := `SELECT id, user_id, created_at, ` + cols + ` FROM ` + table + ` WHERE user_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, domain.StoreError("recent "+string(metric), err)
	}
	defer rows.Close()

	entries := make([]domain.Entry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows, metric)
		if err != nil {
			return nil, domain.StoreError("recent "+string(metric), err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("recent "+string(metric), err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows, metric domain.Metric) (domain.Entry, error) {
	var (
		meta    domain.EntryMeta
		created string
		err     error
		entry   domain.Entry
	)
	head := []any{&meta.ID, &meta.UserID, &created}

	switch metric {
	case domain.MetricBMI:
		var e domain.BMIEntry
		var category string
		err = rows.Scan(append(head, &e.Weight, &e.Height, &e.BMI, &category)...)
		e.Category = domain.BMICategory(category)
		entry = &e
	case domain.MetricWater:
		var e domain.WaterEntry
		err = rows.Scan(append(head, &e.Cups)...)
		entry = &e
	case domain.MetricSleep:
		var e domain.SleepEntry
		err = rows.Scan(append(head, &e.Hours)...)
		entry = &e
	case domain.MetricCalories:
		var e domain.CaloriesEntry
		err = rows.Scan(append(head, &e.Target, &e.Actual, &e.Difference)...)
		entry = &e
	}
	if err != nil {
		return nil, err
	}

	if meta.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	*entry.Meta() = meta
	return entry, nil
}
