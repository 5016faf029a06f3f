package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

// RecordRepository stores each metric in its own collection, with the same
// field names as the SQL tables.
type RecordRepository struct {
	db  *mongo.Database
	seq *sequence
	now func() time.Time
}

func NewRecordRepository(db *mongo.Database) *RecordRepository {
	return &RecordRepository{db: db, seq: newSequence(db), now: time.Now}
}

type metaDoc struct {
	ID        int64     `bson:"_id"`
	UserID    int64     `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func (m metaDoc) toDomain() domain.EntryMeta {
	return domain.EntryMeta{ID: m.ID, UserID: m.UserID, CreatedAt: m.CreatedAt.UTC()}
}

type bmiDoc struct {
	Meta     metaDoc `bson:",inline"`
	Weight   float64 `bson:"weight"`
	Height   float64 `bson:"height"`
	BMI      float64 `bson:"bmi"`
	Category string  `bson:"category"`
}

type waterDoc struct {
	Meta metaDoc `bson:",inline"`
	Cups float64 `bson:"cups"`
}

type sleepDoc struct {
	Meta  metaDoc `bson:",inline"`
	Hours float64 `bson:"hours"`
}

type caloriesDoc struct {
	Meta       metaDoc `bson:",inline"`
	Target     float64 `bson:"target"`
	Actual     float64 `bson:"actual"`
	Difference float64 `bson:"difference"`
}

func (r *RecordRepository) Append(ctx context.Context, userID int64, entry domain.Entry) (domain.Entry, error) {
	name, ok := logCollections[entry.Metric()]
	if !ok {
		return nil, fmt.Errorf("append %T: %w", entry, domain.ErrUnknownMetric)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, name)
	if err != nil {
		return nil, domain.StoreError("next "+name+" id", err)
	}
	meta := metaDoc{ID: id, UserID: userID, CreatedAt: storeNow(r.now)}

	var (
		doc    any
		stored domain.Entry
	)
	switch e := entry.(type) {
	case *domain.BMIEntry:
		doc = bmiDoc{Meta: meta, Weight: e.Weight, Height: e.Height, BMI: e.BMI, Category: string(e.Category)}
		c := *e
		stored = &c
	case *domain.WaterEntry:
		doc = waterDoc{Meta: meta, Cups: e.Cups}
		c := *e
		stored = &c
	case *domain.SleepEntry:
		doc = sleepDoc{Meta: meta, Hours: e.Hours}
		c := *e
		stored = &c
	case *domain.CaloriesEntry:
		doc = caloriesDoc{Meta: meta, Target: e.Target, Actual: e.Actual, Difference: e.Difference}
		c := *e
		stored = &c
	default:
		return nil, fmt.Errorf("append %T: %w", entry, domain.ErrUnknownMetric)
	}

	if _, err := r.db.Collection(name).InsertOne(ctx, doc); err != nil {
		return nil, domain.StoreError("insert "+name, err)
	}
	*stored.Meta() = meta.toDomain()
	return stored, nil
}

func (r *RecordRepository) Recent(ctx context.Context, userID int64, metric domain.Metric, limit int) ([]domain.Entry, error) {
	name, ok := logCollections[metric]
	if !ok {
		return nil, domain.ErrUnknownMetric
	}
	if limit <= 0 {
		return []domain.Entry{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.db.Collection(name).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, domain.StoreError("find "+name, err)
	}
	defer cur.Close(ctx)

	entries := make([]domain.Entry, 0, limit)
	for cur.Next(ctx) {
		e, err := decodeEntry(cur, metric)
		if err != nil {
			return nil, domain.StoreError("decode "+name, err)
		}
		entries = append(entries, e)
	}
	if err := cur.Err(); err != nil {
		return nil, domain.StoreError("find "+name, err)
	}
	return entries, nil
}

func decodeEntry(cur *mongo.Cursor, metric domain.Metric) (domain.Entry, error) {
	switch metric {
	case domain.MetricBMI:
		var d bmiDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		return &domain.BMIEntry{EntryMeta: d.Meta.toDomain(), Weight: d.Weight, Height: d.Height, BMI: d.BMI, Category: domain.BMICategory(d.Category)}, nil
	case domain.MetricWater:
		var d waterDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		return &domain.WaterEntry{EntryMeta: d.Meta.toDomain(), Cups: d.Cups}, nil
	case domain.MetricSleep:
		var d sleepDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		return &domain.SleepEntry{EntryMeta: d.Meta.toDomain(), Hours: d.Hours}, nil
	case domain.MetricCalories:
		var d caloriesDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		return &domain.CaloriesEntry{EntryMeta: d.Meta.toDomain(), Target: d.Target, Actual: d.Actual, Difference: d.Difference}, nil
	}
	return nil, domain.ErrUnknownMetric
}
