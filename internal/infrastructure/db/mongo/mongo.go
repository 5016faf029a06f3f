package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sirpyerre/healthlog/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers    = "users"
	collectionCounters = "counters"
)

// logCollections maps each metric to its collection.
var logCollections = map[domain.Metric]string{
	domain.MetricBMI:      "bmi_logs",
	domain.MetricWater:    "water_logs",
	domain.MetricSleep:    "sleep_logs",
	domain.MetricCalories: "calories_logs",
}

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the unique username index and the per-user history
// indexes. Safe to run on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(collectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_username"),
	})
	if err != nil {
		return fmt.Errorf("ensure users index: %w", err)
	}

	for _, name := range logCollections {
		_, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("user_recent"),
		})
		if err != nil {
			return fmt.Errorf("ensure %s index: %w", name, err)
		}
	}
	return nil
}

// Pinger exposes the client to the readiness probe.
type Pinger struct{ Client *mongo.Client }

func (p Pinger) Ping(ctx context.Context) error { return p.Client.Ping(ctx, readpref.Primary()) }

func storeNow(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Millisecond)
}
