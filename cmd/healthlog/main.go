// @title           healthlog API
// @version         1.0
// @description     Personal health tracker: BMI, water, sleep and calorie logs per user.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/healthlog/internal/api"
	"github.com/sirpyerre/healthlog/internal/core/ports"
	"github.com/sirpyerre/healthlog/internal/core/service"
	"github.com/sirpyerre/healthlog/internal/infrastructure/config"
	mongodb "github.com/sirpyerre/healthlog/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/healthlog/internal/infrastructure/db/redis"
	"github.com/sirpyerre/healthlog/internal/infrastructure/db/sqlite"
	"github.com/sirpyerre/healthlog/internal/infrastructure/http/handlers"
	"github.com/sirpyerre/healthlog/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	accounts  ports.AccountRepository
	records   ports.RecordRepository
	readiness map[string]handlers.Pinger
	closers   []func(context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "healthlog",
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer st.close(log)

	// Denylist and guard stay nil interfaces when Redis is not configured.
	var (
		denylist ports.TokenDenylist
		guard    ports.SubmissionGuard
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		st.closers = append(st.closers, func(context.Context) error { return rdb.Close() })
		st.readiness["redis"] = redisdb.Pinger{Client: rdb}
		denylist = redisdb.NewDenylist(rdb)
		guard = redisdb.NewSubmissionGuard(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set: logout only clears the cookie and Idempotency-Key is ignored")
	}

	accountSvc := service.NewAccountService(st.accounts, denylist, cfg.JWTSecret, cfg.TokenTTL, log)
	trackerSvc := service.NewTrackerService(st.records, log)

	e := api.NewRouter(api.Deps{
		Logger:         log,
		JWTSecret:      cfg.JWTSecret,
		SecureCookies:  !cfg.IsDevelopment(),
		AccountService: accountSvc,
		TrackerService: trackerSvc,
		Denylist:       denylist,
		Guard:          guard,
		Readiness:      st.readiness,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received interruption signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	log.Info().Msg("shutdown complete")
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &stores{
			accounts:  mongodb.NewAccountRepository(db),
			records:   mongodb.NewRecordRepository(db),
			readiness: map[string]handlers.Pinger{"mongodb": mongodb.Pinger{Client: client}},
			closers:   []func(context.Context) error{client.Disconnect},
		}, nil
	default:
		db, err := sqlite.Open(ctx, cfg.Store.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			accounts:  sqlite.NewAccountRepository(db),
			records:   sqlite.NewRecordRepository(db),
			readiness: map[string]handlers.Pinger{"sqlite": sqlite.Pinger{DB: db}},
			closers:   []func(context.Context) error{func(context.Context) error { return db.Close() }},
		}, nil
	}
}

func (s *stores) close(log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Error().Err(err).Msg("failed to close store connection")
		}
	}
}
