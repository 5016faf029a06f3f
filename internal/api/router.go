package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sirpyerre/healthlog/docs"
	"github.com/sirpyerre/healthlog/internal/api/handler"
	"github.com/sirpyerre/healthlog/internal/api/middleware"
	"github.com/sirpyerre/healthlog/internal/core/ports"
	"github.com/sirpyerre/healthlog/internal/infrastructure/http/handlers"
)

// Deps carries everything the router needs. Denylist and Guard are nil when
// Redis is not configured.
type Deps struct {
	Logger         zerolog.Logger
	JWTSecret      string
	SecureCookies  bool
	AccountService ports.AccountService
	TrackerService ports.TrackerService
	Denylist       ports.TokenDenylist
	Guard          ports.SubmissionGuard
	Readiness      map[string]handlers.Pinger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "healthlog",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))
	e.Use(echomiddleware.BodyLimit("64K"))

	authHandler := handler.NewAuthHandler(d.AccountService, d.SecureCookies)
	trackerHandler := handler.NewTrackerHandler(d.TrackerService, d.Guard, d.Logger)
	requireSession := middleware.Auth(d.JWTSecret, d.Denylist)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, requireSession)

	// --- Tracker routes (session required) ---
	v1 := e.Group("/v1", requireSession)
	v1.GET("/me", authHandler.Me)
	v1.GET("/:metric", trackerHandler.History)
	v1.POST("/:metric", trackerHandler.Submit)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil || v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			userID, _ := c.Get(middleware.CtxUserID).(int64)
			if username, ok := c.Get(middleware.CtxUsername).(string); ok {
				event = event.Str("username", username)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Int64("user_id", userID).
				Msg("request")
			return nil
		},
	})
}
