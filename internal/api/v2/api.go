// internal/api/v2/api.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cyclesync/cyclesync-go/internal/calendar"
	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/datastore"
	"github.com/cyclesync/cyclesync-go/internal/errors"
	"github.com/cyclesync/cyclesync-go/internal/forecast"
	"github.com/cyclesync/cyclesync-go/internal/logging"
	"github.com/cyclesync/cyclesync-go/internal/observability"
)

// Controller manages the API routes and handlers
type Controller struct {
	Echo       *echo.Echo
	Group      *echo.Group
	DS         datastore.Interface
	Settings   *conf.Settings
	Projector  *calendar.Projector
	Forecaster *forecast.Forecaster
	Worker     *forecast.Worker
	Metrics    *observability.Metrics

	apiLogger *slog.Logger
	startTime time.Time
}

// New creates a new API controller and registers its routes on the given
// Echo instance. Worker and Metrics may be nil; the affected features
// degrade quietly.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	projector *calendar.Projector, forecaster *forecast.Forecaster,
	worker *forecast.Worker, metrics *observability.Metrics) *Controller {

	c := &Controller{
		Echo:       e,
		DS:         ds,
		Settings:   settings,
		Projector:  projector,
		Forecaster: forecaster,
		Worker:     worker,
		Metrics:    metrics,
		apiLogger:  logging.ForService("api"),
		startTime:  time.Now(),
	}
	if c.apiLogger == nil {
		c.apiLogger = slog.Default().With("service", "api")
	}

	c.Group = e.Group("/api/v2")
	c.Group.Use(middleware.Recover())
	c.Group.Use(middleware.CORS())
	c.Group.Use(middleware.BodyLimit("1M"))
	c.Group.Use(c.LoggingMiddleware())

	c.initRoutes()
	return c
}

// LoggingMiddleware creates a middleware function that logs API requests
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			req := ctx.Request()
			res := ctx.Response()
			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.String("ip", ctx.RealIP()),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			c.apiLogger.LogAttrs(req.Context(), slog.LevelInfo, "API Request", attrs...)

			return err
		}
	}
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	c.Group.GET("/profile", c.GetProfile)
	c.Group.PUT("/profile", c.UpdateProfile)

	c.initCalendarRoutes()
	c.initCycleRoutes()
	c.initEntryRoutes()
	c.initPredictionRoutes()
	c.initStatsRoutes()

	if c.Metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.Metrics.Handler()))
	}
}

// HealthCheck handles the API health check endpoint
func (c *Controller) HealthCheck(ctx echo.Context) error {
	dbStatus := "connected"
	if _, err := c.DS.GetUserIDs(); err != nil {
		dbStatus = "disconnected"
	}

	uptime := time.Since(c.startTime)
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":          "healthy",
		"timestamp":       time.Now().Format(time.RFC3339),
		"database_status": dbStatus,
		"uptime_seconds":  uptime.Seconds(),
	})
}

// userID extracts the calling user's identifier. Authentication is handled
// upstream; the API trusts the X-User-ID header and falls back to the
// user_id query parameter.
func (c *Controller) userID(ctx echo.Context) (string, error) {
	if id := ctx.Request().Header.Get("X-User-ID"); id != "" {
		return id, nil
	}
	if id := ctx.QueryParam("user_id"); id != "" {
		return id, nil
	}
	return "", errors.Newf("missing user identification").
		Component("api").
		Category(errors.CategoryValidation).
		Build()
}

// ErrorResponse is the JSON error body returned by all handlers.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// HandleError logs the error and writes a standardized JSON error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	correlationID := uuid.NewString()[:8]

	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	c.apiLogger.Error(message,
		"error", errorStr,
		"code", code,
		"correlation_id", correlationID,
		"path", ctx.Request().URL.Path,
	)

	return ctx.JSON(code, &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	})
}
