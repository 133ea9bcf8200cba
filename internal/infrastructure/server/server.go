package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/flatpress/core/internal/adapters/http"
	"github.com/flatpress/core/internal/application/services"
	"github.com/flatpress/core/internal/domain/entities"
	"github.com/flatpress/core/internal/infrastructure/config"
	"github.com/flatpress/core/internal/infrastructure/logger"
	"github.com/flatpress/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance wired against the given post repository.
func New(cfg *config.Config, postRepo ports.PostRepository, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// HTML renderer for the operator pages
	renderer, err := httpHandlers.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	e.Renderer = renderer

	// Initialize services
	postService := services.NewPostService(postRepo, appLogger)

	// Initialize handlers
	postHandler := httpHandlers.NewPostHandler(postService, appLogger)
	webHandler := httpHandlers.NewWebHandler(postService, appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(postHandler, webHandler)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics(postService)
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(postHandler *httpHandlers.PostHandler, webHandler *httpHandlers.WebHandler) {
	// Health check route
	s.echo.GET("/health", s.healthCheck)

	// Operator-facing HTML pages
	s.echo.GET("/", webHandler.Index)
	s.echo.GET("/posts/:id", webHandler.ShowPost)
	s.echo.GET("/add", webHandler.AddForm)
	s.echo.POST("/add", webHandler.Add)
	s.echo.GET("/update/:id", webHandler.EditForm)
	s.echo.POST("/update/:id", webHandler.Edit)
	s.echo.POST("/delete/:id", webHandler.Delete)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	postGroup := v1.Group("/posts")
	postGroup.GET("", postHandler.ListPosts)
	postGroup.POST("", postHandler.CreatePost)
	postGroup.GET("/:id", postHandler.GetPost)
	postGroup.PUT("/:id", postHandler.UpdatePost)
	postGroup.DELETE("/:id", postHandler.DeletePost)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics(postService *services.PostService) {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	postsGauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "blog_posts",
			Help: "Number of posts in the store",
		},
		func() float64 {
			return float64(postService.CountPosts(context.Background()))
		},
	)

	registry.MustRegister(requestsTotal, requestDuration, postsGauge)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// healthCheck reports liveness
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// statusForError maps domain errors onto HTTP status codes. The four error
// kinds stay distinguishable all the way to the response.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, entities.ErrPostNotFound):
		return http.StatusNotFound, "Post not found"
	case errors.Is(err, entities.ErrInvalidPost):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, entities.ErrPersistFailed):
		return http.StatusServiceUnavailable, "Failed to save posts, please retry"
	case errors.Is(err, entities.ErrStoreCorrupt):
		return http.StatusInternalServerError, "Post storage is corrupt"
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

// customErrorHandler handles HTTP errors. API routes answer JSON, the HTML
// pages render the error template.
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  string
		)

		var he *echo.HTTPError
		var ve validator.ValidationErrors
		switch {
		case errors.As(err, &he):
			code = he.Code
			msg = fmt.Sprintf("%v", he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		case errors.As(err, &ve):
			code = http.StatusBadRequest
			msg = "validation failed: " + ve.Error()
		default:
			code, msg = statusForError(err)
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if c.Response().Committed {
			return
		}

		var respErr error
		switch {
		case c.Request().Method == echo.HEAD:
			respErr = c.NoContent(code)
		case wantsHTML(c):
			respErr = c.Render(code, "error.html", map[string]interface{}{
				"Status":  fmt.Sprintf("%d %s", code, http.StatusText(code)),
				"Message": msg,
			})
		default:
			respErr = c.JSON(code, httpHandlers.ErrorResponse{Error: msg})
		}
		if respErr != nil {
			logger.Error("Error sending response", "error", respErr)
		}
	}
}

// wantsHTML reports whether the request came from the HTML pages rather
// than the JSON API.
func wantsHTML(c echo.Context) bool {
	if strings.HasPrefix(c.Path(), "/api/") {
		return false
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
