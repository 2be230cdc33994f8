package httpserver

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/url-shortener/modules/analytics"
	"github.com/example/url-shortener/modules/ratelimit"
	"github.com/example/url-shortener/modules/shortener"
)

// AdminKeyHeader carries the admin API key on admin routes.
const AdminKeyHeader = "X-Admin-API-Key"

// ModuleConfig holds the HTTP server settings.
type ModuleConfig struct {
	Addr               string
	AdminAPIKey        string
	CORSAllowedOrigins string
}

// Module implements the HTTP server module using Fiber framework.
type Module struct {
	config          ModuleConfig
	app             *fiber.App
	handlers        *Handlers
	shortenerModule *shortener.Module
	analyticsModule *analytics.Module
	rateLimitModule *ratelimit.Module
	logger          types.Logger
}

var _ mono.Module = (*Module)(nil)

// NewModule creates a new HTTP server module.
func NewModule(
	cfg ModuleConfig,
	shortenerModule *shortener.Module,
	analyticsModule *analytics.Module,
	rateLimitModule *ratelimit.Module,
	moduleLogger types.Logger,
) *Module {
	if cfg.CORSAllowedOrigins == "" {
		cfg.CORSAllowedOrigins = "http://localhost:3000,http://localhost:8080"
	}
	return &Module{
		config:          cfg,
		shortenerModule: shortenerModule,
		analyticsModule: analyticsModule,
		rateLimitModule: rateLimitModule,
		logger:          moduleLogger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "http-server"
}

// Start initializes and starts the HTTP server.
func (m *Module) Start(ctx context.Context) error {
	if err := m.setup(); err != nil {
		return err
	}

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.config.Addr); err != nil {
			errCh <- err
		}
	}()

	// Wait briefly to catch immediate startup errors (port in use, permission denied)
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", m.config.Addr)
	return nil
}

// setup builds the Fiber app, its middleware and routes.
func (m *Module) setup() error {
	if m.shortenerModule == nil || m.shortenerModule.Service() == nil {
		return fmt.Errorf("shortener module not started")
	}
	if m.rateLimitModule == nil || m.rateLimitModule.GetMiddleware() == nil {
		return fmt.Errorf("rate limiter module not started")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "URL Shortener",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: m.config.CORSAllowedOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization," + AdminKeyHeader,
	}))

	m.handlers = NewHandlers(
		m.shortenerModule.Service(),
		m.analyticsModule.Summary,
		[]HealthChecker{m.rateLimitModule, m.analyticsModule, m.shortenerModule},
		m.logger,
	)

	m.registerRoutes()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// registerRoutes sets up all HTTP routes.
func (m *Module) registerRoutes() {
	m.app.Get("/health", m.handlers.HealthCheck)

	api := m.app.Group("/api")

	// Creation is the only rate limited operation
	api.Post("/shorten", m.rateLimitModule.GetMiddleware().IPRateLimit(), m.handlers.ShortenURL)

	api.Get("/analytics", m.handlers.GetSummary)
	api.Get("/analytics/:shortCode", m.handlers.GetAnalytics)

	admin := api.Group("/admin", m.requireAdminKey)
	admin.Delete("/shorten/:shortCode", m.handlers.DeleteURL)

	// Redirect (must be last to avoid conflicts)
	m.app.Get("/:shortCode", m.handlers.Redirect)
}

// requireAdminKey rejects requests without the configured admin API key.
func (m *Module) requireAdminKey(c *fiber.Ctx) error {
	provided := c.Get(AdminKeyHeader)
	if m.config.AdminAPIKey == "" ||
		subtle.ConstantTimeCompare([]byte(provided), []byte(m.config.AdminAPIKey)) != 1 {
		m.logger.Warn("Rejected admin request", "ip", c.IP(), "path", c.Path())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
	return c.Next()
}

// errorHandler handles errors globally.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	m.logger.Error("HTTP error", "code", code, "message", message, "error", err)

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
