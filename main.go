package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/url-shortener/config"
	"github.com/example/url-shortener/modules/analytics"
	"github.com/example/url-shortener/modules/httpserver"
	"github.com/example/url-shortener/modules/ratelimit"
	"github.com/example/url-shortener/modules/shortener"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== URL Shortener ===")

	cfg := config.Load()

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	rateLimitModule := ratelimit.NewModule(ratelimit.ModuleConfig{
		Limit:           cfg.RateLimit,
		Backend:         cfg.RateLimitBackend,
		JanitorInterval: cfg.RateLimitJanitorInterval,
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		RedisDB:         cfg.RedisDB,
	}, logger.WithModule("rate-limiter"))

	analyticsModule := analytics.NewModule(
		cfg.RecentAccessCapacity,
		analytics.RecorderConfig{
			QueueSize:  cfg.AnalyticsQueueSize,
			NumWorkers: cfg.AnalyticsWorkers,
		},
		logger.WithModule("analytics"),
	)

	shortenerModule := shortener.NewModule(shortener.ModuleConfig{
		CodeLength:    cfg.ShortCodeLength,
		Alphabet:      cfg.ShortCodeAlphabet,
		BaseURL:       cfg.ShortDomain,
		SweepInterval: cfg.LinkSweepInterval,
	}, analyticsModule, rateLimitModule, logger.WithModule("shortener"))

	httpModule := httpserver.NewModule(httpserver.ModuleConfig{
		Addr:               fmt.Sprintf(":%d", cfg.Port),
		AdminAPIKey:        cfg.AdminAPIKey,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, shortenerModule, analyticsModule, rateLimitModule, logger.WithModule("http-server"))

	// Order: independent modules first, then modules with dependencies
	// - rate-limiter: creation quota (memory or Redis)
	// - analytics: access tracking, consumes link events
	// - shortener: mapping store, emits link events
	// - http-server: Fiber HTTP API, depends on all of the above
	app.Register(rateLimitModule)
	app.Register(analyticsModule)
	app.Register(shortenerModule)
	app.Register(httpModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("  - Short domain: %s", cfg.ShortDomain)
	log.Printf("  - Short code length: %d", cfg.ShortCodeLength)
	if cfg.RateLimit.Enabled {
		log.Printf("  - Rate limit: %d requests per %s per IP (%s backend)",
			cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, cfg.RateLimitBackend)
	} else {
		log.Println("  - Rate limit: disabled")
	}
	log.Printf("  - Admin API key: %s...", maskKey(cfg.AdminAPIKey))
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.Port)
	log.Println("  POST   /api/shorten                   - Shorten a URL")
	log.Println("  GET    /:code                         - Redirect to original URL")
	log.Println("  GET    /api/analytics/:code           - Get link analytics")
	log.Println("  GET    /api/analytics                 - Get analytics summary")
	log.Println("  DELETE /api/admin/shorten/:code       - Delete a link (X-Admin-API-Key)")
	log.Println("  GET    /health                        - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// maskKey returns the first four characters of key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[:4]
}
