package shortener

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/example/url-shortener/domain/link"
	"github.com/example/url-shortener/events"
	"github.com/example/url-shortener/modules/analytics"
	"github.com/example/url-shortener/modules/ratelimit"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// ModuleConfig holds the settings of the shortener module.
type ModuleConfig struct {
	CodeLength    int
	Alphabet      string
	BaseURL       string
	SweepInterval time.Duration
}

// Module owns the mapping store and exposes the shortener service.
type Module struct {
	config    ModuleConfig
	analytics *analytics.Module
	rateLimit *ratelimit.Module
	store     *Store
	service   *Service
	eventBus  mono.EventBus
	logger    types.Logger

	sweepCancel context.CancelFunc
	sweepWG     sync.WaitGroup
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ link.Observer              = (*Module)(nil)
)

// NewModule creates a new shortener module. The analytics and rate limiter
// modules must be registered before it.
func NewModule(cfg ModuleConfig, analyticsModule *analytics.Module, rateLimitModule *ratelimit.Module, logger types.Logger) *Module {
	return &Module{
		config:    cfg,
		analytics: analyticsModule,
		rateLimit: rateLimitModule,
		logger:    logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "shortener"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.LinkCreatedV1.ToBase(),
		events.LinkRemovedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-link", json.Unmarshal, json.Marshal, m.createLink,
	); err != nil {
		return fmt.Errorf("failed to register create-link service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "resolve-link", json.Unmarshal, json.Marshal, m.resolveLink,
	); err != nil {
		return fmt.Errorf("failed to register resolve-link service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-link", json.Unmarshal, json.Marshal, m.deleteLink,
	); err != nil {
		return fmt.Errorf("failed to register delete-link service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-link-analytics", json.Unmarshal, json.Marshal, m.getLinkAnalytics,
	); err != nil {
		return fmt.Errorf("failed to register get-link-analytics service: %w", err)
	}

	m.logger.Info("Registered shortener services",
		"services", []string{"create-link", "resolve-link", "delete-link", "get-link-analytics"})
	return nil
}

// Start builds the store and service and starts the optional expiry sweep.
func (m *Module) Start(_ context.Context) error {
	if m.analytics == nil || m.analytics.Tracker() == nil {
		return fmt.Errorf("analytics module not set")
	}
	if m.rateLimit == nil || m.rateLimit.Limiter() == nil {
		return fmt.Errorf("rate limiter not initialized")
	}
	if m.eventBus == nil {
		m.logger.Warn("eventBus not set, link events will not be published")
	}

	generate, err := NewCodeGenerator(m.config.CodeLength, m.config.Alphabet)
	if err != nil {
		return err
	}

	tracker := m.analytics.Tracker()
	m.store = NewStore(generate, WithCompanions(tracker), WithObservers(m))
	m.service = NewService(
		m.store,
		tracker,
		m.analytics.Recorder(),
		m.rateLimit.Limiter(),
		m.config.BaseURL,
		m.logger,
	)

	if m.config.SweepInterval > 0 {
		m.startSweeper(m.config.SweepInterval)
	}

	m.logger.Info("Shortener module started",
		"baseURL", m.config.BaseURL,
		"codeLength", m.config.CodeLength,
		"sweepInterval", m.config.SweepInterval.String())
	return nil
}

// Stop stops the expiry sweep.
func (m *Module) Stop(_ context.Context) error {
	if m.sweepCancel != nil {
		m.sweepCancel()
		m.sweepWG.Wait()
	}
	m.logger.Info("Shortener module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"links":          m.store.Len(),
			"sweep_interval": m.config.SweepInterval.String(),
		},
	}
}

// Service returns the shortener service instance.
func (m *Module) Service() *Service {
	return m.service
}

// startSweeper removes expired links on every tick until Stop.
func (m *Module) startSweeper(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	m.sweepCancel = cancel

	m.sweepWG.Add(1)
	go func() {
		defer m.sweepWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.store.Sweep(); n > 0 {
					m.logger.Info("Swept expired links", "count", n)
				}
			}
		}
	}()
}

// LinkCreated publishes a LinkCreated event.
func (m *Module) LinkCreated(rec link.Record) {
	if m.eventBus == nil {
		return
	}
	if err := events.LinkCreatedV1.Publish(m.eventBus, events.LinkCreatedEvent{
		LinkID:         rec.ID,
		ShortCode:      rec.Code,
		DestinationURL: rec.DestinationURL,
		CreatedAt:      rec.CreatedAt,
		ExpiresAt:      rec.ExpiresAt,
	}, nil); err != nil {
		m.logger.Warn("Failed to publish LinkCreated event",
			"shortCode", rec.Code,
			"error", err)
	}
}

// LinkRemoved publishes a LinkRemoved event.
func (m *Module) LinkRemoved(rec link.Record, reason link.RemovalReason) {
	if reason == link.RemovedExpired {
		m.logger.Info("Short link expired", "shortCode", rec.Code)
	}
	if m.eventBus == nil {
		return
	}
	if err := events.LinkRemovedV1.Publish(m.eventBus, events.LinkRemovedEvent{
		LinkID:    rec.ID,
		ShortCode: rec.Code,
		Reason:    string(reason),
		RemovedAt: time.Now().UTC(),
	}, nil); err != nil {
		m.logger.Warn("Failed to publish LinkRemoved event",
			"shortCode", rec.Code,
			"error", err)
	}
}
