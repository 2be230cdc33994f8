package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/url-shortener/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module implements the analytics module. It owns the per-code tracker and
// the access queue, and aggregates link lifecycle events into a summary.
type Module struct {
	tracker  *Tracker
	recorder *Recorder
	summary  *SummaryStore
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new analytics module.
func NewModule(capacity int, recorderConfig RecorderConfig, logger types.Logger) *Module {
	tracker := NewTracker(capacity, logger)
	return &Module{
		tracker:  tracker,
		recorder: NewRecorder(recorderConfig, tracker, logger),
		summary:  NewSummaryStore(),
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "analytics"
}

// RegisterEventConsumers registers event handlers for link events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.LinkCreatedV1, m.handleLinkCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register LinkCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.LinkRemovedV1, m.handleLinkRemoved, m,
	); err != nil {
		return fmt.Errorf("failed to register LinkRemoved consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", []string{"LinkCreated.v1", "LinkRemoved.v1"})
	return nil
}

func (m *Module) handleLinkCreated(_ context.Context, event events.LinkCreatedEvent, _ *mono.Msg) error {
	m.summary.RecordCreated(event.CreatedAt)
	m.logger.Debug("Recorded link creation", "shortCode", event.ShortCode)
	return nil
}

func (m *Module) handleLinkRemoved(_ context.Context, event events.LinkRemovedEvent, _ *mono.Msg) error {
	m.summary.RecordRemoved(event.Reason)
	m.logger.Debug("Recorded link removal",
		"shortCode", event.ShortCode,
		"reason", event.Reason)
	return nil
}

// RegisterServices registers this module's services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := container.RegisterRequestReplyService("get-analytics-summary", m.handleGetSummary); err != nil {
		return fmt.Errorf("failed to register get-analytics-summary service: %w", err)
	}

	m.logger.Info("Registered analytics services", "services", []string{"get-analytics-summary"})
	return nil
}

// handleGetSummary handles get-analytics-summary service requests.
func (m *Module) handleGetSummary(_ context.Context, _ *mono.Msg) ([]byte, error) {
	return json.Marshal(m.Summary())
}

// Start launches the access workers.
func (m *Module) Start(ctx context.Context) error {
	if err := m.recorder.Start(ctx); err != nil {
		return fmt.Errorf("failed to start access recorder: %w", err)
	}
	m.logger.Info("Analytics module started", "recentAccessCapacity", m.tracker.Capacity())
	return nil
}

// Stop drains pending access notifications.
func (m *Module) Stop(ctx context.Context) error {
	if err := m.recorder.Stop(ctx); err != nil {
		m.logger.Warn("Access recorder did not drain", "error", err)
	}
	m.logger.Info("Analytics module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	stats := m.recorder.Stats()
	healthy := stats.Queued < stats.Capacity
	message := "operational"
	if !healthy {
		message = "access queue full"
	}
	return mono.HealthStatus{
		Healthy: healthy,
		Message: message,
		Details: map[string]any{
			"links_tracked": m.tracker.Len(),
			"queued":        stats.Queued,
			"inline":        stats.Inline,
		},
	}
}

// Tracker returns the per-code analytics tracker.
func (m *Module) Tracker() *Tracker {
	return m.tracker
}

// Recorder returns the access queue.
func (m *Module) Recorder() *Recorder {
	return m.recorder
}

// Summary returns the service-wide analytics overview.
func (m *Module) Summary() Summary {
	summary := m.summary.Summary()
	summary.LinksTracked = m.tracker.Len()
	summary.AccessRecorder = m.recorder.Stats()
	return summary
}
