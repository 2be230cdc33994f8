package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/url-shortener/domain/link"
	"github.com/example/url-shortener/events"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func newMockLogger() types.Logger {
	return &mockLogger{}
}

func TestSummaryStore(t *testing.T) {
	store := NewSummaryStore()

	summary := store.Summary()
	assert.Equal(t, int64(0), summary.LinksCreated)
	assert.Nil(t, summary.LastCreatedAt)
	assert.Empty(t, summary.LinksRemoved)

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	store.RecordCreated(second)
	store.RecordCreated(first)
	store.RecordRemoved(string(link.RemovedDeleted))
	store.RecordRemoved(string(link.RemovedExpired))
	store.RecordRemoved(string(link.RemovedExpired))

	summary = store.Summary()
	assert.Equal(t, int64(2), summary.LinksCreated)
	require.NotNil(t, summary.LastCreatedAt)
	assert.Equal(t, second, *summary.LastCreatedAt)
	assert.Equal(t, int64(1), summary.LinksRemoved["deleted"])
	assert.Equal(t, int64(2), summary.LinksRemoved["expired"])

	// The returned map is a copy
	summary.LinksRemoved["deleted"] = 100
	assert.Equal(t, int64(1), store.Summary().LinksRemoved["deleted"])
}

func TestModule_Name(t *testing.T) {
	m := NewModule(0, DefaultRecorderConfig(), newMockLogger())
	assert.Equal(t, "analytics", m.Name())
}

func TestModule_EventHandlers(t *testing.T) {
	m := NewModule(0, DefaultRecorderConfig(), newMockLogger())
	ctx := context.Background()
	createdAt := time.Now().UTC()

	require.NoError(t, m.handleLinkCreated(ctx, events.LinkCreatedEvent{
		LinkID:         "id-1",
		ShortCode:      "abc",
		DestinationURL: "https://example.com",
		CreatedAt:      createdAt,
	}, &mono.Msg{}))
	require.NoError(t, m.handleLinkRemoved(ctx, events.LinkRemovedEvent{
		LinkID:    "id-1",
		ShortCode: "abc",
		Reason:    string(link.RemovedSwept),
		RemovedAt: createdAt,
	}, &mono.Msg{}))

	summary := m.Summary()
	assert.Equal(t, int64(1), summary.LinksCreated)
	assert.Equal(t, int64(1), summary.LinksRemoved["swept"])
}

func TestModule_GetSummaryService(t *testing.T) {
	m := NewModule(0, DefaultRecorderConfig(), newMockLogger())
	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	defer m.Stop(ctx)

	m.Tracker().Attach(link.Record{ID: "id-1", Code: "abc", CreatedAt: time.Now()})
	m.Recorder().Notify("abc", "id-1", link.AccessEvent{Timestamp: time.Now()})

	require.Eventually(t, func() bool {
		return m.Recorder().Stats().Processed == 1
	}, 2*time.Second, 5*time.Millisecond)

	data, err := m.handleGetSummary(ctx, &mono.Msg{})
	require.NoError(t, err)

	var summary Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 1, summary.LinksTracked)
	assert.Equal(t, uint64(1), summary.AccessRecorder.Processed)
	assert.Equal(t, 1024, summary.AccessRecorder.Capacity)
}

func TestModule_Health(t *testing.T) {
	m := NewModule(0, RecorderConfig{QueueSize: 1, NumWorkers: 1}, newMockLogger())

	status := m.Health(context.Background())
	assert.True(t, status.Healthy)

	// Not started: the single slot fills up
	m.Recorder().Notify("abc", "id-1", link.AccessEvent{})
	status = m.Health(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "access queue full", status.Message)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop(context.Background()))
}
