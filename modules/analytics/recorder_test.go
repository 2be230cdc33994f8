package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/url-shortener/domain/link"
)

// countingSink counts received accesses per code. When gate is set, accesses
// to slowCode block until the gate is closed.
type countingSink struct {
	mu     sync.Mutex
	counts map[string]int
	ids    map[string][]string
	gate   chan struct{}
}

func newCountingSink() *countingSink {
	return &countingSink{
		counts: make(map[string]int),
		ids:    make(map[string][]string),
	}
}

const slowCode = "slow"

func (s *countingSink) RecordAccess(code, linkID string, _ link.AccessEvent) {
	if s.gate != nil && code == slowCode {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[code]++
	s.ids[code] = append(s.ids[code], linkID)
}

func (s *countingSink) linkIDs(code string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids[code]...)
}

func (s *countingSink) count(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[code]
}

func TestRecorder_DefaultConfig(t *testing.T) {
	r := NewRecorder(RecorderConfig{}, newCountingSink(), newMockLogger())
	assert.Equal(t, DefaultRecorderConfig(), r.config)
	assert.Equal(t, 1024, r.Stats().Capacity)
}

func TestRecorder_DeliversAccesses(t *testing.T) {
	sink := newCountingSink()
	r := NewRecorder(RecorderConfig{QueueSize: 16, NumWorkers: 3}, sink, newMockLogger())
	require.NoError(t, r.Start(context.Background()))

	for i := 0; i < 10; i++ {
		r.Notify("abc", "id-1", link.AccessEvent{Timestamp: time.Now()})
	}

	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, 10, sink.count("abc"))

	stats := r.Stats()
	assert.Equal(t, uint64(10), stats.Processed)
	assert.Equal(t, uint64(0), stats.Inline)
}

func TestRecorder_CarriesLinkID(t *testing.T) {
	sink := newCountingSink()
	r := NewRecorder(RecorderConfig{QueueSize: 4, NumWorkers: 1}, sink, newMockLogger())
	require.NoError(t, r.Start(context.Background()))

	r.Notify("abc", "id-1", link.AccessEvent{})
	require.NoError(t, r.Stop(context.Background()))

	// Recorded inline once the workers are gone
	r.Notify("abc", "id-2", link.AccessEvent{})

	assert.Equal(t, []string{"id-1", "id-2"}, sink.linkIDs("abc"))
}

func TestRecorder_QueuedBeforeStartAreDrained(t *testing.T) {
	sink := newCountingSink()
	r := NewRecorder(RecorderConfig{QueueSize: 8, NumWorkers: 1}, sink, newMockLogger())

	r.Notify("abc", "id-1", link.AccessEvent{})
	r.Notify("abc", "id-1", link.AccessEvent{})
	assert.Equal(t, 2, r.Stats().Queued)

	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, 2, sink.count("abc"))
}

func TestRecorder_RecordsInlineWhenFull(t *testing.T) {
	sink := newCountingSink()
	sink.gate = make(chan struct{})
	r := NewRecorder(RecorderConfig{QueueSize: 2, NumWorkers: 1}, sink, newMockLogger())
	require.NoError(t, r.Start(context.Background()))

	// The worker takes the slow job and blocks on the gate
	r.Notify(slowCode, "id-1", link.AccessEvent{})
	require.Eventually(t, func() bool {
		return r.Stats().Queued == 0
	}, time.Second, time.Millisecond)

	// Two fill the queue, the rest are recorded by the caller
	for i := 0; i < 5; i++ {
		r.Notify("abc", "id-1", link.AccessEvent{})
	}

	stats := r.Stats()
	assert.Equal(t, 2, stats.Queued)
	assert.Equal(t, uint64(3), stats.Inline)
	assert.Equal(t, 3, sink.count("abc"))

	close(sink.gate)
	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, 5, sink.count("abc"))
	assert.Equal(t, 1, sink.count(slowCode))
	assert.Equal(t, uint64(6), r.Stats().Processed)
}

func TestRecorder_NotifyAfterStop(t *testing.T) {
	sink := newCountingSink()
	r := NewRecorder(RecorderConfig{QueueSize: 4, NumWorkers: 1}, sink, newMockLogger())
	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Stop(context.Background()))

	assert.NotPanics(t, func() {
		r.Notify("abc", "id-1", link.AccessEvent{})
	})
	assert.Equal(t, uint64(1), r.Stats().Inline)
	assert.Equal(t, 1, sink.count("abc"))

	// Stop is idempotent, a stopped recorder cannot be restarted
	assert.NoError(t, r.Stop(context.Background()))
	assert.Error(t, r.Start(context.Background()))
}

func TestRecorder_StartTwice(t *testing.T) {
	r := NewRecorder(RecorderConfig{QueueSize: 4, NumWorkers: 1}, newCountingSink(), newMockLogger())
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop(context.Background())

	assert.Error(t, r.Start(context.Background()))
}

func TestRecorder_StopTimeout(t *testing.T) {
	sink := newCountingSink()
	sink.gate = make(chan struct{})
	r := NewRecorder(RecorderConfig{QueueSize: 4, NumWorkers: 1}, sink, newMockLogger())
	require.NoError(t, r.Start(context.Background()))

	r.Notify(slowCode, "id-1", link.AccessEvent{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Stop(ctx), context.DeadlineExceeded)

	close(sink.gate)
}
