package cache_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/hikugen/internal/cache"
	"github.com/rohmanhakim/hikugen/internal/config"
	"github.com/rohmanhakim/hikugen/internal/metadata"
	"github.com/stretchr/testify/require"
)

// mockCacheSink is a test double for metadata.CacheSink
type mockCacheSink struct {
	lookupEvents   []lookupEvent
	mutationEvents []mutationEvent
	errorEvents    []errorEvent
}

type lookupEvent struct {
	compositeKey string
	hit          bool
	duration     time.Duration
}

type mutationEvent struct {
	kind         metadata.MutationKind
	compositeKey string
	rowsAffected int64
	attrs        []metadata.Attribute
}

type errorEvent struct {
	observedAt  time.Time
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
	attrs       []metadata.Attribute
}

func (m *mockCacheSink) RecordLookup(compositeKey string, hit bool, duration time.Duration) {
	m.lookupEvents = append(m.lookupEvents, lookupEvent{
		compositeKey: compositeKey,
		hit:          hit,
		duration:     duration,
	})
}

func (m *mockCacheSink) RecordMutation(
	kind metadata.MutationKind,
	compositeKey string,
	rowsAffected int64,
	attrs []metadata.Attribute,
) {
	m.mutationEvents = append(m.mutationEvents, mutationEvent{
		kind:         kind,
		compositeKey: compositeKey,
		rowsAffected: rowsAffected,
		attrs:        attrs,
	})
}

func (m *mockCacheSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errorEvents = append(m.errorEvents, errorEvent{
		observedAt:  observedAt,
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
		attrs:       attrs,
	})
}

func (m *mockCacheSink) errorCauses() []metadata.ErrorCause {
	causes := make([]metadata.ErrorCause, 0, len(m.errorEvents))
	for _, evt := range m.errorEvents {
		causes = append(causes, evt.cause)
	}
	return causes
}

// newMemCache opens an in-memory store with tables created and closes it
// when the test finishes.
func newMemCache(t *testing.T) (*cache.ExtractionCache, *mockCacheSink) {
	t.Helper()

	cfg, err := config.WithDefault(config.InMemory).Build()
	require.NoError(t, err)

	sink := &mockCacheSink{}
	c, openErr := cache.Open(cfg, sink)
	require.NoError(t, openErr)
	t.Cleanup(func() {
		c.Close()
	})

	require.NoError(t, c.CreateTables())
	return c, sink
}
