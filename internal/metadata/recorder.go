package metadata

import (
	"time"

	"github.com/rs/zerolog"
)

/*
Metadata Collected
- Lookup outcomes (hit/miss) and latencies
- Mutation kinds and affected row counts
- Error causes with context attributes

Determinism guarantees:
 - Metadata does not affect control flow
 - Cache results are identical whether a Recorder or a NoopSink is injected

Metadata is write-only.
No component may read metadata to influence cache decisions.
*/

// CacheSink receives structured cache events. Components take a sink at
// construction; callers that want silence inject NoopSink.
type CacheSink interface {
	RecordLookup(compositeKey string, hit bool, duration time.Duration)

	RecordMutation(
		kind MutationKind,
		compositeKey string,
		rowsAffected int64,
		attrs []Attribute,
	)

	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
}

/*
Recorder renders cache events as structured log lines.
It must not:
- perform I/O decisions
- affect control flow
Events are recorded synchronously in the order the owning instance
produces them; the store itself is single-owner, so no cross-instance
ordering exists to guarantee.
*/
type Recorder struct {
	logger zerolog.Logger
}

func NewRecorder(logger zerolog.Logger) Recorder {
	return Recorder{
		logger: logger,
	}
}

func (r *Recorder) RecordLookup(compositeKey string, hit bool, duration time.Duration) {
	r.logger.Debug().
		Str("composite_key", compositeKey).
		Bool("hit", hit).
		Dur("duration", duration).
		Msg("cache lookup")
}

func (r *Recorder) RecordMutation(
	kind MutationKind,
	compositeKey string,
	rowsAffected int64,
	attrs []Attribute,
) {
	evt := r.logger.Info().
		Str("kind", kind.String()).
		Int64("rows_affected", rowsAffected)
	if compositeKey != "" {
		evt = evt.Str("composite_key", compositeKey)
	}
	for _, attr := range attrs {
		evt = evt.Str(string(attr.Key()), attr.Value())
	}
	evt.Msg("cache mutation")
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	evt := r.logger.Error().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Str("cause", cause.String()).
		Str("details", details)
	for _, attr := range attrs {
		evt = evt.Str(string(attr.Key()), attr.Value())
	}
	evt.Msg("cache error")
}

// NoopSink implements CacheSink but does nothing. The cache (or a test) can
// decide whether to inject Recorder or NoopSink; the point is to keep
// metadata orthogonal.
type NoopSink struct{}

func (NoopSink) RecordLookup(string, bool, time.Duration) {}

func (NoopSink) RecordMutation(MutationKind, string, int64, []Attribute) {}

func (NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}
