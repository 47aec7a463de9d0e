package metadata

type AttrKey string

const (
	AttrCacheKey        AttrKey = "cache_key"
	AttrSchemaHash      AttrKey = "schema_hash"
	AttrCompositeKey    AttrKey = "composite_key"
	AttrCodeFingerprint AttrKey = "code_fingerprint"
	AttrRowCount        AttrKey = "row_count"
	AttrTimestamp       AttrKey = "timestamp"
	AttrStorePath       AttrKey = "store_path"
)

// Attribute is a single key/value pair attached to a recorded event.
// Values are pre-rendered strings: primitives, hashes, timestamps,
// identifiers. No objects with behavior.
type Attribute struct {
	key   AttrKey
	value string
}

func NewAttr(key AttrKey, value string) Attribute {
	return Attribute{
		key:   key,
		value: value,
	}
}

func (a Attribute) Key() AttrKey {
	return a.key
}

func (a Attribute) Value() string {
	return a.value
}

// MutationKind identifies which write operation produced a mutation event.
type MutationKind int

const (
	MutationSchemaInit MutationKind = iota
	MutationSave
	MutationUpdateRun
	MutationClearKey
	MutationClearAll
)

func (k MutationKind) String() string {
	switch k {
	case MutationSchemaInit:
		return "schema_init"
	case MutationSave:
		return "save"
	case MutationUpdateRun:
		return "update_run"
	case MutationClearKey:
		return "clear_key"
	case MutationClearAll:
		return "clear_all"
	default:
		return "unknown"
	}
}

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, reporting).

Rules:
  - ErrorCause is for observability only.
  - ErrorCause MUST NOT influence control flow.
  - The cache package MAY map its local errors to ErrorCause,
    but MUST NOT invent new meanings.

Non-goals:
  - ErrorCause does not encode severity.
  - ErrorCause does not imply retryability.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

const (
	// CauseUnknown is the safe fallback for unclassified failures.
	CauseUnknown ErrorCause = iota
	// CauseStorageFailure covers failures opening, reading, or writing
	// the underlying store.
	CauseStorageFailure
	// CauseConnectionClosed marks operations attempted after Close.
	CauseConnectionClosed
	// CauseEntryMissing marks an update against a row that does not exist.
	// Reported, never fatal.
	CauseEntryMissing
	// CauseTimestampInvalid marks a stored timestamp that no longer parses.
	CauseTimestampInvalid
)

func (c ErrorCause) String() string {
	switch c {
	case CauseStorageFailure:
		return "storage_failure"
	case CauseConnectionClosed:
		return "connection_closed"
	case CauseEntryMissing:
		return "entry_missing"
	case CauseTimestampInvalid:
		return "timestamp_invalid"
	default:
		return "unknown"
	}
}
