package cache

import (
	"fmt"

	"github.com/rohmanhakim/hikugen/internal/metadata"
	"github.com/rohmanhakim/hikugen/pkg/failure"
)

type CacheErrorCause string

const (
	ErrCauseOpenFailure       CacheErrorCause = "open failed"
	ErrCauseConnectionClosed  CacheErrorCause = "connection unavailable"
	ErrCauseSchemaInitFailure CacheErrorCause = "schema init failed"
	ErrCauseQueryFailure      CacheErrorCause = "query failed"
	ErrCauseWriteFailure      CacheErrorCause = "write failed"
	ErrCauseScanFailure       CacheErrorCause = "row scan failed"
	ErrCauseTimestampInvalid  CacheErrorCause = "invalid stored timestamp"
	ErrCauseCloseFailure      CacheErrorCause = "close failed"
)

type CacheError struct {
	Message string
	// Always false today: the store is local and synchronous, so no failure
	// here is worth retrying. Kept explicit so severity stays derived, not
	// hardcoded.
	Retryable bool
	Cause     CacheErrorCause
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s: %s", e.Cause, e.Message)
}

func (e *CacheError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapCacheErrorToMetadataCause maps cache-local error semantics to the
// canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapCacheErrorToMetadataCause(err *CacheError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseConnectionClosed:
		return metadata.CauseConnectionClosed
	case ErrCauseTimestampInvalid:
		return metadata.CauseTimestampInvalid
	case ErrCauseOpenFailure,
		ErrCauseSchemaInitFailure,
		ErrCauseQueryFailure,
		ErrCauseWriteFailure,
		ErrCauseScanFailure,
		ErrCauseCloseFailure:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
