package cache

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rohmanhakim/hikugen/internal/config"
	"github.com/rohmanhakim/hikugen/internal/metadata"
	"github.com/rohmanhakim/hikugen/pkg/failure"
	"github.com/rohmanhakim/hikugen/pkg/hashutil"
	"github.com/rohmanhakim/hikugen/pkg/timeutil"

	_ "modernc.org/sqlite"
)

/*
Responsibilities
- Durably store generated extraction code per (cache_key, schema_hash)
- Exact-match retrieval; absence is a result, not an error
- Track last-successful-run timestamps
- Targeted and global invalidation with accurate counts

Resource Characteristics
- One SQLite handle owned exclusively by one instance
- Synchronous, single-statement atomicity only
- Fails closed after Close
*/

type ExtractionCache struct {
	db     *sql.DB
	cfg    config.Config
	sink   metadata.CacheSink
	closed bool
}

// Open acquires the storage handle for the configured store. Callers own the
// returned instance and must Close it; WithCache wraps both ends.
func Open(cfg config.Config, sink metadata.CacheSink) (*ExtractionCache, failure.ClassifiedError) {
	if sink == nil {
		sink = metadata.NoopSink{}
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, openFailure(sink, cfg, err)
	}
	// A single pooled connection keeps an in-memory store from silently
	// forking into one database per connection, and matches the
	// single-owner resource model.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, openFailure(sink, cfg, err)
	}

	return &ExtractionCache{
		db:   db,
		cfg:  cfg,
		sink: sink,
	}, nil
}

func openFailure(sink metadata.CacheSink, cfg config.Config, err error) failure.ClassifiedError {
	cacheErr := &CacheError{
		Message:   err.Error(),
		Retryable: false,
		Cause:     ErrCauseOpenFailure,
	}
	sink.RecordError(
		time.Now(),
		"cache",
		"Open",
		mapCacheErrorToMetadataCause(cacheErr),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrStorePath, cfg.DBPath()),
		},
	)
	return cacheErr
}

// CreateTables initializes the cache schema. Idempotent: every statement is
// IF NOT EXISTS, so repeated calls are no-ops.
func (c *ExtractionCache) CreateTables() failure.ClassifiedError {
	if err := c.guard("CreateTables"); err != nil {
		return err
	}
	if _, err := c.db.Exec(schemaSQL); err != nil {
		return c.fail("CreateTables", ErrCauseSchemaInitFailure, err, nil)
	}
	c.sink.RecordMutation(metadata.MutationSchemaInit, "", 0, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrStorePath, c.cfg.DBPath()),
	})
	return nil
}

// SaveExtractionCode upserts the row for (cacheKey, hash(schemaText)).
// Overwriting code does not imply a successful run, so an existing
// last_successful_run is left untouched.
func (c *ExtractionCache) SaveExtractionCode(cacheKey, schemaText, code string) failure.ClassifiedError {
	if err := c.guard("SaveExtractionCode"); err != nil {
		return err
	}
	schemaHash := GenerateSchemaHash(schemaText)
	compositeKey := cacheKey + ":" + schemaHash

	res, err := c.db.Exec(`
		INSERT INTO extraction_cache (cache_key, schema_hash, extraction_code)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key, schema_hash)
		DO UPDATE SET extraction_code = excluded.extraction_code`,
		cacheKey, schemaHash, code,
	)
	if err != nil {
		return c.fail("SaveExtractionCode", ErrCauseWriteFailure, err, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrCompositeKey, compositeKey),
		})
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return c.fail("SaveExtractionCode", ErrCauseWriteFailure, err, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrCompositeKey, compositeKey),
		})
	}

	c.sink.RecordMutation(metadata.MutationSave, compositeKey, affected, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrCacheKey, cacheKey),
		metadata.NewAttr(metadata.AttrSchemaHash, schemaHash),
		metadata.NewAttr(metadata.AttrCodeFingerprint, c.fingerprint(code)),
	})
	return nil
}

// GetCachedCode performs an exact lookup by (cacheKey, hash(schemaText)).
// A miss returns (zero Entry, false, nil): not found is a normal result.
func (c *ExtractionCache) GetCachedCode(cacheKey, schemaText string) (Entry, bool, failure.ClassifiedError) {
	if err := c.guard("GetCachedCode"); err != nil {
		return Entry{}, false, err
	}
	schemaHash := GenerateSchemaHash(schemaText)
	compositeKey := cacheKey + ":" + schemaHash
	start := time.Now()

	var (
		gotKey  string
		gotHash string
		code    string
		lastRun sql.NullString
	)
	err := c.db.QueryRow(`
		SELECT cache_key, schema_hash, extraction_code, last_successful_run
		FROM extraction_cache
		WHERE cache_key = ? AND schema_hash = ?`,
		cacheKey, schemaHash,
	).Scan(&gotKey, &gotHash, &code, &lastRun)
	if errors.Is(err, sql.ErrNoRows) {
		c.sink.RecordLookup(compositeKey, false, time.Since(start))
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, c.fail("GetCachedCode", ErrCauseQueryFailure, err, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrCompositeKey, compositeKey),
		})
	}

	var lastRunAt *time.Time
	if lastRun.Valid {
		parsed, parseErr := timeutil.ParseTimestamp(lastRun.String)
		if parseErr != nil {
			return Entry{}, false, c.fail("GetCachedCode", ErrCauseTimestampInvalid, parseErr, []metadata.Attribute{
				metadata.NewAttr(metadata.AttrCompositeKey, compositeKey),
				metadata.NewAttr(metadata.AttrTimestamp, lastRun.String),
			})
		}
		lastRunAt = &parsed
	}

	c.sink.RecordLookup(compositeKey, true, time.Since(start))
	return NewEntry(gotKey, gotHash, code, lastRunAt), true, nil
}

// UpdateLastSuccessfulRun stamps the matching row with runAt, serialized as
// ISO-8601. A missing row is a reported no-op: the condition goes to the
// metadata sink and no row is ever created here.
func (c *ExtractionCache) UpdateLastSuccessfulRun(cacheKey, schemaText string, runAt time.Time) failure.ClassifiedError {
	if err := c.guard("UpdateLastSuccessfulRun"); err != nil {
		return err
	}
	schemaHash := GenerateSchemaHash(schemaText)
	compositeKey := cacheKey + ":" + schemaHash
	stamp := timeutil.FormatTimestamp(runAt)

	res, err := c.db.Exec(`
		UPDATE extraction_cache
		SET last_successful_run = ?
		WHERE cache_key = ? AND schema_hash = ?`,
		stamp, cacheKey, schemaHash,
	)
	if err != nil {
		return c.fail("UpdateLastSuccessfulRun", ErrCauseWriteFailure, err, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrCompositeKey, compositeKey),
		})
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return c.fail("UpdateLastSuccessfulRun", ErrCauseWriteFailure, err, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrCompositeKey, compositeKey),
		})
	}
	if affected == 0 {
		c.sink.RecordError(
			time.Now(),
			"cache",
			"UpdateLastSuccessfulRun",
			metadata.CauseEntryMissing,
			"no entry for composite key",
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrCompositeKey, compositeKey),
				metadata.NewAttr(metadata.AttrTimestamp, stamp),
			},
		)
		return nil
	}

	c.sink.RecordMutation(metadata.MutationUpdateRun, compositeKey, affected, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrTimestamp, stamp),
	})
	return nil
}

// ClearAllCache deletes every row and returns the count removed.
func (c *ExtractionCache) ClearAllCache() (int64, failure.ClassifiedError) {
	if err := c.guard("ClearAllCache"); err != nil {
		return 0, err
	}

	res, err := c.db.Exec(`DELETE FROM extraction_cache`)
	if err != nil {
		return 0, c.fail("ClearAllCache", ErrCauseWriteFailure, err, nil)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, c.fail("ClearAllCache", ErrCauseWriteFailure, err, nil)
	}

	c.sink.RecordMutation(metadata.MutationClearAll, "", affected, nil)
	return affected, nil
}

// ClearCacheForKey deletes every schema variant stored under cacheKey and
// returns the count removed. Rows under other keys are untouched.
func (c *ExtractionCache) ClearCacheForKey(cacheKey string) (int64, failure.ClassifiedError) {
	if err := c.guard("ClearCacheForKey"); err != nil {
		return 0, err
	}

	res, err := c.db.Exec(`DELETE FROM extraction_cache WHERE cache_key = ?`, cacheKey)
	if err != nil {
		return 0, c.fail("ClearCacheForKey", ErrCauseWriteFailure, err, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrCacheKey, cacheKey),
		})
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, c.fail("ClearCacheForKey", ErrCauseWriteFailure, err, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrCacheKey, cacheKey),
		})
	}

	c.sink.RecordMutation(metadata.MutationClearKey, "", affected, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrCacheKey, cacheKey),
	})
	return affected, nil
}

// Close releases the storage handle. The instance cannot be reopened; every
// later operation reports ErrCauseConnectionClosed.
func (c *ExtractionCache) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.db.Close(); err != nil {
		return &CacheError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCloseFailure,
		}
	}
	return nil
}

func (c *ExtractionCache) guard(action string) failure.ClassifiedError {
	if !c.closed {
		return nil
	}
	cacheErr := &CacheError{
		Message:   "operation on closed cache",
		Retryable: false,
		Cause:     ErrCauseConnectionClosed,
	}
	c.sink.RecordError(
		time.Now(),
		"cache",
		action,
		mapCacheErrorToMetadataCause(cacheErr),
		cacheErr.Message,
		nil,
	)
	return cacheErr
}

func (c *ExtractionCache) fail(
	action string,
	cause CacheErrorCause,
	err error,
	attrs []metadata.Attribute,
) failure.ClassifiedError {
	cacheErr := &CacheError{
		Message:   err.Error(),
		Retryable: false,
		Cause:     cause,
	}
	c.sink.RecordError(
		time.Now(),
		"cache",
		action,
		mapCacheErrorToMetadataCause(cacheErr),
		err.Error(),
		attrs,
	)
	return cacheErr
}

// fingerprint returns a short content hash of the generated code, attached
// to mutation events the way artifact content hashes are logged.
// Observability only; never part of the lookup key.
func (c *ExtractionCache) fingerprint(code string) string {
	full, err := hashutil.HashString(code, c.cfg.FingerprintAlgo())
	if err != nil {
		return ""
	}
	return full[:12]
}
