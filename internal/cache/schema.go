package cache

// Schema for the extraction cache store. The composite primary key is the
// conflict target for the upsert in SaveExtractionCode; the cache_key index
// serves ClearCacheForKey across schema variants.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS extraction_cache (
    cache_key           TEXT NOT NULL,
    schema_hash         TEXT NOT NULL,
    extraction_code     TEXT NOT NULL,
    last_successful_run TEXT,
    PRIMARY KEY (cache_key, schema_hash)
);

CREATE INDEX IF NOT EXISTS idx_extraction_cache_key ON extraction_cache(cache_key);
`
