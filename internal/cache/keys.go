package cache

import "github.com/rohmanhakim/hikugen/pkg/hashutil"

// GenerateSchemaHash returns the SHA-256 hex digest of the schema text.
// The text is hashed as-is - no trimming, no normalization - so any textual
// change yields a different hash and therefore a different cache row.
func GenerateSchemaHash(schemaText string) string {
	return hashutil.SHA256Hex([]byte(schemaText))
}

// GenerateCacheKey combines the caller's logical key with the schema hash
// into the composite lookup key. Deterministic: equal inputs always produce
// the same key, and changing either component changes it. The composite key
// identifies a row; it is never displayed as meaningful data.
func GenerateCacheKey(cacheKey, schemaText string) string {
	return cacheKey + ":" + GenerateSchemaHash(schemaText)
}
