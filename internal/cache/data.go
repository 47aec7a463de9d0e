package cache

import "time"

// Cache rows

// Entry is one cached extraction-code record. A fixed-shape record rather
// than a generic map, so column presence and typing stay guaranteed at the
// package boundary.
type Entry struct {
	cacheKey          string
	schemaHash        string
	extractionCode    string
	lastSuccessfulRun *time.Time
}

func NewEntry(
	cacheKey string,
	schemaHash string,
	extractionCode string,
	lastSuccessfulRun *time.Time,
) Entry {
	return Entry{
		cacheKey:          cacheKey,
		schemaHash:        schemaHash,
		extractionCode:    extractionCode,
		lastSuccessfulRun: lastSuccessfulRun,
	}
}

func (e Entry) CacheKey() string {
	return e.cacheKey
}

func (e Entry) SchemaHash() string {
	return e.schemaHash
}

func (e Entry) ExtractionCode() string {
	return e.extractionCode
}

// LastSuccessfulRun reports the stored timestamp and whether one has been
// set. Newly created entries have none until UpdateLastSuccessfulRun.
func (e Entry) LastSuccessfulRun() (time.Time, bool) {
	if e.lastSuccessfulRun == nil {
		return time.Time{}, false
	}
	return *e.lastSuccessfulRun, true
}
