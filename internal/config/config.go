package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rohmanhakim/hikugen/pkg/hashutil"
)

// InMemory is the special store path marker for a non-durable database.
const InMemory = ":memory:"

type Config struct {
	//===============
	// Store
	//===============
	// Path of the SQLite database file, or InMemory.
	dbPath string
	// How long a statement waits on a locked database before failing.
	busyTimeout time.Duration
	// SQLite journal mode. In-memory stores ignore this.
	journalMode string

	//===============
	// Observability
	//===============
	// Digest algorithm for the short code fingerprints attached to mutation
	// events. Never used for schema hashing, which is fixed to SHA-256.
	fingerprintAlgo hashutil.HashAlgo
}

type configDTO struct {
	DBPath          string            `json:"dbPath"`
	BusyTimeout     time.Duration     `json:"busyTimeout,omitempty"`
	JournalMode     string            `json:"journalMode,omitempty"`
	FingerprintAlgo hashutil.HashAlgo `json:"fingerprintAlgo,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	// Start with default config, then only override fields the file provides
	builder := WithDefault(dto.DBPath)

	if dto.BusyTimeout != 0 {
		builder = builder.WithBusyTimeout(dto.BusyTimeout)
	}
	if dto.JournalMode != "" {
		builder = builder.WithJournalMode(dto.JournalMode)
	}
	if dto.FingerprintAlgo != "" {
		builder = builder.WithFingerprintAlgo(dto.FingerprintAlgo)
	}

	return builder.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided store path and default
// values for all other fields. dbPath is mandatory - Build returns an error
// if it is empty.
func WithDefault(dbPath string) *Config {
	defaultConfig := Config{
		dbPath:          dbPath,
		busyTimeout:     5 * time.Second,
		journalMode:     "WAL",
		fingerprintAlgo: hashutil.HashAlgoSHA256,
	}
	return &defaultConfig
}

func (c *Config) WithBusyTimeout(timeout time.Duration) *Config {
	c.busyTimeout = timeout
	return c
}

func (c *Config) WithJournalMode(mode string) *Config {
	c.journalMode = mode
	return c
}

func (c *Config) WithFingerprintAlgo(algo hashutil.HashAlgo) *Config {
	c.fingerprintAlgo = algo
	return c
}

func (c *Config) Build() (Config, error) {
	if c.dbPath == "" {
		return Config{}, fmt.Errorf("%w: dbPath cannot be empty", ErrInvalidConfig)
	}
	if c.busyTimeout < 0 {
		return Config{}, fmt.Errorf("%w: busyTimeout cannot be negative", ErrInvalidConfig)
	}
	switch c.journalMode {
	case "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF":
	default:
		return Config{}, fmt.Errorf("%w: unknown journal mode %q", ErrInvalidConfig, c.journalMode)
	}
	switch c.fingerprintAlgo {
	case hashutil.HashAlgoSHA256, hashutil.HashAlgoBLAKE3:
	default:
		return Config{}, fmt.Errorf("%w: unsupported fingerprint algorithm %q", ErrInvalidConfig, c.fingerprintAlgo)
	}

	return *c, nil
}

func (c Config) DBPath() string {
	return c.dbPath
}

func (c Config) BusyTimeout() time.Duration {
	return c.busyTimeout
}

func (c Config) JournalMode() string {
	return c.journalMode
}

func (c Config) FingerprintAlgo() hashutil.HashAlgo {
	return c.fingerprintAlgo
}

// DSN renders the modernc.org/sqlite data source name. In-memory stores get
// no pragmas: they are private to the single pinned connection anyway.
func (c Config) DSN() string {
	if c.dbPath == InMemory {
		return InMemory
	}
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(%s)",
		c.dbPath,
		c.busyTimeout.Milliseconds(),
		c.journalMode,
	)
}
