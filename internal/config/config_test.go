package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/hikugen/internal/config"
	"github.com/rohmanhakim/hikugen/pkg/hashutil"
)

func TestWithDefault(t *testing.T) {
	cfg := config.WithDefault("cache.db")

	if cfg == nil {
		t.Fatal("WithDefault() returned nil")
	}

	builtCfg, err := cfg.Build()
	if err != nil {
		t.Errorf("should not have any error, got %v", err)
	}

	if builtCfg.DBPath() != "cache.db" {
		t.Errorf("expected DBPath 'cache.db', got '%s'", builtCfg.DBPath())
	}
	if builtCfg.BusyTimeout() != 5*time.Second {
		t.Errorf("expected BusyTimeout 5s, got %v", builtCfg.BusyTimeout())
	}
	if builtCfg.JournalMode() != "WAL" {
		t.Errorf("expected JournalMode WAL, got %s", builtCfg.JournalMode())
	}
	if builtCfg.FingerprintAlgo() != hashutil.HashAlgoSHA256 {
		t.Errorf("expected FingerprintAlgo sha256, got %s", builtCfg.FingerprintAlgo())
	}
}

func TestBuild_EmptyDBPath(t *testing.T) {
	_, err := config.WithDefault("").Build()
	if err == nil {
		t.Fatal("should error")
	}
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuild_NegativeBusyTimeout(t *testing.T) {
	_, err := config.WithDefault("cache.db").WithBusyTimeout(-time.Second).Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuild_UnknownJournalMode(t *testing.T) {
	_, err := config.WithDefault("cache.db").WithJournalMode("SCRIBBLE").Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuild_UnsupportedFingerprintAlgo(t *testing.T) {
	_, err := config.WithDefault("cache.db").WithFingerprintAlgo("md5").Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuild_Overrides(t *testing.T) {
	cfg, err := config.WithDefault("cache.db").
		WithBusyTimeout(250 * time.Millisecond).
		WithJournalMode("DELETE").
		WithFingerprintAlgo(hashutil.HashAlgoBLAKE3).
		Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.BusyTimeout() != 250*time.Millisecond {
		t.Errorf("expected BusyTimeout 250ms, got %v", cfg.BusyTimeout())
	}
	if cfg.JournalMode() != "DELETE" {
		t.Errorf("expected JournalMode DELETE, got %s", cfg.JournalMode())
	}
	if cfg.FingerprintAlgo() != hashutil.HashAlgoBLAKE3 {
		t.Errorf("expected FingerprintAlgo blake3, got %s", cfg.FingerprintAlgo())
	}
}

func TestDSN_File(t *testing.T) {
	cfg, err := config.WithDefault("/tmp/hiku.db").
		WithBusyTimeout(2 * time.Second).
		WithJournalMode("WAL").
		Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	dsn := cfg.DSN()
	if !strings.HasPrefix(dsn, "file:/tmp/hiku.db?") {
		t.Errorf("expected file-prefixed DSN, got %q", dsn)
	}
	if !strings.Contains(dsn, "_pragma=busy_timeout(2000)") {
		t.Errorf("expected busy_timeout pragma in DSN, got %q", dsn)
	}
	if !strings.Contains(dsn, "_pragma=journal_mode(WAL)") {
		t.Errorf("expected journal_mode pragma in DSN, got %q", dsn)
	}
}

func TestDSN_InMemory(t *testing.T) {
	cfg, err := config.WithDefault(config.InMemory).Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}
	if cfg.DSN() != config.InMemory {
		t.Errorf("expected in-memory DSN to pass through, got %q", cfg.DSN())
	}
}

func TestWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hikugen.json")
	content := `{
		"dbPath": "from-file.db",
		"busyTimeout": 1000000000,
		"journalMode": "TRUNCATE",
		"fingerprintAlgo": "blake3"
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed writing config fixture: %v", err)
	}

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.DBPath() != "from-file.db" {
		t.Errorf("expected DBPath 'from-file.db', got '%s'", cfg.DBPath())
	}
	if cfg.BusyTimeout() != time.Second {
		t.Errorf("expected BusyTimeout 1s, got %v", cfg.BusyTimeout())
	}
	if cfg.JournalMode() != "TRUNCATE" {
		t.Errorf("expected JournalMode TRUNCATE, got %s", cfg.JournalMode())
	}
	if cfg.FingerprintAlgo() != hashutil.HashAlgoBLAKE3 {
		t.Errorf("expected FingerprintAlgo blake3, got %s", cfg.FingerprintAlgo())
	}
}

func TestWithConfigFile_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hikugen.json")
	if err := os.WriteFile(path, []byte(`{"dbPath": "partial.db"}`), 0644); err != nil {
		t.Fatalf("failed writing config fixture: %v", err)
	}

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.BusyTimeout() != 5*time.Second {
		t.Errorf("expected default BusyTimeout 5s, got %v", cfg.BusyTimeout())
	}
	if cfg.JournalMode() != "WAL" {
		t.Errorf("expected default JournalMode WAL, got %s", cfg.JournalMode())
	}
}

func TestWithConfigFile_DoesNotExist(t *testing.T) {
	_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("expected ErrFileDoesNotExist, got %v", err)
	}
}

func TestWithConfigFile_BadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hikugen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed writing config fixture: %v", err)
	}

	_, err := config.WithConfigFile(path)
	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got %v", err)
	}
}

func TestWithConfigFile_EmptyDBPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hikugen.json")
	if err := os.WriteFile(path, []byte(`{"journalMode": "WAL"}`), 0644); err != nil {
		t.Fatalf("failed writing config fixture: %v", err)
	}

	_, err := config.WithConfigFile(path)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
