package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rohmanhakim/hikugen/internal/cache"
	"github.com/rohmanhakim/hikugen/internal/config"
	"github.com/rohmanhakim/hikugen/internal/metadata"
	"github.com/rohmanhakim/hikugen/pkg/hashutil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	dbPath          string
	busyTimeout     time.Duration
	journalMode     string
	fingerprintAlgo string
	quiet           bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hikugen",
	Short: "Maintenance tooling for the hikugen extraction-code cache.",
	Long: `hikugen manages the local SQLite cache of generated HTML-extraction code.
Entries are keyed by a logical cache key (a URL or an arbitrary task name)
plus a SHA-256 hash of the target schema text, so any schema change
invalidates the cached code for that key naturally.

This tool only inspects and maintains the cache. Generating extraction code
and running it against fetched pages are separate concerns, handled outside
this repository.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/hikugen.json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "hikugen.db", "path of the cache database file, or :memory:")
	rootCmd.PersistentFlags().DurationVar(&busyTimeout, "busy-timeout", 0, "how long statements wait on a locked database")
	rootCmd.PersistentFlags().StringVar(&journalMode, "journal-mode", "", "SQLite journal mode (WAL, DELETE, TRUNCATE, PERSIST, MEMORY, OFF)")
	rootCmd.PersistentFlags().StringVar(&fingerprintAlgo, "fingerprint-algo", "", "digest for code fingerprints in event logs (sha256 or blake3)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress structured event logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(markRunCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(versionCmd)
}

// ResetFlags restores all persistent flag variables to their defaults.
// Exists for tests, which mutate package-level flag state.
func ResetFlags() {
	cfgFile = ""
	dbPath = "hikugen.db"
	busyTimeout = 0
	journalMode = ""
	fingerprintAlgo = ""
	quiet = false
}

// Test setters: flag variables are package-private, so tests mutate them
// through these.

func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetDBPathForTest(path string) {
	dbPath = path
}

func SetBusyTimeoutForTest(timeout time.Duration) {
	busyTimeout = timeout
}

func SetJournalModeForTest(mode string) {
	journalMode = mode
}

func SetFingerprintAlgoForTest(algo string) {
	fingerprintAlgo = algo
}

func SetQuietForTest(q bool) {
	quiet = q
}

// InitStoreConfig builds the store config from the config file or flags.
func InitStoreConfig() config.Config {
	cfg, err := InitStoreConfigWithError()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitStoreConfigWithError builds the store config from the config file when
// --config-file is set, otherwise from flags over defaults. Split from
// InitStoreConfig to make error cases testable.
func InitStoreConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault(dbPath)

	if busyTimeout > 0 {
		configBuilder = configBuilder.WithBusyTimeout(busyTimeout)
	}
	if journalMode != "" {
		configBuilder = configBuilder.WithJournalMode(journalMode)
	}
	if fingerprintAlgo != "" {
		configBuilder = configBuilder.WithFingerprintAlgo(hashutil.HashAlgo(fingerprintAlgo))
	}

	return configBuilder.Build()
}

func eventSink() metadata.CacheSink {
	if quiet {
		return metadata.NoopSink{}
	}
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
	recorder := metadata.NewRecorder(logger)
	return &recorder
}

// withStore runs fn against an opened cache with the schema ensured,
// releasing the handle on every path.
func withStore(fn func(*cache.ExtractionCache) error) error {
	cfg, err := InitStoreConfigWithError()
	if err != nil {
		return err
	}
	return cache.WithCache(cfg, eventSink(), func(c *cache.ExtractionCache) error {
		if err := c.CreateTables(); err != nil {
			return err
		}
		return fn(c)
	})
}
