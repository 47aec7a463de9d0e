package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rohmanhakim/hikugen/internal/build"
	"github.com/rohmanhakim/hikugen/internal/cache"
	"github.com/rohmanhakim/hikugen/pkg/timeutil"
	"github.com/spf13/cobra"
)

var (
	cacheKeyFlag   string
	schemaFileFlag string
	codeFileFlag   string
	runAtFlag      string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the cache database and its schema.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(c *cache.ExtractionCache) error {
			fmt.Println("cache initialized")
			return nil
		})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Store extraction code for a cache key and schema.",
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaText, err := readInput(schemaFileFlag)
		if err != nil {
			return err
		}
		code, err := readInput(codeFileFlag)
		if err != nil {
			return err
		}
		return withStore(func(c *cache.ExtractionCache) error {
			if err := c.SaveExtractionCode(cacheKeyFlag, schemaText, code); err != nil {
				return err
			}
			fmt.Printf("saved %s\n", cache.GenerateCacheKey(cacheKeyFlag, schemaText))
			return nil
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the cached extraction code for a cache key and schema.",
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaText, err := readInput(schemaFileFlag)
		if err != nil {
			return err
		}
		return withStore(func(c *cache.ExtractionCache) error {
			entry, found, getErr := c.GetCachedCode(cacheKeyFlag, schemaText)
			if getErr != nil {
				return getErr
			}
			if !found {
				// A miss is a result, not a failure: report it and exit zero.
				fmt.Printf("not found: %s\n", cache.GenerateCacheKey(cacheKeyFlag, schemaText))
				return nil
			}
			if runAt, ok := entry.LastSuccessfulRun(); ok {
				fmt.Fprintf(os.Stderr, "last successful run: %s\n", timeutil.FormatTimestamp(runAt))
			} else {
				fmt.Fprintln(os.Stderr, "last successful run: never")
			}
			fmt.Print(entry.ExtractionCode())
			return nil
		})
	},
}

var markRunCmd = &cobra.Command{
	Use:   "mark-run",
	Short: "Record a successful run timestamp for a cache entry.",
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaText, err := readInput(schemaFileFlag)
		if err != nil {
			return err
		}
		runAt := time.Now().UTC()
		if runAtFlag != "" {
			parsed, parseErr := timeutil.ParseTimestamp(runAtFlag)
			if parseErr != nil {
				return fmt.Errorf("invalid --at timestamp %q: %w", runAtFlag, parseErr)
			}
			runAt = parsed
		}
		return withStore(func(c *cache.ExtractionCache) error {
			if err := c.UpdateLastSuccessfulRun(cacheKeyFlag, schemaText, runAt); err != nil {
				return err
			}
			fmt.Printf("marked %s at %s\n",
				cache.GenerateCacheKey(cacheKeyFlag, schemaText),
				timeutil.FormatTimestamp(runAt),
			)
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cache entries, either for one key or everything.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(c *cache.ExtractionCache) error {
			var (
				deleted  int64
				clearErr error
			)
			if cacheKeyFlag != "" {
				deleted, clearErr = c.ClearCacheForKey(cacheKeyFlag)
			} else {
				deleted, clearErr = c.ClearAllCache()
			}
			if clearErr != nil {
				return clearErr
			}
			fmt.Printf("deleted %d entries\n", deleted)
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hikugen %s (built %s)\n", build.FullVersion(), build.BuildTime)
	},
}

func readInput(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("missing required file path")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", path, err)
	}
	return string(content), nil
}

func init() {
	for _, c := range []*cobra.Command{saveCmd, getCmd, markRunCmd} {
		c.Flags().StringVar(&cacheKeyFlag, "key", "", "logical cache key (URL or task name)")
		c.Flags().StringVar(&schemaFileFlag, "schema-file", "", "file containing the schema text")
		c.MarkFlagRequired("key")
		c.MarkFlagRequired("schema-file")
	}
	saveCmd.Flags().StringVar(&codeFileFlag, "code-file", "", "file containing the extraction code")
	saveCmd.MarkFlagRequired("code-file")
	markRunCmd.Flags().StringVar(&runAtFlag, "at", "", "run timestamp in ISO-8601 (defaults to now)")
	clearCmd.Flags().StringVar(&cacheKeyFlag, "key", "", "clear only this cache key (all schema variants)")
}
