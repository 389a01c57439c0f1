// Package cli implements the fundflow command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/quantfold/fundflow/pkg/buildinfo"
	"github.com/quantfold/fundflow/pkg/cache"
	"github.com/quantfold/fundflow/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "fundflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "fundflow",
		Short:        "Fundflow splits money across accounts by priority",
		Long:         `Fundflow is a CLI tool for allocating transaction totals across financial accounts. Plans declare accounts, limits, and a priority tree; fundflow compiles the tree into a flow network and solves for the allocation that respects every limit.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.planCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// Environment variables selecting the redis cache backend. When
// FUNDFLOW_REDIS is set, results are cached in that redis instance instead
// of the per-user file cache, so several processes can share one cache.
const (
	envRedisAddr     = "FUNDFLOW_REDIS"
	envRedisPassword = "FUNDFLOW_REDIS_PASSWORD"
	envRedisDB       = "FUNDFLOW_REDIS_DB"
)

// Cache backend names, as chosen by cacheBackend.
const (
	backendNull  = "null"
	backendFile  = "file"
	backendRedis = "redis"
)

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// cacheBackend picks the backend: --no-cache always wins, a redis address
// beats the file cache.
func cacheBackend(noCache bool, redisAddr string) string {
	switch {
	case noCache:
		return backendNull
	case redisAddr != "":
		return backendRedis
	default:
		return backendFile
	}
}

func newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	switch cacheBackend(noCache, os.Getenv(envRedisAddr)) {
	case backendNull:
		return cache.NewNullCache(), nil
	case backendRedis:
		db := 0
		if s := os.Getenv(envRedisDB); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("cli: parse %s: %w", envRedisDB, err)
			}
			db = n
		}
		return cache.NewRedisCache(ctx, os.Getenv(envRedisAddr), os.Getenv(envRedisPassword), db)
	default:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/fundflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s, fallback string) []string {
	if s == "" {
		return []string{fallback}
	}
	return strings.Split(s, ",")
}
