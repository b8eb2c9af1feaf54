// Package cli implements the qplace command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qplace/pkg/buildinfo"
	"github.com/matzehuels/qplace/pkg/cache"
	"github.com/matzehuels/qplace/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "qplace"

	// defaultMongoDatabase and defaultMongoCollection name the shared cache
	// collection when --mongo-uri is given.
	defaultMongoDatabase   = "qplace"
	defaultMongoCollection = "cache"
)

// Cache backends accepted by --cache.
const (
	backendFile  = "file"
	backendNone  = "none"
	backendRedis = "redis"
	backendMongo = "mongo"
)

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
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "qplace maps circuit qubits onto device qubits",
		Long: `qplace computes an initial placement of a circuit's logical qubits onto the
physical qubits of a device, minimising the expected cost of the SWAP gates
needed to route the circuit afterwards.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.placeCommand())
	root.AddCommand(c.slicesCommand())
	root.AddCommand(c.augmentCommand())
	root.AddCommand(c.costCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.deviceCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the cache backend for a command.
type cacheFlags struct {
	backend   string
	noCache   bool
	redisAddr string
	mongoURI  string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "cache", backendFile, "cache backend: file, none, redis, mongo")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching (same as --cache none)")
	cmd.Flags().StringVar(&f.redisAddr, "redis-addr", os.Getenv("QPLACE_REDIS_ADDR"), "redis address for --cache redis")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", os.Getenv("QPLACE_MONGO_URI"), "mongodb URI for --cache mongo")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	cache, err := newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	backend := f.backend
	if f.noCache {
		backend = backendNone
	}
	switch backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendFile, "":
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	case backendRedis:
		if f.redisAddr == "" {
			return nil, fmt.Errorf("--cache redis needs --redis-addr")
		}
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: f.redisAddr, Prefix: appName + ":"})
	case backendMongo:
		if f.mongoURI == "" {
			return nil, fmt.Errorf("--cache mongo needs --mongo-uri")
		}
		return cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        f.mongoURI,
			Database:   defaultMongoDatabase,
			Collection: defaultMongoCollection,
		})
	}
	return nil, fmt.Errorf("unknown cache backend %q (must be file, none, redis or mongo)", backend)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/qplace/).
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

// basePath derives an output path without extension from output or, when
// output is empty, from input.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for _, f := range pipeline.ValidFormats {
		if strings.EqualFold(ext, "."+f) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
