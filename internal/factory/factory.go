package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/pokernight-go/internal/dependencies/clock"
	"github.com/mcoot/pokernight-go/internal/dependencies/random"
	"github.com/mcoot/pokernight-go/internal/services/auth"
	"github.com/mcoot/pokernight-go/internal/services/ledger"
	"github.com/mcoot/pokernight-go/internal/services/specialhands"
	"github.com/mcoot/pokernight-go/internal/services/stats"
	"github.com/mcoot/pokernight-go/internal/storage"
	"github.com/mcoot/pokernight-go/internal/storage/memory"
	redisstorage "github.com/mcoot/pokernight-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService         *auth.Service
	LedgerService       *ledger.Service
	SpecialHandsService *specialhands.Service
	StatsService        *stats.Service
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.TokenDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, authCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	// Create services
	authService := auth.New(store, clk, authCfg)
	ledgerService := ledger.NewService(store, clk, rnd, logger)
	specialHandsService := specialhands.NewService(store, clk, logger)
	statsService := stats.NewService(store, logger)

	return &App{
		Storage:             store,
		Clock:               clk,
		Random:              rnd,
		AuthService:         authService,
		LedgerService:       ledgerService,
		SpecialHandsService: specialHandsService,
		StatsService:        statsService,
	}
}
