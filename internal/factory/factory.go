package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gumballrun/gumballrun/internal/dependencies/clock"
	"github.com/gumballrun/gumballrun/internal/dependencies/random"
	"github.com/gumballrun/gumballrun/internal/services/machine"
	"github.com/gumballrun/gumballrun/internal/services/reaper"
	"github.com/gumballrun/gumballrun/internal/services/room"
	"github.com/gumballrun/gumballrun/internal/services/scoring"
	"github.com/gumballrun/gumballrun/internal/storage"
	"github.com/gumballrun/gumballrun/internal/storage/memory"
	redisstorage "github.com/gumballrun/gumballrun/internal/storage/redis"
	"github.com/gumballrun/gumballrun/internal/sub"
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
	Generator      *machine.Generator
	ScoringService *scoring.Service
	RoomController *room.Controller
	SubManager     *sub.Manager
	Reaper         *reaper.Reaper
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// MatchDuration is how long a match runs once started
	// If zero, defaults to room.DefaultMatchDuration
	MatchDuration time.Duration
	// ReaperConfig holds the stale-room sweep policy (optional)
	// If zero value, defaults to reaper.DefaultConfig()
	ReaperConfig reaper.Config
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

	reaperCfg := cfg.ReaperConfig
	if reaperCfg.Interval == 0 {
		reaperCfg = reaper.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, cfg.MatchDuration, reaperCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, matchDuration time.Duration, reaperCfg reaper.Config, logger *slog.Logger) *App {
	// Create services
	generator := machine.New(rnd)
	scoringService := scoring.New()
	roomController := room.NewController(store, generator, scoringService, clk, rnd, matchDuration, logger)
	subManager := sub.NewManager(store, logger)
	roomReaper := reaper.New(store, clk, reaperCfg, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Generator:      generator,
		ScoringService: scoringService,
		RoomController: roomController,
		SubManager:     subManager,
		Reaper:         roomReaper,
	}
}
