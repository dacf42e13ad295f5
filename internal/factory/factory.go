package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/nmikhailov/guessnum/internal/coordinator"
	"github.com/nmikhailov/guessnum/internal/dependencies/clock"
	"github.com/nmikhailov/guessnum/internal/dependencies/random"
	"github.com/nmikhailov/guessnum/internal/registry"
	"github.com/nmikhailov/guessnum/internal/scheduler"
	"github.com/nmikhailov/guessnum/internal/services/achievement"
	"github.com/nmikhailov/guessnum/internal/services/room"
	"github.com/nmikhailov/guessnum/internal/services/session"
	"github.com/nmikhailov/guessnum/internal/services/stats"
	"github.com/nmikhailov/guessnum/internal/storage"
	"github.com/nmikhailov/guessnum/internal/storage/memory"
	redisstorage "github.com/nmikhailov/guessnum/internal/storage/redis"
	"github.com/nmikhailov/guessnum/internal/transport"
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
	Clock     clock.Clock
	Random    random.Random
	Scheduler scheduler.Scheduler
	Notifier  transport.Notifier

	// Core state
	Registry *registry.Registry

	// Services
	Evaluator         *achievement.Evaluator
	SessionController *session.Controller
	RoomController    *room.Controller
	StatsService      *stats.Service
	Coordinator       *coordinator.Coordinator
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
	// Notifier receives engine-generated notifications (optional)
	// If nil, notifications are logged
	Notifier transport.Notifier
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

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

	clk := clock.New()
	rnd := random.New()
	sched := scheduler.New(logger)

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = transport.NewLogNotifier(logger)
	}

	return newWithDependencies(store, clk, rnd, sched, notifier, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	sched scheduler.Scheduler,
	notifier transport.Notifier,
	logger *slog.Logger,
) *App {
	reg := registry.New()
	evaluator := achievement.NewEvaluator(store, clk, logger)
	sessionController := session.NewController(store, reg, evaluator, sched, notifier, clk, rnd, logger)
	roomController := room.NewController(store, reg, evaluator, sched, notifier, clk, rnd, logger)
	statsService := stats.NewService(store)
	coord := coordinator.New(reg, sessionController, roomController, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Scheduler:         sched,
		Notifier:          notifier,
		Registry:          reg,
		Evaluator:         evaluator,
		SessionController: sessionController,
		RoomController:    roomController,
		StatsService:      statsService,
		Coordinator:       coord,
	}
}
