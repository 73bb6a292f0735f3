package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/mogg-backend/internal/config"
	"github.com/mcoot/mogg-backend/internal/dependencies/clock"
	"github.com/mcoot/mogg-backend/internal/dependencies/random"
	"github.com/mcoot/mogg-backend/internal/events"
	"github.com/mcoot/mogg-backend/internal/services/leaderboard"
	"github.com/mcoot/mogg-backend/internal/services/profile"
	"github.com/mcoot/mogg-backend/internal/services/room"
	"github.com/mcoot/mogg-backend/internal/storage"
	"github.com/mcoot/mogg-backend/internal/storage/memory"
	"github.com/mcoot/mogg-backend/internal/storage/postgres"
	redisstorage "github.com/mcoot/mogg-backend/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageTypeMemory
	StorageTypeRedis    = config.StorageTypeRedis
	StorageTypePostgres = config.StorageTypePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Publisher events.Publisher

	// Services
	Rooms       *room.Store
	Leaderboard *leaderboard.Service
	Profiles    *profile.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config
	// NATSURL enables event publishing to NATS. Events are dropped if empty.
	NATSURL string
	// RoomConfig holds room lifecycle settings
	// If zero value, defaults to room.DefaultConfig()
	RoomConfig room.Config
}

// ConfigFrom builds a factory config from loaded server configuration
func ConfigFrom(c *config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger:      logger,
		StorageType: c.Storage.Type,
		NATSURL:     c.Events.NATSURL,
		RoomConfig:  room.DefaultConfig(),
	}
	cfg.RoomConfig.TTL = c.Rooms.TTL
	cfg.RoomConfig.SweepInterval = c.Rooms.SweepInterval
	cfg.RoomConfig.MaxPasscodeAttempts = c.Rooms.MaxPasscodeAttempts

	switch c.Storage.Type {
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.Storage.RedisURL
		cfg.RedisConfig = &redisCfg
	case StorageTypePostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = c.Storage.DatabaseURL
		pgCfg.Migrate = c.Storage.Migrate
		cfg.PostgresConfig = &pgCfg
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		logger.Info("publishing events to nats", slog.String("url", cfg.NATSURL))
		publisher = natsPublisher
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, publisher, cfg.RoomConfig, logger), nil
}

func newStorage(cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		if cfg.PostgresConfig.Migrate {
			if err := postgres.Migrate(cfg.PostgresConfig.URL, logger); err != nil {
				return nil, err
			}
		}
		return postgres.New(context.Background(), *cfg.PostgresConfig)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, publisher events.Publisher, roomCfg room.Config, logger *slog.Logger) *App {
	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Publisher:   publisher,
		Rooms:       room.NewStore(roomCfg, clk, rnd, publisher, logger),
		Leaderboard: leaderboard.New(store, clk, publisher, logger, leaderboard.DefaultConfig()),
		Profiles:    profile.New(store, rnd, logger, profile.DefaultConfig()),
	}
}

// Close releases the publisher and storage connections
func (a *App) Close() error {
	return errors.Join(a.Publisher.Close(), a.Storage.Close())
}
