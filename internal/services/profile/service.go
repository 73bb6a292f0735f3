package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mcoot/mogg-backend/internal/dependencies/random"
	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/storage"
)

const (
	// AnonymousPrefix starts every generated anonymous username
	AnonymousPrefix = "AnonMogg_"
	// anonymousRange is the number of distinct anonymous suffixes
	anonymousRange = 99999
)

// Config holds profile service settings
type Config struct {
	// MaxAnonAttempts bounds how many anonymous names are tried per request
	MaxAnonAttempts int
}

// DefaultConfig returns default profile configuration
func DefaultConfig() Config {
	return Config{MaxAnonAttempts: 100}
}

// Service manages persistent player profiles. Usernames are matched
// case-insensitively; the stored username keeps the casing it was created with.
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
	cfg     Config
}

// New creates a new profile service
func New(storage storage.Storage, random random.Random, logger *slog.Logger, cfg Config) *Service {
	if cfg.MaxAnonAttempts <= 0 {
		cfg.MaxAnonAttempts = DefaultConfig().MaxAnonAttempts
	}
	return &Service{
		storage: storage,
		random:  random,
		logger:  logger,
		cfg:     cfg,
	}
}

// GuestLogin finds the profile for username or creates it. isReturning is
// true only when the profile already existed.
func (s *Service) GuestLogin(ctx context.Context, username string) (*model.Profile, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, false, model.ErrInvalidUsername
	}
	key := model.CanonicalName(username)

	existing, err := s.storage.GetProfile(ctx, key)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, model.ErrProfileNotFound) {
		return nil, false, unavailable(err)
	}

	created := model.NewProfile(username)
	err = s.storage.CreateProfile(ctx, key, created)
	switch {
	case err == nil:
		s.logger.Info("profile created", slog.String("username", username))
		return created, false, nil
	case errors.Is(err, model.ErrProfileExists):
		// Lost a race with a concurrent login for the same name
		existing, err := s.storage.GetProfile(ctx, key)
		if err != nil {
			return nil, false, unavailable(err)
		}
		return existing, true, nil
	default:
		return nil, false, unavailable(err)
	}
}

// CreateAnonymous creates a profile under a fresh AnonMogg_<n> name
func (s *Service) CreateAnonymous(ctx context.Context) (*model.Profile, error) {
	for range s.cfg.MaxAnonAttempts {
		username := AnonymousPrefix + strconv.Itoa(s.random.Intn(anonymousRange))
		created := model.NewProfile(username)

		err := s.storage.CreateProfile(ctx, model.CanonicalName(username), created)
		if err == nil {
			s.logger.Info("anonymous profile created", slog.String("username", username))
			return created, nil
		}
		if !errors.Is(err, model.ErrProfileExists) {
			return nil, unavailable(err)
		}
	}

	s.logger.Error("anonymous names exhausted", slog.Int("attempts", s.cfg.MaxAnonAttempts))
	return nil, model.ErrAnonymousNamesExhausted
}

// Get returns the profile for username
func (s *Service) Get(ctx context.Context, username string) (*model.Profile, error) {
	profile, err := s.storage.GetProfile(ctx, model.CanonicalName(username))
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return nil, err
		}
		return nil, unavailable(err)
	}
	return profile, nil
}

// Sync replaces the profile's game state with update. Missing hammer fields
// fall back to defaults and duplicate set entries are dropped.
func (s *Service) Sync(ctx context.Context, username string, update model.ProfileSync) (*model.Profile, error) {
	if update.Coins < 0 {
		return nil, model.ErrInvalidCoins
	}
	profile, err := s.storage.SyncProfile(ctx, model.CanonicalName(username), update.Normalize())
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return nil, err
		}
		return nil, unavailable(err)
	}
	s.logger.Info("profile synced",
		slog.String("username", profile.Username),
		slog.Int64("coins", profile.Coins),
	)
	return profile, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
