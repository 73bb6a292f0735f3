package storage

import (
	"context"

	"github.com/mcoot/mogg-backend/internal/model"
)

// Storage defines the interface for persistent data. Rooms are ephemeral and
// live in the room store, not here.
//
// Keys are canonical player identities (see model.CanonicalName). Callers
// canonicalize before calling; implementations compare keys byte-for-byte.
type Storage interface {
	// Global score operations

	// RecordGlobalScore max-merges score into the record for score.PlayerKey.
	// A new record keeps score.PlayerName; an existing record keeps its name
	// and only changes when score.Score is strictly greater. It reports
	// whether the stored record changed.
	RecordGlobalScore(ctx context.Context, score model.GlobalScore) (bool, error)
	GetGlobalScore(ctx context.Context, key string) (*model.GlobalScore, error)
	// TopGlobalScores returns up to n records ordered by score descending,
	// ties broken by player key ascending
	TopGlobalScores(ctx context.Context, n int) ([]model.GlobalScore, error)

	// Profile operations

	// CreateProfile inserts profile under key, failing with
	// model.ErrProfileExists if the key is taken
	CreateProfile(ctx context.Context, key string, profile *model.Profile) error
	GetProfile(ctx context.Context, key string) (*model.Profile, error)
	// SyncProfile replaces the profile's game state in a single write
	SyncProfile(ctx context.Context, key string, sync model.ProfileSync) (*model.Profile, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
	Close() error
}
