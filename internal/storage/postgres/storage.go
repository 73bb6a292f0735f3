package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/storage"
)

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New connects a pool using cfg. It does not run migrations; see Migrate.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// NewWithPool creates a storage over an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close closes the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Global score operations

const recordScoreSQL = `
INSERT INTO global_scores (player_key, player_name, score, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (player_key) DO UPDATE
SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
WHERE global_scores.score < EXCLUDED.score`

func (s *Storage) RecordGlobalScore(ctx context.Context, score model.GlobalScore) (bool, error) {
	tag, err := s.pool.Exec(ctx, recordScoreSQL,
		score.PlayerKey, score.PlayerName, score.Score, score.UpdatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Storage) GetGlobalScore(ctx context.Context, key string) (*model.GlobalScore, error) {
	var score model.GlobalScore
	err := s.pool.QueryRow(ctx,
		`SELECT player_key, player_name, score, updated_at FROM global_scores WHERE player_key = $1`,
		key,
	).Scan(&score.PlayerKey, &score.PlayerName, &score.Score, &score.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrScoreNotFound
		}
		return nil, err
	}
	return &score, nil
}

func (s *Storage) TopGlobalScores(ctx context.Context, n int) ([]model.GlobalScore, error) {
	if n <= 0 {
		return []model.GlobalScore{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT player_key, player_name, score, updated_at
		FROM global_scores
		ORDER BY score DESC, player_key ASC
		LIMIT $1`,
		n,
	)
	if err != nil {
		return nil, err
	}
	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.GlobalScore, error) {
		var score model.GlobalScore
		err := row.Scan(&score.PlayerKey, &score.PlayerName, &score.Score, &score.UpdatedAt)
		return score, err
	})
	if err != nil {
		return nil, err
	}
	if scores == nil {
		scores = []model.GlobalScore{}
	}
	return scores, nil
}

// Profile operations

func (s *Storage) CreateProfile(ctx context.Context, key string, profile *model.Profile) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (username_key, username, coins, unlocked_hammers, equipped_hammer, unlocked_achievements)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username_key) DO NOTHING`,
		key, profile.Username, profile.Coins,
		nonNil(profile.UnlockedHammers), profile.EquippedHammer, nonNil(profile.UnlockedAchievements),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProfileExists
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, key string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT username, coins, unlocked_hammers, equipped_hammer, unlocked_achievements
		FROM profiles WHERE username_key = $1`,
		key,
	)
	return scanProfile(row)
}

func (s *Storage) SyncProfile(ctx context.Context, key string, sync model.ProfileSync) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE profiles
		SET coins = $2, unlocked_hammers = $3, equipped_hammer = $4, unlocked_achievements = $5
		WHERE username_key = $1
		RETURNING username, coins, unlocked_hammers, equipped_hammer, unlocked_achievements`,
		key, sync.Coins, nonNil(sync.UnlockedHammers), sync.EquippedHammer, nonNil(sync.UnlockedAchievements),
	)
	return scanProfile(row)
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var profile model.Profile
	err := row.Scan(
		&profile.Username,
		&profile.Coins,
		&profile.UnlockedHammers,
		&profile.EquippedHammer,
		&profile.UnlockedAchievements,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}
	profile.UnlockedHammers = nonNil(profile.UnlockedHammers)
	profile.UnlockedAchievements = nonNil(profile.UnlockedAchievements)
	return &profile, nil
}

// nonNil keeps empty arrays from being written or returned as NULL
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
