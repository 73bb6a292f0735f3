package leaderboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/mogg-backend/internal/dependencies/clock"
	"github.com/mcoot/mogg-backend/internal/events"
	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/storage"
)

// AnonymousPlayer is recorded when a submission carries no name
const AnonymousPlayer = "Anonymous"

// Config holds leaderboard settings
type Config struct {
	// DefaultSize is the number of rows Top returns for a non-positive n
	DefaultSize int
}

// DefaultConfig returns default leaderboard configuration
func DefaultConfig() Config {
	return Config{DefaultSize: 10}
}

// Service maintains the global all-time leaderboard. Players are identified
// case-insensitively; each identity keeps its best score and the name it
// first submitted under.
type Service struct {
	storage   storage.Storage
	clock     clock.Clock
	publisher events.Publisher
	logger    *slog.Logger
	cfg       Config
}

// New creates a new leaderboard service
func New(storage storage.Storage, clock clock.Clock, publisher events.Publisher, logger *slog.Logger, cfg Config) *Service {
	if cfg.DefaultSize <= 0 {
		cfg.DefaultSize = DefaultConfig().DefaultSize
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		storage:   storage,
		clock:     clock,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

// Submit records score for player, keeping the best score per identity.
// It reports whether the stored best changed.
func (s *Service) Submit(ctx context.Context, player string, score int64) (bool, error) {
	if score < 0 {
		return false, model.ErrInvalidScore
	}
	if player == "" {
		player = AnonymousPlayer
	}

	now := s.clock.Now()
	key := model.CanonicalName(player)
	changed, err := s.storage.RecordGlobalScore(ctx, model.GlobalScore{
		PlayerKey:  key,
		PlayerName: player,
		Score:      score,
		UpdatedAt:  now,
	})
	if err != nil {
		s.logger.Error("failed to record global score",
			slog.String("player", player),
			slog.String("error", err.Error()),
		)
		return false, unavailable(err)
	}

	if changed {
		s.logger.Info("global best updated",
			slog.String("player", player),
			slog.Int64("score", score),
		)
	}

	e := events.New(events.TypeGlobalScore, now)
	e.Player = player
	e.Score = score
	e.Outcome = outcome(changed)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event",
			slog.String("type", e.Type),
			slog.String("error", err.Error()),
		)
	}
	return changed, nil
}

// Top returns up to n rows, best first. A non-positive n uses the default size.
// Storage may hold differently-cased records for one player, so the read is
// widened until n distinct players are found or storage runs out.
func (s *Service) Top(ctx context.Context, n int) ([]model.LeaderboardRow, error) {
	if n <= 0 {
		n = s.cfg.DefaultSize
	}

	var merged []model.GlobalScore
	for limit := n; ; limit *= 2 {
		records, err := s.storage.TopGlobalScores(ctx, limit)
		if err != nil {
			return nil, unavailable(err)
		}
		merged = mergeByKey(records)
		if len(merged) >= n || len(records) < limit {
			break
		}
	}

	rows := make([]model.LeaderboardRow, 0, min(n, len(merged)))
	for _, r := range merged[:min(n, len(merged))] {
		rows = append(rows, model.LeaderboardRow{PlayerName: r.PlayerName, Score: r.Score})
	}
	return rows, nil
}

// BestFor returns the best score for player, or 0 if they have none
func (s *Service) BestFor(ctx context.Context, player string) (int64, error) {
	if player == "" {
		player = AnonymousPlayer
	}
	record, err := s.storage.GetGlobalScore(ctx, model.CanonicalName(player))
	if err != nil {
		if errors.Is(err, model.ErrScoreNotFound) {
			return 0, nil
		}
		return 0, unavailable(err)
	}
	return record.Score, nil
}

// mergeByKey collapses records sharing a canonical key, keeping the highest
// score and the first row's name, then sorts best first
func mergeByKey(records []model.GlobalScore) []model.GlobalScore {
	index := make(map[string]int, len(records))
	out := make([]model.GlobalScore, 0, len(records))
	for _, r := range records {
		key := model.CanonicalName(r.PlayerKey)
		if i, ok := index[key]; ok {
			if r.Score > out[i].Score {
				out[i].Score = r.Score
			}
			continue
		}
		r.PlayerKey = key
		index[key] = len(out)
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b model.GlobalScore) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

func outcome(changed bool) string {
	if changed {
		return "improved"
	}
	return "unchanged"
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
