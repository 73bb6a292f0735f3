package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/storage"
)

// recordScoreScript max-merges a score into the record hash and the
// leaderboard set in one step.
// KEYS: score hash, leaderboard zset. ARGV: player key, name, score, updated_at.
var recordScoreScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'score')
if not current then
  redis.call('HSET', KEYS[1], 'key', ARGV[1], 'name', ARGV[2], 'score', ARGV[3], 'updated_at', ARGV[4])
  redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
  return 1
end
if tonumber(ARGV[3]) > tonumber(current) then
  redis.call('HSET', KEYS[1], 'score', ARGV[3], 'updated_at', ARGV[4])
  redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
  return 1
end
return 0
`)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Global score operations

// RecordGlobalScore runs the max-merge script. Sorted set scores are
// float64, so ranking is exact for scores up to 2^53.
func (s *Storage) RecordGlobalScore(ctx context.Context, score model.GlobalScore) (bool, error) {
	keys := []string{scoreKey(score.PlayerKey), leaderboardKey()}
	changed, err := recordScoreScript.Run(ctx, s.client, keys,
		score.PlayerKey,
		score.PlayerName,
		strconv.FormatInt(score.Score, 10),
		score.UpdatedAt.UTC().Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return false, err
	}
	return changed == 1, nil
}

func (s *Storage) GetGlobalScore(ctx context.Context, key string) (*model.GlobalScore, error) {
	fields, err := s.client.HGetAll(ctx, scoreKey(key)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrScoreNotFound
	}
	return parseScore(fields)
}

// TopGlobalScores reads the top n members of the leaderboard set plus any
// members tied with the last one, so ties can be ordered by key.
func (s *Storage) TopGlobalScores(ctx context.Context, n int) ([]model.GlobalScore, error) {
	if n <= 0 {
		return []model.GlobalScore{}, nil
	}

	head, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(head) == 0 {
		return []model.GlobalScore{}, nil
	}

	members := head
	if len(head) == n {
		cutoff := head[len(head)-1].Score
		members, err = s.client.ZRevRangeByScoreWithScores(ctx, leaderboardKey(), &redis.ZRangeBy{
			Min: strconv.FormatFloat(cutoff, 'f', -1, 64),
			Max: "+inf",
		}).Result()
		if err != nil {
			return nil, err
		}
	}

	slices.SortFunc(members, func(a, b redis.Z) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Member.(string), b.Member.(string))
	})
	if len(members) > n {
		members = members[:n]
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, m := range members {
		cmds[i] = pipe.HGetAll(ctx, scoreKey(m.Member.(string)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	scores := make([]model.GlobalScore, 0, len(cmds))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		score, err := parseScore(fields)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}
	return scores, nil
}

func parseScore(fields map[string]string) (*model.GlobalScore, error) {
	value, err := strconv.ParseInt(fields[fieldScore], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse score for %q: %w", fields[fieldKey], err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for %q: %w", fields[fieldKey], err)
	}
	return &model.GlobalScore{
		PlayerKey:  fields[fieldKey],
		PlayerName: fields[fieldName],
		Score:      value,
		UpdatedAt:  updatedAt,
	}, nil
}

// Profile operations

func (s *Storage) CreateProfile(ctx context.Context, key string, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	created, err := s.client.SetNX(ctx, profileKey(key), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrProfileExists
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, key string) (*model.Profile, error) {
	data, err := s.client.Get(ctx, profileKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SyncProfile rewrites the profile under WATCH so a concurrent sync cannot
// interleave between the read and the write
func (s *Storage) SyncProfile(ctx context.Context, key string, sync model.ProfileSync) (*model.Profile, error) {
	redisKey := profileKey(key)
	var updated *model.Profile

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, redisKey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrProfileNotFound
			}
			return err
		}

		var profile model.Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			return err
		}
		profile.Apply(sync)

		out, err := json.Marshal(&profile)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, out, 0)
			return nil
		})
		if err == nil {
			updated = &profile
		}
		return err
	}

	retries := max(s.cfg.SyncRetries, 1)
	for range retries {
		err := s.client.Watch(ctx, txn, redisKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("sync profile %q: %w", key, redis.TxFailedErr)
}
