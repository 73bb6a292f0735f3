package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	scores   map[string]model.GlobalScore
	profiles map[string]*model.Profile
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		scores:   make(map[string]model.GlobalScore),
		profiles: make(map[string]*model.Profile),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Global score operations

func (s *Storage) RecordGlobalScore(ctx context.Context, score model.GlobalScore) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.scores[score.PlayerKey]
	if !ok {
		s.scores[score.PlayerKey] = score
		return true, nil
	}
	if score.Score <= existing.Score {
		return false, nil
	}
	existing.Score = score.Score
	existing.UpdatedAt = score.UpdatedAt
	s.scores[score.PlayerKey] = existing
	return true, nil
}

func (s *Storage) GetGlobalScore(ctx context.Context, key string) (*model.GlobalScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[key]
	if !ok {
		return nil, model.ErrScoreNotFound
	}
	return &score, nil
}

func (s *Storage) TopGlobalScores(ctx context.Context, n int) ([]model.GlobalScore, error) {
	s.mu.RLock()
	all := make([]model.GlobalScore, 0, len(s.scores))
	for _, score := range s.scores {
		all = append(all, score)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b model.GlobalScore) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerKey, b.PlayerKey)
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// Profile operations

func (s *Storage) CreateProfile(ctx context.Context, key string, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[key]; ok {
		return model.ErrProfileExists
	}
	s.profiles[key] = profile.Clone()
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, key string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[key]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return profile.Clone(), nil
}

func (s *Storage) SyncProfile(ctx context.Context, key string, update model.ProfileSync) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[key]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	profile.Apply(update)
	return profile.Clone(), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}
