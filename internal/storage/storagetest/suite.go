// Package storagetest holds the behaviour suite every storage backend must pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/storage"
)

// Suite runs the shared storage contract against a backend. Embed it and set
// NewStorage, which is called once per test and must return an empty store.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func score(key, name string, value int64, offset time.Duration) model.GlobalScore {
	return model.GlobalScore{
		PlayerKey:  key,
		PlayerName: name,
		Score:      value,
		UpdatedAt:  baseTime.Add(offset),
	}
}

// Global score tests

func (s *Suite) TestRecordNewScore() {
	changed, err := s.Storage.RecordGlobalScore(s.Ctx, score("alice", "Alice", 5, 0))
	s.Require().NoError(err)
	s.True(changed)

	got, err := s.Storage.GetGlobalScore(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", got.PlayerKey)
	s.Equal("Alice", got.PlayerName)
	s.Equal(int64(5), got.Score)
	s.True(baseTime.Equal(got.UpdatedAt))
}

func (s *Suite) TestRecordKeepsMaximumAndFirstName() {
	_, err := s.Storage.RecordGlobalScore(s.Ctx, score("alice", "Alice", 5, 0))
	s.Require().NoError(err)

	changed, err := s.Storage.RecordGlobalScore(s.Ctx, score("alice", "alice", 9, time.Minute))
	s.Require().NoError(err)
	s.True(changed)

	changed, err = s.Storage.RecordGlobalScore(s.Ctx, score("alice", "ALICE", 3, 2*time.Minute))
	s.Require().NoError(err)
	s.False(changed)

	got, err := s.Storage.GetGlobalScore(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice", got.PlayerName)
	s.Equal(int64(9), got.Score)
	s.True(baseTime.Add(time.Minute).Equal(got.UpdatedAt), "timestamp only moves on improvement")
}

func (s *Suite) TestRecordEqualScoreIsNoop() {
	_, _ = s.Storage.RecordGlobalScore(s.Ctx, score("bob", "Bob", 4, 0))

	changed, err := s.Storage.RecordGlobalScore(s.Ctx, score("bob", "Bob", 4, time.Hour))
	s.Require().NoError(err)
	s.False(changed)

	got, _ := s.Storage.GetGlobalScore(s.Ctx, "bob")
	s.True(baseTime.Equal(got.UpdatedAt))
}

func (s *Suite) TestGetGlobalScoreNotFound() {
	_, err := s.Storage.GetGlobalScore(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrScoreNotFound)
}

func (s *Suite) TestTopGlobalScoresOrdering() {
	_, _ = s.Storage.RecordGlobalScore(s.Ctx, score("carl", "Carl", 7, 0))
	_, _ = s.Storage.RecordGlobalScore(s.Ctx, score("amy", "Amy", 12, 0))
	_, _ = s.Storage.RecordGlobalScore(s.Ctx, score("bob", "Bob", 7, 0))
	_, _ = s.Storage.RecordGlobalScore(s.Ctx, score("dan", "Dan", 1, 0))

	top, err := s.Storage.TopGlobalScores(s.Ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal("amy", top[0].PlayerKey)
	s.Equal("bob", top[1].PlayerKey)
	s.Equal("carl", top[2].PlayerKey)
	s.Equal("Carl", top[2].PlayerName)
}

func (s *Suite) TestTopGlobalScoresEmpty() {
	top, err := s.Storage.TopGlobalScores(s.Ctx, 10)
	s.Require().NoError(err)
	s.Empty(top)
}

func (s *Suite) TestConcurrentRecordsConvergeToMaximum() {
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(v int64) {
			defer wg.Done()
			_, err := s.Storage.RecordGlobalScore(s.Ctx, score("zoe", fmt.Sprintf("Zoe%d", v), v, 0))
			s.NoError(err)
		}(int64(i))
	}
	wg.Wait()

	got, err := s.Storage.GetGlobalScore(s.Ctx, "zoe")
	s.Require().NoError(err)
	s.Equal(int64(50), got.Score)

	top, err := s.Storage.TopGlobalScores(s.Ctx, 10)
	s.Require().NoError(err)
	s.Len(top, 1)
}

// Profile tests

func (s *Suite) TestCreateAndGetProfile() {
	err := s.Storage.CreateProfile(s.Ctx, "alice", model.NewProfile("Alice"))
	s.Require().NoError(err)

	got, err := s.Storage.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice", got.Username)
	s.Equal(int64(0), got.Coins)
	s.Equal([]string{model.DefaultHammer}, got.UnlockedHammers)
	s.Equal(model.DefaultHammer, got.EquippedHammer)
	s.Empty(got.UnlockedAchievements)
}

func (s *Suite) TestCreateProfileExisting() {
	s.Require().NoError(s.Storage.CreateProfile(s.Ctx, "alice", model.NewProfile("Alice")))

	err := s.Storage.CreateProfile(s.Ctx, "alice", model.NewProfile("ALICE"))
	s.ErrorIs(err, model.ErrProfileExists)

	got, _ := s.Storage.GetProfile(s.Ctx, "alice")
	s.Equal("Alice", got.Username)
}

func (s *Suite) TestGetProfileNotFound() {
	_, err := s.Storage.GetProfile(s.Ctx, "ghost")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestSyncProfileReplacesState() {
	s.Require().NoError(s.Storage.CreateProfile(s.Ctx, "alice", model.NewProfile("Alice")))

	update := model.ProfileSync{
		Coins:                250,
		UnlockedHammers:      []string{"default", "golden"},
		EquippedHammer:       "golden",
		UnlockedAchievements: []string{"first_win"},
	}
	updated, err := s.Storage.SyncProfile(s.Ctx, "alice", update)
	s.Require().NoError(err)
	s.Equal(int64(250), updated.Coins)

	got, err := s.Storage.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice", got.Username)
	s.Equal(int64(250), got.Coins)
	s.Equal([]string{"default", "golden"}, got.UnlockedHammers)
	s.Equal("golden", got.EquippedHammer)
	s.Equal([]string{"first_win"}, got.UnlockedAchievements)
}

func (s *Suite) TestSyncProfileNotFound() {
	_, err := s.Storage.SyncProfile(s.Ctx, "ghost", model.ProfileSync{}.Normalize())
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestPing() {
	s.NoError(s.Storage.Ping(s.Ctx))
}
