package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/storage"
	"github.com/mcoot/mogg-backend/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(s.T())
		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})
		return NewWithClient(client, DefaultConfig())
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestScoreLayout() {
	_, err := s.Storage.RecordGlobalScore(s.Ctx, model.GlobalScore{
		PlayerKey:  "alice",
		PlayerName: "Alice",
		Score:      42,
		UpdatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	s.Equal("Alice", s.mini.HGet("mogg:score:alice", "name"))
	s.Equal("42", s.mini.HGet("mogg:score:alice", "score"))

	zscore, err := s.mini.ZScore("mogg:leaderboard", "alice")
	s.Require().NoError(err)
	s.Equal(float64(42), zscore)
}

func (s *StorageSuite) TestProfileStoredAsJSON() {
	s.Require().NoError(s.Storage.CreateProfile(s.Ctx, "alice", model.NewProfile("Alice")))

	raw, err := s.mini.Get("mogg:profile:alice")
	s.Require().NoError(err)
	s.JSONEq(`{
		"username": "Alice",
		"coins": 0,
		"unlocked_hammers": ["default"],
		"equipped_hammer": "default",
		"unlocked_achievements": []
	}`, raw)
}

func (s *StorageSuite) TestTopIncludesTiesAtCutoff() {
	for _, key := range []string{"dora", "cara", "bea", "abe"} {
		_, err := s.Storage.RecordGlobalScore(s.Ctx, model.GlobalScore{
			PlayerKey: key, PlayerName: key, Score: 5, UpdatedAt: time.Now(),
		})
		s.Require().NoError(err)
	}

	top, err := s.Storage.TopGlobalScores(s.Ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal("abe", top[0].PlayerKey)
	s.Equal("bea", top[1].PlayerKey)
}

func (s *StorageSuite) TestRecordFailsWhenServerDown() {
	s.mini.Close()

	_, err := s.Storage.RecordGlobalScore(s.Ctx, model.GlobalScore{PlayerKey: "x", PlayerName: "x", Score: 1})
	s.Error(err)
	s.Error(s.Storage.Ping(s.Ctx))
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	cfg := DefaultConfig()
	cfg.URL = "not a url"
	_, err := New(cfg)
	s.Error(err)
}

func (s *StorageSuite) TestNewConnects() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()
	st, err := New(cfg)
	s.Require().NoError(err)
	s.NoError(st.Close())
}
