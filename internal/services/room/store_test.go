package room

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mogg-backend/internal/dependencies/mocks"
	"github.com/mcoot/mogg-backend/internal/dependencies/random"
	"github.com/mcoot/mogg-backend/internal/events"
	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	recorder *events.Recorder
	store    *Store
	ctx      context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.recorder = events.NewRecorder()
	s.store = NewStore(DefaultConfig(), s.clock, s.random, s.recorder, testutil.NopLogger())
	s.ctx = context.Background()
}

// createRoom creates a room with a predictable passcode (10000 + draw)
func (s *StoreSuite) createRoom(owner string, draw int) model.Passcode {
	s.random.QueueIntn(draw)
	room, err := s.store.Create(s.ctx, owner)
	s.Require().NoError(err)
	return room.Passcode
}

// Create tests

func (s *StoreSuite) TestCreateRoomDefaults() {
	s.random.QueueIntn(2345)

	room, err := s.store.Create(s.ctx, "Bob")
	s.Require().NoError(err)

	s.Equal(model.Passcode("12345"), room.Passcode)
	s.Equal("Bob", room.Owner)
	s.False(room.InfiniteTries)
	s.Empty(room.Scores)
	s.Equal(s.clock.Now(), room.CreatedAt)
	s.Equal(s.clock.Now().Add(24*time.Hour), room.ExpiresAt)
	s.Equal([]string{events.TypeRoomCreated}, s.recorder.Types())
}

func (s *StoreSuite) TestCreateRequiresOwner() {
	_, err := s.store.Create(s.ctx, "")
	s.ErrorIs(err, model.ErrInvalidUsername)
	s.Equal(0, s.store.Len())
}

func (s *StoreSuite) TestCreateAvoidsActivePasscodes() {
	first := s.createRoom("Bob", 2345)

	s.random.QueueIntn(2345, 2346)
	room, err := s.store.Create(s.ctx, "Amy")
	s.Require().NoError(err)

	s.Equal(model.Passcode("12345"), first)
	s.Equal(model.Passcode("12346"), room.Passcode)
	s.Equal(2, s.store.Len())
}

func (s *StoreSuite) TestPasscodeReusableAfterExpiry() {
	code := s.createRoom("Bob", 2345)
	_, err := s.store.Submit(s.ctx, code, "Bob", 10)
	s.Require().NoError(err)

	s.clock.Advance(24 * time.Hour)

	s.random.QueueIntn(2345)
	room, err := s.store.Create(s.ctx, "Amy")
	s.Require().NoError(err)
	s.Equal(code, room.Passcode)
	s.Equal("Amy", room.Owner)
	s.Empty(room.Scores, "reused passcode must name a fresh room")
	s.Contains(s.recorder.Types(), events.TypeRoomExpired)
}

func (s *StoreSuite) TestCreateFailsWhenKeyspaceExhausted() {
	cfg := DefaultConfig()
	cfg.MaxPasscodeAttempts = 3
	s.store = NewStore(cfg, s.clock, s.random, s.recorder, testutil.NopLogger())

	// Fallback draw 0 always yields 10000
	s.createRoom("Bob", 0)
	_, err := s.store.Create(s.ctx, "Amy")
	s.ErrorIs(err, model.ErrPasscodesExhausted)
}

// Get tests

func (s *StoreSuite) TestGetUnknownRoom() {
	_, err := s.store.Get(s.ctx, "54321")
	s.ErrorIs(err, model.ErrRoomExpired)
}

func (s *StoreSuite) TestGetReturnsSnapshot() {
	code := s.createRoom("Bob", 1)
	room, err := s.store.Get(s.ctx, code)
	s.Require().NoError(err)

	room.Scores = append(room.Scores, model.ScoreEntry{PlayerName: "Mallory", Score: 99})
	room.InfiniteTries = true

	again, err := s.store.Get(s.ctx, code)
	s.Require().NoError(err)
	s.Empty(again.Scores)
	s.False(again.InfiniteTries)
}

// Toggle tests

func (s *StoreSuite) TestToggleInfiniteTriesByOwner() {
	code := s.createRoom("Bob", 1)

	on, err := s.store.ToggleInfiniteTries(s.ctx, code, "Bob")
	s.Require().NoError(err)
	s.True(on)

	off, err := s.store.ToggleInfiniteTries(s.ctx, code, "Bob")
	s.Require().NoError(err)
	s.False(off)
}

func (s *StoreSuite) TestToggleInfiniteTriesByNonOwner() {
	code := s.createRoom("Bob", 1)

	_, err := s.store.ToggleInfiniteTries(s.ctx, code, "Carl")
	s.ErrorIs(err, model.ErrUnauthorized)

	// Owner comparison is exact
	_, err = s.store.ToggleInfiniteTries(s.ctx, code, "bob")
	s.ErrorIs(err, model.ErrUnauthorized)

	room, _ := s.store.Get(s.ctx, code)
	s.False(room.InfiniteTries)
}

func (s *StoreSuite) TestToggleInfiniteTriesOnExpiredRoom() {
	_, err := s.store.ToggleInfiniteTries(s.ctx, "99999", "Bob")
	s.ErrorIs(err, model.ErrRoomExpired)
}

// Submit tests

func (s *StoreSuite) TestOwnerResubmitLowerScoreKeepsBest() {
	code := s.createRoom("Bob", 1)

	outcome, err := s.store.Submit(s.ctx, code, "Bob", 10)
	s.Require().NoError(err)
	s.Equal(model.OutcomeAcceptedFirst, outcome)

	outcome, err = s.store.Submit(s.ctx, code, "Bob", 5)
	s.Require().NoError(err)
	s.Equal(model.OutcomeAcceptedUpdate, outcome)

	top, err := s.store.Leaderboard(s.ctx, code, 0)
	s.Require().NoError(err)
	s.Equal([]model.ScoreEntry{{PlayerName: "Bob", Score: 10}}, top)
}

func (s *StoreSuite) TestNonOwnerReplayRejected() {
	code := s.createRoom("Bob", 1)

	outcome, err := s.store.Submit(s.ctx, code, "Carl", 7)
	s.Require().NoError(err)
	s.Equal(model.OutcomeAcceptedFirst, outcome)

	outcome, err = s.store.Submit(s.ctx, code, "Carl", 9)
	s.ErrorIs(err, model.ErrAlreadyPlayed)
	s.Equal(model.OutcomeRejectedAlreadyPlayed, outcome)

	room, _ := s.store.Get(s.ctx, code)
	s.Equal([]model.ScoreEntry{{PlayerName: "Carl", Score: 7}}, room.Scores)
}

func (s *StoreSuite) TestInfiniteTriesAllowsResubmission() {
	code := s.createRoom("Bob", 1)
	_, _ = s.store.Submit(s.ctx, code, "Carl", 7)
	_, err := s.store.ToggleInfiniteTries(s.ctx, code, "Bob")
	s.Require().NoError(err)

	outcome, err := s.store.Submit(s.ctx, code, "Carl", 9)
	s.Require().NoError(err)
	s.Equal(model.OutcomeAcceptedUpdate, outcome)

	outcome, err = s.store.Submit(s.ctx, code, "Carl", 3)
	s.Require().NoError(err)
	s.Equal(model.OutcomeAcceptedUpdate, outcome)

	room, _ := s.store.Get(s.ctx, code)
	s.Equal(int64(9), room.Scores[0].Score)
}

func (s *StoreSuite) TestSubmitValidation() {
	code := s.createRoom("Bob", 1)

	_, err := s.store.Submit(s.ctx, code, "", 3)
	s.ErrorIs(err, model.ErrInvalidUsername)

	_, err = s.store.Submit(s.ctx, code, "Carl", -1)
	s.ErrorIs(err, model.ErrInvalidScore)

	room, _ := s.store.Get(s.ctx, code)
	s.Empty(room.Scores)
}

func (s *StoreSuite) TestSubmitChecksRoomBeforeValidation() {
	_, err := s.store.Submit(s.ctx, "12345", "", -1)
	s.ErrorIs(err, model.ErrRoomExpired)
}

func (s *StoreSuite) TestScoreMonotonicAcrossSubmissions() {
	code := s.createRoom("Bob", 1)
	_, _ = s.store.ToggleInfiniteTries(s.ctx, code, "Bob")

	var last int64
	for _, score := range []int64{4, 2, 8, 8, 1, 15, 0, 12} {
		_, err := s.store.Submit(s.ctx, code, "Carl", score)
		s.Require().NoError(err)

		room, _ := s.store.Get(s.ctx, code)
		current := room.Scores[0].Score
		s.GreaterOrEqual(current, last)
		last = current
	}
	s.Equal(int64(15), last)
}

func (s *StoreSuite) TestHasPlayed() {
	code := s.createRoom("Bob", 1)

	played, infinite, err := s.store.HasPlayed(s.ctx, code, "Carl")
	s.Require().NoError(err)
	s.False(played)
	s.False(infinite)

	_, _ = s.store.Submit(s.ctx, code, "Carl", 1)
	_, _ = s.store.ToggleInfiniteTries(s.ctx, code, "Bob")

	played, infinite, err = s.store.HasPlayed(s.ctx, code, "Carl")
	s.Require().NoError(err)
	s.True(played)
	s.True(infinite)

	played, _, err = s.store.HasPlayed(s.ctx, code, "carl")
	s.Require().NoError(err)
	s.False(played)
}

// Leaderboard tests

func (s *StoreSuite) TestLeaderboardTruncatesToTen() {
	code := s.createRoom("Bob", 1)
	for i := range 15 {
		_, err := s.store.Submit(s.ctx, code, fmt.Sprintf("player-%02d", i), int64(i))
		s.Require().NoError(err)
	}

	top, err := s.store.Leaderboard(s.ctx, code, 0)
	s.Require().NoError(err)
	s.Len(top, 10)
	s.Equal("player-14", top[0].PlayerName)
	s.Equal("player-05", top[9].PlayerName)
}

// Reset tests

func (s *StoreSuite) TestResetScoresByOwner() {
	code := s.createRoom("Bob", 1)
	_, _ = s.store.Submit(s.ctx, code, "Carl", 7)
	_, _ = s.store.ToggleInfiniteTries(s.ctx, code, "Bob")

	s.Require().NoError(s.store.ResetScores(s.ctx, code, "Bob"))

	room, err := s.store.Get(s.ctx, code)
	s.Require().NoError(err)
	s.Empty(room.Scores)
	s.True(room.InfiniteTries, "reset keeps flag state")
	s.Equal(code, room.Passcode)

	outcome, err := s.store.Submit(s.ctx, code, "Carl", 2)
	s.Require().NoError(err)
	s.Equal(model.OutcomeAcceptedFirst, outcome)
}

func (s *StoreSuite) TestResetScoresByNonOwner() {
	code := s.createRoom("Bob", 1)
	_, _ = s.store.Submit(s.ctx, code, "Carl", 7)

	err := s.store.ResetScores(s.ctx, code, "Carl")
	s.ErrorIs(err, model.ErrUnauthorized)

	room, _ := s.store.Get(s.ctx, code)
	s.Len(room.Scores, 1)
}

// Destroy tests

func (s *StoreSuite) TestDestroyByOwner() {
	code := s.createRoom("Bob", 1)

	s.Require().NoError(s.store.Destroy(s.ctx, code, "Bob"))

	_, err := s.store.Get(s.ctx, code)
	s.ErrorIs(err, model.ErrRoomExpired)
	_, err = s.store.Submit(s.ctx, code, "Carl", 1)
	s.ErrorIs(err, model.ErrRoomExpired)
	s.ErrorIs(s.store.Destroy(s.ctx, code, "Bob"), model.ErrRoomExpired)
	s.Contains(s.recorder.Types(), events.TypeRoomDestroyed)
}

func (s *StoreSuite) TestDestroyByNonOwner() {
	code := s.createRoom("Bob", 1)

	s.ErrorIs(s.store.Destroy(s.ctx, code, "Carl"), model.ErrUnauthorized)

	_, err := s.store.Get(s.ctx, code)
	s.NoError(err)
}

// Expiry tests

func (s *StoreSuite) TestAllOperationsFailAfterTTL() {
	code := s.createRoom("Bob", 1)
	_, _ = s.store.Submit(s.ctx, code, "Bob", 3)

	s.clock.Advance(24*time.Hour - time.Second)
	_, err := s.store.Get(s.ctx, code)
	s.Require().NoError(err, "room is alive until exactly 24h")

	s.clock.Advance(time.Second)

	_, err = s.store.Get(s.ctx, code)
	s.ErrorIs(err, model.ErrRoomExpired)
	_, err = s.store.ToggleInfiniteTries(s.ctx, code, "Bob")
	s.ErrorIs(err, model.ErrRoomExpired)
	_, _, err = s.store.HasPlayed(s.ctx, code, "Bob")
	s.ErrorIs(err, model.ErrRoomExpired)
	_, err = s.store.Submit(s.ctx, code, "Bob", 4)
	s.ErrorIs(err, model.ErrRoomExpired)
	_, err = s.store.Leaderboard(s.ctx, code, 10)
	s.ErrorIs(err, model.ErrRoomExpired)
	s.ErrorIs(s.store.ResetScores(s.ctx, code, "Bob"), model.ErrRoomExpired)
	s.ErrorIs(s.store.Destroy(s.ctx, code, "Bob"), model.ErrRoomExpired)
}

func (s *StoreSuite) TestActivityDoesNotExtendTTL() {
	code := s.createRoom("Bob", 1)

	s.clock.Advance(23 * time.Hour)
	_, err := s.store.Submit(s.ctx, code, "Carl", 1)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	_, err = s.store.Get(s.ctx, code)
	s.ErrorIs(err, model.ErrRoomExpired)
}

func (s *StoreSuite) TestSweepRemovesOnlyExpiredRooms() {
	old := s.createRoom("Bob", 1)
	s.clock.Advance(12 * time.Hour)
	young := s.createRoom("Amy", 2)
	s.clock.Advance(12 * time.Hour)

	removed := s.store.Sweep(s.ctx)
	s.Equal(1, removed)
	s.Equal(1, s.store.Len())

	_, err := s.store.Get(s.ctx, old)
	s.ErrorIs(err, model.ErrRoomExpired)
	_, err = s.store.Get(s.ctx, young)
	s.NoError(err)
}

func (s *StoreSuite) TestRunStopsOnCancel() {
	cfg := DefaultConfig()
	cfg.SweepInterval = time.Millisecond
	s.store = NewStore(cfg, s.clock, s.random, s.recorder, testutil.NopLogger())
	s.createRoom("Bob", 1)
	s.clock.Advance(25 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.store.Run(ctx)
		close(done)
	}()

	s.Eventually(func() bool { return s.store.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	s.Eventually(func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

// Concurrency tests

func (s *StoreSuite) TestConcurrentSubmissionsConvergeToMaximum() {
	code := s.createRoom("Bob", 1)

	var wg sync.WaitGroup
	for i := 1; i <= 200; i++ {
		wg.Add(1)
		go func(score int64) {
			defer wg.Done()
			_, _ = s.store.Submit(s.ctx, code, "Bob", score)
		}(int64(i))
	}
	wg.Wait()

	room, err := s.store.Get(s.ctx, code)
	s.Require().NoError(err)
	s.Require().Len(room.Scores, 1)
	s.Equal(int64(200), room.Scores[0].Score)
}

func (s *StoreSuite) TestConcurrentFirstSubmissionsAcceptExactlyOne() {
	code := s.createRoom("Bob", 1)

	var mu sync.Mutex
	accepted := 0
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(score int64) {
			defer wg.Done()
			outcome, err := s.store.Submit(s.ctx, code, "Carl", score)
			if err == nil && outcome == model.OutcomeAcceptedFirst {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(int64(i))
	}
	wg.Wait()

	s.Equal(1, accepted)
}

func (s *StoreSuite) TestConcurrentCreatesProduceUniquePasscodes() {
	s.store = NewStore(DefaultConfig(), s.clock, random.New(), s.recorder, testutil.NopLogger())

	const n = 300
	codes := make(chan model.Passcode, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room, err := s.store.Create(s.ctx, fmt.Sprintf("owner-%d", i))
			if err == nil {
				codes <- room.Passcode
			}
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[model.Passcode]bool)
	for code := range codes {
		s.False(seen[code], "duplicate passcode %s", code)
		seen[code] = true
	}
	s.Len(seen, n)
}

func (s *StoreSuite) TestOperationsRacingDestroyNeverPanic() {
	code := s.createRoom("Bob", 1)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.store.Submit(s.ctx, code, fmt.Sprintf("p%d", i), int64(i))
			if err != nil {
				s.ErrorIs(err, model.ErrRoomExpired)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.NoError(s.store.Destroy(s.ctx, code, "Bob"))
	}()
	wg.Wait()

	_, err := s.store.Get(s.ctx, code)
	s.ErrorIs(err, model.ErrRoomExpired)
}
