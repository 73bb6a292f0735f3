package profile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mogg-backend/internal/dependencies/mocks"
	"github.com/mcoot/mogg-backend/internal/model"
	"github.com/mcoot/mogg-backend/internal/storage/memory"
	"github.com/mcoot/mogg-backend/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.storage = memory.New()
	s.service = New(s.storage, s.random, testutil.NopLogger(), DefaultConfig())
	s.ctx = context.Background()
}

// GuestLogin tests

func (s *ServiceSuite) TestGuestLoginCreatesProfile() {
	profile, returning, err := s.service.GuestLogin(s.ctx, "Alice")
	s.Require().NoError(err)
	s.False(returning)
	s.Equal(model.NewProfile("Alice"), profile)
}

func (s *ServiceSuite) TestGuestLoginReturningIsCaseInsensitive() {
	_, _, err := s.service.GuestLogin(s.ctx, "Alice")
	s.Require().NoError(err)

	profile, returning, err := s.service.GuestLogin(s.ctx, "ALICE")
	s.Require().NoError(err)
	s.True(returning)
	s.Equal("Alice", profile.Username)
}

func (s *ServiceSuite) TestGuestLoginTrimsUsername() {
	profile, _, err := s.service.GuestLogin(s.ctx, "  Bob  ")
	s.Require().NoError(err)
	s.Equal("Bob", profile.Username)

	_, returning, err := s.service.GuestLogin(s.ctx, "bob")
	s.Require().NoError(err)
	s.True(returning)
}

func (s *ServiceSuite) TestGuestLoginRequiresUsername() {
	for _, name := range []string{"", "   ", "\t\n"} {
		_, _, err := s.service.GuestLogin(s.ctx, name)
		s.ErrorIs(err, model.ErrInvalidUsername)
	}
}

func (s *ServiceSuite) TestConcurrentGuestLoginCreatesOnce() {
	var mu sync.Mutex
	created := 0

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, returning, err := s.service.GuestLogin(s.ctx, "Carl")
			s.NoError(err)
			if !returning {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, created)
}

// CreateAnonymous tests

func (s *ServiceSuite) TestCreateAnonymous() {
	s.random.QueueIntn(42)

	profile, err := s.service.CreateAnonymous(s.ctx)
	s.Require().NoError(err)
	s.Equal("AnonMogg_42", profile.Username)

	stored, err := s.service.Get(s.ctx, "anonmogg_42")
	s.Require().NoError(err)
	s.Equal("AnonMogg_42", stored.Username)
}

func (s *ServiceSuite) TestCreateAnonymousRetriesTakenNames() {
	_, _, err := s.service.GuestLogin(s.ctx, "anonmogg_7")
	s.Require().NoError(err)

	s.random.QueueIntn(7, 8)
	profile, err := s.service.CreateAnonymous(s.ctx)
	s.Require().NoError(err)
	s.Equal("AnonMogg_8", profile.Username)
}

func (s *ServiceSuite) TestCreateAnonymousExhausted() {
	s.service = New(s.storage, s.random, testutil.NopLogger(), Config{MaxAnonAttempts: 5})
	_, _, err := s.service.GuestLogin(s.ctx, "AnonMogg_0")
	s.Require().NoError(err)

	// Fallback draw is always 0
	_, err = s.service.CreateAnonymous(s.ctx)
	s.ErrorIs(err, model.ErrAnonymousNamesExhausted)
}

// Get tests

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrProfileNotFound)
	s.NotErrorIs(err, model.ErrStoreUnavailable)
}

// Sync tests

func (s *ServiceSuite) TestSyncReplacesAllFields() {
	_, _, _ = s.service.GuestLogin(s.ctx, "Alice")

	_, err := s.service.Sync(s.ctx, "alice", model.ProfileSync{
		Coins:                300,
		UnlockedHammers:      []string{"default", "golden", "golden"},
		EquippedHammer:       "golden",
		UnlockedAchievements: []string{"first_win", "first_win", "combo"},
	})
	s.Require().NoError(err)

	profile, err := s.service.Get(s.ctx, "ALICE")
	s.Require().NoError(err)
	s.Equal(&model.Profile{
		Username:             "Alice",
		Coins:                300,
		UnlockedHammers:      []string{"default", "golden"},
		EquippedHammer:       "golden",
		UnlockedAchievements: []string{"first_win", "combo"},
	}, profile)
}

func (s *ServiceSuite) TestSyncDefaultsMissingFields() {
	_, _, _ = s.service.GuestLogin(s.ctx, "Alice")
	_, _ = s.service.Sync(s.ctx, "Alice", model.ProfileSync{
		Coins:           10,
		UnlockedHammers: []string{"golden"},
		EquippedHammer:  "golden",
	})

	profile, err := s.service.Sync(s.ctx, "Alice", model.ProfileSync{})
	s.Require().NoError(err)
	s.Equal(int64(0), profile.Coins)
	s.Equal([]string{model.DefaultHammer}, profile.UnlockedHammers)
	s.Equal(model.DefaultHammer, profile.EquippedHammer)
	s.Empty(profile.UnlockedAchievements)
}

func (s *ServiceSuite) TestSyncUnknownUser() {
	_, err := s.service.Sync(s.ctx, "ghost", model.ProfileSync{Coins: 1})
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *ServiceSuite) TestSyncRejectsNegativeCoins() {
	_, _, _ = s.service.GuestLogin(s.ctx, "Alice")
	_, err := s.service.Sync(s.ctx, "Alice", model.ProfileSync{Coins: -5})
	s.ErrorIs(err, model.ErrInvalidCoins)
}

func (s *ServiceSuite) TestConcurrentSyncsNeverMixFields() {
	_, _, _ = s.service.GuestLogin(s.ctx, "Alice")

	a := model.ProfileSync{Coins: 1, UnlockedHammers: []string{"a"}, EquippedHammer: "a", UnlockedAchievements: []string{"a"}}
	b := model.ProfileSync{Coins: 2, UnlockedHammers: []string{"b"}, EquippedHammer: "b", UnlockedAchievements: []string{"b"}}

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			update := a
			if i%2 == 1 {
				update = b
			}
			_, err := s.service.Sync(s.ctx, "Alice", update)
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	profile, err := s.service.Get(s.ctx, "Alice")
	s.Require().NoError(err)
	if profile.Coins == 1 {
		s.Equal([]string{"a"}, profile.UnlockedHammers)
		s.Equal("a", profile.EquippedHammer)
		s.Equal([]string{"a"}, profile.UnlockedAchievements)
	} else {
		s.Equal(int64(2), profile.Coins)
		s.Equal([]string{"b"}, profile.UnlockedHammers)
		s.Equal("b", profile.EquippedHammer)
		s.Equal([]string{"b"}, profile.UnlockedAchievements)
	}
}

func (s *ServiceSuite) TestStoreFailuresAreUnavailable() {
	s.service = New(brokenStorage{memory.New()}, s.random, testutil.NopLogger(), DefaultConfig())

	_, _, err := s.service.GuestLogin(s.ctx, "Alice")
	s.ErrorIs(err, model.ErrStoreUnavailable)

	_, err = s.service.CreateAnonymous(s.ctx)
	s.ErrorIs(err, model.ErrStoreUnavailable)

	_, err = s.service.Get(s.ctx, "Alice")
	s.ErrorIs(err, model.ErrStoreUnavailable)

	_, err = s.service.Sync(s.ctx, "Alice", model.ProfileSync{})
	s.ErrorIs(err, model.ErrStoreUnavailable)
}

var errBackendDown = errors.New("backend down")

// brokenStorage fails every profile operation
type brokenStorage struct {
	*memory.Storage
}

func (brokenStorage) CreateProfile(context.Context, string, *model.Profile) error {
	return errBackendDown
}

func (brokenStorage) GetProfile(context.Context, string) (*model.Profile, error) {
	return nil, errBackendDown
}

func (brokenStorage) SyncProfile(context.Context, string, model.ProfileSync) (*model.Profile, error) {
	return nil, errBackendDown
}
