package room

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/mogg-backend/internal/dependencies/clock"
	"github.com/mcoot/mogg-backend/internal/dependencies/random"
	"github.com/mcoot/mogg-backend/internal/events"
	"github.com/mcoot/mogg-backend/internal/model"
)

// Config holds room lifecycle settings
type Config struct {
	// TTL is how long a room lives after creation. Activity does not extend it.
	TTL time.Duration
	// SweepInterval is how often Run removes expired rooms
	SweepInterval time.Duration
	// MaxPasscodeAttempts bounds passcode re-draws per create
	MaxPasscodeAttempts int
	// KeyspaceWarnRatio is the fraction of the passcode keyspace in use
	// above which a warning is logged
	KeyspaceWarnRatio float64
	// LeaderboardSize is the default number of rows in a room leaderboard
	LeaderboardSize int
}

// DefaultConfig returns the default room settings
func DefaultConfig() Config {
	return Config{
		TTL:                 24 * time.Hour,
		SweepInterval:       time.Minute,
		MaxPasscodeAttempts: DefaultMaxPasscodeAttempts,
		KeyspaceWarnRatio:   0.5,
		LeaderboardSize:     10,
	}
}

// roomState is a live room plus the lock guarding its mutable parts.
// Passcode, Owner and ExpiresAt never change after creation.
type roomState struct {
	mu     sync.Mutex
	room   model.Room
	ledger *Ledger
	closed bool // set once the room has been removed from the table
}

func (st *roomState) snapshot() *model.Room {
	r := st.room
	r.Scores = st.ledger.Entries()
	return &r
}

// Store is the in-process table of active rooms keyed by passcode.
// Lock order is always Store.mu before roomState.mu.
type Store struct {
	mu    sync.Mutex
	rooms map[model.Passcode]*roomState

	generator *Generator
	clock     clock.Clock
	publisher events.Publisher
	logger    *slog.Logger
	cfg       Config

	keyspaceWarned bool
}

// NewStore creates an empty room store
func NewStore(cfg Config, clk clock.Clock, rnd random.Random, publisher events.Publisher, logger *slog.Logger) *Store {
	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	if cfg.KeyspaceWarnRatio <= 0 {
		cfg.KeyspaceWarnRatio = defaults.KeyspaceWarnRatio
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = defaults.LeaderboardSize
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Store{
		rooms:     make(map[model.Passcode]*roomState),
		generator: NewGenerator(rnd, cfg.MaxPasscodeAttempts),
		clock:     clk,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

// Create opens a new room owned by owner
func (s *Store) Create(ctx context.Context, owner string) (*model.Room, error) {
	if owner == "" {
		return nil, model.ErrInvalidUsername
	}

	now := s.clock.Now()
	var evicted []model.Passcode

	s.mu.Lock()
	code, err := s.generator.Generate(func(p model.Passcode) bool {
		st, ok := s.rooms[p]
		return ok && !st.room.Expired(now)
	})
	if err != nil {
		active := len(s.rooms)
		s.mu.Unlock()
		s.logger.Error("passcode keyspace exhausted", slog.Int("active_rooms", active))
		return nil, err
	}

	// The slot may still hold an expired room that has not been swept yet
	if old, ok := s.rooms[code]; ok {
		s.closeLocked(code, old)
		evicted = append(evicted, code)
	}

	st := &roomState{
		room: model.Room{
			Passcode:      code,
			Owner:         owner,
			InfiniteTries: false,
			CreatedAt:     now,
			ExpiresAt:     now.Add(s.cfg.TTL),
		},
		ledger: NewLedger(),
	}
	s.rooms[code] = st
	active := len(s.rooms)
	warn := s.checkKeyspaceLocked(active)
	room := st.snapshot()
	s.mu.Unlock()

	if warn {
		s.logger.Warn("active rooms approaching passcode keyspace",
			slog.Int("active_rooms", active),
			slog.Int("keyspace", model.PasscodeKeyspace),
		)
	}
	s.publishExpired(ctx, evicted, now)

	s.logger.Info("room created",
		slog.String("passcode", string(code)),
		slog.String("owner", owner),
		slog.Time("expires_at", room.ExpiresAt),
	)

	e := events.New(events.TypeRoomCreated, now)
	e.Passcode = string(code)
	e.Player = owner
	s.publish(ctx, e)

	return room, nil
}

// Get returns a snapshot of the room
func (s *Store) Get(ctx context.Context, passcode model.Passcode) (*model.Room, error) {
	st, err := s.acquire(ctx, passcode)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return st.snapshot(), nil
}

// ToggleInfiniteTries flips the room's infinite tries flag and returns the new value
func (s *Store) ToggleInfiniteTries(ctx context.Context, passcode model.Passcode, requester string) (bool, error) {
	st, err := s.acquire(ctx, passcode)
	if err != nil {
		return false, err
	}
	defer st.mu.Unlock()

	if !st.room.IsOwner(requester) {
		return false, model.ErrUnauthorized
	}
	st.room.InfiniteTries = !st.room.InfiniteTries

	s.logger.Info("room infinite tries toggled",
		slog.String("passcode", string(passcode)),
		slog.Bool("infinite_tries", st.room.InfiniteTries),
	)
	return st.room.InfiniteTries, nil
}

// HasPlayed reports whether player has a score in the room, along with the
// room's current infinite tries setting
func (s *Store) HasPlayed(ctx context.Context, passcode model.Passcode, player string) (bool, bool, error) {
	st, err := s.acquire(ctx, passcode)
	if err != nil {
		return false, false, err
	}
	defer st.mu.Unlock()
	return st.ledger.Has(player), st.room.InfiniteTries, nil
}

// Submit records a player's score in the room. The existence check and the
// write happen under the room lock, so concurrent submissions for the same
// player converge on the highest score.
func (s *Store) Submit(ctx context.Context, passcode model.Passcode, player string, score int64) (model.SubmitOutcome, error) {
	st, err := s.acquire(ctx, passcode)
	if err != nil {
		return "", err
	}

	if player == "" {
		st.mu.Unlock()
		return "", model.ErrInvalidUsername
	}
	if score < 0 {
		st.mu.Unlock()
		return "", model.ErrInvalidScore
	}

	mayResubmit := st.room.IsOwner(player) || st.room.InfiniteTries
	outcome := st.ledger.Submit(player, score, mayResubmit)
	st.mu.Unlock()

	if outcome == model.OutcomeRejectedAlreadyPlayed {
		return outcome, model.ErrAlreadyPlayed
	}

	e := events.New(events.TypeRoomScore, s.clock.Now())
	e.Passcode = string(passcode)
	e.Player = player
	e.Score = score
	e.Outcome = string(outcome)
	s.publish(ctx, e)

	return outcome, nil
}

// Leaderboard returns the room's top n entries. A non-positive n uses the
// configured default.
func (s *Store) Leaderboard(ctx context.Context, passcode model.Passcode, n int) ([]model.ScoreEntry, error) {
	if n <= 0 {
		n = s.cfg.LeaderboardSize
	}
	st, err := s.acquire(ctx, passcode)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return st.ledger.Top(n), nil
}

// ResetScores clears the room's ledger, keeping its passcode, flag and expiry
func (s *Store) ResetScores(ctx context.Context, passcode model.Passcode, requester string) error {
	st, err := s.acquire(ctx, passcode)
	if err != nil {
		return err
	}
	if !st.room.IsOwner(requester) {
		st.mu.Unlock()
		return model.ErrUnauthorized
	}
	st.ledger.Reset()
	st.mu.Unlock()

	s.logger.Info("room scores reset", slog.String("passcode", string(passcode)))

	e := events.New(events.TypeRoomReset, s.clock.Now())
	e.Passcode = string(passcode)
	e.Player = requester
	s.publish(ctx, e)
	return nil
}

// Destroy removes the room immediately
func (s *Store) Destroy(ctx context.Context, passcode model.Passcode, requester string) error {
	now := s.clock.Now()

	s.mu.Lock()
	st, ok := s.rooms[passcode]
	if !ok {
		s.mu.Unlock()
		return model.ErrRoomExpired
	}
	if st.room.Expired(now) {
		s.closeLocked(passcode, st)
		s.mu.Unlock()
		s.publishExpired(ctx, []model.Passcode{passcode}, now)
		return model.ErrRoomExpired
	}

	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		s.mu.Unlock()
		return model.ErrRoomExpired
	}
	if !st.room.IsOwner(requester) {
		st.mu.Unlock()
		s.mu.Unlock()
		return model.ErrUnauthorized
	}
	st.closed = true
	delete(s.rooms, passcode)
	st.mu.Unlock()
	s.mu.Unlock()

	s.logger.Info("room destroyed", slog.String("passcode", string(passcode)))

	e := events.New(events.TypeRoomDestroyed, now)
	e.Passcode = string(passcode)
	e.Player = requester
	s.publish(ctx, e)
	return nil
}

// Len returns the number of rooms in the table, including expired rooms
// that have not been swept yet
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Sweep removes every expired room and returns how many were removed
func (s *Store) Sweep(ctx context.Context) int {
	now := s.clock.Now()
	var expired []model.Passcode

	s.mu.Lock()
	for code, st := range s.rooms {
		if st.room.Expired(now) {
			s.closeLocked(code, st)
			expired = append(expired, code)
		}
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		s.logger.Info("expired rooms swept", slog.Int("count", len(expired)))
	}
	s.publishExpired(ctx, expired, now)
	return len(expired)
}

// Run sweeps expired rooms every SweepInterval until ctx is cancelled
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// acquire looks up a live room and returns it locked. The caller must
// unlock it. Expired rooms found on the way are removed.
func (s *Store) acquire(ctx context.Context, passcode model.Passcode) (*roomState, error) {
	now := s.clock.Now()

	s.mu.Lock()
	st, ok := s.rooms[passcode]
	if ok && st.room.Expired(now) {
		s.closeLocked(passcode, st)
		s.mu.Unlock()
		s.publishExpired(ctx, []model.Passcode{passcode}, now)
		return nil, model.ErrRoomExpired
	}
	s.mu.Unlock()
	if !ok {
		return nil, model.ErrRoomExpired
	}

	st.mu.Lock()
	// The room may have been destroyed or swept after the table lookup
	if st.closed || st.room.Expired(s.clock.Now()) {
		st.mu.Unlock()
		return nil, model.ErrRoomExpired
	}
	return st, nil
}

// closeLocked marks a room closed and removes it. Requires s.mu.
func (s *Store) closeLocked(passcode model.Passcode, st *roomState) {
	st.mu.Lock()
	st.closed = true
	st.mu.Unlock()
	delete(s.rooms, passcode)
}

// checkKeyspaceLocked reports whether the keyspace warning should be logged
// now. It fires once per crossing of the threshold. Requires s.mu.
func (s *Store) checkKeyspaceLocked(active int) bool {
	threshold := int(float64(model.PasscodeKeyspace) * s.cfg.KeyspaceWarnRatio)
	if active < threshold {
		s.keyspaceWarned = false
		return false
	}
	if s.keyspaceWarned {
		return false
	}
	s.keyspaceWarned = true
	return true
}

func (s *Store) publishExpired(ctx context.Context, codes []model.Passcode, at time.Time) {
	for _, code := range codes {
		e := events.New(events.TypeRoomExpired, at)
		e.Passcode = string(code)
		s.publish(ctx, e)
	}
}

func (s *Store) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event",
			slog.String("type", e.Type),
			slog.String("error", err.Error()),
		)
	}
}
