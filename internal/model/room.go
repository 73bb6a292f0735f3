package model

import "time"

// Passcode is the 5-digit identifier players use to join a room
type Passcode string

const (
	// PasscodeMin is the smallest passcode value
	PasscodeMin = 10000
	// PasscodeMax is the largest passcode value
	PasscodeMax = 99999
	// PasscodeKeyspace is the number of distinct passcodes
	PasscodeKeyspace = PasscodeMax - PasscodeMin + 1
)

// ScoreEntry is a single player's best score within a room
type ScoreEntry struct {
	PlayerName string `json:"playerName"`
	Score      int64  `json:"score"`
}

// Room is a private, time-limited score session owned by its creator
type Room struct {
	Passcode      Passcode
	Owner         string
	InfiniteTries bool
	Scores        []ScoreEntry // insertion order
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// IsOwner reports whether player created the room (exact match)
func (r *Room) IsOwner(player string) bool {
	return r.Owner == player
}

// Expired reports whether the room's TTL has elapsed at the given time
func (r *Room) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// SubmitOutcome is the result of a room score submission
type SubmitOutcome string

const (
	OutcomeAcceptedFirst         SubmitOutcome = "submitted"
	OutcomeAcceptedUpdate        SubmitOutcome = "updated"
	OutcomeRejectedAlreadyPlayed SubmitOutcome = "already_played"
)
