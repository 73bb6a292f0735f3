// Package events publishes room and score activity for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeRoomCreated   = "room.created"
	TypeRoomDestroyed = "room.destroyed"
	TypeRoomExpired   = "room.expired"
	TypeRoomReset     = "room.reset"
	TypeRoomScore     = "room.score"
	TypeGlobalScore   = "score.global"
)

// SubjectPrefix is prepended to the event type to form the subject
const SubjectPrefix = "mogg."

// Event describes something that happened to a room or the global leaderboard
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Passcode   string    `json:"passcode,omitempty"`
	Player     string    `json:"player,omitempty"`
	Score      int64     `json:"score,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New creates an event of the given type with a fresh ID
func New(eventType string, at time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: at,
	}
}

// Subject returns the subject the event is published on
func (e Event) Subject() string {
	return SubjectPrefix + e.Type
}

// Publisher delivers events. Delivery is best effort; callers log failures
// and carry on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards all events
type Nop struct{}

// Publish does nothing
func (Nop) Publish(context.Context, Event) error { return nil }

// Close does nothing
func (Nop) Close() error { return nil }
