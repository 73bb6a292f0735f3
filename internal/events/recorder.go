package events

import (
	"context"
	"sync"
)

// Recorder keeps published events in memory. Used by tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Publisher = (*Recorder)(nil)

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records the event
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Close does nothing
func (r *Recorder) Close() error { return nil }

// Events returns a copy of all recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the types of all recorded events in order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
