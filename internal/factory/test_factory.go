package factory

import (
	"time"

	"github.com/mcoot/mogg-backend/internal/dependencies/mocks"
	"github.com/mcoot/mogg-backend/internal/events"
	"github.com/mcoot/mogg-backend/internal/services/room"
	"github.com/mcoot/mogg-backend/internal/storage"
	"github.com/mcoot/mogg-backend/internal/storage/memory"
	"github.com/mcoot/mogg-backend/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Events     *events.Recorder
}

// NewTestApp creates an App backed by memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a test App over the given storage
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	recorder := events.NewRecorder()

	app := newWithDependencies(store, mockClock, mockRandom, recorder, room.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Events:     recorder,
	}
}
