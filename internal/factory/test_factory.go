package factory

import (
	"time"

	"github.com/nmikhailov/guessnum/internal/dependencies/mocks"
	"github.com/nmikhailov/guessnum/internal/storage/memory"
	"github.com/nmikhailov/guessnum/internal/testutil"
	"github.com/nmikhailov/guessnum/internal/transport"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockScheduler *mocks.MockScheduler
	Recorder      *transport.RecordingNotifier
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockScheduler := mocks.NewMockScheduler()
	recorder := transport.NewRecordingNotifier()

	app := newWithDependencies(store, mockClock, mockRandom, mockScheduler, recorder, testutil.NopLogger())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockScheduler: mockScheduler,
		Recorder:      recorder,
	}
}
