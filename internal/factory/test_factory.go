package factory

import (
	"time"

	"github.com/gumballrun/gumballrun/internal/dependencies/mocks"
	"github.com/gumballrun/gumballrun/internal/services/reaper"
	"github.com/gumballrun/gumballrun/internal/storage/memory"
	"github.com/gumballrun/gumballrun/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and in-memory storage
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(
		memory.New(),
		mockClock,
		mockRandom,
		0, // default match duration
		reaper.DefaultConfig(),
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
