package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/pokernight-go/internal/dependencies/mocks"
	"github.com/mcoot/pokernight-go/internal/dependencies/random"
	"github.com/mcoot/pokernight-go/internal/services/auth"
	"github.com/mcoot/pokernight-go/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// MockClock controls time in tests; randomness stays real so IDs are
	// unique without queueing
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with a controllable clock
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, random.New(), auth.DefaultConfig(), logger)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
