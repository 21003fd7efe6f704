package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
	"github.com/TADI-I/TUT-Labs/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Users        persistence.UserRepository
	Shifts       persistence.ShiftRepository
	Statuses     persistence.StatusRepository
	LabSessions  persistence.LabSessionRepository
	AuthSessions persistence.AuthSessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a temporary database file
// that is migrated automatically. Cleanup is registered with the provided
// testing.TB; callers may also invoke Close directly.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "tutlabs.db")

	pool, err := sqlite.Open("file:" + path + "?_pragma=foreign_keys(1)")
	if err != nil {
		tb.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := pool.Migrate(context.Background()); err != nil {
		pool.Close()
		tb.Fatalf("failed to migrate sqlite database: %v", err)
	}

	harness := &SQLiteHarness{
		Users:        sqlite.NewUserRepository(pool),
		Shifts:       sqlite.NewShiftRepository(pool),
		Statuses:     sqlite.NewStatusRepository(pool),
		LabSessions:  sqlite.NewLabSessionRepository(pool),
		AuthSessions: sqlite.NewAuthSessionRepository(pool),
		cleanup: func() {
			pool.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}
