package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/hr-dashboard/internal/persistence"
	"github.com/example/hr-dashboard/internal/persistence/sqlite"
)

// SQLiteHarness provides the JSON repositories backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Path    string
	Storage *sqlite.Storage
	Store   *persistence.JSONStore

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a migrated database in a temporary directory. Close
// is optional; the harness also registers cleanup with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()
	return OpenSQLiteHarness(tb, filepath.Join(tb.TempDir(), "hrdashboard.db"))
}

// OpenSQLiteHarness opens the database at path, which lets a test reopen a
// file written by an earlier harness.
func OpenSQLiteHarness(tb testing.TB, path string) *SQLiteHarness {
	tb.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path), logger)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	harness := &SQLiteHarness{
		Path:    path,
		Storage: storage,
		Store:   persistence.NewJSONStore(storage, logger),
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
