package sqlite_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/example/hr-dashboard/internal/persistence"
	"github.com/example/hr-dashboard/internal/persistence/sqlite"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStorage(t *testing.T, path string) *sqlite.Storage {
	t.Helper()
	storage, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path), quietLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestStorageKeyValue(t *testing.T) {
	t.Parallel()

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		storage := openStorage(t, filepath.Join(t.TempDir(), "kv.db"))
		_, err := storage.Get(context.Background(), "absent")
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("put overwrites and delete removes", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		storage := openStorage(t, filepath.Join(t.TempDir(), "kv.db"))

		if err := storage.Put(ctx, "k", []byte("first")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := storage.Put(ctx, "k", []byte("second")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := storage.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "second" {
			t.Fatalf("expected overwritten value, got %q", got)
		}

		keys, err := storage.Keys(ctx)
		if err != nil {
			t.Fatalf("Keys failed: %v", err)
		}
		if diff := cmp.Diff([]string{"k"}, keys); diff != "" {
			t.Fatalf("keys mismatch (-want +got):\n%s", diff)
		}

		if err := storage.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := storage.Get(ctx, "k"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := storage.Delete(ctx, "k"); err != nil {
			t.Fatalf("deleting absent key should succeed, got %v", err)
		}
	})

	t.Run("bookmarks survive reopening the database", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "dashboard.db")

		first, err := sqlite.Open(ctx, sqlite.DefaultConfig(path), quietLogger())
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		stamp := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
		want := []persistence.Bookmark{{ID: 1714550400000, EmployeeID: 12, Timestamp: stamp}}
		if err := persistence.NewJSONStore(first, quietLogger()).SaveBookmarks(ctx, want); err != nil {
			t.Fatalf("SaveBookmarks failed: %v", err)
		}
		if err := first.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		second := openStorage(t, path)
		got, err := persistence.NewJSONStore(second, quietLogger()).LoadBookmarks(ctx)
		if err != nil {
			t.Fatalf("LoadBookmarks failed: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("bookmarks mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestApplyMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool, err := sqlite.NewConnectionPool(ctx, sqlite.DefaultConfig(filepath.Join(t.TempDir(), "m.db")))
	if err != nil {
		t.Fatalf("NewConnectionPool failed: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	fsys := fstest.MapFS{
		"0002_second.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE second (id INTEGER);\n-- +migrate Down\nDROP TABLE second;\n")},
		"0001_first.sql":  {Data: []byte("CREATE TABLE first (id INTEGER);")},
		"README.md":       {Data: []byte("ignored")},
	}
	migrations, err := sqlite.LoadMigrations(fsys, ".")
	if err != nil {
		t.Fatalf("LoadMigrations failed: %v", err)
	}
	if len(migrations) != 2 || migrations[0].Name != "0001_first.sql" {
		t.Fatalf("unexpected migration order: %#v", migrations)
	}

	applied, err := sqlite.ApplyMigrations(ctx, pool, migrations, quietLogger())
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if diff := cmp.Diff([]string{"0001_first.sql", "0002_second.sql"}, applied); diff != "" {
		t.Fatalf("applied mismatch (-want +got):\n%s", diff)
	}

	again, err := sqlite.ApplyMigrations(ctx, pool, migrations, quietLogger())
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no pending migrations, got %v", again)
	}

	var count int
	if err := pool.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM second").Scan(&count); err != nil {
		t.Fatalf("second table missing: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     sqlite.Config
		wantErr bool
	}{
		{name: "defaults", cfg: sqlite.DefaultConfig("x.db")},
		{name: "empty dsn", cfg: sqlite.Config{}, wantErr: true},
		{name: "negative timeout", cfg: sqlite.Config{DSN: "x.db", BusyTimeout: -time.Second}, wantErr: true},
		{name: "bad journal", cfg: sqlite.Config{DSN: "x.db", JournalMode: "sideways"}, wantErr: true},
		{name: "bad synchronous", cfg: sqlite.Config{DSN: "x.db", Synchronous: "maybe"}, wantErr: true},
		{name: "lowercase modes", cfg: sqlite.Config{DSN: "x.db", JournalMode: "wal", Synchronous: "full"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
