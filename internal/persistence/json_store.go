package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/hr-dashboard/internal/logging"
)

// JSONStore serialises bookmarks and custom employees as JSON arrays on top of a
// KeyValueStore. Missing or unreadable values load as empty collections.
type JSONStore struct {
	kv     KeyValueStore
	logger *slog.Logger

	mu sync.Mutex
}

// NewJSONStore wraps kv. A nil logger falls back to slog.Default.
func NewJSONStore(kv KeyValueStore, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStore{kv: kv, logger: logger}
}

var (
	_ BookmarkRepository = (*JSONStore)(nil)
	_ EmployeeRepository = (*JSONStore)(nil)
)

// LoadBookmarks returns the persisted bookmark set in stored order.
func (s *JSONStore) LoadBookmarks(ctx context.Context) ([]Bookmark, error) {
	if s == nil || s.kv == nil {
		return nil, fmt.Errorf("json store is not configured")
	}
	return loadSlice[Bookmark](ctx, s, BookmarksKey)
}

// SaveBookmarks overwrites the persisted bookmark set.
func (s *JSONStore) SaveBookmarks(ctx context.Context, bookmarks []Bookmark) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("json store is not configured")
	}
	if bookmarks == nil {
		bookmarks = []Bookmark{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, BookmarksKey, bookmarks)
}

// LoadCustomEmployees returns locally created employees in creation order.
func (s *JSONStore) LoadCustomEmployees(ctx context.Context) ([]Employee, error) {
	if s == nil || s.kv == nil {
		return nil, fmt.Errorf("json store is not configured")
	}
	return loadSlice[Employee](ctx, s, CustomEmployeesKey)
}

// AppendCustomEmployee adds employee to the end of the persisted collection.
// An unreadable collection is replaced by one holding only the new record.
func (s *JSONStore) AppendCustomEmployee(ctx context.Context, employee Employee) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("json store is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	employees, err := loadSlice[Employee](ctx, s, CustomEmployeesKey)
	if err != nil {
		return err
	}
	employees = append(employees, employee)
	return s.save(ctx, CustomEmployeesKey, employees)
}

// loadSlice decodes the array stored under key. A value that fails to decode
// as a whole loads as empty; elements decoded before the failure are dropped.
func loadSlice[T any](ctx context.Context, s *JSONStore, key string) ([]T, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, nil
	}
	var decoded []T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.loggerFor(ctx).WarnContext(ctx, "discarding unreadable stored value",
			"key", key,
			"error", fmt.Errorf("%w: %v", ErrCorrupt, err),
		)
		return []T{}, nil
	}
	if decoded == nil {
		decoded = []T{}
	}
	return decoded, nil
}

func (s *JSONStore) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *JSONStore) loggerFor(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger).With("store", "json")
}
