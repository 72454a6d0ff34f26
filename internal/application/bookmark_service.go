package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// BookmarkRepository persists the full bookmark set.
type BookmarkRepository interface {
	LoadBookmarks(ctx context.Context) ([]Bookmark, error)
	SaveBookmarks(ctx context.Context, bookmarks []Bookmark) error
}

// BookmarkedEmployee pairs a bookmark with the roster entry it refers to.
type BookmarkedEmployee struct {
	Bookmark Bookmark
	Employee Employee
}

// BookmarkService maintains the bookmark set in a Store and mirrors every
// change to durable storage.
type BookmarkService struct {
	store       *Store
	repo        BookmarkRepository
	idGenerator func() int64
	now         func() time.Time
	logger      *slog.Logger

	mu sync.Mutex
}

// NewBookmarkService constructs a BookmarkService whose bookmark IDs derive from now.
func NewBookmarkService(store *Store, repo BookmarkRepository, now func() time.Time) *BookmarkService {
	return NewBookmarkServiceWithLogger(store, repo, nil, now, nil)
}

// NewBookmarkServiceWithLogger constructs a BookmarkService with explicit ID generation and logger.
func NewBookmarkServiceWithLogger(store *Store, repo BookmarkRepository, idGenerator func() int64, now func() time.Time, logger *slog.Logger) *BookmarkService {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = MillisIDGenerator(now)
	}
	return &BookmarkService{
		store:       store,
		repo:        repo,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// MillisIDGenerator returns IDs taken from the millisecond clock, bumped when
// needed so that successive IDs strictly increase.
func MillisIDGenerator(now func() time.Time) func() int64 {
	var (
		mu   sync.Mutex
		last int64
	)
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		id := now().UnixMilli()
		if id <= last {
			id = last + 1
		}
		last = id
		return id
	}
}

func (s *BookmarkService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookmarkService", operation, attrs...)
}

// Hydrate installs the persisted bookmark set. Missing or unreadable data
// yields an empty set.
func (s *BookmarkService) Hydrate(ctx context.Context) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("BookmarkService is nil")
	}
	logger := s.loggerWith(ctx, "Hydrate")
	if s.repo == nil {
		logger.WarnContext(ctx, "no bookmark repository configured; starting empty")
		return nil
	}

	bookmarks, err := s.repo.LoadBookmarks(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load bookmarks", "error", err, "error_kind", ErrorKind(err))
		s.store.Dispatch(SetBookmarks{Bookmarks: []Bookmark{}})
		return fmt.Errorf("load bookmarks: %w", err)
	}

	view := s.store.Dispatch(SetBookmarks{Bookmarks: bookmarks})
	logger.InfoContext(ctx, "bookmarks hydrated", "count", view.BookmarkCount)
	return nil
}

// Add bookmarks employeeID. It reports false, without touching storage, when
// the employee is already bookmarked.
func (s *BookmarkService) Add(ctx context.Context, employeeID int) (bookmark Bookmark, created bool, err error) {
	if s == nil || s.store == nil {
		return Bookmark{}, false, fmt.Errorf("BookmarkService is nil")
	}

	logger := s.loggerWith(ctx, "Add", "employee_id", employeeID)
	defer func() {
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "bookmark add failed", "error", err, "error_kind", ErrorKind(err))
		case created:
			logger.InfoContext(ctx, "bookmark added", "bookmark_id", bookmark.ID)
		default:
			logger.DebugContext(ctx, "employee already bookmarked")
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.find(employeeID); ok {
		return existing, false, nil
	}

	bookmark = Bookmark{
		ID:         s.idGenerator(),
		EmployeeID: employeeID,
		Timestamp:  s.now(),
	}
	s.store.Dispatch(AddBookmark{Bookmark: bookmark})
	if err = s.persist(ctx); err != nil {
		return bookmark, true, err
	}
	return bookmark, true, nil
}

// Remove deletes the bookmark for employeeID. Removing an absent bookmark is a no-op.
func (s *BookmarkService) Remove(ctx context.Context, employeeID int) (removed bool, err error) {
	if s == nil || s.store == nil {
		return false, fmt.Errorf("BookmarkService is nil")
	}

	logger := s.loggerWith(ctx, "Remove", "employee_id", employeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "bookmark removal failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "bookmark removal processed", "removed", removed)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.find(employeeID); !ok {
		return false, nil
	}
	s.store.Dispatch(RemoveBookmark{EmployeeID: employeeID})
	return true, s.persist(ctx)
}

// IsBookmarked reports whether employeeID is bookmarked.
func (s *BookmarkService) IsBookmarked(employeeID int) bool {
	if s == nil || s.store == nil {
		return false
	}
	_, ok := s.find(employeeID)
	return ok
}

// Bookmarks returns the bookmark set in insertion order.
func (s *BookmarkService) Bookmarks() []Bookmark {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Snapshot().Bookmarks
}

// BookmarkedEmployees resolves bookmarks against the roster in bookmark order.
// Bookmarks whose employee is not on the roster are skipped.
func (s *BookmarkService) BookmarkedEmployees() []BookmarkedEmployee {
	if s == nil || s.store == nil {
		return nil
	}
	state := s.store.Snapshot()
	out := make([]BookmarkedEmployee, 0, len(state.Bookmarks))
	for _, b := range state.Bookmarks {
		if e, ok := findEmployee(state.Employees, b.EmployeeID); ok {
			out = append(out, BookmarkedEmployee{Bookmark: b, Employee: e})
		}
	}
	return out
}

func (s *BookmarkService) find(employeeID int) (Bookmark, bool) {
	for _, b := range s.store.Snapshot().Bookmarks {
		if b.EmployeeID == employeeID {
			return b, true
		}
	}
	return Bookmark{}, false
}

// persist writes the full set; callers hold s.mu.
func (s *BookmarkService) persist(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.SaveBookmarks(ctx, s.store.Snapshot().Bookmarks); err != nil {
		return fmt.Errorf("save bookmarks: %w", err)
	}
	return nil
}
