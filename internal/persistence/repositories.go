package persistence

import "context"

// KeyValueStore is the durable byte store behind the JSON repositories.
// Get returns ErrNotFound for absent keys. Put overwrites any previous value.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// BookmarkRepository persists the full bookmark set.
type BookmarkRepository interface {
	LoadBookmarks(ctx context.Context) ([]Bookmark, error)
	SaveBookmarks(ctx context.Context, bookmarks []Bookmark) error
}

// EmployeeRepository persists employees created locally.
type EmployeeRepository interface {
	LoadCustomEmployees(ctx context.Context) ([]Employee, error)
	AppendCustomEmployee(ctx context.Context, employee Employee) error
}
