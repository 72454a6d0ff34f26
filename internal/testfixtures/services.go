package testfixtures

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/example/hr-dashboard/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers, clocks and enrichment.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Enricher    application.Enricher
	PageSize    int
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// DefaultEnricher assigns every fetched employee to Engineering with rating 3.
var DefaultEnricher = application.FixedEnricher{Department: "Engineering", Performance: 3, Years: 5}

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Enricher:    DefaultEnricher,
		PageSize:    application.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Enricher == nil {
		factory.Enricher = DefaultEnricher
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithEnricher overrides the enrichment applied to fetched employees.
func WithEnricher(enricher application.Enricher) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Enricher = enricher
	}
}

// WithPageSize overrides the page size of stores built by the factory.
func WithPageSize(size int) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.PageSize = size
	}
}

// NewStore returns an empty store using the factory page size.
func (f *ServiceFactory) NewStore() *application.Store {
	return application.NewStore(f.PageSize)
}

// RosterServiceDeps captures dependencies for constructing a roster service.
type RosterServiceDeps struct {
	Store     *application.Store
	Source    application.EmployeeSource
	Custom    application.CustomEmployeeRepository
	Enricher  application.Enricher
	Now       func() time.Time
	BatchSize int
	Logger    *slog.Logger
}

// NewRosterService builds a roster service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewRosterService(deps RosterServiceDeps) *application.RosterService {
	store := deps.Store
	if store == nil {
		store = f.NewStore()
	}
	enricher := deps.Enricher
	if enricher == nil {
		enricher = f.Enricher
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewRosterServiceWithLogger(
		store,
		deps.Source,
		deps.Custom,
		enricher,
		now,
		deps.BatchSize,
		deps.Logger,
	)
}

// BookmarkServiceDeps captures dependencies for constructing a bookmark service.
type BookmarkServiceDeps struct {
	Store       *application.Store
	Bookmarks   application.BookmarkRepository
	IDGenerator func() int64
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewBookmarkService builds a bookmark service using the supplied dependencies.
func (f *ServiceFactory) NewBookmarkService(deps BookmarkServiceDeps) *application.BookmarkService {
	store := deps.Store
	if store == nil {
		store = f.NewStore()
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.IntFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBookmarkServiceWithLogger(store, deps.Bookmarks, idGen, now, deps.Logger)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	PasswordVerify application.PasswordVerifier
	Secret         []byte
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// TestSecret signs session tokens in tests.
var TestSecret = []byte("test-session-secret-0123456789abcdef")

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	secret := deps.Secret
	if len(secret) == 0 {
		secret = TestSecret
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.PasswordVerify,
		secret,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}

// FastArgon2idParams keeps password hashing cheap in tests.
var FastArgon2idParams = application.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

// DemoCredentialStore returns the built-in operators hashed with FastArgon2idParams.
func DemoCredentialStore(tb testing.TB) *application.StaticCredentialStore {
	tb.Helper()
	creds, err := application.DemoOperators(FastArgon2idParams)
	if err != nil {
		tb.Fatalf("hash demo operators: %v", err)
	}
	return application.NewStaticCredentialStore(creds...)
}

// ----------------------------- Test doubles -----------------------------

// SourceResponse scripts one FetchEmployees call. A non-nil Release blocks the
// call until it is closed or the context ends.
type SourceResponse struct {
	Employees []application.Employee
	Err       error
	Release   <-chan struct{}
}

// StubSource is a scripted EmployeeSource. Queued responses are consumed in
// order; once the queue is empty Default answers every call.
type StubSource struct {
	Default SourceResponse

	mu      sync.Mutex
	queue   []SourceResponse
	limits  []int
	started chan int
}

// NewStubSource returns a source that answers with employees.
func NewStubSource(employees ...application.Employee) *StubSource {
	return &StubSource{
		Default: SourceResponse{Employees: employees},
		started: make(chan int, 16),
	}
}

// Enqueue appends scripted responses.
func (s *StubSource) Enqueue(responses ...SourceResponse) {
	s.mu.Lock()
	s.queue = append(s.queue, responses...)
	s.mu.Unlock()
}

// Started delivers the 1-based sequence number of each call as it begins.
func (s *StubSource) Started() <-chan int {
	return s.started
}

// Limits returns the limit argument of every call so far.
func (s *StubSource) Limits() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.limits)
}

// FetchEmployees implements application.EmployeeSource.
func (s *StubSource) FetchEmployees(ctx context.Context, limit int) ([]application.Employee, error) {
	s.mu.Lock()
	s.limits = append(s.limits, limit)
	call := len(s.limits)
	resp := s.Default
	if len(s.queue) > 0 {
		resp = s.queue[0]
		s.queue = s.queue[1:]
	}
	s.mu.Unlock()

	select {
	case s.started <- call:
	default:
	}

	if resp.Release != nil {
		select {
		case <-resp.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	out := make([]application.Employee, len(resp.Employees))
	for i, e := range resp.Employees {
		out[i] = e.Clone()
	}
	return out, nil
}

// CustomEmployees is an in-memory CustomEmployeeRepository.
type CustomEmployees struct {
	LoadErr   error
	AppendErr error

	mu        sync.Mutex
	employees []application.Employee
}

// NewCustomEmployees returns a repository pre-populated with employees.
func NewCustomEmployees(employees ...application.Employee) *CustomEmployees {
	return &CustomEmployees{employees: slices.Clone(employees)}
}

// LoadCustomEmployees implements application.CustomEmployeeRepository.
func (c *CustomEmployees) LoadCustomEmployees(ctx context.Context) ([]application.Employee, error) {
	if c.LoadErr != nil {
		return nil, c.LoadErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.employees), nil
}

// AppendCustomEmployee implements application.CustomEmployeeRepository.
func (c *CustomEmployees) AppendCustomEmployee(ctx context.Context, employee application.Employee) error {
	if c.AppendErr != nil {
		return c.AppendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.employees = append(c.employees, employee.Clone())
	return nil
}

// Stored returns the persisted employees.
func (c *CustomEmployees) Stored() []application.Employee {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.employees)
}

// Bookmarks is an in-memory BookmarkRepository that counts saves.
type Bookmarks struct {
	LoadErr error
	SaveErr error

	mu        sync.Mutex
	bookmarks []application.Bookmark
	saves     int
}

// NewBookmarks returns a repository pre-populated with bookmarks.
func NewBookmarks(bookmarks ...application.Bookmark) *Bookmarks {
	return &Bookmarks{bookmarks: slices.Clone(bookmarks)}
}

// LoadBookmarks implements application.BookmarkRepository.
func (b *Bookmarks) LoadBookmarks(ctx context.Context) ([]application.Bookmark, error) {
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.bookmarks), nil
}

// SaveBookmarks implements application.BookmarkRepository.
func (b *Bookmarks) SaveBookmarks(ctx context.Context, bookmarks []application.Bookmark) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves++
	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.bookmarks = slices.Clone(bookmarks)
	return nil
}

// Stored returns the last saved set.
func (b *Bookmarks) Stored() []application.Bookmark {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.bookmarks)
}

// Saves returns the number of SaveBookmarks calls.
func (b *Bookmarks) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}
