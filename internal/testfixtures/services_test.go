package testfixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hr-dashboard/internal/application"
	"github.com/example/hr-dashboard/internal/persistence"
)

func TestServiceFactoryNewBookmarkService(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory()
	repo := NewBookmarks()
	store := factory.NewStore()

	svc := factory.NewBookmarkService(BookmarkServiceDeps{Store: store, Bookmarks: repo})
	bookmark, created, err := svc.Add(context.Background(), 7)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if !created {
		t.Fatal("expected bookmark to be created")
	}
	if bookmark.ID != 1 {
		t.Fatalf("expected generated ID 1, got %d", bookmark.ID)
	}
	if !bookmark.Timestamp.Equal(factory.Clock.Peek()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Peek(), bookmark.Timestamp)
	}
	if got := repo.Stored(); len(got) != 1 || got[0].EmployeeID != 7 {
		t.Fatalf("repository received unexpected bookmarks: %+v", got)
	}
}

func TestServiceFactoryNewRosterServiceUsesFactoryEnricher(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory(WithEnricher(application.FixedEnricher{Department: "Sales", Performance: 5, Years: 2}))
	source := NewStubSource(RemoteEmployee(1, "Ada", "Lovelace"))

	svc := factory.NewRosterService(RosterServiceDeps{Source: source})
	view, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(view.Employees) != 1 {
		t.Fatalf("expected one employee, got %d", len(view.Employees))
	}
	if got := view.Employees[0]; got.Department != "Sales" || got.Performance != 5 {
		t.Fatalf("unexpected enrichment: %+v", got)
	}
	if limits := source.Limits(); len(limits) != 1 || limits[0] != application.DefaultBatchSize {
		t.Fatalf("unexpected fetch limits: %v", limits)
	}
}

func TestStubSourceScriptedResponses(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	release := make(chan struct{})
	source := NewStubSource(RemoteEmployee(2, "Grace", "Hopper"))
	source.Enqueue(SourceResponse{Err: boom}, SourceResponse{Release: release})

	if _, err := source.FetchEmployees(context.Background(), 5); !errors.Is(err, boom) {
		t.Fatalf("expected scripted error, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := source.FetchEmployees(ctx, 5); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected blocked call to honour context, got %v", err)
	}

	got, err := source.FetchEmployees(context.Background(), 5)
	if err != nil || len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected default response, got %+v, %v", got, err)
	}

	for want := 1; want <= 3; want++ {
		if seq := <-source.Started(); seq != want {
			t.Fatalf("expected call %d, got %d", want, seq)
		}
	}
}

func TestSQLiteHarnessRoundTrip(t *testing.T) {
	t.Parallel()

	harness := NewSQLiteHarness(t)
	ctx := context.Background()

	bookmark := PersistedBookmark(1, 3, time.Hour)
	if err := harness.Store.SaveBookmarks(ctx, nil); err != nil {
		t.Fatalf("SaveBookmarks(nil): %v", err)
	}
	if err := harness.Store.SaveBookmarks(ctx, []persistence.Bookmark{bookmark}); err != nil {
		t.Fatalf("SaveBookmarks: %v", err)
	}
	path := harness.Path
	harness.Close()

	reopened := OpenSQLiteHarness(t, path)
	got, err := reopened.Store.LoadBookmarks(ctx)
	if err != nil {
		t.Fatalf("LoadBookmarks: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != 3 || !got[0].Timestamp.Equal(bookmark.Timestamp) {
		t.Fatalf("unexpected bookmarks after reopen: %+v", got)
	}
}
