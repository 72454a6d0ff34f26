package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/example/hr-dashboard/internal/application"
	"github.com/example/hr-dashboard/internal/directory"
	"github.com/example/hr-dashboard/internal/testfixtures"
)

func TestEmployeeConversionRoundTrip(t *testing.T) {
	t.Parallel()

	employee := testfixtures.NewEmployee(
		testfixtures.WithEmployeeID(21),
		testfixtures.WithName("Grace", "Hopper"),
		testfixtures.WithDepartment("Finance"),
		testfixtures.WithProjects("Compiler"),
	)

	got := toApplicationEmployee(toPersistenceEmployee(employee))
	if diff := cmp.Diff(employee, got); diff != "" {
		t.Fatalf("employee mismatch after round trip (-want +got):\n%s", diff)
	}

	stored := toPersistenceEmployee(employee)
	if stored.Address.Address != employee.Address.Street {
		t.Fatalf("expected street to map to address, got %q", stored.Address.Address)
	}
}

func TestBookmarkAdapterPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)
	adapter := newBookmarkAdapter(harness.Store)

	stamp := testfixtures.ReferenceTime()
	want := []application.Bookmark{
		{ID: 1709544600000, EmployeeID: 7, Timestamp: stamp},
		{ID: 1709544600001, EmployeeID: 3, Timestamp: stamp.Add(time.Minute)},
	}
	if err := adapter.SaveBookmarks(ctx, want); err != nil {
		t.Fatalf("SaveBookmarks: %v", err)
	}
	harness.Close()

	reopened := testfixtures.OpenSQLiteHarness(t, harness.Path)
	got, err := newBookmarkAdapter(reopened.Store).LoadBookmarks(ctx)
	if err != nil {
		t.Fatalf("LoadBookmarks: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bookmarks mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomEmployeeAdapterFeedsRoster(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)
	custom := newCustomEmployeeAdapter(harness.Store)

	factory := testfixtures.NewServiceFactory()
	roster := factory.NewRosterService(testfixtures.RosterServiceDeps{
		Source: testfixtures.NewStubSource(testfixtures.RemoteEmployee(1, "Emily", "Johnson")),
		Custom: custom,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	if _, err := roster.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	created, err := roster.CreateEmployee(ctx, testfixtures.ValidEmployeeInput())
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}

	stored, err := custom.LoadCustomEmployees(ctx)
	if err != nil {
		t.Fatalf("LoadCustomEmployees: %v", err)
	}
	if diff := cmp.Diff([]application.Employee{created}, stored); diff != "" {
		t.Fatalf("stored employees mismatch (-want +got):\n%s", diff)
	}

	view, err := roster.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if view.TotalEmployees != 2 {
		t.Fatalf("expected remote plus custom employee, got %d", view.TotalEmployees)
	}
}

func TestDirectorySourceMapsUsers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"users":[{"id":4,"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","age":36,"phone":"+44 20 7946 0958","address":{"address":"12 St James's Square","city":"London","postalCode":"SW1Y 4JH"}}]}`)
	}))
	t.Cleanup(server.Close)

	client, err := directory.NewClient(server.URL, server.Client(), time.Second, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	got, err := newDirectorySource(client).FetchEmployees(context.Background(), 20)
	if err != nil {
		t.Fatalf("FetchEmployees: %v", err)
	}
	want := []application.Employee{{
		ID:        4,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Age:       36,
		Phone:     "+44 20 7946 0958",
		Address: application.Address{
			Street:     "12 St James's Square",
			City:       "London",
			PostalCode: "SW1Y 4JH",
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("employees mismatch (-want +got):\n%s", diff)
	}
}

func TestRandomSeedVaries(t *testing.T) {
	t.Parallel()

	if randomSeed() == randomSeed() {
		t.Fatal("expected two random seeds to differ")
	}
}
