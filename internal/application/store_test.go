package application_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/example/hr-dashboard/internal/application"
	"github.com/example/hr-dashboard/internal/testfixtures"
)

func TestReduceDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	state := application.State{
		Employees: testfixtures.Roster(3),
		Bookmarks: []application.Bookmark{{ID: 1, EmployeeID: 2}},
		Filters:   application.FilterSpec{Departments: []string{"HR"}},
		Page:      2,
		PageSize:  9,
	}
	before := application.Reduce(state, application.SetPage{Page: 2})

	actions := []application.Action{
		application.AddEmployee{Employee: testfixtures.NewEmployee()},
		application.ToggleDepartment{Department: "Sales"},
		application.AddBookmark{Bookmark: application.Bookmark{ID: 2, EmployeeID: 3}},
		application.RemoveBookmark{EmployeeID: 2},
		application.ReplaceEmployee{Employee: testfixtures.NewEmployee(testfixtures.WithEmployeeID(1), testfixtures.WithProjects("Apollo"))},
	}
	for _, action := range actions {
		application.Reduce(state, action)
	}

	if diff := cmp.Diff(before, state); diff != "" {
		t.Fatalf("Reduce mutated its input (-before +after):\n%s", diff)
	}
}

func TestReduceFilterChangesResetPage(t *testing.T) {
	t.Parallel()

	search := "person"
	departments := []string{"HR"}
	empty := ""

	tests := []struct {
		name     string
		action   application.Action
		wantPage int
	}{
		{"search change", application.SetFilters{Patch: application.FilterPatch{Search: &search}}, 1},
		{"department change", application.SetFilters{Patch: application.FilterPatch{Departments: &departments}}, 1},
		{"toggle department", application.ToggleDepartment{Department: "Sales"}, 1},
		{"toggle rating", application.ToggleRating{Rating: 3}, 1},
		{"unchanged filters keep page", application.SetFilters{Patch: application.FilterPatch{Search: &empty}}, 3},
		{"page size change", application.SetPageSize{PageSize: 4}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			state := application.State{Employees: testfixtures.Roster(30), Page: 3, PageSize: 9}
			if got := application.Reduce(state, tt.action).Page; got != tt.wantPage {
				t.Fatalf("expected page %d, got %d", tt.wantPage, got)
			}
		})
	}
}

func TestReduceBookmarksStayUnique(t *testing.T) {
	t.Parallel()

	state := application.Reduce(application.State{}, application.SetBookmarks{Bookmarks: []application.Bookmark{
		{ID: 1, EmployeeID: 5},
		{ID: 2, EmployeeID: 5},
		{ID: 3, EmployeeID: 6},
	}})
	state = application.Reduce(state, application.AddBookmark{Bookmark: application.Bookmark{ID: 4, EmployeeID: 6}})

	want := []application.Bookmark{{ID: 1, EmployeeID: 5}, {ID: 3, EmployeeID: 6}}
	if diff := cmp.Diff(want, state.Bookmarks); diff != "" {
		t.Fatalf("bookmarks mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceCommitLoad(t *testing.T) {
	t.Parallel()

	roster := testfixtures.Roster(2)
	state := application.Reduce(application.State{}, application.BeginLoad{})
	if !state.Loading || state.Generation != 1 {
		t.Fatalf("BeginLoad should set loading and bump generation: %+v", state)
	}

	stale := application.Reduce(state, application.CommitLoad{Generation: 0, Employees: roster})
	if !stale.Loading || len(stale.Employees) != 0 {
		t.Fatalf("commit from an older generation must be ignored: %+v", stale)
	}

	failed := application.Reduce(state, application.CommitLoad{Generation: 1, Error: application.FetchErrorMessage})
	if failed.Loading || failed.Error != application.FetchErrorMessage || len(failed.Employees) != 0 {
		t.Fatalf("failed load should clear roster and record error: %+v", failed)
	}

	ok := application.Reduce(state, application.CommitLoad{Generation: 1, Employees: roster})
	if ok.Loading || ok.Error != "" || len(ok.Employees) != 2 {
		t.Fatalf("successful load should install roster: %+v", ok)
	}
}

func TestProject(t *testing.T) {
	t.Parallel()

	state := application.State{
		Employees: testfixtures.Roster(20),
		Bookmarks: []application.Bookmark{{ID: 1, EmployeeID: 4}},
		Filters:   application.FilterSpec{Performance: []int{1, 2}},
		Page:      2,
		PageSize:  5,
	}
	view := application.Project(state)

	// Roster ratings cycle 1..5, so ratings 1 and 2 select IDs 1,2,6,7,11,12,16,17.
	if diff := cmp.Diff([]int{12, 16, 17}, ids(view.Employees)); diff != "" {
		t.Fatalf("page mismatch (-want +got):\n%s", diff)
	}
	if view.TotalMatches != 8 || view.TotalPages != 2 || view.TotalEmployees != 20 {
		t.Fatalf("unexpected totals: %+v", view)
	}
	if !view.Bookmarked[4] || view.BookmarkCount != 1 {
		t.Fatalf("expected employee 4 to be marked bookmarked")
	}
}

func TestStoreSubscribe(t *testing.T) {
	t.Parallel()

	store := application.NewStore(0)
	var (
		mu    sync.Mutex
		pages []int
	)
	cancel := store.Subscribe(func(v application.View) {
		mu.Lock()
		pages = append(pages, v.Page)
		mu.Unlock()
	})

	store.Dispatch(application.SetEmployees{Employees: testfixtures.Roster(30)})
	store.Dispatch(application.SetPage{Page: 3})
	cancel()
	store.Dispatch(application.SetPage{Page: 2})

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]int{1, 3}, pages); diff != "" {
		t.Fatalf("observer calls mismatch (-want +got):\n%s", diff)
	}
	if got := store.View().Page; got != 2 {
		t.Fatalf("expected page 2 after cancel, got %d", got)
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	store := application.NewStore(application.DefaultPageSize)
	store.Dispatch(application.SetEmployees{Employees: testfixtures.Roster(1)})

	snapshot := store.Snapshot()
	snapshot.Employees[0].FirstName = "Changed"
	snapshot.Employees[0].AssignedProjects = append(snapshot.Employees[0].AssignedProjects, "Leak")

	again := store.Snapshot()
	if again.Employees[0].FirstName == "Changed" || len(again.Employees[0].AssignedProjects) != 0 {
		t.Fatalf("snapshot aliased store state: %+v", again.Employees[0])
	}
}

func TestStoreCommitLoadRejectsOlderGeneration(t *testing.T) {
	t.Parallel()

	store := application.NewStore(0)
	first := store.BeginLoad()
	second := store.BeginLoad()

	if _, committed := store.CommitLoad(first, testfixtures.Roster(5), ""); committed {
		t.Fatal("older generation must not commit")
	}
	view, committed := store.CommitLoad(second, testfixtures.Roster(2), "")
	if !committed {
		t.Fatal("latest generation should commit")
	}
	if view.TotalEmployees != 2 || view.Loading {
		t.Fatalf("unexpected view after commit: %+v", view)
	}
}

func TestStoreConcurrentDispatch(t *testing.T) {
	t.Parallel()

	store := application.NewStore(0)
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			store.Dispatch(application.AddBookmark{Bookmark: application.Bookmark{ID: int64(id), EmployeeID: id % 10}})
		}(i)
	}
	wg.Wait()

	if got := store.View().BookmarkCount; got != 10 {
		t.Fatalf("expected 10 unique bookmarks, got %d", got)
	}
}

func TestStoreSetPageBeyondRange(t *testing.T) {
	t.Parallel()

	store := application.NewStore(9)
	store.Dispatch(application.SetEmployees{Employees: testfixtures.Roster(20)})

	view := store.Dispatch(application.SetPage{Page: math.MaxInt/9 + 2})
	if view.Page != application.MaxPage {
		t.Fatalf("expected page clamped to %d, got %d", application.MaxPage, view.Page)
	}
	if len(view.Employees) != 0 || view.TotalPages != 3 {
		t.Fatalf("expected an empty page out of 3, got %d employees and %d pages", len(view.Employees), view.TotalPages)
	}

	done := make(chan application.View, 1)
	go func() {
		store.Dispatch(application.SetPage{Page: 2})
		done <- store.View()
	}()
	select {
	case got := <-done:
		if diff := cmp.Diff([]int{10, 11, 12, 13, 14, 15, 16, 17, 18}, ids(got.Employees)); diff != "" {
			t.Fatalf("page mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(time.Second):
		t.Fatal("store did not accept further actions")
	}
}
