package application_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/hr-dashboard/internal/application"
	"github.com/example/hr-dashboard/internal/testfixtures"
)

func ids(employees []application.Employee) []int {
	out := make([]int, 0, len(employees))
	for _, e := range employees {
		out = append(out, e.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	t.Parallel()

	roster := []application.Employee{
		testfixtures.NewEmployee(testfixtures.WithEmployeeID(1), testfixtures.WithName("Ann", "Lee"),
			testfixtures.WithEmail("ann@corp.io"), testfixtures.WithDepartment("HR"), testfixtures.WithPerformance(4)),
		testfixtures.NewEmployee(testfixtures.WithEmployeeID(2), testfixtures.WithName("Bob", "Stone"),
			testfixtures.WithEmail("bob@corp.io"), testfixtures.WithDepartment("Sales"), testfixtures.WithPerformance(2)),
		testfixtures.NewEmployee(testfixtures.WithEmployeeID(3), testfixtures.WithName("Cleo", "Annand"),
			testfixtures.WithEmail("cleo@corp.io"), testfixtures.WithDepartment("HR"), testfixtures.WithPerformance(2)),
		testfixtures.NewEmployee(testfixtures.WithEmployeeID(4), testfixtures.WithName("Dan", "Ford"),
			testfixtures.WithEmail("dan@hrconsult.io"), testfixtures.WithDepartment("Finance"), testfixtures.WithPerformance(5)),
		testfixtures.NewEmployee(testfixtures.WithEmployeeID(5), testfixtures.WithName("Jörg", "Strauß"),
			testfixtures.WithEmail("joerg@corp.io"), testfixtures.WithDepartment("Marketing"), testfixtures.WithPerformance(3)),
	}

	tests := []struct {
		name string
		spec application.FilterSpec
		want []int
	}{
		{name: "empty spec matches all", spec: application.FilterSpec{}, want: []int{1, 2, 3, 4, 5}},
		{name: "search is case insensitive", spec: application.FilterSpec{Search: "ANN"}, want: []int{1, 3}},
		{name: "search covers email", spec: application.FilterSpec{Search: "hrconsult"}, want: []int{4}},
		{name: "search covers department", spec: application.FilterSpec{Search: "hr"}, want: []int{1, 3, 4}},
		{name: "search is not trimmed", spec: application.FilterSpec{Search: " ann"}, want: []int{}},
		{name: "department set", spec: application.FilterSpec{Departments: []string{"HR", "Finance"}}, want: []int{1, 3, 4}},
		{name: "rating set", spec: application.FilterSpec{Performance: []int{2}}, want: []int{2, 3}},
		{
			name: "conditions combine",
			spec: application.FilterSpec{Search: "an", Departments: []string{"HR"}, Performance: []int{2}},
			want: []int{3},
		},
		{name: "no match", spec: application.FilterSpec{Departments: []string{"Legal"}}, want: []int{}},
		{name: "search lowercases without folding", spec: application.FilterSpec{Search: "STRAUSS"}, want: []int{}},
		{name: "search keeps sharp s", spec: application.FilterSpec{Search: "STRAUß"}, want: []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := application.Filter(roster, tt.spec)
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Fatalf("Filter mismatch (-want +got):\n%s", diff)
			}
			for _, e := range got {
				if !application.Matches(e, tt.spec) {
					t.Fatalf("employee %d returned but does not match", e.ID)
				}
			}
		})
	}
}

func TestFilterIsSubsequenceOfInput(t *testing.T) {
	t.Parallel()

	roster := testfixtures.Roster(23)
	specs := []application.FilterSpec{
		{},
		{Search: "person1"},
		{Departments: []string{"Sales", "HR"}},
		{Performance: []int{1, 5}},
		{Search: "sample", Departments: []string{"Engineering"}, Performance: []int{1}},
	}
	for _, spec := range specs {
		got := application.Filter(roster, spec)
		next := 0
		for _, e := range got {
			for next < len(roster) && roster[next].ID != e.ID {
				next++
			}
			if next == len(roster) {
				t.Fatalf("spec %+v: result is not an ordered subsequence of the roster", spec)
			}
			next++
		}
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	items := make([]int, 20)
	for i := range items {
		items[i] = i + 1
	}

	tests := []struct {
		name     string
		pageSize int
		page     int
		want     []int
	}{
		{"first page", 9, 1, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"partial last page", 9, 3, []int{19, 20}},
		{"beyond end", 9, 4, []int{}},
		{"below one", 9, 0, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"default page size", 0, 2, []int{10, 11, 12, 13, 14, 15, 16, 17, 18}},
		{"page whose offset overflows", 9, math.MaxInt/9 + 2, []int{}},
		{"largest page", 9, math.MaxInt, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, application.Paginate(items, tt.pageSize, tt.page)); diff != "" {
				t.Fatalf("Paginate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPagesPartitionMatches(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 8, 9, 10, 18, 23} {
		roster := testfixtures.Roster(n)
		pages := application.TotalPages(len(roster), application.DefaultPageSize)
		if n == 0 && pages != 1 {
			t.Fatalf("expected one page for empty roster, got %d", pages)
		}

		var joined []int
		for p := 1; p <= pages; p++ {
			chunk := application.Paginate(roster, application.DefaultPageSize, p)
			if len(chunk) > application.DefaultPageSize {
				t.Fatalf("page %d holds %d items", p, len(chunk))
			}
			joined = append(joined, ids(chunk)...)
		}
		if diff := cmp.Diff(ids(roster), append([]int{}, joined...)); diff != "" {
			t.Fatalf("n=%d: pages do not partition the roster (-want +got):\n%s", n, diff)
		}
	}
}

func TestFilterSpecToggles(t *testing.T) {
	t.Parallel()

	spec := application.FilterSpec{}.ToggleDepartment("HR").ToggleDepartment("Sales").ToggleRating(4)
	if diff := cmp.Diff(application.FilterSpec{Departments: []string{"HR", "Sales"}, Performance: []int{4}}, spec); diff != "" {
		t.Fatalf("toggle on mismatch (-want +got):\n%s", diff)
	}

	spec = spec.ToggleDepartment("HR").ToggleRating(4)
	if diff := cmp.Diff(application.FilterSpec{Departments: []string{"Sales"}, Performance: []int{}}, spec); diff != "" {
		t.Fatalf("toggle off mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterPatchApply(t *testing.T) {
	t.Parallel()

	base := application.FilterSpec{Search: "ann", Departments: []string{"HR"}, Performance: []int{3}}
	search := "bob"
	ratings := []int{1, 2}

	got := application.FilterPatch{Search: &search, Performance: &ratings}.Apply(base)
	want := application.FilterSpec{Search: "bob", Departments: []string{"HR"}, Performance: []int{1, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Apply mismatch (-want +got):\n%s", diff)
	}

	ratings[0] = 5
	if got.Performance[0] != 1 {
		t.Fatalf("patched spec must not alias the patch slice")
	}
	if base.Search != "ann" {
		t.Fatalf("Apply mutated its input")
	}
}

func TestCollectFacets(t *testing.T) {
	t.Parallel()

	roster := []application.Employee{
		testfixtures.NewEmployee(testfixtures.WithDepartment("Sales"), testfixtures.WithPerformance(4)),
		testfixtures.NewEmployee(testfixtures.WithDepartment("Engineering"), testfixtures.WithPerformance(2)),
		testfixtures.NewEmployee(testfixtures.WithDepartment("Sales"), testfixtures.WithPerformance(2)),
	}

	want := application.Facets{Departments: []string{"Engineering", "Sales"}, Ratings: []int{2, 4}}
	if diff := cmp.Diff(want, application.CollectFacets(roster)); diff != "" {
		t.Fatalf("CollectFacets mismatch (-want +got):\n%s", diff)
	}
}
