package application

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPageSize matches the three-by-three dashboard grid.
const DefaultPageSize = 9

// MaxPage bounds the page number kept in State.
const MaxPage = 1 << 20

// FilterSpec narrows the roster. Empty Departments or Performance sets do not
// restrict; an empty Search matches every employee.
type FilterSpec struct {
	Search      string
	Departments []string
	Performance []int
}

// IsZero reports whether the spec matches everything.
func (f FilterSpec) IsZero() bool {
	return f.Search == "" && len(f.Departments) == 0 && len(f.Performance) == 0
}

// Equal compares specs including set order.
func (f FilterSpec) Equal(other FilterSpec) bool {
	return f.Search == other.Search &&
		slices.Equal(f.Departments, other.Departments) &&
		slices.Equal(f.Performance, other.Performance)
}

func (f FilterSpec) clone() FilterSpec {
	f.Departments = slices.Clone(f.Departments)
	f.Performance = slices.Clone(f.Performance)
	return f
}

// FilterPatch is a partial FilterSpec update; nil fields are left unchanged.
type FilterPatch struct {
	Search      *string
	Departments *[]string
	Performance *[]int
}

// Apply returns spec with the non-nil fields of p replaced.
func (p FilterPatch) Apply(spec FilterSpec) FilterSpec {
	next := spec.clone()
	if p.Search != nil {
		next.Search = *p.Search
	}
	if p.Departments != nil {
		next.Departments = slices.Clone(*p.Departments)
	}
	if p.Performance != nil {
		next.Performance = slices.Clone(*p.Performance)
	}
	return next
}

// ToggleDepartment adds name to the department set, or removes it when present.
func (f FilterSpec) ToggleDepartment(name string) FilterSpec {
	next := f.clone()
	if i := slices.Index(next.Departments, name); i >= 0 {
		next.Departments = slices.Delete(next.Departments, i, i+1)
	} else {
		next.Departments = append(next.Departments, name)
	}
	return next
}

// ToggleRating adds rating to the performance set, or removes it when present.
func (f FilterSpec) ToggleRating(rating int) FilterSpec {
	next := f.clone()
	if i := slices.Index(next.Performance, rating); i >= 0 {
		next.Performance = slices.Delete(next.Performance, i, i+1)
	} else {
		next.Performance = append(next.Performance, rating)
	}
	return next
}

// matcher holds a lowercased search needle. A cases.Caser is stateful, so
// each matcher owns its own.
type matcher struct {
	lower  cases.Caser
	needle string
	spec   FilterSpec
}

func newMatcher(spec FilterSpec) *matcher {
	m := &matcher{lower: cases.Lower(language.Und), spec: spec}
	m.needle = m.lower.String(spec.Search)
	return m
}

func (m *matcher) matches(e Employee) bool {
	if len(m.spec.Departments) > 0 && !slices.Contains(m.spec.Departments, e.Department) {
		return false
	}
	if len(m.spec.Performance) > 0 && !slices.Contains(m.spec.Performance, e.Performance) {
		return false
	}
	if m.needle == "" {
		return true
	}
	for _, field := range []string{e.FirstName, e.LastName, e.Email, e.Department} {
		if strings.Contains(m.lower.String(field), m.needle) {
			return true
		}
	}
	return false
}

// Matches reports whether e satisfies every condition in spec.
func Matches(e Employee, spec FilterSpec) bool {
	return newMatcher(spec).matches(e)
}

// Filter returns the employees satisfying spec in their original order.
func Filter(employees []Employee, spec FilterSpec) []Employee {
	m := newMatcher(spec)
	out := make([]Employee, 0, len(employees))
	for _, e := range employees {
		if m.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// TotalPages returns ceil(total/pageSize), never less than one.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the 1-based page of items. Pages past the end are empty;
// pages below one are treated as the first page.
func Paginate[T any](items []T, pageSize, page int) []T {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if page-1 >= TotalPages(len(items), pageSize) {
		return []T{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	return items[start:end]
}

// Facets lists the filter values present in a roster.
type Facets struct {
	Departments []string
	Ratings     []int
}

// CollectFacets returns the sorted distinct departments and ratings in employees.
func CollectFacets(employees []Employee) Facets {
	departments := make([]string, 0, len(Departments))
	ratings := make([]int, 0, MaxRating)
	for _, e := range employees {
		if e.Department != "" && !slices.Contains(departments, e.Department) {
			departments = append(departments, e.Department)
		}
		if !slices.Contains(ratings, e.Performance) {
			ratings = append(ratings, e.Performance)
		}
	}
	slices.Sort(departments)
	slices.Sort(ratings)
	return Facets{Departments: departments, Ratings: ratings}
}
