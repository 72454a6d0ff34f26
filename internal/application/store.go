package application

import (
	"slices"
	"sync"
)

// State is the complete dashboard state. Values handed out by Store are copies.
type State struct {
	Employees  []Employee
	Bookmarks  []Bookmark
	Filters    FilterSpec
	Page       int
	PageSize   int
	Loading    bool
	Error      string
	Generation uint64
}

func (s State) clone() State {
	s.Employees = cloneEmployees(s.Employees)
	s.Bookmarks = slices.Clone(s.Bookmarks)
	s.Filters = s.Filters.clone()
	return s
}

func cloneEmployees(in []Employee) []Employee {
	if in == nil {
		return nil
	}
	out := make([]Employee, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

type (
	// SetEmployees replaces the roster.
	SetEmployees struct{ Employees []Employee }
	// AddEmployee appends to the roster.
	AddEmployee struct{ Employee Employee }
	// ReplaceEmployee swaps the roster entry with the same ID. Unknown IDs are ignored.
	ReplaceEmployee struct{ Employee Employee }
	// SetBookmarks replaces the bookmark set.
	SetBookmarks struct{ Bookmarks []Bookmark }
	// AddBookmark appends a bookmark unless its employee is already bookmarked.
	AddBookmark struct{ Bookmark Bookmark }
	// RemoveBookmark drops the bookmark for EmployeeID.
	RemoveBookmark struct{ EmployeeID int }
	// SetFilters applies a partial filter update.
	SetFilters struct{ Patch FilterPatch }
	// ToggleDepartment flips one department in the filter set.
	ToggleDepartment struct{ Department string }
	// ToggleRating flips one rating in the filter set.
	ToggleRating struct{ Rating int }
	// SetPage moves to a 1-based page.
	SetPage struct{ Page int }
	// SetPageSize changes the page length and returns to the first page.
	SetPageSize struct{ PageSize int }
	// SetLoading toggles the loading flag.
	SetLoading struct{ Loading bool }
	// SetError records a user-facing error message; empty clears it.
	SetError struct{ Message string }
	// BeginLoad starts a roster load under a new generation.
	BeginLoad struct{}
	// CommitLoad finishes the load started under Generation. Results from an
	// older generation are dropped.
	CommitLoad struct {
		Generation uint64
		Employees  []Employee
		Error      string
	}
)

func (SetEmployees) isAction()     {}
func (AddEmployee) isAction()      {}
func (ReplaceEmployee) isAction()  {}
func (SetBookmarks) isAction()     {}
func (AddBookmark) isAction()      {}
func (RemoveBookmark) isAction()   {}
func (SetFilters) isAction()       {}
func (ToggleDepartment) isAction() {}
func (ToggleRating) isAction()     {}
func (SetPage) isAction()          {}
func (SetPageSize) isAction()      {}
func (SetLoading) isAction()       {}
func (SetError) isAction()         {}
func (BeginLoad) isAction()        {}
func (CommitLoad) isAction()       {}

// Reduce returns the state that results from applying action to state.
// It never mutates its input.
func Reduce(state State, action Action) State {
	next := state.clone()
	if next.PageSize <= 0 {
		next.PageSize = DefaultPageSize
	}
	if next.Page < 1 {
		next.Page = 1
	}

	switch a := action.(type) {
	case SetEmployees:
		next.Employees = cloneEmployees(a.Employees)
	case AddEmployee:
		next.Employees = append(next.Employees, a.Employee.Clone())
	case ReplaceEmployee:
		for i := range next.Employees {
			if next.Employees[i].ID == a.Employee.ID {
				next.Employees[i] = a.Employee.Clone()
				break
			}
		}
	case SetBookmarks:
		next.Bookmarks = dedupeBookmarks(a.Bookmarks)
	case AddBookmark:
		if !containsBookmark(next.Bookmarks, a.Bookmark.EmployeeID) {
			next.Bookmarks = append(next.Bookmarks, a.Bookmark)
		}
	case RemoveBookmark:
		next.Bookmarks = slices.DeleteFunc(next.Bookmarks, func(b Bookmark) bool {
			return b.EmployeeID == a.EmployeeID
		})
	case SetFilters:
		next = withFilters(next, a.Patch.Apply(next.Filters))
	case ToggleDepartment:
		next = withFilters(next, next.Filters.ToggleDepartment(a.Department))
	case ToggleRating:
		next = withFilters(next, next.Filters.ToggleRating(a.Rating))
	case SetPage:
		next.Page = min(max(a.Page, 1), MaxPage)
	case SetPageSize:
		if a.PageSize > 0 && a.PageSize != next.PageSize {
			next.PageSize = a.PageSize
			next.Page = 1
		}
	case SetLoading:
		next.Loading = a.Loading
	case SetError:
		next.Error = a.Message
	case BeginLoad:
		next.Generation++
		next.Loading = true
		next.Error = ""
	case CommitLoad:
		if a.Generation != next.Generation {
			return state.clone()
		}
		next.Loading = false
		next.Error = a.Error
		if a.Error != "" {
			next.Employees = []Employee{}
		} else {
			next.Employees = cloneEmployees(a.Employees)
		}
	}
	return next
}

// withFilters installs spec and returns to the first page when it changed.
func withFilters(state State, spec FilterSpec) State {
	if !state.Filters.Equal(spec) {
		state.Page = 1
	}
	state.Filters = spec
	return state
}

func containsBookmark(bookmarks []Bookmark, employeeID int) bool {
	return slices.ContainsFunc(bookmarks, func(b Bookmark) bool { return b.EmployeeID == employeeID })
}

func dedupeBookmarks(in []Bookmark) []Bookmark {
	out := make([]Bookmark, 0, len(in))
	for _, b := range in {
		if !containsBookmark(out, b.EmployeeID) {
			out = append(out, b)
		}
	}
	return out
}

// View is the render-ready projection of State.
type View struct {
	Employees      []Employee
	Bookmarked     map[int]bool
	Filters        FilterSpec
	Page           int
	PageSize       int
	TotalPages     int
	TotalMatches   int
	TotalEmployees int
	BookmarkCount  int
	Loading        bool
	Error          string
}

// Project derives the View for state.
func Project(state State) View {
	pageSize := state.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := max(state.Page, 1)

	matches := Filter(state.Employees, state.Filters)
	bookmarked := make(map[int]bool, len(state.Bookmarks))
	for _, b := range state.Bookmarks {
		bookmarked[b.EmployeeID] = true
	}

	return View{
		Employees:      cloneEmployees(Paginate(matches, pageSize, page)),
		Bookmarked:     bookmarked,
		Filters:        state.Filters.clone(),
		Page:           page,
		PageSize:       pageSize,
		TotalPages:     TotalPages(len(matches), pageSize),
		TotalMatches:   len(matches),
		TotalEmployees: len(state.Employees),
		BookmarkCount:  len(state.Bookmarks),
		Loading:        state.Loading,
		Error:          state.Error,
	}
}

// Store owns the dashboard state. Dispatch is the only way to change it and
// calls are serialised, so concurrent callers observe a single writer.
type Store struct {
	mu        sync.Mutex
	state     State
	observers []observer
	nextID    int
}

type observer struct {
	id int
	fn func(View)
}

// NewStore returns an empty store using pageSize, or DefaultPageSize when pageSize <= 0.
func NewStore(pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{state: State{
		Employees: []Employee{},
		Bookmarks: []Bookmark{},
		Page:      1,
		PageSize:  pageSize,
	}}
}

// Dispatch applies action and returns the resulting view. Observers are
// notified after the state lock is released.
func (s *Store) Dispatch(action Action) View {
	view, observers := s.reduce(action)
	notify(observers, view)
	return view
}

func (s *Store) reduce(action Action) (View, []observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, action)
	return s.projectLocked()
}

func (s *Store) projectLocked() (View, []observer) {
	return Project(s.state), slices.Clone(s.observers)
}

func notify(observers []observer, view View) {
	for _, o := range observers {
		o.fn(view)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// View returns the current projection without changing state.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Project(s.state)
}

// Subscribe registers fn to receive every view produced by a state change.
// The returned function removes the registration.
func (s *Store) Subscribe(fn func(View)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(o observer) bool { return o.id == id })
	}
}

// BeginLoad starts a roster load and returns its generation.
func (s *Store) BeginLoad() uint64 {
	generation, view, observers := s.beginLoad()
	notify(observers, view)
	return generation
}

func (s *Store) beginLoad() (uint64, View, []observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, BeginLoad{})
	view, observers := s.projectLocked()
	return s.state.Generation, view, observers
}

// CommitLoad finishes the load for generation. It reports false, leaving the
// state untouched, when a newer load has started since.
func (s *Store) CommitLoad(generation uint64, employees []Employee, errMessage string) (View, bool) {
	view, observers, committed := s.commitLoad(generation, employees, errMessage)
	if committed {
		notify(observers, view)
	}
	return view, committed
}

func (s *Store) commitLoad(generation uint64, employees []Employee, errMessage string) (View, []observer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.state.Generation {
		return Project(s.state), nil, false
	}
	s.state = Reduce(s.state, CommitLoad{Generation: generation, Employees: employees, Error: errMessage})
	view, observers := s.projectLocked()
	return view, observers, true
}
