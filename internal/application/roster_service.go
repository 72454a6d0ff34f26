package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultBatchSize is the number of employees requested from the remote directory.
const DefaultBatchSize = 20

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmployeeSource fetches the base employee batch from the remote directory.
// Returned employees carry identity, contact and address data only.
type EmployeeSource interface {
	FetchEmployees(ctx context.Context, limit int) ([]Employee, error)
}

// CustomEmployeeRepository persists employees created through the dashboard.
type CustomEmployeeRepository interface {
	LoadCustomEmployees(ctx context.Context) ([]Employee, error)
	AppendCustomEmployee(ctx context.Context, employee Employee) error
}

// RosterService loads, extends and updates the employee roster held in a Store.
type RosterService struct {
	store     *Store
	source    EmployeeSource
	custom    CustomEmployeeRepository
	enricher  Enricher
	now       func() time.Time
	batchSize int
	logger    *slog.Logger

	// mu serialises read-modify-write updates of roster entries.
	mu sync.Mutex
}

// NewRosterService constructs a RosterService with the default batch size.
func NewRosterService(store *Store, source EmployeeSource, custom CustomEmployeeRepository, enricher Enricher, now func() time.Time) *RosterService {
	return NewRosterServiceWithLogger(store, source, custom, enricher, now, DefaultBatchSize, nil)
}

// NewRosterServiceWithLogger constructs a RosterService with a specified batch size and logger.
func NewRosterServiceWithLogger(store *Store, source EmployeeSource, custom CustomEmployeeRepository, enricher Enricher, now func() time.Time, batchSize int, logger *slog.Logger) *RosterService {
	if now == nil {
		now = time.Now
	}
	if enricher == nil {
		enricher = NewRandomEnricher(uint64(now().UnixNano()))
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &RosterService{
		store:     store,
		source:    source,
		custom:    custom,
		enricher:  enricher,
		now:       now,
		batchSize: batchSize,
		logger:    defaultLogger(logger),
	}
}

func (s *RosterService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RosterService", operation, attrs...)
}

// Load fetches the remote batch, enriches it and installs remote followed by
// locally created employees. Only the most recently started load commits; an
// older load finishing late returns ErrStaleLoad and changes nothing.
func (s *RosterService) Load(ctx context.Context) (view View, err error) {
	if s == nil {
		return View{}, fmt.Errorf("RosterService is nil")
	}
	if s.store == nil || s.source == nil {
		return View{}, fmt.Errorf("roster dependencies not configured")
	}

	generation := s.store.BeginLoad()
	logger := s.loggerWith(ctx, "Load", "generation", generation, "batch_size", s.batchSize)
	start := time.Now()
	defer func() {
		switch {
		case errors.Is(err, ErrStaleLoad):
			logger.WarnContext(ctx, "discarded stale roster load", "error_kind", ErrorKind(err))
		case err != nil:
			logger.ErrorContext(ctx, "roster load failed", "error", err, "error_kind", ErrorKind(err))
		default:
			logger.InfoContext(ctx, "roster loaded", "employees", view.TotalEmployees, "duration", time.Since(start))
		}
	}()

	remote, fetchErr := s.source.FetchEmployees(ctx, s.batchSize)
	if fetchErr != nil {
		var committed bool
		view, committed = s.store.CommitLoad(generation, nil, FetchErrorMessage)
		if !committed {
			return view, ErrStaleLoad
		}
		return view, fmt.Errorf("%w: %w", ErrFetchFailed, fetchErr)
	}

	now := s.now()
	roster := make([]Employee, 0, len(remote))
	for _, e := range remote {
		roster = append(roster, s.enricher.Enrich(e, now))
	}
	roster = append(roster, s.loadCustom(ctx, logger)...)

	view, committed := s.store.CommitLoad(generation, roster, "")
	if !committed {
		return view, ErrStaleLoad
	}
	return view, nil
}

func (s *RosterService) loadCustom(ctx context.Context, logger *slog.Logger) []Employee {
	if s.custom == nil {
		return nil
	}
	custom, err := s.custom.LoadCustomEmployees(ctx)
	if err != nil {
		logger.WarnContext(ctx, "ignoring unreadable custom employees", "error", err)
		return nil
	}
	return custom
}

// CreateEmployee validates input, assigns the next free ID, persists the new
// employee and appends it to the roster.
func (s *RosterService) CreateEmployee(ctx context.Context, input EmployeeInput) (employee Employee, err error) {
	if s == nil {
		return Employee{}, fmt.Errorf("RosterService is nil")
	}
	if s.store == nil {
		return Employee{}, fmt.Errorf("roster store not configured")
	}

	logger := s.loggerWith(ctx, "CreateEmployee", "email", strings.TrimSpace(input.Email))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "employee creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("employee_id", employee.ID).InfoContext(ctx, "employee created")
	}()

	age, department, vErr := validateEmployeeInput(input)
	if vErr != nil {
		return Employee{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	firstName := strings.TrimSpace(input.FirstName)
	employee = Employee{
		ID:          nextEmployeeID(s.store.Snapshot().Employees),
		FirstName:   firstName,
		LastName:    strings.TrimSpace(input.LastName),
		Email:       strings.TrimSpace(input.Email),
		Age:         age,
		Department:  department,
		Performance: s.enricher.Rating(),
		Address: Address{
			Street:     strings.TrimSpace(input.Address),
			City:       strings.TrimSpace(input.City),
			PostalCode: strings.TrimSpace(input.PostalCode),
		},
		Phone: strings.TrimSpace(input.Phone),
		Bio:   firstName + " is a dedicated team member.",
		PerformanceHistory: []PerformanceReview{{
			Date:     now,
			Rating:   s.enricher.Rating(),
			Feedback: "Initial performance review",
		}},
	}

	if s.custom != nil {
		if err = s.custom.AppendCustomEmployee(ctx, employee); err != nil {
			return Employee{}, fmt.Errorf("persist employee: %w", err)
		}
	}

	s.store.Dispatch(AddEmployee{Employee: employee})
	return employee, nil
}

// nextEmployeeID returns one more than the largest ID in employees, or 1.
func nextEmployeeID(employees []Employee) int {
	highest := 0
	for _, e := range employees {
		highest = max(highest, e.ID)
	}
	return highest + 1
}

func validateEmployeeInput(input EmployeeInput) (age int, department string, err error) {
	vErr := &ValidationError{}

	required := []struct {
		field, value, message string
	}{
		{"firstName", input.FirstName, "First name is required"},
		{"lastName", input.LastName, "Last name is required"},
		{"email", input.Email, "Email is required"},
		{"age", input.Age, "Age is required"},
		{"phone", input.Phone, "Phone number is required"},
		{"address", input.Address, "Address is required"},
		{"city", input.City, "City is required"},
		{"postalCode", input.PostalCode, "Postal code is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			vErr.add(r.field, r.message)
		}
	}

	if email := strings.TrimSpace(input.Email); email != "" && !emailPattern.MatchString(email) {
		vErr.add("email", "Invalid email format")
	}

	if raw := strings.TrimSpace(input.Age); raw != "" {
		parsed, convErr := strconv.Atoi(raw)
		switch {
		case convErr != nil:
			vErr.add("age", "Age must be a number")
		case parsed < 18 || parsed > 100:
			vErr.add("age", "Age must be between 18 and 100")
		default:
			age = parsed
		}
	}

	department = strings.TrimSpace(input.Department)
	if department == "" {
		department = Departments[0]
	} else if !IsDepartment(department) {
		vErr.add("department", "Department must be one of "+strings.Join(Departments, ", "))
	}

	if err := vErr.errOrNil(); err != nil {
		return 0, "", err
	}
	return age, department, nil
}

// SubmitFeedback validates a review form and appends it to the employee history.
func (s *RosterService) SubmitFeedback(ctx context.Context, employeeID int, input FeedbackInput) (Employee, error) {
	if s == nil {
		return Employee{}, fmt.Errorf("RosterService is nil")
	}

	vErr := &ValidationError{}
	if input.Rating < MinRating || input.Rating > MaxRating {
		vErr.add("rating", "Please provide a rating.")
	}
	feedback := strings.TrimSpace(input.Feedback)
	if feedback == "" {
		vErr.add("feedback", "Feedback text is required.")
	}
	if err := vErr.errOrNil(); err != nil {
		s.loggerWith(ctx, "SubmitFeedback", "employee_id", employeeID).
			WarnContext(ctx, "feedback rejected", "error", err, "error_kind", ErrorKind(err))
		return Employee{}, err
	}

	return s.AppendReview(ctx, employeeID, PerformanceReview{
		Date:     s.now(),
		Rating:   input.Rating,
		Feedback: feedback,
	})
}

// AppendReview adds review to the end of the employee's history. Unknown IDs
// leave the roster unchanged and return ErrNotFound.
func (s *RosterService) AppendReview(ctx context.Context, employeeID int, review PerformanceReview) (Employee, error) {
	return s.update(ctx, "AppendReview", employeeID, func(e *Employee) {
		e.PerformanceHistory = append(e.PerformanceHistory, review)
	})
}

// AssignProject appends project to the employee's assignments. Repeated
// assignments of the same project are kept.
func (s *RosterService) AssignProject(ctx context.Context, employeeID int, project string) (Employee, error) {
	name := strings.TrimSpace(project)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("project", "Project name is required")
		return Employee{}, vErr
	}
	return s.update(ctx, "AssignProject", employeeID, func(e *Employee) {
		e.AssignedProjects = append(e.AssignedProjects, name)
	}, "project", name)
}

func (s *RosterService) update(ctx context.Context, operation string, employeeID int, mutate func(*Employee), attrs ...any) (employee Employee, err error) {
	if s == nil {
		return Employee{}, fmt.Errorf("RosterService is nil")
	}
	if s.store == nil {
		return Employee{}, fmt.Errorf("roster store not configured")
	}

	logger := s.loggerWith(ctx, operation, append([]any{"employee_id", employeeID}, attrs...)...)
	defer func() {
		switch {
		case errors.Is(err, ErrNotFound):
			logger.WarnContext(ctx, "employee update skipped", "error", err, "error_kind", ErrorKind(err))
		case err != nil:
			logger.ErrorContext(ctx, "employee update failed", "error", err, "error_kind", ErrorKind(err))
		default:
			logger.InfoContext(ctx, "employee updated")
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := findEmployee(s.store.Snapshot().Employees, employeeID)
	if !ok {
		return Employee{}, ErrNotFound
	}
	updated := current.Clone()
	mutate(&updated)
	s.store.Dispatch(ReplaceEmployee{Employee: updated})
	return updated, nil
}

// Employee returns the roster entry with id.
func (s *RosterService) Employee(ctx context.Context, id int) (Employee, error) {
	if s == nil || s.store == nil {
		return Employee{}, fmt.Errorf("RosterService is nil")
	}
	employee, ok := findEmployee(s.store.Snapshot().Employees, id)
	if !ok {
		s.loggerWith(ctx, "Employee", "employee_id", id).
			WarnContext(ctx, "employee lookup missed", "error_kind", ErrorKind(ErrNotFound))
		return Employee{}, ErrNotFound
	}
	return employee, nil
}

func findEmployee(employees []Employee, id int) (Employee, bool) {
	for _, e := range employees {
		if e.ID == id {
			return e, true
		}
	}
	return Employee{}, false
}
