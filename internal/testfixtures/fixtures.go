package testfixtures

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/example/hr-dashboard/internal/application"
	"github.com/example/hr-dashboard/internal/persistence"
)

var employeeCounter int64

var referenceTime = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Employee fixtures -----------------------------

// EmployeeOption configures a generated employee.
type EmployeeOption func(*application.Employee)

// NewEmployee returns a fully populated roster entry. IDs start well above the
// ranges tests use explicitly, so override them with WithEmployeeID when the
// value matters.
func NewEmployee(opts ...EmployeeOption) application.Employee {
	idx := atomic.AddInt64(&employeeCounter, 1)
	id := int(1000 + idx)
	employee := application.Employee{
		ID:          id,
		FirstName:   fmt.Sprintf("First%d", id),
		LastName:    fmt.Sprintf("Last%d", id),
		Email:       fmt.Sprintf("employee%d@example.com", id),
		Age:         30,
		Department:  "Engineering",
		Performance: 3,
		Address: application.Address{
			Street:     fmt.Sprintf("%d Main Street", id),
			City:       "Springfield",
			PostalCode: "12345",
		},
		Phone: "+1 555 0100",
		Bio:   fmt.Sprintf("First%d is a dedicated team member.", id),
		PerformanceHistory: []application.PerformanceReview{{
			Date:     referenceTime,
			Rating:   3,
			Feedback: "Initial performance review",
		}},
	}
	for _, opt := range opts {
		opt(&employee)
	}
	return employee
}

// WithEmployeeID overrides the generated identifier.
func WithEmployeeID(id int) EmployeeOption {
	return func(e *application.Employee) { e.ID = id }
}

// WithName overrides first and last name.
func WithName(first, last string) EmployeeOption {
	return func(e *application.Employee) {
		e.FirstName = first
		e.LastName = last
	}
}

// WithEmail overrides the email address.
func WithEmail(email string) EmployeeOption {
	return func(e *application.Employee) { e.Email = email }
}

// WithDepartment overrides the department.
func WithDepartment(department string) EmployeeOption {
	return func(e *application.Employee) { e.Department = department }
}

// WithPerformance overrides the current rating.
func WithPerformance(rating int) EmployeeOption {
	return func(e *application.Employee) { e.Performance = rating }
}

// WithProjects sets the assigned projects.
func WithProjects(projects ...string) EmployeeOption {
	return func(e *application.Employee) { e.AssignedProjects = append([]string(nil), projects...) }
}

// RemoteEmployee returns an employee carrying only the fields the remote
// directory supplies.
func RemoteEmployee(id int, first, last string) application.Employee {
	return application.Employee{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s@example.com", first, last),
		Age:       25 + id%40,
		Phone:     "+1 555 " + strconv.Itoa(1000+id),
		Address: application.Address{
			Street:     fmt.Sprintf("%d Oak Avenue", id),
			City:       "Riverside",
			PostalCode: "54321",
		},
	}
}

// Roster returns n employees with IDs 1..n spread across departments and ratings.
func Roster(n int) []application.Employee {
	out := make([]application.Employee, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, NewEmployee(
			WithEmployeeID(i),
			WithName(fmt.Sprintf("Person%d", i), "Sample"),
			WithEmail(fmt.Sprintf("person%d@example.com", i)),
			WithDepartment(application.Departments[(i-1)%len(application.Departments)]),
			WithPerformance(1+(i-1)%application.MaxRating),
		))
	}
	return out
}

// ValidEmployeeInput returns a create form that passes validation.
func ValidEmployeeInput(mutators ...func(*application.EmployeeInput)) application.EmployeeInput {
	input := application.EmployeeInput{
		FirstName:  "Jane",
		LastName:   "Doe",
		Email:      "jane.doe@example.com",
		Age:        "34",
		Department: "Marketing",
		Phone:      "+1 555 0199",
		Address:    "1 Market Street",
		City:       "Springfield",
		PostalCode: "12345",
	}
	for _, m := range mutators {
		m(&input)
	}
	return input
}

// ----------------------------- Persistence fixtures -----------------------------

// PersistedBookmark returns a stored bookmark created offset after ReferenceTime.
func PersistedBookmark(id int64, employeeID int, offset time.Duration) persistence.Bookmark {
	return persistence.Bookmark{
		ID:         id,
		EmployeeID: employeeID,
		Timestamp:  referenceTime.Add(offset),
	}
}

// PersistedEmployee returns the stored form of a dashboard-created employee.
func PersistedEmployee(id int, first, last string) persistence.Employee {
	return persistence.Employee{
		ID:          id,
		FirstName:   first,
		LastName:    last,
		Email:       fmt.Sprintf("%s@example.com", first),
		Age:         40,
		Department:  "Finance",
		Performance: 4,
		Address: persistence.Address{
			Address:    "9 Elm Street",
			City:       "Shelbyville",
			PostalCode: "67890",
		},
		Phone: "+1 555 0142",
		Bio:   first + " is a dedicated team member.",
		PerformanceHistory: []persistence.PerformanceReview{{
			Date:     referenceTime,
			Rating:   4,
			Feedback: "Initial performance review",
		}},
	}
}
