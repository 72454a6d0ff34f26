package persistence

import "time"

// Durable keys. Each key holds a JSON array that is rewritten in full on every save.
const (
	BookmarksKey       = "hr-dashboard-bookmarks"
	CustomEmployeesKey = "hr-dashboard-custom-employees"
)

// Employee is the durable shape of a locally created employee record.
type Employee struct {
	ID                 int                 `json:"id"`
	FirstName          string              `json:"firstName"`
	LastName           string              `json:"lastName"`
	Email              string              `json:"email"`
	Age                int                 `json:"age"`
	Department         string              `json:"department"`
	Performance        int                 `json:"performance"`
	Address            Address             `json:"address"`
	Phone              string              `json:"phone"`
	Bio                string              `json:"bio"`
	PerformanceHistory []PerformanceReview `json:"performanceHistory"`
	AssignedProjects   []string            `json:"assignedProjects,omitempty"`
}

// Address mirrors the postal address stored with an employee.
type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// PerformanceReview is one dated rating entry.
type PerformanceReview struct {
	Date     time.Time `json:"date"`
	Rating   int       `json:"rating"`
	Feedback string    `json:"feedback"`
}

// Bookmark records that an employee was saved to the bookmark list.
type Bookmark struct {
	ID         int64     `json:"id"`
	EmployeeID int       `json:"employeeId"`
	Timestamp  time.Time `json:"timestamp"`
}
