package application

import (
	"slices"
	"time"
)

// Departments lists the departments an employee can belong to, in display order.
var Departments = []string{"Engineering", "Marketing", "Sales", "HR", "Finance"}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// IsDepartment reports whether name is one of Departments.
func IsDepartment(name string) bool {
	return slices.Contains(Departments, name)
}

// Employee is a roster entry. ID is immutable once assigned.
type Employee struct {
	ID                 int
	FirstName          string
	LastName           string
	Email              string
	Age                int
	Department         string
	Performance        int
	Address            Address
	Phone              string
	Bio                string
	PerformanceHistory []PerformanceReview
	AssignedProjects   []string
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Clone returns a copy that shares no slices with e.
func (e Employee) Clone() Employee {
	e.PerformanceHistory = slices.Clone(e.PerformanceHistory)
	e.AssignedProjects = slices.Clone(e.AssignedProjects)
	return e
}

// Address is a postal address.
type Address struct {
	Street     string
	City       string
	PostalCode string
}

// PerformanceReview is an immutable dated rating.
type PerformanceReview struct {
	Date     time.Time
	Rating   int
	Feedback string
}

// Bookmark marks an employee as saved. At most one bookmark exists per EmployeeID.
type Bookmark struct {
	ID         int64
	EmployeeID int
	Timestamp  time.Time
}

// EmployeeInput carries the raw create form. Age stays textual so that
// non-numeric input can be reported as a field error.
type EmployeeInput struct {
	FirstName  string
	LastName   string
	Email      string
	Age        string
	Department string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

// FeedbackInput carries a submitted performance review.
type FeedbackInput struct {
	Rating   int
	Feedback string
}

// Role is the single authorization attribute carried by a session.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleHR    Role = "hr"
)

// User is a dashboard operator.
type User struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// UserCredentials pairs a user with the stored password hash.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Principal identifies the authenticated operator for a request.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Session is an issued signed token.
type Session struct {
	ID        string
	Token     string
	Principal Principal
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthenticateParams captures the login form.
type AuthenticateParams struct {
	Email    string
	Password string
}
