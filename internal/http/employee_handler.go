package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/hr-dashboard/internal/application"
)

type rosterService interface {
	CreateEmployee(ctx context.Context, input application.EmployeeInput) (application.Employee, error)
	Employee(ctx context.Context, id int) (application.Employee, error)
	SubmitFeedback(ctx context.Context, employeeID int, input application.FeedbackInput) (application.Employee, error)
	AssignProject(ctx context.Context, employeeID int, project string) (application.Employee, error)
}

type bookmarkChecker interface {
	IsBookmarked(employeeID int) bool
}

// EmployeeHandler exposes individual roster entries.
type EmployeeHandler struct {
	roster    rosterService
	bookmarks bookmarkChecker
	responder responder
	logger    *slog.Logger
}

// NewEmployeeHandler constructs an EmployeeHandler. bookmarks may be nil, in
// which case every employee is reported as not bookmarked.
func NewEmployeeHandler(roster rosterService, bookmarks bookmarkChecker, logger *slog.Logger) *EmployeeHandler {
	base := defaultLogger(logger)
	return &EmployeeHandler{roster: roster, bookmarks: bookmarks, responder: newResponder(base), logger: base}
}

func (h *EmployeeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EmployeeHandler", operation, attrs...)
}

func (h *EmployeeHandler) isBookmarked(id int) bool {
	return h.bookmarks != nil && h.bookmarks.IsBookmarked(id)
}

// Create handles POST /employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode employee", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	employee, err := h.roster.CreateEmployee(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEmployeeDTO(employee, h.isBookmarked(employee.ID)))
}

// Get handles GET /employees/{id}.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := parseEmployeeID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	employee, err := h.roster.Employee(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEmployeeDTO(employee, h.isBookmarked(id)))
}

// SubmitReview handles POST /employees/{id}/reviews.
func (h *EmployeeHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := parseEmployeeID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "SubmitReview", "employee_id", id).ErrorContext(r.Context(), "failed to decode review", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	employee, err := h.roster.SubmitFeedback(r.Context(), id, application.FeedbackInput{
		Rating:   req.Rating,
		Feedback: req.Feedback,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEmployeeDTO(employee, h.isBookmarked(id)))
}

// AssignProject handles POST /employees/{id}/projects.
func (h *EmployeeHandler) AssignProject(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := parseEmployeeID(r, "id")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "AssignProject", "employee_id", id).ErrorContext(r.Context(), "failed to decode project", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	employee, err := h.roster.AssignProject(r.Context(), id, req.Project)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEmployeeDTO(employee, h.isBookmarked(id)))
}

// flexibleString accepts a JSON string or number and keeps its textual form.
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleString(n.String())
	return nil
}

type createEmployeeRequest struct {
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Email      string         `json:"email"`
	Age        flexibleString `json:"age"`
	Department string         `json:"department"`
	Phone      string         `json:"phone"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	PostalCode string         `json:"postal_code"`
}

func (r createEmployeeRequest) toInput() application.EmployeeInput {
	return application.EmployeeInput{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Age:        string(r.Age),
		Department: r.Department,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		PostalCode: r.PostalCode,
	}
}

type reviewRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

type projectRequest struct {
	Project string `json:"project"`
}

type addressDTO struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type reviewDTO struct {
	Date     string `json:"date"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

type employeeDTO struct {
	ID                 int         `json:"id"`
	FirstName          string      `json:"first_name"`
	LastName           string      `json:"last_name"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Age                int         `json:"age"`
	Department         string      `json:"department"`
	Performance        int         `json:"performance"`
	Stars              string      `json:"stars"`
	Address            addressDTO  `json:"address"`
	Phone              string      `json:"phone"`
	Bio                string      `json:"bio"`
	PerformanceHistory []reviewDTO `json:"performance_history"`
	AssignedProjects   []string    `json:"assigned_projects"`
	Bookmarked         bool        `json:"bookmarked"`
}

func toEmployeeDTO(e application.Employee, bookmarked bool) employeeDTO {
	history := make([]reviewDTO, 0, len(e.PerformanceHistory))
	for _, review := range e.PerformanceHistory {
		history = append(history, reviewDTO{
			Date:     review.Date.UTC().Format(time.RFC3339),
			Rating:   review.Rating,
			Feedback: review.Feedback,
		})
	}
	projects := append([]string{}, e.AssignedProjects...)

	return employeeDTO{
		ID:          e.ID,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Name:        e.FullName(),
		Email:       e.Email,
		Age:         e.Age,
		Department:  e.Department,
		Performance: e.Performance,
		Stars:       stars(e.Performance),
		Address: addressDTO{
			Street:     e.Address.Street,
			City:       e.Address.City,
			PostalCode: e.Address.PostalCode,
		},
		Phone:              e.Phone,
		Bio:                e.Bio,
		PerformanceHistory: history,
		AssignedProjects:   projects,
		Bookmarked:         bookmarked,
	}
}

// stars renders a rating as filled and empty stars, for example "★★★☆☆".
func stars(rating int) string {
	filled := max(min(rating, application.MaxRating), 0)
	var b bytes.Buffer
	for i := range application.MaxRating {
		if i < filled {
			b.WriteString("★")
		} else {
			b.WriteString("☆")
		}
	}
	return b.String()
}
