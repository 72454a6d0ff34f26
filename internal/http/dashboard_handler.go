package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/hr-dashboard/internal/application"
)

type dashboardStore interface {
	Dispatch(action application.Action) application.View
	View() application.View
	Snapshot() application.State
}

type rosterLoader interface {
	Load(ctx context.Context) (application.View, error)
}

// DashboardHandler serves the paginated roster view and its filter controls.
type DashboardHandler struct {
	store     dashboardStore
	roster    rosterLoader
	responder responder
	logger    *slog.Logger
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(store dashboardStore, roster rosterLoader, logger *slog.Logger) *DashboardHandler {
	base := defaultLogger(logger)
	return &DashboardHandler{store: store, roster: roster, responder: newResponder(base), logger: base}
}

func (h *DashboardHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DashboardHandler", operation, attrs...)
}

func (h *DashboardHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.store == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// Show handles GET /dashboard. An optional page query parameter moves the
// current page before the view is rendered.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	view := h.store.View()
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			h.log(r.Context(), "Show", "page", raw).WarnContext(r.Context(), "invalid page requested")
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPage)
			return
		}
		view = h.store.Dispatch(application.SetPage{Page: page})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toViewDTO(view))
}

// UpdateFilters handles PATCH /filters. Omitted fields keep their value.
func (h *DashboardHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req filterPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "UpdateFilters", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode filter patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	view := h.store.Dispatch(application.SetFilters{Patch: req.toPatch()})
	h.log(r.Context(), "UpdateFilters", "matches", view.TotalMatches).InfoContext(r.Context(), "filters updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toViewDTO(view))
}

// Toggle handles POST /filters/toggle. Exactly one of department or rating
// must be supplied.
func (h *DashboardHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Toggle", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode toggle request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	var action application.Action
	switch {
	case req.Department != nil && req.Rating != nil, req.Department == nil && req.Rating == nil:
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{FieldErrors: map[string]string{
			"toggle": "Provide either a department or a rating.",
		}})
		return
	case req.Department != nil:
		if !application.IsDepartment(*req.Department) {
			h.responder.handleServiceError(r.Context(), w, &application.ValidationError{FieldErrors: map[string]string{
				"department": "Unknown department.",
			}})
			return
		}
		action = application.ToggleDepartment{Department: *req.Department}
	default:
		if *req.Rating < application.MinRating || *req.Rating > application.MaxRating {
			h.responder.handleServiceError(r.Context(), w, &application.ValidationError{FieldErrors: map[string]string{
				"rating": "Rating must be between 1 and 5.",
			}})
			return
		}
		action = application.ToggleRating{Rating: *req.Rating}
	}

	view := h.store.Dispatch(action)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toViewDTO(view))
}

// Facets handles GET /facets.
func (h *DashboardHandler) Facets(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	facets := application.CollectFacets(h.store.Snapshot().Employees)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, facetsResponse{
		Departments:    facets.Departments,
		Ratings:        facets.Ratings,
		AllDepartments: application.Departments,
	})
}

// Reload handles POST /roster/reload. A load superseded by a newer one still
// answers with the current view.
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	view, err := h.roster.Load(r.Context())
	switch {
	case errors.Is(err, application.ErrStaleLoad):
		h.log(r.Context(), "Reload").InfoContext(r.Context(), "reload superseded")
		view = h.store.View()
	case err != nil:
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toViewDTO(view))
}

type filterPatchRequest struct {
	Search      *string   `json:"search"`
	Departments *[]string `json:"departments"`
	Performance *[]int    `json:"performance"`
}

func (r filterPatchRequest) toPatch() application.FilterPatch {
	return application.FilterPatch{
		Search:      r.Search,
		Departments: r.Departments,
		Performance: r.Performance,
	}
}

type toggleRequest struct {
	Department *string `json:"department"`
	Rating     *int    `json:"rating"`
}

type filtersDTO struct {
	Search      string   `json:"search"`
	Departments []string `json:"departments"`
	Performance []int    `json:"performance"`
}

type viewDTO struct {
	Employees      []employeeDTO `json:"employees"`
	Filters        filtersDTO    `json:"filters"`
	Page           int           `json:"page"`
	PageSize       int           `json:"page_size"`
	TotalPages     int           `json:"total_pages"`
	TotalMatches   int           `json:"total_matches"`
	TotalEmployees int           `json:"total_employees"`
	BookmarkCount  int           `json:"bookmark_count"`
	Loading        bool          `json:"loading"`
	Error          string        `json:"error,omitempty"`
}

func toViewDTO(view application.View) viewDTO {
	employees := make([]employeeDTO, 0, len(view.Employees))
	for _, e := range view.Employees {
		employees = append(employees, toEmployeeDTO(e, view.Bookmarked[e.ID]))
	}
	departments := view.Filters.Departments
	if departments == nil {
		departments = []string{}
	}
	performance := view.Filters.Performance
	if performance == nil {
		performance = []int{}
	}
	return viewDTO{
		Employees: employees,
		Filters: filtersDTO{
			Search:      view.Filters.Search,
			Departments: departments,
			Performance: performance,
		},
		Page:           view.Page,
		PageSize:       view.PageSize,
		TotalPages:     view.TotalPages,
		TotalMatches:   view.TotalMatches,
		TotalEmployees: view.TotalEmployees,
		BookmarkCount:  view.BookmarkCount,
		Loading:        view.Loading,
		Error:          view.Error,
	}
}

type facetsResponse struct {
	Departments    []string `json:"departments"`
	Ratings        []int    `json:"ratings"`
	AllDepartments []string `json:"all_departments"`
}
