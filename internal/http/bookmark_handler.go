package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/hr-dashboard/internal/application"
)

type bookmarkService interface {
	Add(ctx context.Context, employeeID int) (application.Bookmark, bool, error)
	Remove(ctx context.Context, employeeID int) (bool, error)
	Bookmarks() []application.Bookmark
	BookmarkedEmployees() []application.BookmarkedEmployee
}

// BookmarkHandler manages the saved employee list.
type BookmarkHandler struct {
	service   bookmarkService
	responder responder
	logger    *slog.Logger
}

func NewBookmarkHandler(service bookmarkService, logger *slog.Logger) *BookmarkHandler {
	base := defaultLogger(logger)
	return &BookmarkHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookmarkHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookmarkHandler", operation, attrs...)
}

// List handles GET /bookmarks. Bookmarks whose employee is not on the roster
// are omitted.
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	entries := h.service.BookmarkedEmployees()
	items := make([]bookmarkedEmployeeDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, bookmarkedEmployeeDTO{
			Bookmark: toBookmarkDTO(entry.Bookmark),
			Employee: toEmployeeDTO(entry.Employee, true),
		})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookmarkListResponse{
		Bookmarks: items,
		Total:     len(h.service.Bookmarks()),
	})
}

// Put handles PUT /bookmarks/{employeeId}. It answers 201 when the bookmark
// was created and 200 when it already existed.
func (h *BookmarkHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, err := parseEmployeeID(r, "employeeId")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	bookmark, created, err := h.service.Add(r.Context(), employeeID)
	if err != nil {
		h.log(r.Context(), "Put", "employee_id", employeeID).
			ErrorContext(r.Context(), "bookmark kept in memory but not persisted", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.responder.writeJSON(r.Context(), w, status, toBookmarkDTO(bookmark))
}

// Delete handles DELETE /bookmarks/{employeeId}. Removing an absent bookmark
// succeeds.
func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, err := parseEmployeeID(r, "employeeId")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	if _, err := h.service.Remove(r.Context(), employeeID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type bookmarkDTO struct {
	ID         int64  `json:"id"`
	EmployeeID int    `json:"employee_id"`
	Timestamp  string `json:"timestamp"`
}

func toBookmarkDTO(b application.Bookmark) bookmarkDTO {
	return bookmarkDTO{
		ID:         b.ID,
		EmployeeID: b.EmployeeID,
		Timestamp:  b.Timestamp.UTC().Format(time.RFC3339),
	}
}

type bookmarkedEmployeeDTO struct {
	Bookmark bookmarkDTO `json:"bookmark"`
	Employee employeeDTO `json:"employee"`
}

type bookmarkListResponse struct {
	Bookmarks []bookmarkedEmployeeDTO `json:"bookmarks"`
	Total     int                     `json:"total"`
}
