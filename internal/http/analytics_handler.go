package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/example/hr-dashboard/internal/application"
)

type stateSnapshotter interface {
	Snapshot() application.State
}

// AnalyticsHandler serves roster aggregates.
type AnalyticsHandler struct {
	store     stateSnapshotter
	now       func() time.Time
	responder responder
}

func NewAnalyticsHandler(store stateSnapshotter, now func() time.Time, logger *slog.Logger) *AnalyticsHandler {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsHandler{store: store, now: now, responder: newResponder(defaultLogger(logger))}
}

// Summary handles GET /analytics.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	summary := application.Summarize(h.store.Snapshot(), h.now())
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSummaryDTO(summary))
}

type departmentAverageDTO struct {
	Department string  `json:"department"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
}

type dailyCountDTO struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type summaryDTO struct {
	TotalEmployees     int                    `json:"total_employees"`
	BookmarkCount      int                    `json:"bookmark_count"`
	AverageRating      float64                `json:"average_rating"`
	Departments        []departmentAverageDTO `json:"departments"`
	RatingDistribution map[int]int            `json:"rating_distribution"`
	BookmarkTrend      []dailyCountDTO        `json:"bookmark_trend"`
}

func toSummaryDTO(s application.Summary) summaryDTO {
	departments := make([]departmentAverageDTO, 0, len(s.Departments))
	for _, d := range s.Departments {
		departments = append(departments, departmentAverageDTO(d))
	}

	distribution := make(map[int]int, application.MaxRating)
	for i, count := range s.RatingDistribution {
		distribution[i+application.MinRating] = count
	}

	trend := make([]dailyCountDTO, 0, len(s.BookmarkTrend))
	for _, day := range s.BookmarkTrend {
		trend = append(trend, dailyCountDTO{Day: day.Day.Format(time.DateOnly), Count: day.Count})
	}

	return summaryDTO{
		TotalEmployees:     s.TotalEmployees,
		BookmarkCount:      s.BookmarkCount,
		AverageRating:      s.AverageRating,
		Departments:        departments,
		RatingDistribution: distribution,
		BookmarkTrend:      trend,
	}
}
