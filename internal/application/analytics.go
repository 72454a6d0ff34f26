package application

import "time"

// DepartmentAverage is the mean performance rating of one department.
type DepartmentAverage struct {
	Department string
	Average    float64
	Count      int
}

// DailyCount is the number of bookmarks created on one calendar day.
type DailyCount struct {
	Day   time.Time
	Count int
}

// Summary aggregates the roster for the analytics page.
type Summary struct {
	TotalEmployees     int
	BookmarkCount      int
	AverageRating      float64
	Departments        []DepartmentAverage
	RatingDistribution [MaxRating]int
	BookmarkTrend      []DailyCount
}

// trendDays is the length of the bookmark trend window.
const trendDays = 7

// DepartmentAverages groups employees by department in order of first
// appearance and averages their performance.
func DepartmentAverages(employees []Employee) []DepartmentAverage {
	index := make(map[string]int)
	totals := make([]int, 0)
	out := make([]DepartmentAverage, 0)
	for _, e := range employees {
		i, ok := index[e.Department]
		if !ok {
			i = len(out)
			index[e.Department] = i
			out = append(out, DepartmentAverage{Department: e.Department})
			totals = append(totals, 0)
		}
		totals[i] += e.Performance
		out[i].Count++
	}
	for i := range out {
		out[i].Average = float64(totals[i]) / float64(out[i].Count)
	}
	return out
}

// RatingDistribution counts employees per rating; index 0 holds rating 1.
// Out-of-range ratings are ignored.
func RatingDistribution(employees []Employee) [MaxRating]int {
	var counts [MaxRating]int
	for _, e := range employees {
		if e.Performance >= MinRating && e.Performance <= MaxRating {
			counts[e.Performance-MinRating]++
		}
	}
	return counts
}

// BookmarkTrend counts bookmarks per UTC day for the trendDays days ending at now, oldest first.
func BookmarkTrend(bookmarks []Bookmark, now time.Time) []DailyCount {
	today := now.UTC().Truncate(24 * time.Hour)
	out := make([]DailyCount, trendDays)
	for i := range out {
		out[i].Day = today.AddDate(0, 0, i-(trendDays-1))
	}
	for _, b := range bookmarks {
		day := b.Timestamp.UTC().Truncate(24 * time.Hour)
		offset := int(today.Sub(day) / (24 * time.Hour))
		if offset >= 0 && offset < trendDays {
			out[trendDays-1-offset].Count++
		}
	}
	return out
}

// Summarize builds the analytics summary for the given state at now.
func Summarize(state State, now time.Time) Summary {
	summary := Summary{
		TotalEmployees:     len(state.Employees),
		BookmarkCount:      len(state.Bookmarks),
		Departments:        DepartmentAverages(state.Employees),
		RatingDistribution: RatingDistribution(state.Employees),
		BookmarkTrend:      BookmarkTrend(state.Bookmarks, now),
	}
	if len(state.Employees) > 0 {
		total := 0
		for _, e := range state.Employees {
			total += e.Performance
		}
		summary.AverageRating = float64(total) / float64(len(state.Employees))
	}
	return summary
}
