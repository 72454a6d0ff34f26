package application

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// reviewInterval separates the synthesized history entries of a fetched employee.
const reviewInterval = 30 * 24 * time.Hour

// historyLength is the number of reviews synthesized for a fetched employee.
const historyLength = 3

// Enricher fills in the attributes the remote directory does not supply.
type Enricher interface {
	// Enrich assigns department, performance, bio and review history to a
	// freshly fetched employee.
	Enrich(employee Employee, now time.Time) Employee
	// Rating returns a rating in [MinRating, MaxRating].
	Rating() int
}

// RandomEnricher draws enrichment values from a seeded PRNG, so a fixed seed
// reproduces the same roster.
type RandomEnricher struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomEnricher returns an enricher seeded with seed.
func NewRandomEnricher(seed uint64) *RandomEnricher {
	return &RandomEnricher{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomEnricher) intN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// Rating returns a uniformly distributed rating.
func (r *RandomEnricher) Rating() int {
	return MinRating + r.intN(MaxRating-MinRating+1)
}

// Enrich implements Enricher.
func (r *RandomEnricher) Enrich(employee Employee, now time.Time) Employee {
	out := employee.Clone()
	out.Department = Departments[r.intN(len(Departments))]
	out.Performance = r.Rating()
	out.Bio = fmt.Sprintf("%s is a dedicated team member with %d years of experience.", employee.FirstName, 1+r.intN(10))

	out.PerformanceHistory = synthesizeHistory(now, r.Rating)
	return out
}

// synthesizeHistory builds historyLength reviews ending at now, newest first.
func synthesizeHistory(now time.Time, rating func() int) []PerformanceReview {
	history := make([]PerformanceReview, 0, historyLength)
	for i := range historyLength {
		date := now.Add(-time.Duration(i) * reviewInterval)
		history = append(history, PerformanceReview{
			Date:     date,
			Rating:   rating(),
			Feedback: "Performance review for " + date.Format("1/2/2006"),
		})
	}
	return history
}

// FixedEnricher assigns the same values to every employee.
type FixedEnricher struct {
	Department  string
	Performance int
	Years       int
}

// Rating returns f.Performance clamped to the rating range.
func (f FixedEnricher) Rating() int {
	return min(max(f.Performance, MinRating), MaxRating)
}

// Enrich implements Enricher.
func (f FixedEnricher) Enrich(employee Employee, now time.Time) Employee {
	out := employee.Clone()
	out.Department = f.Department
	if !IsDepartment(out.Department) {
		out.Department = Departments[0]
	}
	out.Performance = f.Rating()
	years := max(f.Years, 1)
	out.Bio = fmt.Sprintf("%s is a dedicated team member with %d years of experience.", employee.FirstName, years)
	out.PerformanceHistory = synthesizeHistory(now, f.Rating)
	return out
}
