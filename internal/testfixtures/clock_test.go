package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Peek())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	if updated := clock.Advance(90 * time.Minute); !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.NowFunc()(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestSteppingClock(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
	clock := NewSteppingClock(start, time.Millisecond)

	first := clock.Now()
	second := clock.Now()
	if !first.Equal(start) || !second.Equal(start.Add(time.Millisecond)) {
		t.Fatalf("unexpected readings %v, %v", first, second)
	}
	if !clock.Peek().Equal(start.Add(2 * time.Millisecond)) {
		t.Fatalf("Peek should not advance, got %v", clock.Peek())
	}
}
