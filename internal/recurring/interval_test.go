package recurring

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStep(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		interval string
		want     time.Time
	}{
		{"daily", date(2025, time.March, 10), IntervalDaily, date(2025, time.March, 11)},
		{"daily across month end", date(2025, time.January, 31), IntervalDaily, date(2025, time.February, 1)},
		{"weekly", date(2025, time.March, 10), IntervalWeekly, date(2025, time.March, 17)},
		{"monthly mid-month", date(2025, time.January, 15), IntervalMonthly, date(2025, time.February, 15)},
		{"monthly across year end", date(2024, time.December, 15), IntervalMonthly, date(2025, time.January, 15)},
		{"yearly", date(2025, time.June, 1), IntervalYearly, date(2026, time.June, 1)},
		{"yearly from leap day", date(2024, time.February, 29), IntervalYearly, date(2025, time.March, 1)},
		{"unknown interval is a no-op", date(2025, time.March, 10), "FORTNIGHTLY", date(2025, time.March, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := step(tt.from, tt.interval); !got.Equal(tt.want) {
				t.Errorf("step(%v, %s) = %v, want %v", tt.from, tt.interval, got, tt.want)
			}
		})
	}
}

// Jan 31 + one month normalizes forward instead of erroring; subsequent
// steps continue from wherever the previous one landed.
func TestStepMonthlyNormalization(t *testing.T) {
	got := step(date(2025, time.January, 31), IntervalMonthly)
	want := date(2025, time.March, 3)
	if !got.Equal(want) {
		t.Fatalf("step(Jan 31, monthly) = %v, want %v", got, want)
	}
}

func TestStepMonthlyChain(t *testing.T) {
	cur := date(2025, time.January, 15)
	wants := []time.Time{
		date(2025, time.February, 15),
		date(2025, time.March, 15),
		date(2025, time.April, 15),
	}
	for i, want := range wants {
		cur = step(cur, IntervalMonthly)
		if !cur.Equal(want) {
			t.Fatalf("step %d = %v, want %v", i+1, cur, want)
		}
	}
}
