package recurring

import (
	"testing"
	"time"
)

func TestExpired(t *testing.T) {
	endJan10 := date(2025, time.January, 10)

	tests := []struct {
		name string
		end  *time.Time
		now  time.Time
		want bool
	}{
		{"no end date never expires", nil, date(2030, time.June, 1), false},
		{"end date in the future", &endJan10, date(2025, time.January, 5), false},
		{"end date is today", &endJan10, endJan10, false},
		{"end date in the past", &endJan10, date(2025, time.January, 20), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &RecurringTransaction{EndDate: tt.end}
			if got := rt.Expired(tt.now); got != tt.want {
				t.Errorf("Expired(%v) with end %v = %v, want %v", tt.now, tt.end, got, tt.want)
			}
		})
	}
}

// A template long overdue when its end date has already passed must expire,
// not post: next_run_date Jan 5, end_date Jan 10, processed on Jan 20.
func TestExpiredOverdueTemplate(t *testing.T) {
	end := date(2025, time.January, 10)
	rt := &RecurringTransaction{
		NextRunDate: date(2025, time.January, 5),
		EndDate:     &end,
	}
	if !rt.Expired(date(2025, time.January, 20)) {
		t.Fatal("overdue template past its end date must report expired")
	}
}
