package transactions

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339", "2025-04-01T09:30:00Z", time.Date(2025, time.April, 1, 9, 30, 0, 0, time.UTC), false},
		{"bare date", "2025-04-01", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), false},
		{"garbage", "01/04/2025", time.Time{}, true},
		{"partial", "2025-04", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDateEmptyDefaultsToNow(t *testing.T) {
	before := time.Now().UTC()
	got, err := parseDate("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Before(before) || got.After(time.Now().UTC()) {
		t.Errorf("empty date = %v, expected roughly now", got)
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		sortBy, sortOrder string
		want              string
	}{
		{"amount", "asc", "t.amount ASC, t.id ASC"},
		{"created_at", "desc", "t.created_at DESC, t.id DESC"},
		{"transaction_date", "", "t.transaction_date DESC, t.id DESC"},
		{"user_id; DROP TABLE transactions", "asc", "t.transaction_date ASC, t.id ASC"},
	}
	for _, tt := range tests {
		if got := orderClause(tt.sortBy, tt.sortOrder); got != tt.want {
			t.Errorf("orderClause(%q, %q) = %q, want %q", tt.sortBy, tt.sortOrder, got, tt.want)
		}
	}
}
