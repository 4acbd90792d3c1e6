package budgets

import "testing"

func strptr(s string) *string { return &s }

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *string
	}{
		{"nil stays nil", nil, nil},
		{"empty becomes nil", strptr(""), nil},
		{"whitespace becomes nil", strptr("   "), nil},
		{"value is trimmed", strptr("  groceries cap  "), strptr("groceries cap")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeDescription(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("got %q, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("got nil, want %q", *tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("got %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	tests := []struct {
		name           string
		cap, spent     int64
		wantRemaining  int64
		wantPercentage float64
	}{
		{"untouched", 100000, 0, 100000, 0},
		{"half spent", 100000, 50000, 50000, 50},
		{"exactly spent", 100000, 100000, 0, 100},
		{"overrun goes negative", 100000, 125000, -25000, 125},
		{"zero cap reports zero percent", 0, 40000, -40000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, pct := usage(tt.cap, tt.spent)
			if remaining != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", remaining, tt.wantRemaining)
			}
			if pct != tt.wantPercentage {
				t.Errorf("percentage = %v, want %v", pct, tt.wantPercentage)
			}
		})
	}
}
