package money

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{name: "whole number", in: "1000", want: 100000},
		{name: "two decimals", in: "150000.50", want: 15000050},
		{name: "one decimal", in: "12.5", want: 1250},
		{name: "zero", in: "0", want: 0},
		{name: "leading dot", in: ".75", want: 75},
		{name: "negative", in: "-200", want: -20000},
		{name: "three decimals", in: "1.234", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "letters", in: "12a.00", wantErr: true},
		{name: "lone dot", in: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePositiveAmount(t *testing.T) {
	if _, err := ParsePositiveAmount("0"); err == nil {
		t.Error("ParsePositiveAmount(0) should fail")
	}
	if _, err := ParsePositiveAmount("-5"); err == nil {
		t.Error("ParsePositiveAmount(-5) should fail")
	}
	got, err := ParsePositiveAmount("200.00")
	if err != nil || got != 20000 {
		t.Errorf("ParsePositiveAmount(200.00) = %d, %v", got, err)
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{15000050, "150000.50"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-1250, "-12.50"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.in); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
