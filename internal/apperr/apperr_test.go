package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantOpaque bool
	}{
		{name: "validation", err: Validation("amount must be positive"), wantStatus: 400},
		{name: "permission", err: Permission("account not owned"), wantStatus: 403},
		{name: "conflict", err: Conflict("budget exists"), wantStatus: 409},
		{name: "not found", err: NotFound("no such transaction"), wantStatus: 404},
		{name: "integrity is opaque", err: Integrity("balance update touched 0 rows"), wantStatus: 500, wantOpaque: true},
		{name: "unknown is opaque", err: errors.New("pq: connection reset"), wantStatus: 500, wantOpaque: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := Status(tt.err)
			if status != tt.wantStatus {
				t.Errorf("Status() = %d, want %d", status, tt.wantStatus)
			}
			if tt.wantOpaque && msg != "internal server error" {
				t.Errorf("internal errors must not leak details, got %q", msg)
			}
			if !tt.wantOpaque && msg != tt.err.Error() {
				t.Errorf("Status() msg = %q, want %q", msg, tt.err.Error())
			}
		})
	}
}

func TestWrappedErrorsKeepKind(t *testing.T) {
	err := fmt.Errorf("create budget: %w", Conflict("duplicate"))
	status, _ := Status(err)
	if status != 409 {
		t.Errorf("wrapped conflict mapped to %d, want 409", status)
	}
}
