package accounts

import (
	"errors"
	"testing"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

func strptr(s string) *string { return &s }

func TestValidateBankRef(t *testing.T) {
	tests := []struct {
		name        string
		accountType string
		bankID      *string
		wantErr     bool
	}{
		{name: "bank with bank id", accountType: TypeBank, bankID: strptr("b1"), wantErr: false},
		{name: "bank without bank id", accountType: TypeBank, bankID: nil, wantErr: true},
		{name: "bank with empty bank id", accountType: TypeBank, bankID: strptr(""), wantErr: true},
		{name: "cash without bank id", accountType: TypeCash, bankID: nil, wantErr: false},
		{name: "cash with bank id", accountType: TypeCash, bankID: strptr("b1"), wantErr: true},
		{name: "unknown type", accountType: "WALLET", bankID: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBankRef(tt.accountType, tt.bankID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateBankRef() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}
