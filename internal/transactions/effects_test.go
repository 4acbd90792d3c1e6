package transactions

import (
	"errors"
	"testing"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

func strptr(s string) *string { return &s }

func TestBalanceEffects(t *testing.T) {
	src := strptr("acc-src")
	dst := strptr("acc-dst")

	tests := []struct {
		name    string
		txType  string
		amount  int64
		source  *string
		dest    *string
		want    []BalanceEffect
		wantErr bool
	}{
		{
			name: "income credits destination", txType: TypeIncome, amount: 500, dest: dst,
			want: []BalanceEffect{{AccountID: "acc-dst", Delta: 500}},
		},
		{
			name: "expense debits source", txType: TypeExpense, amount: 200, source: src,
			want: []BalanceEffect{{AccountID: "acc-src", Delta: -200}},
		},
		{
			name: "transfer moves between accounts", txType: TypeTransfer, amount: 300, source: src, dest: dst,
			want: []BalanceEffect{{AccountID: "acc-src", Delta: -300}, {AccountID: "acc-dst", Delta: 300}},
		},
		{name: "income without destination", txType: TypeIncome, amount: 100, wantErr: true},
		{name: "income with source", txType: TypeIncome, amount: 100, source: src, dest: dst, wantErr: true},
		{name: "expense without source", txType: TypeExpense, amount: 100, dest: dst, wantErr: true},
		{name: "expense with destination", txType: TypeExpense, amount: 100, source: src, dest: dst, wantErr: true},
		{name: "transfer missing destination", txType: TypeTransfer, amount: 100, source: src, wantErr: true},
		{name: "transfer to same account", txType: TypeTransfer, amount: 100, source: src, dest: src, wantErr: true},
		{name: "zero amount", txType: TypeIncome, amount: 0, dest: dst, wantErr: true},
		{name: "negative amount", txType: TypeExpense, amount: -50, source: src, wantErr: true},
		{name: "unknown type", txType: "REFUND", amount: 100, source: src, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BalanceEffects(tt.txType, tt.amount, tt.source, tt.dest)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d effects, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("effect[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReversalEffectsRoundTrip(t *testing.T) {
	src := strptr("a")
	dst := strptr("b")

	for _, tx := range []*Transaction{
		{ID: "t1", Type: TypeIncome, Amount: 1000, DestinationAccountID: dst},
		{ID: "t2", Type: TypeExpense, Amount: 250, SourceAccountID: src},
		{ID: "t3", Type: TypeTransfer, Amount: 300, SourceAccountID: src, DestinationAccountID: dst},
	} {
		forward, err := BalanceEffects(tx.Type, tx.Amount, tx.SourceAccountID, tx.DestinationAccountID)
		if err != nil {
			t.Fatalf("%s: forward effects: %v", tx.ID, err)
		}
		reverse, err := ReversalEffects(tx)
		if err != nil {
			t.Fatalf("%s: reversal effects: %v", tx.ID, err)
		}

		// Applying create then delete must leave every account untouched.
		net := map[string]int64{}
		for _, e := range forward {
			net[e.AccountID] += e.Delta
		}
		for _, e := range reverse {
			net[e.AccountID] += e.Delta
		}
		for acc, delta := range net {
			if delta != 0 {
				t.Errorf("%s: account %s nets %d after create+delete, want 0", tx.ID, acc, delta)
			}
		}
	}
}

func TestReversalEffectsFailsClosedOnCorruptRow(t *testing.T) {
	// An EXPENSE row with no source account is a data-integrity anomaly.
	tx := &Transaction{ID: "t-bad", Type: TypeExpense, Amount: 100}
	_, err := ReversalEffects(tx)
	if err == nil {
		t.Fatal("expected error for corrupt row")
	}
	if !errors.Is(err, apperr.ErrIntegrity) {
		t.Errorf("expected integrity error, got %v", err)
	}
}
