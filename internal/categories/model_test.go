package categories

import (
	"errors"
	"testing"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

func strptr(s string) *string { return &s }

func TestValidateParent(t *testing.T) {
	topLevel := &Category{ID: "p1", Type: TypeExpense}
	nested := &Category{ID: "p2", Type: TypeExpense, ParentID: strptr("p1")}
	incomeParent := &Category{ID: "p3", Type: TypeIncome}

	tests := []struct {
		name        string
		parent      *Category
		childType   string
		hasChildren bool
		wantErr     bool
	}{
		{"top-level matching parent", topLevel, TypeExpense, false, false},
		{"type mismatch", incomeParent, TypeExpense, false, true},
		{"parent is itself nested", nested, TypeExpense, false, true},
		{"child already has children", topLevel, TypeExpense, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateParent(tt.parent, tt.childType, tt.hasChildren)
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
		})
	}
}

// Nesting a category that already has sub-categories under a parent would
// create a three-level tree; the tree never goes past two.
func TestValidateParentRejectsDepthThree(t *testing.T) {
	parent := &Category{ID: "food", Type: TypeExpense}
	err := validateParent(parent, TypeExpense, true)
	if err == nil {
		t.Fatal("re-parenting a category with children must be rejected")
	}
}
