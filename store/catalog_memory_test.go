package store

import (
	"context"
	"testing"

	"github.com/federico-pizz/piranha2/core"
)

func demoCatalog() *MemoryCatalog {
	return NewMemoryCatalog(
		&core.Product{ID: "p1", Title: "A"},
		&core.Product{ID: "p2", Title: "B"},
		&core.Product{ID: "p3", Title: "C"},
	)
}

func TestMemoryCatalog_GetProduct(t *testing.T) {
	ctx := context.Background()
	c := demoCatalog()

	p, err := c.GetProduct(ctx, "p2")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.Title != "B" {
		t.Errorf("Title = %s, want B", p.Title)
	}

	if _, err := c.GetProduct(ctx, "missing"); !core.IsNotFound(err) {
		t.Errorf("GetProduct missing: err = %v, want NOT_FOUND", err)
	}
}

func TestMemoryCatalog_GetProducts_OrderAndSkip(t *testing.T) {
	ctx := context.Background()
	c := demoCatalog()

	// 保持入参顺序，缺失 ID 跳过
	got, err := c.GetProducts(ctx, []string{"p3", "missing", "p1"})
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetProducts returned %d, want 2", len(got))
	}
	if got[0].ID != "p3" || got[1].ID != "p1" {
		t.Errorf("GetProducts order = [%s %s], want [p3 p1]", got[0].ID, got[1].ID)
	}
}

func TestMemoryCatalog_ListProducts(t *testing.T) {
	ctx := context.Background()
	c := demoCatalog()

	tests := []struct {
		name          string
		offset, limit int
		wantIDs       []string
	}{
		{"first page", 0, 2, []string{"p1", "p2"}},
		{"second page", 2, 2, []string{"p3"}},
		{"offset beyond end", 5, 2, nil},
		{"zero limit", 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ListProducts(ctx, tt.offset, tt.limit)
			if err != nil {
				t.Fatalf("ListProducts: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("ListProducts returned %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, p := range got {
				if p.ID != tt.wantIDs[i] {
					t.Errorf("ListProducts[%d] = %s, want %s", i, p.ID, tt.wantIDs[i])
				}
			}
		})
	}
}
