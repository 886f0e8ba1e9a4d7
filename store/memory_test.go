package store

import (
	"context"
	"testing"
	"time"

	"github.com/federico-pizz/piranha2/core"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set(ctx, "k1", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want %q", got, "v1")
	}

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get missing key: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set(ctx, "k1", []byte("v1"), 1); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := s.Get(ctx, "k1"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)

	if _, err := s.Get(ctx, "k1"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after expiry: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_ = s.Set(ctx, "k1", []byte("v1"))
	_ = s.ZAdd(ctx, "k1", 1.0, "m1")

	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.Get(ctx, "k1"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	// Delete 同时清理同名 zset
	if members, _ := s.ZRevRange(ctx, "k1", 0, -1); len(members) != 0 {
		t.Errorf("ZRevRange after delete = %v, want empty", members)
	}
}

func TestMemoryStore_Batch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	kvs := map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}
	if err := s.BatchSet(ctx, kvs); err != nil {
		t.Fatalf("BatchSet: %v", err)
	}

	got, err := s.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("BatchGet returned %d entries, want 2", len(got))
	}
	if string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet = %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Error("BatchGet 不应返回缺失 key")
	}
}

func TestMemoryStore_ZRevRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_ = s.ZAdd(ctx, "rank", 0.3, "p3")
	_ = s.ZAdd(ctx, "rank", 0.9, "p1")
	_ = s.ZAdd(ctx, "rank", 0.5, "p2")

	tests := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{"full range desc", 0, -1, []string{"p1", "p2", "p3"}},
		{"top 2", 0, 1, []string{"p1", "p2"}},
		{"stop beyond len", 0, 10, []string{"p1", "p2", "p3"}},
		{"start beyond stop", 2, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ZRevRange(ctx, "rank", tt.start, tt.stop)
			if err != nil {
				t.Fatalf("ZRevRange: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ZRevRange = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ZRevRange[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMemoryStore_ZRevRange_TieBreak(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	// 同分时按 member 升序，保证顺序确定
	_ = s.ZAdd(ctx, "rank", 0.5, "pb")
	_ = s.ZAdd(ctx, "rank", 0.5, "pa")
	_ = s.ZAdd(ctx, "rank", 0.5, "pc")

	got, err := s.ZRevRange(ctx, "rank", 0, -1)
	if err != nil {
		t.Fatalf("ZRevRange: %v", err)
	}
	want := []string{"pa", "pb", "pc"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ZRevRange = %v, want %v", got, want)
		}
	}
}

func TestMemoryStore_ZScore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_ = s.ZAdd(ctx, "rank", 0.7, "p1")

	score, err := s.ZScore(ctx, "rank", "p1")
	if err != nil {
		t.Fatalf("ZScore: %v", err)
	}
	if score != 0.7 {
		t.Errorf("ZScore = %v, want 0.7", score)
	}

	if _, err := s.ZScore(ctx, "rank", "missing"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore missing member: err = %v, want ErrNotFound", err)
	}
}
