package store

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/federico-pizz/piranha2/core"
)

// TestRedisPreferenceStore_Update 验证 WATCH 事务路径。
// 注意：需要连接真实的 Redis 才能运行。
func TestRedisPreferenceStore_Update(t *testing.T) {
	t.Skip("需要连接真实的 Redis 才能运行")

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	s := NewRedisPreferenceStore(client)

	err := s.Update(ctx, "it_user", func(p *core.Preferences) bool {
		return p.Apply("p1", core.FeedbackLike)
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	p, err := s.Get(ctx, "it_user")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !p.HasLiked("p1") {
		t.Errorf("prefs = %+v, want p1 liked", p)
	}
}
