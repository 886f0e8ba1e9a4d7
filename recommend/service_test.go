package recommend

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/federico-pizz/piranha2/core"
	"github.com/federico-pizz/piranha2/filter"
	"github.com/federico-pizz/piranha2/store"
)

type serviceFixture struct {
	catalog *store.MemoryCatalog
	kv      *store.MemoryStore
	recs    *store.StoreRecommendations
	prefs   *store.MemoryPreferenceStore
	svc     *Service
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	catalog := store.NewMemoryCatalog(
		&core.Product{ID: "p1", Title: "耳机"},
		&core.Product{ID: "p2", Title: "键盘"},
		&core.Product{ID: "p3", Title: "水杯"},
	)
	kv := store.NewMemoryStore()
	t.Cleanup(func() { kv.Close() })

	recs := store.NewStoreRecommendations(kv)
	prefs := store.NewMemoryPreferenceStore()
	svc := NewService(catalog, recs, prefs, kv)

	return &serviceFixture{catalog: catalog, kv: kv, recs: recs, prefs: prefs, svc: svc}
}

func (f *serviceFixture) seedRanking(t *testing.T, userID string, rows map[string]float64) {
	t.Helper()
	recs := make([]*core.Recommendation, 0, len(rows))
	for pid, score := range rows {
		recs = append(recs, &core.Recommendation{UserID: userID, ProductID: pid, Score: score})
	}
	if err := f.recs.ReplaceForUser(context.Background(), userID, recs); err != nil {
		t.Fatalf("ReplaceForUser: %v", err)
	}
}

func ids(products []*core.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestService_EmptyRanking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.svc.GetRecommendations(ctx, "nobody", 5)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got = %v, want empty non-nil slice", got)
	}
}

func TestService_MissReadsRankingDesc(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRanking(t, "u1", map[string]float64{"p1": 0.3, "p2": 0.9, "p3": 0.6})

	got, err := f.svc.GetRecommendations(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	want := []string{"p2", "p3", "p1"}
	gotIDs := ids(got)
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("order = %v, want %v", gotIDs, want)
		}
	}

	// 未命中后缓存被回填
	if _, err := f.kv.Get(ctx, "recommendations:u1"); err != nil {
		t.Errorf("cache not populated: %v", err)
	}
}

func TestService_CacheHitPreservesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// 缓存中的顺序与排名行冲突时，命中路径以缓存为准
	f.seedRanking(t, "u1", map[string]float64{"p1": 0.1, "p2": 0.9})
	raw, _ := json.Marshal([]string{"p1", "p2"})
	_ = f.kv.Set(ctx, "recommendations:u1", raw, CacheTTL)

	got, err := f.svc.GetRecommendations(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	gotIDs := ids(got)
	if len(gotIDs) != 2 || gotIDs[0] != "p1" || gotIDs[1] != "p2" {
		t.Errorf("order = %v, want [p1 p2]", gotIDs)
	}
}

func TestService_LimitCapsCachedList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	raw, _ := json.Marshal([]string{"p1", "p2", "p3"})
	_ = f.kv.Set(ctx, "recommendations:u1", raw, CacheTTL)

	got, err := f.svc.GetRecommendations(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 (limit 截断)", len(got))
	}
}

func TestService_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	raw, _ := json.Marshal([]string{"p1", "p2", "p3"})
	_ = f.kv.Set(ctx, "recommendations:u1", raw, CacheTTL)

	f.svc.WithDefaultLimit(2)
	got, err := f.svc.GetRecommendations(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 (默认条数)", len(got))
	}
}

func TestService_CorruptedCacheIsMiss(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRanking(t, "u1", map[string]float64{"p3": 0.8})

	_ = f.kv.Set(ctx, "recommendations:u1", []byte("not json"), CacheTTL)

	got, err := f.svc.GetRecommendations(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p3" {
		t.Errorf("got = %v, want [p3] from ranking rows", ids(got))
	}
}

func TestService_MissingProductsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// 缓存引用了目录中已下架的商品
	raw, _ := json.Marshal([]string{"p1", "gone", "p2"})
	_ = f.kv.Set(ctx, "recommendations:u1", raw, CacheTTL)

	got, err := f.svc.GetRecommendations(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	gotIDs := ids(got)
	if len(gotIDs) != 2 || gotIDs[0] != "p1" || gotIDs[1] != "p2" {
		t.Errorf("got = %v, want [p1 p2]", gotIDs)
	}
}

func TestService_FeedbackFlipAndInvalidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRanking(t, "u1", map[string]float64{"p1": 0.9})

	// 先填充缓存
	if _, err := f.svc.GetRecommendations(ctx, "u1", 5); err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}

	if err := f.svc.SubmitFeedback(ctx, "u1", "p1", core.FeedbackLike); err != nil {
		t.Fatalf("SubmitFeedback like: %v", err)
	}

	// 反馈后缓存条目被删除
	if _, err := f.kv.Get(ctx, "recommendations:u1"); !core.IsStoreNotFound(err) {
		t.Errorf("cache entry still present after feedback: err = %v", err)
	}

	// like → dislike 翻转，互斥保持
	if err := f.svc.SubmitFeedback(ctx, "u1", "p1", core.FeedbackDislike); err != nil {
		t.Fatalf("SubmitFeedback dislike: %v", err)
	}

	p, err := f.prefs.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("prefs.Get: %v", err)
	}
	if p.HasLiked("p1") {
		t.Error("p1 仍在 liked 集合中")
	}
	if !p.HasDisliked("p1") {
		t.Error("p1 不在 disliked 集合中")
	}
}

func TestService_FeedbackIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		if err := f.svc.SubmitFeedback(ctx, "u1", "p2", core.FeedbackLike); err != nil {
			t.Fatalf("SubmitFeedback #%d: %v", i, err)
		}
	}

	p, _ := f.prefs.Get(ctx, "u1")
	if len(p.Liked) != 1 {
		t.Errorf("len(Liked) = %d, want 1", len(p.Liked))
	}
	if len(p.Disliked) != 0 {
		t.Errorf("len(Disliked) = %d, want 0", len(p.Disliked))
	}
}

func TestService_FeedbackValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name      string
		userID    string
		productID string
		kind      core.FeedbackType
	}{
		{"invalid kind", "u1", "p1", "meh"},
		{"unknown product", "u1", "ghost", core.FeedbackLike},
		{"empty product", "u1", "", core.FeedbackLike},
		{"empty user", "", "p1", core.FeedbackLike},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.SubmitFeedback(ctx, tt.userID, tt.productID, tt.kind)
			if !core.IsValidation(err) {
				t.Errorf("err = %v, want VALIDATION", err)
			}
		})
	}
}

func TestService_DislikedFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRanking(t, "u1", map[string]float64{"p1": 0.9, "p2": 0.5})

	f.svc.WithFilters(&filter.DislikedFilter{})

	if err := f.svc.SubmitFeedback(ctx, "u1", "p1", core.FeedbackDislike); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}

	got, err := f.svc.GetRecommendations(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	for _, p := range got {
		if p.ID == "p1" {
			t.Error("不喜欢的商品出现在推荐结果中")
		}
	}
}

func TestService_NoCacheConfigured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRanking(t, "u1", map[string]float64{"p1": 0.9})

	svc := NewService(f.catalog, f.recs, f.prefs, nil)
	got, err := svc.GetRecommendations(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("got = %v, want [p1]", ids(got))
	}
}
