// Package recommend 提供在线推荐服务：读取预计算排名、结果缓存与
// 反馈驱动的缓存失效。
package recommend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/federico-pizz/piranha2/core"
	"github.com/federico-pizz/piranha2/filter"
)

// CacheTTL 是推荐结果缓存的默认时长（秒）。
const CacheTTL = 300

// DefaultLimit 是未指定 limit 时的默认返回条数。
const DefaultLimit = 12

// Service 是推荐服务的在线入口。
//
// 数据流：
//   - 读路径：结果缓存命中 → 按缓存顺序解析商品直接返回（不重读分数）；
//     未命中 → 读预计算排名行（分数降序）→ 回填缓存；
//     没有排名行时返回空列表，服务路径没有即时打分兜底
//   - 写路径：反馈提交 → 偏好读-改-写（按用户串行化）→ 失效结果缓存
//
// 服务是请求粒度无状态的；唯一共享可变资源是缓存与持久存储。
type Service struct {
	catalog core.Catalog
	recs    core.RecommendationStore
	prefs   core.PreferenceStore
	cache   core.Store

	cacheTTL     int
	defaultLimit int
	filters      []filter.Filter

	// onCacheError 缓存降级时的可选回调（观测用），失败从不向上传播
	onCacheError func(op string, err error)
}

// NewService 创建推荐服务。cache 可为 nil（不缓存，直读排名行）。
func NewService(catalog core.Catalog, recs core.RecommendationStore, prefs core.PreferenceStore, cache core.Store) *Service {
	return &Service{
		catalog:      catalog,
		recs:         recs,
		prefs:        prefs,
		cache:        cache,
		cacheTTL:     CacheTTL,
		defaultLimit: DefaultLimit,
	}
}

// WithCacheTTL 设置结果缓存 TTL（秒）。
func (s *Service) WithCacheTTL(seconds int) *Service {
	if seconds > 0 {
		s.cacheTTL = seconds
	}
	return s
}

// WithDefaultLimit 设置未指定 limit 时的返回条数。
func (s *Service) WithDefaultLimit(n int) *Service {
	if n > 0 {
		s.defaultLimit = n
	}
	return s
}

// WithFilters 挂载服务侧过滤器（可选，默认不过滤）。
func (s *Service) WithFilters(filters ...filter.Filter) *Service {
	s.filters = filters
	return s
}

// WithOnCacheError 设置缓存降级回调（观测用）。
func (s *Service) WithOnCacheError(fn func(op string, err error)) *Service {
	s.onCacheError = fn
	return s
}

func cacheKey(userID string) string {
	return "recommendations:" + userID
}

// GetRecommendations 返回用户的个性化推荐，最多 limit 条。
//
// 缓存命中时严格保持缓存中的顺序；未命中时按分数降序读取排名行。
// 缓存条目反序列化失败等价于未命中，绝不返回形状错误的结果。
func (s *Service) GetRecommendations(ctx context.Context, userID string, limit int) ([]*core.Product, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeValidation, "recommend: user_id is required")
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	if ids, ok := s.cachedIDs(ctx, userID); ok {
		if len(ids) > limit {
			ids = ids[:limit]
		}
		return s.resolve(ctx, userID, ids)
	}

	recs, err := s.recs.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	if len(recs) == 0 {
		return []*core.Product{}, nil
	}

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ProductID)
	}

	s.populateCache(ctx, userID, ids)

	return s.resolve(ctx, userID, ids)
}

// cachedIDs 读取缓存中的有序商品 ID 列表。
// 任何读取/解码失败都按未命中处理（缓存不可用只降级，不报错）。
func (s *Service) cachedIDs(ctx context.Context, userID string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, cacheKey(userID))
	if err != nil {
		if !core.IsStoreNotFound(err) && s.onCacheError != nil {
			s.onCacheError("get", err)
		}
		return nil, false
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		// 损坏的缓存条目：剔除并按未命中处理
		_ = s.cache.Delete(ctx, cacheKey(userID))
		if s.onCacheError != nil {
			s.onCacheError("decode", err)
		}
		return nil, false
	}
	if len(ids) == 0 {
		return nil, false
	}
	return ids, true
}

func (s *Service) populateCache(ctx context.Context, userID string, ids []string) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(userID), raw, s.cacheTTL); err != nil && s.onCacheError != nil {
		s.onCacheError("set", err)
	}
}

// resolve 将有序 ID 列表解析为商品记录，保持顺序；缺失的 ID 跳过。
func (s *Service) resolve(ctx context.Context, userID string, ids []string) ([]*core.Product, error) {
	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}

	if len(s.filters) > 0 {
		prefs, err := s.prefs.Get(ctx, userID)
		if err != nil {
			prefs = nil // 偏好读取失败时过滤器按无偏好执行
		}
		products = filter.Apply(ctx, s.filters, prefs, products)
	}
	return products, nil
}

// SubmitFeedback 记录一次 like/dislike 反馈。
//
// 行为：
//   - kind 非法或商品不存在 → VALIDATION 错误
//   - 互斥：加入一个集合会把该 ID 从另一个集合移除
//   - 幂等：重复提交同一 (product, kind) 不改变状态
//   - 持久化成功后尽力失效结果缓存；失效失败不算错误，
//     持久存储仍是权威数据源
func (s *Service) SubmitFeedback(ctx context.Context, userID, productID string, kind core.FeedbackType) error {
	if userID == "" {
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeValidation, "recommend: user_id is required")
	}
	if !kind.Valid() {
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeValidation,
			fmt.Sprintf("recommend: invalid feedback type %q", kind))
	}
	if productID == "" {
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeValidation, "recommend: product_id is required")
	}

	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		if core.IsNotFound(err) || core.IsStoreNotFound(err) {
			return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeValidation,
				fmt.Sprintf("recommend: unknown product %q", productID))
		}
		return fmt.Errorf("lookup product: %w", err)
	}

	err := s.prefs.Update(ctx, userID, func(p *core.Preferences) bool {
		return p.Apply(productID, kind)
	})
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey(userID)); err != nil && s.onCacheError != nil {
			s.onCacheError("invalidate", err)
		}
	}
	return nil
}
