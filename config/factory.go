package config

import (
	"fmt"

	"github.com/federico-pizz/piranha2/core"
	"github.com/federico-pizz/piranha2/embedding"
	"github.com/federico-pizz/piranha2/model"
	"github.com/federico-pizz/piranha2/recommend"
	"github.com/federico-pizz/piranha2/service"
	"github.com/federico-pizz/piranha2/store"
)

// BuildStore 根据配置构建缓存/存储后端。
func (c *Config) BuildStore() (core.KeyValueStore, error) {
	switch c.Store.Type {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		if c.Store.Addr == "" {
			return nil, fmt.Errorf("store: redis addr is required")
		}
		return store.NewRedisStore(c.Store.Addr, c.Store.DB)
	default:
		return nil, fmt.Errorf("unknown store type: %s", c.Store.Type)
	}
}

// BuildEmbedder 根据配置构建文本向量化器。cache 可为 nil（不缓存）。
func (c *Config) BuildEmbedder(cache core.Store) (*embedding.TextEmbedder, error) {
	var factory func() (core.TextEncoder, error)

	switch c.Embedding.Encoder {
	case "", "local":
		dim := c.Embedding.Dimension
		if dim <= 0 {
			return nil, fmt.Errorf("embedding: local encoder requires dimension")
		}
		factory = func() (core.TextEncoder, error) {
			return embedding.NewLocalHashingEncoder(dim), nil
		}
	case "use":
		if c.Embedding.Endpoint == "" || c.Embedding.ModelName == "" {
			return nil, fmt.Errorf("embedding: use encoder requires endpoint and model_name")
		}
		endpoint, modelName := c.Embedding.Endpoint, c.Embedding.ModelName
		var opts []service.USEOption
		if c.Embedding.Dimension > 0 {
			opts = append(opts, service.WithUSEDimension(c.Embedding.Dimension))
		}
		if c.Embedding.Version != "" {
			opts = append(opts, service.WithUSEVersion(c.Embedding.Version))
		}
		factory = func() (core.TextEncoder, error) {
			return service.NewUSEClient(endpoint, modelName, opts...), nil
		}
	default:
		return nil, fmt.Errorf("unknown encoder type: %s", c.Embedding.Encoder)
	}

	e := embedding.NewTextEmbedder(factory)
	if cache != nil {
		e = e.WithCache(cache)
	}
	if c.Embedding.CacheTTL > 0 {
		e = e.WithCacheTTL(c.Embedding.CacheTTL)
	}
	return e, nil
}

// BuildPrecomputer 根据配置构建离线向量预计算任务。
func (c *Config) BuildPrecomputer(catalog core.Catalog, embedder *embedding.TextEmbedder, cache core.Store) *embedding.Precomputer {
	return &embedding.Precomputer{
		Catalog:   catalog,
		Embedder:  embedder,
		Cache:     cache,
		BatchSize: c.Embedding.PrecomputeBatchSize,
	}
}

// BuildScorer 根据配置构建打分模型。
func (c *Config) BuildScorer() (core.Scorer, error) {
	sc := c.Scorer
	if sc.NumUsers <= 0 || sc.NumItems <= 0 {
		return nil, fmt.Errorf("scorer: num_users and num_items must be positive")
	}

	switch sc.Type {
	case "", "fusion":
		s := model.NewFusionScorer(sc.NumUsers, sc.NumItems, sc.EmbeddingDim)
		if sc.ContentDim > 0 {
			s = s.WithContentDim(sc.ContentDim)
		}
		if len(sc.HiddenUnits) > 0 {
			s = s.WithHiddenUnits(sc.HiddenUnits)
		}
		if sc.DropoutRate > 0 {
			s = s.WithDropoutRate(sc.DropoutRate)
		}
		return s, nil
	case "two_tower":
		s := model.NewTwoTowerScorer(sc.NumUsers, sc.NumItems, sc.EmbeddingDim)
		if sc.ContentDim > 0 {
			s = s.WithContentDim(sc.ContentDim)
		}
		if sc.Temperature > 0 {
			s = s.WithTemperature(sc.Temperature)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown scorer type: %s", sc.Type)
	}
}

// BuildService 根据配置构建推荐服务。
//
// 存储后端由 store 段决定：memory 时偏好与排名行都落在进程内；
// redis 时偏好用 WATCH 事务、排名行用 zset。商品目录不在配置范围内，
// 由调用方注入。
func (c *Config) BuildService(catalog core.Catalog) (*recommend.Service, error) {
	kv, err := c.BuildStore()
	if err != nil {
		return nil, err
	}

	var prefs core.PreferenceStore
	if rs, ok := kv.(*store.RedisStore); ok {
		prefs = store.NewRedisPreferenceStore(rs.Client())
	} else {
		prefs = store.NewMemoryPreferenceStore()
	}

	recs := store.NewStoreRecommendations(kv)

	svc := recommend.NewService(catalog, recs, prefs, kv)
	if c.Recommend.CacheTTL > 0 {
		svc = svc.WithCacheTTL(c.Recommend.CacheTTL)
	}
	if c.Recommend.DefaultLimit > 0 {
		svc = svc.WithDefaultLimit(c.Recommend.DefaultLimit)
	}
	return svc, nil
}
