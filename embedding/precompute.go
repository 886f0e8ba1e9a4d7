package embedding

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/federico-pizz/piranha2/core"
)

// Precomputer 是离线向量预计算任务。
//
// 行为：
//   - 按 ID 稳定升序遍历全量商品，可配置批大小
//   - 每批调用一次批量编码，逐商品写入 product_emb:<id> 条目（7 天 TTL）
//   - 从显式 offset 启动，重跑覆盖写（幂等），不追加
//   - 批次间有界并发（errgroup + 信号量），失败批次不中断同窗口其他批次
//
// 与在线路径只共享缓存，不共享其他可变状态。
type Precomputer struct {
	Catalog  core.Catalog
	Embedder *TextEmbedder
	Cache    core.Store

	// BatchSize 每批商品数，默认 100
	BatchSize int

	// TTL 预计算条目的缓存时长（秒），默认 7 天
	TTL int

	// MaxConcurrent 同时在途的批次数，默认 2
	MaxConcurrent int
}

// Run 从 offset 开始预计算。
// 返回下一次续跑的 offset：正常结束时为遍历终点；
// 失败时为最早未完成批次的起点，调用方持久化后可原位重跑。
func (p *Precomputer) Run(ctx context.Context, offset int) (int, error) {
	if p.Catalog == nil || p.Embedder == nil || p.Cache == nil {
		return offset, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeValidation,
			"embedding: precomputer requires catalog, embedder and cache")
	}

	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = PrecomputedTTL
	}
	window := p.MaxConcurrent
	if window <= 0 {
		window = 2
	}

	// 编码器初始化失败对整个任务是致命错误
	if err := p.Embedder.Ready(); err != nil {
		return offset, err
	}

	for {
		// 顺序取一个窗口的批次，窗口内并发编码+写入
		type batch struct {
			offset   int
			products []*core.Product
		}
		batches := make([]batch, 0, window)
		done := false

		for i := 0; i < window; i++ {
			products, err := p.Catalog.ListProducts(ctx, offset, batchSize)
			if err != nil {
				return offset, fmt.Errorf("list products at offset %d: %w", offset, err)
			}
			if len(products) == 0 {
				done = true
				break
			}
			batches = append(batches, batch{offset: offset, products: products})
			offset += len(products)
		}

		if len(batches) == 0 {
			return offset, nil
		}

		var (
			mu        sync.Mutex
			failedAt  = -1
			eg, egCtx = errgroup.WithContext(ctx)
		)
		for _, b := range batches {
			b := b
			eg.Go(func() error {
				if err := p.runBatch(egCtx, b.products, ttl); err != nil {
					mu.Lock()
					if failedAt < 0 || b.offset < failedAt {
						failedAt = b.offset
					}
					mu.Unlock()
					return err
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			next := failedAt
			if next < 0 {
				next = batches[0].offset
			}
			return next, err
		}

		if done {
			return offset, nil
		}
	}
}

func (p *Precomputer) runBatch(ctx context.Context, products []*core.Product, ttl int) error {
	texts := make([]string, len(products))
	for i, prod := range products {
		texts[i] = ComposeProductText(prod.Title, prod.Description)
	}

	vecs, err := p.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	kvs := make(map[string][]byte, len(products))
	for i, prod := range products {
		kvs[ProductCacheKey(prod.ID)] = EncodeVector(vecs[i])
	}
	return p.Cache.BatchSet(ctx, kvs, ttl)
}
