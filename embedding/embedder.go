package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/federico-pizz/piranha2/core"
)

// 缓存 TTL（秒）
const (
	// AdHocTTL 在线路径逐条编码的缓存时长（24 小时）
	AdHocTTL = 86400

	// PrecomputedTTL 离线预计算条目的缓存时长（7 天）
	PrecomputedTTL = 604800
)

// maxDescriptionLen 是参与编码的商品描述长度上限（按字符截断，
// 不做词边界调整）。在线与离线必须使用同一条规则，否则缓存 key 漂移。
const maxDescriptionLen = 500

// TextEmbedder 将商品文本转换为定长向量，并维护向量缓存。
//
// 生命周期（两阶段）：
//   - 构造：NewTextEmbedder 只记录编码器工厂，不加载模型
//   - 初始化：首次编码时在 sync.Once 保护下调用工厂加载编码器，
//     并发首用只会加载一次；句柄由调用方显式传递，不走全局状态
//
// 失败策略：
//   - 编码器不可用：对当前调用致命（UNAVAILABLE），不做静默回退
//   - 缓存不可用：降级为缓存未命中，不影响调用
//   - 缓存条目维度异常：按损坏处理，剔除后重算
type TextEmbedder struct {
	factory func() (core.TextEncoder, error)

	cache    core.Store // 可选；为 nil 时不缓存
	cacheTTL int        // 秒

	initOnce sync.Once
	encoder  core.TextEncoder
	initErr  error
}

// NewTextEmbedder 创建一个 TextEmbedder。factory 在首次编码时被调用一次。
func NewTextEmbedder(factory func() (core.TextEncoder, error)) *TextEmbedder {
	return &TextEmbedder{
		factory:  factory,
		cacheTTL: AdHocTTL,
	}
}

// WithCache 设置向量缓存。
func (e *TextEmbedder) WithCache(cache core.Store) *TextEmbedder {
	e.cache = cache
	return e
}

// WithCacheTTL 设置在线路径的缓存 TTL（秒）。
func (e *TextEmbedder) WithCacheTTL(seconds int) *TextEmbedder {
	if seconds > 0 {
		e.cacheTTL = seconds
	}
	return e
}

// Ready 提前完成编码器初始化（可选；否则首次编码时惰性初始化）。
func (e *TextEmbedder) Ready() error {
	_, err := e.ref()
	return err
}

// ref 返回已初始化的编码器。初始化失败会被缓存：
// 同一进程内不重试，交给进程重启或离线任务自身的重试策略。
func (e *TextEmbedder) ref() (core.TextEncoder, error) {
	e.initOnce.Do(func() {
		enc, err := e.factory()
		if err != nil {
			e.initErr = fmt.Errorf("%w: %v", core.ErrEncoderUnavailable, err)
			return
		}
		e.encoder = enc
	})
	if e.initErr != nil {
		return nil, e.initErr
	}
	return e.encoder, nil
}

// Dimension 返回向量维度（触发编码器初始化）。
func (e *TextEmbedder) Dimension() (int, error) {
	enc, err := e.ref()
	if err != nil {
		return 0, err
	}
	return enc.Dimension(), nil
}

// EmbedText 编码单条文本，对同一文本与模型版本结果确定。
// 先按内容派生 key 查缓存，未命中时调用编码器并以 24 小时 TTL 写回。
func (e *TextEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	enc, err := e.ref()
	if err != nil {
		return nil, err
	}

	key := e.cacheKey(enc, text)

	if e.cache != nil {
		if raw, err := e.cache.Get(ctx, key); err == nil {
			vec, derr := DecodeVector(raw, enc.Dimension())
			if derr == nil {
				return vec, nil
			}
			// 损坏/维度异常：剔除条目，走重算
			_ = e.cache.Delete(ctx, key)
		}
		// 缓存读取失败等价于未命中
	}

	vecs, err := enc.EncodeTexts(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEncoderUnavailable, err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: expected 1 vector, got %d", core.ErrEncoderUnavailable, len(vecs))
	}

	if e.cache != nil {
		// 缓存写失败不影响本次调用
		_ = e.cache.Set(ctx, key, EncodeVector(vecs[0]), e.cacheTTL)
	}

	return vecs[0], nil
}

// EmbedBatch 批量编码，返回顺序与入参一致。
// 不做缓存：需要逐条缓存时由调用方自行处理（见 Precomputer）。
func (e *TextEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	enc, err := e.ref()
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vecs, err := enc.EncodeTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEncoderUnavailable, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: vector count mismatch: expected %d, got %d",
			core.ErrEncoderUnavailable, len(texts), len(vecs))
	}
	return vecs, nil
}

// EmbedProduct 编码商品文本。有描述时拼接 "标题. 描述前 500 字符"，
// 否则只用标题；委托给 EmbedText。
func (e *TextEmbedder) EmbedProduct(ctx context.Context, title, description string) ([]float32, error) {
	return e.EmbedText(ctx, ComposeProductText(title, description))
}

// ComposeProductText 生成商品的编码文本。
// 截断规则与离线预计算保持一致，不做词边界调整。
func ComposeProductText(title, description string) string {
	if description == "" {
		return title
	}
	runes := []rune(description)
	if len(runes) > maxDescriptionLen {
		description = string(runes[:maxDescriptionLen])
	}
	return title + ". " + description
}

// cacheKey 生成内容派生的缓存 key。
// 模型版本参与散列，避免跨版本误用同一条目；
// SHA-256 全量摘要，不截断（窄 key 取模会引入跨文本碰撞）。
func (e *TextEmbedder) cacheKey(enc core.TextEncoder, text string) string {
	h := sha256.New()
	h.Write([]byte(enc.ModelVersion()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return "emb:" + hex.EncodeToString(h.Sum(nil))
}

// ProductCacheKey 返回离线预计算条目的 key（按商品 ID 派生）。
func ProductCacheKey(productID string) string {
	return "product_emb:" + productID
}
