package store

import (
	"context"
	"sort"
	"sync"

	"github.com/federico-pizz/piranha2/core"
)

// MemoryCatalog 是内存实现的商品目录，用于测试/开发。
// 真实目录由外部协作方提供，这里只需要满足 core.Catalog 的形状。
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]*core.Product
	ids      []string // 按 ID 升序，支撑稳定遍历
}

func NewMemoryCatalog(products ...*core.Product) *MemoryCatalog {
	c := &MemoryCatalog{products: make(map[string]*core.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	c.rebuildIndex()
	return c
}

// Put 写入或覆盖一个商品。
func (c *MemoryCatalog) Put(p *core.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
	c.rebuildIndex()
}

func (c *MemoryCatalog) rebuildIndex() {
	c.ids = c.ids[:0]
	for id := range c.products {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
}

func (c *MemoryCatalog) GetProduct(ctx context.Context, id string) (*core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound, "catalog: product not found: "+id)
	}
	return p, nil
}

// GetProducts 按入参顺序返回商品，缺失的 ID 跳过。
func (c *MemoryCatalog) GetProducts(ctx context.Context, ids []string) ([]*core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*core.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// ListProducts 按 ID 升序分页遍历。
func (c *MemoryCatalog) ListProducts(ctx context.Context, offset, limit int) ([]*core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(c.ids) || limit <= 0 {
		return nil, nil
	}
	end := offset + limit
	if end > len(c.ids) {
		end = len(c.ids)
	}

	result := make([]*core.Product, 0, end-offset)
	for _, id := range c.ids[offset:end] {
		result = append(result, c.products[id])
	}
	return result, nil
}

var _ core.Catalog = (*MemoryCatalog)(nil)
