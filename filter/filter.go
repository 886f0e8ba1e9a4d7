// Package filter 提供推荐结果的服务侧过滤器。
// 过滤器是可选项：默认服务路径不加过滤，按需在 recommend.Service 上挂载。
package filter

import (
	"context"

	"github.com/federico-pizz/piranha2/core"
)

// Filter 是过滤器的抽象接口，用于判断一个商品是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
// 过滤只做删除，不改变剩余商品的相对顺序。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断商品是否应该被过滤
	ShouldFilter(ctx context.Context, prefs *core.Preferences, product *core.Product) (bool, error)
}

// Apply 按顺序执行一组过滤器，保持输入顺序返回保留的商品。
// 单个过滤器出错时跳过该过滤器（保留商品），过滤是尽力而为的修饰。
func Apply(ctx context.Context, filters []Filter, prefs *core.Preferences, products []*core.Product) []*core.Product {
	if len(filters) == 0 {
		return products
	}

	kept := make([]*core.Product, 0, len(products))
	for _, p := range products {
		drop := false
		for _, f := range filters {
			shouldFilter, err := f.ShouldFilter(ctx, prefs, p)
			if err != nil {
				continue
			}
			if shouldFilter {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, p)
		}
	}
	return kept
}
