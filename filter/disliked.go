package filter

import (
	"context"

	"github.com/federico-pizz/piranha2/core"
)

// DislikedFilter 过滤掉用户明确表示不喜欢的商品。
type DislikedFilter struct{}

func (f *DislikedFilter) Name() string { return "filter.disliked" }

func (f *DislikedFilter) ShouldFilter(
	_ context.Context,
	prefs *core.Preferences,
	product *core.Product,
) (bool, error) {
	if prefs == nil || product == nil {
		return false, nil
	}
	return prefs.HasDisliked(product.ID), nil
}

var _ Filter = (*DislikedFilter)(nil)
