package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/federico-pizz/piranha2/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("product", cel.DynType),
			cel.Variable("prefs", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// RuleFilter 是基于 CEL (Common Expression Language) 的规则过滤器。
// 表达式返回 true 表示商品应该被过滤掉。
//
// 表达式可用变量：
//   - product.id / product.title / product.category / product.price / product.region
//   - prefs.liked / prefs.disliked（商品 ID 列表）
//
// 示例：
//   - `product.price > 500.0` → 过滤高价商品
//   - `product.region != "IT"` → 只保留意大利区商品
//   - `product.id in prefs.disliked` → 等价于 DislikedFilter
//
// 表达式在构造时编译一次，Program 线程安全，可跨请求复用。
type RuleFilter struct {
	Expr string
	prg  cel.Program
}

// NewRuleFilter 编译表达式并创建规则过滤器。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}

	return &RuleFilter{Expr: expr, prg: prg}, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	prefs *core.Preferences,
	product *core.Product,
) (bool, error) {
	if product == nil {
		return true, nil
	}

	out, _, err := f.prg.Eval(f.buildInput(prefs, product))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

func (f *RuleFilter) buildInput(prefs *core.Preferences, product *core.Product) map[string]interface{} {
	liked := []string{}
	disliked := []string{}
	if prefs != nil {
		liked = prefs.Liked
		disliked = prefs.Disliked
	}

	return map[string]interface{}{
		"product": map[string]interface{}{
			"id":       product.ID,
			"title":    product.Title,
			"category": product.Category,
			"price":    product.Price,
			"region":   product.Region,
		},
		"prefs": map[string]interface{}{
			"liked":    liked,
			"disliked": disliked,
		},
	}
}

var _ Filter = (*RuleFilter)(nil)
