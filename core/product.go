package core

import "context"

// Product 是商品目录中的一条记录。
// 目录由外部协作方维护，对推荐引擎只读；引擎只消费其文本与筛选字段。
type Product struct {
	ID          string
	Title       string
	Description string
	Category    string
	Price       float64
	Region      string
}

// Catalog 是商品目录的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由外部目录服务或 store 适配器实现
//   - 引擎只依赖按 ID 查询与稳定遍历两种能力，不关心底层存储
type Catalog interface {
	// GetProduct 按 ID 查询单个商品；不存在返回 NOT_FOUND
	GetProduct(ctx context.Context, id string) (*Product, error)

	// GetProducts 按 ID 列表批量查询，返回顺序与入参 ids 一致；
	// 不存在的 ID 跳过，不报错
	GetProducts(ctx context.Context, ids []string) ([]*Product, error)

	// ListProducts 按 ID 稳定升序分页遍历全量商品（预计算任务使用）。
	// 返回空切片表示遍历结束。
	ListProducts(ctx context.Context, offset, limit int) ([]*Product, error)
}
