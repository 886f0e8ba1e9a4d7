package core

import (
	"context"
	"time"
)

// Recommendation 是离线生成的一条 per-user 排名行。
//
// 生命周期：
//   - 由离线训练/重算任务整体覆盖写入（ReplaceForUser）
//   - 在线服务只读，按 Score 降序消费
//
// 约束：Score 始终落在 [0,1]。
type Recommendation struct {
	UserID      string
	ProductID   string
	Score       float64
	GeneratedAt time.Time
}

// RecommendationStore 是预计算排名的存储接口。
type RecommendationStore interface {
	// ListByUser 按分数降序返回某用户的排名行，最多 limit 条。
	// 用户没有排名时返回空切片，不报错。
	ListByUser(ctx context.Context, userID string, limit int) ([]*Recommendation, error)

	// ReplaceForUser 整体覆盖某用户的排名行（离线重算任务调用）。
	ReplaceForUser(ctx context.Context, userID string, recs []*Recommendation) error
}
