// Package piranha2 是一个商品推荐引擎工具包。
//
// 设计要点：
// - 内容向量：商品文本经文本编码器向量化，结果缓存于 KV 存储（即席 24h / 预计算 7d）
// - 双模型：Fusion（协同信号 + 内容向量融合打分）与 TwoTower（双塔召回式相似度）
// - 在线服务：预计算排名行 + 结果缓存 + 反馈驱动的缓存失效
package piranha2

import (
	"github.com/federico-pizz/piranha2/core"
	"github.com/federico-pizz/piranha2/recommend"
)

// 轻量 facade：便于用户直接 import "piranha2" 使用核心抽象。
type Product = core.Product
type Recommendation = core.Recommendation
type Preferences = core.Preferences
type FeedbackType = core.FeedbackType
type Scorer = core.Scorer
type Service = recommend.Service

const (
	FeedbackLike    = core.FeedbackLike
	FeedbackDislike = core.FeedbackDislike
)
