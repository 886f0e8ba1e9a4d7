package core

// Scorer 是打分模型的最小抽象：输入用户/商品索引与可选内容向量，
// 输出 [0,1] 的相关性分数。
//
// 两种可互换实现：
//   - model.FusionScorer：融合网络，表达能力强，逐 pair 联合计算
//   - model.TwoTowerScorer：双塔结构，物品向量可预计算，适合大规模服务
//
// 服务层不感知当前激活的是哪一种，由配置选择（config.BuildScorer）。
type Scorer interface {
	Name() string

	// Score 对 (userID, itemID) 打分。
	// userID/itemID 是模型内部的有界整数索引（行号），越界是 VALIDATION 错误。
	// contentEmbedding 为 nil 时仅使用协同信号。
	Score(userID, itemID int, contentEmbedding []float64) (float64, error)
}
