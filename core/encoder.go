package core

import "context"

// TextEncoder 是文本编码器的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（service/embedding）实现
//   - 批量优先：单条文本等价于长度为 1 的批量
//   - 维度在一个模型版本内固定，调用方可据此校验缓存条目
//
// 实现：
//   - service.USEClient 通过模型服务 REST 接口实现此接口
//   - embedding.LocalHashingEncoder 提供本地确定性实现（开发/测试）
type TextEncoder interface {
	// EncodeTexts 批量编码文本，返回顺序与入参一致
	EncodeTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension 返回向量维度（一个模型版本内固定）
	Dimension() int

	// ModelVersion 返回模型版本标识（参与缓存 key，避免跨版本混用）
	ModelVersion() string
}

// ErrEncoderUnavailable 表示编码器初始化或调用失败。
// 对当前调用是致命错误：不做静默回退，由进程重启或离线任务自身重试。
var ErrEncoderUnavailable = NewDomainError(ModuleEmbedding, ErrorCodeUnavailable, "embedding: encoder unavailable")
