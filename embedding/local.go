package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// LocalHashingEncoder 是本地确定性文本编码器。
//
// 核心思想：
//   - 词法切分后对词做特征哈希，落到固定维度的桶上
//   - 向量做 L2 归一化，便于余弦/内积比较
//
// 使用场景：
//   - 开发/测试环境，不依赖外部模型服务
//   - 作为编码服务不可用时离线任务的显式替代（需显式选择，不自动回退）
//
// 注意：它不产生语义向量，只保证同文本同版本结果逐位一致。
type LocalHashingEncoder struct {
	// Dim 向量维度
	Dim int

	// Version 模型版本标识（参与缓存 key）
	Version string
}

// NewLocalHashingEncoder 创建一个本地哈希编码器。
func NewLocalHashingEncoder(dim int) *LocalHashingEncoder {
	if dim <= 0 {
		dim = 512
	}
	return &LocalHashingEncoder{Dim: dim, Version: "local-hash-v1"}
}

func (e *LocalHashingEncoder) Dimension() int       { return e.Dim }
func (e *LocalHashingEncoder) ModelVersion() string { return e.Version }

// EncodeTexts 批量编码，顺序与入参一致。
func (e *LocalHashingEncoder) EncodeTexts(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = e.encode(t)
	}
	return vecs, nil
}

func (e *LocalHashingEncoder) encode(text string) []float32 {
	vec := make([]float32, e.Dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		idx := int(h.Sum32()) % e.Dim
		if idx < 0 {
			idx += e.Dim
		}
		// 用哈希高位决定符号，避免所有分量同向
		if h.Sum32()&0x80000000 != 0 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}
	return l2Normalize(vec)
}

func l2Normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := 1.0 / math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
	return vec
}
