package embedding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/federico-pizz/piranha2/core"
)

// 缓存中的向量采用小端 float32 编码，与离线预计算任务写入的
// 格式一致（float32 tobytes），双方可以互读。

// EncodeVector 将向量编码为小端 float32 字节序列。
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector 解码缓存条目并校验维度。
// 长度不是 4 的倍数或维度不符都按损坏条目处理（DIMENSION_MISMATCH），
// 调用方应剔除该条目并重新计算，绝不透传错形状的向量。
func DecodeVector(data []byte, dim int) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("embedding: corrupted cache entry: %d bytes", len(data)))
	}
	n := len(data) / 4
	if n != dim {
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("embedding: dimension mismatch: expected %d, got %d", dim, n))
	}

	vec := make([]float32, n)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
