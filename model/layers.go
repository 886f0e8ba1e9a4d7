package model

import (
	"math"
	"math/rand"
)

// 本文件是两种打分模型共享的前向计算单元。
// 权重布局：weights[neuron][input]，与偏置一一对应。
// 初始化是确定性的占位值（固定种子的 Xavier 初始化），
// 训练产物通过 VectorReceiver / 层权重加载覆盖。

type dense struct {
	weights [][]float64 // weights[out][in]
	biases  []float64
	relu    bool
}

// newDense 创建一个全连接层，Xavier 尺度的确定性初始化。
func newDense(in, out int, relu bool, rng *rand.Rand) *dense {
	scale := math.Sqrt(2.0 / float64(in+out))
	d := &dense{
		weights: make([][]float64, out),
		biases:  make([]float64, out),
		relu:    relu,
	}
	for j := 0; j < out; j++ {
		d.weights[j] = make([]float64, in)
		for k := 0; k < in; k++ {
			d.weights[j][k] = (rng.Float64()*2 - 1) * scale
		}
	}
	return d
}

func (d *dense) forward(input []float64) []float64 {
	out := make([]float64, len(d.weights))
	for j := range d.weights {
		sum := d.biases[j]
		w := d.weights[j]
		n := len(w)
		if len(input) < n {
			n = len(input)
		}
		for k := 0; k < n; k++ {
			sum += w[k] * input[k]
		}
		if d.relu {
			sum = reluF(sum)
		}
		out[j] = sum
	}
	return out
}

// batchNorm 是 batch normalization 的推理态变换：
// y = gamma * (x - mean) / sqrt(var + eps) + beta。
// 统计量来自训练产物，占位初始化为恒等变换。
type batchNorm struct {
	gamma []float64
	beta  []float64
	mean  []float64
	vari  []float64
	eps   float64
}

func newBatchNorm(dim int) *batchNorm {
	bn := &batchNorm{
		gamma: make([]float64, dim),
		beta:  make([]float64, dim),
		mean:  make([]float64, dim),
		vari:  make([]float64, dim),
		eps:   1e-3,
	}
	for i := 0; i < dim; i++ {
		bn.gamma[i] = 1
		bn.vari[i] = 1
	}
	return bn
}

func (b *batchNorm) forward(input []float64) []float64 {
	out := make([]float64, len(input))
	for i, x := range input {
		if i >= len(b.gamma) {
			out[i] = x
			continue
		}
		out[i] = b.gamma[i]*(x-b.mean[i])/math.Sqrt(b.vari[i]+b.eps) + b.beta[i]
	}
	return out
}

func reluF(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func dotProduct(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// l2Normalize 返回 L2 归一化后的新向量；零向量原样返回。
func l2Normalize(vec []float64) []float64 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float64, len(vec))
	if norm == 0 {
		copy(out, vec)
		return out
	}
	inv := 1.0 / math.Sqrt(norm)
	for i, v := range vec {
		out[i] = v * inv
	}
	return out
}

// newEmbeddingTable 创建 rows x dim 的嵌入表（确定性占位初始化）。
func newEmbeddingTable(rows, dim int, rng *rand.Rand) [][]float64 {
	scale := math.Sqrt(2.0 / float64(rows+dim))
	table := make([][]float64, rows)
	for i := range table {
		table[i] = make([]float64, dim)
		for j := range table[i] {
			table[i][j] = (rng.Float64()*2 - 1) * scale
		}
	}
	return table
}
