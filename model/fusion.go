package model

import (
	"fmt"
	"math/rand"

	"github.com/federico-pizz/piranha2/core"
)

// FusionScorer 是主力混合打分模型。
//
// 核心思想：
//   - 用户/商品各一张学习到的嵌入表（带 L2 正则约束）
//   - 协同信号 = 用户向量与商品向量的逐维乘积
//     （保留每一维的交互结构，刻意不在此处塌缩成内积标量）
//   - 可选内容向量经过两层投影（中间带 dropout）对齐到协同维度，
//     与 [协同信号, 用户向量, 商品向量] 拼接
//   - 拼接向量经过可配置的融合栈：(dense → batchnorm → dropout) 重复，
//     隐藏单元默认 (128, 64)，最后一个 sigmoid 单元输出 [0,1] 分数
//
// 工程特征：
//   - 表达能力：强（融合层学习跨信号交互）
//   - 服务代价：高（每个 (user, item) pair 都要联合前向）
//   - 适合离线重算任务逐用户生成排名行
type FusionScorer struct {
	// NumUsers / NumItems 是嵌入表行数，索引越界是致命校验错误
	NumUsers int
	NumItems int

	// EmbeddingDim 协同嵌入维度
	EmbeddingDim int

	// ContentDim 内容向量维度（0 表示不接内容信号）
	ContentDim int

	// HiddenUnits 融合栈的隐藏单元序列
	HiddenUnits []int

	// DropoutRate 训练期 dropout 比例（推理为恒等，保留用于训练契约）
	DropoutRate float64

	// L2 嵌入表正则系数（训练协作方使用）
	L2 float64

	userEmb [][]float64
	itemEmb [][]float64

	// 内容子网络：Dense(128, relu) → dropout → Dense(EmbeddingDim, relu)
	contentFC1 *dense
	contentFC2 *dense

	// 融合栈第一层按输入宽度分两套权重：
	// 有内容信号时输入 4*dim，无内容时 3*dim（与拼接语义一致，不做补零）
	fusionInContent   *dense
	fusionInNoContent *dense
	fusionBN0         *batchNorm
	fusionRest        []*dense
	fusionRestBN      []*batchNorm
	out               *dense
}

// NewFusionScorer 创建融合打分模型。
// embeddingDim 为 0 时取 64；隐藏单元默认 (128, 64)。
func NewFusionScorer(numUsers, numItems, embeddingDim int) *FusionScorer {
	if embeddingDim <= 0 {
		embeddingDim = 64
	}
	s := &FusionScorer{
		NumUsers:     numUsers,
		NumItems:     numItems,
		EmbeddingDim: embeddingDim,
		HiddenUnits:  []int{128, 64},
		DropoutRate:  0.2,
		L2:           1e-6,
	}
	s.build()
	return s
}

// WithContentDim 设置内容向量维度并重建网络。
func (s *FusionScorer) WithContentDim(dim int) *FusionScorer {
	s.ContentDim = dim
	s.build()
	return s
}

// WithHiddenUnits 设置融合栈隐藏单元序列并重建网络。
func (s *FusionScorer) WithHiddenUnits(units []int) *FusionScorer {
	if len(units) > 0 {
		s.HiddenUnits = units
	}
	s.build()
	return s
}

// WithDropoutRate 设置 dropout 比例（仅训练契约，推理不生效）。
func (s *FusionScorer) WithDropoutRate(rate float64) *FusionScorer {
	s.DropoutRate = rate
	return s
}

func (s *FusionScorer) build() {
	rng := rand.New(rand.NewSource(1))
	dim := s.EmbeddingDim

	s.userEmb = newEmbeddingTable(s.NumUsers, dim, rng)
	s.itemEmb = newEmbeddingTable(s.NumItems, dim, rng)

	if s.ContentDim > 0 {
		s.contentFC1 = newDense(s.ContentDim, 128, true, rng)
		s.contentFC2 = newDense(128, dim, true, rng)
	} else {
		s.contentFC1 = nil
		s.contentFC2 = nil
	}

	first := s.HiddenUnits[0]
	s.fusionInContent = newDense(4*dim, first, true, rng)
	s.fusionInNoContent = newDense(3*dim, first, true, rng)
	s.fusionBN0 = newBatchNorm(first)

	s.fusionRest = s.fusionRest[:0]
	s.fusionRestBN = s.fusionRestBN[:0]
	prev := first
	for _, units := range s.HiddenUnits[1:] {
		s.fusionRest = append(s.fusionRest, newDense(prev, units, true, rng))
		s.fusionRestBN = append(s.fusionRestBN, newBatchNorm(units))
		prev = units
	}
	s.out = newDense(prev, 1, false, rng)
}

func (s *FusionScorer) Name() string { return "fusion" }

// Score 对 (userID, itemID) 打分，可选内容向量。
// 越界索引与维度不符是致命校验错误，不做静默修正。
func (s *FusionScorer) Score(userID, itemID int, contentEmbedding []float64) (float64, error) {
	if userID < 0 || userID >= s.NumUsers {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
			fmt.Sprintf("model: user_id %d out of range [0,%d)", userID, s.NumUsers))
	}
	if itemID < 0 || itemID >= s.NumItems {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
			fmt.Sprintf("model: item_id %d out of range [0,%d)", itemID, s.NumItems))
	}
	if contentEmbedding != nil {
		if s.ContentDim == 0 {
			return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
				"model: content embedding supplied but content dim not configured")
		}
		if len(contentEmbedding) != s.ContentDim {
			return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
				fmt.Sprintf("model: content embedding dim %d, expected %d", len(contentEmbedding), s.ContentDim))
		}
	}

	userVec := s.userEmb[userID]
	itemVec := s.itemEmb[itemID]

	// 协同信号：逐维乘积
	collab := make([]float64, s.EmbeddingDim)
	for i := range collab {
		collab[i] = userVec[i] * itemVec[i]
	}

	var combined []float64
	var x []float64
	if contentEmbedding != nil {
		contentVec := s.contentFC2.forward(s.contentFC1.forward(contentEmbedding))
		combined = concat(collab, userVec, itemVec, contentVec)
		x = s.fusionInContent.forward(combined)
	} else {
		combined = concat(collab, userVec, itemVec)
		x = s.fusionInNoContent.forward(combined)
	}

	x = s.fusionBN0.forward(x)
	for i, layer := range s.fusionRest {
		x = layer.forward(x)
		x = s.fusionRestBN[i].forward(x)
	}

	return sigmoid(s.out.forward(x)[0]), nil
}

// ScoreBatch 批量打分。三个输入的批长度必须一致
// （contentEmbeddings 可整体为 nil），不一致是致命校验错误。
func (s *FusionScorer) ScoreBatch(userIDs, itemIDs []int, contentEmbeddings [][]float64) ([]float64, error) {
	if len(userIDs) != len(itemIDs) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
			fmt.Sprintf("model: batch size mismatch: %d users, %d items", len(userIDs), len(itemIDs)))
	}
	if contentEmbeddings != nil && len(contentEmbeddings) != len(userIDs) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
			fmt.Sprintf("model: batch size mismatch: %d users, %d content embeddings", len(userIDs), len(contentEmbeddings)))
	}

	scores := make([]float64, len(userIDs))
	for i := range userIDs {
		var content []float64
		if contentEmbeddings != nil {
			content = contentEmbeddings[i]
		}
		score, err := s.Score(userIDs[i], itemIDs[i], content)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	return scores, nil
}

// SetUserVector 写入训练产物中的用户隐向量（feature.Warm 使用）。
func (s *FusionScorer) SetUserVector(userID int, vec []float64) error {
	if userID < 0 || userID >= s.NumUsers {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
			fmt.Sprintf("model: user_id %d out of range [0,%d)", userID, s.NumUsers))
	}
	if len(vec) != s.EmbeddingDim {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("model: user vector dim %d, expected %d", len(vec), s.EmbeddingDim))
	}
	copy(s.userEmb[userID], vec)
	return nil
}

// SetItemVector 写入训练产物中的商品隐向量。
func (s *FusionScorer) SetItemVector(itemID int, vec []float64) error {
	if itemID < 0 || itemID >= s.NumItems {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
			fmt.Sprintf("model: item_id %d out of range [0,%d)", itemID, s.NumItems))
	}
	if len(vec) != s.EmbeddingDim {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("model: item vector dim %d, expected %d", len(vec), s.EmbeddingDim))
	}
	copy(s.itemEmb[itemID], vec)
	return nil
}

func concat(vecs ...[]float64) []float64 {
	total := 0
	for _, v := range vecs {
		total += len(v)
	}
	out := make([]float64, 0, total)
	for _, v := range vecs {
		out = append(out, v...)
	}
	return out
}

var _ core.Scorer = (*FusionScorer)(nil)
