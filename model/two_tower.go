package model

import (
	"fmt"
	"math/rand"

	"github.com/federico-pizz/piranha2/core"
)

// TwoTowerScorer 是两塔结构的替代打分模型（User Tower + Item Tower）。
//
// 核心思想：
//   - 两个塔独立把各自的嵌入降到同维度并做 L2 归一化
//   - 分数 = sigmoid(dot(user_vec, item_vec) / temperature)
//   - Temperature 是可训练标量（初始 0.05），分数分布的陡峭程度
//     由训练校准，不手工固定
//
// 工程特征：
//   - 商品向量可离线预计算一次，跨大量用户请求复用（近邻式服务）
//   - 融合模型则必须逐 pair 联合计算，两者按配置互换，
//     服务层不感知当前激活的是哪一种
type TwoTowerScorer struct {
	NumUsers     int
	NumItems     int
	EmbeddingDim int

	// ContentDim 内容向量维度；>0 时物品塔把原始物品嵌入与
	// 内容向量拼接后再投影
	ContentDim int

	// Temperature 可训练温度标量，初始 0.05
	Temperature float64

	userEmb [][]float64
	itemEmb [][]float64

	// 用户塔：Dense(128, relu) → Dense(dim) → l2norm
	userFC1 *dense
	userFC2 *dense

	// 物品塔：Dense(256, relu) → Dense(dim) → l2norm
	// 第一层按输入宽度分两套权重（带/不带内容拼接）
	itemFC1Content   *dense
	itemFC1NoContent *dense
	itemFC2          *dense
}

// NewTwoTowerScorer 创建两塔打分模型。embeddingDim 为 0 时取 64。
func NewTwoTowerScorer(numUsers, numItems, embeddingDim int) *TwoTowerScorer {
	if embeddingDim <= 0 {
		embeddingDim = 64
	}
	s := &TwoTowerScorer{
		NumUsers:     numUsers,
		NumItems:     numItems,
		EmbeddingDim: embeddingDim,
		Temperature:  0.05,
	}
	s.build()
	return s
}

// WithContentDim 设置内容向量维度并重建物品塔。
func (s *TwoTowerScorer) WithContentDim(dim int) *TwoTowerScorer {
	s.ContentDim = dim
	s.build()
	return s
}

// WithTemperature 覆盖温度初值（训练产物加载时使用）。
func (s *TwoTowerScorer) WithTemperature(t float64) *TwoTowerScorer {
	if t > 0 {
		s.Temperature = t
	}
	return s
}

func (s *TwoTowerScorer) build() {
	rng := rand.New(rand.NewSource(2))
	dim := s.EmbeddingDim

	s.userEmb = newEmbeddingTable(s.NumUsers, dim, rng)
	s.itemEmb = newEmbeddingTable(s.NumItems, dim, rng)

	s.userFC1 = newDense(dim, 128, true, rng)
	s.userFC2 = newDense(128, dim, false, rng)

	s.itemFC1NoContent = newDense(dim, 256, true, rng)
	if s.ContentDim > 0 {
		s.itemFC1Content = newDense(dim+s.ContentDim, 256, true, rng)
	} else {
		s.itemFC1Content = nil
	}
	s.itemFC2 = newDense(256, dim, false, rng)
}

func (s *TwoTowerScorer) Name() string { return "two_tower" }

// UserVector 通过用户塔得到 L2 归一化的用户向量。
func (s *TwoTowerScorer) UserVector(userID int) ([]float64, error) {
	if userID < 0 || userID >= s.NumUsers {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
			fmt.Sprintf("model: user_id %d out of range [0,%d)", userID, s.NumUsers))
	}
	vec := s.userFC2.forward(s.userFC1.forward(s.userEmb[userID]))
	return l2Normalize(vec), nil
}

// ItemVector 通过物品塔得到 L2 归一化的物品向量。
// 可离线对全量商品预计算一次，在线查询直接复用。
func (s *TwoTowerScorer) ItemVector(itemID int, contentEmbedding []float64) ([]float64, error) {
	if itemID < 0 || itemID >= s.NumItems {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
			fmt.Sprintf("model: item_id %d out of range [0,%d)", itemID, s.NumItems))
	}

	input := s.itemEmb[itemID]
	var hidden []float64
	if contentEmbedding != nil {
		if s.ContentDim == 0 {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
				"model: content embedding supplied but content dim not configured")
		}
		if len(contentEmbedding) != s.ContentDim {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeValidation,
				fmt.Sprintf("model: content embedding dim %d, expected %d", len(contentEmbedding), s.ContentDim))
		}
		hidden = s.itemFC1Content.forward(concat(input, contentEmbedding))
	} else {
		hidden = s.itemFC1NoContent.forward(input)
	}
	return l2Normalize(s.itemFC2.forward(hidden)), nil
}

// Score 对 (userID, itemID) 打分。
func (s *TwoTowerScorer) Score(userID, itemID int, contentEmbedding []float64) (float64, error) {
	userVec, err := s.UserVector(userID)
	if err != nil {
		return 0, err
	}
	itemVec, err := s.ItemVector(itemID, contentEmbedding)
	if err != nil {
		return 0, err
	}
	return s.similarity(userVec, itemVec), nil
}

// ScoreWithItemVector 用预计算的物品向量打分（近邻式服务路径）。
func (s *TwoTowerScorer) ScoreWithItemVector(userID int, itemVec []float64) (float64, error) {
	userVec, err := s.UserVector(userID)
	if err != nil {
		return 0, err
	}
	if len(itemVec) != s.EmbeddingDim {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("model: item vector dim %d, expected %d", len(itemVec), s.EmbeddingDim))
	}
	return s.similarity(userVec, itemVec), nil
}

func (s *TwoTowerScorer) similarity(userVec, itemVec []float64) float64 {
	temp := s.Temperature
	if temp <= 0 {
		temp = 0.05
	}
	return sigmoid(dotProduct(userVec, itemVec) / temp)
}

// SetUserVector 写入训练产物中的用户隐向量（feature.Warm 使用）。
func (s *TwoTowerScorer) SetUserVector(userID int, vec []float64) error {
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
func (s *TwoTowerScorer) SetItemVector(itemID int, vec []float64) error {
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

var _ core.Scorer = (*TwoTowerScorer)(nil)
