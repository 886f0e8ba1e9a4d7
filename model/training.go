package model

import "context"

// 训练由外部协作方完成，这里只固定接口契约：
// 二分类交叉熵损失、梯度优化、准确率与排序质量（AUC）指标。

// TrainingConfig 是训练任务的配置契约。
type TrainingConfig struct {
	Optimizer        string   // 优化器，默认 "adam"
	LearningRate     float64  // 学习率，默认 0.001
	Loss             string   // 损失函数，默认 "binary_crossentropy"
	Metrics          []string // 跟踪指标，默认 accuracy 与 auc
	DropoutRate      float64  // dropout 比例，默认 0.2
	L2Regularization float64  // 嵌入表 L2 正则系数，默认 1e-6
}

// DefaultTrainingConfig 返回默认训练配置。
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Optimizer:        "adam",
		LearningRate:     0.001,
		Loss:             "binary_crossentropy",
		Metrics:          []string{"accuracy", "auc"},
		DropoutRate:      0.2,
		L2Regularization: 1e-6,
	}
}

// Interaction 是一条观测/隐式交互样本。
type Interaction struct {
	UserID int
	ItemID int

	// Label 交互标签（1 正例 / 0 负例）
	Label float64

	// ContentEmbedding 可选内容向量
	ContentEmbedding []float64
}

// TrainingMetrics 是一轮训练的产出指标。
type TrainingMetrics struct {
	Loss     float64
	Accuracy float64
	AUC      float64
}

// Trainer 是外部训练协作方的接口。
// 离线任务实现它并把训练产物（隐向量表、温度等）写回特征存储，
// 服务进程经 feature.Warm 加载，训练与服务不共享进程内状态。
type Trainer interface {
	Fit(ctx context.Context, samples []Interaction, cfg TrainingConfig) (*TrainingMetrics, error)
}
