// Package feature 提供训练产物（用户/商品隐向量）的读取与装载。
package feature

import (
	"context"
	"fmt"
	"sync"

	"github.com/federico-pizz/piranha2/core"
)

// VectorProvider 是隐向量的读取接口。
//
// 设计原则：
//   - 定义在消费方（feature），由基础设施实现
//   - 训练任务把隐向量表物化到特征存储，服务进程按索引读取
//
// 实现：
//   - StaticProvider（内存，开发/测试）
//   - FeastProvider（Feast Feature Store，生产）
type VectorProvider interface {
	// GetUserVector 按模型索引读取用户隐向量；缺失返回 NOT_FOUND
	GetUserVector(ctx context.Context, userID int) ([]float64, error)

	// GetItemVector 按模型索引读取商品隐向量；缺失返回 NOT_FOUND
	GetItemVector(ctx context.Context, itemID int) ([]float64, error)

	// BatchGetItemVectors 批量读取商品隐向量，结果与 itemIDs 对齐；
	// 缺失的行对应 nil，不报错
	BatchGetItemVectors(ctx context.Context, itemIDs []int) ([][]float64, error)
}

// VectorReceiver 是能接收训练产物的模型侧接口。
// model.FusionScorer 与 model.TwoTowerScorer 都实现它。
type VectorReceiver interface {
	SetUserVector(userID int, vec []float64) error
	SetItemVector(itemID int, vec []float64) error
}

// ErrVectorNotFound 表示该索引没有物化的隐向量（冷启动行）。
var ErrVectorNotFound = core.NewDomainError(core.ModuleFeature, core.ErrorCodeNotFound, "feature: vector not found")

// Loader 把隐向量表装载进模型，进程内只执行一次。
// 并发首用时只有一个调用真正装载，其余共享结果（含失败结果：
// 装载失败按模型不可用处理，由进程重启重试）。
type Loader struct {
	once sync.Once
	err  error
}

// Warm 装载 [0,numUsers) x [0,numItems) 的隐向量。
// 单行缺失（NOT_FOUND）跳过，保留模型的占位初始化；其他错误中止。
func (l *Loader) Warm(ctx context.Context, p VectorProvider, r VectorReceiver, numUsers, numItems int) error {
	l.once.Do(func() {
		l.err = warm(ctx, p, r, numUsers, numItems)
	})
	if l.err != nil {
		return fmt.Errorf("%w: %v",
			core.NewDomainError(core.ModuleModel, core.ErrorCodeUnavailable, "model: vector warm failed"), l.err)
	}
	return nil
}

func warm(ctx context.Context, p VectorProvider, r VectorReceiver, numUsers, numItems int) error {
	for i := 0; i < numUsers; i++ {
		vec, err := p.GetUserVector(ctx, i)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return fmt.Errorf("user vector %d: %w", i, err)
		}
		if err := r.SetUserVector(i, vec); err != nil {
			return err
		}
	}
	for i := 0; i < numItems; i++ {
		vec, err := p.GetItemVector(ctx, i)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return fmt.Errorf("item vector %d: %w", i, err)
		}
		if err := r.SetItemVector(i, vec); err != nil {
			return err
		}
	}
	return nil
}

// StaticProvider 是内存实现的 VectorProvider，用于测试/开发。
type StaticProvider struct {
	mu    sync.RWMutex
	users map[int][]float64
	items map[int][]float64
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		users: make(map[int][]float64),
		items: make(map[int][]float64),
	}
}

// PutUserVector 写入一条用户隐向量。
func (s *StaticProvider) PutUserVector(userID int, vec []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = vec
}

// PutItemVector 写入一条商品隐向量。
func (s *StaticProvider) PutItemVector(itemID int, vec []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[itemID] = vec
}

func (s *StaticProvider) GetUserVector(ctx context.Context, userID int) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.users[userID]
	if !ok {
		return nil, ErrVectorNotFound
	}
	return vec, nil
}

func (s *StaticProvider) GetItemVector(ctx context.Context, itemID int) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.items[itemID]
	if !ok {
		return nil, ErrVectorNotFound
	}
	return vec, nil
}

func (s *StaticProvider) BatchGetItemVectors(ctx context.Context, itemIDs []int) ([][]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]float64, len(itemIDs))
	for i, id := range itemIDs {
		out[i] = s.items[id] // 缺失为 nil
	}
	return out, nil
}

var _ VectorProvider = (*StaticProvider)(nil)
