package feature

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/federico-pizz/piranha2/core"
	"github.com/federico-pizz/piranha2/pkg/conv"
)

// FeastProvider 是基于官方 Feast Go SDK 的隐向量读取实现。
//
// 布局约定：
//   - 训练任务把用户/商品隐向量物化到 Feast 在线存储
//   - 实体键为模型索引（user_idx / item_idx）
//   - 特征为 double list（一行一条向量）
//
// 工程特征：
//   - 实时性：好（gRPC 低延迟、按需批量）
//   - 与训练解耦：服务进程只读在线存储，不感知训练过程
type FeastProvider struct {
	client *feastsdk.GrpcClient

	// Project Feast 项目名称
	Project string

	// UserEntity / ItemEntity 实体键名称
	UserEntity string
	ItemEntity string

	// UserFeature / ItemFeature 特征引用（featureview:feature）
	UserFeature string
	ItemFeature string
}

// NewFeastProvider 创建一个 Feast 隐向量读取端。
// host/port 指向 Feast Feature Server 的 gRPC 端口（默认 6565）。
func NewFeastProvider(host string, port int, project string) (*FeastProvider, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	return &FeastProvider{
		client:      client,
		Project:     project,
		UserEntity:  "user_idx",
		ItemEntity:  "item_idx",
		UserFeature: "user_latent:vector",
		ItemFeature: "item_latent:vector",
	}, nil
}

// WithFeatureRefs 覆盖实体键与特征引用。
func (p *FeastProvider) WithFeatureRefs(userEntity, userFeature, itemEntity, itemFeature string) *FeastProvider {
	p.UserEntity = userEntity
	p.UserFeature = userFeature
	p.ItemEntity = itemEntity
	p.ItemFeature = itemFeature
	return p
}

func (p *FeastProvider) GetUserVector(ctx context.Context, userID int) ([]float64, error) {
	return p.getVector(ctx, p.UserEntity, p.UserFeature, userID)
}

func (p *FeastProvider) GetItemVector(ctx context.Context, itemID int) ([]float64, error) {
	return p.getVector(ctx, p.ItemEntity, p.ItemFeature, itemID)
}

// BatchGetItemVectors 单次请求读取多条商品隐向量，结果与 itemIDs 对齐；
// 缺失的行对应 nil。
func (p *FeastProvider) BatchGetItemVectors(ctx context.Context, itemIDs []int) ([][]float64, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	entities := make([]feastsdk.Row, len(itemIDs))
	for i, id := range itemIDs {
		entities[i] = feastsdk.Row{p.ItemEntity: feastsdk.Int64Val(int64(id))}
	}

	resp, err := p.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: []string{p.ItemFeature},
		Entities: entities,
		Project:  p.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) != len(itemIDs) {
		return nil, fmt.Errorf("feast response row count: expected %d, got %d", len(itemIDs), len(rows))
	}

	out := make([][]float64, len(itemIDs))
	for i, row := range rows {
		val, exists := row[p.ItemFeature]
		if !exists || val == nil {
			continue
		}
		if dl := val.GetDoubleListVal(); dl != nil && len(dl.GetVal()) > 0 {
			out[i] = dl.GetVal()
		} else if fl := val.GetFloatListVal(); fl != nil && len(fl.GetVal()) > 0 {
			out[i] = conv.SliceFloat32To64(fl.GetVal())
		}
	}
	return out, nil
}

func (p *FeastProvider) getVector(ctx context.Context, entity, feature string, id int) ([]float64, error) {
	req := &feastsdk.OnlineFeaturesRequest{
		Features: []string{feature},
		Entities: []feastsdk.Row{
			{entity: feastsdk.Int64Val(int64(id))},
		},
		Project: p.Project,
	}

	resp, err := p.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) != 1 {
		return nil, fmt.Errorf("feast response row count: expected 1, got %d", len(rows))
	}

	val, exists := rows[0][feature]
	if !exists || val == nil {
		return nil, ErrVectorNotFound
	}

	// 向量按 double list 物化；旧版训练任务可能写成 float list
	if dl := val.GetDoubleListVal(); dl != nil && len(dl.GetVal()) > 0 {
		return dl.GetVal(), nil
	}
	if fl := val.GetFloatListVal(); fl != nil && len(fl.GetVal()) > 0 {
		return conv.SliceFloat32To64(fl.GetVal()), nil
	}
	return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeDimensionMismatch,
		fmt.Sprintf("feature: %s for id %d is not a vector value", feature, id))
}

var _ VectorProvider = (*FeastProvider)(nil)
