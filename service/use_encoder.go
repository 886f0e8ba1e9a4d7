// Package service 提供外部模型服务的客户端实现。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/federico-pizz/piranha2/core"
)

// USEClient 是句向量编码服务的客户端，实现 core.TextEncoder。
//
// 服务端是 TF Serving 风格的模型服务器，托管多语言句向量编码器
// （Universal Sentence Encoder 一类）：
//   - REST: POST /v1/models/<name>:predict，instances 为文本列表
//   - 响应 predictions 为与输入一一对应的定长向量列表
//
// 工程特征：
//   - 实时性：中等（RPC 调用，支持批量摊薄开销）
//   - 维度：一个模型版本内固定（多语言 USE 为 512）
//
// 失败策略：调用失败对调用方是致命错误（上层不做静默回退）。
type USEClient struct {
	// Endpoint 服务端点，例如 "http://localhost:8501"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// Version 模型版本标识（参与缓存 key）
	Version string

	// Dim 向量维度
	Dim int

	// Timeout 请求超时时间
	Timeout time.Duration

	httpClient *http.Client
}

// NewUSEClient 创建一个编码服务客户端。
func NewUSEClient(endpoint, modelName string, opts ...USEOption) *USEClient {
	client := &USEClient{
		Endpoint:  endpoint,
		ModelName: modelName,
		Version:   "use-multilingual-3",
		Dim:       512,
		Timeout:   30 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.httpClient = &http.Client{
		Timeout: client.Timeout,
	}
	return client
}

// USEOption 编码服务客户端配置选项
type USEOption func(*USEClient)

// WithUSEDimension 设置向量维度
func WithUSEDimension(dim int) USEOption {
	return func(c *USEClient) {
		c.Dim = dim
	}
}

// WithUSEVersion 设置模型版本标识
func WithUSEVersion(version string) USEOption {
	return func(c *USEClient) {
		c.Version = version
	}
}

// WithUSETimeout 设置超时时间
func WithUSETimeout(timeout time.Duration) USEOption {
	return func(c *USEClient) {
		c.Timeout = timeout
	}
}

func (c *USEClient) Dimension() int       { return c.Dim }
func (c *USEClient) ModelVersion() string { return c.Version }

// EncodeTexts 实现 core.TextEncoder 接口。
func (c *USEClient) EncodeTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", c.Endpoint, c.ModelName)

	body := map[string]interface{}{
		"instances": texts,
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("encoder service error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		Predictions [][]float32 `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Predictions) != len(texts) {
		return nil, fmt.Errorf("vector count mismatch: expected %d, got %d", len(texts), len(result.Predictions))
	}
	for i, vec := range result.Predictions {
		if len(vec) != c.Dim {
			return nil, fmt.Errorf("vector %d dimension mismatch: expected %d, got %d", i, c.Dim, len(vec))
		}
	}
	return result.Predictions, nil
}

// Health 检查编码服务可用性。
func (c *USEClient) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1/models/%s", c.Endpoint, c.ModelName)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("encoder service unhealthy: status=%d", resp.StatusCode)
	}
	return nil
}

var _ core.TextEncoder = (*USEClient)(nil)
