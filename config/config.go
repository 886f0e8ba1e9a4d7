// Package config 提供配置驱动的组件装配：从 YAML/JSON 构建存储、
// 向量化器、打分模型与推荐服务。
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是顶层配置结构（支持 YAML/JSON）。
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" json:"embedding"`
	Scorer    ScorerConfig    `yaml:"scorer" json:"scorer"`
	Store     StoreConfig     `yaml:"store" json:"store"`
	Recommend RecommendConfig `yaml:"recommend" json:"recommend"`
}

// EmbeddingConfig 是文本向量化的配置。
type EmbeddingConfig struct {
	Encoder   string `yaml:"encoder" json:"encoder"`       // local / use
	Dimension int    `yaml:"dimension" json:"dimension"`   // 向量维度（local 必填，use 默认 512）
	Endpoint  string `yaml:"endpoint" json:"endpoint"`     // use：TF Serving 地址
	ModelName string `yaml:"model_name" json:"model_name"` // use：模型名
	Version   string `yaml:"version" json:"version"`       // use：参与缓存键的模型版本标识
	CacheTTL  int    `yaml:"cache_ttl" json:"cache_ttl"`   // 即席向量缓存 TTL（秒），0 取默认

	// PrecomputeBatchSize 离线预计算的批大小，0 取默认
	PrecomputeBatchSize int `yaml:"precompute_batch_size" json:"precompute_batch_size"`
}

// ScorerConfig 是打分模型的配置。
type ScorerConfig struct {
	Type         string  `yaml:"type" json:"type"` // fusion / two_tower
	NumUsers     int     `yaml:"num_users" json:"num_users"`
	NumItems     int     `yaml:"num_items" json:"num_items"`
	EmbeddingDim int     `yaml:"embedding_dim" json:"embedding_dim"`
	ContentDim   int     `yaml:"content_dim" json:"content_dim"`
	HiddenUnits  []int   `yaml:"hidden_units" json:"hidden_units"` // 仅 fusion
	DropoutRate  float64 `yaml:"dropout_rate" json:"dropout_rate"` // 仅 fusion
	Temperature  float64 `yaml:"temperature" json:"temperature"`   // 仅 two_tower
}

// StoreConfig 是缓存/存储后端的配置。
type StoreConfig struct {
	Type string `yaml:"type" json:"type"` // memory / redis
	Addr string `yaml:"addr" json:"addr"` // redis：地址，如 localhost:6379
	DB   int    `yaml:"db" json:"db"`     // redis：库编号
}

// RecommendConfig 是在线推荐服务的配置。
type RecommendConfig struct {
	CacheTTL     int `yaml:"cache_ttl" json:"cache_ttl"`         // 结果缓存 TTL（秒），0 取默认
	DefaultLimit int `yaml:"default_limit" json:"default_limit"` // 未指定 limit 时的条数
}

// Load 按扩展名加载配置文件（.json 走 JSON，其余按 YAML 解析）。
func Load(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadFromJSON(path)
	}
	return LoadFromYAML(path)
}

// LoadFromYAML 从 YAML 文件加载配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return &cfg, nil
}
