package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分级（与降级策略对应）：
//   - VALIDATION：输入非法，直接拒绝请求
//   - NOT_FOUND：资源不存在，按空结果处理
//   - UNAVAILABLE：模型/编码器不可用，对调用方是致命错误
//   - DIMENSION_MISMATCH：缓存向量维度异常，视为损坏条目，剔除后重算
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "VALIDATION"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "embedding", "model"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound          = "NOT_FOUND"          // 资源不存在
	ErrorCodeNotSupported      = "NOT_SUPPORTED"      // 操作不支持
	ErrorCodeUnavailable       = "UNAVAILABLE"        // 模型/服务不可用
	ErrorCodeValidation        = "VALIDATION"         // 输入无效
	ErrorCodeDimensionMismatch = "DIMENSION_MISMATCH" // 向量维度异常
)

// 模块名称常量
const (
	ModuleStore     = "store"     // 存储模块
	ModuleEmbedding = "embedding" // 文本向量化模块
	ModuleModel     = "model"     // 打分模型模块
	ModuleFeature   = "feature"   // 隐向量/特征模块
	ModuleRecommend = "recommend" // 推荐服务模块
)

// 通用错误检查函数

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsValidation 检查错误是否为 VALIDATION
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeValidation
	}
	return false
}

// IsDimensionMismatch 检查错误是否为 DIMENSION_MISMATCH
func IsDimensionMismatch(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeDimensionMismatch
	}
	return false
}
