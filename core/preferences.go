package core

import "context"

// FeedbackType 是用户对商品的显式反馈类型。
type FeedbackType string

const (
	FeedbackLike    FeedbackType = "like"    // 喜欢
	FeedbackDislike FeedbackType = "dislike" // 不喜欢
)

// Valid 检查反馈类型是否为可识别的取值。
func (t FeedbackType) Valid() bool {
	return t == FeedbackLike || t == FeedbackDislike
}

// Preferences 是强类型的用户偏好结构。
//
// 不变式：Liked 与 Disliked 任何时刻都不相交，且各自无重复元素。
// 不变式由 Apply 维护，调用方不要直接改写两个切片。
//
// Extra 用于向前兼容的扩展键（例如画像分桶、偏好权重），
// 保留灵活性的同时，核心两个集合是类型安全的。
type Preferences struct {
	Liked    []string       `json:"liked_products"`
	Disliked []string       `json:"disliked_products"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// NewPreferences 创建一个空的偏好结构。
func NewPreferences() *Preferences {
	return &Preferences{
		Liked:    []string{},
		Disliked: []string{},
	}
}

// HasLiked 检查商品是否在喜欢集合中。
func (p *Preferences) HasLiked(productID string) bool {
	return contains(p.Liked, productID)
}

// HasDisliked 检查商品是否在不喜欢集合中。
func (p *Preferences) HasDisliked(productID string) bool {
	return contains(p.Disliked, productID)
}

// Apply 记录一次反馈，维护两个集合的互斥与幂等。
// 返回偏好是否发生了变化（重复提交同一反馈返回 false）。
func (p *Preferences) Apply(productID string, kind FeedbackType) bool {
	switch kind {
	case FeedbackLike:
		changed := false
		if !contains(p.Liked, productID) {
			p.Liked = append(p.Liked, productID)
			changed = true
		}
		if removed := remove(&p.Disliked, productID); removed {
			changed = true
		}
		return changed
	case FeedbackDislike:
		changed := false
		if !contains(p.Disliked, productID) {
			p.Disliked = append(p.Disliked, productID)
			changed = true
		}
		if removed := remove(&p.Liked, productID); removed {
			changed = true
		}
		return changed
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids *[]string, id string) bool {
	for i, v := range *ids {
		if v == id {
			*ids = append((*ids)[:i], (*ids)[i+1:]...)
			return true
		}
	}
	return false
}

// PreferenceStore 是用户偏好的持久化接口。
//
// 并发约束：Update 是单用户粒度的读-改-写，实现方必须按用户串行化
// （行锁或 compare-and-set），防止多会话并发提交时丢失更新。
type PreferenceStore interface {
	// Get 读取用户偏好；用户尚无偏好时返回空 Preferences，不报错。
	Get(ctx context.Context, userID string) (*Preferences, error)

	// Update 以串行化方式对单个用户执行读-改-写。
	// fn 返回 false 表示无变化，实现可以跳过写回。
	Update(ctx context.Context, userID string, fn func(*Preferences) bool) error
}
