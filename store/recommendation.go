package store

import (
	"context"
	"strconv"
	"time"

	"github.com/federico-pizz/piranha2/core"
)

// StoreRecommendations 是基于 core.KeyValueStore 的排名行存储适配器。
//
// 存储布局：
//   - rec:<user>      有序集合，member 为商品 ID，score 为相关性分数
//   - rec:gen:<user>  本轮排名的生成时间（Unix 秒）
//
// 排名由离线任务整体覆盖（ReplaceForUser），同一轮内所有行共享
// 生成时间；在线路径只做降序 TopN 读取。
type StoreRecommendations struct {
	kv core.KeyValueStore

	// KeyPrefix 排名 key 前缀，默认 "rec:"
	KeyPrefix string
}

func NewStoreRecommendations(kv core.KeyValueStore) *StoreRecommendations {
	return &StoreRecommendations{kv: kv, KeyPrefix: "rec:"}
}

func (s *StoreRecommendations) rankKey(userID string) string {
	return s.KeyPrefix + userID
}

func (s *StoreRecommendations) genKey(userID string) string {
	return s.KeyPrefix + "gen:" + userID
}

// ListByUser 按分数降序返回排名行，最多 limit 条。
func (s *StoreRecommendations) ListByUser(ctx context.Context, userID string, limit int) ([]*core.Recommendation, error) {
	if limit <= 0 {
		return nil, nil
	}

	members, err := s.kv.ZRevRange(ctx, s.rankKey(userID), 0, int64(limit-1))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	generatedAt := s.readGeneratedAt(ctx, userID)

	recs := make([]*core.Recommendation, 0, len(members))
	for _, productID := range members {
		score, err := s.kv.ZScore(ctx, s.rankKey(userID), productID)
		if err != nil {
			if core.IsStoreNotFound(err) {
				continue
			}
			return nil, err
		}
		recs = append(recs, &core.Recommendation{
			UserID:      userID,
			ProductID:   productID,
			Score:       score,
			GeneratedAt: generatedAt,
		})
	}
	return recs, nil
}

// ReplaceForUser 整体覆盖某用户的排名行。
func (s *StoreRecommendations) ReplaceForUser(ctx context.Context, userID string, recs []*core.Recommendation) error {
	if err := s.kv.Delete(ctx, s.rankKey(userID)); err != nil {
		return err
	}

	generatedAt := time.Now()
	for _, r := range recs {
		if err := s.kv.ZAdd(ctx, s.rankKey(userID), r.Score, r.ProductID); err != nil {
			return err
		}
		if !r.GeneratedAt.IsZero() {
			generatedAt = r.GeneratedAt
		}
	}

	ts := strconv.FormatInt(generatedAt.Unix(), 10)
	return s.kv.Set(ctx, s.genKey(userID), []byte(ts))
}

func (s *StoreRecommendations) readGeneratedAt(ctx context.Context, userID string) time.Time {
	raw, err := s.kv.Get(ctx, s.genKey(userID))
	if err != nil {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

var _ core.RecommendationStore = (*StoreRecommendations)(nil)
