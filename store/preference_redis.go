package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/federico-pizz/piranha2/core"
)

// RedisPreferenceStore 是 Redis 实现的偏好存储。
//
// 并发控制：Update 使用 WATCH 乐观事务（compare-and-set）按用户串行化
// 读-改-写；多会话并发提交时冲突方重试，最多 maxCASRetries 次。
// 进程内不需要额外加锁。
type RedisPreferenceStore struct {
	client *redis.Client

	// KeyPrefix 偏好 key 前缀，默认 "prefs:"
	KeyPrefix string
}

// maxCASRetries 是 WATCH 冲突时的最大重试次数。
const maxCASRetries = 5

func NewRedisPreferenceStore(client *redis.Client) *RedisPreferenceStore {
	return &RedisPreferenceStore{client: client, KeyPrefix: "prefs:"}
}

func (s *RedisPreferenceStore) key(userID string) string {
	return s.KeyPrefix + userID
}

func (s *RedisPreferenceStore) Get(ctx context.Context, userID string) (*core.Preferences, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return core.NewPreferences(), nil
	}
	if err != nil {
		return nil, err
	}
	return decodePreferences(raw)
}

// Update 以 WATCH 事务执行单用户的读-改-写。
func (s *RedisPreferenceStore) Update(ctx context.Context, userID string, fn func(*core.Preferences) bool) error {
	key := s.key(userID)

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}

		p := core.NewPreferences()
		if err == nil {
			p, err = decodePreferences(raw)
			if err != nil {
				return err
			}
		}

		if !fn(p) {
			return nil // 无变化，事务内不写
		}

		encoded, err := json.Marshal(p)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxCASRetries; i++ {
		err = s.client.Watch(ctx, txn, key)
		if err != redis.TxFailedErr {
			return err
		}
		// WATCH 冲突，重读重试
	}
	return fmt.Errorf("preference update contention for user %s: %w", userID, err)
}

func decodePreferences(raw []byte) (*core.Preferences, error) {
	p := core.NewPreferences()
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	if p.Liked == nil {
		p.Liked = []string{}
	}
	if p.Disliked == nil {
		p.Disliked = []string{}
	}
	return p, nil
}

var _ core.PreferenceStore = (*RedisPreferenceStore)(nil)
